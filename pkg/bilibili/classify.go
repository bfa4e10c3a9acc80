package bilibili

import (
	"context"
	stderrors "errors"

	"bilifollow/pkg/errors"
	"bilifollow/pkg/pacer"
)

// Classify maps the result of an API call onto a pacing outcome.
//
// Rate-limit errors carry the server's retry hint when one was given.
// Network and server errors are transient. Context cancellation and
// everything else typed (auth, not found, parsing) is fatal for pacing
// purposes: backing off will not fix a bad session or a missing account.
func Classify(err error) pacer.Outcome {
	if err == nil {
		return pacer.Success()
	}

	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return pacer.Fatal(err)
	}

	var typed *errors.Error
	if stderrors.As(err, &typed) {
		switch typed.Type {
		case errors.ErrorTypeRateLimit:
			return pacer.RateLimited(typed.RetryAfter)
		case errors.ErrorTypeNetwork, errors.ErrorTypeServerError:
			return pacer.Transient(err)
		default:
			return pacer.Fatal(err)
		}
	}

	// Untyped errors are treated as transient so a one-off hiccup does not
	// kill a long batch.
	return pacer.Transient(err)
}
