package batch

import (
	"context"
	"fmt"

	"github.com/cheggaaa/pb/v3"

	"bilifollow/pkg/bilibili"
	"bilifollow/pkg/errors"
	"bilifollow/pkg/logger"
	"bilifollow/pkg/pacer"
)

// Action is the relation mutation a batch applies to each target
type Action string

const (
	ActionFollow   Action = "follow"
	ActionUnfollow Action = "unfollow"
)

// Target is one account a batch operates on. Uname may be empty when the
// target came from a raw ID list rather than a snapshot.
type Target struct {
	MID   int64
	Uname string
}

// Mutator applies a single relation change. *bilibili.Client satisfies it.
type Mutator interface {
	Follow(ctx context.Context, mid int64) error
	Unfollow(ctx context.Context, mid int64) error
}

// Failure records a target the batch gave up on
type Failure struct {
	Target Target
	Err    error
}

// Result is the tally of one batch run
type Result struct {
	Total         int
	Attempted     int
	Succeeded     int
	Failed        int
	Aborted       bool
	Cancelled     bool
	Failures      []Failure
	SucceededMIDs []int64
}

// Summary renders the tally as a one-line report
func (r *Result) Summary() string {
	s := fmt.Sprintf("%d of %d succeeded, %d failed", r.Succeeded, r.Total, r.Failed)
	if r.Aborted {
		s += " (aborted)"
	}
	if r.Cancelled {
		s += " (cancelled)"
	}
	return s
}

// Runner drives relation mutations one target at a time. All pacing goes
// through a single pacer owned by the run, so the runner never needs locks.
type Runner struct {
	mutator  Mutator
	pacer    *pacer.Pacer
	logger   logger.Logger
	progress bool

	// testMode caps how many mutations a run may attempt
	testMode bool
	maxOps   int
}

// Option configures a Runner
type Option func(*Runner)

// WithProgress enables a terminal progress bar during runs
func WithProgress() Option {
	return func(r *Runner) { r.progress = true }
}

// WithTestMode caps a run at maxOps mutations. Used for dry-run style
// verification against a real account.
func WithTestMode(maxOps int) Option {
	return func(r *Runner) {
		r.testMode = true
		r.maxOps = maxOps
	}
}

// NewRunner creates a batch runner
func NewRunner(mutator Mutator, p *pacer.Pacer, log logger.Logger, opts ...Option) *Runner {
	if log == nil {
		log = logger.GetLogger()
	}
	r := &Runner{
		mutator: mutator,
		pacer:   p,
		logger:  log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run applies action to every target in order. Each attempt waits on the
// pacer first, then records its outcome. Rate-limited and transient attempts
// retry the same target; fatal errors fail the target and move on. The run
// stops early when the pacer says to abort, when the context is cancelled,
// or when a test-mode cap is hit. The partial Result is always returned.
func (r *Runner) Run(ctx context.Context, action Action, targets []Target) (*Result, error) {
	result := &Result{Total: len(targets)}
	if len(targets) == 0 {
		return result, nil
	}

	limit := len(targets)
	if r.testMode && r.maxOps < limit {
		limit = r.maxOps
		r.logger.WarnWithFields("test mode active", map[string]interface{}{
			"cap":   r.maxOps,
			"total": len(targets),
		})
	}

	var bar *pb.ProgressBar
	if r.progress {
		tmpl := `{{string . "prefix"}}{{counters . }} {{bar . }} {{percent . }} {{rtime . "ETA %s"}}`
		bar = pb.ProgressBarTemplate(tmpl).Start(limit)
		bar.Set("prefix", string(action)+": ")
		defer bar.Finish()
	}

	r.pacer.Reset()

	for i := 0; i < limit; i++ {
		target := targets[i]

		done, err := r.runTarget(ctx, action, target, result)
		if bar != nil && done {
			bar.Increment()
		}
		if err != nil {
			return result, err
		}

		logger.LogBatchProgress(string(action), result.Attempted, limit, result.Succeeded, result.Failed)
	}

	return result, nil
}

// runTarget attempts one target until it succeeds, fails fatally, or the
// run must stop. It reports whether the target was resolved either way.
func (r *Runner) runTarget(ctx context.Context, action Action, target Target, result *Result) (bool, error) {
	for {
		if err := r.pacer.Wait(ctx); err != nil {
			result.Cancelled = true
			return false, err
		}

		result.Attempted++
		err := r.apply(ctx, action, target.MID)
		outcome := bilibili.Classify(err)
		r.pacer.Record(outcome)

		switch outcome.Kind {
		case pacer.KindSuccess:
			result.Succeeded++
			result.SucceededMIDs = append(result.SucceededMIDs, target.MID)
			return true, nil

		case pacer.KindFatal:
			result.Failed++
			result.Failures = append(result.Failures, Failure{Target: target, Err: err})
			if ctx.Err() != nil {
				result.Cancelled = true
				return true, ctx.Err()
			}
			r.logger.ErrorWithFields("target failed", map[string]interface{}{
				"action": string(action),
				"mid":    target.MID,
				"error":  err.Error(),
			})
			return true, nil

		default:
			if r.pacer.ShouldAbort() {
				result.Aborted = true
				result.Failed++
				result.Failures = append(result.Failures, Failure{Target: target, Err: err})
				return true, &errors.BatchAbortedError{
					ConsecutiveFailures: r.pacer.Failures(),
					Succeeded:           result.Succeeded,
					Total:               result.Total,
				}
			}
			logger.LogRateLimit(string(action), r.pacer.NextDelay(), r.pacer.Failures())
		}
	}
}

func (r *Runner) apply(ctx context.Context, action Action, mid int64) error {
	switch action {
	case ActionFollow:
		return r.mutator.Follow(ctx, mid)
	case ActionUnfollow:
		return r.mutator.Unfollow(ctx, mid)
	default:
		return fmt.Errorf("unknown batch action: %s", action)
	}
}

// TargetsFromRecords converts snapshot records into batch targets
func TargetsFromRecords(records []bilibili.FollowRecord) []Target {
	targets := make([]Target, len(records))
	for i, rec := range records {
		targets[i] = Target{MID: rec.MID, Uname: rec.Uname}
	}
	return targets
}

// TargetsFromMIDs converts bare account IDs into batch targets
func TargetsFromMIDs(mids []int64) []Target {
	targets := make([]Target, len(mids))
	for i, mid := range mids {
		targets[i] = Target{MID: mid}
	}
	return targets
}
