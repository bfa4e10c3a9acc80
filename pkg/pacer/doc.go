// Package pacer paces sequential calls against a rate-limited endpoint
// family.
//
// The pacer inserts a base delay with jitter before every call on the happy
// path, and switches to exponential backoff after rate-limit or transient
// failures. Exponential backoff with jitter is preferred over a fixed delay
// because it keeps throughput high while the endpoint is healthy and backs
// off quickly once it signals distress; jitter decorrelates retries across
// batches and restarts.
//
// Lifecycle:
//
//	Nominal -> Backoff(n) on a rate-limited or transient outcome
//	Backoff(n) -> Nominal on the next success
//	Backoff(n) -> Aborted once n exceeds the configured maximum
//
// Aborted is terminal for the current batch; a fresh pacer or an explicit
// Reset is required to resume.
//
// Usage:
//
//	p := pacer.New(pacer.DefaultConfig())
//	for _, target := range targets {
//	    if err := p.Wait(ctx); err != nil {
//	        return err // context cancelled
//	    }
//	    err := client.Unfollow(ctx, target)
//	    p.Record(bilibili.Classify(err))
//	    if p.ShouldAbort() {
//	        break
//	    }
//	}
//
// The pacer never fails and never escalates errors itself; all decisions are
// data returned to the caller. It must be confined to a single goroutine.
package pacer
