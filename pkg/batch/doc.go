// Package batch drives follow and unfollow mutations over a list of
// targets, one at a time, pacing every attempt through a single pacer.
// Rate-limited and transient attempts retry in place; a long enough failure
// streak aborts the whole run with a partial tally.
package batch
