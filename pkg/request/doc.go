// Package request provides the asynchronous request-orchestration layer built
// on the response envelope: a single-call executor with retry and
// supersession, a call-on-demand mutation runner for writes, a concurrent
// batch executor with per-key state, and sequential/retrying/concurrent call
// helpers.
//
// Every driver tracks a lifecycle state of exactly one of loading, success, or
// error (or idle before the first execution). Results from calls that were
// superseded by a newer execution, or whose owner was disposed, are discarded
// before they can become visible.
package request
