// Package pagination provides a page-cursor paginator over the request
// executor, plus parallel fetching of every page of a paginated endpoint.
//
// The paginator owns a 1-based page cursor bounded by the total page count of
// the most recent successful envelope. Navigation outside the known bounds is
// a no-op; every accepted page change triggers exactly one new execution, and
// in-flight fetches for an abandoned page are discarded by the executor's
// supersession guard.
package pagination
