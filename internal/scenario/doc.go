// Package scenario implements the traffic patterns a worker runs against the
// content tree.
//
// Each [Kind] maps to one traversal. All of them share a [Session], which
// owns the worker's [Counters] and the dive-out flag. The flag is latched as
// soon as loaded passes the target number, or when a read returns something
// that cannot be decoded, and is never cleared.
//
// Updates that hit HTTP 409 are retried at once against the same URL. Every
// retry is counted; no limit applies unless Params.MaxConflictRetries is set.
package scenario
