// Package observability records task events as JSON Lines and derives
// metrics and alerts from them. The event log is append-only and advisory:
// the task logs stay the source of truth.
package observability
