package core

// EventLogger is the subset of the observability event log that the task
// manager writes to. Declared here so core does not import observability.
type EventLogger interface {
	LogEvent(eventType string, data map[string]any) error
}
