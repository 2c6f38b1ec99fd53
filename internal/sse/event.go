// Package sse parses Server-Sent Events from upstream provider responses.
//
// Only the reading side is implemented; the gateway frames its own output in
// internal/httpserver.
//
// See https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

// Event is a single parsed SSE event, delimited by a blank line.
type Event struct {
	// Type is the "event:" field. Empty means the default "message" type.
	Type string

	// Data is every "data:" line of the event joined with "\n".
	Data string

	// ID is the last "id:" field, if any.
	ID string
}

// IsDone reports whether the event is the OpenAI-style `[DONE]` sentinel.
func (e *Event) IsDone() bool {
	return e.Data == "[DONE]"
}
