package events

import "time"

// RESTCallStart is emitted before an outgoing REST call.
type RESTCallStart struct {
	Method string
	URL    string
}

// RESTCallFinish is emitted after an outgoing REST call completes,
// including after the final retry attempt.
type RESTCallFinish struct {
	Method   string
	URL      string
	Status   int
	Attempts int
	Err      error
	Duration time.Duration
}
