package events

import "time"

// HTTPStart is emitted when the server receives a request.
type HTTPStart struct {
	Method string
	Path   string
}

// HTTPFinish is emitted after the handler completes.
type HTTPFinish struct {
	Method   string
	Path     string
	Status   int
	Duration time.Duration
}
