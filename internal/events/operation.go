package events

import "time"

// ExecuteStart is emitted before executing an operation string.
type ExecuteStart struct {
	Operation     string
	OperationName string
	OperationType string
}

// ExecuteFinish is emitted after operation execution completes.
type ExecuteFinish struct {
	Operation     string
	OperationName string
	OperationType string
	Err           error
	Duration      time.Duration
}

// FieldSkipped is emitted when a query requests a field the schema does
// not declare; the field is dropped rather than failing the operation.
type FieldSkipped struct {
	Type  string
	Field string
}

// CacheHit is emitted when a query is served from cache.
type CacheHit struct{ Key string }

// CacheMiss is emitted when a cached query has to fetch.
type CacheMiss struct{ Key string }

// BatchFlush is emitted when a batch key's queue is flushed.
// Trigger is "size" or "timer".
type BatchFlush struct {
	Key     string
	Size    int
	Trigger string
}
