// Package executor implements the engine that drives parsed operations
// against a schema graph: it resolves each top-level query to a REST
// fetch through the batching layer, reshapes the raw JSON into the
// requested field tree, coerces scalar values, applies user-supplied
// transforms, and assembles the result map.
//
// # Execution model
//
// Execute parses the operation, checks required variables, then
// dispatches by operation type. Each top-level query resolves its
// resource case-insensitively, computes a cache key from its resolved
// arguments, and either replays a live cache entry or enqueues a
// resolver closure into the Batcher under the query name. All enqueued
// closures for one operation are awaited together: no query blocks
// another from being enqueued, but Execute returns only after every
// one completed or one failed.
//
// # Shaping
//
// Shaping walks the requested field tree against the schema fields.
// Arrays map the same shaping over each element. Scalar fields are
// extracted at their @from path and coerced; resource-typed fields
// trigger a full nested resolution whose failure nulls only that field;
// value-type fields recurse in memory. Field transforms rewrite single
// values, type-level transforms replace the whole shaped tree.
//
// # Variable resolution asymmetry
//
// Top-level query arguments referencing an unknown variable fail the
// operation; nested resource arguments silently drop unresolved
// references. Both paths go through resolveArgs, parameterised by
// strictness, so the asymmetry lives in exactly one place.
package executor
