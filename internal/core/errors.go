package core

import (
	"fmt"
)

// InputError means the request itself was unusable: missing document_id,
// or no text, file, or stored path to resolve. Maps to HTTP 400 and is
// never worth retrying.
type InputError struct {
	Msg  string
	Hint string
}

func (e *InputError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s (%s)", e.Msg, e.Hint)
	}
	return e.Msg
}

// UpstreamError means a dependency call failed: object storage or the
// embedding endpoint returned a non-success status. Status and Body carry
// whatever the upstream reported, for diagnostics. Safe to retry the whole
// ingestion from the client side.
type UpstreamError struct {
	Service string // "s3", "embeddings", "llm"
	Status  int    // 0 when the failure happened before a response
	Body    string
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s call failed: status %d: %s", e.Service, e.Status, e.Body)
	}
	return fmt.Sprintf("%s call failed: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// PersistError means a delete or insert against the chunk store failed.
// Fatal for the current run; the idempotent delete-first design makes a
// full re-run safe.
type PersistError struct {
	Op  string // "delete_chunks", "insert_chunks", ...
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persistence failed during %s: %v", e.Op, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }
