// Package faults carries the error markers and operation context shared by the
// catalog, document and thumbnail packages.
//
// Errors are classified by wrapping one of the exported sentinel markers so
// callers can branch with errors.Is while the message still names the
// component, the operation and any path that was involved. Context helpers tag
// a context.Context with the batch correlation ID, the operation name and the
// record position so log lines emitted deep inside a batch can be traced back
// to the command that started it.
package faults
