// Package errors provides the classified error primitives used across apidoc.
//
// A ClassifiedError carries a category (what part of the pipeline failed), a
// severity, a retry hint and a small context map. Page renders use it to report
// the conditions that abort a single page (bad heading depth, malformed
// stability notice, pre-existing <h6>) together with the offending token, and
// the CLI adapter maps categories onto process exit codes.
//
// Example usage:
//
//	err := errors.HeadingError("inappropriate heading level").
//		WithContext("page", filename).
//		WithContext("token", tok.String()).
//		Build()
package errors
