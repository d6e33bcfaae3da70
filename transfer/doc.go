// Package transfer runs the packaging pipeline: a file or directory is encoded into a container
// staged in a temporary file, then published to its destination, optionally re-encoded as base64
// or basE91 text. A run moves through idle, staging, encoding and finalizing to done, and any IO
// failure on the way ends it in the failed state with a StageError. Nothing is retried.
package transfer
