// Package executor runs submitted code in an isolated, time-boxed
// subprocess and reports the outcome with output metrics.
//
// # Lifecycle
//
// Every request moves through a fixed state machine:
//
//	PENDING -> WRITING_SOURCE -> RUNNING -> {COMPLETED | TIMED_OUT | FAILED} -> CLEANED_UP
//
// CLEANED_UP is reached on every path, including failures while writing the
// scratch file or spawning the interpreter. The scratch file never outlives
// the request.
//
// # Isolation
//
// Each request gets a collision-free scratch file and a child process in its
// own process group, so the timeout kill reaches the interpreter and
// anything it spawned. Concurrent requests share only the filesystem
// namespace; admission control and resource ceilings are the host's job.
//
// # Output
//
// Stdout and stderr are captured separately against one combined byte
// budget. Overflow is discarded and flagged as truncation, never an error.
// Output size and a token estimate are reported for every outcome.
package executor
