// Package tools provides the process-execution primitives shared by fipsctl modules.
//
// Ownership boundary:
// - blocking command execution with captured output
//
// - non-blocking process spawn returning a caller-owned handle
package tools
