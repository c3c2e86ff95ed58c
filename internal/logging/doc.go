// Package logging provides a unified logging interface for the estimation
// jobs and the command-line front end. It abstracts the underlying logging
// implementation (zerolog by default) so components log structured fields
// without depending on a specific backend.
package logging
