// Package process runs external commands and captures their exit status and
// combined output.
package process
