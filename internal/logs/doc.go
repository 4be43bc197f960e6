// Package logs reads byebye's dated log files for the CLI: the newest file in
// the log directory, its last lines, and new lines as they are appended.
package logs
