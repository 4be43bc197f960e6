// Package preflight provides readiness checks for the directories and
// external services byebye depends on.
//
// The CLI "byebye status" command runs RunAll to display health. Each check
// is gated by configuration: an unset ntfy topic is reported as disabled
// rather than failed.
package preflight
