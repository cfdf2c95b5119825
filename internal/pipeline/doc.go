// Package pipeline runs one packaging build from preflight to workspace
// teardown.
//
// Stages execute strictly in order on the calling goroutine:
//
//	preflight -> workspace -> generate -> assemble -> archive -> export -> cleanup
//
// The first failing stage stops the build and is reported as a *StageError.
// The Orchestrator is the single place where build errors are caught,
// logged and turned into a Result; components below it only wrap and
// return. A project-level file lock keeps two builds from sharing one
// workspace, and every build is recorded in the history ledger when enabled.
package pipeline
