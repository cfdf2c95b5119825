// Package main hosts the extpack CLI entrypoint and command graph.
//
// Running extpack without a subcommand performs one packaging build of the
// project in the current directory (or --root) and exits non-zero when the
// build fails. The remaining commands inspect what builds produced: the
// archive contents, the build history ledger and the effective
// configuration.
//
// Keep this package thin: build behaviour lives in internal/pipeline and its
// stages; commands here only resolve configuration, construct the logger and
// render results.
package main
