// Package preflight provides readiness checks for the filesystem locations a
// build depends on.
//
// The orchestrator runs RunAll before touching the output directory; the
// first failed check fails the preflight stage so a doomed build never
// empties the previous output. Checks are gated by the [preflight] config
// section.
package preflight
