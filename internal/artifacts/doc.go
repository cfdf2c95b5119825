// Package artifacts synthesizes the small wrapper files that do not exist
// verbatim in an extension's source tree: the entry-point wrapper, the
// runtime manifest, the composed application entry file and the fallback
// license.
//
// Content is produced by pure functions that never touch the filesystem;
// Generator.Write is the only place files are created. The manifest is
// parsed as JSON data and re-indented, never evaluated.
package artifacts
