// Package config loads, normalizes, and validates extpack configuration data.
//
// It supplies the built-in project layout (source file set, manifest and page
// locations, output names), reads an optional TOML file, and resolves every
// relative path against the project root. The Config type is passed by
// reference into every build component; nothing in the build reads paths from
// package-level state.
//
// Always obtain settings through this package so downstream code receives
// absolute paths and clear validation errors.
package config
