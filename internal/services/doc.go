// Package services defines shared utilities consumed by the build stages.
//
// Key responsibilities:
//   - Context helpers that stamp build identifiers and stage names for
//     logging and history records.
//   - Structured error markers plus the Wrap helper that classify failures
//     (filesystem, serialization, archive) without hiding the original error.
//
// Use these helpers when wiring new stage logic so failure reporting stays
// uniform across the pipeline.
package services
