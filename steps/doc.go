// Package steps provides ready-made pipeline steps.
//
// Transforms:
//
//   - Uppercase: locale-aware upper casing of translatable text units
//   - PseudoTranslate: accent substitution that makes untranslated text easy to spot
//   - When: applies another transform to text units matching an expression
//
// Sources and sinks:
//
//   - SliceSource / CollectSink: events held in memory
//   - TextSource / TextSink: plain text, one text unit per line
//   - JSONLSource / JSONLSink: one event record per JSON line
//
// File sinks write to a temporary file next to the destination and rename it
// into place on Finish, so a failed run never clobbers an earlier output.
package steps
