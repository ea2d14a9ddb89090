// Package recovery repairs corrupted save documents with safe defaults.
//
// Recovery is a best-effort safety net, not a correctness guarantee:
// recovered data is weaker evidence than a checksum-verified load, and
// callers must treat it as "acceptable to resume with" rather than
// "provably equal to what the player last saved". Repairs are
// single-pass and all-or-nothing: a corrupted field with no applicable
// strategy fails the whole attempt, so partial repairs are never
// silently applied.
package recovery
