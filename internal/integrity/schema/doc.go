// Package schema provides declarative structural validation of save
// payloads.
//
// A Descriptor is an ordered table of field rules walked against a
// decoded JSON document. Validation is pure: it never mutates the
// candidate document, never throws on partially-formed input, and
// collects findings into a Result instead of returning errors. Adding a
// validation rule for a new field means adding one table entry, not
// touching load-path call sites.
package schema
