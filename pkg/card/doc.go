// Package card converts characters into the two export payloads: the
// chara_card_v3 interchange schema understood by third-party tools, and the
// full-fidelity swelldreams envelope used by native exports. Both
// conversions are pure: they read a character snapshot and produce a fresh
// value, degrading missing optional fields to documented defaults rather
// than failing.
package card
