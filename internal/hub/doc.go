// Package hub issues door commands against the My Soft Systems hub.
//
// The hub exposes a plain HTTP admin endpoint: one GET per command, no
// body, no authentication. Each of the four door actions maps to a fixed
// pair of boolean path segments. The dispatcher classifies every attempt
// into a small outcome taxonomy and keeps the last result per target so
// the UI can show it next to the button that triggered it.
package hub
