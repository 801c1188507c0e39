// Package types defines the character data model (characters, stories,
// constant reminders, flows), the Library storage interface, and the
// standard error values shared across cardpress packages.
package types
