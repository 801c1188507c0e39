package types

import "errors"

// Library is the storage interface for characters. A Library must be
// attached with a Config before use; Detach flushes state and releases
// resources. Implementations are safe for concurrent use.
type Library interface {
	Attach(config Config) error
	Detach() error

	// Save persists a character. A character without a CharacterID is
	// assigned one. Returns the stored character.
	Save(ch Character) (Character, error)

	// Get returns the character with the given id.
	Get(id string) (Character, error)

	// List returns all characters ordered by name.
	List() ([]Character, error)

	// Delete removes the character with the given id.
	Delete(id string) error
}

// Library errors.
var (
	ErrLibraryDetached = errors.New("library is detached")
	ErrAlreadyAttached = errors.New("library is already attached")
	ErrNotFound        = errors.New("character not found")
	ErrInvalidID       = errors.New("invalid character ID")
	ErrInvalidName     = errors.New("character name must not be empty")
)
