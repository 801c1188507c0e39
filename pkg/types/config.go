package types

import "errors"

// Config holds backend selection and directory parameters for Library.Attach.
type Config struct {
	Backend   string `json:"backend" yaml:"backend"`
	DataDir   string `json:"data_dir" yaml:"data_dir"`
	ExportDir string `json:"export_dir" yaml:"export_dir"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// Export profile names. The two profiles are mutually exclusive: a card
// export carries the interchange chara_card_v3 payload, a native export
// carries the full-fidelity swelldreams envelope.
const (
	ProfileCard   = "card"
	ProfileNative = "native"
)

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
	ErrProfileUnknown = errors.New("unknown export profile")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel
// error from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	return nil
}

// ValidProfile reports whether name is a recognized export profile.
func ValidProfile(name string) bool {
	return name == ProfileCard || name == ProfileNative
}
