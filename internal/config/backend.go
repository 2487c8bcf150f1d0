package config

// ConfigBackend abstracts where settings live per platform. macOS keeps
// them in UserDefaults (via the `defaults` CLI); elsewhere a JSON file
// under the XDG config dir serves the same role.
type ConfigBackend interface {
	GetString(key string) (val string, ok bool, err error)
	GetInt(key string) (val int, ok bool, err error)
	SetString(key, val string) error
	SetInt(key string, val int) error
	Delete(key string) error
}
