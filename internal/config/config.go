package config

type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Catalog CatalogConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port int
}

type StorageConfig struct {
	DataDir string
}

// CatalogConfig points at an optional directory of catalog override
// files. Empty means the embedded catalog only.
type CatalogConfig struct {
	Dir string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server:  ServerConfig{Port: 4600},
		Storage: StorageConfig{DataDir: defaultDataDir()},
		Catalog: CatalogConfig{Dir: ""},
		Log:     LogConfig{Level: "info"},
	}
}

// Load reads configuration from the platform-native backend with
// environment variables on top.
//
// On macOS the backend is UserDefaults (domain: com.fieldkit.jobwalk).
// On Linux the backend is a JSON file at
// $XDG_CONFIG_HOME/jobwalk/config.json.
//
// Environment variables (JOBWALK_*) override backend values on all
// platforms.
func Load() (Config, error) {
	return loadWith(newPlatformBackend())
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()
	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}
