package config

import "fmt"

type Config interface {
	EnvConfig
	CorsConfig
	SecurityConfig
	DatabaseConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetStorage() StorageType
	GetDataFolder() string
	GetSeedData() bool
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Security
	Database
}

// New builds the process configuration from the environment.
func New() (Config, error) {
	db, err := LoadDatabase()
	if err != nil {
		return nil, fmt.Errorf("[config.New] database settings: %w", err)
	}
	security := Security{}
	if err := security.Validate(); err != nil {
		return nil, fmt.Errorf("[config.New] security settings: %w", err)
	}
	return mainConfig{
		Cors:     NewCors(),
		Security: security,
		Database: db,
	}, nil
}
