package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	portEnvVar     = "PORT"
	appNameVar     = "APP_NAME"
	folderEnvVar   = "DATA_FOLDER"
	logLevelEnvVar = "LOG_LEVEL"
	storageEnvVar  = "STORAGE"
	seedEnvVar     = "SEED_DATA"
)

// StorageType selects the entity store backend.
type StorageType string

const (
	StorageMemory   StorageType = "memory"
	StoragePostgres StorageType = "postgres"
	StorageBadger   StorageType = "badger"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Yoga Studio")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelEnvVar, "info")
}

// GetStorage returns the configured backend, falling back to memory for unknown values.
func (EnvVars) GetStorage() StorageType {
	switch s := StorageType(strings.ToLower(GetEnv(storageEnvVar, string(StorageMemory)))); s {
	case StoragePostgres, StorageBadger:
		return s
	default:
		return StorageMemory
	}
}

// GetDataFolder is where the badger backend keeps its files.
func (EnvVars) GetDataFolder() string {
	return GetEnv(folderEnvVar, "./data")
}

func (e EnvVars) GetSeedData() bool {
	seed, err := strconv.ParseBool(GetEnv(seedEnvVar, "false"))
	if err != nil {
		return false
	}
	return seed
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
