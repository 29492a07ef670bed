package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type DatabaseConfig interface {
	GetDatabaseDSN() string
}

// Database holds the PostgreSQL connection settings.
type Database struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name     string `envconfig:"DB_NAME" default:"yoga"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
}

var _ DatabaseConfig = Database{}

func LoadDatabase() (Database, error) {
	var db Database
	if err := envconfig.Process("", &db); err != nil {
		return Database{}, err
	}
	return db, nil
}

func (d Database) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}
