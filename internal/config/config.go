package config

import (
	"github.com/RG-1903/Urban-Drive-sub000/pkg/config"
)

// ServiceConfig holds all configuration for the rental wizard service.
type ServiceConfig struct {
	Port               string
	AppEnv             string
	DBConfig           config.DatabaseConfig
	JWTConfig          config.JWTConfig
	KafkaConfig        config.KafkaConfig
	CatalogBaseURL     string
	ReservationBaseURL string
}

// Load reads configuration from environment variables.
func Load() (*ServiceConfig, error) {
	v, err := config.Load("WIZARD")
	if err != nil {
		return nil, err
	}

	v.SetDefault("CATALOG_URL", "http://localhost:8081")
	v.SetDefault("RESERVATION_URL", "http://localhost:8082")

	return &ServiceConfig{
		Port:               config.GetServicePort(v, "SERVICE_PORT"),
		AppEnv:             config.GetAppEnv(v),
		DBConfig:           config.LoadDatabaseConfig(v, "DB_NAME"),
		JWTConfig:          config.LoadJWTConfig(v),
		KafkaConfig:        config.LoadKafkaConfig(v),
		CatalogBaseURL:     v.GetString("CATALOG_URL"),
		ReservationBaseURL: v.GetString("RESERVATION_URL"),
	}, nil
}
