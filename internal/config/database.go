package config

import (
	"time"

	"pubrepo-backend/internal/infrastructure/database"
)

// DatabasePoolConfig converts the env config into the pool config the
// database wrapper consumes.
func (c *Config) DatabasePoolConfig() *database.DBConfig {
	return &database.DBConfig{
		Host:              c.Database.Host,
		Port:              c.Database.Port,
		Username:          c.Database.User,
		Password:          c.Database.Password,
		DBName:            c.Database.Database,
		MaxConns:          int32(c.Database.MaxConns),
		MinConns:          int32(c.Database.MinConns),
		MaxConnLifetime:   5 * time.Minute,
		MaxConnIdleTime:   time.Minute,
		HealthCheckPeriod: time.Minute,
		MaxRetries:        5,
		RetryDelay:        time.Second,
		ConnectTimeout:    10 * time.Second,
	}
}
