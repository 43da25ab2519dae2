package health

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hellofresh/health-go/v5"
	"github.com/redis/go-redis/v9"
)

// Endpoints lists the backing services checked by /health. RedisClient is nil
// when rate limiting is disabled.
type Endpoints struct {
	DB          *sql.DB
	RedisClient *redis.Client
}

func NewHealthHandler(version string, endpoints *Endpoints) (*health.Health, error) {
	checks := []health.Config{
		{
			Name:      "postgres",
			Timeout:   3 * time.Second,
			SkipOnErr: false,
			Check: func(ctx context.Context) error {
				if endpoints.DB == nil {
					return errors.New("database is not initialized")
				}
				if err := endpoints.DB.PingContext(ctx); err != nil {
					return fmt.Errorf("failed to ping postgres: %w", err)
				}
				return nil
			},
		},
	}

	if endpoints.RedisClient != nil {
		checks = append(checks, health.Config{
			Name:    "redis",
			Timeout: 2 * time.Second,
			// Rate limiting fails open, so redis loss only degrades the service
			SkipOnErr: true,
			Check: func(ctx context.Context) error {
				if err := endpoints.RedisClient.Ping(ctx).Err(); err != nil {
					return fmt.Errorf("failed to ping redis: %w", err)
				}
				return nil
			},
		})
	}

	h, err := health.New(
		health.WithComponent(health.Component{
			Name:    "storefront",
			Version: version,
		}),
		health.WithSystemInfo(),
		health.WithChecks(checks...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create health instance: %w", err)
	}

	return h, nil
}
