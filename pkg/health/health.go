// Package health probes the service's dependencies for the /health
// endpoint and the checkup command.
package health

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/openhire/openhire/pkg/fsx"
)

// Status of one dependency check.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

// Check is the result of probing one dependency.
type Check struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Error   string `json:"error,omitempty"`
	Latency string `json:"latency"`
}

// Report aggregates all dependency checks.
type Report struct {
	Status Status  `json:"status"`
	Checks []Check `json:"checks"`
}

// Healthy reports whether every check passed.
func (r Report) Healthy() bool { return r.Status == StatusHealthy }

// Checker probes the wired infrastructure.
type Checker struct {
	db      *sqlx.DB
	redis   *redis.Client
	storage fsx.FileSystem
}

// NewChecker wires the dependencies to probe. Any of them may be nil and
// is then skipped.
func NewChecker(db *sqlx.DB, rdb *redis.Client, storage fsx.FileSystem) *Checker {
	return &Checker{db: db, redis: rdb, storage: storage}
}

func run(name string, fn func() error) Check {
	start := time.Now()
	err := fn()
	c := Check{Name: name, Status: StatusHealthy, Latency: time.Since(start).Round(time.Millisecond).String()}
	if err != nil {
		c.Status = StatusUnhealthy
		c.Error = err.Error()
	}
	return c
}

// Run probes every wired dependency. includeStorage also writes and
// removes a probe object, which can be slow on S3.
func (c *Checker) Run(ctx context.Context, includeStorage bool) Report {
	var checks []Check

	if c.db != nil {
		checks = append(checks, run("database", func() error {
			return c.db.PingContext(ctx)
		}))
	}

	if c.redis != nil {
		checks = append(checks, run("redis", func() error {
			return c.redis.Ping(ctx).Err()
		}))
	}

	if includeStorage && c.storage != nil {
		checks = append(checks, run("storage", func() error {
			probe := ".health-probe"
			if err := c.storage.WriteFile(ctx, probe, []byte("ok")); err != nil {
				return err
			}
			return c.storage.DeleteFile(ctx, probe)
		}))
	}

	report := Report{Status: StatusHealthy, Checks: checks}
	for _, check := range checks {
		if check.Status != StatusHealthy {
			report.Status = StatusUnhealthy
			break
		}
	}
	return report
}
