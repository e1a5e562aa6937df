package commands

import (
	"context"
	"fmt"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/openhire/openhire/pkg/asyncx"
	"github.com/openhire/openhire/pkg/config"
	"github.com/openhire/openhire/pkg/fsx"
	"github.com/openhire/openhire/pkg/fsx/fsxlocal"
	"github.com/openhire/openhire/pkg/fsx/fsxs3"
)

const defaultJWTSecret = "dev-secret-change-me"

func newCheckupCommand() *cobra.Command {
	var skipConnect bool

	cmd := &cobra.Command{
		Use:   "checkup",
		Short: "Verify the configuration and reachability of every dependency",
		Long: `Checkup validates the environment configuration and probes the
database, Redis and file storage. Run it before deploying to catch
misconfiguration early.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckup(cmd, skipConnect)
		},
	}
	cmd.Flags().BoolVar(&skipConnect, "config-only", false, "skip connectivity probes")
	return cmd
}

type checkResult struct {
	name string
	err  error
}

func runCheckup(cmd *cobra.Command, configOnly bool) error {
	cfg := config.Load()

	results := configChecks(cfg)

	if !configOnly {
		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()
		results = append(results, connectivityChecks(ctx, cfg)...)
	}

	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			cmd.Printf("FAIL  %-20s %v\n", r.name, r.err)
		} else {
			cmd.Printf("ok    %s\n", r.name)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(results))
	}
	cmd.Printf("all %d checks passed\n", len(results))
	return nil
}

func configChecks(cfg *config.Config) []checkResult {
	production := cfg.App.Env == "production"
	var results []checkResult

	add := func(name string, err error) {
		results = append(results, checkResult{name: name, err: err})
	}

	add("app.env", func() error {
		switch cfg.App.Env {
		case "development", "staging", "production":
			return nil
		}
		return fmt.Errorf("unknown APP_ENV %q", cfg.App.Env)
	}())

	add("auth.jwt_secret", func() error {
		if production && cfg.Auth.JWTSecret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET still set to the development default")
		}
		if production && len(cfg.Auth.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET shorter than 32 bytes")
		}
		return nil
	}())

	add("auth.bcrypt_cost", func() error {
		if cfg.Auth.BcryptCost < 10 || cfg.Auth.BcryptCost > 16 {
			return fmt.Errorf("BCRYPT_COST %d outside 10..16", cfg.Auth.BcryptCost)
		}
		return nil
	}())

	add("storage.mode", func() error {
		switch cfg.Storage.Mode {
		case "local":
			if production {
				return fmt.Errorf("local storage configured in production")
			}
			return nil
		case "s3":
			if cfg.Storage.S3Bucket == "" {
				return fmt.Errorf("STORAGE_MODE=s3 but S3_BUCKET is empty")
			}
			return nil
		}
		return fmt.Errorf("unknown STORAGE_MODE %q", cfg.Storage.Mode)
	}())

	add("email.provider", func() error {
		switch cfg.Email.Provider {
		case "console":
			if production {
				return fmt.Errorf("console email provider configured in production")
			}
		case "ses":
			if cfg.Email.FromAddress == "" {
				return fmt.Errorf("EMAIL_PROVIDER=ses but EMAIL_FROM_ADDRESS is empty")
			}
		default:
			return fmt.Errorf("unknown EMAIL_PROVIDER %q", cfg.Email.Provider)
		}
		return nil
	}())

	add("server.body_limit", func() error {
		// Multipart overhead means the body limit must exceed the resume cap.
		if int64(cfg.Server.BodyLimit) <= cfg.Storage.MaxResumeSize {
			return fmt.Errorf("BODY_LIMIT %d not above MAX_RESUME_SIZE %d",
				cfg.Server.BodyLimit, cfg.Storage.MaxResumeSize)
		}
		return nil
	}())

	return results
}

func connectivityChecks(ctx context.Context, cfg *config.Config) []checkResult {
	probes := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"database", func(ctx context.Context) error { return probeDatabase(ctx, cfg) }},
		{"redis", func(ctx context.Context) error { return probeRedis(ctx, cfg) }},
		{"storage", func(ctx context.Context) error { return probeStorage(ctx, cfg) }},
	}

	fns := make([]func(context.Context) (string, error), len(probes))
	for i, p := range probes {
		p := p
		fns[i] = func(ctx context.Context) (string, error) {
			return p.name, p.fn(ctx)
		}
	}

	settled := asyncx.AllSettled(ctx, fns...)
	results := make([]checkResult, len(settled))
	for i, r := range settled {
		results[i] = checkResult{name: probes[i].name, err: r.Err}
	}
	return results
}

func probeDatabase(ctx context.Context, cfg *config.Config) error {
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer db.Close()
	return db.PingContext(ctx)
}

func probeRedis(ctx context.Context, cfg *config.Config) error {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	return rdb.Ping(ctx).Err()
}

func probeStorage(ctx context.Context, cfg *config.Config) error {
	var storage fsx.FileSystem

	switch cfg.Storage.Mode {
	case "s3":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.Storage.S3Region))
		if err != nil {
			return err
		}
		storage = fsxs3.NewS3FileSystem(s3.NewFromConfig(awsCfg), cfg.Storage.S3Bucket, "")
	case "local":
		local, err := fsxlocal.NewLocalFileSystem(cfg.Storage.LocalDir)
		if err != nil {
			return err
		}
		storage = local
	default:
		return fmt.Errorf("unknown STORAGE_MODE %q", cfg.Storage.Mode)
	}

	probe := ".checkup-probe"
	if err := storage.WriteFile(ctx, probe, []byte("ok")); err != nil {
		return err
	}
	return storage.DeleteFile(ctx, probe)
}
