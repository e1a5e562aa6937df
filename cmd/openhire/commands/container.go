package commands

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/openhire/openhire/pkg/board/application/applicationhttp"
	"github.com/openhire/openhire/pkg/board/application/applicationinfra"
	"github.com/openhire/openhire/pkg/board/application/applicationsrv"
	"github.com/openhire/openhire/pkg/board/category/categoryhttp"
	"github.com/openhire/openhire/pkg/board/category/categoryinfra"
	"github.com/openhire/openhire/pkg/board/category/categorysrv"
	"github.com/openhire/openhire/pkg/board/job/jobhttp"
	"github.com/openhire/openhire/pkg/board/job/jobinfra"
	"github.com/openhire/openhire/pkg/board/job/jobsrv"
	"github.com/openhire/openhire/pkg/config"
	"github.com/openhire/openhire/pkg/fsx"
	"github.com/openhire/openhire/pkg/fsx/fsxlocal"
	"github.com/openhire/openhire/pkg/fsx/fsxs3"
	"github.com/openhire/openhire/pkg/health"
	"github.com/openhire/openhire/pkg/iam/auth"
	"github.com/openhire/openhire/pkg/iam/auth/authhttp"
	"github.com/openhire/openhire/pkg/iam/auth/authinfra"
	"github.com/openhire/openhire/pkg/iam/auth/authsrv"
	"github.com/openhire/openhire/pkg/iam/user/userhttp"
	"github.com/openhire/openhire/pkg/iam/user/userinfra"
	"github.com/openhire/openhire/pkg/iam/user/usersrv"
	"github.com/openhire/openhire/pkg/logx"
	"github.com/openhire/openhire/pkg/metrics"
	"github.com/openhire/openhire/pkg/notifx"
	"github.com/openhire/openhire/pkg/notifx/notifxconsole"
	"github.com/openhire/openhire/pkg/notifx/notifxses"
	"github.com/openhire/openhire/pkg/notify"
	"github.com/openhire/openhire/pkg/taskx"
	"github.com/openhire/openhire/pkg/taskx/taskxredis"
)

// Container is the composition root. It owns shared infrastructure and
// the wired module services and handlers.
type Container struct {
	Config *config.Config

	DB         *sqlx.DB
	Redis      *redis.Client
	FileSystem fsx.FileSystem
	Mail       *notifx.Client
	Worker     *taskx.Client
	Metrics    *metrics.Metrics
	Health     *health.Checker

	Middleware  *auth.TokenMiddleware
	AuthService *authsrv.AuthService

	AuthHandlers        *authhttp.Handlers
	UserHandlers        *userhttp.Handlers
	CategoryHandlers    *categoryhttp.Handlers
	JobHandlers         *jobhttp.Handlers
	ApplicationHandlers *applicationhttp.Handlers
}

// NewContainer connects the infrastructure and wires every module.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg}

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	c.DB = db

	c.Redis = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := c.Redis.Ping(ctx).Err(); err != nil {
		c.Cleanup()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	if err := c.initStorage(ctx); err != nil {
		c.Cleanup()
		return nil, err
	}
	if err := c.initMail(ctx); err != nil {
		c.Cleanup()
		return nil, err
	}

	c.Metrics = metrics.New()
	c.Health = health.NewChecker(c.DB, c.Redis, c.FileSystem)

	c.initWorker()
	c.initModules()

	return c, nil
}

func (c *Container) initStorage(ctx context.Context) error {
	switch c.Config.Storage.Mode {
	case "s3":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(c.Config.Storage.S3Region))
		if err != nil {
			return fmt.Errorf("load aws config: %w", err)
		}
		c.FileSystem = fsxs3.NewS3FileSystem(s3.NewFromConfig(awsCfg), c.Config.Storage.S3Bucket, "")
		logx.Infof("storage: s3 bucket %s (%s)", c.Config.Storage.S3Bucket, c.Config.Storage.S3Region)

	case "local":
		local, err := fsxlocal.NewLocalFileSystem(c.Config.Storage.LocalDir)
		if err != nil {
			return fmt.Errorf("init local storage: %w", err)
		}
		c.FileSystem = local
		logx.Infof("storage: local dir %s", c.Config.Storage.LocalDir)

	default:
		return fmt.Errorf("unknown STORAGE_MODE %q (use local or s3)", c.Config.Storage.Mode)
	}
	return nil
}

func (c *Container) initMail(ctx context.Context) error {
	var provider notifx.EmailSender

	switch c.Config.Email.Provider {
	case "ses":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(c.Config.Email.AWSRegion))
		if err != nil {
			return fmt.Errorf("load aws config: %w", err)
		}
		provider = notifxses.NewSESProvider(ses.NewFromConfig(awsCfg), c.Config.Email.FromAddress)

	case "console":
		provider = notifxconsole.NewConsoleProvider()

	default:
		return fmt.Errorf("unknown EMAIL_PROVIDER %q (use console or ses)", c.Config.Email.Provider)
	}

	c.Mail = notifx.NewClient(provider, c.Config.Email.FromAddress)
	if err := notify.RegisterTemplates(c.Mail); err != nil {
		return fmt.Errorf("register email templates: %w", err)
	}
	return nil
}

func (c *Container) initWorker() {
	queue := taskxredis.NewRedisQueue(c.Redis)
	jobs := c.Config.Jobs

	c.Worker = taskx.NewClient(queue,
		taskx.WithQueues(jobs.Queues...),
		taskx.WithConcurrency(jobs.Concurrency),
		taskx.WithPollInterval(jobs.PollInterval),
		taskx.WithDequeueTimeout(jobs.DequeueTimeout),
		taskx.WithRetryDelay(jobs.RetryDelay),
		taskx.WithShutdownTimeout(jobs.ShutdownTimeout),
	)
	notify.RegisterHandlers(c.Worker, c.Mail)
}

func (c *Container) initModules() {
	cfg := c.Config
	audit := authinfra.NewLogxAuditService()

	jwtService := auth.NewJWTService(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.RefreshTokenTTL,
		cfg.Auth.Issuer,
	)
	c.Middleware = auth.NewAuthMiddleware(jwtService)

	userRepo := userinfra.NewPostgresRepository(c.DB)
	tokenRepo := authinfra.NewPostgresTokenRepository(c.DB)
	categoryRepo := categoryinfra.NewPostgresRepository(c.DB)
	jobRepo := jobinfra.NewPostgresRepository(c.DB)
	applicationRepo := applicationinfra.NewPostgresRepository(c.DB)
	eventRepo := applicationinfra.NewPostgresEventRepository(c.DB)

	userService := usersrv.NewUserService(userRepo, audit, cfg.Auth.BcryptCost)
	authService := authsrv.NewAuthService(userRepo, tokenRepo, jwtService, audit)
	c.AuthService = authService
	categoryService := categorysrv.NewCategoryService(categoryRepo)
	jobService := jobsrv.NewJobService(jobRepo, categoryRepo, c.Metrics)
	applicationService := applicationsrv.NewApplicationService(
		applicationRepo, eventRepo, jobRepo, userRepo,
		c.FileSystem, c.Worker, c.Metrics,
		cfg.Storage.MaxResumeSize,
	)

	c.AuthHandlers = authhttp.NewHandlers(authService)
	c.UserHandlers = userhttp.NewHandlers(userService, authService)
	c.CategoryHandlers = categoryhttp.NewHandlers(categoryService)
	c.JobHandlers = jobhttp.NewHandlers(jobService)
	c.ApplicationHandlers = applicationhttp.NewHandlers(applicationService)
}

// Cleanup closes the connections the container opened. Safe to call on a
// partially built container.
func (c *Container) Cleanup() {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logx.WithError(err).Error("closing redis client")
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			logx.WithError(err).Error("closing database")
		}
	}
}
