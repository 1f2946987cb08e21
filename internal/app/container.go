package app

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Brijesh59/kite/domain"
	"github.com/Brijesh59/kite/internal/config"
	httpx "github.com/Brijesh59/kite/internal/http"
	"github.com/Brijesh59/kite/internal/http/handlers"
	"github.com/Brijesh59/kite/internal/http/middleware"
	"github.com/Brijesh59/kite/internal/infrastructure/audit"
	"github.com/Brijesh59/kite/internal/infrastructure/auth"
	"github.com/Brijesh59/kite/internal/infrastructure/notifications"
	"github.com/Brijesh59/kite/internal/infrastructure/repositories"
	"github.com/Brijesh59/kite/internal/services"
)

// Container holds all dependencies
type Container struct {
	// Config
	Config *config.Config
	Logger *zap.Logger

	// Infrastructure
	DB          *gorm.DB
	RedisClient *redis.Client
	Registry    *prometheus.Registry
	Casbin      *auth.CasbinService

	// Repositories
	UserRepo       domain.UserRepository
	OTPRepo        domain.OTPRepository
	ResetTokenRepo domain.ResetTokenRepository
	SessionRepo    domain.SessionRepository
	ProfileRepo    domain.ProfileRepository

	// Services
	PasswordSvc domain.PasswordService
	TokenSvc    domain.TokenService
	Notifier    domain.Notifier
	Audit       domain.AuditLogger
	AuthSvc     domain.AuthService
	AdminSvc    domain.AdminService
	PolicySvc   domain.PolicyService
}

// NewContainer wires every component on top of an open database and Redis client.
// The database must already be migrated.
func NewContainer(cfg *config.Config, db *gorm.DB, rdb *redis.Client, log *zap.Logger) (*Container, error) {
	container := &Container{
		Config:      cfg,
		Logger:      log,
		DB:          db,
		RedisClient: rdb,
	}

	container.initMetrics()
	container.initRepositories()
	container.initServices()
	if err := container.initPolicies(); err != nil {
		return nil, err
	}

	return container, nil
}

func (c *Container) initMetrics() {
	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

func (c *Container) initRepositories() {
	c.UserRepo = repositories.NewUserRepository(c.DB)
	c.OTPRepo = repositories.NewOTPRepository(c.DB)
	c.ResetTokenRepo = repositories.NewResetTokenRepository(c.DB)
	c.ProfileRepo = repositories.NewProfileRepository(c.DB)
	c.SessionRepo = repositories.NewSessionRepository(c.RedisClient, c.Logger)
}

func (c *Container) initServices() {
	c.PasswordSvc = auth.NewPasswordService(c.Config.BcryptCost)
	c.TokenSvc = auth.NewJWTService(
		c.Config.JWTSecret,
		c.Config.JWTRefreshSecret,
		c.Config.AccessTTL,
		c.Config.RefreshTTL,
	)

	channels := notifications.Channels{
		SMSSender: notifications.NewTwilioService(
			c.Config.TwilioSID,
			c.Config.TwilioToken,
			c.Config.TwilioFrom,
			c.Logger,
		),
		EmailSender: notifications.NewSMTPService(notifications.SMTPConfig{
			Host:     c.Config.SMTPHost,
			Port:     c.Config.SMTPPort,
			Username: c.Config.SMTPUsername,
			Password: c.Config.SMTPPassword,
			From:     c.Config.SMTPFrom,
		}, c.Logger),
	}
	c.Notifier = notifications.NewNotifier(channels, c.Config.WebAppURL)
	c.Audit = audit.NewLogger(c.Logger, c.Registry)

	c.AuthSvc = services.NewAuthService(services.AuthDeps{
		Users:       c.UserRepo,
		OTPs:        c.OTPRepo,
		ResetTokens: c.ResetTokenRepo,
		Sessions:    c.SessionRepo,
		Passwords:   c.PasswordSvc,
		Tokens:      c.TokenSvc,
		Notifier:    c.Notifier,
		Audit:       c.Audit,
		Logger:      c.Logger,
	})
	c.AdminSvc = services.NewAdminService(c.UserRepo, c.SessionRepo, c.PasswordSvc, c.Audit, c.Logger)
}

func (c *Container) initPolicies() error {
	cas, err := auth.NewCasbinService(c.DB)
	if err != nil {
		return err
	}
	seeded, err := cas.SeedDefaults()
	if err != nil {
		return fmt.Errorf("failed to seed policies: %w", err)
	}
	if seeded {
		c.Logger.Info("casbin: seeded default policies")
	}

	c.Casbin = cas
	c.PolicySvc = services.NewPolicyService(cas.E)
	return nil
}

// Router builds the HTTP handler tree
func (c *Container) Router() (*gin.Engine, error) {
	if err := handlers.RegisterValidators(); err != nil {
		return nil, err
	}

	audiences := &middleware.AudienceResolver{
		AdminPanelURL: c.Config.AdminPanelURL,
		WebAppURL:     c.Config.WebAppURL,
		Secure:        c.Config.IsProduction(),
		AccessTTL:     c.Config.AccessTTL,
		RefreshTTL:    c.Config.RefreshTTL,
	}

	return httpx.BuildRouter(httpx.RouterDeps{
		Auth:     handlers.NewAuthHandlers(c.AuthSvc, c.ProfileRepo, audiences, c.Logger),
		Admin:    handlers.NewAdminHandlers(c.AdminSvc, c.Logger),
		Policies: handlers.NewPolicyHandlers(c.PolicySvc, c.Logger),
		AuthMW:   middleware.NewAuthMW(c.TokenSvc, audiences),
		PolicyMW: middleware.NewPolicyMW(c.PolicySvc, c.Logger),
		Metrics:  c.Registry,
		Logger:   c.Logger,
	}), nil
}

// Close closes all connections
func (c *Container) Close() error {
	var errs []error
	if c.RedisClient != nil {
		errs = append(errs, c.RedisClient.Close())
	}
	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err != nil {
			errs = append(errs, err)
		} else {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}
