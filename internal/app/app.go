// Package app provides application-level wiring and dependency injection
// for the directory engine following hexagonal architecture.
package app

import (
	"database/sql"
	"log/slog"

	"dirgate/internal/api"
	"dirgate/internal/config"
	"dirgate/internal/db/repository"
	"dirgate/internal/domain"
	"dirgate/internal/service"
)

// Deps holds the external dependencies that main() must provide.
// These are things the app package cannot (or should not) create itself:
// database handles, config, and the logger.
type Deps struct {
	Cfg     *config.Config
	WriteDB *sql.DB
	ReadDB  *sql.DB
	Logger  *slog.Logger
}

// Services groups all service pointers that the API handler and router need.
type Services struct {
	Auth      *service.AuthService
	Authz     *service.AuthorizationService
	Users     *service.UserService
	Groups    *service.GroupService
	Computers *service.ComputerService
	OUs       *service.OUService
	Stats     *service.StatsService
}

// App holds the fully-wired application: services, the audit recorder, the
// janitor, and the repositories needed for router setup.
type App struct {
	Services Services
	Recorder *service.Recorder
	Janitor  *service.Janitor
	UserRepo *repository.UserRepo
}

// New wires all repositories and services from the provided deps.
func New(deps Deps) *App {
	cfg := deps.Cfg

	// === Repositories ===
	userRepo := repository.NewUserRepo(deps.WriteDB, deps.ReadDB)
	groupRepo := repository.NewGroupRepo(deps.WriteDB, deps.ReadDB)
	computerRepo := repository.NewComputerRepo(deps.WriteDB, deps.ReadDB)
	ouRepo := repository.NewOURepo(deps.WriteDB, deps.ReadDB)
	auditRepo := repository.NewAuditRepo(deps.WriteDB, deps.ReadDB)
	statsRepo := repository.NewStatsRepo(deps.ReadDB)

	// === Audit recorder ===
	var recorder *service.Recorder
	if cfg.Audit.Async {
		recorder = service.NewAsyncRecorder(auditRepo, deps.Logger.With("component", "audit"), cfg.Audit.BufferSize)
	} else {
		recorder = service.NewRecorder(auditRepo, deps.Logger.With("component", "audit"))
	}

	// === Policy ===
	rules := []domain.PasswordRule{
		domain.MinLengthRule(cfg.Password.MinLength),
		domain.UppercaseRule(),
		domain.DigitRule(),
	}
	credentials := service.NewCredentialStore(userRepo, 0)
	lockout := service.NewLockout(userRepo, cfg.Lockout.Threshold, cfg.Lockout.Duration)

	// === Services ===
	svcs := Services{
		Auth:      service.NewAuthService(userRepo, credentials, lockout, rules, recorder, cfg.JWTSecret, cfg.SessionTTL),
		Authz:     service.NewAuthorizationService(userRepo, groupRepo),
		Users:     service.NewUserService(userRepo, groupRepo, credentials, rules, recorder),
		Groups:    service.NewGroupService(groupRepo, userRepo, recorder),
		Computers: service.NewComputerService(computerRepo, ouRepo, recorder),
		OUs:       service.NewOUService(ouRepo, computerRepo, recorder),
		Stats:     service.NewStatsService(statsRepo),
	}

	janitor := service.NewJanitor(userRepo, computerRepo, cfg.StaleComputerAge, deps.Logger.With("component", "janitor"))

	return &App{
		Services: svcs,
		Recorder: recorder,
		Janitor:  janitor,
		UserRepo: userRepo,
	}
}

// Handlers bundles the wired services for the HTTP layer.
func (a *App) Handlers(log *slog.Logger) *api.Handlers {
	return &api.Handlers{
		Auth:      a.Services.Auth,
		Authz:     a.Services.Authz,
		Users:     a.Services.Users,
		Groups:    a.Services.Groups,
		Computers: a.Services.Computers,
		OUs:       a.Services.OUs,
		Audit:     a.Recorder,
		Stats:     a.Services.Stats,
		Log:       log,
	}
}
