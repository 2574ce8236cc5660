package app

import (
	"go-leave/internal/balance"
	"go-leave/internal/calendar"
	"go-leave/internal/comment"
	"go-leave/internal/department"
	"go-leave/internal/dispatch"
	"go-leave/internal/leave"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/notification"
	"go-leave/internal/person"
	"go-leave/internal/rbac"
	"go-leave/internal/rbac/infra"
	"go-leave/internal/shared/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type leaveModule struct {
	service leave.Service
	org     department.Service
}

func buildLeaveModule(infra *Infra, cfg *config.Config) leaveModule {
	// --- Repositories ---
	personRepo := person.NewRepository(infra.GormDB)
	departmentRepo := department.NewRepository(infra.GormDB)
	commentRepo := comment.NewRepository(infra.GormDB)
	leaveRepo := leave.NewRepository(infra.GormDB)
	calendarRepo := calendar.NewRepository(infra.GormDB)
	outboxRepo := kafka.NewOutboxRepository(infra.SQLDB)

	// --- Organization ---
	departmentService := department.NewService(departmentRepo, infra.Redis, cfg.Redis.OrgTTL)

	// --- Side effects ---
	notifier := notification.NewService(personRepo, departmentService, outboxRepo, notification.Config{
		ApplicationURL:     cfg.Leave.ApplicationURL,
		TechnicalRecipient: cfg.Leave.TechnicalRecipient,
	})
	recalculator := balance.NewRecalculator(outboxRepo)
	syncer := calendar.NewSyncer(calendar.NoopProvider{}, calendarRepo)
	dispatcher := dispatch.NewDispatcher(notifier, recalculator, syncer)

	leaveService := leave.NewService(
		infra.SQLDB,
		leaveRepo,
		commentRepo,
		personRepo,
		departmentService,
		dispatcher,
		leave.WithLogger(zap.L()),
	)

	return leaveModule{service: leaveService, org: departmentService}
}

func registerModules(router *gin.Engine, infraConn *Infra, cfg *config.Config) error {
	module := buildLeaveModule(infraConn, cfg)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer("")
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbac.NewRepository(infraConn.GormDB), enforcer)

	// --- Handlers ---
	leaveHandler := leave.NewHandler(module.service, infraConn.Redis)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		leave.RegisterRoutes(api, leaveHandler, rbacService, infraConn.Redis, leave.RouteConfig{
			JWTSecret:      cfg.JWT.Secret,
			RateLimit:      rate.Limit(cfg.Server.RateLimit),
			RateBurst:      cfg.Server.RateBurst,
			IdempotencyTTL: cfg.Redis.IdempTTL,
		})
	}

	return nil
}
