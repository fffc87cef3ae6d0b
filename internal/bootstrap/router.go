package bootstrap

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	httpapi "github.com/ms-planner/planner-backend/internal/api/http"
	"github.com/ms-planner/planner-backend/internal/api/http/middleware"
	"github.com/ms-planner/planner-backend/internal/calendar"
	"github.com/ms-planner/planner-backend/internal/clients"
	"github.com/ms-planner/planner-backend/internal/people"
	"github.com/ms-planner/planner-backend/internal/projects"
	"github.com/ms-planner/planner-backend/internal/roleplans"
	syncjob "github.com/ms-planner/planner-backend/internal/sync"
	"github.com/ms-planner/planner-backend/internal/tenants"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	TenantID    string
	DB          *pgxpool.Pool
	Redis       *redis.Client // nil disables the calendar cache
	SyncService *syncjob.Service

	CalendarMonthsPast   int
	CalendarMonthsFuture int
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default())
	r.Use(middleware.RequestID())

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB, dep.Redis)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api/v1")

	tenantRepo := tenants.NewRepo(dep.DB)
	clientRepo := clients.NewRepo(dep.DB)
	projectRepo := projects.NewRepo(dep.DB)
	personRepo := people.NewRepo(dep.DB)
	rolePlanRepo := roleplans.NewRepo(dep.DB)

	var viewCache *calendar.Cache
	if dep.Redis != nil {
		viewCache = calendar.NewCache(dep.Redis)
	}

	tenants.Register(api.Group("/tenants"), tenantRepo)
	clients.Register(api.Group("/clients"), clientRepo, dep.TenantID)
	people.Register(api.Group("/people"), personRepo, dep.TenantID)

	projectsGroup := api.Group("/projects")
	projects.Register(projectsGroup, projectRepo, dep.TenantID)
	roleplans.RegisterProjectSubroutes(projectsGroup, rolePlanRepo, dep.TenantID)

	// roleplans.Register takes the cache as an interface; a typed nil
	// pointer would dodge its nil check.
	if viewCache != nil {
		roleplans.Register(api.Group("/roleplans"), rolePlanRepo, projectRepo, viewCache, dep.TenantID)
	} else {
		roleplans.Register(api.Group("/roleplans"), rolePlanRepo, projectRepo, nil, dep.TenantID)
	}

	calendarSvc := calendar.NewService(personRepo, rolePlanRepo, dep.CalendarMonthsPast, dep.CalendarMonthsFuture)
	calendar.Register(api.Group("/calendar"), calendarSvc, viewCache, dep.TenantID)

	if dep.SyncService != nil {
		syncjob.Register(api.Group("/sync"), dep.SyncService)
	}

	return r
}
