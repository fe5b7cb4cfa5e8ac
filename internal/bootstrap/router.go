package bootstrap

import (
	httpapi "github.com/atelierhq/atelier-backend/internal/api/http"
	"github.com/atelierhq/atelier-backend/internal/api/http/middleware"
	"github.com/atelierhq/atelier-backend/internal/auth"
	"github.com/atelierhq/atelier-backend/internal/projects"
	qnhttp "github.com/atelierhq/atelier-backend/internal/questionnaire/http"
	"github.com/atelierhq/atelier-backend/internal/questionnaire/repository"
	"github.com/atelierhq/atelier-backend/internal/questionnaire/service"
	"github.com/atelierhq/atelier-backend/internal/users"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type RouterDeps struct {
	ServiceName   string
	Version       string
	DB            *pgxpool.Pool
	Redis         *redis.Client
	SyncPerMinute int
}

// Services groups the questionnaire services so main can hand them to the
// cron scheduler as well.
type Services struct {
	Templates *service.TemplateService
	Instances *service.InstanceService
	Sync      *service.SyncService
}

func BuildRouter(dep RouterDeps) (*gin.Engine, *Services) {
	r := gin.Default()
	r.Use(cors.Default())
	r.Use(middleware.RequestIDMiddleware())

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB, dep.Redis)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api/v1")

	userRepo := users.NewRepo(dep.DB)
	projectRepo := projects.NewRepo(dep.DB)
	templateRepo := repository.NewTemplateRepository(dep.DB)
	instanceRepo := repository.NewProjectInstanceRepository(dep.DB)
	reportRepo := repository.NewReportRepository(dep.Redis)

	svcs := &Services{
		Templates: service.NewTemplateService(templateRepo),
		Instances: service.NewInstanceService(templateRepo, instanceRepo),
		Sync:      service.NewSyncService(templateRepo, instanceRepo, reportRepo),
	}

	api.Use(auth.WithUser(userRepo))

	projectsGroup := api.Group("/projects")
	projects.Register(projectsGroup, projectRepo)

	qnHandler := qnhttp.New(svcs.Templates, svcs.Instances, svcs.Sync)
	qnHandler.RegisterProjectsSubroutes(projectsGroup)

	templatesGroup := api.Group("/templates")
	qnHandler.RegisterTemplates(templatesGroup, middleware.SyncRateLimit(dep.SyncPerMinute))

	return r, svcs
}
