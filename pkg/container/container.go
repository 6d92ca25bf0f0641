package container

import (
	"context"
	"fmt"
	"time"

	"pubrepo-backend/internal/config"
	adminhandler "pubrepo-backend/internal/domains/admin/handler"
	adminrepo "pubrepo-backend/internal/domains/admin/repository"
	adminservice "pubrepo-backend/internal/domains/admin/service"
	authorhandler "pubrepo-backend/internal/domains/author/handler"
	authorrepo "pubrepo-backend/internal/domains/author/repository"
	authorservice "pubrepo-backend/internal/domains/author/service"
	depthandler "pubrepo-backend/internal/domains/department/handler"
	deptrepo "pubrepo-backend/internal/domains/department/repository"
	deptservice "pubrepo-backend/internal/domains/department/service"
	pubhandler "pubrepo-backend/internal/domains/publication/handler"
	pubrepo "pubrepo-backend/internal/domains/publication/repository"
	pubservice "pubrepo-backend/internal/domains/publication/service"
	rediscache "pubrepo-backend/internal/infrastructure/cache"
	"pubrepo-backend/internal/infrastructure/database"
	"pubrepo-backend/internal/infrastructure/session"
	"pubrepo-backend/internal/infrastructure/storage"
	"pubrepo-backend/pkg/cache"
	"pubrepo-backend/pkg/jwt"
	"pubrepo-backend/pkg/logger"
)

// Container owns the dependency graph: config, then infrastructure, then
// repositories, services and handlers. Cleanup releases in reverse order.
type Container struct {
	Config *config.Config

	DB       *database.PostgresDB
	Cache    cache.Cache
	Sessions session.Store
	Tokens   *jwt.Manager
	Blobs    storage.BlobStore

	DepartmentRepo  deptrepo.RepositoryInterface
	AuthorRepo      authorrepo.RepositoryInterface
	PublicationRepo pubrepo.RepositoryInterface
	AdminRepo       adminrepo.RepositoryInterface

	DepartmentService  deptservice.ServiceInterface
	AuthorService      authorservice.ServiceInterface
	PublicationService pubservice.ServiceInterface
	AdminService       adminservice.ServiceInterface

	DepartmentHandler  *depthandler.DepartmentHandler
	AuthorHandler      *authorhandler.AuthorHandler
	PublicationHandler *pubhandler.PublicationHandler
	AdminHandler       *adminhandler.AdminHandler
}

func NewContainer() (*Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(cfg.App.Environment)

	c := &Container{Config: cfg}

	if err := c.initInfrastructure(); err != nil {
		c.Cleanup()
		return nil, err
	}

	c.initRepositories()
	c.initServices()
	c.initHandlers()

	return c, nil
}

func (c *Container) initInfrastructure() error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	c.DB = database.NewPostgresDB(c.Config.DatabasePoolConfig())
	if err := c.DB.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := c.DB.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}

	c.Cache = rediscache.NewRedisCache(c.Config.Redis.Host, c.Config.Redis.Password, c.Config.Redis.DB)
	if connector, ok := c.Cache.(*rediscache.RedisCache); ok {
		if err := connector.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
	}

	c.Sessions = session.NewRedisStore(c.Cache, c.Config.Session.TTL)
	c.Tokens = jwt.NewManager(c.Config.Session.Secret)

	blobs, err := storage.NewMinIOStorage(c.Config.MinIO)
	if err != nil {
		return fmt.Errorf("failed to init blob storage: %w", err)
	}
	c.Blobs = blobs

	logger.Info("infrastructure initialized", map[string]interface{}{
		"database": c.Config.Database.Database,
		"redis":    c.Config.Redis.Host,
		"minio":    c.Config.MinIO.Endpoint,
	})
	return nil
}

func (c *Container) initRepositories() {
	c.DepartmentRepo = deptrepo.NewPostgresRepository(c.DB.Pool, c.Cache)
	c.AuthorRepo = authorrepo.NewPostgresRepository(c.DB.Pool)
	c.PublicationRepo = pubrepo.NewPostgresRepository(c.DB.Pool)
	c.AdminRepo = adminrepo.NewPostgresRepository(c.DB.Pool)
}

func (c *Container) initServices() {
	c.DepartmentService = deptservice.NewDepartmentService(c.DepartmentRepo)
	c.AuthorService = authorservice.NewAuthorService(c.AuthorRepo, c.DepartmentRepo)
	c.PublicationService = pubservice.NewPublicationService(
		c.PublicationRepo, c.DepartmentRepo, c.Blobs,
		c.Config.Upload.TmpDir, c.Config.Upload.MaxSizeMB)
	c.AdminService = adminservice.NewAdminService(
		c.AdminRepo, c.DepartmentRepo, c.AuthorRepo, c.PublicationRepo,
		c.Sessions, c.Tokens, c.Config.Session.TTL)
}

func (c *Container) initHandlers() {
	c.DepartmentHandler = depthandler.NewDepartmentHandler(c.DepartmentService)
	c.AuthorHandler = authorhandler.NewAuthorHandler(c.AuthorService)
	c.PublicationHandler = pubhandler.NewPublicationHandler(c.PublicationService)
	c.AdminHandler = adminhandler.NewAdminHandler(c.AdminService, c.Config.Session, c.Config.App.Environment)
}

// Cleanup releases infrastructure resources. Safe to call on a partially
// initialized container.
func (c *Container) Cleanup() {
	if c.Cache != nil {
		if closer, ok := c.Cache.(*rediscache.RedisCache); ok {
			if err := closer.Close(); err != nil {
				logger.Error("failed to close redis", err)
			}
		}
	}
	if c.DB != nil && c.DB.Pool != nil {
		c.DB.Pool.Close()
	}
}
