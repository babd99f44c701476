package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"productflow-backend/internal/config"
	productHandler "productflow-backend/internal/domains/product/handler"
	productRepo "productflow-backend/internal/domains/product/repository"
	productService "productflow-backend/internal/domains/product/service"
	infraCache "productflow-backend/internal/infrastructure/cache"
	"productflow-backend/internal/infrastructure/database"
	"productflow-backend/internal/infrastructure/generator"
	"productflow-backend/internal/infrastructure/imagesearch"
	"productflow-backend/internal/infrastructure/storage"
	"productflow-backend/pkg/cache"
	"productflow-backend/pkg/jwt"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container chứa TẤT CẢ dependencies của application
// Struct này là "root" của dependency graph
// Pattern: Service Locator + Dependency Injection
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================
	// Lifecycle: Singleton (1 instance duy nhất trong app lifetime)

	Config     *config.Config       // Application config
	DB         *database.PostgresDB // Database connection pool
	Cache      cache.Cache          // Redis cache (interface)
	JWTManager *jwt.Manager
	Storage    *storage.MinIOStorage
	Processor  *storage.ImageProcessor
	Generator  productService.ContentGenerator
	Resolver   productService.ImageResolver
	TaskClient *asynq.Client

	// ========================================
	// REPOSITORY LAYER (DATA ACCESS)
	// ========================================

	ProductRepo productRepo.ProductRepository

	// ========================================
	// SERVICE LAYER (BUSINESS LOGIC)
	// ========================================

	ProductService productService.ProductService
	ImageService   productService.ImageService
	ImportService  productService.BulkImportService

	// ========================================
	// HANDLER LAYER (HTTP)
	// ========================================

	ProductHandler *productHandler.ProductHandler
	AuthHandler    *productHandler.AuthHandler
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer tạo và initialize toàn bộ dependency graph
//
// QUAN TRỌNG: Thứ tự initialization:
// 1. Config (không phụ thuộc gì)
// 2. Infrastructure (DB, Cache, Storage, external clients)
// 3. Repositories
// 4. Services
// 5. Handlers
func NewContainer() (*Container, error) {
	log.Println("🔧 Initializing DI Container...")

	c := &Container{}

	// ========================================
	// STEP 1: LOAD CONFIGURATION
	// ========================================
	log.Println("📋 Loading configuration...")

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Printf("✅ Config loaded (Environment: %s)", cfg.App.Environment)

	// ========================================
	// STEP 2: INITIALIZE DATABASE
	// ========================================
	log.Println("🗄️  Connecting to PostgreSQL...")

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(context.Background()); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}

	c.DB = db
	log.Println("✅ Database connected")

	// ========================================
	// STEP 3: INITIALIZE CACHE
	// ========================================
	log.Println("🔴 Connecting to Redis...")

	redisCache := infraCache.NewRedisCache(
		cfg.Redis.Host,
		cfg.Redis.Password,
		cfg.Redis.DB,
	)

	if rc, ok := redisCache.(*infraCache.RedisClient); ok {
		if err := rc.Connect(context.Background()); err != nil {
			// Redis failure không critical - log warning và continue
			log.Printf("⚠️  Redis connection failed (non-critical): %v", err)
		} else {
			log.Println("✅ Redis connected")
		}
	}
	c.Cache = redisCache

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Hour)

	// ========================================
	// STEP 4: INITIALIZE STORAGE + EXTERNAL CLIENTS
	// ========================================
	log.Println("📦 Initializing storage and external clients...")

	minioStorage, err := storage.NewMinIOStorage(cfg.MinIO)
	if err != nil {
		return nil, fmt.Errorf("failed to init object storage: %w", err)
	}
	c.Storage = minioStorage
	c.Processor = storage.NewImageProcessor()

	if err := c.initCollaborators(); err != nil {
		return nil, err
	}

	c.TaskClient = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Host,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// ========================================
	// STEP 5: REPOSITORIES / SERVICES / HANDLERS
	// ========================================
	log.Println("⚙️  Initializing repositories, services, handlers...")

	c.initRepositories()
	c.initServices()
	c.initHandlers()

	log.Println("🎉 DI Container initialized successfully")
	return c, nil
}

// initCollaborators picks real external clients when keys are configured and
// mocks otherwise, so local development works without any credentials.
func (c *Container) initCollaborators() error {
	if c.Config.Generator.APIKey != "" {
		client, err := generator.NewClient(&generator.Config{
			BaseURL: c.Config.Generator.BaseURL,
			APIKey:  c.Config.Generator.APIKey,
			Model:   c.Config.Generator.Model,
		})
		if err != nil {
			return fmt.Errorf("failed to init generator client: %w", err)
		}
		c.Generator = client
	} else {
		log.Println("⚠️  No generator API key - using mock generator")
		c.Generator = generator.NewMockGenerator()
	}

	if c.Config.ImageSearch.APIKey != "" {
		client, err := imagesearch.NewClient(&imagesearch.Config{
			BaseURL:  c.Config.ImageSearch.BaseURL,
			APIKey:   c.Config.ImageSearch.APIKey,
			EngineID: c.Config.ImageSearch.EngineID,
		})
		if err != nil {
			return fmt.Errorf("failed to init image search client: %w", err)
		}
		c.Resolver = client
	} else {
		log.Println("⚠️  No image search API key - using mock resolver")
		c.Resolver = imagesearch.NewMockResolver()
	}

	return nil
}

func (c *Container) initRepositories() {
	c.ProductRepo = productRepo.NewPostgresProductRepository(c.DB.Pool)
}

func (c *Container) initServices() {
	c.ProductService = productService.NewProductService(
		c.ProductRepo,
		c.Generator,
		c.Resolver,
		c.Cache,
		c.Storage,
		c.TaskClient,
	)
	c.ImageService = productService.NewImageService(c.ProductRepo, c.Storage, c.Processor)
	c.ImportService = productService.NewBulkImportService(c.ProductService)
}

func (c *Container) initHandlers() {
	c.ProductHandler = productHandler.NewProductHandler(c.ProductService, c.ImageService, c.ImportService)
	c.AuthHandler = productHandler.NewAuthHandler(c.JWTManager)
}

// Cleanup dọn dẹp resources khi shutdown
// Gọi trong graceful shutdown của server
func (c *Container) Cleanup() {
	log.Println("🧹 Cleaning up container resources...")

	if c.TaskClient != nil {
		if err := c.TaskClient.Close(); err != nil {
			log.Printf("⚠️  Failed to close task client: %v", err)
		}
	}

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			log.Printf("⚠️  Failed to close database: %v", err)
		} else {
			log.Println("✅ Database connections closed")
		}
	}

	if c.Cache != nil {
		if rc, ok := c.Cache.(*infraCache.RedisClient); ok {
			if err := rc.Close(); err != nil {
				log.Printf("⚠️  Failed to close Redis: %v", err)
			} else {
				log.Println("✅ Redis connections closed")
			}
		}
	}

	log.Println("✅ Container cleanup completed")
}
