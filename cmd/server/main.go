package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/renovia/renovation-api/internal/config"
	"github.com/renovia/renovation-api/internal/database"
	"github.com/renovia/renovation-api/internal/handler"
	"github.com/renovia/renovation-api/internal/middleware"
	"github.com/renovia/renovation-api/internal/queue"
	"github.com/renovia/renovation-api/internal/repository"
	"github.com/renovia/renovation-api/internal/router"
	"github.com/renovia/renovation-api/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set env directly
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; response cache and rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	categories := repository.NewCategoryRepo(db)
	materials := repository.NewMaterialRepo(db)
	activity := repository.NewActivityRepo(db)

	events := service.QueuePublisher{}
	authH := handler.NewAuthHandler(cfg, users)
	categoryH := handler.NewCategoryHandler(categories, events)
	materialH := handler.NewMaterialHandler(materials, categories, events)
	userAdminH := handler.NewUserAdminHandler(users, activity)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	cache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTAccessSecret)
	router.RegisterAdmin(e, categoryH, materialH, userAdminH, cfg.JWTAccessSecret, cache)

	go func() {
		if err := queue.StartCatalogConsumer(); err != nil {
			log.Printf("catalog consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
