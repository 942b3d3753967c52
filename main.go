package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"staybook/config"
	_ "staybook/docs"
	"staybook/logger"
	middlewares "staybook/middleware"
	"staybook/routes"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func main() {
	l := logger.New(log.New(os.Stdout, "", log.LstdFlags))

	if err := run(l); err != nil {
		l.LogErrorf("%v", err)
		os.Exit(1)
	}
}

func run(l *logger.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.LoadEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Verify(); err != nil {
		return err
	}

	db, err := config.ConnectDB(cfg)
	if err != nil {
		return err
	}
	if err := config.Migrate(db); err != nil {
		return err
	}

	var redisCli *redis.Client
	if redisCli, err = config.ConnectRedis(ctx, cfg); err != nil {
		l.LogErrorf("redis unavailable, running without cache and token revocation: %v", err)
		redisCli = nil
	} else {
		defer redisCli.Close()
	}

	var cld *cloudinary.Cloudinary
	if cld, err = config.ConnectCloudinary(cfg); err != nil {
		l.LogErrorf("cloudinary unavailable, uploads disabled: %v", err)
		cld = nil
	}

	router := gin.New()
	router.Use(gin.Recovery(), middlewares.RequestLogger(l))

	configCors := cors.DefaultConfig()
	configCors.AllowOrigins = []string{cfg.ClientURL}
	configCors.AddAllowHeaders("Authorization")
	configCors.AllowCredentials = true
	router.Use(cors.New(configCors))

	routes.SetupRoutes(router, cfg, db, redisCli, cld, l)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 20 * time.Second,
	}

	go func() {
		<-ctx.Done()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			l.LogErrorf("Failed to stop http server: %v", err)
		}
	}()

	l.LogInfo("Application is running on :%s...", cfg.Port)

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("run http server: %w", err)
	}

	l.LogInfo("Application stopped gracefully")
	return nil
}
