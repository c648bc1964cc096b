package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	config "github.com/maheshrc27/editorial-api/configs"
	"github.com/maheshrc27/editorial-api/internal/api"
	"github.com/maheshrc27/editorial-api/internal/app"
	job "github.com/maheshrc27/editorial-api/internal/jobs"
	"github.com/maheshrc27/editorial-api/internal/repository"
	"github.com/robfig/cron"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()
	ctx := context.Background()

	deps, closeDeps, err := app.Open(ctx, *cfg)
	if err != nil {
		log.Fatalf("Failed to open stores: %v", err)
	}

	if deps.DB != nil {
		if err := repository.Migrate(ctx, deps.DB); err != nil {
			closeDeps()
			log.Fatalf("Failed to migrate database: %v", err)
		}
	}

	container, err := app.Wire(*cfg, deps)
	if err != nil {
		closeDeps()
		log.Fatalf("Failed to wire services: %v", err)
	}
	if container.Inline {
		log.Println("REDIS_URI is not set, events are handled in-process")
	}

	recomputeJob := job.NewQueueRecomputeJob(container.Repos.Clients, container.Services.Queue, 0)

	c := cron.New()
	if err := c.AddFunc(cfg.RecalculateSpec, recomputeJob.Run); err != nil {
		closeDeps()
		log.Fatalf("Invalid RECALCULATE_SPEC %q: %v", cfg.RecalculateSpec, err)
	}
	c.Start()

	var worker *asynq.Server
	if !container.Inline {
		worker = asynq.NewServer(asynq.RedisClientOpt{Addr: cfg.RedisURI}, asynq.Config{
			Concurrency: cfg.WorkerConcurrency,
		})

		go func() {
			log.Println("Starting the Asynq server...")
			if err := worker.Run(container.Worker.ServeMux()); err != nil {
				log.Fatalf("Could not start Asynq server: %v", err)
			}
		}()
	}

	server := api.NewApp(*cfg, container.Services)

	go func() {
		if err := server.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Printf("Server is running on http://localhost:%s", cfg.Port)

	gracefulShutdown(server, worker, c, deps.DB, closeDeps)
}

func closeDB(db *sql.DB, closeDeps func()) {
	fmt.Fprint(os.Stdout, "Closing store connections... ")
	closeDeps()
	if db != nil {
		fmt.Fprintln(os.Stdout, "Done")
		return
	}
	fmt.Fprintln(os.Stdout, "Done (memory store)")
}

func gracefulShutdown(app *fiber.App, worker *asynq.Server, c *cron.Cron, db *sql.DB, closeDeps func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	c.Stop()

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	if worker != nil {
		worker.Shutdown()
	}

	closeDB(db, closeDeps)
	log.Println("Server shutdown complete.")
}
