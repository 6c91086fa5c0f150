package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reporter/src/api"
	"reporter/src/api/controllers"
	"reporter/src/clients/mdm"
	"reporter/src/config"
	"reporter/src/repositories"
	"reporter/src/scheduler"
	"reporter/src/services"
	"reporter/src/utils"
	aws_handler "reporter/src/utils/aws"
)

func main() {
	cfg, err := config.LoadConfig("./settings")
	if err != nil {
		log.Println(err, "Error while loading config")
		return
	}

	errC, err := run(cfg)
	if err != nil {
		log.Println(err, "Couldn't run")
		return
	}

	if err := <-errC; err != nil {
		log.Println(err, "Error while running")
	}
}

func run(cfg *config.Config) (<-chan error, error) {
	errC := make(chan error, 1)

	logger := utils.NewLogger("info", false, "")
	ctx := utils.WithLogger(context.Background(), logger)

	location := time.Local
	if cfg.Scheduler.Timezone != "" && cfg.Scheduler.Timezone != "Local" {
		loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
		if err != nil {
			return nil, err
		}
		location = loc
	}

	repo, err := repositories.NewReportRepository(cfg.Scheduler.ReportsDir)
	if err != nil {
		return nil, err
	}

	awsHandler, err := aws_handler.NewAWSHandler(defaultRegion(cfg))
	if err != nil {
		return nil, err
	}

	mdmClient := mdm.NewClient(&cfg.MDM)
	execution := services.NewExecutionService(
		repo,
		services.NewExportService(mdmClient),
		services.NewArchiveService(cfg.Scheduler.TempDir),
		services.NewUploadService(cfg.Storage, awsHandler),
		services.NewNotificationService(cfg.Notifications),
		cfg.Scheduler.Enabled,
		cfg.Scheduler.PollInterval,
		cfg.Scheduler.JobTimeout,
		location,
	)

	controller := controllers.NewController(execution, repo, utils.NewOperationLock())
	server := api.NewServer(controller)
	httpServer := api.NewHTTPServer(server, cfg.Service.Port)

	var sweep *scheduler.ScheduledTask
	if cfg.Scheduler.Enabled {
		sweep, err = scheduler.NewScheduledTask(cfg.Scheduler.SweepSpec, func() {
			if _, err := execution.RunDueReports(ctx); err != nil {
				logger.WithError(err).Error("report sweep aborted")
			}
		})
		if err != nil {
			return nil, err
		}
		logger.WithField("next", sweep.Next()).Info("report sweep scheduled")
	}

	go func() {
		logger.WithField("port", cfg.Service.Port).Info("starting server")

		// "ListenAndServe always returns a non-nil error. After Shutdown or Close, the returned error is
		// ErrServerClosed."
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errC <- err
		}
	}()

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop

		logger.Info("shutting down")
		if sweep != nil {
			sweep.Cancel()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		errC <- httpServer.Shutdown(shutdownCtx)
	}()

	return errC, nil
}

func defaultRegion(cfg *config.Config) string {
	for _, c := range cfg.Storage.Configurations {
		if c.Region != "" {
			return c.Region
		}
	}
	return "us-east-1"
}
