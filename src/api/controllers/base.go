package controllers

import (
	"context"
	"time"

	"reporter/src/repositories"
	"reporter/src/schemas"
	"reporter/src/services"
	"reporter/src/utils"
)

type IController interface {
	RunScheduledReports(ctx context.Context) (*schemas.ExecutionSummary, error)
	GetSchedulerStatus(ctx context.Context) (*schemas.SchedulerStatus, error)
	SaveReportDefinition(ctx context.Context, data []byte, fileName string) error
	DeleteReportDefinition(ctx context.Context, fileName string) error
	SaveReportsIndex(ctx context.Context, data []byte) error
	BeginOperation(ctx context.Context, identifier string, timeout time.Duration) bool
	EndOperation(ctx context.Context, identifier string)
}

type Controller struct {
	Execution *services.ExecutionService
	Repo      repositories.ReportRepositoryI
	Locks     *utils.OperationLock
}

func NewController(execution *services.ExecutionService, repo repositories.ReportRepositoryI, locks *utils.OperationLock) *Controller {
	return &Controller{Execution: execution, Repo: repo, Locks: locks}
}
