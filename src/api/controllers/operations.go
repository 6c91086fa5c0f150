package controllers

import (
	"context"
	"time"

	"reporter/src/utils"
)

// BeginOperation registers a named privileged operation. A false
// return means another invocation with the same identifier is still
// in flight and the caller must decline to proceed.
func (c *Controller) BeginOperation(ctx context.Context, identifier string, timeout time.Duration) bool {
	ok := c.Locks.Begin(identifier, timeout)
	logger := utils.LoggerFromContext(ctx).WithField("operation", identifier)
	if ok {
		logger.Info("operation lock acquired")
	} else {
		logger.Warn("operation already in progress")
	}
	return ok
}

// EndOperation releases a named operation unconditionally.
func (c *Controller) EndOperation(ctx context.Context, identifier string) {
	c.Locks.End(identifier)
	utils.LoggerFromContext(ctx).WithField("operation", identifier).Info("operation lock released")
}
