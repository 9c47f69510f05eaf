package utils

import (
	"context"
	"log"
	"runtime/debug"

	"golang-stock-scanner/pkg/logger"
)

// GoSafe runs fn in a goroutine and recovers from panics so one bad task cannot take the process down.
func GoSafe(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("recovered from panic: %v\n%s", r, debug.Stack())
			}
		}()
		fn()
	}()
}

// ShouldContinue reports whether ctx is still alive, logging when it is not.
func ShouldContinue(ctx context.Context, log *logger.Logger) bool {
	select {
	case <-ctx.Done():
		log.Warn("Context done, stopping", logger.ErrorField(ctx.Err()))
		return false
	default:
		return true
	}
}
