package goroutine

import (
	"context"
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/housing-backend/internal/logger"
)

// Go запускает фоновую задачу. Паника логируется и не роняет процесс.
func Go(name string, fn func()) {
	go func() {
		defer recoverAndLog(name)
		fn()
	}()
}

// GoWithContext то же, что Go, для задач, живущих до отмены ctx.
func GoWithContext(ctx context.Context, name string, fn func(context.Context)) {
	go func() {
		defer recoverAndLog(name)
		fn(ctx)
	}()
}

func recoverAndLog(name string) {
	if r := recover(); r != nil {
		logger.Log.WithFields(logrus.Fields{
			"task":  name,
			"panic": r,
			"stack": string(debug.Stack()),
		}).Error("goroutine: panic recovered")
	}
}
