package async

import (
	"runtime/debug"

	"mnemo/internal/logging"
)

// Go runs fn on its own goroutine with panic recovery. A panic is logged
// with its stack and absorbed; background work never takes the serving
// process down.
func Go(logger logging.Logger, name string, fn func()) {
	logger = logging.OrNop(logger)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("goroutine %q panicked: %v\n%s", name, r, debug.Stack())
			}
		}()
		fn()
	}()
}
