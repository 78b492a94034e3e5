package cpu

import (
	"log/slog"

	"github.com/gogpu/darkroom"
)

// slogger returns the logger configured with darkroom.SetLogger.
func slogger() *slog.Logger {
	return darkroom.Logger()
}
