//go:build !linux || !cgo

package thread

import "log/slog"

func SetCPUAffinity(coreID int) {
	slog.Debug("CPU affinity is not supported on this platform", "core", coreID)
}
