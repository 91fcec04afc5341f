//go:build !unix && !windows

package identity

import (
	"log/slog"
	"runtime"

	"osident/internal/domain"
)

const hostFamily = FamilyUnsupported

func newHostBackend(_ *slog.Logger, _ domain.TokenPolicy) (Backend, error) {
	return nil, &domain.UnsupportedPlatformError{GOOS: runtime.GOOS}
}
