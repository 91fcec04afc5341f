//go:build unix

package identity

import (
	"log/slog"

	"osident/internal/domain"
	"osident/internal/native"
)

const hostFamily = FamilyPOSIX

func newHostBackend(logger *slog.Logger, _ domain.TokenPolicy) (Backend, error) {
	return NewPosixBackend(native.NewLibc(), logger), nil
}
