//go:build windows

package identity

import (
	"log/slog"

	"osident/internal/domain"
	"osident/internal/native"
)

const hostFamily = FamilyWindows

func newHostBackend(logger *slog.Logger, policy domain.TokenPolicy) (Backend, error) {
	return NewWindowsBackend(native.NewTokenAPI(), policy, logger), nil
}
