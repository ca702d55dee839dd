package ports

import (
	"context"

	"github.com/ewilliams-labs/notetune/internal/core/domain"
)

// SettingsStore persists domain.Settings. Load merges stored values over the
// defaults; Save rewrites every key.
type SettingsStore interface {
	Load(ctx context.Context) (domain.Settings, error)
	Save(ctx context.Context, s domain.Settings) error
}
