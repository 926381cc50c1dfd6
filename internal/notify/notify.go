package notify

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/vietddude/clipwatch/internal/core/domain"
	"github.com/vietddude/clipwatch/internal/infra/storage"
)

// Notifier delivers best-effort, human-facing alerts. Implementations must
// never let a delivery failure influence control flow; callers ignore the
// returned error beyond logging.
type Notifier interface {
	Notify(title, message string) error
}

// Noop discards all notifications.
type Noop struct{}

func (Noop) Notify(title, message string) error { return nil }

// FromSettings returns a desktop notifier when the persisted flag is on,
// otherwise Noop. The flag survives restarts in the settings area;
// defaultEnabled is the config-file fallback used before the flag is first
// set.
func FromSettings(ctx context.Context, settings storage.SettingsRepository, defaultEnabled bool) Notifier {
	v, err := settings.Get(ctx, domain.SettingNotificationsEnabled, strconv.FormatBool(defaultEnabled))
	if err != nil {
		slog.Warn("Failed to read notification setting, notifications disabled", "error", err)
		return Noop{}
	}
	enabled, _ := strconv.ParseBool(v)
	if !enabled {
		return Noop{}
	}
	return NewDesktop()
}

// SetEnabled persists the notifications flag.
func SetEnabled(ctx context.Context, settings storage.SettingsRepository, enabled bool) error {
	return settings.Set(ctx, domain.SettingNotificationsEnabled, strconv.FormatBool(enabled))
}
