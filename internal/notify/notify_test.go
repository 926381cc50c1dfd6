package notify

import (
	"context"
	"testing"

	"github.com/vietddude/clipwatch/internal/infra/storage/memory"
)

func TestFromSettings(t *testing.T) {
	tests := []struct {
		name           string
		persisted      string // "" = never set
		defaultEnabled bool
		wantDesktop    bool
	}{
		{"persisted on", "true", false, true},
		{"persisted off", "false", true, false},
		{"unset, config default on", "", true, true},
		{"unset, config default off", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			settings := memory.NewSettingsRepo(memory.NewMemoryStorage())
			if tt.persisted != "" {
				if err := SetEnabled(ctx, settings, tt.persisted == "true"); err != nil {
					t.Fatalf("SetEnabled: %v", err)
				}
			}

			n := FromSettings(ctx, settings, tt.defaultEnabled)
			_, isDesktop := n.(*Desktop)
			if isDesktop != tt.wantDesktop {
				t.Errorf("got %T, want desktop=%t", n, tt.wantDesktop)
			}
		})
	}
}

func TestSetEnabledRoundTrip(t *testing.T) {
	ctx := context.Background()
	settings := memory.NewSettingsRepo(memory.NewMemoryStorage())

	if err := SetEnabled(ctx, settings, true); err != nil {
		t.Fatalf("SetEnabled: %v", err)
	}
	if _, ok := FromSettings(ctx, settings, false).(*Desktop); !ok {
		t.Error("expected desktop notifier after enabling")
	}

	if err := SetEnabled(ctx, settings, false); err != nil {
		t.Fatalf("SetEnabled: %v", err)
	}
	if _, ok := FromSettings(ctx, settings, true).(Noop); !ok {
		t.Error("expected noop notifier after disabling")
	}
}
