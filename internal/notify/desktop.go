package notify

import (
	"fmt"

	"github.com/gen2brain/beeep"
)

// Desktop sends OS toast notifications via beeep.
type Desktop struct {
	appName string
}

func NewDesktop() *Desktop {
	return &Desktop{appName: "clipwatch"}
}

func (d *Desktop) Notify(title, message string) error {
	beeep.AppName = d.appName
	if err := beeep.Notify(title, message, ""); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	return nil
}
