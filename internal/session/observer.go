package session

import (
	"github.com/larsks/dronevision/internal/dashboard"
	"github.com/larsks/dronevision/internal/telemetry"
)

// Observer receives session lifecycle and activity events. Methods are
// called synchronously and must not block.
type Observer interface {
	SessionOpened(id string)
	SessionClosed(id string)
	ActionTriggered(id string, kind dashboard.ActionKind)
	TelemetryAppended(id string, entry telemetry.Entry)
}

// observers fans an event out to every registered Observer.
type observers []Observer

func (o observers) SessionOpened(id string) {
	for _, obs := range o {
		obs.SessionOpened(id)
	}
}

func (o observers) SessionClosed(id string) {
	for _, obs := range o {
		obs.SessionClosed(id)
	}
}

func (o observers) ActionTriggered(id string, kind dashboard.ActionKind) {
	for _, obs := range o {
		obs.ActionTriggered(id, kind)
	}
}

func (o observers) TelemetryAppended(id string, entry telemetry.Entry) {
	for _, obs := range o {
		obs.TelemetryAppended(id, entry)
	}
}
