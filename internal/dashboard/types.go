package dashboard

import (
	"fmt"
	"time"

	"github.com/larsks/dronevision/internal/fleet"
)

// Tab is a dashboard viewport.
type Tab string

const (
	TabMap       Tab = "map"
	TabCamera    Tab = "camera"
	TabAnalytics Tab = "analytics"
)

var allTabs = []Tab{TabMap, TabCamera, TabAnalytics}

// Tabs returns every tab in sidebar order.
func Tabs() []Tab {
	out := make([]Tab, len(allTabs))
	copy(out, allTabs)
	return out
}

// ParseTab converts a tab name into a Tab.
func ParseTab(name string) (Tab, error) {
	for _, tab := range allTabs {
		if string(tab) == name {
			return tab, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTab, name)
}

// ActionKind is a simulated operation that produces a transient toast.
type ActionKind string

const (
	ActionNone   ActionKind = ""
	ActionScan   ActionKind = "scan"
	ActionReport ActionKind = "report"
)

// ParseActionKind converts an action name into an ActionKind.
func ParseActionKind(name string) (ActionKind, error) {
	switch ActionKind(name) {
	case ActionScan, ActionReport:
		return ActionKind(name), nil
	default:
		return ActionNone, fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
}

// Message returns the acknowledgement shown while the action is active.
func (k ActionKind) Message() string {
	switch k {
	case ActionScan:
		return "Scan LiDAR lancé avec succès"
	case ActionReport:
		return "Rapport généré et envoyé"
	default:
		return ""
	}
}

// Snapshot is a read-only copy of the dashboard state. Version increases
// with every change, so a receiver can discard stale snapshots.
type Snapshot struct {
	Version         uint64       `json:"version"`
	ActiveTab       Tab          `json:"activeTab"`
	SelectedAsset   *fleet.Asset `json:"selectedAsset,omitempty"`
	ThermalMode     bool         `json:"thermalMode"`
	ActionStatus    ActionKind   `json:"actionStatus,omitempty"`
	ActionMessage   string       `json:"actionMessage,omitempty"`
	ActionExpiresAt *time.Time   `json:"actionExpiresAt,omitempty"`
	TutorialVisible bool         `json:"tutorialVisible"`
}
