// Package fleet holds the fixed set of inspected infrastructure assets shown
// on the mission control map.
package fleet

import (
	"encoding/json"
	"fmt"
)

// Status is the health classification of an asset.
type Status string

const (
	StatusOK       Status = "ok"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

// Position is a map location expressed as percentages of the viewport.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Asset is a simulated piece of infrastructure with a health snapshot.
type Asset struct {
	ID          int      `json:"id"`
	Type        string   `json:"type"`
	Status      Status   `json:"status"`
	Position    Position `json:"position"`
	Health      int      `json:"health"`
	Temperature string   `json:"temperature"`
	LastScanAgo string   `json:"lastScanAgo"`
}

func (a Asset) String() string {
	return fmt.Sprintf("%d:%s", a.ID, a.Type)
}

// Catalog is an immutable, ordered set of assets.
type Catalog struct {
	assets []Asset
	byID   map[int]int
}

// NewCatalog builds a catalog from the given assets. Asset ids must be
// unique and health must lie in 0..100.
func NewCatalog(assets []Asset) (*Catalog, error) {
	c := &Catalog{
		assets: make([]Asset, len(assets)),
		byID:   make(map[int]int, len(assets)),
	}

	for i, a := range assets {
		if _, exists := c.byID[a.ID]; exists {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateAsset, a.ID)
		}
		if a.Health < 0 || a.Health > 100 {
			return nil, fmt.Errorf("%w: asset %d has health %d", ErrInvalidHealth, a.ID, a.Health)
		}
		switch a.Status {
		case StatusOK, StatusWarning, StatusCritical:
		default:
			return nil, fmt.Errorf("%w: asset %d has status %q", ErrInvalidStatus, a.ID, a.Status)
		}
		c.assets[i] = a
		c.byID[a.ID] = i
	}

	return c, nil
}

// Assets returns a copy of the catalog in display order.
func (c *Catalog) Assets() []Asset {
	out := make([]Asset, len(c.assets))
	copy(out, c.assets)
	return out
}

// Lookup returns the asset with the given id.
func (c *Catalog) Lookup(id int) (Asset, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Asset{}, false
	}
	return c.assets[i], true
}

// Contains reports whether id is part of the catalog.
func (c *Catalog) Contains(id int) bool {
	_, ok := c.byID[id]
	return ok
}

// Len returns the number of assets.
func (c *Catalog) Len() int {
	return len(c.assets)
}

// MarshalJSON renders the catalog as a plain list.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.assets)
}

var defaultCatalog = mustCatalog([]Asset{
	{ID: 1, Type: "Pylône HT", Status: StatusCritical, Position: Position{X: 20, Y: 30}, Health: 42, Temperature: "68°C", LastScanAgo: "Il y a 2 min"},
	{ID: 2, Type: "Éolienne", Status: StatusWarning, Position: Position{X: 50, Y: 60}, Health: 78, Temperature: "45°C", LastScanAgo: "Il y a 10 min"},
	{ID: 3, Type: "Panneau Solaire", Status: StatusOK, Position: Position{X: 70, Y: 20}, Health: 98, Temperature: "32°C", LastScanAgo: "Il y a 1h"},
})

// Default returns the catalog shown in the demo dashboard.
func Default() *Catalog {
	return defaultCatalog
}

func mustCatalog(assets []Asset) *Catalog {
	c, err := NewCatalog(assets)
	if err != nil {
		panic(err)
	}
	return c
}
