package economy

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

var ErrInvalidCatalog = errors.New("invalid_catalog")

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Upgrade is one purchasable catalog entry. BaseIncome is income per second
// for each owned unit.
type Upgrade struct {
	ID               string  `yaml:"id" json:"id"`
	Name             string  `yaml:"name" json:"name"`
	Description      string  `yaml:"description" json:"description"`
	Icon             string  `yaml:"icon" json:"icon"`
	BaseCost         float64 `yaml:"base_cost" json:"base_cost"`
	CostMultiplier   float64 `yaml:"cost_multiplier" json:"cost_multiplier"`
	BaseIncome       float64 `yaml:"base_income" json:"base_income"`
	RequiredRebirths int     `yaml:"required_rebirths" json:"required_rebirths"`
}

// Catalog is the ordered, read-only upgrade list.
type Catalog struct {
	upgrades []Upgrade
	byID     map[string]int
}

type catalogFile struct {
	Upgrades []Upgrade `yaml:"upgrades"`
}

var (
	defaultCatalog     *Catalog
	defaultCatalogErr  error
	defaultCatalogOnce sync.Once
)

// DefaultCatalog returns the embedded tier list. It panics if the embedded
// file is malformed, which only a broken build can cause.
func DefaultCatalog() *Catalog {
	defaultCatalogOnce.Do(func() {
		defaultCatalog, defaultCatalogErr = ParseCatalog(defaultCatalogYAML)
	})
	if defaultCatalogErr != nil {
		panic(defaultCatalogErr)
	}
	return defaultCatalog
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return NewCatalog(f.Upgrades)
}

func NewCatalog(upgrades []Upgrade) (*Catalog, error) {
	c := &Catalog{
		upgrades: make([]Upgrade, 0, len(upgrades)),
		byID:     make(map[string]int, len(upgrades)),
	}
	for i, u := range upgrades {
		switch {
		case u.ID == "":
			return nil, fmt.Errorf("%w: entry %d has no id", ErrInvalidCatalog, i)
		case u.BaseCost <= 0:
			return nil, fmt.Errorf("%w: %s base_cost must be positive", ErrInvalidCatalog, u.ID)
		case u.CostMultiplier <= 1:
			return nil, fmt.Errorf("%w: %s cost_multiplier must exceed 1", ErrInvalidCatalog, u.ID)
		case u.BaseIncome < 0:
			return nil, fmt.Errorf("%w: %s base_income is negative", ErrInvalidCatalog, u.ID)
		case u.RequiredRebirths < 0:
			return nil, fmt.Errorf("%w: %s required_rebirths is negative", ErrInvalidCatalog, u.ID)
		}
		if _, dup := c.byID[u.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %s", ErrInvalidCatalog, u.ID)
		}
		c.byID[u.ID] = len(c.upgrades)
		c.upgrades = append(c.upgrades, u)
	}
	return c, nil
}

func (c *Catalog) Len() int {
	return len(c.upgrades)
}

// Upgrades returns a copy of the catalog in tier order.
func (c *Catalog) Upgrades() []Upgrade {
	out := make([]Upgrade, len(c.upgrades))
	copy(out, c.upgrades)
	return out
}

func (c *Catalog) Lookup(id string) (Upgrade, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Upgrade{}, false
	}
	return c.upgrades[i], true
}

// Unlocked reports whether a player with the given rebirth count may buy u.
func (u Upgrade) Unlocked(rebirths int) bool {
	return rebirths >= u.RequiredRebirths
}
