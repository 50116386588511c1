package catalog

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Carveion/JUNKFU-V2/assets"
	"github.com/Carveion/JUNKFU-V2/internal/domain"
)

// Catalog is the read-only list of food categories.
type Catalog struct {
	groups []domain.CategoryGroup
	byName map[string]domain.Category
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(assets.Categories)
}

// Parse builds a catalog from JSON cuisine groups. Category names must be
// unique across groups.
func Parse(data []byte) (*Catalog, error) {
	var groups []domain.CategoryGroup
	if err := json.Unmarshal(data, &groups); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	c := &Catalog{groups: groups, byName: make(map[string]domain.Category)}
	for _, g := range groups {
		for _, item := range g.Items {
			if _, dup := c.byName[item.Name]; dup {
				return nil, fmt.Errorf("duplicate category %q", item.Name)
			}
			c.byName[item.Name] = item
		}
	}
	return c, nil
}

func (c *Catalog) Groups() []domain.CategoryGroup { return c.groups }

// All returns every category in catalog order.
func (c *Catalog) All() []domain.Category {
	out := make([]domain.Category, 0, len(c.byName))
	for _, g := range c.groups {
		out = append(out, g.Items...)
	}
	return out
}

// Find looks a category up by exact name.
func (c *Catalog) Find(name string) (domain.Category, bool) {
	cat, ok := c.byName[name]
	return cat, ok
}

// Lookup resolves a user-typed name, falling back to a case-insensitive
// match. Unknown names wrap domain.ErrUnknownCategory.
func (c *Catalog) Lookup(name string) (domain.Category, error) {
	if cat, ok := c.byName[name]; ok {
		return cat, nil
	}
	name = strings.TrimSpace(name)
	for _, cat := range c.All() {
		if strings.EqualFold(cat.Name, name) {
			return cat, nil
		}
	}
	return domain.Category{}, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, name)
}
