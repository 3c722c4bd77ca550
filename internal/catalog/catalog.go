// Package catalog holds the fixed set of assemblies a user can study.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"simvex/internal/viewer"
)

//go:embed assemblies.yaml
var assembliesYAML []byte

var ErrNotFound = errors.New("assembly not found")

// ============================================================
// Catalog
// ============================================================

type Catalog struct {
	defaultID  string
	order      []string
	assemblies map[string]*viewer.Assembly
}

type document struct {
	Default    string         `yaml:"default"`
	Assemblies []assemblyYAML `yaml:"assemblies"`
}

type assemblyYAML struct {
	ID          string     `yaml:"id"`
	Name        string     `yaml:"name"`
	DisplayName string     `yaml:"displayName"`
	Category    string     `yaml:"category"`
	Thumbnail   string     `yaml:"thumbnail"`
	Parts       []partYAML `yaml:"parts"`
}

type partYAML struct {
	ID          string     `yaml:"id"`
	Model       string     `yaml:"model"`
	Position    [3]float64 `yaml:"position"`
	Direction   [3]float64 `yaml:"direction"`
	Rotation    [3]float64 `yaml:"rotation"`
	Description string     `yaml:"description"`
}

// Default returns the catalog embedded in the binary.
func Default() *Catalog {
	c, err := Parse(assembliesYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	c := &Catalog{
		defaultID:  doc.Default,
		assemblies: make(map[string]*viewer.Assembly, len(doc.Assemblies)),
	}
	for _, a := range doc.Assemblies {
		if a.ID == "" {
			return nil, fmt.Errorf("assembly without id")
		}
		if _, dup := c.assemblies[a.ID]; dup {
			return nil, fmt.Errorf("duplicate assembly %q", a.ID)
		}

		asm := &viewer.Assembly{
			ID:          a.ID,
			Name:        a.Name,
			DisplayName: a.DisplayName,
			Category:    a.Category,
			Thumbnail:   a.Thumbnail,
			Parts:       make([]viewer.Part, 0, len(a.Parts)),
		}
		seen := make(map[string]bool, len(a.Parts))
		for _, p := range a.Parts {
			if seen[p.ID] {
				return nil, fmt.Errorf("assembly %s: duplicate part %q", a.ID, p.ID)
			}
			seen[p.ID] = true
			asm.Parts = append(asm.Parts, viewer.Part{
				ID:                 p.ID,
				ModelRef:           p.Model,
				AssembledPosition:  viewer.V(p.Position[0], p.Position[1], p.Position[2]),
				ExplosionDirection: viewer.V(p.Direction[0], p.Direction[1], p.Direction[2]),
				AssembledRotation:  viewer.V(p.Rotation[0], p.Rotation[1], p.Rotation[2]),
				Description:        p.Description,
			})
		}

		c.assemblies[a.ID] = asm
		c.order = append(c.order, a.ID)
	}

	if _, ok := c.assemblies[c.defaultID]; !ok {
		return nil, fmt.Errorf("default assembly %q not in catalog", c.defaultID)
	}
	return c, nil
}

// Get returns the assembly with the given id.
func (c *Catalog) Get(id string) (*viewer.Assembly, error) {
	a, ok := c.assemblies[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return a, nil
}

// Lookup resolves an id the way the viewer does: an unknown id, or an
// assembly with no parts, falls back to the default assembly.
func (c *Catalog) Lookup(id string) *viewer.Assembly {
	if a, ok := c.assemblies[id]; ok && len(a.Parts) > 0 {
		return a
	}
	return c.assemblies[c.defaultID]
}

// All returns every assembly in catalog order.
func (c *Catalog) All() []*viewer.Assembly {
	out := make([]*viewer.Assembly, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.assemblies[id])
	}
	return out
}

// Search filters by display name, name, or category, case-insensitively.
func (c *Catalog) Search(term string) []*viewer.Assembly {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return c.All()
	}
	var out []*viewer.Assembly
	for _, a := range c.All() {
		if strings.Contains(strings.ToLower(a.DisplayName), term) ||
			strings.Contains(strings.ToLower(a.Name), term) ||
			strings.Contains(strings.ToLower(a.Category), term) {
			out = append(out, a)
		}
	}
	return out
}
