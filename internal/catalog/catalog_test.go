package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()

	all := c.All()
	require.Len(t, all, 7)
	assert.Equal(t, "1", all[0].ID)

	sizes := map[string]int{}
	for _, a := range all {
		sizes[a.Name] = len(a.Parts)
	}
	assert.Equal(t, map[string]int{
		"Drone":        28,
		"LeafSpring":   11,
		"MachineVice":  11,
		"RobotArm":     9,
		"RobotGripper": 19,
		"Suspension":   4,
		"V4_Engine":    31,
	}, sizes)
}

func TestGetAndLookup(t *testing.T) {
	c := Default()

	a, err := c.Get("7")
	require.NoError(t, err)
	assert.Equal(t, "V4_Engine", a.Name)

	_, err = c.Get("42")
	assert.True(t, errors.Is(err, ErrNotFound))

	assert.Equal(t, "1", c.Lookup("42").ID)
	assert.Equal(t, "1", c.Lookup("").ID)
	assert.Equal(t, "3", c.Lookup("3").ID)
}

func TestSearch(t *testing.T) {
	c := Default()
	assert.Len(t, c.Search(""), 7)

	got := c.Search("  drone ")
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)

	assert.Len(t, c.Search("로봇"), 7)
	assert.Empty(t, c.Search("submarine"))
}

func TestDroneGroups(t *testing.T) {
	a, err := Default().Get("1")
	require.NoError(t, err)

	g, ok := a.Group("/models/Drone/프로펠러 블레이드.glb")
	require.True(t, ok)
	assert.Equal(t, []string{"Impellar_Blade_LF", "Impellar_Blade_RF", "Impellar_Blade_LB", "Impellar_Blade_RB"}, g.PartIDs)

	total := 0
	for _, g := range a.Groups() {
		total += len(g.PartIDs)
	}
	assert.Equal(t, len(a.Parts), total)
}

func TestParseRejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not yaml", "::"},
		{"missing default", `
default: "9"
assemblies:
  - id: "1"
    parts: [{id: a, model: m}]
`},
		{"duplicate assembly", `
default: "1"
assemblies:
  - id: "1"
  - id: "1"
`},
		{"duplicate part", `
default: "1"
assemblies:
  - id: "1"
    parts:
      - {id: a, model: m}
      - {id: a, model: m}
`},
		{"missing id", `
default: "1"
assemblies:
  - name: x
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestParseVectors(t *testing.T) {
	c, err := Parse([]byte(`
default: "x"
assemblies:
  - id: "x"
    name: Box
    parts:
      - id: lid
        model: /models/Box/lid.glb
        position: [0, 1, 0]
        direction: [0, 0.5, 0]
        rotation: [0, 0, 1.57]
`))
	require.NoError(t, err)
	p, ok := c.Lookup("x").Part("lid")
	require.True(t, ok)
	assert.Equal(t, 1.0, p.AssembledPosition.Y)
	assert.Equal(t, 0.5, p.ExplosionDirection.Y)
	assert.Equal(t, 1.57, p.AssembledRotation.Z)
}
