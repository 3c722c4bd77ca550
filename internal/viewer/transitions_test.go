package viewer_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simvex/internal/catalog"
	"simvex/internal/viewer"
)

const tol = 1e-9

func drone(t *testing.T) *viewer.Assembly {
	t.Helper()
	a, err := catalog.Default().Get("1")
	require.NoError(t, err)
	require.Equal(t, "Drone", a.Name)
	return a
}

func part(t *testing.T, a *viewer.Assembly, id string) viewer.Part {
	t.Helper()
	p, ok := a.Part(id)
	require.True(t, ok, "part %s", id)
	return p
}

func assertVec(t *testing.T, want, got viewer.Vec3) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, tol, "x")
	assert.InDelta(t, want.Y, got.Y, tol, "y")
	assert.InDelta(t, want.Z, got.Z, tol, "z")
}

func TestExplosionIsLinearPerAxis(t *testing.T) {
	for _, a := range catalog.Default().All() {
		s := viewer.NewViewState(a)
		for _, p := range a.Parts {
			for _, pair := range [][2]float64{{0, 0.5}, {0.1, 0.3}, {0.45, 0.05}} {
				e1, e2 := pair[0], pair[1]
				d1 := viewer.DisplayTransform(p, viewer.SetExplosion(s, e1)).Position
				d2 := viewer.DisplayTransform(p, viewer.SetExplosion(s, e2)).Position
				assertVec(t, p.ExplosionDirection.Scale(e2-e1), d2.Sub(d1))
			}
		}
	}
}

func TestDroneBladeAtHalfExplosion(t *testing.T) {
	a := drone(t)
	s := viewer.SetExplosion(viewer.NewViewState(a), 0.5)

	got := viewer.DisplayTransform(part(t, a, "Impellar_Blade_LF"), s)
	assertVec(t, viewer.V(-0.0809, 0.2591, -0.1778), got.Position)
	assertVec(t, viewer.V(0, 0, 0), got.Rotation)
}

func TestSetExplosionClamps(t *testing.T) {
	a := drone(t)
	s := viewer.NewViewState(a)
	assert.Equal(t, viewer.MaxExplosion, viewer.SetExplosion(s, 3).Explosion)
	assert.Equal(t, 0.0, viewer.SetExplosion(s, -1).Explosion)
}

func TestExplosionClearsManualTransforms(t *testing.T) {
	a := drone(t)
	blade := part(t, a, "Impellar_Blade_LF")
	s := viewer.NewViewState(a)

	s, err := viewer.SelectPart(a, s, blade.ID)
	require.NoError(t, err)
	s, err = viewer.SetManualTransform(a, s, blade.ID, viewer.V(1, 2, 3), viewer.V(0, 1.5, 0))
	require.NoError(t, err)
	assertVec(t, viewer.V(1, 2, 3), viewer.DisplayTransform(blade, s).Position)

	// the slider ignores a part with a manual transform until it moves
	s = viewer.SetExplosion(s, 0.2)
	assert.Empty(t, s.ManualTransforms)
	assertVec(t, blade.AssembledPosition.Add(blade.ExplosionDirection.Scale(0.2)), viewer.DisplayTransform(blade, s).Position)
	assertVec(t, blade.AssembledRotation, viewer.DisplayTransform(blade, s).Rotation)
}

func TestManualTransformRequiresSelection(t *testing.T) {
	a := drone(t)
	s := viewer.NewViewState(a)

	_, err := viewer.SetManualTransform(a, s, "Main_Frame", viewer.V(0, 0, 0), viewer.V(0, 0, 0))
	assert.True(t, errors.Is(err, viewer.ErrNotSelected))

	_, err = viewer.SetManualTransform(a, s, "nope", viewer.V(0, 0, 0), viewer.V(0, 0, 0))
	assert.True(t, errors.Is(err, viewer.ErrUnknownPart))
}

func TestSelectPartDoesNotTouchVisibility(t *testing.T) {
	a := drone(t)
	s, err := viewer.ToggleGroupVisibility(a, viewer.NewViewState(a), part(t, a, "Main_Frame").ModelRef)
	require.NoError(t, err)

	s, err = viewer.SelectPart(a, s, "Main_Frame")
	require.NoError(t, err)
	assert.Equal(t, "Main_Frame", s.SelectedPartID)
	assert.False(t, s.IsVisible("Main_Frame"))

	s, err = viewer.SelectPart(a, s, "")
	require.NoError(t, err)
	assert.Empty(t, s.SelectedPartID)
	assert.False(t, s.IsVisible("Main_Frame"))
}

func TestToggleGroupVisibilityFlipsWholeGroup(t *testing.T) {
	a := drone(t)
	ref := part(t, a, "Impellar_Blade_LF").ModelRef
	g, ok := a.Group(ref)
	require.True(t, ok)
	require.Len(t, g.PartIDs, 4)

	s := viewer.NewViewState(a)
	// a split group follows its first member
	s.VisibleParts[g.PartIDs[2]] = false

	s, err := viewer.ToggleGroupVisibility(a, s, ref)
	require.NoError(t, err)
	for _, id := range g.PartIDs {
		assert.False(t, s.IsVisible(id), id)
	}

	s, err = viewer.ToggleGroupVisibility(a, s, ref)
	require.NoError(t, err)
	for _, id := range g.PartIDs {
		assert.True(t, s.IsVisible(id), id)
	}
	assert.True(t, s.IsVisible("Main_Frame"))

	_, err = viewer.ToggleGroupVisibility(a, s, "/models/none.glb")
	assert.True(t, errors.Is(err, viewer.ErrUnknownGroup))
}

func TestManualTransformSurvivesVisibilityToggle(t *testing.T) {
	a := drone(t)
	blade := part(t, a, "Impellar_Blade_RB")
	s, err := viewer.SelectPart(a, viewer.NewViewState(a), blade.ID)
	require.NoError(t, err)
	s, err = viewer.SetManualTransform(a, s, blade.ID, viewer.V(0.1, 0.2, 0.3), viewer.V(0.4, 0.5, 0.6))
	require.NoError(t, err)
	want := s.ManualTransforms[blade.ID]

	s, err = viewer.ToggleGroupVisibility(a, s, blade.ModelRef)
	require.NoError(t, err)
	s, err = viewer.ToggleGroupVisibility(a, s, blade.ModelRef)
	require.NoError(t, err)

	assert.True(t, s.IsVisible(blade.ID))
	assert.Equal(t, want, s.ManualTransforms[blade.ID])
}

func TestFocusOnUsesDisplayPosition(t *testing.T) {
	a := drone(t)
	nut := part(t, a, "Fixing_Nut_LF")
	s := viewer.SetExplosion(viewer.NewViewState(a), 0.25)

	s, req, err := viewer.FocusOn(a, s, nut.ID)
	require.NoError(t, err)
	assert.Equal(t, nut.ID, s.SelectedPartID)
	assertVec(t, nut.AssembledPosition.Add(nut.ExplosionDirection.Scale(0.25)), req.Target)
	assertVec(t, req.Target.Add(viewer.V(0.5, 0.5, 0.5)), req.CameraDestination)
	assert.Equal(t, int64(1000), req.DurationMS)

	s, err = viewer.SetManualTransform(a, s, nut.ID, viewer.V(1, 1, 1), viewer.V(0, 0, 0))
	require.NoError(t, err)
	_, req, err = viewer.FocusOn(a, s, nut.ID)
	require.NoError(t, err)
	assertVec(t, viewer.V(1, 1, 1), req.Target)
}

func TestTransitionsDoNotMutateInput(t *testing.T) {
	a := drone(t)
	s, err := viewer.SelectPart(a, viewer.NewViewState(a), "Main_Frame")
	require.NoError(t, err)
	s, err = viewer.SetManualTransform(a, s, "Main_Frame", viewer.V(1, 1, 1), viewer.V(0, 0, 0))
	require.NoError(t, err)

	_ = viewer.SetExplosion(s, 0.3)
	_ = viewer.AppendChat(s, viewer.ChatMessage{Role: viewer.RoleUser, Text: "hi"})
	_, _ = viewer.ToggleGroupChecked(a, s, part(t, a, "Main_Frame").ModelRef)

	assert.Len(t, s.ManualTransforms, 1)
	assert.Empty(t, s.ChatHistory)
	assert.Empty(t, s.CheckedGroups)
	assert.Zero(t, s.Explosion)
}

func TestNotesAndLayout(t *testing.T) {
	a := drone(t)
	s := viewer.NewViewState(a)
	assert.Equal(t, viewer.TabAI, s.ActiveTab)

	s = viewer.AppendToNote(s, "  first  ")
	assert.Equal(t, "first", s.Note)
	assert.Equal(t, viewer.TabNotes, s.ActiveTab)
	s = viewer.AppendToNote(s, "second")
	assert.Equal(t, "first\n\nsecond", s.Note)
	assert.Equal(t, s, viewer.AppendToNote(s, "   "))

	s = viewer.SetNote(s, "")
	assert.Empty(t, s.Note)

	_, err := viewer.SetActiveTab(s, "settings")
	assert.True(t, errors.Is(err, viewer.ErrInvalidTab))

	assert.Equal(t, float64(viewer.MinSidebarWidth), viewer.SetSidebarWidth(s, 10).SidebarWidth)
	assert.Equal(t, float64(viewer.MaxSidebarWidth), viewer.SetSidebarWidth(s, 5000).SidebarWidth)
	assert.Equal(t, 500.0, viewer.SetSidebarWidth(s, 500).SidebarWidth)
}
