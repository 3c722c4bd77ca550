package viewer_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simvex/internal/viewer"
)

func TestViewStateRoundTrip(t *testing.T) {
	ctx := context.Background()
	a := drone(t)
	p := viewer.NewPersister(viewer.NewMemoryStore(), nil)

	s := viewer.SetExplosion(viewer.NewViewState(a), 0.35)
	s, err := viewer.SelectPart(a, s, "Gearing_Unit_RF")
	require.NoError(t, err)
	s, err = viewer.SetManualTransform(a, s, "Gearing_Unit_RF", viewer.V(0.1, -0.2, 0.3), viewer.V(0, 3.14, 0))
	require.NoError(t, err)
	s, err = viewer.ToggleGroupVisibility(a, s, "/models/Drone/랜딩 레그.glb")
	require.NoError(t, err)
	s, err = viewer.ToggleGroupChecked(a, s, "/models/Drone/기어 세트.glb")
	require.NoError(t, err)
	s = viewer.AppendToNote(s, "gear ratio 3:1")
	s = viewer.AppendChat(s, viewer.ChatMessage{Role: viewer.RoleUser, Text: "why?"})
	s = viewer.SetSidebarWidth(s, 420)

	require.NoError(t, p.SaveViewState(ctx, "u1", a.ID, s))
	got, err := p.LoadViewState(ctx, "u1", a)
	require.NoError(t, err)

	if diff := cmp.Diff(s, got, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadViewStateDefaults(t *testing.T) {
	ctx := context.Background()
	a := drone(t)
	store := viewer.NewMemoryStore()
	p := viewer.NewPersister(store, nil)

	got, err := p.LoadViewState(ctx, "u1", a)
	require.NoError(t, err)
	assert.Equal(t, viewer.NewViewState(a), got)

	require.NoError(t, store.Set(ctx, "u1", viewer.StateKey(a.ID), "{not json"))
	got, err = p.LoadViewState(ctx, "u1", a)
	require.NoError(t, err)
	assert.Equal(t, viewer.NewViewState(a), got)
}

func TestLoadViewStateRepairsPartialValues(t *testing.T) {
	ctx := context.Background()
	a := drone(t)
	store := viewer.NewMemoryStore()
	p := viewer.NewPersister(store, nil)

	raw := `{"explosion":9,"selectedPartId":"gone","visibleParts":{"Main_Frame":false},"activeTab":"x","sidebarWidth":10}`
	require.NoError(t, store.Set(ctx, "u1", viewer.StateKey(a.ID), raw))

	got, err := p.LoadViewState(ctx, "u1", a)
	require.NoError(t, err)
	assert.Equal(t, viewer.MaxExplosion, got.Explosion)
	assert.Empty(t, got.SelectedPartID)
	assert.False(t, got.IsVisible("Main_Frame"))
	assert.True(t, got.VisibleParts["Beater_Disc"])
	assert.Equal(t, viewer.TabAI, got.ActiveTab)
	assert.Equal(t, float64(viewer.MinSidebarWidth), got.SidebarWidth)
	assert.NotNil(t, got.ManualTransforms)
	assert.NotNil(t, got.ChatHistory)
}

func TestCameraPersistence(t *testing.T) {
	ctx := context.Background()
	store := viewer.NewMemoryStore()
	p := viewer.NewPersister(store, nil)

	cam, found, err := p.LoadCamera(ctx, "u1", "1")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, viewer.DefaultCamera, cam)

	require.NoError(t, store.Set(ctx, "u1", viewer.CameraKey("1"),
		`{"position":{"x":1,"y":2,"z":3},"target":{"x":0,"y":0.5,"z":0}}`))
	cam, found, err = p.LoadCamera(ctx, "u1", "1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, viewer.V(1, 2, 3), cam.Position)
	assert.Equal(t, viewer.V(0, 0.5, 0), cam.Target)

	require.NoError(t, store.Set(ctx, "u1", viewer.CameraKey("1"), `{"position":[1,2]}`))
	_, found, err = p.LoadCamera(ctx, "u1", "1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSaveCameraWritesObjectForm(t *testing.T) {
	ctx := context.Background()
	store := viewer.NewMemoryStore()
	p := viewer.NewPersister(store, nil)

	want := viewer.CameraState{Position: viewer.V(1, 2, 3), Target: viewer.V(0, 0.5, 0)}
	require.NoError(t, p.SaveCamera(ctx, "u1", "1", want))

	raw, ok, err := store.Get(ctx, "u1", viewer.CameraKey("1"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"position":{"x":1,"y":2,"z":3},"target":{"x":0,"y":0.5,"z":0}}`, raw)

	got, found, err := p.LoadCamera(ctx, "u1", "1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)
}

func TestClearRemovesOnlyOneAssembly(t *testing.T) {
	ctx := context.Background()
	store := viewer.NewMemoryStore()
	p := viewer.NewPersister(store, nil)

	for _, key := range []string{viewer.StateKey("1"), viewer.CameraKey("1"), viewer.StateKey("2"), viewer.FavoritesKey} {
		require.NoError(t, store.Set(ctx, "u1", key, "{}"))
	}
	require.NoError(t, p.Clear(ctx, "u1", "1"))

	for key, want := range map[string]bool{
		viewer.StateKey("1"):  false,
		viewer.CameraKey("1"): false,
		viewer.StateKey("2"):  true,
		viewer.FavoritesKey:   true,
	} {
		_, ok, err := store.Get(ctx, "u1", key)
		require.NoError(t, err)
		assert.Equal(t, want, ok, key)
	}
}

func TestToggleFavorite(t *testing.T) {
	ctx := context.Background()
	store := viewer.NewMemoryStore()
	p := viewer.NewPersister(store, nil)

	ids, err := p.ToggleFavorite(ctx, "u1", "3")
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, ids)

	ids, err = p.ToggleFavorite(ctx, "u1", "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "1"}, ids)

	ids, err = p.ToggleFavorite(ctx, "u1", "3")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, ids)

	other, err := p.Favorites(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, other)

	require.NoError(t, store.Set(ctx, "u1", viewer.FavoritesKey, `["2","2","5"]`))
	ids, err = p.Favorites(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "5"}, ids)
}
