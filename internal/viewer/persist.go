package viewer

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"simvex/internal/common/metrics"
)

// ============================================================
// Keys
// ============================================================

const (
	FavoritesKey = "favoritedModels"
	UserKey      = "user"
)

func StateKey(assemblyID string) string {
	return "studyState_" + assemblyID
}

func CameraKey(assemblyID string) string {
	return "cameraState_" + assemblyID
}

// Store is a string key/value store partitioned by owner.
type Store interface {
	Get(ctx context.Context, owner, key string) (string, bool, error)
	Set(ctx context.Context, owner, key, value string) error
	Delete(ctx context.Context, owner string, keys ...string) error
}

// ============================================================
// Persister
// ============================================================

// Persister maps view, camera, and favorites state onto a Store as JSON.
// Values that no longer decode are treated as absent.
type Persister struct {
	store Store
	log   *zap.Logger
}

func NewPersister(store Store, log *zap.Logger) *Persister {
	if log == nil {
		log = zap.NewNop()
	}
	return &Persister{store: store, log: log}
}

// LoadViewState returns the saved state or the first-visit state.
func (p *Persister) LoadViewState(ctx context.Context, owner string, a *Assembly) (ViewState, error) {
	state := NewViewState(a)

	raw, ok, err := p.store.Get(ctx, owner, StateKey(a.ID))
	if err != nil {
		return state, fmt.Errorf("load view state: %w", err)
	}
	if !ok {
		return state, nil
	}

	decoded := NewViewState(a)
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		p.corrupt(owner, StateKey(a.ID), err)
		return state, nil
	}
	return decoded.normalize(a), nil
}

func (p *Persister) SaveViewState(ctx context.Context, owner, assemblyID string, s ViewState) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode view state: %w", err)
	}
	if err := p.store.Set(ctx, owner, StateKey(assemblyID), string(data)); err != nil {
		return fmt.Errorf("save view state: %w", err)
	}
	metrics.StateWrites.WithLabelValues("view").Inc()
	return nil
}

// LoadCamera reports found=false when nothing usable is stored.
func (p *Persister) LoadCamera(ctx context.Context, owner, assemblyID string) (CameraState, bool, error) {
	raw, ok, err := p.store.Get(ctx, owner, CameraKey(assemblyID))
	if err != nil {
		return DefaultCamera, false, fmt.Errorf("load camera: %w", err)
	}
	if !ok {
		return DefaultCamera, false, nil
	}

	var cam CameraState
	if err := json.Unmarshal([]byte(raw), &cam); err != nil {
		p.corrupt(owner, CameraKey(assemblyID), err)
		return DefaultCamera, false, nil
	}
	return cam, true, nil
}

// SaveCamera stores the pose with {x, y, z} objects, the form renderers
// read back from cameraState_ keys.
func (p *Persister) SaveCamera(ctx context.Context, owner, assemblyID string, cam CameraState) error {
	data, err := json.Marshal(cameraRecord{
		Position: pointOf(cam.Position),
		Target:   pointOf(cam.Target),
	})
	if err != nil {
		return fmt.Errorf("encode camera: %w", err)
	}
	if err := p.store.Set(ctx, owner, CameraKey(assemblyID), string(data)); err != nil {
		return fmt.Errorf("save camera: %w", err)
	}
	metrics.StateWrites.WithLabelValues("camera").Inc()
	return nil
}

// Clear deletes the view and camera state of one assembly.
func (p *Persister) Clear(ctx context.Context, owner, assemblyID string) error {
	if err := p.store.Delete(ctx, owner, StateKey(assemblyID), CameraKey(assemblyID)); err != nil {
		return fmt.Errorf("clear state: %w", err)
	}
	return nil
}

type point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type cameraRecord struct {
	Position point `json:"position"`
	Target   point `json:"target"`
}

func pointOf(v Vec3) point {
	return point{X: v.X, Y: v.Y, Z: v.Z}
}

// ============================================================
// Favorites
// ============================================================

// Favorites returns the favorited assembly ids in the order they were added.
func (p *Persister) Favorites(ctx context.Context, owner string) ([]string, error) {
	raw, ok, err := p.store.Get(ctx, owner, FavoritesKey)
	if err != nil {
		return nil, fmt.Errorf("load favorites: %w", err)
	}
	if !ok {
		return []string{}, nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		p.corrupt(owner, FavoritesKey, err)
		return []string{}, nil
	}
	return dedupe(ids), nil
}

// ToggleFavorite adds the id at the end, or removes it.
func (p *Persister) ToggleFavorite(ctx context.Context, owner, assemblyID string) ([]string, error) {
	ids, err := p.Favorites(ctx, owner)
	if err != nil {
		return nil, err
	}
	if i := slices.Index(ids, assemblyID); i >= 0 {
		ids = slices.Delete(ids, i, i+1)
	} else {
		ids = append(ids, assemblyID)
	}

	data, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("encode favorites: %w", err)
	}
	if err := p.store.Set(ctx, owner, FavoritesKey, string(data)); err != nil {
		return nil, fmt.Errorf("save favorites: %w", err)
	}
	metrics.StateWrites.WithLabelValues("favorites").Inc()
	return ids, nil
}

func (p *Persister) corrupt(owner, key string, err error) {
	metrics.StateRecoveries.Inc()
	p.log.Warn("stored value unreadable, using defaults",
		zap.String("owner", owner),
		zap.String("key", key),
		zap.Error(err),
	)
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
