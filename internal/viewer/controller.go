package viewer

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"simvex/internal/assistant"
)

var (
	ErrEmptyQuestion = errors.New("question is empty")
	ErrNotConfirmed  = errors.New("reset requires confirmation")
	ErrUnknownFocus  = errors.New("focus needs a part or a group")
	ErrAssistant     = errors.New("assistant failed")
)

const DefaultCameraSave = 500 * time.Millisecond

// Catalog resolves assembly ids, falling back to a default assembly.
type Catalog interface {
	Lookup(id string) *Assembly
}

// ============================================================
// Controller
// ============================================================

// Controller owns the per-owner, per-assembly view state. Every mutation
// is serialized per (owner, assembly) and written through to the store;
// the last write wins.
type Controller struct {
	catalog   Catalog
	persist   *Persister
	assistant assistant.Assistant
	cameras   *Debouncer
	log       *zap.Logger

	mu          sync.Mutex
	locks       map[string]*keyLock
	resets      map[string]bool
	cameraSaves map[string]*cameraSave
}

// keyLock is dropped from the lock table once nobody holds or waits on it.
type keyLock struct {
	mu   sync.Mutex
	refs int
}

// cameraSave is the latest pose scheduled for a key. A debounced write only
// lands while it is still the scheduled one.
type cameraSave struct {
	cam CameraState
}

type ControllerOptions struct {
	CameraSaveDelay time.Duration
	Logger          *zap.Logger
}

func NewController(catalog Catalog, store Store, ai assistant.Assistant, opts ControllerOptions) *Controller {
	if opts.CameraSaveDelay <= 0 {
		opts.CameraSaveDelay = DefaultCameraSave
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Controller{
		catalog:   catalog,
		persist:   NewPersister(store, opts.Logger),
		assistant: ai,
		cameras:   NewDebouncer(opts.CameraSaveDelay),
		log:       opts.Logger,
		locks:       make(map[string]*keyLock),
		resets:      make(map[string]bool),
		cameraSaves: make(map[string]*cameraSave),
	}
}

// View is a state plus everything derived from it for rendering.
type View struct {
	AssemblyID   string      `json:"assemblyId"`
	Name         string      `json:"name"`
	DisplayName  string      `json:"displayName"`
	State        ViewState   `json:"state"`
	Parts        []PartView  `json:"parts"`
	Groups       []GroupView `json:"groups"`
	Selected     *Part       `json:"selected,omitempty"`
	CheckedNames []string    `json:"checkedNames"`
}

type PartView struct {
	ID        string `json:"id"`
	ModelRef  string `json:"modelRef"`
	Position  Vec3   `json:"position"`
	Rotation  Vec3   `json:"rotation"`
	Visible   bool   `json:"visible"`
	Manual    bool   `json:"manual"`
	Selected  bool   `json:"selected"`
	GroupSize int    `json:"groupSize"`
}

type GroupView struct {
	ModelRef string   `json:"modelRef"`
	Name     string   `json:"name"`
	PartIDs  []string `json:"partIds"`
	Visible  bool     `json:"visible"`
	Checked  bool     `json:"checked"`
}

// Render derives the view of a state.
func Render(a *Assembly, s ViewState) View {
	groups := a.Groups()
	sizes := make(map[string]int, len(groups))
	for _, g := range groups {
		sizes[g.ModelRef] = len(g.PartIDs)
	}

	v := View{
		AssemblyID:   a.ID,
		Name:         a.Name,
		DisplayName:  a.DisplayName,
		State:        s,
		Parts:        make([]PartView, 0, len(a.Parts)),
		Groups:       make([]GroupView, 0, len(groups)),
		CheckedNames: checkedNames(a, s),
	}
	for _, p := range a.Parts {
		t := DisplayTransform(p, s)
		_, manual := s.ManualTransforms[p.ID]
		v.Parts = append(v.Parts, PartView{
			ID:        p.ID,
			ModelRef:  p.ModelRef,
			Position:  t.Position,
			Rotation:  t.Rotation,
			Visible:   s.IsVisible(p.ID),
			Manual:    manual,
			Selected:  p.ID == s.SelectedPartID,
			GroupSize: sizes[p.ModelRef],
		})
	}
	for _, g := range groups {
		v.Groups = append(v.Groups, GroupView{
			ModelRef: g.ModelRef,
			Name:     ModelName(g.ModelRef),
			PartIDs:  g.PartIDs,
			Visible:  s.IsVisible(g.PartIDs[0]),
			Checked:  s.CheckedGroups[g.ModelRef],
		})
	}
	if p, ok := a.Part(s.SelectedPartID); ok {
		v.Selected = &p
	}
	return v
}

// ============================================================
// State Operations
// ============================================================

// Load returns the current view without changing anything.
func (c *Controller) Load(ctx context.Context, owner, assemblyID string) (View, error) {
	a := c.catalog.Lookup(assemblyID)
	unlock := c.lock(owner, a.ID)
	defer unlock()

	s, err := c.persist.LoadViewState(ctx, owner, a)
	if err != nil {
		return View{}, err
	}
	return Render(a, s), nil
}

func (c *Controller) SetExplosion(ctx context.Context, owner, assemblyID string, value float64) (View, error) {
	return c.mutate(ctx, owner, assemblyID, func(_ *Assembly, s ViewState) (ViewState, error) {
		return SetExplosion(s, value), nil
	})
}

func (c *Controller) SelectPart(ctx context.Context, owner, assemblyID, partID string) (View, error) {
	return c.mutate(ctx, owner, assemblyID, func(a *Assembly, s ViewState) (ViewState, error) {
		return SelectPart(a, s, partID)
	})
}

// Focus accepts a part id, or a group whose first member is focused.
func (c *Controller) Focus(ctx context.Context, owner, assemblyID, partID, modelRef string) (View, FocusRequest, error) {
	var req FocusRequest
	view, err := c.mutate(ctx, owner, assemblyID, func(a *Assembly, s ViewState) (ViewState, error) {
		id := partID
		if id == "" && modelRef != "" {
			g, ok := a.Group(modelRef)
			if !ok {
				return s, fmt.Errorf("%w: %s", ErrUnknownGroup, modelRef)
			}
			id = g.PartIDs[0]
		}
		if id == "" {
			return s, ErrUnknownFocus
		}
		next, r, err := FocusOn(a, s, id)
		req = r
		return next, err
	})
	return view, req, err
}

func (c *Controller) SetManualTransform(ctx context.Context, owner, assemblyID, partID string, position, rotation Vec3) (View, error) {
	return c.mutate(ctx, owner, assemblyID, func(a *Assembly, s ViewState) (ViewState, error) {
		return SetManualTransform(a, s, partID, position, rotation)
	})
}

func (c *Controller) ToggleGroupVisibility(ctx context.Context, owner, assemblyID, modelRef string) (View, error) {
	return c.mutate(ctx, owner, assemblyID, func(a *Assembly, s ViewState) (ViewState, error) {
		return ToggleGroupVisibility(a, s, modelRef)
	})
}

func (c *Controller) ToggleGroupChecked(ctx context.Context, owner, assemblyID, modelRef string) (View, error) {
	return c.mutate(ctx, owner, assemblyID, func(a *Assembly, s ViewState) (ViewState, error) {
		return ToggleGroupChecked(a, s, modelRef)
	})
}

func (c *Controller) SetNote(ctx context.Context, owner, assemblyID, note string) (View, error) {
	return c.mutate(ctx, owner, assemblyID, func(_ *Assembly, s ViewState) (ViewState, error) {
		return SetNote(s, note), nil
	})
}

func (c *Controller) AppendToNote(ctx context.Context, owner, assemblyID, text string) (View, error) {
	return c.mutate(ctx, owner, assemblyID, func(_ *Assembly, s ViewState) (ViewState, error) {
		return AppendToNote(s, text), nil
	})
}

// Layout updates the active tab and/or sidebar width; nil leaves a field.
func (c *Controller) Layout(ctx context.Context, owner, assemblyID string, tab *Tab, width *float64) (View, error) {
	return c.mutate(ctx, owner, assemblyID, func(_ *Assembly, s ViewState) (ViewState, error) {
		var err error
		if tab != nil {
			if s, err = SetActiveTab(s, *tab); err != nil {
				return s, err
			}
		}
		if width != nil {
			s = SetSidebarWidth(s, *width)
		}
		return s, nil
	})
}

// ResetAll wipes the assembly's state, notes, and chat, drops any camera
// write still waiting, and arms a one-shot camera reset.
func (c *Controller) ResetAll(ctx context.Context, owner, assemblyID string, confirmed bool) (View, error) {
	if !confirmed {
		return View{}, ErrNotConfirmed
	}
	a := c.catalog.Lookup(assemblyID)
	unlock := c.lock(owner, a.ID)
	defer unlock()

	k := key(owner, a.ID)
	c.cameras.Cancel(k)
	c.mu.Lock()
	delete(c.cameraSaves, k)
	c.mu.Unlock()

	if err := c.persist.Clear(ctx, owner, a.ID); err != nil {
		return View{}, err
	}

	c.mu.Lock()
	c.resets[k] = true
	c.mu.Unlock()

	c.log.Info("study state reset", zap.String("owner", owner), zap.String("assembly", a.ID))
	return Render(a, Reset(a)), nil
}

func (c *Controller) mutate(ctx context.Context, owner, assemblyID string, fn func(*Assembly, ViewState) (ViewState, error)) (View, error) {
	a := c.catalog.Lookup(assemblyID)
	unlock := c.lock(owner, a.ID)
	defer unlock()

	s, err := c.persist.LoadViewState(ctx, owner, a)
	if err != nil {
		return View{}, err
	}
	next, err := fn(a, s)
	if err != nil {
		return View{}, err
	}
	if err := c.persist.SaveViewState(ctx, owner, a.ID, next); err != nil {
		return View{}, err
	}
	return Render(a, next), nil
}

// ============================================================
// Camera
// ============================================================

// CameraView is what a renderer applies on load. Reset is true exactly
// once after ResetAll.
type CameraView struct {
	CameraState
	Saved bool `json:"saved"`
	Reset bool `json:"reset"`
}

func (c *Controller) Camera(ctx context.Context, owner, assemblyID string) (CameraView, error) {
	a := c.catalog.Lookup(assemblyID)
	k := key(owner, a.ID)

	c.mu.Lock()
	reset := c.resets[k]
	delete(c.resets, k)
	c.mu.Unlock()
	if reset {
		return CameraView{CameraState: DefaultCamera, Reset: true}, nil
	}

	cam, saved, err := c.persist.LoadCamera(ctx, owner, a.ID)
	if err != nil {
		return CameraView{}, err
	}
	return CameraView{CameraState: cam, Saved: saved}, nil
}

// UpdateCamera schedules a write; bursts of orbit changes collapse into one.
// A new pose also clears a reset the renderer has not read yet.
func (c *Controller) UpdateCamera(owner, assemblyID string, cam CameraState) {
	a := c.catalog.Lookup(assemblyID)
	k := key(owner, a.ID)
	save := &cameraSave{cam: cam}

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.resets, k)
	c.cameraSaves[k] = save
	c.cameras.Trigger(k, func() { c.writeCamera(owner, a.ID, save) })
}

// writeCamera runs under the assembly lock, so it either lands before a
// ResetAll clears the store or finds itself unscheduled and does nothing.
func (c *Controller) writeCamera(owner, assemblyID string, save *cameraSave) {
	unlock := c.lock(owner, assemblyID)
	defer unlock()

	k := key(owner, assemblyID)
	c.mu.Lock()
	current := c.cameraSaves[k] == save
	if current {
		delete(c.cameraSaves, k)
	}
	c.mu.Unlock()
	if !current {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.persist.SaveCamera(ctx, owner, assemblyID, save.cam); err != nil {
		c.log.Warn("camera save failed", zap.String("owner", owner), zap.String("assembly", assemblyID), zap.Error(err))
	}
}

// ============================================================
// Assistant
// ============================================================

// Ask records the question, asks the assistant, and appends the answer to
// the assembly the question was asked from, even if the user has moved on.
// The user message stays in the history when the assistant fails.
func (c *Controller) Ask(ctx context.Context, owner, assemblyID, text string) (View, ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return View{}, ChatMessage{}, ErrEmptyQuestion
	}

	var q assistant.Question
	_, err := c.mutate(ctx, owner, assemblyID, func(a *Assembly, s ViewState) (ViewState, error) {
		q = QuestionFor(a, s, text)
		return AppendChat(s, ChatMessage{Role: RoleUser, Text: text}), nil
	})
	if err != nil {
		return View{}, ChatMessage{}, err
	}

	answer, err := c.assistant.Answer(ctx, q)
	if err != nil {
		return View{}, ChatMessage{}, fmt.Errorf("%w: %w", ErrAssistant, err)
	}

	reply := ChatMessage{Role: RoleAI, Text: answer}
	view, err := c.mutate(ctx, owner, assemblyID, func(_ *Assembly, s ViewState) (ViewState, error) {
		return AppendChat(s, reply), nil
	})
	if err != nil {
		return View{}, ChatMessage{}, err
	}
	return view, reply, nil
}

// QuestionFor builds the assistant question for the current selection.
func QuestionFor(a *Assembly, s ViewState, text string) assistant.Question {
	q := assistant.Question{Part: assistant.WholeModel, Text: text}
	if p, ok := a.Part(s.SelectedPartID); ok {
		q.Part = ModelName(p.ModelRef)
	}
	q.Related = checkedNames(a, s)
	return q
}

// ============================================================
// Favorites
// ============================================================

func (c *Controller) Favorites(ctx context.Context, owner string) ([]string, error) {
	return c.persist.Favorites(ctx, owner)
}

func (c *Controller) ToggleFavorite(ctx context.Context, owner, assemblyID string) ([]string, error) {
	unlock := c.lock(owner, FavoritesKey)
	defer unlock()
	return c.persist.ToggleFavorite(ctx, owner, assemblyID)
}

// Close writes camera states still waiting on the debounce.
func (c *Controller) Close() {
	c.cameras.Flush()
}

// ============================================================
// Helpers
// ============================================================

func (c *Controller) lock(owner, name string) func() {
	k := key(owner, name)
	c.mu.Lock()
	l, ok := c.locks[k]
	if !ok {
		l = &keyLock{}
		c.locks[k] = l
	}
	l.refs++
	c.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		c.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(c.locks, k)
		}
		c.mu.Unlock()
	}
}

func key(owner, name string) string {
	return owner + "\x00" + name
}

func checkedNames(a *Assembly, s ViewState) []string {
	names := []string{}
	for _, g := range a.Groups() {
		if s.CheckedGroups[g.ModelRef] {
			names = append(names, ModelName(g.ModelRef))
		}
	}
	sort.Strings(names)
	return names
}

// ModelName turns a model reference into a readable label.
func ModelName(modelRef string) string {
	name := strings.TrimSuffix(path.Base(modelRef), ".glb")
	return strings.ReplaceAll(name, "_", " ")
}
