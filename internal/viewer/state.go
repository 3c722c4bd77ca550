package viewer

import "math"

const (
	MaxExplosion        = 0.5
	DefaultSidebarWidth = 384
	MinSidebarWidth     = 250
	MaxSidebarWidth     = 800
)

type Tab string

const (
	TabAI    Tab = "ai"
	TabNotes Tab = "notes"
)

type Role string

const (
	RoleUser Role = "user"
	RoleAI   Role = "ai"
)

// ManualTransform is a user-authored placement that replaces the explosion
// formula for one part.
type ManualTransform struct {
	Position Vec3 `json:"position"`
	Rotation Vec3 `json:"rotation"`
}

type ChatMessage struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// ViewState is everything a user has done to one assembly. Transitions in
// transitions.go never mutate their input.
type ViewState struct {
	Explosion        float64                    `json:"explosion"`
	SelectedPartID   string                     `json:"selectedPartId,omitempty"`
	VisibleParts     map[string]bool            `json:"visibleParts"`
	ManualTransforms map[string]ManualTransform `json:"manualTransforms"`
	CheckedGroups    map[string]bool            `json:"checkedGroups"`
	Note             string                     `json:"note"`
	ChatHistory      []ChatMessage              `json:"chatHistory"`
	ActiveTab        Tab                        `json:"activeTab"`
	SidebarWidth     float64                    `json:"sidebarWidth"`
}

type CameraState struct {
	Position Vec3 `json:"position"`
	Target   Vec3 `json:"target"`
}

// DefaultCamera is the pose a reset snaps to.
var DefaultCamera = CameraState{
	Position: V(0.8, 0.8, 0.8),
	Target:   V(0, 0, 0),
}

// NewViewState returns the state of a first visit: assembled, every part
// visible, nothing selected.
func NewViewState(a *Assembly) ViewState {
	s := ViewState{
		VisibleParts:     make(map[string]bool, len(a.Parts)),
		ManualTransforms: map[string]ManualTransform{},
		CheckedGroups:    map[string]bool{},
		ChatHistory:      []ChatMessage{},
		ActiveTab:        TabAI,
		SidebarWidth:     DefaultSidebarWidth,
	}
	for _, p := range a.Parts {
		s.VisibleParts[p.ID] = true
	}
	return s
}

// Clone returns a deep copy.
func (s ViewState) Clone() ViewState {
	out := s
	out.VisibleParts = make(map[string]bool, len(s.VisibleParts))
	for k, v := range s.VisibleParts {
		out.VisibleParts[k] = v
	}
	out.ManualTransforms = make(map[string]ManualTransform, len(s.ManualTransforms))
	for k, v := range s.ManualTransforms {
		out.ManualTransforms[k] = v
	}
	out.CheckedGroups = make(map[string]bool, len(s.CheckedGroups))
	for k, v := range s.CheckedGroups {
		out.CheckedGroups[k] = v
	}
	out.ChatHistory = append([]ChatMessage{}, s.ChatHistory...)
	return out
}

// IsVisible treats parts missing from the map as visible.
func (s ViewState) IsVisible(partID string) bool {
	v, ok := s.VisibleParts[partID]
	return !ok || v
}

// normalize repairs values that came from storage or a client.
func (s ViewState) normalize(a *Assembly) ViewState {
	if s.VisibleParts == nil {
		s.VisibleParts = map[string]bool{}
	}
	for _, p := range a.Parts {
		if _, ok := s.VisibleParts[p.ID]; !ok {
			s.VisibleParts[p.ID] = true
		}
	}
	if s.ManualTransforms == nil {
		s.ManualTransforms = map[string]ManualTransform{}
	}
	if s.CheckedGroups == nil {
		s.CheckedGroups = map[string]bool{}
	}
	if s.ChatHistory == nil {
		s.ChatHistory = []ChatMessage{}
	}
	if s.ActiveTab != TabAI && s.ActiveTab != TabNotes {
		s.ActiveTab = TabAI
	}
	if s.SidebarWidth == 0 || math.IsNaN(s.SidebarWidth) {
		s.SidebarWidth = DefaultSidebarWidth
	}
	s.SidebarWidth = clamp(s.SidebarWidth, MinSidebarWidth, MaxSidebarWidth)
	s.Explosion = clamp(s.Explosion, 0, MaxExplosion)
	if s.SelectedPartID != "" {
		if _, ok := a.Part(s.SelectedPartID); !ok {
			s.SelectedPartID = ""
		}
	}
	return s
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
