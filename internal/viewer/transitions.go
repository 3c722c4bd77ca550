package viewer

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrUnknownPart  = errors.New("unknown part")
	ErrUnknownGroup = errors.New("unknown group")
	ErrNotSelected  = errors.New("part is not selected")
	ErrInvalidTab   = errors.New("invalid tab")
)

// ============================================================
// Display
// ============================================================

// DisplayTransform returns where a part is drawn. A manual transform wins
// over the explosion formula.
func DisplayTransform(p Part, s ViewState) ManualTransform {
	if mt, ok := s.ManualTransforms[p.ID]; ok {
		return mt
	}
	return ManualTransform{
		Position: p.AssembledPosition.Add(p.ExplosionDirection.Scale(s.Explosion)),
		Rotation: p.AssembledRotation,
	}
}

// ============================================================
// Transitions
// ============================================================

// SetExplosion clamps v to [0, MaxExplosion]. Moving the slider drops every
// manual transform, not only those of parts it would move.
func SetExplosion(s ViewState, v float64) ViewState {
	next := s.Clone()
	next.Explosion = clamp(v, 0, MaxExplosion)
	if len(next.ManualTransforms) > 0 {
		next.ManualTransforms = map[string]ManualTransform{}
	}
	return next
}

// SelectPart selects a part; an empty id deselects.
func SelectPart(a *Assembly, s ViewState, partID string) (ViewState, error) {
	if partID != "" {
		if _, ok := a.Part(partID); !ok {
			return s, fmt.Errorf("%w: %s", ErrUnknownPart, partID)
		}
	}
	next := s.Clone()
	next.SelectedPartID = partID
	return next, nil
}

// FocusRequest asks the renderer to glide the camera toward a part.
type FocusRequest struct {
	PartID            string        `json:"partId"`
	Target            Vec3          `json:"target"`
	CameraDestination Vec3          `json:"cameraDestination"`
	TargetLerp        float64       `json:"targetLerp"`
	CameraLerp        float64       `json:"cameraLerp"`
	Duration          time.Duration `json:"-"`
	DurationMS        int64         `json:"durationMs"`
}

const (
	FocusDuration   = time.Second
	focusTargetLerp = 0.1
	focusCameraLerp = 0.05
)

var focusCameraOffset = V(0.5, 0.5, 0.5)

// FocusOn selects the part and aims the camera at its current display
// position.
func FocusOn(a *Assembly, s ViewState, partID string) (ViewState, FocusRequest, error) {
	p, ok := a.Part(partID)
	if !ok {
		return s, FocusRequest{}, fmt.Errorf("%w: %s", ErrUnknownPart, partID)
	}
	target := DisplayTransform(p, s).Position

	next := s.Clone()
	next.SelectedPartID = p.ID
	return next, FocusRequest{
		PartID:            p.ID,
		Target:            target,
		CameraDestination: target.Add(focusCameraOffset),
		TargetLerp:        focusTargetLerp,
		CameraLerp:        focusCameraLerp,
		Duration:          FocusDuration,
		DurationMS:        FocusDuration.Milliseconds(),
	}, nil
}

// SetManualTransform records the end of a manipulation gesture. Only the
// selected part carries the gizmo.
func SetManualTransform(a *Assembly, s ViewState, partID string, position, rotation Vec3) (ViewState, error) {
	if _, ok := a.Part(partID); !ok {
		return s, fmt.Errorf("%w: %s", ErrUnknownPart, partID)
	}
	if s.SelectedPartID != partID {
		return s, fmt.Errorf("%w: %s", ErrNotSelected, partID)
	}
	next := s.Clone()
	next.ManualTransforms[partID] = ManualTransform{Position: position, Rotation: rotation}
	return next, nil
}

// ToggleGroupVisibility flips every part sharing modelRef. The first member
// decides the new value so the group never ends up split.
func ToggleGroupVisibility(a *Assembly, s ViewState, modelRef string) (ViewState, error) {
	g, ok := a.Group(modelRef)
	if !ok {
		return s, fmt.Errorf("%w: %s", ErrUnknownGroup, modelRef)
	}
	visible := !s.IsVisible(g.PartIDs[0])

	next := s.Clone()
	for _, id := range g.PartIDs {
		next.VisibleParts[id] = visible
	}
	return next, nil
}

// ToggleGroupChecked marks a group as extra context for assistant questions.
func ToggleGroupChecked(a *Assembly, s ViewState, modelRef string) (ViewState, error) {
	if _, ok := a.Group(modelRef); !ok {
		return s, fmt.Errorf("%w: %s", ErrUnknownGroup, modelRef)
	}
	next := s.Clone()
	next.CheckedGroups[modelRef] = !next.CheckedGroups[modelRef]
	return next, nil
}

func SetNote(s ViewState, note string) ViewState {
	next := s.Clone()
	next.Note = note
	return next
}

// AppendToNote copies a selection into the note and opens the notes tab.
func AppendToNote(s ViewState, text string) ViewState {
	text = strings.TrimSpace(text)
	if text == "" {
		return s
	}
	next := s.Clone()
	if next.Note == "" {
		next.Note = text
	} else {
		next.Note = next.Note + "\n\n" + text
	}
	next.ActiveTab = TabNotes
	return next
}

func SetActiveTab(s ViewState, tab Tab) (ViewState, error) {
	if tab != TabAI && tab != TabNotes {
		return s, fmt.Errorf("%w: %q", ErrInvalidTab, tab)
	}
	next := s.Clone()
	next.ActiveTab = tab
	return next, nil
}

func SetSidebarWidth(s ViewState, width float64) ViewState {
	next := s.Clone()
	next.SidebarWidth = clamp(width, MinSidebarWidth, MaxSidebarWidth)
	return next
}

func AppendChat(s ViewState, msg ChatMessage) ViewState {
	next := s.Clone()
	next.ChatHistory = append(next.ChatHistory, msg)
	return next
}

// Reset returns the first-visit state, the same value a reload finds once
// storage has been cleared.
func Reset(a *Assembly) ViewState {
	return NewViewState(a)
}
