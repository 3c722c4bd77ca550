package viewer

// ============================================================
// Reference Data
// ============================================================

// Assembly is one catalog entry. Assemblies are immutable once loaded.
type Assembly struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Category    string `json:"category"`
	Thumbnail   string `json:"thumbnail"`
	Parts       []Part `json:"parts"`
}

// Part is a rigid sub-component with its placement data. Several parts may
// share one ModelRef; they form a Group.
type Part struct {
	ID                 string `json:"id"`
	ModelRef           string `json:"modelRef"`
	AssembledPosition  Vec3   `json:"assembledPosition"`
	ExplosionDirection Vec3   `json:"explosionDirection"`
	AssembledRotation  Vec3   `json:"assembledRotation"`
	Description        string `json:"description"`
}

// Group is the set of parts sharing one model reference.
type Group struct {
	ModelRef string   `json:"modelRef"`
	PartIDs  []string `json:"partIds"`
}

// Part returns the part with the given id.
func (a *Assembly) Part(id string) (Part, bool) {
	for _, p := range a.Parts {
		if p.ID == id {
			return p, true
		}
	}
	return Part{}, false
}

// Groups returns parts grouped by model reference, in first-appearance order.
func (a *Assembly) Groups() []Group {
	index := make(map[string]int)
	var groups []Group
	for _, p := range a.Parts {
		i, ok := index[p.ModelRef]
		if !ok {
			i = len(groups)
			index[p.ModelRef] = i
			groups = append(groups, Group{ModelRef: p.ModelRef})
		}
		groups[i].PartIDs = append(groups[i].PartIDs, p.ID)
	}
	return groups
}

// Group returns the group for a model reference.
func (a *Assembly) Group(modelRef string) (Group, bool) {
	for _, g := range a.Groups() {
		if g.ModelRef == modelRef {
			return g, true
		}
	}
	return Group{}, false
}
