package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ============================================================
// Archive
// ============================================================

// Archive keeps a copy of every exported document under root/<owner>/.
type Archive struct {
	root string
}

func NewArchive(root string) *Archive {
	return &Archive{root: root}
}

func (a *Archive) OwnerDir(owner string) string {
	return filepath.Join(a.root, sanitize(owner))
}

func (a *Archive) Path(owner, filename string) string {
	return filepath.Join(a.OwnerDir(owner), filepath.Base(filename))
}

func (a *Archive) EnsureDir(owner string) error {
	if err := os.MkdirAll(a.OwnerDir(owner), 0o755); err != nil {
		return fmt.Errorf("mkdir export dir: %w", err)
	}
	return nil
}

func (a *Archive) Save(owner, filename string, data []byte) (string, error) {
	if err := a.EnsureDir(owner); err != nil {
		return "", err
	}
	path := a.Path(owner, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}

// List returns the owner's archived documents, newest name last.
func (a *Archive) List(owner string) []string {
	entries, err := os.ReadDir(a.OwnerDir(owner))
	if err != nil {
		return []string{}
	}
	out := []string{}
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out
}

func sanitize(owner string) string {
	owner = unsafeChars.ReplaceAllString(owner, "_")
	if owner == "" || owner == "." || owner == ".." {
		return "_"
	}
	return owner
}
