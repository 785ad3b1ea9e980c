package hints

import (
	"encoding/json"
	"fmt"
	"io"
)

// ManifestVersion is the current manifest document format.
const ManifestVersion = 1

// Manifest is the serializable form of a hint set, consumed by build tooling
// that keeps reflective metadata alive for the listed types.
type Manifest struct {
	Version int        `json:"version"`
	Types   []TypeHint `json:"types"`
}

// TypeHint is one manifest entry.
type TypeHint struct {
	Type       string           `json:"type"`
	Categories []MemberCategory `json:"categories"`
}

// Manifest returns the deterministic manifest for the container: types
// sorted by canonical name, categories in canonical order.
func (h *Hints) Manifest() Manifest {
	refs := h.reflection.Types()
	m := Manifest{Version: ManifestVersion, Types: make([]TypeHint, 0, len(refs))}
	for _, ref := range refs {
		m.Types = append(m.Types, TypeHint{
			Type:       ref.String(),
			Categories: h.reflection.Categories(ref),
		})
	}
	return m
}

// WriteManifest writes the manifest as indented JSON followed by a newline.
func (h *Hints) WriteManifest(w io.Writer) error {
	data, err := json.MarshalIndent(h.Manifest(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding hints manifest: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing hints manifest: %w", err)
	}
	return nil
}
