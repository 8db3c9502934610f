package lysbild

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// WriteManifest publishes the manifest for one gallery, replacing any
// previous document. Records are sorted by id; the viewer handles any
// shuffling itself.
func WriteManifest(dir string, records []ImageRecord, sizes []SizeClass) error {
	if records == nil {
		records = []ImageRecord{}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })

	st := map[string]int{}
	for _, sc := range sizes {
		st[sc.Name] = sc.MaxEdge
	}

	m := Manifest{
		Images:    records,
		Generated: time.Now().UTC().Format(time.RFC3339),
		Sizes:     st,
	}

	bs, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	return writeFileAtomic(filepath.Join(dir, ManifestName), append(bs, '\n'), 0o644)
}

// ReadManifest loads a gallery's previous manifest so records of
// unchanged images can be carried forward. A missing manifest yields
// an empty one.
func ReadManifest(dir string) (*Manifest, error) {
	bs, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if errors.Is(err, fs.ErrNotExist) {
		return &Manifest{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	m := &Manifest{}
	if err := json.Unmarshal(bs, m); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	return m, nil
}
