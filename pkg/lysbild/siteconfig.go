package lysbild

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"k8s.io/klog/v2"
)

// A GalleryEntry is the per-gallery fragment of the site configuration
// that the builder owns. DisplayName and Order are governed here;
// every other field (layout overrides and the like) is user-authored
// and round-tripped verbatim through Extra.
type GalleryEntry struct {
	DisplayName string
	Order       int

	Extra map[string]json.RawMessage
}

func (e GalleryEntry) MarshalJSON() ([]byte, error) {
	m := map[string]json.RawMessage{}
	for k, v := range e.Extra {
		m[k] = v
	}

	var err error
	if m["displayName"], err = json.Marshal(e.DisplayName); err != nil {
		return nil, err
	}
	if m["order"], err = json.Marshal(e.Order); err != nil {
		return nil, err
	}
	return json.Marshal(m)
}

func (e *GalleryEntry) UnmarshalJSON(bs []byte) error {
	m := map[string]json.RawMessage{}
	if err := json.Unmarshal(bs, &m); err != nil {
		return err
	}

	if v, ok := m["displayName"]; ok {
		if err := json.Unmarshal(v, &e.DisplayName); err != nil {
			return fmt.Errorf("displayName: %w", err)
		}
		delete(m, "displayName")
	}
	if v, ok := m["order"]; ok {
		if err := json.Unmarshal(v, &e.Order); err != nil {
			return fmt.Errorf("order: %w", err)
		}
		delete(m, "order")
	}

	e.Extra = m
	return nil
}

var titler = cases.Title(language.Und)

// DisplayName derives a human-readable title from a gallery directory
// name: underscores and hyphens become spaces, words are title-cased.
func DisplayName(name string) string {
	return titler.String(strings.NewReplacer("_", " ", "-", " ").Replace(name))
}

// SyncSiteConfig merges the discovered gallery names, in order, into
// the site configuration document at path. Existing entries keep
// their display name and user-authored fields and get their order
// rewritten; new galleries get an auto-derived display name; vanished
// galleries are dropped. Only the galleries section is rewritten —
// every sibling section passes through untouched.
func SyncSiteConfig(path string, galleries []string) error {
	bs, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}

	doc := map[string]json.RawMessage{}
	if err := json.Unmarshal(bs, &doc); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	sec := map[string]json.RawMessage{}
	if raw, ok := doc["galleries"]; ok {
		if err := json.Unmarshal(raw, &sec); err != nil {
			return fmt.Errorf("galleries section: %w", err)
		}
	}

	items := map[string]GalleryEntry{}
	if raw, ok := sec["items"]; ok {
		if err := json.Unmarshal(raw, &items); err != nil {
			return fmt.Errorf("gallery items: %w", err)
		}
	}

	merged := map[string]GalleryEntry{}
	for i, name := range galleries {
		e, ok := items[name]
		if !ok {
			klog.Infof("new gallery entry: %s", name)
		}
		if e.DisplayName == "" {
			e.DisplayName = DisplayName(name)
		}
		e.Order = i + 1
		merged[name] = e
	}

	// the default gallery survives as long as its directory does
	var def string
	if raw, ok := sec["default"]; ok {
		if err := json.Unmarshal(raw, &def); err != nil {
			def = ""
		}
	}
	if !slices.Contains(galleries, def) {
		def = ""
		if len(galleries) > 0 {
			def = galleries[0]
		}
	}

	if sec["default"], err = json.Marshal(def); err != nil {
		return fmt.Errorf("marshal default: %w", err)
	}
	if def == "" {
		sec["default"] = json.RawMessage("null")
	}
	if sec["items"], err = json.Marshal(merged); err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	if doc["galleries"], err = json.Marshal(sec); err != nil {
		return fmt.Errorf("marshal galleries: %w", err)
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	return writeFileAtomic(path, append(out, '\n'), 0o644)
}
