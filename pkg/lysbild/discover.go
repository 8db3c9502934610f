package lysbild

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/karrick/godirwalk"
	"k8s.io/klog/v2"
)

// supportedExts are the decodable source formats, matched
// case-insensitively against the file extension.
var supportedExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".tiff": true,
	".bmp":  true,
}

// Discover lists the gallery subdirectories of root in sorted order.
// Hidden directories are skipped. An empty root yields an empty list.
func Discover(root string) ([]string, error) {
	des, err := godirwalk.ReadDirents(root, nil)
	if err != nil {
		return nil, fmt.Errorf("read dirents: %w", err)
	}

	names := []string{}
	for _, de := range des {
		if !de.IsDir() || strings.HasPrefix(de.Name(), ".") {
			continue
		}
		names = append(names, de.Name())
	}

	sort.Strings(names)
	return names, nil
}

// Sources enumerates the supported images directly inside a gallery
// directory, sorted by id. A second file sharing an already-seen stem
// is skipped with a warning, since the stem is the join key between
// sources and outputs.
func Sources(dir string) ([]*SourceImage, error) {
	des, err := godirwalk.ReadDirents(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("read dirents: %w", err)
	}

	names := []string{}
	for _, de := range des {
		if de.IsDir() || strings.HasPrefix(de.Name(), ".") {
			continue
		}
		if !supportedExts[strings.ToLower(filepath.Ext(de.Name()))] {
			continue
		}
		names = append(names, de.Name())
	}
	sort.Strings(names)

	seen := map[string]bool{}
	found := []*SourceImage{}
	for _, name := range names {
		id := strings.TrimSuffix(name, filepath.Ext(name))
		if seen[id] {
			klog.Warningf("skipping %s: id %q already taken in %s", name, id, dir)
			continue
		}
		seen[id] = true

		p := filepath.Join(dir, name)
		fi, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat: %w", err)
		}

		found = append(found, &SourceImage{
			Path:    p,
			ID:      id,
			ModTime: fi.ModTime(),
			Size:    fi.Size(),
		})
	}

	sort.Slice(found, func(i, j int) bool { return found[i].ID < found[j].ID })
	return found, nil
}
