package lysbild

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/karrick/godirwalk"
	"k8s.io/klog/v2"
)

// CleanOrphans removes output variants whose source image no longer
// exists, across every size-class directory of one gallery. It
// returns the number of distinct image ids removed, not the raw file
// count. Deletion failures are logged and skipped.
func CleanOrphans(outDir string, sizes []SizeClass, valid map[string]bool) int {
	removed := map[string]bool{}

	for _, sc := range sizes {
		dir := filepath.Join(outDir, sc.Name)
		des, err := godirwalk.ReadDirents(dir, nil)
		if err != nil {
			// size dir may not exist yet
			continue
		}

		for _, de := range des {
			if de.IsDir() {
				continue
			}
			if strings.ToLower(filepath.Ext(de.Name())) != OutputExt {
				continue
			}
			id := strings.TrimSuffix(de.Name(), filepath.Ext(de.Name()))
			if valid[id] {
				continue
			}

			p := filepath.Join(dir, de.Name())
			if err := os.Remove(p); err != nil {
				klog.Warningf("unable to remove orphan %s: %v", p, err)
				continue
			}
			klog.V(1).Infof("removed orphan %s", p)
			removed[id] = true
		}
	}

	return len(removed)
}

// CleanOrphanGalleries removes whole output gallery directories whose
// source directory no longer exists, returning the removed gallery
// names in sorted order. Hidden directories and the "_" static-asset
// directory are never gallery outputs and are left alone.
func CleanOrphanGalleries(outBase string, valid map[string]bool) []string {
	removed := []string{}

	des, err := godirwalk.ReadDirents(outBase, nil)
	if err != nil {
		return removed
	}

	for _, de := range des {
		if !de.IsDir() || strings.HasPrefix(de.Name(), ".") || strings.HasPrefix(de.Name(), "_") {
			continue
		}
		if valid[de.Name()] {
			continue
		}

		p := filepath.Join(outBase, de.Name())
		if err := os.RemoveAll(p); err != nil {
			klog.Warningf("unable to remove orphan gallery %s: %v", p, err)
			continue
		}
		klog.Infof("removed orphan gallery %s", p)
		removed = append(removed, de.Name())
	}

	sort.Strings(removed)
	return removed
}
