package lysbild

import (
	"os"

	"k8s.io/klog/v2"
)

// Stale reports whether an image's outputs need regenerating: any
// expected output is missing, or the source is strictly newer than an
// existing output. The comparison is by modification time only, so
// touching a source without changing its bytes still triggers a
// re-encode. force short-circuits to true.
func Stale(src *SourceImage, outputs []string, force bool) bool {
	if force {
		return true
	}

	for _, out := range outputs {
		fi, err := os.Stat(out)
		if err != nil {
			klog.V(1).Infof("stale %s: %s does not exist", src.ID, out)
			return true
		}
		if src.ModTime.After(fi.ModTime()) {
			klog.V(1).Infof("stale %s: source newer than %s", src.ID, out)
			return true
		}
	}

	return false
}
