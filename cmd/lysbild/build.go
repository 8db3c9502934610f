package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"k8s.io/klog/v2"

	"github.com/mkerell/lysbild/pkg/lysbild"
)

var (
	buildForce bool
	buildJobs  int
	buildEXIF  bool
	buildWatch bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Process gallery images and write manifests",
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().String("source", "gallery", "source root; one subdirectory per gallery")
	buildCmd.Flags().String("out", "web/public/assets/gallery", "output root for variants and manifests")
	buildCmd.Flags().String("site-config", "web/public/site.json", "site configuration document to merge gallery entries into")
	buildCmd.Flags().String("static", "", "optional static asset tree copied into the output root")
	buildCmd.Flags().BoolVar(&buildForce, "force", false, "reprocess all images, even if unchanged")
	buildCmd.Flags().IntVarP(&buildJobs, "jobs", "j", 1, "number of parallel jobs (0 = all CPUs)")
	buildCmd.Flags().BoolVar(&buildEXIF, "exif", false, "enrich manifest records with EXIF metadata (needs exiftool)")
	buildCmd.Flags().BoolVar(&buildWatch, "watch", false, "rebuild whenever the source tree changes")

	for _, name := range []string{"source", "out", "site-config", "static"} {
		if err := viper.BindPFlag(name, buildCmd.Flags().Lookup(name)); err != nil {
			klog.Exitf("bind %s: %v", name, err)
		}
	}
}

func buildConfig() *lysbild.Config {
	return &lysbild.Config{
		SourceDir:  viper.GetString("source"),
		OutDir:     viper.GetString("out"),
		SiteConfig: viper.GetString("site-config"),
		StaticDir:  viper.GetString("static"),
		Sizes:      configSizes(),
		Quality:    viper.GetInt("quality"),
		Jobs:       buildJobs,
		Force:      buildForce,
		EXIF:       buildEXIF,
	}
}

// configSizes reads the size-class table from the config file
// (sizes: {thumb: 400, ...}), sorted by target edge for a stable
// build order. An empty table falls back to the built-in defaults.
func configSizes() []lysbild.SizeClass {
	m := viper.GetStringMap("sizes")
	if len(m) == 0 {
		return nil
	}

	scs := []lysbild.SizeClass{}
	for name, v := range m {
		var edge int
		switch n := v.(type) {
		case int:
			edge = n
		case int64:
			edge = int(n)
		case float64:
			edge = int(n)
		default:
			klog.Exitf("sizes.%s: want an integer, got %v", name, v)
		}
		if edge <= 0 {
			klog.Exitf("sizes.%s: target edge must be positive", name)
		}
		scs = append(scs, lysbild.SizeClass{Name: name, MaxEdge: edge})
	}

	sort.Slice(scs, func(i, j int) bool { return scs[i].MaxEdge < scs[j].MaxEdge })
	return scs
}

func runBuild(_ *cobra.Command, _ []string) error {
	c := buildConfig()

	if _, err := os.Stat(c.SourceDir); err != nil {
		return fmt.Errorf("source directory %q: %w", c.SourceDir, err)
	}

	sum, err := lysbild.Build(c)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	printSummary(sum)

	if buildWatch {
		return watch(c)
	}

	if sum.Errors > 0 {
		return fmt.Errorf("%d image(s) failed to process", sum.Errors)
	}
	return nil
}

func printSummary(s *lysbild.Summary) {
	fmt.Printf("Done: %d processed, %d skipped, %d errors\n", s.Processed, s.Skipped, s.Errors)

	srcMB := float64(s.SourceBytes) / (1 << 20)
	outMB := float64(s.OutputBytes) / (1 << 20)
	fmt.Printf("Total size: %.1fMB (source) -> %.1fMB (optimized)\n", srcMB, outMB)
	if s.SourceBytes > 0 {
		fmt.Printf("Savings: %.0f%% reduction\n", (1-outMB/srcMB)*100)
	}

	if len(s.RemovedGalleries) > 0 {
		fmt.Printf("Removed orphaned galleries: %s\n", strings.Join(s.RemovedGalleries, ", "))
	}
}

// watch rebuilds whenever the source tree changes. Per-image errors
// are reported and waited out rather than exiting, since the operator
// is usually mid-edit.
func watch(c *lysbild.Config) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("new watcher: %w", err)
	}
	defer w.Close()

	addDirs := func() {
		dirs, err := lysbild.Discover(c.SourceDir)
		if err != nil {
			klog.Errorf("discover: %v", err)
			return
		}
		if err := w.Add(c.SourceDir); err != nil {
			klog.Errorf("watch %s: %v", c.SourceDir, err)
		}
		for _, d := range dirs {
			p := filepath.Join(c.SourceDir, d)
			if err := w.Add(p); err != nil {
				klog.Errorf("watch %s: %v", p, err)
			}
		}
	}
	addDirs()
	klog.Infof("watching %s ...", c.SourceDir)

	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			klog.Infof("change detected: %s", event)
			sum, err := lysbild.Build(c)
			if err != nil {
				klog.Errorf("build failed: %v", err)
				continue
			}
			printSummary(sum)
			addDirs()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			klog.Errorf("watch error: %v", err)
		}
	}
}
