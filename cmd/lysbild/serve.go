package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

var (
	serveAddr string
	serveDir  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the built site over HTTP for local preview",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "localhost:12800", "host:port to bind to")
	serveCmd.Flags().StringVar(&serveDir, "dir", "web/public", "directory to serve")
}

func runServe(_ *cobra.Command, _ []string) error {
	fs := http.FileServer(http.Dir(serveDir))
	klog.Infof("serving %s on http://%s ...", serveDir, serveAddr)
	if err := http.ListenAndServe(serveAddr, fs); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}
