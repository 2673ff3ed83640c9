// Package web holds the dashboard page of the monitor.
package web

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"runtime"
	"strconv"
)

//go:embed dist/*
var staticAssets embed.FS

// DevModeEnv names the variable that makes the monitor serve the dashboard
// from the source tree, so the page can be edited without rebuilding.
const DevModeEnv = "SSDCTRL_MONITOR_DEV"

// GetAssets returns the dashboard files.
func GetAssets() http.FileSystem {
	if isDevelopmentMode() {
		_, file, _, ok := runtime.Caller(0)
		if !ok {
			panic("cannot locate the web package source")
		}

		dir := path.Join(path.Dir(file), "dist")
		fmt.Fprintf(os.Stderr, "Serving monitor assets from %s\n", dir)

		return http.Dir(dir)
	}

	dist, err := fs.Sub(staticAssets, "dist")
	if err != nil {
		panic(err)
	}

	return http.FS(dist)
}

func isDevelopmentMode() bool {
	dev, err := strconv.ParseBool(os.Getenv(DevModeEnv))
	return err == nil && dev
}
