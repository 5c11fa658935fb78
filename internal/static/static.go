package static

import (
	"embed"
	"io/fs"
)

// Static assets embedded at build time
//
//go:embed *.css *.js *.html
var assets embed.FS

// GetAssets returns the embedded filesystem containing static assets
func GetAssets() fs.FS {
	return assets
}

// GetCSS returns the contents of the common CSS file
func GetCSS() ([]byte, error) {
	return assets.ReadFile("styles.css")
}

// GetJS returns the contents of the common JavaScript file
func GetJS() ([]byte, error) {
	return assets.ReadFile("common.js")
}

// GetDashboardJS returns the script that drives the mission control demo.
func GetDashboardJS() ([]byte, error) {
	return assets.ReadFile("dashboard.js")
}
