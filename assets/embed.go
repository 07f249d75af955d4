// Package assets carries the default data files baked into the binary.
package assets

import (
	"embed"
)

//go:embed countries.json palette.json
var FS embed.FS

// Countries returns the raw default pool file.
func Countries() ([]byte, error) {
	return FS.ReadFile("countries.json")
}

// Palette returns the raw default palette file.
func Palette() ([]byte, error) {
	return FS.ReadFile("palette.json")
}
