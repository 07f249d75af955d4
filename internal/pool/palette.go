package pool

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/robalobadob/flagle/assets"
)

// Color is an RGB triple from the quantisation palette.
type Color [3]uint8

// Hex formats the colour as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}

// LoadPalette reads the palette the flag assets were quantised to, from path or
// the embedded default when path is empty.
func LoadPalette(path string) ([]Color, error) {
	var (
		data []byte
		err  error
	)
	if path != "" {
		data, err = os.ReadFile(path)
	} else {
		data, err = assets.Palette()
	}
	if err != nil {
		return nil, fmt.Errorf("palette: read: %w", err)
	}
	var out []Color
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("palette: decode: %w", err)
	}
	return out, nil
}
