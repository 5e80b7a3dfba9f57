package resize

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/aliskhannn/image-compressor/internal/model"
)

// ParseHexColor parses "#rgb" or "#rrggbb"; the leading '#' is optional.
// Short forms are expanded by doubling each digit.
func ParseHexColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(s, "#")

	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6:
	default:
		return color.NRGBA{}, model.Errorf(model.KindInvalidHexColor, "invalid hex color: %q", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, model.NewError(model.KindInvalidHexColor, fmt.Errorf("invalid hex color %q: %w", s, err))
	}

	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
