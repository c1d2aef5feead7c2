package core

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Color is a packed 0xRRGGBB value.
type Color uint32

const (
	MaxColor     Color = 0xFFFFFF
	White        Color = 0xFFFFFF
	FallbackGray Color = 0x888888
)

var ErrBadColor = errors.New("unrecognized color")

func (c Color) RGB() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// Hex renders "#rrggbb" with lowercase, zero-padded digits.
func (c Color) Hex() string {
	return fmt.Sprintf("#%06x", uint32(c&MaxColor))
}

// Normalized returns the channels scaled to [0,1].
func (c Color) Normalized() [3]float32 {
	r, g, b := c.RGB()
	return [3]float32{float32(r) / 255, float32(g) / 255, float32(b) / 255}
}

func RGB(r, g, b uint8) Color {
	return Color(r)<<16 | Color(g)<<8 | Color(b)
}

// ColorDistance is the Euclidean distance between two colors in normalized RGB space.
// It is zero only for identical colors and grows with every per-channel difference.
func ColorDistance(a, b Color) float32 {
	na, nb := a.Normalized(), b.Normalized()
	dr := na[0] - nb[0]
	dg := na[1] - nb[1]
	db := na[2] - nb[2]
	return float32(math.Sqrt(float64(dr*dr + dg*dg + db*db)))
}

// ParseColor accepts "#rrggbb", "#rgb", "0xrrggbb", decimal integers, bare hex digits and
// SVG color names ("steelblue"). All-digit strings are read as decimal.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, ErrBadColor
	}
	if named, ok := colornames.Map[s]; ok {
		return RGB(named.R, named.G, named.B), nil
	}

	hex := ""
	switch {
	case strings.HasPrefix(s, "#"):
		hex = s[1:]
	case strings.HasPrefix(s, "0x"):
		hex = s[2:]
	}
	if hex == "" {
		if n, err := strconv.ParseUint(s, 10, 32); err == nil {
			if Color(n) > MaxColor {
				return 0, fmt.Errorf("%w: %q out of range", ErrBadColor, s)
			}
			return Color(n), nil
		}
		hex = s
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return 0, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	return Color(n), nil
}
