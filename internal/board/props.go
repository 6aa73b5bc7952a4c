package board

import (
	"math"
	"strconv"
	"strings"
)

// Style defaults applied when a prop is absent or malformed.
const (
	DefaultFill   = "#D94B4B"
	DefaultStroke = "#1F1A17"

	textColorDark  = "#1F1A17"
	textColorLight = "#F5F0E8"

	// Linear luminance below this reads the fill as dark enough to need
	// light text.
	luminanceThreshold = 0.42
)

// Props is a read-only view over an object's props bag that applies the
// product's style defaults. The zero value reads every key as absent.
type Props struct {
	m map[string]any
}

// PropsOf wraps an object's props bag.
func PropsOf(o *Object) Props {
	if o == nil {
		return Props{}
	}
	return Props{m: o.Props}
}

func (p Props) str(key string) (string, bool) {
	v, ok := p.m[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Fill returns the fill color, defaulting to DefaultFill.
func (p Props) Fill() string {
	if s, ok := p.str("fill"); ok {
		return s
	}
	return DefaultFill
}

// Stroke returns the stroke color, defaulting to DefaultStroke.
func (p Props) Stroke() string {
	if s, ok := p.str("stroke"); ok {
		return s
	}
	return DefaultStroke
}

// StrokeWidth returns the stroke width, defaulting to 0.
func (p Props) StrokeWidth() float64 {
	if f, ok := asFloat(p.m["strokeWidth"]); ok {
		return f
	}
	return 0
}

// Head returns the heading text, defaulting to "".
func (p Props) Head() string {
	s, _ := p.str("head")
	return s
}

// Text returns the body text, defaulting to "".
func (p Props) Text() string {
	s, _ := p.str("text")
	return s
}

// Foot returns the footer text, defaulting to "".
func (p Props) Foot() string {
	s, _ := p.str("foot")
	return s
}

// FontSize returns the font size if one is set.
func (p Props) FontSize() (float64, bool) {
	return asFloat(p.m["fontSize"])
}

// TextColor returns the color text should be drawn in. An explicit
// "textColor" prop wins; otherwise it contrasts against the fill, and an
// unparseable fill falls back to dark text.
func (p Props) TextColor() string {
	if s, ok := p.str("textColor"); ok {
		return s
	}
	r, g, b, ok := parseColor(p.Fill())
	if !ok {
		return textColorDark
	}
	if relativeLuminance(r, g, b) < luminanceThreshold {
		return textColorLight
	}
	return textColorDark
}

// parseColor reads #rgb, #rrggbb, rgb(...) and rgba(...) into 0..1 channels.
func parseColor(s string) (r, g, b float64, ok bool) {
	s = strings.TrimSpace(s)
	if hex, found := strings.CutPrefix(s, "#"); found {
		return parseHex(hex)
	}
	lower := strings.ToLower(s)
	if body, found := strings.CutPrefix(lower, "rgba("); found {
		return parseRGBBody(strings.TrimSuffix(body, ")"))
	}
	if body, found := strings.CutPrefix(lower, "rgb("); found {
		return parseRGBBody(strings.TrimSuffix(body, ")"))
	}
	return 0, 0, 0, false
}

func parseHex(hex string) (r, g, b float64, ok bool) {
	switch len(hex) {
	case 3:
		// #rgb expands each nibble, f -> ff.
		var c [3]float64
		for i := 0; i < 3; i++ {
			n, err := strconv.ParseUint(string(hex[i]), 16, 8)
			if err != nil {
				return 0, 0, 0, false
			}
			c[i] = float64(n*17) / 255
		}
		return c[0], c[1], c[2], true
	case 6:
		var c [3]float64
		for i := 0; i < 3; i++ {
			n, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
			if err != nil {
				return 0, 0, 0, false
			}
			c[i] = float64(n) / 255
		}
		return c[0], c[1], c[2], true
	default:
		return 0, 0, 0, false
	}
}

func parseRGBBody(body string) (r, g, b float64, ok bool) {
	parts := strings.Split(body, ",")
	if len(parts) < 3 {
		return 0, 0, 0, false
	}
	var c [3]float64
	for i := 0; i < 3; i++ {
		n, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return 0, 0, 0, false
		}
		c[i] = math.Max(0, math.Min(255, n)) / 255
	}
	return c[0], c[1], c[2], true
}

// relativeLuminance converts sRGB channels to linear light and weights them
// per BT.709.
func relativeLuminance(r, g, b float64) float64 {
	return 0.2126*srgbToLinear(r) + 0.7152*srgbToLinear(g) + 0.0722*srgbToLinear(b)
}

func srgbToLinear(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}
