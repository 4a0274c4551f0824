package layout

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Page dimensions in inches.
const (
	a4WidthIn      = 8.27
	a4HeightIn     = 11.69
	letterWidthIn  = 8.5
	letterHeightIn = 11.0
)

var lengthPattern = regexp.MustCompile(`^\s*([0-9]*\.?[0-9]+)\s*(cm|mm|in|pt|px)?\s*$`)

// PageInches returns the page width and height in inches.
func (c LayoutConfig) PageInches() (width, height float64) {
	if strings.EqualFold(c.PageSize, "letter") {
		return letterWidthIn, letterHeightIn
	}
	return a4WidthIn, a4HeightIn
}

// MarginInches converts the margin to inches.
// Unitless values are taken as centimeters.
func (c LayoutConfig) MarginInches() (float64, error) {
	return ToInches(c.Margin)
}

// MarginMM converts the margin to millimeters.
func (c LayoutConfig) MarginMM() (float64, error) {
	in, err := ToInches(c.Margin)
	if err != nil {
		return 0, err
	}
	return in * 25.4, nil
}

// ToInches parses a CSS length in cm, mm, in, pt or px.
func ToInches(length string) (float64, error) {
	m := lengthPattern.FindStringSubmatch(length)
	if m == nil {
		return 0, fmt.Errorf("%w: invalid length %q", ErrConfig, length)
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid length %q", ErrConfig, length)
	}
	switch m[2] {
	case "mm":
		return v / 25.4, nil
	case "in":
		return v, nil
	case "pt":
		return v / 72, nil
	case "px":
		return v / 96, nil
	default:
		return v / 2.54, nil
	}
}
