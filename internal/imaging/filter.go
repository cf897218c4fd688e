// Package imaging applies CSS-style filter chains to images.
//
// A filter is a list of functions in the form used by CSS and canvas contexts,
// e.g. "sepia(100%) brightness(120%) contrast(80%)". Functions are applied in
// list order.
package imaging

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidFilter is returned when filter can not be parsed.
var ErrInvalidFilter = errors.New("invalid filter")

const (
	// Grayscale converts to gray, amount is in [0, 1].
	Grayscale = "grayscale"
	// Sepia ...
	Sepia = "sepia"
	// Invert ...
	Invert = "invert"
	// Blur is a gaussian blur, amount is a radius in pixels.
	Blur = "blur"
	// Brightness multiplies channels by amount.
	Brightness = "brightness"
	// Contrast ...
	Contrast = "contrast"
)

// nolint:gochecknoglobals
var (
	funcRe = regexp.MustCompile(`^\s*([a-z-]+)\(\s*([^)]*?)\s*\)`)

	presets = map[string]string{
		"normal":    "",
		"grayscale": "grayscale(100%)",
		"sepia":     "sepia(100%)",
		"invert":    "invert(100%)",
		"blur":      "blur(5px)",
	}
)

// Func is a single filter function.
type Func struct {
	Name   string
	Amount float64
}

// Filter is a chain of filter functions.
type Filter []Func

// String returns CSS representation of the filter.
func (f Filter) String() string {
	s := make([]string, len(f))

	for i, v := range f {
		if v.Name == Blur {
			s[i] = fmt.Sprintf("%s(%spx)", v.Name, formatFloat(v.Amount))
			continue
		}

		s[i] = fmt.Sprintf("%s(%s%%)", v.Name, formatFloat(v.Amount*100))
	}

	return strings.Join(s, " ")
}

// Parse parses CSS filter function list.
func Parse(s string) (Filter, error) {
	out := Filter{}

	rest := s
	for strings.TrimSpace(rest) != "" {
		m := funcRe.FindStringSubmatchIndex(rest)
		if m == nil {
			return nil, fmt.Errorf("%w: unexpected %q", ErrInvalidFilter, strings.TrimSpace(rest))
		}

		name, arg := rest[m[2]:m[3]], rest[m[4]:m[5]]
		rest = rest[m[1]:]

		amount, err := parseAmount(name, arg)
		if err != nil {
			return nil, err
		}

		out = append(out, Func{Name: name, Amount: amount})
	}

	return out, nil
}

// Presets returns names of available presets.
func Presets() []string {
	return []string{"normal", "grayscale", "sepia", "invert", "blur"}
}

func parseAmount(name, arg string) (float64, error) {
	var (
		v   float64
		err error
	)

	switch name {
	case Blur:
		if arg == "" {
			return 0, nil
		}
		v, err = strconv.ParseFloat(strings.TrimSuffix(arg, "px"), 64)
	case Grayscale, Sepia, Invert, Brightness, Contrast:
		if arg == "" {
			return 1, nil
		}
		if strings.HasSuffix(arg, "%") {
			v, err = strconv.ParseFloat(strings.TrimSuffix(arg, "%"), 64)
			v /= 100
		} else {
			v, err = strconv.ParseFloat(arg, 64)
		}
	default:
		return 0, fmt.Errorf("%w: unknown function %s", ErrInvalidFilter, name)
	}

	if err != nil {
		return 0, fmt.Errorf("%w: bad %s amount %q", ErrInvalidFilter, name, arg)
	}

	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s amount must be non-negative", ErrInvalidFilter, name)
	}

	return v, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(math.Round(v*1e6)/1e6, 'f', -1, 64)
}

// Adjustment is a set of user's choices on post creation.
type Adjustment struct {
	Preset     string
	Brightness int
	Contrast   int
}

// DefaultAdjustment leaves image untouched.
func DefaultAdjustment() Adjustment {
	return Adjustment{
		Preset:     "normal",
		Brightness: 100,
		Contrast:   100,
	}
}

// Validate ...
func (a Adjustment) Validate() error {
	if _, ok := presets[a.Preset]; !ok {
		return fmt.Errorf("%w: unknown preset %q", ErrInvalidFilter, a.Preset)
	}

	if a.Brightness < 0 || a.Brightness > 200 {
		return fmt.Errorf("%w: brightness should be in [0, 200]", ErrInvalidFilter)
	}

	if a.Contrast < 0 || a.Contrast > 200 {
		return fmt.Errorf("%w: contrast should be in [0, 200]", ErrInvalidFilter)
	}

	return nil
}

// String returns filter string in CSS form.
func (a Adjustment) String() string {
	return strings.TrimSpace(fmt.Sprintf("%s brightness(%d%%) contrast(%d%%)", presets[a.Preset], a.Brightness, a.Contrast))
}

// Filter validates adjustment and returns the filter chain.
func (a Adjustment) Filter() (Filter, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	return Parse(a.String())
}
