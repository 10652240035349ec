package cfgnode

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ParseFloat reads a float value, tolerating surrounding blanks.
func ParseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, errors.Wrapf(err, "Failed to parse float %q", s)
	}
	return v, nil
}

// ParseVector reads a comma separated list of floats.
func ParseVector(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		v, err := ParseFloat(p)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// FormatFloat prints a float with up to nine significant digits and
// flushes rounding noise (and negative zero) to 0.
func FormatFloat(v float64) string {
	if v > -1e-9 && v < 1e-9 {
		v = 0
	}
	return strconv.FormatFloat(v, 'g', 9, 64)
}

// FormatVector joins components as "x, y, z".
func FormatVector(vs ...float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = FormatFloat(v)
	}
	return strings.Join(parts, ", ")
}
