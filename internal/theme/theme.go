// Package theme owns the light/dark presentation mode of the site and its
// persistence.
package theme

// Theme is a named visual mode of the UI.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// StorageKey is the key the theme is persisted under.
const StorageKey = "portfolio-theme"

// Parse returns the Theme for s. Only the literal values "light" and "dark"
// are accepted.
func Parse(s string) (Theme, bool) {
	switch Theme(s) {
	case Light, Dark:
		return Theme(s), true
	default:
		return "", false
	}
}

// Toggle returns the opposite theme.
func (t Theme) Toggle() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

func (t Theme) String() string { return string(t) }
