package theme

import (
	"log"
	"sync"
)

// Store is the key-value persistence layer the theme is saved to.
// Load returns "" and a nil error when the key is absent.
type Store interface {
	Load(key string) (string, error)
	Save(key, value string) error
}

// Preference reports the host's ambient color-scheme preference.
// ok is false when no signal is available.
type Preference interface {
	PrefersDark() (dark bool, ok bool)
}

// Attribute receives the current theme so style rules can pick it up.
type Attribute interface {
	SetTheme(Theme)
}

// PreferenceFunc adapts a function to the Preference interface.
type PreferenceFunc func() (bool, bool)

func (f PreferenceFunc) PrefersDark() (bool, bool) { return f() }

// Controller holds the current theme for one session. Persistence failures
// never reach the caller; the controller falls back to in-memory state.
type Controller struct {
	mu      sync.Mutex
	theme   Theme
	store   Store
	attr    Attribute
	persist bool
}

// Initialize resolves the starting theme and applies it. A persisted value
// wins over the ambient preference; with neither, the theme is Light.
// store, pref and attr may each be nil.
func Initialize(store Store, pref Preference, attr Attribute) *Controller {
	c := &Controller{store: store, attr: attr, persist: store != nil}
	c.theme = c.resolve(pref)
	c.apply()
	return c
}

func (c *Controller) resolve(pref Preference) Theme {
	if c.persist {
		v, err := c.store.Load(StorageKey)
		if err != nil {
			c.degrade("load", err)
		} else if t, ok := Parse(v); ok {
			return t
		}
	}
	if pref != nil {
		if dark, ok := pref.PrefersDark(); ok && dark {
			return Dark
		}
	}
	return Light
}

// apply pushes the theme to the attribute and the store. Callers hold mu or
// own c exclusively.
func (c *Controller) apply() {
	if c.attr != nil {
		c.attr.SetTheme(c.theme)
	}
	if !c.persist {
		return
	}
	if err := c.store.Save(StorageKey, string(c.theme)); err != nil {
		c.degrade("save", err)
	}
}

func (c *Controller) degrade(op string, err error) {
	log.Printf("theme %s failed, keeping theme in memory only: %v", op, err)
	c.persist = false
}

// Toggle flips the theme, applies it and returns the new value.
func (c *Controller) Toggle() Theme {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.theme = c.theme.Toggle()
	c.apply()
	return c.theme
}

// Theme returns the current theme.
func (c *Controller) Theme() Theme {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.theme
}

// IsDark reports whether the current theme is Dark.
func (c *Controller) IsDark() bool { return c.Theme() == Dark }

// Persistent reports whether changes are still being written to the store.
func (c *Controller) Persistent() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.persist
}
