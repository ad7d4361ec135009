// Package theme persists the dark/light display preference in the
// "theme" slot.
package theme

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aanand-mishra/student-records/internal/storage"
)

// Theme is a display preference.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// Default is used when nothing has been saved yet.
const Default = Light

// ErrInvalidTheme is returned by Parse and Save for anything other than
// "dark" or "light".
var ErrInvalidTheme = errors.New("theme must be \"dark\" or \"light\"")

// Parse accepts "dark" or "light" in any case.
func Parse(s string) (Theme, error) {
	switch t := Theme(strings.ToLower(strings.TrimSpace(s))); t {
	case Light, Dark:
		return t, nil
	default:
		return "", fmt.Errorf("%w: got %q", ErrInvalidTheme, s)
	}
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

// Load returns the saved theme. An empty slot yields Default. The front
// end only ever checks for "dark", so any other stored value reads as
// Light rather than failing.
func Load(ctx context.Context, slots storage.Slots) (Theme, error) {
	raw, err := slots.Get(ctx, storage.SlotTheme)
	if errors.Is(err, storage.ErrSlotEmpty) {
		return Default, nil
	}
	if err != nil {
		return "", fmt.Errorf("theme.Load: %w", err)
	}

	if Theme(raw) == Dark {
		return Dark, nil
	}
	return Light, nil
}

// Save writes t to the theme slot.
func Save(ctx context.Context, slots storage.Slots, t Theme) error {
	if t != Dark && t != Light {
		return fmt.Errorf("%w: got %q", ErrInvalidTheme, string(t))
	}
	if err := slots.Put(ctx, storage.SlotTheme, []byte(t)); err != nil {
		return fmt.Errorf("theme.Save: %w", err)
	}
	return nil
}
