// Package clipboard provides system clipboard text access.
package clipboard

import (
	"sync"

	"github.com/go-vgo/robotgo"
)

// The player and the copy-transcript action share the clipboard.
var mu sync.Mutex

// SetText places text on the system clipboard.
func SetText(text string) error {
	mu.Lock()
	defer mu.Unlock()
	return robotgo.WriteAll(text)
}

// GetText returns the current clipboard text.
func GetText() (string, error) {
	mu.Lock()
	defer mu.Unlock()
	return robotgo.ReadAll()
}

// Setter adapts the package functions to the macro.ClipboardSetter
// interface.
type Setter struct{}

func (Setter) SetText(text string) error { return SetText(text) }
