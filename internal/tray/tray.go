// Package tray provides the macOS menu bar interface for shakehands.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/shakehands/internal/volume"
)

// Tray is the menu bar item: an enable toggle, the current volume, a
// settings link and quit.
type Tray struct {
	onToggle   func(enabled bool)
	onSettings func()
	onQuit     func()
	enabled    bool
	volume     float64
	mu         sync.RWMutex

	menuToggle *systray.MenuItem
	menuVolume *systray.MenuItem
}

// New creates a Tray that starts enabled at the initial volume.
func New() *Tray {
	return &Tray{
		enabled: true,
		volume:  volume.InitialState().Volume,
	}
}

// OnToggle sets the callback run when shake control is switched on or off.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnSettings sets the callback run when the settings item is clicked.
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnQuit sets the callback run before the tray exits.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the tray. It blocks until systray.Quit is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit stops a running tray.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("Shakehands")
	systray.SetTooltip("Shake to turn it up")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle shake volume control")
	systray.AddSeparator()
	t.menuVolume = systray.AddMenuItem(VolumeTitle(t.volume), "Current volume")
	t.menuVolume.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuSettings := systray.AddMenuItem("Open Settings...", "Open settings in browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit shakehands")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuSettings.ClickedCh:
				t.handleSettings()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleSettings() {
	t.mu.RLock()
	callback := t.onSettings
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetVolume updates the volume line in the menu.
func (t *Tray) SetVolume(v float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.volume = v
	if t.menuVolume != nil {
		t.menuVolume.SetTitle(VolumeTitle(v))
	}
}

// Volume returns the last volume shown.
func (t *Tray) Volume() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.volume
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// VolumeTitle formats a volume for the menu, e.g. "Volume: 55 (okay)".
func VolumeTitle(v float64) string {
	return fmt.Sprintf("Volume: %.0f (%s)", v, volume.LevelFor(v))
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Enabled"
	}
	return "○ Disabled"
}
