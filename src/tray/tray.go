package tray

import (
	"log"

	"github.com/getlantern/systray"
)

// Config wires the tray menu to the host. Callbacks run on the menu
// goroutine; hosts forward them to their event loop.
type Config struct {
	Title        string
	Tooltip      string
	StartEnabled bool
	// OnToggle receives the new enabled state.
	OnToggle func(enabled bool)
	OnSelect func()
	OnReady  func()
	OnExit   func()
}

// Run blocks until Quit is called. It must be called from the main goroutine.
func Run(cfg Config) {
	systray.Run(func() { onReady(cfg) }, func() {
		log.Printf("TRAY: exiting")
		if cfg.OnExit != nil {
			cfg.OnExit()
		}
	})
}

// Quit stops the tray loop started by Run.
func Quit() {
	systray.Quit()
}

func onReady(cfg Config) {
	if icon := Icon(); icon != nil {
		systray.SetIcon(icon)
	}
	systray.SetTitle(cfg.Title)
	systray.SetTooltip(cfg.Tooltip)

	state := newMenuState(cfg.StartEnabled)

	mEnabled := systray.AddMenuItemCheckbox("Selection enabled", "Enable or disable drag selection", state.enabled)
	mSelect := systray.AddMenuItem("Select region", "Drag a rectangle on screen")
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Quit the application")
	applyState(state, mEnabled, mSelect)

	go func() {
		for {
			select {
			case <-mEnabled.ClickedCh:
				enabled := state.toggle()
				applyState(state, mEnabled, mSelect)
				log.Printf("TRAY: selection enabled=%v", enabled)
				if cfg.OnToggle != nil {
					cfg.OnToggle(enabled)
				}
			case <-mSelect.ClickedCh:
				if !state.enabled {
					continue
				}
				log.Printf("TRAY: select region requested")
				if cfg.OnSelect != nil {
					cfg.OnSelect()
				}
			case <-mQuit.ClickedCh:
				systray.Quit()
				return
			}
		}
	}()

	log.Printf("TRAY: ready")
	if cfg.OnReady != nil {
		cfg.OnReady()
	}
}

func applyState(state *menuState, mEnabled, mSelect *systray.MenuItem) {
	if state.enabled {
		mEnabled.Check()
		mSelect.Enable()
	} else {
		mEnabled.Uncheck()
		mSelect.Disable()
	}
	systray.SetTooltip(state.tooltip())
}

type menuState struct {
	enabled bool
}

func newMenuState(enabled bool) *menuState {
	return &menuState{enabled: enabled}
}

func (s *menuState) toggle() bool {
	s.enabled = !s.enabled
	return s.enabled
}

func (s *menuState) tooltip() string {
	if s.enabled {
		return "selectbox: enabled"
	}
	return "selectbox: disabled"
}
