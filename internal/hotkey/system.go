package hotkey

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.design/x/hotkey"
)

// SystemBackend registers shortcuts through golang.design/x/hotkey.
// It supports Windows, macOS, and X11 on Linux. It does NOT support Wayland;
// the caller is expected to have resolved the registration plan first.
type SystemBackend struct {
	mu    sync.Mutex
	log   zerolog.Logger
	bound map[string]*systemHotkey
}

// NewSystemBackend creates a backend bound to the OS shortcut facility.
func NewSystemBackend(log zerolog.Logger) *SystemBackend {
	return &SystemBackend{
		log:   log.With().Str("component", "hotkey.system").Logger(),
		bound: make(map[string]*systemHotkey),
	}
}

// Register binds the accelerator OS-wide. An accelerator that is already
// bound is left alone so repeated enables never double-register.
func (b *SystemBackend) Register(accel string, onKeydown func()) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.bound[accel]; exists {
		b.log.Debug().Str("accelerator", accel).Msg("already registered, skipping")
		return nil
	}

	modifiers, key, err := parseAccelerator(accel)
	if err != nil {
		return fmt.Errorf("failed to parse accelerator %q: %w", accel, err)
	}

	sh := &systemHotkey{
		accel:  accel,
		stopCh: make(chan struct{}),
	}

	// Bind every lock-mask variant so the shortcut still fires with
	// NumLock/CapsLock held (single variant outside X11).
	for _, mods := range expandModifiers(modifiers) {
		hk := hotkey.New(mods, key)
		if err := hk.Register(); err != nil {
			if len(sh.hotkeys) == 0 {
				return fmt.Errorf("failed to register accelerator %q: %w", accel, err)
			}
			// Variant grabs can fail individually; the primary grab carries.
			b.log.Debug().Err(err).Str("accelerator", accel).Msg("lock-mask variant grab failed")
			continue
		}
		sh.hotkeys = append(sh.hotkeys, hk)
	}

	sh.startEventFanIn(onKeydown, b.log)
	b.bound[accel] = sh

	b.log.Info().Str("accelerator", accel).Msg("registered native shortcut")
	return nil
}

// Unregister releases a bound accelerator. Unknown accelerators are ignored.
func (b *SystemBackend) Unregister(accel string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	sh, exists := b.bound[accel]
	if !exists {
		b.log.Debug().Str("accelerator", accel).Msg("not registered, nothing to unregister")
		return nil
	}

	sh.close(b.log)
	delete(b.bound, accel)
	b.log.Info().Str("accelerator", accel).Msg("unregistered native shortcut")
	return nil
}

// UnregisterAll releases every accelerator bound by this backend.
func (b *SystemBackend) UnregisterAll() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for accel, sh := range b.bound {
		sh.close(b.log)
		delete(b.bound, accel)
	}
}

// systemHotkey holds the OS-level grabs behind a single accelerator string.
type systemHotkey struct {
	accel   string
	hotkeys []*hotkey.Hotkey
	stopCh  chan struct{}
}

// startEventFanIn forwards keydown events from every registered variant to
// the single callback until the hotkey is closed.
func (sh *systemHotkey) startEventFanIn(onKeydown func(), log zerolog.Logger) {
	for _, hk := range sh.hotkeys {
		go func(hk *hotkey.Hotkey) {
			defer func() {
				if r := recover(); r != nil {
					log.Error().Interface("panic", r).Str("accelerator", sh.accel).Msg("recovered in hotkey listener")
				}
			}()
			for {
				select {
				case <-sh.stopCh:
					return
				case <-hk.Keydown():
					onKeydown()
				}
			}
		}(hk)
	}
}

func (sh *systemHotkey) close(log zerolog.Logger) {
	close(sh.stopCh)
	for _, hk := range sh.hotkeys {
		if err := hk.Unregister(); err != nil {
			log.Warn().Err(err).Str("accelerator", sh.accel).Msg("failed to unregister grab")
		}
	}
}
