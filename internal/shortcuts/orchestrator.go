package shortcuts

import (
	"context"
	"sync"
	"time"

	"github.com/deskchat/deskchat/internal/hotkey"
	"github.com/deskchat/deskchat/internal/platform"
	"github.com/deskchat/deskchat/internal/portal"
	"github.com/rs/zerolog"
)

// defaultExchangeTimeout bounds a single portal exchange. The portal may
// show a permission dialog, so this has to leave room for the user; without
// any bound a hung portal would leave the orchestrator in-flight forever.
const defaultExchangeTimeout = 2 * time.Minute

// Result is the recorded outcome of the last registration attempt for one id.
type Result struct {
	Success bool   `json:"success"`
	Err     string `json:"error,omitempty"`
}

// PlatformHotkeyStatus is the queryable snapshot exposed to the settings UI.
type PlatformHotkeyStatus struct {
	Status               platform.Status `json:"platform"`
	Results              map[ID]Result   `json:"results"`
	GlobalHotkeysEnabled bool            `json:"global_hotkeys_enabled"`
}

// Store persists shortcut settings. Write failures are logged warnings and
// never surface to callers.
type Store interface {
	SaveEnabled(id ID, enabled bool) error
	SaveAccelerator(id ID, accel string) error
}

// Listener is the menu collaborator, notified so application-scoped
// shortcuts can refresh their displayed accelerator hints. Implementations
// are called with orchestrator state held and must not call back in.
type Listener interface {
	EnabledChanged(id ID, enabled bool)
	AcceleratorChanged(id ID, accel string)
}

// Broker performs the portal exchange. Satisfied by *portal.Client.
type Broker interface {
	Bind(ctx context.Context, batch []portal.Shortcut, onActivated func(id string)) []portal.Result
	Teardown()
}

// Options wires an Orchestrator. Detect, Native, Broker, Store and Actions
// are required; the rest have usable defaults.
type Options struct {
	Log             zerolog.Logger
	Detect          func() platform.Status
	Native          hotkey.Backend
	Broker          Broker
	Store           Store
	Listener        Listener
	Actions         map[ID]func()
	Enabled         map[ID]bool
	Accelerators    map[ID]string
	ExchangeTimeout time.Duration
}

// Orchestrator owns all per-shortcut state and decides, per attempt, which
// registration path the session gets. It is the single owned instance of the
// process's global shortcut table; collaborators receive it explicitly.
type Orchestrator struct {
	mu  sync.Mutex
	log zerolog.Logger

	detect   func() platform.Status
	native   hotkey.Backend
	broker   Broker
	store    Store
	listener Listener
	actions  map[ID]func()
	timeout  time.Duration

	enabled      map[ID]bool
	accelerators map[ID]string
	registered   map[ID]string // native grabs currently held, id -> accelerator
	results      map[ID]Result
	status       platform.Status
	anyGlobal    bool

	// Portal exchange serialization. epoch advances on every full teardown;
	// an exchange that started under an older epoch discards its result.
	epoch    uint64
	inFlight bool
	pending  bool
}

// New builds an orchestrator seeded from persisted settings. Ids absent from
// the seeds start enabled with their default accelerator.
func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		log:          opts.Log.With().Str("component", "shortcuts").Logger(),
		detect:       opts.Detect,
		native:       opts.Native,
		broker:       opts.Broker,
		store:        opts.Store,
		listener:     opts.Listener,
		actions:      opts.Actions,
		timeout:      opts.ExchangeTimeout,
		enabled:      make(map[ID]bool),
		accelerators: make(map[ID]string),
		registered:   make(map[ID]string),
		results:      make(map[ID]Result),
	}
	if o.timeout <= 0 {
		o.timeout = defaultExchangeTimeout
	}
	if o.detect == nil {
		o.detect = platform.Detect
	}

	for _, id := range All() {
		o.enabled[id] = true
		o.accelerators[id] = id.DefaultAccelerator()
		if v, ok := opts.Enabled[id]; ok {
			o.enabled[id] = v
		}
		if v, ok := opts.Accelerators[id]; ok && v != "" {
			o.accelerators[id] = v
		}
	}

	return o
}

// RegisterShortcuts performs the startup registration pass, dispatching to
// whichever path the current session resolves to.
func (o *Orchestrator) RegisterShortcuts() {
	o.mu.Lock()
	defer o.mu.Unlock()

	plan := o.resolveLocked()
	switch plan.Mode {
	case platform.ModeDisabled:
		o.results = make(map[ID]Result)
		o.anyGlobal = false
		o.status = plan.Status.WithMethod(platform.MethodNone)
		o.log.Warn().Str("desktop", plan.Status.DesktopEnvName).
			Msg("global shortcuts disabled: Wayland session without a usable portal")
	case platform.ModeNative:
		o.registerNativeBatchLocked()
	case platform.ModePortal:
		o.requestPortalExchangeLocked()
	}
}

// SetEnabled flips one shortcut's enabled flag. Calling it with the current
// value is a no-op: no persistence write, no registration traffic.
func (o *Orchestrator) SetEnabled(id ID, enabled bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !id.Valid() {
		o.log.Error().Str("id", string(id)).Msg("rejecting enable toggle for unknown shortcut id")
		return
	}
	if o.enabled[id] == enabled {
		return
	}

	o.enabled[id] = enabled
	if err := o.store.SaveEnabled(id, enabled); err != nil {
		o.log.Warn().Err(err).Str("id", string(id)).Msg("failed to persist enabled flag")
	}
	if o.listener != nil {
		o.listener.EnabledChanged(id, enabled)
	}

	if id.Scope() == ScopeApplication {
		// Menu accelerators only; no OS registration involved.
		return
	}

	plan := o.resolveLocked()
	switch plan.Mode {
	case platform.ModeDisabled:
		o.status = plan.Status.WithMethod(platform.MethodNone)
		o.log.Info().Str("id", string(id)).Bool("enabled", enabled).
			Msg("flag updated; session cannot register global shortcuts")
	case platform.ModeNative:
		if enabled {
			o.registerNativeLocked(id)
		} else {
			o.unregisterNativeLocked(id)
		}
		o.recomputeGlobalLocked()
		o.status = plan.Status.WithMethod(platform.MethodNative)
	case platform.ModePortal:
		// The portal binds shortcuts as a set, so any change means a full
		// batch re-registration.
		o.requestPortalExchangeLocked()
	}
}

// SetAccelerator rebinds one shortcut to a new key combination. Empty
// accelerators are rejected at the boundary; unchanged values are no-ops.
func (o *Orchestrator) SetAccelerator(id ID, accel string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !id.Valid() {
		o.log.Error().Str("id", string(id)).Msg("rejecting accelerator change for unknown shortcut id")
		return
	}
	if accel == "" {
		o.log.Error().Str("id", string(id)).Msg("rejecting empty accelerator")
		return
	}
	if o.accelerators[id] == accel {
		return
	}

	old := o.accelerators[id]
	o.accelerators[id] = accel
	if err := o.store.SaveAccelerator(id, accel); err != nil {
		o.log.Warn().Err(err).Str("id", string(id)).Msg("failed to persist accelerator")
	}
	if o.listener != nil {
		o.listener.AcceleratorChanged(id, accel)
	}

	if id.Scope() == ScopeApplication {
		return
	}

	plan := o.resolveLocked()
	switch plan.Mode {
	case platform.ModeDisabled:
		o.status = plan.Status.WithMethod(platform.MethodNone)
	case platform.ModeNative:
		if _, held := o.registered[id]; held {
			if err := o.native.Unregister(old); err != nil {
				o.log.Warn().Err(err).Str("accelerator", old).Msg("failed to release old accelerator")
			}
			delete(o.registered, id)
			delete(o.results, id)
		}
		if o.enabled[id] {
			o.registerNativeLocked(id)
		}
		o.recomputeGlobalLocked()
		o.status = plan.Status.WithMethod(platform.MethodNative)
	case platform.ModePortal:
		o.requestPortalExchangeLocked()
	}
}

// ExecuteAction invokes the stored callback for id directly, bypassing the
// OS. The same path a real key press takes, triggerable deterministically.
func (o *Orchestrator) ExecuteAction(id ID) {
	if !id.Valid() {
		o.log.Error().Str("id", string(id)).Msg("rejecting action for unknown shortcut id")
		return
	}

	o.mu.Lock()
	action := o.actions[id]
	o.mu.Unlock()

	if action == nil {
		o.log.Warn().Str("id", string(id)).Msg("no action bound for shortcut")
		return
	}
	o.log.Debug().Str("id", string(id)).Msg("executing shortcut action")
	action()
}

// UnregisterAll tears down every registration and advances the epoch so any
// exchange still in flight discards its own result on completion. Safe to
// call when nothing is registered.
func (o *Orchestrator) UnregisterAll() {
	o.mu.Lock()
	o.epoch++
	o.registered = make(map[ID]string)
	o.results = make(map[ID]Result)
	o.anyGlobal = false
	o.status = o.status.WithMethod(platform.MethodNone)
	o.mu.Unlock()

	o.native.UnregisterAll()
	o.broker.Teardown()
	o.log.Info().Msg("all shortcuts unregistered")
}

// Settings returns a copy of the per-id enabled flags.
func (o *Orchestrator) Settings() map[ID]bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make(map[ID]bool, len(o.enabled))
	for id, v := range o.enabled {
		out[id] = v
	}
	return out
}

// Accelerators returns a copy of the per-id accelerator strings.
func (o *Orchestrator) Accelerators() map[ID]string {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make(map[ID]string, len(o.accelerators))
	for id, v := range o.accelerators {
		out[id] = v
	}
	return out
}

// PlatformStatus reports the last status snapshot, the per-id results of the
// last registration attempt, and whether at least one global shortcut is
// currently live through any path.
func (o *Orchestrator) PlatformStatus() PlatformHotkeyStatus {
	o.mu.Lock()
	defer o.mu.Unlock()

	results := make(map[ID]Result, len(o.results))
	for id, r := range o.results {
		results[id] = r
	}
	return PlatformHotkeyStatus{
		Status:               o.status,
		Results:              results,
		GlobalHotkeysEnabled: o.anyGlobal,
	}
}

// resolveLocked takes a fresh status snapshot and resolves the plan.
func (o *Orchestrator) resolveLocked() platform.Plan {
	status := o.detect()
	o.status = status
	return platform.Resolve(status)
}

// registerNativeBatchLocked is the native startup pass: a fresh result map,
// then one registration attempt per enabled global id. Individual failures
// never block the rest of the batch.
func (o *Orchestrator) registerNativeBatchLocked() {
	o.results = make(map[ID]Result)
	for _, id := range All() {
		if id.Scope() != ScopeGlobal || !o.enabled[id] {
			continue
		}
		o.registerNativeLocked(id)
	}
	o.recomputeGlobalLocked()
	o.status = o.status.WithMethod(platform.MethodNative)
}

// registerNativeLocked attempts one native registration. Already-held ids
// are left alone so repeated enables never double-register.
func (o *Orchestrator) registerNativeLocked(id ID) {
	if _, held := o.registered[id]; held {
		return
	}

	accel := o.accelerators[id]
	if err := o.native.Register(accel, o.actionTrigger(id)); err != nil {
		// Non-fatal: the accelerator may be claimed by another process. The
		// id stays eligible for registration on the next toggle.
		o.results[id] = Result{Success: false, Err: err.Error()}
		o.log.Warn().Err(err).Str("id", string(id)).Str("accelerator", accel).
			Msg("native registration failed")
		return
	}

	o.registered[id] = accel
	o.results[id] = Result{Success: true}
}

func (o *Orchestrator) unregisterNativeLocked(id ID) {
	accel, held := o.registered[id]
	if !held {
		return
	}
	if err := o.native.Unregister(accel); err != nil {
		o.log.Warn().Err(err).Str("accelerator", accel).Msg("native unregister failed")
	}
	delete(o.registered, id)
	delete(o.results, id)
}

// requestPortalExchangeLocked starts a portal exchange, or coalesces the
// request into the one already in flight. Never runs two exchanges at once.
func (o *Orchestrator) requestPortalExchangeLocked() {
	if o.inFlight {
		o.pending = true
		o.log.Debug().Msg("portal exchange in flight, coalescing re-registration request")
		return
	}
	o.inFlight = true
	o.startExchangeLocked()
}

// startExchangeLocked snapshots the settings current right now, runs the
// direct-channel first pass, and launches the asynchronous portal exchange
// for whatever is still unbound.
func (o *Orchestrator) startExchangeLocked() {
	epoch := o.epoch
	attempt := make(map[ID]Result)
	o.syncDirectChannelLocked(attempt)

	var batch []portal.Shortcut
	for _, id := range All() {
		if id.Scope() != ScopeGlobal || !o.enabled[id] {
			continue
		}
		if r, ok := attempt[id]; ok && r.Success {
			continue
		}
		batch = append(batch, portal.Shortcut{
			ID:          string(id),
			Accelerator: o.accelerators[id],
			Description: id.Description(),
		})
	}

	go o.runExchange(epoch, attempt, batch)
}

// syncDirectChannelLocked reconciles the lower-privilege direct grabs with
// the current settings before the portal is consulted. On several
// compositors an XWayland-style grab still works, and every id it covers is
// one less entry in the portal permission dialog.
func (o *Orchestrator) syncDirectChannelLocked(attempt map[ID]Result) {
	for id, accel := range o.registered {
		if o.enabled[id] && id.Scope() == ScopeGlobal && accel == o.accelerators[id] {
			continue
		}
		if err := o.native.Unregister(accel); err != nil {
			o.log.Warn().Err(err).Str("accelerator", accel).Msg("direct-channel unregister failed")
		}
		delete(o.registered, id)
	}

	for _, id := range All() {
		if id.Scope() != ScopeGlobal || !o.enabled[id] {
			continue
		}
		if _, held := o.registered[id]; held {
			attempt[id] = Result{Success: true}
			continue
		}
		accel := o.accelerators[id]
		if err := o.native.Register(accel, o.actionTrigger(id)); err != nil {
			o.log.Debug().Err(err).Str("id", string(id)).
				Msg("direct channel declined, deferring to portal")
			continue
		}
		o.registered[id] = accel
		attempt[id] = Result{Success: true}
	}
}

// runExchange performs the blocking broker exchange off the caller's
// goroutine, then applies the result under the epoch check.
func (o *Orchestrator) runExchange(epoch uint64, attempt map[ID]Result, batch []portal.Shortcut) {
	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	results := o.broker.Bind(ctx, batch, o.onPortalActivated)

	o.mu.Lock()
	defer o.mu.Unlock()

	if epoch != o.epoch {
		// Teardown happened mid-flight. The result was computed against
		// settings that no longer exist; drop it and go idle.
		o.inFlight = false
		o.pending = false
		o.log.Debug().Uint64("epoch", epoch).Msg("discarding stale portal exchange result")
		return
	}

	for _, r := range results {
		attempt[ID(r.ID)] = Result{Success: r.OK, Err: r.Err}
	}
	o.results = attempt
	o.recomputeGlobalLocked()
	o.status = o.status.WithMethod(platform.MethodPortal)

	if o.pending {
		// Settings changed while we were out; go straight into a fresh
		// exchange computed from the latest state.
		o.pending = false
		o.startExchangeLocked()
		return
	}
	o.inFlight = false
}

func (o *Orchestrator) onPortalActivated(id string) {
	o.ExecuteAction(ID(id))
}

func (o *Orchestrator) actionTrigger(id ID) func() {
	return func() {
		o.log.Debug().Str("id", string(id)).Msg("shortcut pressed")
		o.ExecuteAction(id)
	}
}

func (o *Orchestrator) recomputeGlobalLocked() {
	o.anyGlobal = false
	for id, r := range o.results {
		if r.Success && id.Scope() == ScopeGlobal {
			o.anyGlobal = true
			return
		}
	}
}
