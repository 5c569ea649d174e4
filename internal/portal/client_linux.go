//go:build linux

package portal

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	portalBusName    = "org.freedesktop.portal.Desktop"
	portalObjectPath = "/org/freedesktop/portal/desktop"

	globalShortcutsIface = "org.freedesktop.portal.GlobalShortcuts"
	requestIface         = "org.freedesktop.portal.Request"
	sessionIface         = "org.freedesktop.portal.Session"

	responseMember  = "Response"
	activatedMember = "Activated"

	// Portal response codes per the XDG portal spec.
	responseSuccess   = 0
	responseCancelled = 1
)

// shortcutSpec marshals as the portal's (s a{sv}) shortcut entry.
type shortcutSpec struct {
	ID      string
	Options map[string]dbus.Variant
}

// Client owns a single GlobalShortcuts portal session. One exchange at a
// time is assumed; the orchestrator serializes calls to Bind.
type Client struct {
	log   zerolog.Logger
	appID string

	mu       sync.Mutex
	conn     *dbus.Conn
	session  dbus.ObjectPath
	activate func(id string)

	waiterMu sync.Mutex
	waiters  map[dbus.ObjectPath]chan requestResponse
}

type requestResponse struct {
	code    uint32
	results map[string]dbus.Variant
}

// NewClient creates an unconnected portal client. The bus connection and
// session are established lazily on the first bind.
func NewClient(appID string, log zerolog.Logger) *Client {
	return &Client{
		log:     log.With().Str("component", "portal").Logger(),
		appID:   appID,
		waiters: make(map[dbus.ObjectPath]chan requestResponse),
	}
}

// Bind registers the batch with the portal, replacing whatever the session
// previously had bound. An empty batch tears the session down instead; there
// is nothing to keep a session alive for. Failures never propagate as
// errors: the whole exchange degrades to a zero-success result set.
func (c *Client) Bind(ctx context.Context, batch []Shortcut, onActivated func(id string)) []Result {
	if len(batch) == 0 {
		c.Teardown()
		return nil
	}

	c.mu.Lock()
	c.activate = onActivated
	c.mu.Unlock()

	if err := c.ensureSession(ctx); err != nil {
		c.log.Warn().Err(err).Msg("portal session unavailable")
		return failAll(batch, err.Error())
	}

	results, err := c.bindShortcuts(ctx, batch)
	if err != nil {
		c.log.Warn().Err(err).Msg("portal bind exchange failed")
		return failAll(batch, err.Error())
	}
	return results
}

// Teardown closes the portal session if one is open. Safe to call at any
// time, including while an exchange is still waiting on the bus.
func (c *Client) Teardown() {
	c.mu.Lock()
	conn, session := c.conn, c.session
	c.session = ""
	c.mu.Unlock()

	if conn == nil || session == "" {
		return
	}

	call := conn.Object(portalBusName, session).Call(sessionIface+".Close", 0)
	if call.Err != nil {
		c.log.Debug().Err(call.Err).Msg("portal session close failed")
	} else {
		c.log.Info().Msg("portal session closed")
	}
}

// ensureSession connects to the bus and creates a GlobalShortcuts session
// when none is open yet.
func (c *Client) ensureSession(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		conn, err := dbus.SessionBus()
		if err != nil {
			return fmt.Errorf("failed to connect to session bus: %w", err)
		}
		c.conn = conn
		if err := c.subscribeSignals(); err != nil {
			return err
		}
	}

	if c.session != "" {
		return nil
	}

	requestToken := handleToken()
	sessionToken := handleToken()

	options := map[string]dbus.Variant{
		"handle_token":         dbus.MakeVariant(requestToken),
		"session_handle_token": dbus.MakeVariant(sessionToken),
	}

	waiter := c.addWaiter(c.requestPath(requestToken))
	defer c.removeWaiter(c.requestPath(requestToken))

	obj := c.conn.Object(portalBusName, portalObjectPath)
	var handle dbus.ObjectPath
	if err := obj.CallWithContext(ctx, globalShortcutsIface+".CreateSession", 0, options).Store(&handle); err != nil {
		return fmt.Errorf("CreateSession failed: %w", err)
	}

	resp, err := c.awaitResponse(ctx, waiter)
	if err != nil {
		return fmt.Errorf("CreateSession: %w", err)
	}
	if resp.code != responseSuccess {
		return fmt.Errorf("CreateSession refused (code %d)", resp.code)
	}

	raw, ok := resp.results["session_handle"]
	if !ok {
		return fmt.Errorf("CreateSession response missing session_handle")
	}
	switch v := raw.Value().(type) {
	case dbus.ObjectPath:
		c.session = v
	case string:
		c.session = dbus.ObjectPath(v)
	default:
		return fmt.Errorf("unexpected session_handle type %T", raw.Value())
	}

	c.log.Info().Str("session", string(c.session)).Msg("portal session created")
	return nil
}

// bindShortcuts performs the BindShortcuts exchange for an open session.
func (c *Client) bindShortcuts(ctx context.Context, batch []Shortcut) ([]Result, error) {
	c.mu.Lock()
	conn, session := c.conn, c.session
	c.mu.Unlock()

	specs := make([]shortcutSpec, 0, len(batch))
	for _, s := range batch {
		specs = append(specs, shortcutSpec{
			ID: s.ID,
			Options: map[string]dbus.Variant{
				"description":       dbus.MakeVariant(s.Description),
				"preferred_trigger": dbus.MakeVariant(accelToTrigger(s.Accelerator)),
			},
		})
	}

	requestToken := handleToken()
	options := map[string]dbus.Variant{
		"handle_token": dbus.MakeVariant(requestToken),
	}

	waiter := c.addWaiter(c.requestPath(requestToken))
	defer c.removeWaiter(c.requestPath(requestToken))

	obj := conn.Object(portalBusName, portalObjectPath)
	var handle dbus.ObjectPath
	err := obj.CallWithContext(ctx, globalShortcutsIface+".BindShortcuts", 0,
		session, specs, "", options).Store(&handle)
	if err != nil {
		return nil, fmt.Errorf("BindShortcuts failed: %w", err)
	}

	resp, err := c.awaitResponse(ctx, waiter)
	if err != nil {
		return nil, fmt.Errorf("BindShortcuts: %w", err)
	}
	if resp.code == responseCancelled {
		return nil, fmt.Errorf("user dismissed the shortcut permission dialog")
	}
	if resp.code != responseSuccess {
		return nil, fmt.Errorf("BindShortcuts refused (code %d)", resp.code)
	}

	return bindResults(batch, resp.results), nil
}

// bindResults marks each requested id successful when the portal reports it
// bound. A response without a shortcuts list means the whole batch bound.
func bindResults(batch []Shortcut, results map[string]dbus.Variant) []Result {
	boundIDs := make(map[string]bool)
	haveList := false
	if raw, ok := results["shortcuts"]; ok {
		if specs, ok := raw.Value().([][]interface{}); ok {
			haveList = true
			for _, spec := range specs {
				if len(spec) > 0 {
					if id, ok := spec[0].(string); ok {
						boundIDs[id] = true
					}
				}
			}
		}
	}

	out := make([]Result, 0, len(batch))
	for _, s := range batch {
		if !haveList || boundIDs[s.ID] {
			out = append(out, Result{ID: s.ID, OK: true})
		} else {
			out = append(out, Result{ID: s.ID, OK: false, Err: "shortcut not bound by portal"})
		}
	}
	return out
}

// subscribeSignals registers match rules and starts the dispatch loop.
// Called once per connection, with c.mu held.
func (c *Client) subscribeSignals() error {
	if err := c.conn.AddMatchSignal(
		dbus.WithMatchInterface(requestIface),
		dbus.WithMatchMember(responseMember),
	); err != nil {
		return fmt.Errorf("failed to match Response signals: %w", err)
	}
	if err := c.conn.AddMatchSignal(
		dbus.WithMatchInterface(globalShortcutsIface),
		dbus.WithMatchMember(activatedMember),
	); err != nil {
		return fmt.Errorf("failed to match Activated signals: %w", err)
	}

	ch := make(chan *dbus.Signal, 16)
	c.conn.Signal(ch)
	go c.signalLoop(ch)
	return nil
}

// signalLoop routes Response signals to their request waiters and Activated
// signals to the shortcut callback.
func (c *Client) signalLoop(ch chan *dbus.Signal) {
	for sig := range ch {
		switch sig.Name {
		case requestIface + "." + responseMember:
			c.deliverResponse(sig)
		case globalShortcutsIface + "." + activatedMember:
			c.deliverActivation(sig)
		}
	}
}

func (c *Client) deliverResponse(sig *dbus.Signal) {
	if len(sig.Body) < 2 {
		return
	}
	code, ok := sig.Body[0].(uint32)
	if !ok {
		return
	}
	results, _ := sig.Body[1].(map[string]dbus.Variant)

	c.waiterMu.Lock()
	waiter, exists := c.waiters[sig.Path]
	c.waiterMu.Unlock()
	if !exists {
		return
	}

	select {
	case waiter <- requestResponse{code: code, results: results}:
	default:
	}
}

func (c *Client) deliverActivation(sig *dbus.Signal) {
	// Activated carries (session_handle o, shortcut_id s, timestamp t, options a{sv}).
	if len(sig.Body) < 2 {
		return
	}
	id, ok := sig.Body[1].(string)
	if !ok {
		return
	}

	c.mu.Lock()
	activate := c.activate
	c.mu.Unlock()

	if activate != nil {
		c.log.Debug().Str("id", id).Msg("portal shortcut activated")
		activate(id)
	}
}

func (c *Client) addWaiter(path dbus.ObjectPath) chan requestResponse {
	ch := make(chan requestResponse, 1)
	c.waiterMu.Lock()
	c.waiters[path] = ch
	c.waiterMu.Unlock()
	return ch
}

func (c *Client) removeWaiter(path dbus.ObjectPath) {
	c.waiterMu.Lock()
	delete(c.waiters, path)
	c.waiterMu.Unlock()
}

func (c *Client) awaitResponse(ctx context.Context, waiter chan requestResponse) (requestResponse, error) {
	select {
	case resp := <-waiter:
		return resp, nil
	case <-ctx.Done():
		return requestResponse{}, fmt.Errorf("timed out waiting for portal response: %w", ctx.Err())
	}
}

// requestPath computes the object path the portal will emit the Response
// signal on: /org/freedesktop/portal/desktop/request/SENDER/TOKEN, where
// SENDER is the connection's unique name with ':' stripped and '.' → '_'.
func (c *Client) requestPath(token string) dbus.ObjectPath {
	sender := strings.TrimPrefix(c.conn.Names()[0], ":")
	sender = strings.ReplaceAll(sender, ".", "_")
	return dbus.ObjectPath(portalObjectPath + "/request/" + sender + "/" + token)
}

// handleToken produces a bus-safe unique token for request/session handles.
func handleToken() string {
	return "deskchat_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
