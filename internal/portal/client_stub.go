//go:build !linux

package portal

import (
	"context"

	"github.com/rs/zerolog"
)

// Client stub for non-Linux platforms. The registration plan never resolves
// to the portal path off Linux, so these methods only exist to keep the
// wiring portable.
type Client struct {
	log zerolog.Logger
}

// NewClient creates a stub that is never exercised on non-Linux platforms.
func NewClient(appID string, log zerolog.Logger) *Client {
	return &Client{log: log.With().Str("component", "portal").Logger()}
}

// Bind reports every shortcut as failed; there is no portal off Linux.
func (c *Client) Bind(ctx context.Context, batch []Shortcut, onActivated func(id string)) []Result {
	if len(batch) == 0 {
		return nil
	}
	c.log.Warn().Msg("portal bind requested on a platform without a portal")
	return failAll(batch, "desktop portal not available on this platform")
}

// Teardown is a no-op on non-Linux platforms.
func (c *Client) Teardown() {}
