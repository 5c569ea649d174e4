// Package portal talks to the org.freedesktop.portal.GlobalShortcuts broker
// over the D-Bus session bus. It is the only place that owns the portal
// session handle; the shortcut orchestrator decides when to call it.
package portal

// Shortcut is one entry in a bind batch.
type Shortcut struct {
	ID          string
	Accelerator string
	Description string
}

// Result is the per-shortcut outcome of a bind exchange.
type Result struct {
	ID  string
	OK  bool
	Err string
}

// failAll maps a whole-exchange failure onto a uniform zero-success result
// set, so callers never need to distinguish transport failures from
// per-shortcut refusals.
func failAll(batch []Shortcut, reason string) []Result {
	results := make([]Result, 0, len(batch))
	for _, s := range batch {
		results = append(results, Result{ID: s.ID, OK: false, Err: reason})
	}
	return results
}
