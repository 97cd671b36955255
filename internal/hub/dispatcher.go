package hub

import (
	"context"
	"sync"

	"github.com/onoffautomations/doorcore/internal/infrastructure/logging"
)

// Notifier receives dispatch events for UI refresh.
//
// The WebSocket hub and the MQTT announcer both implement this; the
// dispatcher fans out to every registered notifier after each attempt.
type Notifier interface {
	Broadcast(channel string, payload any)
}

// ChannelActionResult is the notification channel for dispatch outcomes.
const ChannelActionResult = "action.result"

// ActionEvent is the payload broadcast after every dispatch attempt.
type ActionEvent struct {
	EntryID string       `json:"entry_id"`
	Action  Action       `json:"action"`
	Result  ActionResult `json:"result"`
}

// Dispatcher turns logical door commands into hub requests and records the
// last observed result per (entry, action) target.
//
// The "in progress" state of an acted-upon target is always resolved: every
// attempt ends with a recorded result and a notification, even on
// unexpected failure.
//
// Thread Safety: all methods are safe for concurrent use.
type Dispatcher struct {
	client *Client
	logger *logging.Logger

	mu        sync.RWMutex
	last      map[string]ActionResult // keyed by entryID + ":" + action
	notifiers []Notifier
}

// NewDispatcher creates a dispatcher around the given hub client.
func NewDispatcher(client *Client, logger *logging.Logger) *Dispatcher {
	return &Dispatcher{
		client: client,
		logger: logger,
		last:   make(map[string]ActionResult),
	}
}

// AddNotifier registers a notifier for dispatch events.
// Not safe to call concurrently with Dispatch; wire notifiers at startup.
func (d *Dispatcher) AddNotifier(n Notifier) {
	d.notifiers = append(d.notifiers, n)
}

// Dispatch issues one door command and records its result.
//
// Parameters:
//   - ctx: Parent context
//   - entryID: The entry the action targets (keys the last-result record)
//   - ep: Hub endpoint from the entry's configuration
//   - doorID: Opaque door key from the entry's configuration
//   - action: One of the four door actions
//
// Returns:
//   - ActionResult: The classified outcome (also retrievable via LastResult)
func (d *Dispatcher) Dispatch(ctx context.Context, entryID string, ep Endpoint, doorID string, action Action) ActionResult {
	result := d.client.Dispatch(ctx, ep, doorID, action)

	d.mu.Lock()
	d.last[resultKey(entryID, action)] = result
	d.mu.Unlock()

	event := ActionEvent{EntryID: entryID, Action: action, Result: result}
	for _, n := range d.notifiers {
		n.Broadcast(ChannelActionResult, event)
	}

	return result
}

// LastResult returns the last recorded result for a target, if any.
func (d *Dispatcher) LastResult(entryID string, action Action) (ActionResult, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	result, ok := d.last[resultKey(entryID, action)]
	return result, ok
}

// LastResults returns the last recorded result per action for an entry.
// Actions never attempted are absent from the map.
func (d *Dispatcher) LastResults(entryID string) map[Action]ActionResult {
	d.mu.RLock()
	defer d.mu.RUnlock()

	results := make(map[Action]ActionResult)
	for _, a := range actionOrder {
		if result, ok := d.last[resultKey(entryID, a)]; ok {
			results[a] = result
		}
	}
	return results
}

// Forget drops recorded results for an entry (called when it is deleted).
func (d *Dispatcher) Forget(entryID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, a := range actionOrder {
		delete(d.last, resultKey(entryID, a))
	}
}

// resultKey builds the last-result map key for a target.
func resultKey(entryID string, action Action) string {
	return entryID + ":" + string(action)
}
