package hub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// recordingNotifier captures broadcast events for assertions.
type recordingNotifier struct {
	mu     sync.Mutex
	events []ActionEvent
}

func (n *recordingNotifier) Broadcast(channel string, payload any) {
	if channel != ChannelActionResult {
		return
	}
	event, ok := payload.(ActionEvent)
	if !ok {
		return
	}
	n.mu.Lock()
	n.events = append(n.events, event)
	n.mu.Unlock()
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

func TestDispatcherRecordsLastResult(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	d := NewDispatcher(NewClient(time.Second, testLogger()), testLogger())
	notifier := &recordingNotifier{}
	d.AddNotifier(notifier)

	ep := serverEndpoint(t, ts)
	result := d.Dispatch(context.Background(), "e1", ep, "D1", ActionOpenOneEntry)
	if result.Outcome != OutcomeSuccess {
		t.Fatalf("outcome = %q, want success", result.Outcome)
	}

	last, ok := d.LastResult("e1", ActionOpenOneEntry)
	if !ok {
		t.Fatal("LastResult should find the recorded result")
	}
	if last.Outcome != OutcomeSuccess {
		t.Errorf("last outcome = %q, want success", last.Outcome)
	}

	if notifier.count() != 1 {
		t.Errorf("notifier events = %d, want 1", notifier.count())
	}
}

func TestDispatcherOverwritesNotHistorizes(t *testing.T) {
	var fail bool
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if fail {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	d := NewDispatcher(NewClient(time.Second, testLogger()), testLogger())
	ep := serverEndpoint(t, ts)

	d.Dispatch(context.Background(), "e1", ep, "D1", ActionOpenUntilNext)
	fail = true
	d.Dispatch(context.Background(), "e1", ep, "D1", ActionOpenUntilNext)

	last, ok := d.LastResult("e1", ActionOpenUntilNext)
	if !ok {
		t.Fatal("LastResult missing")
	}
	if last.Outcome != OutcomeHTTPError {
		t.Errorf("last outcome = %q, want http_error (overwrite)", last.Outcome)
	}

	results := d.LastResults("e1")
	if len(results) != 1 {
		t.Errorf("results per entry = %d, want 1 (no history)", len(results))
	}
}

func TestDispatcherResultsAreScopedPerTarget(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	d := NewDispatcher(NewClient(time.Second, testLogger()), testLogger())
	ep := serverEndpoint(t, ts)

	d.Dispatch(context.Background(), "e1", ep, "D1", ActionOpenOneEntry)
	d.Dispatch(context.Background(), "e1", ep, "D1", ActionCloseIfSingleOpen)

	if len(d.LastResults("e1")) != 2 {
		t.Errorf("e1 results = %d, want 2", len(d.LastResults("e1")))
	}
	if len(d.LastResults("e2")) != 0 {
		t.Errorf("e2 results = %d, want 0", len(d.LastResults("e2")))
	}

	if _, ok := d.LastResult("e1", ActionCloseBackToSchedule); ok {
		t.Error("untried action should have no result")
	}
}

func TestDispatcherForget(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	d := NewDispatcher(NewClient(time.Second, testLogger()), testLogger())
	d.Dispatch(context.Background(), "e1", serverEndpoint(t, ts), "D1", ActionOpenOneEntry)

	d.Forget("e1")
	if len(d.LastResults("e1")) != 0 {
		t.Error("Forget should drop all recorded results for the entry")
	}
}
