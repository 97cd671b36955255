package provisioning

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/onoffautomations/doorcore/internal/discovery"
	"github.com/onoffautomations/doorcore/internal/entry"
	"github.com/onoffautomations/doorcore/internal/infrastructure/config"
	"github.com/onoffautomations/doorcore/internal/infrastructure/logging"
)

// Broadcast channels for provisioning events.
const (
	ChannelEntryCreated = "entry.created"
	ChannelEntryUpdated = "entry.updated"
)

// Notifier receives provisioning events for fan-out to connected clients.
type Notifier interface {
	Broadcast(channel string, payload any)
}

// Discoverer is the slice of the discovery service the flow depends on.
// Satisfied by *discovery.Service; stubbed in tests.
type Discoverer interface {
	Enabled() bool
	FetchHubPort(ctx context.Context, creds discovery.Credentials) (int, bool)
	FetchDoors(ctx context.Context, creds discovery.Credentials) ([]discovery.Door, error)
}

// Manager drives provisioning flows: multi-step form sessions that end in
// zero or more persisted entries.
//
// Each flow is an isolated session; concurrent flows never share state.
// Nothing is persisted until a terminal transition, so an abandoned flow
// leaves no trace once its session expires.
//
// Thread Safety: safe for concurrent use. Submissions addressed to the
// same flow are serialised on its session.
type Manager struct {
	repo    entry.Repository
	disc    Discoverer
	hubCfg  config.HubConfig
	discCfg config.DiscoveryConfig
	logger  *logging.Logger

	notifiers []Notifier

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a provisioning flow manager.
func NewManager(repo entry.Repository, disc Discoverer, hubCfg config.HubConfig, discCfg config.DiscoveryConfig, logger *logging.Logger) *Manager {
	return &Manager{
		repo:     repo,
		disc:     disc,
		hubCfg:   hubCfg,
		discCfg:  discCfg,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// AddNotifier registers a broadcast target for entry events.
// Not safe to call after the manager is serving requests.
func (m *Manager) AddNotifier(n Notifier) {
	m.notifiers = append(m.notifiers, n)
}

// StartFlow opens a new provisioning flow.
//
// When discovery is enabled the flow starts at mode selection; otherwise
// the only possible path is manual, so that step is offered directly.
func (m *Manager) StartFlow(ctx context.Context) (*Result, error) {
	if !m.disc.Enabled() {
		s := newSession(StepManual)
		m.putSession(s)
		m.logger.Info("provisioning flow started", "flow_id", s.ID, "step", StepManual)
		return formResult(m.manualStep(s.ID, m.manualDefaults(), nil)), nil
	}

	s := newSession(StepModeSelect)
	m.putSession(s)
	m.logger.Info("provisioning flow started", "flow_id", s.ID, "step", StepModeSelect)
	return formResult(m.modeStep(s.ID, nil)), nil
}

// SubmitModeSelect handles the auto/manual choice.
func (m *Manager) SubmitModeSelect(ctx context.Context, flowID string, in ModeInput) (*Result, error) {
	s, err := m.session(flowID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Current != StepModeSelect {
		return nil, ErrStepMismatch
	}

	switch Mode(in.Mode) {
	case ModeAuto:
		s.Current = StepDatabase
		return formResult(m.databaseStep(s.ID, m.databaseDefaults(), nil)), nil
	case ModeManual:
		s.Current = StepManual
		return formResult(m.manualStep(s.ID, m.manualDefaults(), nil)), nil
	default:
		return nil, ErrInvalidMode
	}
}

// SubmitManual handles the manual configuration form.
//
// A duplicate identity is fatal here: the flow aborts with
// already_configured rather than re-rendering, because no edit to the
// form can make the same door novel.
func (m *Manager) SubmitManual(ctx context.Context, flowID string, in ManualInput) (*Result, error) {
	s, err := m.session(flowID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Current != StepManual || s.ReconfigureEntryID != "" {
		return nil, ErrStepMismatch
	}

	if errs := validateManual(in); len(errs) > 0 {
		return formResult(m.manualStep(s.ID, in, errs)), nil
	}

	e := entryFromManual(in)

	if _, err := m.repo.FindByIdentity(ctx, e.Identity); err == nil {
		m.finish(s)
		return &Result{Type: ResultAborted, Reason: CodeAlreadyConfigured}, nil
	} else if !errors.Is(err, entry.ErrEntryNotFound) {
		return nil, err
	}

	if err := m.repo.Create(ctx, e); err != nil {
		if errors.Is(err, entry.ErrEntryExists) {
			m.finish(s)
			return &Result{Type: ResultAborted, Reason: CodeAlreadyConfigured}, nil
		}
		return nil, err
	}

	m.finish(s)
	m.notify(ChannelEntryCreated, e)
	m.logger.Info("entry created",
		"entry_id", e.ID, "door_id", e.DoorID, "hub", e.HubIP, "hub_port", e.HubPort)

	return &Result{Type: ResultCreated, Entry: e}, nil
}

// SubmitDatabase handles the database connection form.
//
// On success the flow advances to door selection with the discovered door
// list captured in the session. The submitted password is used for the
// discovery queries and then forgotten; it is never echoed back, stored,
// or logged.
func (m *Manager) SubmitDatabase(ctx context.Context, flowID string, in DatabaseInput) (*Result, error) {
	s, err := m.session(flowID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Current != StepDatabase {
		return nil, ErrStepMismatch
	}

	if errs := validateDatabase(in); len(errs) > 0 {
		in.DBPassword = ""
		return formResult(m.databaseStep(s.ID, in, errs)), nil
	}

	creds := discovery.Credentials{
		Host:     strings.TrimSpace(in.DBHost),
		Port:     in.DBPort.Value,
		Database: strings.TrimSpace(in.DBName),
		User:     strings.TrimSpace(in.DBUser),
		Password: in.DBPassword,
	}

	// Port lookup runs first and is non-fatal; an absent or zero result
	// falls back to the configured default port.
	hubPort, ok := m.disc.FetchHubPort(ctx, creds)
	if !ok {
		hubPort = m.hubCfg.DefaultPort
		m.logger.Info("hub port lookup failed, using default",
			"flow_id", s.ID, "port", hubPort)
	}

	doors, err := m.disc.FetchDoors(ctx, creds)
	if err != nil || len(doors) == 0 {
		if err != nil {
			m.logger.Warn("door discovery failed", "flow_id", s.ID, "db_host", creds.Host, "error", err)
		} else {
			m.logger.Warn("door discovery found no doors", "flow_id", s.ID, "db_host", creds.Host)
		}
		in.DBPassword = ""
		return formResult(m.databaseStep(s.ID, in, map[string]string{"base": CodeCannotConnect})), nil
	}

	s.HubIP = strings.TrimSpace(in.HubIP)
	s.HubPort = hubPort
	s.Doors = doors
	s.doorByID = make(map[string]discovery.Door, len(doors))
	for _, d := range doors {
		s.doorByID[d.DoorID] = d
	}
	s.Current = StepSelectDoors

	m.logger.Info("doors discovered",
		"flow_id", s.ID, "count", len(doors), "hub_port", hubPort)

	return formResult(m.selectionStep(s.ID, doors, nil)), nil
}

// SubmitDoorSelection handles the final step of the auto path: materialise
// an entry per selected door.
//
// Doors already provisioned are skipped, not errors; a bulk import over a
// partly provisioned hub picks up only what is new. The flow always
// terminates with the doors_imported reason and its counts.
func (m *Manager) SubmitDoorSelection(ctx context.Context, flowID string, in SelectionInput) (*Result, error) {
	s, err := m.session(flowID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Current != StepSelectDoors {
		return nil, ErrStepMismatch
	}

	for id := range in.Doors {
		if _, ok := s.doorByID[id]; !ok {
			return formResult(m.selectionStep(s.ID, s.Doors, map[string]string{"base": CodeInvalidImport})), nil
		}
	}

	// Preserve discovery order; selection is a filter, not a reordering.
	var selected []discovery.Door
	for _, d := range s.Doors {
		if in.ImportAll || in.Doors[d.DoorID] {
			selected = append(selected, d)
		}
	}

	if len(selected) == 0 {
		m.finish(s)
		return &Result{Type: ResultAborted, Reason: CodeNoDoorsSelected}, nil
	}

	var created, skipped int
	var importErrs []ImportError

	for _, d := range selected {
		// A NULL Description or Oid in the hub database yields a door
		// that cannot form a valid identity; record it, do not create.
		if strings.TrimSpace(d.DoorID) == "" || strings.TrimSpace(d.DoorName) == "" {
			importErrs = append(importErrs, ImportError{DoorID: d.DoorID, Message: CodeInvalidImport})
			continue
		}

		e := entryFromDoor(s.HubIP, s.HubPort, d)

		err := m.repo.Create(ctx, e)
		switch {
		case err == nil:
			created++
			m.notify(ChannelEntryCreated, e)
		case errors.Is(err, entry.ErrEntryExists):
			skipped++
		default:
			m.logger.Error("door import failed",
				"flow_id", s.ID, "door_id", d.DoorID, "error", err)
			importErrs = append(importErrs, ImportError{DoorID: d.DoorID, Message: err.Error()})
		}
	}

	m.finish(s)
	m.logger.Info("door import finished",
		"flow_id", s.ID, "created", created, "skipped", skipped, "failed", len(importErrs))

	return &Result{
		Type:    ResultAborted,
		Reason:  CodeDoorsImported,
		Created: created,
		Skipped: skipped,
		Errors:  importErrs,
	}, nil
}

// StartReconfigure opens a flow to edit an existing entry in place.
// Returns entry.ErrEntryNotFound for unknown IDs.
func (m *Manager) StartReconfigure(ctx context.Context, entryID string) (*Result, error) {
	e, err := m.repo.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}

	s := newSession(StepManual)
	s.ReconfigureEntryID = e.ID
	m.putSession(s)

	defaults := ManualInput{
		HubIP:    e.HubIP,
		HubPort:  PortNumber{Value: e.HubPort, Set: true},
		DoorID:   e.DoorID,
		DoorName: e.DoorName,
	}
	m.logger.Info("reconfigure flow started", "flow_id", s.ID, "entry_id", e.ID)

	return formResult(m.manualStep(s.ID, defaults, nil)), nil
}

// SubmitReconfigure applies an edited configuration to the flow's entry.
//
// Changing the identity to collide with a different entry aborts with
// already_configured; changing it to something new simply moves the entry.
func (m *Manager) SubmitReconfigure(ctx context.Context, flowID string, in ManualInput) (*Result, error) {
	s, err := m.session(flowID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Current != StepManual || s.ReconfigureEntryID == "" {
		return nil, ErrStepMismatch
	}

	if errs := validateManual(in); len(errs) > 0 {
		return formResult(m.manualStep(s.ID, in, errs)), nil
	}

	e, err := m.repo.GetByID(ctx, s.ReconfigureEntryID)
	if err != nil {
		return nil, err
	}

	updated := entryFromManual(in)
	updated.ID = e.ID
	updated.CreatedAt = e.CreatedAt

	if updated.Identity != e.Identity {
		other, err := m.repo.FindByIdentity(ctx, updated.Identity)
		if err == nil && other.ID != e.ID {
			m.finish(s)
			return &Result{Type: ResultAborted, Reason: CodeAlreadyConfigured}, nil
		}
		if err != nil && !errors.Is(err, entry.ErrEntryNotFound) {
			return nil, err
		}
	}

	if err := m.repo.Update(ctx, updated); err != nil {
		if errors.Is(err, entry.ErrEntryExists) {
			m.finish(s)
			return &Result{Type: ResultAborted, Reason: CodeAlreadyConfigured}, nil
		}
		return nil, err
	}

	m.finish(s)
	m.notify(ChannelEntryUpdated, updated)
	m.logger.Info("entry reconfigured", "entry_id", updated.ID, "door_id", updated.DoorID)

	return &Result{Type: ResultUpdated, Entry: updated}, nil
}

// notify fans an event out to all registered notifiers.
func (m *Manager) notify(channel string, payload any) {
	for _, n := range m.notifiers {
		n.Broadcast(channel, payload)
	}
}

// entryFromManual builds an entry from validated manual input.
func entryFromManual(in ManualInput) *entry.Entry {
	hubIP := strings.TrimSpace(in.HubIP)
	doorID := strings.TrimSpace(in.DoorID)
	doorName := strings.TrimSpace(in.DoorName)

	e := &entry.Entry{
		ID:       uuid.NewString(),
		Title:    doorName,
		HubIP:    hubIP,
		HubPort:  in.HubPort.Value,
		DoorID:   doorID,
		DoorName: doorName,
	}
	e.ComputeIdentity()
	return e
}

// entryFromDoor builds an entry for one discovered door.
func entryFromDoor(hubIP string, hubPort int, d discovery.Door) *entry.Entry {
	e := &entry.Entry{
		ID:         uuid.NewString(),
		Title:      d.DoorName,
		HubIP:      hubIP,
		HubPort:    hubPort,
		DoorID:     d.DoorID,
		DoorName:   d.DoorName,
		OutputPort: d.OutputPort,
	}
	e.ComputeIdentity()
	return e
}
