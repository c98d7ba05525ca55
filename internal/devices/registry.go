package devices

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// switchIDSuffixLength is the number of hex characters appended to the
// owning client id when generating a switch id.
const switchIDSuffixLength = 8

// Logger defines the logging interface used by the Registry.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Registry tracks remote clients, their declared switches and the last
// reported state of each switch.
//
// It owns three independent collections (clients, switches, states),
// persists each after every mutation, and never rolls memory back on
// a persistence failure: the in-memory collections stay authoritative
// until the next successful save or restart.
//
// Switch states are keyed strictly by switch id; client ids are never
// used to look up state.
//
// All public methods are thread-safe.
type Registry struct {
	mu       sync.Mutex
	clients  map[string]ActiveClient
	switches map[string][]SwitchDefinition
	states   map[string]SwitchState

	repo   Repository
	logger Logger

	// now is a clock hook for tests.
	now func() time.Time
}

// NewRegistry creates a device registry backed by the given repository.
func NewRegistry(repo Repository) *Registry {
	return &Registry{
		clients:  make(map[string]ActiveClient),
		switches: make(map[string][]SwitchDefinition),
		states:   make(map[string]SwitchState),
		repo:     repo,
		logger:   noopLogger{},
		now:      time.Now,
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// Load reads all three collections from the repository. Call once on
// startup, before connecting the transport.
func (r *Registry) Load(ctx context.Context) error {
	clients, err := r.repo.LoadClients(ctx)
	if err != nil {
		return fmt.Errorf("loading clients: %w", err)
	}
	switches, err := r.repo.LoadSwitches(ctx)
	if err != nil {
		return fmt.Errorf("loading switches: %w", err)
	}
	states, err := r.repo.LoadStates(ctx)
	if err != nil {
		return fmt.Errorf("loading switch states: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients = clients
	r.switches = switches
	r.states = states

	r.logger.Info("device registry loaded",
		"clients", len(clients),
		"switch_groups", len(switches),
		"states", len(states),
	)
	return nil
}

// UpdatePresence replaces the whole client record for id and persists
// the clients collection.
func (r *Registry) UpdatePresence(ctx context.Context, id, status string, raw []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.clients[id] = ActiveClient{
		ID:       id,
		Status:   status,
		LastSeen: r.now().Format(timeFormat),
		Raw:      append([]byte(nil), raw...),
	}
	if err := r.repo.SaveClients(ctx, r.clients); err != nil {
		r.logger.Error("persisting clients collection", "error", err)
	}

	r.logger.Debug("client presence updated", "client", id, "status", status)
}

// ListClients returns every known client with its switch definitions
// and their current states attached. States are matched strictly by
// switch id. Results are ordered by client id; stored collections are
// never mutated by the merge.
func (r *Registry) ListClients() []ClientView {
	r.mu.Lock()
	defer r.mu.Unlock()

	views := make([]ClientView, 0, len(r.clients))
	for _, client := range r.clients {
		view := ClientView{ActiveClient: client, Switches: []SwitchView{}}
		for _, def := range r.switches[client.ID] {
			sv := SwitchView{Definition: def}
			if state, ok := r.states[def.ID]; ok {
				s := state
				sv.State = &s
			}
			view.Switches = append(view.Switches, sv)
		}
		views = append(views, view)
	}

	sort.Slice(views, func(i, j int) bool {
		return views[i].ID < views[j].ID
	})
	return views
}

// ClientCount returns the number of known clients.
func (r *Registry) ClientCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// CreateSwitch appends a switch definition to the owning client's
// group and persists the switches collection.
//
// An id is generated when the definition has none. Returns
// ErrDuplicateTopic when the client already declared a switch with the
// same topic; the same topic under a different client is fine.
func (r *Registry) CreateSwitch(ctx context.Context, clientID string, def SwitchDefinition) (SwitchDefinition, error) {
	if clientID == "" {
		return SwitchDefinition{}, ErrMissingClientID
	}
	if def.Topic == "" {
		return SwitchDefinition{}, ErrMissingTopic
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.switches[clientID] {
		if existing.Topic == def.Topic {
			return SwitchDefinition{}, fmt.Errorf("%w: %s already uses %q", ErrDuplicateTopic, clientID, def.Topic)
		}
	}

	if def.ID == "" {
		def.ID = generateSwitchID(clientID)
	}

	r.switches[clientID] = append(r.switches[clientID], def)
	if err := r.repo.SaveSwitches(ctx, r.switches); err != nil {
		r.logger.Error("persisting switches collection", "error", err)
	}

	r.logger.Info("switch created", "client", clientID, "switch", def.ID, "topic", def.Topic)
	return def, nil
}

// SwitchCount returns the total number of switch definitions across
// all clients.
func (r *Registry) SwitchCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	total := 0
	for _, group := range r.switches {
		total += len(group)
	}
	return total
}

// ReportSwitchState unconditionally overwrites the state for the
// switch id and persists the states collection. Always accepted:
// state may arrive before any matching definition exists.
func (r *Registry) ReportSwitchState(ctx context.Context, switchID, state string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.states[switchID] = SwitchState{
		State:     state,
		UpdatedAt: r.now().Format(timeFormat),
	}
	if err := r.repo.SaveStates(ctx, r.states); err != nil {
		r.logger.Error("persisting switch states collection", "error", err)
	}

	r.logger.Debug("switch state recorded", "switch", switchID, "state", state)
}

// StateFor returns the current state for a switch id, if any.
func (r *Registry) StateFor(switchID string) (SwitchState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.states[switchID]
	return state, ok
}

// generateSwitchID builds a switch id from the owning client id and a
// short random hex suffix.
func generateSwitchID(clientID string) string {
	return clientID + "/" + uuid.NewString()[:switchIDSuffixLength]
}
