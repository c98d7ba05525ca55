package devices

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// mockRepository is an in-memory implementation of Repository for testing.
type mockRepository struct {
	mu       sync.Mutex
	clients  map[string]ActiveClient
	switches map[string][]SwitchDefinition
	states   map[string]SwitchState
	saveErr  error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		clients:  make(map[string]ActiveClient),
		switches: make(map[string][]SwitchDefinition),
		states:   make(map[string]SwitchState),
	}
}

func (m *mockRepository) LoadClients(_ context.Context) (map[string]ActiveClient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]ActiveClient, len(m.clients))
	for k, v := range m.clients {
		out[k] = v
	}
	return out, nil
}

func (m *mockRepository) SaveClients(_ context.Context, clients map[string]ActiveClient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.clients = make(map[string]ActiveClient, len(clients))
	for k, v := range clients {
		m.clients[k] = v
	}
	return nil
}

func (m *mockRepository) LoadSwitches(_ context.Context) (map[string][]SwitchDefinition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string][]SwitchDefinition, len(m.switches))
	for k, v := range m.switches {
		out[k] = append([]SwitchDefinition(nil), v...)
	}
	return out, nil
}

func (m *mockRepository) SaveSwitches(_ context.Context, switches map[string][]SwitchDefinition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.switches = make(map[string][]SwitchDefinition, len(switches))
	for k, v := range switches {
		m.switches[k] = append([]SwitchDefinition(nil), v...)
	}
	return nil
}

func (m *mockRepository) LoadStates(_ context.Context) (map[string]SwitchState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]SwitchState, len(m.states))
	for k, v := range m.states {
		out[k] = v
	}
	return out, nil
}

func (m *mockRepository) SaveStates(_ context.Context, states map[string]SwitchState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.states = make(map[string]SwitchState, len(states))
	for k, v := range states {
		m.states[k] = v
	}
	return nil
}

func newTestRegistry() (*Registry, *mockRepository) {
	repo := newMockRepository()
	r := NewRegistry(repo)
	r.now = func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) }
	return r, repo
}

func TestUpdatePresence(t *testing.T) {
	r, repo := newTestRegistry()
	ctx := context.Background()

	r.UpdatePresence(ctx, "kitchen-panel", "connected", []byte(`{"id":"kitchen-panel","status":"connected"}`))

	if r.ClientCount() != 1 {
		t.Fatalf("ClientCount() = %d, want 1", r.ClientCount())
	}

	views := r.ListClients()
	if views[0].Status != "connected" {
		t.Errorf("status = %q, want connected", views[0].Status)
	}
	if views[0].LastSeen != "2026-08-30 12:00:00" {
		t.Errorf("last seen = %q", views[0].LastSeen)
	}
	if len(repo.clients) != 1 {
		t.Error("clients collection not persisted")
	}
}

func TestUpdatePresence_WholeRecordReplace(t *testing.T) {
	r, _ := newTestRegistry()
	ctx := context.Background()

	r.UpdatePresence(ctx, "kitchen-panel", "connected", []byte(`{"extra":"field"}`))
	r.UpdatePresence(ctx, "kitchen-panel", "disconnected", nil)

	views := r.ListClients()
	if len(views) != 1 {
		t.Fatalf("got %d clients, want 1", len(views))
	}
	if views[0].Status != "disconnected" {
		t.Errorf("status = %q, want disconnected", views[0].Status)
	}
	if len(views[0].Raw) != 0 {
		t.Errorf("raw payload carried over from prior record: %s", views[0].Raw)
	}
}

func TestCreateSwitch(t *testing.T) {
	r, repo := newTestRegistry()
	ctx := context.Background()

	def, err := r.CreateSwitch(ctx, "kitchen-panel", SwitchDefinition{
		Topic: "kitchen/lamp",
		Attrs: map[string]any{"label": "Lamp"},
	})
	if err != nil {
		t.Fatalf("CreateSwitch() error = %v", err)
	}

	if !strings.HasPrefix(def.ID, "kitchen-panel/") {
		t.Errorf("generated id = %q, want kitchen-panel/ prefix", def.ID)
	}
	if len(def.ID) != len("kitchen-panel/")+8 {
		t.Errorf("generated id suffix length wrong: %q", def.ID)
	}
	if len(repo.switches["kitchen-panel"]) != 1 {
		t.Error("switches collection not persisted")
	}
}

func TestCreateSwitch_KeepsProvidedID(t *testing.T) {
	r, _ := newTestRegistry()

	def, err := r.CreateSwitch(context.Background(), "panel", SwitchDefinition{
		ID:    "panel/custom01",
		Topic: "hall/lamp",
	})
	if err != nil {
		t.Fatalf("CreateSwitch() error = %v", err)
	}
	if def.ID != "panel/custom01" {
		t.Errorf("id = %q, want panel/custom01", def.ID)
	}
}

func TestCreateSwitch_DuplicateTopic(t *testing.T) {
	r, _ := newTestRegistry()
	ctx := context.Background()

	if _, err := r.CreateSwitch(ctx, "panel-a", SwitchDefinition{Topic: "hall/lamp"}); err != nil {
		t.Fatalf("first CreateSwitch() error = %v", err)
	}

	// Same topic, same client: rejected.
	_, err := r.CreateSwitch(ctx, "panel-a", SwitchDefinition{Topic: "hall/lamp"})
	if !errors.Is(err, ErrDuplicateTopic) {
		t.Errorf("same-client duplicate error = %v, want ErrDuplicateTopic", err)
	}

	// Same topic, different client: accepted.
	if _, err := r.CreateSwitch(ctx, "panel-b", SwitchDefinition{Topic: "hall/lamp"}); err != nil {
		t.Errorf("cross-client CreateSwitch() error = %v", err)
	}

	if r.SwitchCount() != 2 {
		t.Errorf("SwitchCount() = %d, want 2", r.SwitchCount())
	}
}

func TestCreateSwitch_Validation(t *testing.T) {
	r, _ := newTestRegistry()
	ctx := context.Background()

	if _, err := r.CreateSwitch(ctx, "", SwitchDefinition{Topic: "hall/lamp"}); !errors.Is(err, ErrMissingClientID) {
		t.Errorf("missing client error = %v, want ErrMissingClientID", err)
	}
	if _, err := r.CreateSwitch(ctx, "panel", SwitchDefinition{}); !errors.Is(err, ErrMissingTopic) {
		t.Errorf("missing topic error = %v, want ErrMissingTopic", err)
	}
}

func TestReportSwitchState_LastWriteWins(t *testing.T) {
	r, _ := newTestRegistry()
	ctx := context.Background()

	r.ReportSwitchState(ctx, "panel/ab12cd34", "ON")
	r.ReportSwitchState(ctx, "panel/ab12cd34", "OFF")

	state, ok := r.StateFor("panel/ab12cd34")
	if !ok {
		t.Fatal("StateFor() found no state")
	}
	if state.State != "OFF" {
		t.Errorf("state = %q, want OFF (last write wins)", state.State)
	}
}

func TestReportSwitchState_BeforeDefinition(t *testing.T) {
	r, _ := newTestRegistry()
	ctx := context.Background()

	// State arrives first; definition later. Both survive.
	r.ReportSwitchState(ctx, "panel/ab12cd34", "ON")
	if _, err := r.CreateSwitch(ctx, "panel", SwitchDefinition{ID: "panel/ab12cd34", Topic: "hall/lamp"}); err != nil {
		t.Fatalf("CreateSwitch() error = %v", err)
	}

	r.UpdatePresence(ctx, "panel", "connected", nil)
	views := r.ListClients()
	if len(views) != 1 || len(views[0].Switches) != 1 {
		t.Fatalf("unexpected views %+v", views)
	}
	if views[0].Switches[0].State == nil || views[0].Switches[0].State.State != "ON" {
		t.Error("state reported before definition not merged into view")
	}
}

func TestListClients_MergesStrictlyBySwitchID(t *testing.T) {
	r, _ := newTestRegistry()
	ctx := context.Background()

	r.UpdatePresence(ctx, "panel", "connected", nil)
	if _, err := r.CreateSwitch(ctx, "panel", SwitchDefinition{ID: "panel/aa11bb22", Topic: "hall/lamp"}); err != nil {
		t.Fatalf("CreateSwitch() error = %v", err)
	}

	// A state stored under the client id must not attach to the switch.
	r.ReportSwitchState(ctx, "panel", "ON")

	views := r.ListClients()
	if views[0].Switches[0].State != nil {
		t.Error("state keyed by client id leaked into switch view")
	}

	r.ReportSwitchState(ctx, "panel/aa11bb22", "OFF")
	views = r.ListClients()
	if views[0].Switches[0].State == nil || views[0].Switches[0].State.State != "OFF" {
		t.Error("state keyed by switch id not merged")
	}
}

func TestListClients_Ordering(t *testing.T) {
	r, _ := newTestRegistry()
	ctx := context.Background()

	r.UpdatePresence(ctx, "zebra", "connected", nil)
	r.UpdatePresence(ctx, "alpha", "connected", nil)

	views := r.ListClients()
	if views[0].ID != "alpha" || views[1].ID != "zebra" {
		t.Errorf("views not ordered by id: %s, %s", views[0].ID, views[1].ID)
	}
}

func TestLoad(t *testing.T) {
	repo := newMockRepository()
	repo.clients["panel"] = ActiveClient{ID: "panel", Status: "connected"}
	repo.switches["panel"] = []SwitchDefinition{{ID: "panel/aa11bb22", Topic: "hall/lamp"}}
	repo.states["panel/aa11bb22"] = SwitchState{State: "ON", UpdatedAt: "2026-08-30 11:00:00"}

	r := NewRegistry(repo)
	if err := r.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	views := r.ListClients()
	if len(views) != 1 || len(views[0].Switches) != 1 {
		t.Fatalf("unexpected views after Load: %+v", views)
	}
	if views[0].Switches[0].State == nil || views[0].Switches[0].State.State != "ON" {
		t.Error("loaded state not merged into view")
	}
}

func TestSwitchDefinition_JSONRoundTrip(t *testing.T) {
	in := `{"id":"panel/aa11bb22","topic":"hall/lamp","label":"Hall lamp","room":"hall"}`

	var def SwitchDefinition
	if err := json.Unmarshal([]byte(in), &def); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if def.ID != "panel/aa11bb22" || def.Topic != "hall/lamp" {
		t.Errorf("decoded definition = %+v", def)
	}
	if def.Attrs["label"] != "Hall lamp" {
		t.Errorf("free-form attrs not preserved: %+v", def.Attrs)
	}

	out, err := json.Marshal(def)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("re-decoding: %v", err)
	}
	for _, key := range []string{"id", "topic", "label", "room"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("marshalled definition missing %q", key)
		}
	}
}
