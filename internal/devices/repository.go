package devices

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Collection row names in the collections table.
const (
	clientsCollection  = "clients"
	switchesCollection = "switches"
	statesCollection   = "switch_states"
)

// Repository defines the interface for device registry persistence.
// This abstraction allows different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
//
// Each collection is an independent whole document; there is no
// multi-collection transaction. A crash between mutation and save
// loses at most the most recent mutation.
type Repository interface {
	LoadClients(ctx context.Context) (map[string]ActiveClient, error)
	SaveClients(ctx context.Context, clients map[string]ActiveClient) error

	LoadSwitches(ctx context.Context) (map[string][]SwitchDefinition, error)
	SaveSwitches(ctx context.Context, switches map[string][]SwitchDefinition) error

	LoadStates(ctx context.Context) (map[string]SwitchState, error)
	SaveStates(ctx context.Context, states map[string]SwitchState) error
}

// SQLiteRepository implements Repository using collections-table rows.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// LoadClients reads the clients document.
func (r *SQLiteRepository) LoadClients(ctx context.Context) (map[string]ActiveClient, error) {
	var clients map[string]ActiveClient
	if err := r.loadDocument(ctx, clientsCollection, &clients); err != nil {
		return nil, err
	}
	if clients == nil {
		clients = make(map[string]ActiveClient)
	}
	return clients, nil
}

// SaveClients writes the clients document.
func (r *SQLiteRepository) SaveClients(ctx context.Context, clients map[string]ActiveClient) error {
	return r.saveDocument(ctx, clientsCollection, clients)
}

// LoadSwitches reads the switches document, grouped by owning client.
func (r *SQLiteRepository) LoadSwitches(ctx context.Context) (map[string][]SwitchDefinition, error) {
	var switches map[string][]SwitchDefinition
	if err := r.loadDocument(ctx, switchesCollection, &switches); err != nil {
		return nil, err
	}
	if switches == nil {
		switches = make(map[string][]SwitchDefinition)
	}
	return switches, nil
}

// SaveSwitches writes the switches document.
func (r *SQLiteRepository) SaveSwitches(ctx context.Context, switches map[string][]SwitchDefinition) error {
	return r.saveDocument(ctx, switchesCollection, switches)
}

// LoadStates reads the switch-states document, keyed by switch id.
func (r *SQLiteRepository) LoadStates(ctx context.Context) (map[string]SwitchState, error) {
	var states map[string]SwitchState
	if err := r.loadDocument(ctx, statesCollection, &states); err != nil {
		return nil, err
	}
	if states == nil {
		states = make(map[string]SwitchState)
	}
	return states, nil
}

// SaveStates writes the switch-states document.
func (r *SQLiteRepository) SaveStates(ctx context.Context, states map[string]SwitchState) error {
	return r.saveDocument(ctx, statesCollection, states)
}

// loadDocument reads one collection row into dest. A missing row is
// left as the zero value, not an error (first run).
func (r *SQLiteRepository) loadDocument(ctx context.Context, name string, dest any) error {
	var document string
	err := r.db.QueryRowContext(ctx,
		"SELECT document FROM collections WHERE name = ?", name,
	).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading %s collection: %w", name, err)
	}

	if err := json.Unmarshal([]byte(document), dest); err != nil {
		return fmt.Errorf("decoding %s collection: %w", name, err)
	}
	return nil
}

// saveDocument writes one collection row, replacing any prior version.
func (r *SQLiteRepository) saveDocument(ctx context.Context, name string, value any) error {
	document, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s collection: %w", name, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO collections (name, document, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			document = excluded.document,
			updated_at = excluded.updated_at
	`, name, string(document), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("saving %s collection: %w", name, err)
	}
	return nil
}
