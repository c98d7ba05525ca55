package devices

import (
	"encoding/json"
	"fmt"
)

// timeFormat is the wall-clock form used in persisted timestamps.
const timeFormat = "2006-01-02 15:04:05"

// ActiveClient is a remote peer known from its presence messages.
// Every presence message replaces the whole record; there is no
// partial mutation.
type ActiveClient struct {
	ID       string          `json:"id"`
	Status   string          `json:"status"`
	LastSeen string          `json:"last_seen"`
	Raw      json.RawMessage `json:"raw,omitempty"`
}

// SwitchDefinition is a logical controllable device declared by a
// client. Beyond the id and topic, clients attach arbitrary free-form
// attributes (labels, icons, room hints) which are preserved verbatim.
type SwitchDefinition struct {
	ID    string
	Topic string

	// Attrs holds every other attribute from the declaration.
	Attrs map[string]any
}

// MarshalJSON flattens the definition back into a single object with
// id and topic alongside the free-form attributes.
func (d SwitchDefinition) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, len(d.Attrs)+2)
	for k, v := range d.Attrs {
		obj[k] = v
	}
	obj["id"] = d.ID
	obj["topic"] = d.Topic
	return json.Marshal(obj)
}

// UnmarshalJSON splits id and topic out of the object and keeps the
// remaining attributes verbatim.
func (d *SwitchDefinition) UnmarshalJSON(data []byte) error {
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("decoding switch definition: %w", err)
	}

	if id, ok := obj["id"].(string); ok {
		d.ID = id
	}
	if topic, ok := obj["topic"].(string); ok {
		d.Topic = topic
	}
	delete(obj, "id")
	delete(obj, "topic")
	d.Attrs = obj
	return nil
}

// SwitchState is the last reported raw state for a switch, keyed
// strictly by the reporting switch's id. Last write wins; no history
// is retained. State may arrive before or after the matching
// definition exists.
type SwitchState struct {
	State     string `json:"state"`
	UpdatedAt string `json:"updated_at"`
}

// SwitchView is a switch definition with its current state attached,
// as returned in client-list responses. The stored definition is
// never mutated by the merge.
type SwitchView struct {
	Definition SwitchDefinition
	State      *SwitchState
}

// MarshalJSON renders the definition object with the state embedded
// under a "state" key when present.
func (v SwitchView) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, len(v.Definition.Attrs)+3)
	for k, val := range v.Definition.Attrs {
		obj[k] = val
	}
	obj["id"] = v.Definition.ID
	obj["topic"] = v.Definition.Topic
	if v.State != nil {
		obj["state"] = v.State
	}
	return json.Marshal(obj)
}

// ClientView is an active client with its declared switches attached,
// as returned in client-list responses.
type ClientView struct {
	ActiveClient
	Switches []SwitchView `json:"switches"`
}
