package hub

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nerrad567/switchboard/internal/devices"
	"github.com/nerrad567/switchboard/internal/jobs"
)

// handleSubmitJob stores a submitted job. Validation and duplicate
// rejections are published as retained error statuses so late
// subscribers see why their job is missing.
func (h *Hub) handleSubmitJob(_ string, payload []byte) error {
	var job jobs.Job
	if err := json.Unmarshal(payload, &job); err != nil {
		h.publishError(fmt.Sprintf("unparseable job submission: %v", err), true)
		return nil
	}

	if err := h.store.Submit(h.ctx(), job); err != nil {
		h.publishError(err.Error(), true)
		return nil
	}

	h.publish(h.topics.Status(), mustJSON(statusMessage{
		Status:    "online",
		Message:   fmt.Sprintf("Job added. %d persistent job(s) stored.", h.store.Count()),
		Timestamp: h.timestamp(),
	}), false)
	return nil
}

// handlePing answers a liveness probe with job counts and an echo of
// the probe payload.
func (h *Hub) handlePing(_ string, payload []byte) error {
	h.publish(h.topics.Status(), mustJSON(pingResponse{
		Status:              "alive",
		Timestamp:           h.timestamp(),
		ActiveJobs:          h.sched.Count(),
		TotalPersistentJobs: h.store.Count(),
		PingReceived:        string(payload),
	}), false)
	return nil
}

// handleListJobs publishes the full job list in submission order.
func (h *Hub) handleListJobs(_ string, _ []byte) error {
	list := h.store.List()
	h.publish(h.topics.Status(), mustJSON(listJobsResponse{
		Timestamp: h.timestamp(),
		TotalJobs: len(list),
		Jobs:      list,
	}), false)
	return nil
}

// handleDeleteJob removes the job matching the submitted tuple.
// Deleting an absent tuple reports a count of zero, not an error.
func (h *Hub) handleDeleteJob(_ string, payload []byte) error {
	var job jobs.Job
	if err := json.Unmarshal(payload, &job); err != nil {
		h.publishError(fmt.Sprintf("unparseable job deletion: %v", err), false)
		return nil
	}

	deleted := h.store.DeleteOne(h.ctx(), job.Key())
	h.publish(h.topics.Status(), mustJSON(jobDeletedResponse{
		Status:    "job_deleted",
		Message:   fmt.Sprintf("Job deletion attempted. Deleted %d job(s).", deleted),
		Job:       job,
		Timestamp: h.timestamp(),
	}), false)
	return nil
}

// handleDeleteAllJobs clears the store and every registration.
func (h *Hub) handleDeleteAllJobs(_ string, _ []byte) error {
	deleted := h.store.DeleteAll(h.ctx())
	h.publish(h.topics.Status(), mustJSON(statusMessage{
		Status:    "all_jobs_deleted",
		Message:   fmt.Sprintf("SUCCESS: Cleared all %d persistent and scheduled jobs.", deleted),
		Timestamp: h.timestamp(),
	}), false)
	return nil
}

// presenceDeclaration is the wire shape of a presence message.
type presenceDeclaration struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// handlePresence upserts the declaring client and rebroadcasts the
// declaration retained, so late joiners see current presence.
//
// Rebroadcast is suppressed when the declared status matches the
// stored record: the retained rebroadcast comes back to us on the same
// topic, and suppression is what stops that echo from looping.
func (h *Hub) handlePresence(_ string, payload []byte) error {
	var decl presenceDeclaration
	if err := json.Unmarshal(payload, &decl); err != nil || decl.ID == "" {
		h.logger.Warn("discarding malformed presence message", "payload", string(payload))
		return nil
	}

	// The engine's own retained presence comes back on connect.
	if decl.ID == h.selfID {
		return nil
	}

	changed := true
	for _, view := range h.registry.ListClients() {
		if view.ID == decl.ID && view.Status == decl.Status {
			changed = false
			break
		}
	}

	h.registry.UpdatePresence(h.ctx(), decl.ID, decl.Status, payload)
	if h.telemetry != nil {
		h.telemetry.WriteClientPresence(decl.ID, decl.Status)
	}

	if changed {
		h.publish(h.topics.Presence(), payload, true)
	}
	return nil
}

// handleClientsRequest answers a client-list request on the topic it
// arrived on.
//
// Request and response share that topic, so the engine's own response
// is redelivered to it. A payload that parses as an object with a
// "clients" key is such an echo and is discarded without publishing;
// anything else (empty, unparseable, or a plain object) is a genuine
// request and answered once.
func (h *Hub) handleClientsRequest(topic string, payload []byte) error {
	if isClientsResponse(payload) {
		h.logger.Debug("ignoring echoed clients response", "topic", topic)
		return nil
	}

	clients := h.registry.ListClients()
	h.publish(topic, mustJSON(clientsResponse{
		Timestamp:    h.timestamp(),
		TotalClients: len(clients),
		Clients:      clients,
	}), false)
	return nil
}

// isClientsResponse reports whether the payload is one of the engine's
// own client-list responses.
func isClientsResponse(payload []byte) bool {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(payload, &obj); err != nil {
		return false
	}
	_, ok := obj["clients"]
	return ok
}

// createSwitchRequest is the wire shape of a switch declaration.
type createSwitchRequest struct {
	ClientID  string                   `json:"client_id"`
	Structure devices.SwitchDefinition `json:"structure"`
}

// handleCreateSwitch registers a switch declaration for its owning
// client. Duplicate topics are skipped silently; other failures are
// published as error statuses.
func (h *Hub) handleCreateSwitch(topic string, payload []byte) error {
	var req createSwitchRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		h.publishError(fmt.Sprintf("unparseable switch declaration: %v", err), false)
		return nil
	}

	clientID := req.ClientID
	if clientID == "" {
		// Fall back to the publishing device's topic segment.
		clientID, _ = h.topics.DeviceSegment(topic)
	}

	def, err := h.registry.CreateSwitch(h.ctx(), clientID, req.Structure)
	if errors.Is(err, devices.ErrDuplicateTopic) {
		h.logger.Debug("skipping duplicate switch declaration", "client", clientID, "topic", req.Structure.Topic)
		return nil
	}
	if err != nil {
		h.publishError(err.Error(), false)
		return nil
	}

	h.logger.Info("switch registered", "client", clientID, "switch", def.ID)
	return nil
}

// handleCommand records a raw state report. Always accepted; the
// reporting switch's id is the topic's device segment and no response
// is published.
func (h *Hub) handleCommand(topic string, payload []byte) error {
	switchID, ok := h.topics.DeviceSegment(topic)
	if !ok {
		h.logger.Warn("state report with no device segment", "topic", topic)
		return nil
	}

	h.registry.ReportSwitchState(h.ctx(), switchID, string(payload))
	if h.telemetry != nil {
		h.telemetry.WriteSwitchState(switchID, string(payload))
	}
	return nil
}

// publishError publishes an error status. Submit-path errors are
// retained so the rejection outlives the moment.
func (h *Hub) publishError(message string, retained bool) {
	h.publish(h.topics.Status(), mustJSON(statusMessage{
		Status:    "error",
		Message:   message,
		Timestamp: h.timestamp(),
	}), retained)
}
