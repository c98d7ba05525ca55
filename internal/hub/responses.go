package hub

import (
	"encoding/json"
	"fmt"

	"github.com/nerrad567/switchboard/internal/devices"
	"github.com/nerrad567/switchboard/internal/jobs"
)

// timeFormat is the wall-clock form used in response envelopes.
const timeFormat = "2006-01-02 15:04:05"

// statusMessage is the generic envelope for status-topic responses.
type statusMessage struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// pingResponse answers a liveness probe.
type pingResponse struct {
	Status              string `json:"status"`
	Timestamp           string `json:"timestamp"`
	ActiveJobs          int    `json:"active_jobs"`
	TotalPersistentJobs int    `json:"total_persistent_jobs"`
	PingReceived        string `json:"ping_received"`
}

// listJobsResponse carries the full job list.
type listJobsResponse struct {
	Timestamp string     `json:"timestamp"`
	TotalJobs int        `json:"total_jobs"`
	Jobs      []jobs.Job `json:"jobs"`
}

// jobDeletedResponse reports the outcome of a single-job deletion.
type jobDeletedResponse struct {
	Status    string   `json:"status"`
	Message   string   `json:"message"`
	Job       jobs.Job `json:"job"`
	Timestamp string   `json:"timestamp"`
}

// clientsResponse answers a client-list request. Its "clients" key is
// also what the echo check looks for: a payload containing that key is
// one of these responses coming back on the shared request topic.
type clientsResponse struct {
	Timestamp    string               `json:"timestamp"`
	TotalClients int                  `json:"total_clients"`
	Clients      []devices.ClientView `json:"clients"`
}

// mustJSON marshals a response envelope. The envelopes above contain
// only marshallable fields, so failure indicates a programming error;
// it degrades to an error status rather than panicking.
func mustJSON(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte(fmt.Sprintf(`{"status":"error","message":"encoding response: %s"}`, err))
	}
	return data
}
