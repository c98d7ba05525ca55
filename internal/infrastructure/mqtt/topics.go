package mqtt

import (
	"fmt"
	"strings"
)

// DefaultPrefix is the topic prefix used when none is configured.
const DefaultPrefix = "myhome"

// Topics provides builders for Switchboard MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
// All topics share a configurable prefix (default "myhome"):
//
//	topics := mqtt.NewTopics("myhome")
//	submit := topics.SubmitJob()
//	// Returns: "myhome/scheduler/submit_job"
//
// Scheduler control topics are exact; device topics are wildcard
// patterns where the second segment is the publishing device's id.
type Topics struct {
	prefix string
}

// NewTopics returns a Topics builder for the given prefix.
// An empty prefix falls back to DefaultPrefix.
func NewTopics(prefix string) Topics {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return Topics{prefix: prefix}
}

// Prefix returns the configured topic prefix.
func (t Topics) Prefix() string {
	return t.prefix
}

// SubmitJob returns the topic on which job submissions arrive.
//
// Example: myhome/scheduler/submit_job
func (t Topics) SubmitJob() string {
	return fmt.Sprintf("%s/scheduler/submit_job", t.prefix)
}

// Ping returns the topic on which liveness probes arrive.
//
// Example: myhome/scheduler/ping
func (t Topics) Ping() string {
	return fmt.Sprintf("%s/scheduler/ping", t.prefix)
}

// Status returns the topic on which the engine publishes its responses
// and status messages.
//
// Example: myhome/scheduler/status
func (t Topics) Status() string {
	return fmt.Sprintf("%s/scheduler/status", t.prefix)
}

// ListJobs returns the topic on which job-list requests arrive.
//
// Example: myhome/scheduler/list_jobs
func (t Topics) ListJobs() string {
	return fmt.Sprintf("%s/scheduler/list_jobs", t.prefix)
}

// DeleteJob returns the topic on which single-job deletion requests arrive.
//
// Example: myhome/scheduler/delete_job
func (t Topics) DeleteJob() string {
	return fmt.Sprintf("%s/scheduler/delete_job", t.prefix)
}

// DeleteAllJobs returns the topic on which delete-all requests arrive.
//
// Example: myhome/scheduler/delete_all_jobs
func (t Topics) DeleteAllJobs() string {
	return fmt.Sprintf("%s/scheduler/delete_all_jobs", t.prefix)
}

// Presence returns the retained presence topic shared by the engine
// and remote clients.
//
// Example: myhome/scheduler/presence
func (t Topics) Presence() string {
	return fmt.Sprintf("%s/scheduler/presence", t.prefix)
}

// ClientsRequestPattern returns the wildcard pattern matching client-list
// requests from any device. Responses are published back on the
// concrete matched topic.
//
// Example: myhome/+/request/clients
func (t Topics) ClientsRequestPattern() string {
	return fmt.Sprintf("%s/+/request/clients", t.prefix)
}

// CreateSwitchPattern returns the wildcard pattern matching switch
// registration messages from any device.
//
// Example: myhome/+/create/switch
func (t Topics) CreateSwitchPattern() string {
	return fmt.Sprintf("%s/+/create/switch", t.prefix)
}

// CommandPattern returns the wildcard pattern matching raw state
// reports from any device.
//
// Example: myhome/+/command
func (t Topics) CommandPattern() string {
	return fmt.Sprintf("%s/+/command", t.prefix)
}

// DeviceSegment extracts the device id from a concrete topic that
// matched one of the wildcard patterns. The device id is the second
// path segment: "myhome/kitchen-panel/command" yields "kitchen-panel".
func (t Topics) DeviceSegment(topic string) (string, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) < 2 || parts[0] != t.prefix || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
