package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteJobFiring records that a scheduled job fired.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - kind: The job kind ("daily", "interval", "once")
//   - topic: The topic the job's action was published to
func (c *Client) WriteJobFiring(kind string, topic string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"job_firings",
		map[string]string{
			"kind":  kind,
			"topic": topic,
		},
		map[string]interface{}{
			"count": 1,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteSwitchState records a raw state report from a switch device.
//
// Parameters:
//   - deviceID: The reporting device's id
//   - state: The raw state string as received on the command topic
func (c *Client) WriteSwitchState(deviceID string, state string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"switch_states",
		map[string]string{
			"device_id": deviceID,
		},
		map[string]interface{}{
			"state": state,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteClientPresence records a presence transition for a remote client.
//
// Parameters:
//   - clientID: The client's id from the presence payload
//   - status: The declared status ("connected", "disconnected", ...)
func (c *Client) WriteClientPresence(clientID string, status string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"client_presence",
		map[string]string{
			"client_id": clientID,
			"status":    status,
		},
		map[string]interface{}{
			"count": 1,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
