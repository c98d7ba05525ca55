package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// ErrTimeout is returned when no response arrives within the probe timeout.
var ErrTimeout = errors.New("sbctl: no response within timeout")

const (
	probeConnectTimeout = 10 * time.Second
	probeQoS            = 1
	disconnectQuiesceMs = 250
)

// probe is a short-lived MQTT session for request/response exchanges
// with a running Switchboard instance.
type probe struct {
	client pahomqtt.Client
	opts   *RootOptions
}

// newProbe connects to the broker with a random client identity.
func newProbe(opts *RootOptions) (*probe, error) {
	clientID := "sbctl-" + uuid.NewString()[:8]

	pahoOpts := pahomqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", opts.Host, opts.Port)).
		SetClientID(clientID).
		SetCleanSession(true).
		SetConnectTimeout(probeConnectTimeout)
	if opts.Username != "" {
		pahoOpts.SetUsername(opts.Username)
		pahoOpts.SetPassword(opts.Password)
	}

	client := pahomqtt.NewClient(pahoOpts)
	token := client.Connect()
	if !token.WaitTimeout(probeConnectTimeout) {
		return nil, fmt.Errorf("sbctl: connect to %s:%d timed out", opts.Host, opts.Port)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("sbctl: connecting to %s:%d: %w", opts.Host, opts.Port, err)
	}

	return &probe{client: client, opts: opts}, nil
}

// close disconnects from the broker.
func (p *probe) close() {
	p.client.Disconnect(disconnectQuiesceMs)
}

// statusTopic returns the scheduler status topic for the configured prefix.
func (p *probe) statusTopic() string {
	return p.opts.Prefix + "/scheduler/status"
}

// pingTopic returns the scheduler ping topic for the configured prefix.
func (p *probe) pingTopic() string {
	return p.opts.Prefix + "/scheduler/ping"
}

// listJobsTopic returns the scheduler list_jobs topic for the configured prefix.
func (p *probe) listJobsTopic() string {
	return p.opts.Prefix + "/scheduler/list_jobs"
}

// request subscribes to the status topic, publishes the request, and
// waits for the first status payload the match predicate accepts.
//
// The status topic carries a retained service-status message, so the
// predicate must select the actual response by its distinguishing keys.
func (p *probe) request(topic string, payload string, match func([]byte) bool) ([]byte, error) {
	responses := make(chan []byte, 8)

	subToken := p.client.Subscribe(p.statusTopic(), probeQoS, func(_ pahomqtt.Client, msg pahomqtt.Message) {
		body := make([]byte, len(msg.Payload()))
		copy(body, msg.Payload())
		select {
		case responses <- body:
		default:
		}
	})
	if !subToken.WaitTimeout(p.opts.Timeout) {
		return nil, ErrTimeout
	}
	if err := subToken.Error(); err != nil {
		return nil, fmt.Errorf("sbctl: subscribing to %s: %w", p.statusTopic(), err)
	}
	defer p.client.Unsubscribe(p.statusTopic())

	pubToken := p.client.Publish(topic, probeQoS, false, payload)
	if !pubToken.WaitTimeout(p.opts.Timeout) {
		return nil, ErrTimeout
	}
	if err := pubToken.Error(); err != nil {
		return nil, fmt.Errorf("sbctl: publishing to %s: %w", topic, err)
	}

	deadline := time.NewTimer(p.opts.Timeout)
	defer deadline.Stop()

	for {
		select {
		case body := <-responses:
			if match(body) {
				return body, nil
			}
		case <-deadline.C:
			return nil, ErrTimeout
		}
	}
}

// hasKey reports whether the payload is a JSON object containing key.
func hasKey(payload []byte, key string) bool {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(payload, &obj); err != nil {
		return false
	}
	_, ok := obj[key]
	return ok
}
