package hub

import (
	"context"
	"fmt"
	"time"

	"github.com/nerrad567/switchboard/internal/devices"
	"github.com/nerrad567/switchboard/internal/infrastructure/mqtt"
	"github.com/nerrad567/switchboard/internal/jobs"
)

// Logger defines the logging interface used by the Hub.
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

// Transport is the subset of the MQTT client the hub needs.
// *mqtt.Client implements it; tests use mocks.
type Transport interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// RegistrationCounter reports live scheduler registrations for ping
// responses. The scheduler implements it.
type RegistrationCounter interface {
	Count() int
}

// Telemetry receives optional device events. May be nil.
type Telemetry interface {
	WriteSwitchState(deviceID string, state string)
	WriteClientPresence(clientID string, status string)
}

// Hub routes inbound bus messages to the job store and device
// registry and publishes the response contract for each route.
//
// Every inbound message is dispatched to exactly one handler. Handler
// errors surface to the transport layer for logging; no inbound
// message is ever fatal.
type Hub struct {
	transport Transport
	topics    mqtt.Topics
	store     *jobs.Store
	sched     RegistrationCounter
	registry  *devices.Registry

	// selfID is this engine's client id, used to ignore its own
	// retained presence message coming back from the broker.
	selfID string

	qos       byte
	router    *router
	logger    Logger
	telemetry Telemetry

	// now is a clock hook for tests.
	now func() time.Time
}

// New creates a hub wiring the transport to the store and registry.
func New(transport Transport, topics mqtt.Topics, store *jobs.Store, sched RegistrationCounter, registry *devices.Registry, selfID string, qos byte) *Hub {
	h := &Hub{
		transport: transport,
		topics:    topics,
		store:     store,
		sched:     sched,
		registry:  registry,
		selfID:    selfID,
		qos:       qos,
		logger:    noopLogger{},
		now:       time.Now,
	}
	h.router = h.buildRouter()
	return h
}

// SetLogger sets the logger for the hub.
func (h *Hub) SetLogger(logger Logger) {
	h.logger = logger
}

// SetTelemetry sets an optional sink for device events.
func (h *Hub) SetTelemetry(t Telemetry) {
	h.telemetry = t
}

// buildRouter registers every route. Exact scheduler topics win over
// the device wildcard suffixes.
func (h *Hub) buildRouter() *router {
	r := newRouter(h.topics.Prefix())

	r.handleExact(h.topics.SubmitJob(), h.handleSubmitJob)
	r.handleExact(h.topics.Ping(), h.handlePing)
	r.handleExact(h.topics.ListJobs(), h.handleListJobs)
	r.handleExact(h.topics.DeleteJob(), h.handleDeleteJob)
	r.handleExact(h.topics.DeleteAllJobs(), h.handleDeleteAllJobs)
	r.handleExact(h.topics.Presence(), h.handlePresence)

	r.handleSuffix("request/clients", h.handleClientsRequest)
	r.handleSuffix("create/switch", h.handleCreateSwitch)
	r.handleSuffix("command", h.handleCommand)

	return r
}

// Start subscribes every route on the transport. Call after the
// collections are loaded and scheduler registrations rebuilt; the
// retained online and presence messages are published by the transport
// on connect.
func (h *Hub) Start() error {
	subscriptions := []string{
		h.topics.SubmitJob(),
		h.topics.Ping(),
		h.topics.ListJobs(),
		h.topics.DeleteJob(),
		h.topics.DeleteAllJobs(),
		h.topics.Presence(),
		h.topics.ClientsRequestPattern(),
		h.topics.CreateSwitchPattern(),
		h.topics.CommandPattern(),
	}

	for _, topic := range subscriptions {
		if err := h.transport.Subscribe(topic, h.qos, h.Dispatch); err != nil {
			return fmt.Errorf("subscribing %s: %w", topic, err)
		}
	}

	h.logger.Info("hub started", "subscriptions", len(subscriptions))
	return nil
}

// Dispatch routes one inbound message to its handler. It is the
// single message entry point for every subscription.
func (h *Hub) Dispatch(topic string, payload []byte) error {
	handler := h.router.route(topic)
	if handler == nil {
		h.logger.Debug("no route for topic", "topic", topic)
		return nil
	}
	return handler(topic, payload)
}

// publish sends a response, logging transport failures. Responses are
// never retried; a failed publish is terminal for that attempt.
func (h *Hub) publish(topic string, payload []byte, retained bool) {
	if err := h.transport.Publish(topic, payload, h.qos, retained); err != nil {
		h.logger.Error("publishing response", "topic", topic, "error", err)
	}
}

// timestamp renders the response-envelope wall-clock time.
func (h *Hub) timestamp() string {
	return h.now().Format(timeFormat)
}

// ctx returns the context for persistence calls triggered by inbound
// messages. Handlers are short and synchronous.
func (h *Hub) ctx() context.Context {
	return context.Background()
}
