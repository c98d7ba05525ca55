// Package hub wires Switchboard's transport to its domain components.
//
// The hub subscribes every control and device topic, dispatches each
// inbound message to exactly one handler (exact topics before wildcard
// suffixes) and publishes the response contract for each route:
// submissions and deletions answer on the status topic, client-list
// requests answer in place on the topic they arrived on, and raw state
// reports produce no response at all.
//
// Two delicate routes are handled here: presence rebroadcasts are
// suppressed when nothing changed, and client-list payloads containing
// a "clients" key are recognised as the engine's own echoed responses
// and dropped, which is what keeps both shared-topic routes loop-free.
package hub
