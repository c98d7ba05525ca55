// Package devices implements Switchboard's client and switch
// registries.
//
// Three collections are tracked: active clients (whole-record upserts
// from presence messages), switch definitions (grouped per owning
// client, topic-unique within that group) and switch states (last
// reported raw state, keyed strictly by switch id, last write wins).
//
// Definitions and states are deliberately independent: a state report
// may arrive before any definition for that switch exists, and a
// definition never requires a state. Client-list responses merge the
// two on the fly without mutating either collection.
package devices
