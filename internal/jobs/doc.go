// Package jobs implements the persistent job store for Switchboard's
// scheduler.
//
// A job is a scheduled publish action identified entirely by its
// (kind, topic, payload, time) tuple: submitting the same tuple twice
// is a duplicate, and deletion is requested by tuple, not by id. Three
// kinds exist: daily (fires at HH:MM every day), interval (fires every
// N seconds) and once (fires at the next HH:MM, then deletes itself).
//
// The Store keeps the job list in memory, persists the whole list as
// one JSON document after every mutation, and mirrors mutations into a
// Registrar so the scheduler's timer registrations always match stored
// state. Persistence failures are logged and the in-memory list stays
// authoritative.
package jobs
