// Package scheduler implements Switchboard's poll-tick job scheduler.
//
// Rather than one timer per job, the scheduler keeps a registration
// map keyed by job identity tuple and polls it on a fixed cadence
// (one second by default). On each tick every due job's payload is
// published to its topic. Interval jobs reschedule from the tick time,
// daily jobs advance exactly one day, and once jobs are deregistered
// on collection and self-delete from the store after firing.
//
// The poll model keeps cancellation trivial (delete the map entry) and
// makes behaviour fully testable with a simulated clock via RunPending.
package scheduler
