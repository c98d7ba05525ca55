// Package cli implements the sbctl command line tool.
//
// sbctl is a thin MQTT probe for a running Switchboard instance. Each
// command opens a short-lived broker session, publishes a request on
// one of the scheduler control topics, and waits for the matching
// reply on the status topic:
//
//	sbctl ping     - one ping/status round trip
//	sbctl jobs     - request the persistent job list
//	sbctl watch    - ping on an interval until interrupted
//
// Because the status topic also carries the retained service status
// message, replies are selected by their distinguishing JSON keys
// rather than by arrival order.
package cli
