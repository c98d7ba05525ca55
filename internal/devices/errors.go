package devices

import "errors"

// Domain errors for the devices package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, devices.ErrDuplicateTopic) {
//	    // skip the declaration
//	}
var (
	// ErrDuplicateTopic is returned when a client declares a second
	// switch with a topic it already uses. Topic uniqueness is scoped
	// per client, not global.
	ErrDuplicateTopic = errors.New("devices: duplicate switch topic for client")

	// ErrMissingClientID is returned when a switch declaration names
	// no owning client.
	ErrMissingClientID = errors.New("devices: missing client id")

	// ErrMissingTopic is returned when a switch declaration has no topic.
	ErrMissingTopic = errors.New("devices: missing switch topic")
)
