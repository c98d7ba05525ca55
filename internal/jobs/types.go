package jobs

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies a job's scheduling behaviour.
type Kind string

// Job kinds.
const (
	// KindDaily fires every day at a fixed wall-clock time.
	KindDaily Kind = "daily"

	// KindInterval fires every N seconds.
	KindInterval Kind = "interval"

	// KindOnce fires at the next occurrence of a wall-clock time,
	// then deletes itself.
	KindOnce Kind = "once"
)

// Valid reports whether the kind is one of the known job kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindDaily, KindInterval, KindOnce:
		return true
	}
	return false
}

// TimeSpec holds a job's time field, which arrives on the wire either
// as a "HH:MM" string (daily and once jobs) or an integer number of
// seconds (interval jobs). The original wire form is preserved so the
// job round-trips through persistence and list responses unchanged.
type TimeSpec struct {
	clock   string
	seconds int
	numeric bool
}

// ClockTime returns a TimeSpec for a "HH:MM" wall-clock time.
func ClockTime(clock string) TimeSpec {
	return TimeSpec{clock: clock}
}

// Seconds returns a TimeSpec for an interval in seconds.
func Seconds(n int) TimeSpec {
	return TimeSpec{seconds: n, numeric: true}
}

// IsNumeric reports whether the time arrived as a number.
func (t TimeSpec) IsNumeric() bool {
	return t.numeric
}

// IntervalSeconds returns the interval length for numeric specs, 0 otherwise.
func (t TimeSpec) IntervalSeconds() int {
	if !t.numeric {
		return 0
	}
	return t.seconds
}

// Clock returns the "HH:MM" value for wall-clock specs, "" otherwise.
func (t TimeSpec) Clock() string {
	if t.numeric {
		return ""
	}
	return t.clock
}

// ClockParts parses a wall-clock spec into hour and minute.
func (t TimeSpec) ClockParts() (hour, minute int, err error) {
	if t.numeric {
		return 0, 0, fmt.Errorf("%w: numeric time has no clock parts", ErrInvalidTime)
	}
	parts := strings.Split(t.clock, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q is not HH:MM", ErrInvalidTime, t.clock)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("%w: hour in %q out of range", ErrInvalidTime, t.clock)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: minute in %q out of range", ErrInvalidTime, t.clock)
	}
	return hour, minute, nil
}

// String returns the canonical textual form used in job identity keys.
func (t TimeSpec) String() string {
	if t.numeric {
		return strconv.Itoa(t.seconds)
	}
	return t.clock
}

// IsZero reports whether the time spec was never set.
func (t TimeSpec) IsZero() bool {
	return !t.numeric && t.clock == ""
}

// MarshalJSON emits the time in its original wire form.
func (t TimeSpec) MarshalJSON() ([]byte, error) {
	if t.numeric {
		return json.Marshal(t.seconds)
	}
	return json.Marshal(t.clock)
}

// UnmarshalJSON accepts either an integer or a string.
func (t *TimeSpec) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*t = Seconds(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: time must be a number or string", ErrInvalidTime)
	}
	*t = ClockTime(s)
	return nil
}

// Job is a scheduled publish action. A job's identity is the exact
// (kind, topic, payload, time) tuple; there is no separate id.
type Job struct {
	Kind    Kind     `json:"kind"`
	Topic   string   `json:"topic"`
	Payload string   `json:"payload"`
	Time    TimeSpec `json:"time"`
}

// Key is the comparable identity of a job. Two jobs are the same job
// if and only if their keys are equal.
type Key struct {
	Kind    Kind
	Topic   string
	Payload string
	Time    string
}

// Key returns the job's identity tuple.
func (j Job) Key() Key {
	return Key{
		Kind:    j.Kind,
		Topic:   j.Topic,
		Payload: j.Payload,
		Time:    j.Time.String(),
	}
}

// String renders the key for log messages.
func (k Key) String() string {
	return fmt.Sprintf("%s %s %q @ %s", k.Kind, k.Topic, k.Payload, k.Time)
}

// Validate checks that the job is complete and well-formed.
//
// All four tuple fields are required. Interval jobs need a positive
// number of seconds; daily and once jobs need a parseable HH:MM time.
func (j Job) Validate() error {
	if j.Kind == "" || j.Topic == "" || j.Payload == "" || j.Time.IsZero() {
		return ErrIncompleteJob
	}
	if !j.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, j.Kind)
	}

	switch j.Kind {
	case KindInterval:
		if !j.Time.IsNumeric() || j.Time.IntervalSeconds() < 1 {
			return fmt.Errorf("%w: interval jobs need a positive number of seconds", ErrInvalidTime)
		}
	case KindDaily, KindOnce:
		if j.Time.IsNumeric() {
			return fmt.Errorf("%w: %s jobs need a HH:MM time", ErrInvalidTime, j.Kind)
		}
		if _, _, err := j.Time.ClockParts(); err != nil {
			return err
		}
	}

	return nil
}
