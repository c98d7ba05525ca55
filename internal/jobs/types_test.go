package jobs

import (
	"encoding/json"
	"testing"
)

func TestTimeSpec_JSONRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"integer seconds", `5`, `5`},
		{"clock time", `"07:30"`, `"07:30"`},
		{"zero seconds", `0`, `0`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var spec TimeSpec
			if err := json.Unmarshal([]byte(tt.in), &spec); err != nil {
				t.Fatalf("Unmarshal(%s) error = %v", tt.in, err)
			}
			out, err := json.Marshal(spec)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(out) != tt.want {
				t.Errorf("round trip = %s, want %s", out, tt.want)
			}
		})
	}
}

func TestTimeSpec_UnmarshalInvalid(t *testing.T) {
	var spec TimeSpec
	if err := json.Unmarshal([]byte(`{"h":7}`), &spec); err == nil {
		t.Error("expected error for object time value")
	}
}

func TestTimeSpec_ClockParts(t *testing.T) {
	tests := []struct {
		name       string
		spec       TimeSpec
		wantHour   int
		wantMinute int
		wantErr    bool
	}{
		{"valid morning", ClockTime("07:30"), 7, 30, false},
		{"midnight", ClockTime("00:00"), 0, 0, false},
		{"end of day", ClockTime("23:59"), 23, 59, false},
		{"hour out of range", ClockTime("24:00"), 0, 0, true},
		{"minute out of range", ClockTime("12:60"), 0, 0, true},
		{"not a clock", ClockTime("soon"), 0, 0, true},
		{"numeric spec", Seconds(5), 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hour, minute, err := tt.spec.ClockParts()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if hour != tt.wantHour || minute != tt.wantMinute {
				t.Errorf("ClockParts() = %d:%d, want %d:%d", hour, minute, tt.wantHour, tt.wantMinute)
			}
		})
	}
}

func TestJob_KeyEquality(t *testing.T) {
	a := Job{Kind: KindOnce, Topic: "x", Payload: "y", Time: ClockTime("23:59")}
	b := Job{Kind: KindOnce, Topic: "x", Payload: "y", Time: ClockTime("23:59")}
	c := Job{Kind: KindDaily, Topic: "x", Payload: "y", Time: ClockTime("23:59")}

	if a.Key() != b.Key() {
		t.Error("identical tuples produced different keys")
	}
	if a.Key() == c.Key() {
		t.Error("different kinds produced the same key")
	}
}

func TestJob_JSONRoundTrip(t *testing.T) {
	in := `{"kind":"interval","topic":"lamp/set","payload":"ON","time":5}`

	var job Job
	if err := json.Unmarshal([]byte(in), &job); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if job.Kind != KindInterval || job.Time.IntervalSeconds() != 5 {
		t.Errorf("decoded job = %+v", job)
	}

	out, err := json.Marshal(job)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(out) != in {
		t.Errorf("round trip = %s, want %s", out, in)
	}
}
