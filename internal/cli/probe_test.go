package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHasKey(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		key     string
		want    bool
	}{
		{"ping reply", `{"status":"alive","ping_received":"ping"}`, "ping_received", true},
		{"retained service status", `{"status":"online","timestamp":"x"}`, "ping_received", false},
		{"job listing", `{"total_jobs":0,"jobs":[]}`, "jobs", true},
		{"not json", `pong`, "jobs", false},
		{"json array", `[1,2,3]`, "jobs", false},
		{"null value still counts", `{"jobs":null}`, "jobs", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hasKey([]byte(tt.payload), tt.key))
		})
	}
}

func TestProbeTopics(t *testing.T) {
	p := &probe{opts: &RootOptions{Prefix: "myhome", Timeout: time.Second}}

	assert.Equal(t, "myhome/scheduler/status", p.statusTopic())
	assert.Equal(t, "myhome/scheduler/ping", p.pingTopic())
	assert.Equal(t, "myhome/scheduler/list_jobs", p.listJobsTopic())
}
