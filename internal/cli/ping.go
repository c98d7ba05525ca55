package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// pingStatus is the scheduler's reply to a ping request.
type pingStatus struct {
	Status              string `json:"status"`
	Timestamp           string `json:"timestamp"`
	ActiveJobs          int    `json:"active_jobs"`
	TotalPersistentJobs int    `json:"total_persistent_jobs"`
	PingReceived        string `json:"ping_received"`
}

// NewPingCommand creates the ping command.
func NewPingCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Check that the scheduler is alive",
		Long: `Send a ping to the scheduler and wait for its status reply.

Exits non-zero if no reply arrives within the timeout.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPing(rootOpts, cmd)
		},
	}

	return cmd
}

func runPing(opts *RootOptions, cmd *cobra.Command) error {
	p, err := newProbe(opts)
	if err != nil {
		return err
	}
	defer p.close()

	body, err := p.request(p.pingTopic(), "ping", func(payload []byte) bool {
		return hasKey(payload, "ping_received")
	})
	if err != nil {
		return err
	}

	if opts.Format == "json" {
		fmt.Fprintln(cmd.OutOrStdout(), string(body))
		return nil
	}

	var status pingStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return fmt.Errorf("sbctl: decoding status reply: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "status:          %s\n", status.Status)
	fmt.Fprintf(out, "timestamp:       %s\n", status.Timestamp)
	fmt.Fprintf(out, "active jobs:     %d\n", status.ActiveJobs)
	fmt.Fprintf(out, "persistent jobs: %d\n", status.TotalPersistentJobs)
	fmt.Fprintf(out, "ping echo:       %s\n", status.PingReceived)
	return nil
}
