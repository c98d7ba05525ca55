package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Continuously monitor scheduler health",
		Long: `Ping the scheduler at a fixed interval and print one line per reply.

Runs until interrupted. A missed reply is reported but does not stop
the watch.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(rootOpts, cmd, interval)
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 30*time.Second, "ping interval")

	return cmd
}

func runWatch(opts *RootOptions, cmd *cobra.Command, interval time.Duration) error {
	p, err := newProbe(opts)
	if err != nil {
		return err
	}
	defer p.close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "monitoring scheduler every %s, Ctrl+C to stop\n", interval)

	ctx := cmd.Context()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Fire immediately, then on every tick.
	for {
		watchPing(p, opts, cmd)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// watchPing sends one ping and prints a single status line.
func watchPing(p *probe, opts *RootOptions, cmd *cobra.Command) {
	now := time.Now().Format("15:04:05")

	body, err := p.request(p.pingTopic(), "health-check", func(payload []byte) bool {
		return hasKey(payload, "ping_received")
	})
	if err != nil {
		if errors.Is(err, ErrTimeout) {
			fmt.Fprintf(cmd.OutOrStdout(), "[%s] no reply, scheduler offline?\n", now)
			return
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "[%s] ping failed: %v\n", now, err)
		return
	}

	var status pingStatus
	if err := json.Unmarshal(body, &status); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "[%s] invalid reply: %v\n", now, err)
		return
	}

	fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s, active jobs: %d, persistent: %d\n",
		now, status.Status, status.ActiveJobs, status.TotalPersistentJobs)
}
