package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// jobListing is the scheduler's reply to a list_jobs request.
// Time is kept raw because it may be an integer or an "HH:MM" string.
type jobListing struct {
	Timestamp string     `json:"timestamp"`
	TotalJobs int        `json:"total_jobs"`
	Jobs      []jobEntry `json:"jobs"`
}

type jobEntry struct {
	Kind    string          `json:"kind"`
	Topic   string          `json:"topic"`
	Payload string          `json:"payload"`
	Time    json.RawMessage `json:"time"`
}

// NewJobsCommand creates the jobs command.
func NewJobsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List scheduled jobs",
		Long: `Request the list of persistent jobs from the scheduler.

Exits non-zero if no reply arrives within the timeout.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJobs(rootOpts, cmd)
		},
	}

	return cmd
}

func runJobs(opts *RootOptions, cmd *cobra.Command) error {
	p, err := newProbe(opts)
	if err != nil {
		return err
	}
	defer p.close()

	body, err := p.request(p.listJobsTopic(), "list", func(payload []byte) bool {
		return hasKey(payload, "jobs")
	})
	if err != nil {
		return err
	}

	if opts.Format == "json" {
		fmt.Fprintln(cmd.OutOrStdout(), string(body))
		return nil
	}

	var listing jobListing
	if err := json.Unmarshal(body, &listing); err != nil {
		return fmt.Errorf("sbctl: decoding job listing: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "timestamp:  %s\n", listing.Timestamp)
	fmt.Fprintf(out, "total jobs: %d\n", listing.TotalJobs)

	if len(listing.Jobs) == 0 {
		fmt.Fprintln(out, "no jobs currently scheduled")
		return nil
	}

	for i, job := range listing.Jobs {
		fmt.Fprintf(out, "\njob %d:\n", i+1)
		fmt.Fprintf(out, "  kind:    %s\n", job.Kind)
		fmt.Fprintf(out, "  topic:   %s\n", job.Topic)
		fmt.Fprintf(out, "  payload: %s\n", job.Payload)
		fmt.Fprintf(out, "  time:    %s\n", string(job.Time))
	}
	return nil
}
