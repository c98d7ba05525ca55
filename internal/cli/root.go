package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags shared by all sbctl commands.
type RootOptions struct {
	Host     string
	Port     int
	Username string
	Password string
	Prefix   string
	Timeout  time.Duration
	Format   string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the sbctl CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "sbctl",
		Short: "Switchboard control and diagnostics",
		Long: `sbctl probes a running Switchboard instance over MQTT.

It publishes requests on the scheduler control topics and waits for
the response on the status topic. A missing response within the
timeout means the service is offline or not connected to the broker.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.Host, "host", "localhost", "MQTT broker host")
	cmd.PersistentFlags().IntVar(&opts.Port, "port", 1883, "MQTT broker port")
	cmd.PersistentFlags().StringVar(&opts.Username, "username", "", "MQTT username")
	cmd.PersistentFlags().StringVar(&opts.Password, "password", "", "MQTT password")
	cmd.PersistentFlags().StringVar(&opts.Prefix, "prefix", "myhome", "topic prefix")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 5*time.Second, "response timeout")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	// Add subcommands
	cmd.AddCommand(NewPingCommand(opts))
	cmd.AddCommand(NewJobsCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
