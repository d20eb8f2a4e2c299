package cli

import (
	"context"
	"errors"
	"fmt"

	"chatdoc-be/pkg/events"

	"github.com/spf13/cobra"
)

var eventsSubject string

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Tail domain events from NATS",
	Long:  `Prints every new domain event published on the subject until interrupted.`,
	Args:  cobra.NoArgs,
	RunE:  runEvents,
}

func init() {
	eventsCmd.Flags().StringVar(&eventsSubject, "subject", "events.>", "subject pattern to follow")
	rootCmd.AddCommand(eventsCmd)
}

func runEvents(cmd *cobra.Command, args []string) error {
	if eventSource == nil {
		return errors.New("event source not configured (set NATS_URL)")
	}

	out := cmd.OutOrStdout()
	err := eventSource.Subscribe(cmd.Context(), eventsSubject, "", func(_ context.Context, e events.Event) error {
		muted.Fprintf(out, "%s ", e.Timestamp().Format("15:04:05"))
		heading.Fprintf(out, "%s ", e.EventType())
		fmt.Fprintln(out, e.Payload())
		return nil
	})
	if err != nil {
		return fmt.Errorf("subscribe failed: %w", err)
	}

	<-cmd.Context().Done()
	return nil
}
