package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mqttlog/internal/config"
	"mqttlog/internal/constants"
	"mqttlog/internal/event"
	"mqttlog/internal/query"
	"mqttlog/internal/store"
	apperrors "mqttlog/pkg/errors"
)

var (
	dbPath       string
	topicPattern string
	since        string
	limit        int
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. The bare command is an alias of
// the events subcommand, flags included.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "query",
		Short: "Query the MQTT event database",
		Long:  "Read-side companion of the logger service: browse recorded events, topics and statistics",
		RunE:  runEvents,
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "mqtt_events.db", "Path to the event database")
	addEventsFlags(rootCmd)

	rootCmd.AddCommand(eventsCmd())
	rootCmd.AddCommand(topicsCmd())
	rootCmd.AddCommand(statsCmd())

	return rootCmd
}

func addEventsFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&topicPattern, "topic", "t", "", "Filter by topic pattern (supports # and +)")
	cmd.Flags().StringVarP(&since, "since", "s", "", "Show events since duration (e.g. 1h, 30m, 7d)")
	cmd.Flags().IntVarP(&limit, "limit", "n", constants.DefaultQueryLimit, "Max events to show")
}

func eventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show recent events, newest first",
		RunE:  runEvents,
	}

	addEventsFlags(cmd)
	return cmd
}

func runEvents(cmd *cobra.Command, args []string) error {
	if limit <= 0 {
		return apperrors.ErrInvalidArgument.WithDetail("message",
			fmt.Sprintf("limit must be a positive integer, got %d", limit))
	}

	return withEngine(func(ctx context.Context, engine *query.Engine) error {
		records, err := engine.Events(ctx, query.Params{
			TopicPattern: topicPattern,
			Since:        since,
			Limit:        limit,
		})
		if err != nil {
			return err
		}
		printEvents(records)
		return nil
	})
}

func topicsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "topics",
		Short: "List distinct topics with message counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(ctx context.Context, engine *query.Engine) error {
				topics, err := engine.Topics(ctx)
				if err != nil {
					return err
				}
				printTopics(topics)
				return nil
			})
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show event database statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(ctx context.Context, engine *query.Engine) error {
				stats, err := engine.Stats(ctx)
				if err != nil {
					return err
				}
				printStats(stats)
				return nil
			})
		},
	}
}

func withEngine(fn func(ctx context.Context, engine *query.Engine) error) error {
	if _, err := os.Stat(dbPath); err != nil {
		fmt.Fprintf(os.Stderr, "Database not found: %s\n", dbPath)
		fmt.Fprintln(os.Stderr, "Run the logger service first to create the database.")
		return err
	}

	ctx := context.Background()

	st, err := store.Open(ctx, config.DatabaseConfig{
		Path:              dbPath,
		RunMigrations:     false,
		BusyTimeoutMillis: 5000,
	})
	if err != nil {
		return err
	}
	defer st.Close()

	return fn(ctx, query.NewEngine(st))
}

func printEvents(records []event.Record) {
	for _, rec := range records {
		retFlag := " "
		if rec.Retained {
			retFlag = "R"
		}

		senderStr := ""
		if rec.Sender != "" {
			senderStr = fmt.Sprintf(" [%s]", rec.Sender)
		}

		fmt.Printf("%s Q%d%s %s%s\n",
			rec.Timestamp.Local().Format(time.RFC3339), rec.QoS, retFlag, rec.Topic, senderStr)

		if rec.Payload != "" {
			fmt.Printf("    %s\n", truncate(rec.Payload, constants.DisplayPayloadTruncateLen))
		}
		fmt.Println()
	}
}

func printTopics(topics []store.TopicCount) {
	fmt.Printf("%-60s %8s\n", "Topic", "Count")
	fmt.Println(strings.Repeat("-", 70))
	for _, tc := range topics {
		fmt.Printf("%-60s %8d\n", tc.Topic, tc.Count)
	}
}

func printStats(stats *store.Stats) {
	fmt.Println("MQTT Events Database Statistics")
	fmt.Println(strings.Repeat("=", 40))
	fmt.Printf("Total events:    %d\n", stats.TotalEvents)
	fmt.Printf("Unique topics:   %d\n", stats.DistinctTopics)
	fmt.Printf("Retained msgs:   %d\n", stats.RetainedEvents)
	fmt.Printf("First event:     %s\n", formatEventTime(stats.FirstEvent))
	fmt.Printf("Last event:      %s\n", formatEventTime(stats.LastEvent))
}

func formatEventTime(t *time.Time) string {
	if t == nil {
		return "N/A"
	}
	return t.Local().Format(time.RFC3339)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
