package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/wellally/healthaudit/client"
)

// entryRows renders entries as table rows for --format table.
func entryRows(entries []client.Entry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			strconv.FormatUint(e.Sequence, 10),
			e.Timestamp.Format(time.RFC3339),
			e.Actor,
			e.Action,
			e.ResourceType + "/" + e.ResourceID,
		})
	}
	return rows
}

var entryHeaders = []string{"SEQ", "TIMESTAMP", "ACTOR", "ACTION", "RESOURCE"}

// outputEntries handles the table format specially; everything else goes
// through the generic output path.
func outputEntries(entries []client.Entry, wrapper any) {
	if flagFmt == "table" {
		formatTable(entryHeaders, entryRows(entries))
		return
	}
	quiet := ""
	if n := len(entries); n > 0 {
		quiet = strconv.FormatUint(entries[n-1].Sequence, 10)
	}
	output(wrapper, quiet)
}

func parseTimeFlag(name, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("--%s: invalid time %q, use RFC3339", name, raw)
	}
	return &t, nil
}

func newQueryCmd() *cobra.Command {
	var (
		actor        string
		action       string
		resourceType string
		resourceID   string
		since        string
		until        string
		limit        int
		offset       int
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query the ledger with filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sinceT, err := parseTimeFlag("since", since)
			if err != nil {
				return err
			}
			untilT, err := parseTimeFlag("until", until)
			if err != nil {
				return err
			}

			entries, hasMore, err := apiClient.Entries.Query(context.Background(), &client.QueryOptions{
				Actor:        actor,
				Action:       action,
				ResourceType: resourceType,
				ResourceID:   resourceID,
				Since:        sinceT,
				Until:        untilT,
				Limit:        limit,
				Offset:       offset,
			})
			if err != nil {
				return err
			}

			outputEntries(entries, map[string]any{"data": entries, "has_more": hasMore})
			return nil
		},
	}

	cmd.Flags().StringVar(&actor, "actor", "", "Filter by actor")
	cmd.Flags().StringVar(&action, "action", "", "Filter by action")
	cmd.Flags().StringVar(&resourceType, "resource-type", "", "Filter by resource type")
	cmd.Flags().StringVar(&resourceID, "resource-id", "", "Filter by resource ID (requires --resource-type)")
	cmd.Flags().StringVar(&since, "since", "", "Only entries at or after this RFC3339 time")
	cmd.Flags().StringVar(&until, "until", "", "Only entries at or before this RFC3339 time")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum entries to return")
	cmd.Flags().IntVar(&offset, "offset", 0, "Entries to skip")
	return cmd
}

func newEntryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "entry <sequence>",
		Short: "Fetch a single entry by chain sequence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seq, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid sequence %q", args[0])
			}

			entry, err := apiClient.Entries.Get(context.Background(), seq)
			if err != nil {
				return err
			}
			output(entry, entry.Digest)
			return nil
		},
	}
}

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <resource-type> <resource-id>",
		Short: "Show every entry touching one resource, oldest first",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := apiClient.Entries.ResourceHistory(context.Background(), args[0], args[1])
			if err != nil {
				return err
			}
			outputEntries(entries, map[string]any{
				"resource_type": args[0],
				"resource_id":   args[1],
				"data":          entries,
			})
			return nil
		},
	}
}

func newActivityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "activity <actor>",
		Short: "Show every entry recorded for one actor, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := apiClient.Entries.ActorActivity(context.Background(), args[0])
			if err != nil {
				return err
			}
			outputEntries(entries, map[string]any{
				"actor": args[0],
				"data":  entries,
			})
			return nil
		},
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the chain head summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := apiClient.Stats(context.Background())
			if err != nil {
				return err
			}
			output(stats, stats.LastDigest)
			return nil
		},
	}
}
