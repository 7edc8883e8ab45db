package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wellally/healthaudit/client"
)

// parseDetails decodes a --details / --changes JSON object flag.
func parseDetails(raw string) (map[string]any, error) {
	if raw == "" {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("invalid JSON object: %w", err)
	}
	return m, nil
}

func newAppendCmd() *cobra.Command {
	var (
		actor   string
		action  string
		details string
	)

	cmd := &cobra.Command{
		Use:   "append <resource-type> <resource-id>",
		Short: "Seal a generic entry into the chain",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDetails(details)
			if err != nil {
				return fmt.Errorf("--details: %w", err)
			}

			entry, err := apiClient.Entries.Append(context.Background(), &client.AppendRequest{
				Actor:        actor,
				Action:       action,
				ResourceType: args[0],
				ResourceID:   args[1],
				Details:      d,
			})
			if err != nil {
				return err
			}
			output(entry, strconv.FormatUint(entry.Sequence, 10))
			return nil
		},
	}

	cmd.Flags().StringVar(&actor, "actor", "", "Who performed the action (required)")
	cmd.Flags().StringVar(&action, "action", "", "What was done (required)")
	cmd.Flags().StringVar(&details, "details", "", "Extra context as a JSON object")
	cmd.MarkFlagRequired("actor")  //nolint:errcheck // flag exists
	cmd.MarkFlagRequired("action") //nolint:errcheck // flag exists
	return cmd
}

func newLogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Record access, modification, or consent entries",
	}
	cmd.AddCommand(logAccessCmd())
	cmd.AddCommand(logModificationCmd())
	cmd.AddCommand(logConsentCmd())
	return cmd
}

func logAccessCmd() *cobra.Command {
	var (
		actor   string
		action  string
		details string
	)

	cmd := &cobra.Command{
		Use:   "access <resource-type> <resource-id>",
		Short: "Record a read-style action (view, download, export)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDetails(details)
			if err != nil {
				return fmt.Errorf("--details: %w", err)
			}

			entry, err := apiClient.Entries.LogAccess(context.Background(), &client.AppendRequest{
				Actor:        actor,
				Action:       action,
				ResourceType: args[0],
				ResourceID:   args[1],
				Details:      d,
			})
			if err != nil {
				return err
			}
			output(entry, strconv.FormatUint(entry.Sequence, 10))
			return nil
		},
	}

	cmd.Flags().StringVar(&actor, "actor", "", "Who accessed the resource (required)")
	cmd.Flags().StringVar(&action, "action", "view", "Access type: view|download|export")
	cmd.Flags().StringVar(&details, "details", "", "Extra context as a JSON object")
	cmd.MarkFlagRequired("actor") //nolint:errcheck // flag exists
	return cmd
}

func logModificationCmd() *cobra.Command {
	var (
		actor   string
		action  string
		changes string
	)

	cmd := &cobra.Command{
		Use:   "modification <resource-type> <resource-id>",
		Short: "Record a write-style action (create, update, delete)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := parseDetails(changes)
			if err != nil {
				return fmt.Errorf("--changes: %w", err)
			}

			entry, err := apiClient.Entries.LogModification(context.Background(), &client.ModificationRequest{
				Actor:        actor,
				Action:       action,
				ResourceType: args[0],
				ResourceID:   args[1],
				Changes:      ch,
			})
			if err != nil {
				return err
			}
			output(entry, strconv.FormatUint(entry.Sequence, 10))
			return nil
		},
	}

	cmd.Flags().StringVar(&actor, "actor", "", "Who modified the resource (required)")
	cmd.Flags().StringVar(&action, "action", "update", "Modification type: create|update|delete")
	cmd.Flags().StringVar(&changes, "changes", "", "Changed fields as a JSON object")
	cmd.MarkFlagRequired("actor") //nolint:errcheck // flag exists
	return cmd
}

func logConsentCmd() *cobra.Command {
	var (
		actor  string
		action string
		reason string
	)

	cmd := &cobra.Command{
		Use:   "consent <consent-id>",
		Short: "Record a consent grant or revocation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := apiClient.Entries.LogConsent(context.Background(), &client.ConsentRequest{
				Actor:     actor,
				Action:    action,
				ConsentID: args[0],
				Reason:    reason,
			})
			if err != nil {
				return err
			}
			output(entry, strconv.FormatUint(entry.Sequence, 10))
			return nil
		},
	}

	cmd.Flags().StringVar(&actor, "actor", "", "Who changed the consent (required)")
	cmd.Flags().StringVar(&action, "action", "", "Consent action: grant|revoke (required)")
	cmd.Flags().StringVar(&reason, "reason", "", "Optional human-readable reason")
	cmd.MarkFlagRequired("actor")  //nolint:errcheck // flag exists
	cmd.MarkFlagRequired("action") //nolint:errcheck // flag exists
	return cmd
}
