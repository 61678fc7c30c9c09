package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"mindbloom-backend/infrastructure/persistence/dynamodb"

	"github.com/spf13/cobra"
)

func newDedupeCmd(a *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "dedupe",
		Short: "Remove duplicate journals, memories, events and users",
		Long: `Scan the table for documents sharing a natural key and delete all but the
oldest of each group.

  mindbloomctl dedupe              # delete duplicates
  mindbloomctl dedupe --dry-run    # only report what would be deleted`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.dynamo(cmd.Context())
			if err != nil {
				return err
			}
			var report *dynamodb.DedupeReport
			err = a.locked(cmd.Context(), "dedupe", func(ctx context.Context) error {
				report, err = dynamodb.Dedupe(ctx, client, a.cfg.DynamoDBTable, dryRun, a.logger)
				return err
			})
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("encode report: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report duplicates without deleting them")
	return cmd
}
