package cli

import (
	"fmt"
	"time"

	"mindbloom-backend/infrastructure/persistence/dynamodb"

	"github.com/spf13/cobra"
)

func newTableCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Manage the DynamoDB table",
	}

	var wait time.Duration
	create := &cobra.Command{
		Use:   "create",
		Short: "Create the table and its GSI1 index",
		Long: `Create the single table used by every repository, with the GSI1 index,
and wait until it is active. An existing table is left alone.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.dynamo(cmd.Context())
			if err != nil {
				return err
			}
			if err := dynamodb.CreateTable(cmd.Context(), client, a.cfg.DynamoDBTable, wait, a.logger); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Table %s is ready\n", a.cfg.DynamoDBTable)
			return nil
		},
	}
	create.Flags().DurationVar(&wait, "wait", 2*time.Minute, "how long to wait for the table to become active")

	ping := &cobra.Command{
		Use:   "ping",
		Short: "Check that the table exists and is active",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.dynamo(cmd.Context())
			if err != nil {
				return err
			}
			if err := dynamodb.Ping(cmd.Context(), client, a.cfg.DynamoDBTable); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Table %s is active\n", a.cfg.DynamoDBTable)
			return nil
		},
	}

	cmd.AddCommand(create, ping)
	return cmd
}
