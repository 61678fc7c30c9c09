// Package cli defines the mindbloomctl command tree.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"mindbloom-backend/infrastructure/config"
	"mindbloom-backend/infrastructure/di"
	"mindbloom-backend/infrastructure/persistence/dynamodb"

	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version is set via -ldflags at build time.
var version = "dev"

// app lazily loads what the subcommands share.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	client *awsdynamodb.Client
}

func (a *app) config() (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := di.ProvideLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	a.cfg, a.logger = cfg, logger
	return cfg, nil
}

func (a *app) dynamo(ctx context.Context) (*awsdynamodb.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	awsCfg, err := di.ProvideAWSConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	a.client = di.ProvideDynamoDBClient(awsCfg, cfg)
	return a.client, nil
}

// jobLockTTL bounds how long a crashed job can block the next one.
const jobLockTTL = 15 * time.Minute

// locked runs fn while holding the table-wide lock for job.
func (a *app) locked(ctx context.Context, job string, fn func(context.Context) error) error {
	client, err := a.dynamo(ctx)
	if err != nil {
		return err
	}
	host, _ := os.Hostname()
	owner := fmt.Sprintf("mindbloomctl@%s/%d", host, os.Getpid())
	return dynamodb.NewLocker(client, a.cfg.DynamoDBTable, a.logger).WithLock(ctx, job, owner, jobLockTTL, fn)
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "mindbloomctl",
		Short: "Maintenance tooling for the MindBloom backend",
		Long: `mindbloomctl manages the MindBloom DynamoDB table.

Configuration is read from the environment and an optional .env file, the
same way the API server reads it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newTableCmd(a),
		newSeedCmd(a),
		newDedupeCmd(a),
		newTokenCmd(a),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mindbloomctl %s\n", version)
		},
	}
}
