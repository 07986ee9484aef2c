package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benvon/cook-with-ai/internal/config"
	"github.com/benvon/cook-with-ai/internal/queue"
	"github.com/spf13/cobra"
)

// NewDLQCmd creates the dead letter queue command
func NewDLQCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dlq",
		Short: "Manage dead-lettered meal-plan jobs",
	}
	cmd.AddCommand(newDLQPurgeCmd())
	return cmd
}

func newDLQPurgeCmd() *cobra.Command {
	var olderThan time.Duration
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Remove dead-lettered jobs older than a cutoff",
		Long:  "Run one garbage-collection pass over the dead letter queue. Defaults to DLQ_RETENTION.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.RabbitMQURL == "" {
				return errors.New("RABBITMQ_URL is not set")
			}
			if !cmd.Flags().Changed("older-than") {
				olderThan = cfg.DLQRetention
			}
			if olderThan < 0 {
				return fmt.Errorf("--older-than must not be negative")
			}

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			q, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL, nil)
			if err != nil {
				return err
			}
			defer func() { _ = q.Close() }()

			n, err := queue.NewGarbageCollector(q, time.Hour, olderThan, nil).Sweep(ctx)
			fmt.Fprintf(cmd.OutOrStdout(), "Purged %d job(s) older than %v.\n", n, olderThan)
			return err
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 24*time.Hour, "Age cutoff (defaults to DLQ_RETENTION)")
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "Overall time limit")
	return cmd
}
