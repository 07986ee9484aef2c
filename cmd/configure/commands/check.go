package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/benvon/cook-with-ai/internal/config"
	"github.com/benvon/cook-with-ai/internal/database"
	"github.com/benvon/cook-with-ai/internal/queue"
	"github.com/benvon/cook-with-ai/internal/services/auth"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// checkResult is one line of the check report
type checkResult struct {
	name    string
	skipped bool
	err     error
}

func report(w io.Writer, results []checkResult) error {
	failed := 0
	for _, r := range results {
		switch {
		case r.skipped:
			fmt.Fprintf(w, "- %s: not configured\n", r.name)
		case r.err != nil:
			failed++
			fmt.Fprintf(w, "✗ %s: %v\n", r.name, r.err)
		default:
			fmt.Fprintf(w, "✓ %s\n", r.name)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	return nil
}

// NewCheckCmd creates the check command
func NewCheckCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check connectivity to every configured backend",
		Long:  "Ping the database, Supabase JWKS, Redis and RabbitMQ, and confirm an AI key is set.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			return report(cmd.OutOrStdout(), []checkResult{
				checkDatabase(ctx, cfg),
				checkJWKS(ctx, cfg),
				checkRedis(ctx, cfg),
				checkRabbitMQ(ctx, cfg),
				checkAIKey(cfg),
			})
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 15*time.Second, "Overall time limit")
	return cmd
}

func checkDatabase(ctx context.Context, cfg *config.Config) checkResult {
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return checkResult{name: "database", err: err}
	}
	defer func() { _ = db.Close() }()
	return checkResult{name: "database", err: db.PingContext(ctx)}
}

func checkJWKS(ctx context.Context, cfg *config.Config) checkResult {
	if cfg.SupabaseURL == "" {
		return checkResult{name: "supabase jwks", skipped: true}
	}
	set, err := auth.NewJWKSManager(nil).GetJWKS(ctx, cfg.SupabaseJWKSURL())
	if err == nil && set.Len() == 0 {
		err = fmt.Errorf("%s has no keys", cfg.SupabaseJWKSURL())
	}
	return checkResult{name: "supabase jwks", err: err}
}

func checkRedis(ctx context.Context, cfg *config.Config) checkResult {
	if cfg.RedisURL == "" {
		return checkResult{name: "redis", skipped: true}
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return checkResult{name: "redis", err: err}
	}
	client := redis.NewClient(opts)
	defer func() { _ = client.Close() }()
	return checkResult{name: "redis", err: client.Ping(ctx).Err()}
}

func checkRabbitMQ(ctx context.Context, cfg *config.Config) checkResult {
	if cfg.RabbitMQURL == "" {
		return checkResult{name: "rabbitmq", skipped: true}
	}
	q, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL, nil)
	if err != nil {
		return checkResult{name: "rabbitmq", err: err}
	}
	defer func() { _ = q.Close() }()
	return checkResult{name: "rabbitmq", err: q.HealthCheck(ctx)}
}

func checkAIKey(cfg *config.Config) checkResult {
	name := "ai key (" + cfg.AIProvider + ")"
	if cfg.AIAPIKey() == "" {
		return checkResult{name: name, err: fmt.Errorf("no API key configured for provider %q", cfg.AIProvider)}
	}
	return checkResult{name: name}
}
