package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/benvon/cook-with-ai/internal/config"
	"github.com/benvon/cook-with-ai/internal/database"
	"github.com/benvon/cook-with-ai/internal/models"
	"github.com/spf13/cobra"
)

// NewCorsCmd creates the cors configuration command with list and set subcommands.
func NewCorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cors",
		Short: "Manage CORS configuration",
		Long:  "List, update or reset the CORS allowed origins and options stored in the database.",
	}
	cmd.AddCommand(newCorsListCmd())
	cmd.AddCommand(newCorsSetCmd())
	cmd.AddCommand(newCorsResetCmd())
	return cmd
}

func newCorsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List current CORS configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(cfg *config.Config, db *database.DB) error {
				out := cmd.OutOrStdout()
				c, err := database.NewCorsConfigRepository(db).Get(context.Background())
				if err != nil {
					return fmt.Errorf("get cors config: %w", err)
				}
				if c == nil {
					fmt.Fprintf(out, "No CORS configuration in database; the server allows %s (FRONTEND_URL).\n", cfg.FrontendURL)
					return nil
				}
				fmt.Fprintln(out, "CORS configuration:")
				for _, origin := range database.AllowedOriginsSlice(c.AllowedOrigins) {
					fmt.Fprintf(out, "  Allowed origin: %s\n", origin)
				}
				fmt.Fprintf(out, "  Allow credentials: %v\n", c.AllowCredentials)
				fmt.Fprintf(out, "  Max-Age: %d\n", c.MaxAge)
				return nil
			})
		},
	}
}

func newCorsSetCmd() *cobra.Command {
	var origins string
	var allowCreds bool
	var maxAge int
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set CORS configuration",
		Long:  "Update CORS allowed origins (comma-separated). Stored in database.",
		RunE: func(cmd *cobra.Command, args []string) error {
			origins = strings.TrimSpace(origins)
			if origins == "" {
				return fmt.Errorf("--origins is required (comma-separated list)")
			}
			if len(database.AllowedOriginsSlice(origins)) == 0 {
				return fmt.Errorf("--origins has no usable origin")
			}
			return withDB(func(_ *config.Config, db *database.DB) error {
				c := &models.CorsConfig{
					AllowedOrigins:   origins,
					AllowCredentials: allowCreds,
					MaxAge:           maxAge,
				}
				if err := database.NewCorsConfigRepository(db).Set(context.Background(), c); err != nil {
					return fmt.Errorf("set cors config: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "CORS configuration updated. Running servers pick it up within a minute.")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&origins, "origins", "", "Comma-separated allowed origins (required)")
	cmd.Flags().BoolVar(&allowCreds, "allow-credentials", true, "Allow credentials")
	cmd.Flags().IntVar(&maxAge, "max-age", 86400, "Access-Control-Max-Age (seconds)")
	return cmd
}

func newCorsResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Remove the stored CORS configuration",
		Long:  "Delete the stored policy so servers fall back to FRONTEND_URL.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(cfg *config.Config, db *database.DB) error {
				existed, err := database.NewCorsConfigRepository(db).Reset(context.Background())
				if err != nil {
					return err
				}
				if !existed {
					fmt.Fprintln(cmd.OutOrStdout(), "No CORS configuration was stored.")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "CORS configuration removed; servers fall back to %s.\n", cfg.FrontendURL)
				return nil
			})
		},
	}
}
