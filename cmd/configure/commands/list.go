package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/benvon/cook-with-ai/internal/config"
	"github.com/benvon/cook-with-ai/internal/database"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's conversations",
		Long:  "List a user's conversations, most recently active first, with their message counts.",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(user)
			if err != nil {
				return fmt.Errorf("--user must be a user id: %w", err)
			}

			return withDB(func(_ *config.Config, db *database.DB) error {
				ctx := context.Background()
				convs, err := database.NewConversationRepository(db).ListByUserID(ctx, userID)
				if err != nil {
					return fmt.Errorf("failed to list conversations: %w", err)
				}
				if len(convs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No conversations")
					return nil
				}

				messages := database.NewMessageRepository(db)
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tTITLE\tMESSAGES\tUPDATED")
				for _, c := range convs {
					msgs, err := messages.ListByConversationID(ctx, userID, c.ID)
					if err != nil {
						return fmt.Errorf("failed to list messages for %s: %w", c.ID, err)
					}
					title := "(untitled)"
					if c.Title != nil && *c.Title != "" {
						title = *c.Title
					}
					fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", c.ID, title, len(msgs), c.UpdatedAt.Local().Format(time.DateTime))
				}
				return tw.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "User id (required)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
