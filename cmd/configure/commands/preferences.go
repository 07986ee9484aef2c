package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/benvon/cook-with-ai/internal/config"
	"github.com/benvon/cook-with-ai/internal/database"
	"github.com/benvon/cook-with-ai/internal/models"
	"github.com/benvon/cook-with-ai/internal/preferences"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type preferencesFlags struct {
	dir  string
	user string
}

// NewPreferencesCmd creates the preferences command. Without --user only the
// local copy is touched; with --user the account profile is read and saved too.
func NewPreferencesCmd() *cobra.Command {
	pf := &preferencesFlags{}
	cmd := &cobra.Command{
		Use:   "preferences",
		Short: "Show or change display and assistant preferences",
	}
	cmd.PersistentFlags().StringVar(&pf.dir, "dir", os.Getenv("PREFERENCES_DIR"), "Directory holding the local preferences file")
	cmd.PersistentFlags().StringVar(&pf.user, "user", "", "User id whose profile to read and save")

	cmd.AddCommand(newPreferencesShowCmd(pf))
	cmd.AddCommand(newPreferencesSetCmd(pf))
	cmd.AddCommand(newPreferencesResetCmd(pf))
	return cmd
}

// withManager builds a manager over the local store and, when --user is set,
// the account profile.
func (pf *preferencesFlags) withManager(fn func(m *preferences.Manager, userID uuid.UUID) error) error {
	store, err := preferences.NewFileStore(pf.dir)
	if err != nil {
		return err
	}
	if pf.user == "" {
		return fn(preferences.NewManager(store, nil, nil), uuid.Nil)
	}

	userID, err := uuid.Parse(pf.user)
	if err != nil {
		return fmt.Errorf("invalid --user: %w", err)
	}
	return withDB(func(_ *config.Config, db *database.DB) error {
		return fn(preferences.NewManager(store, database.NewUserRepository(db), nil), userID)
	})
}

func printPreferences(cmd *cobra.Command, prefs models.UserPreferences) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(prefs)
}

func newPreferencesShowCmd(pf *preferencesFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			return pf.withManager(func(m *preferences.Manager, userID uuid.UUID) error {
				prefs, err := m.Load(context.Background(), userID)
				if err != nil {
					return err
				}
				return printPreferences(cmd, prefs)
			})
		},
	}
}

// patchFromFlags turns the flags the user actually passed into a patch
func patchFromFlags(flags *pflag.FlagSet) (models.PreferencesPatch, error) {
	var patch models.PreferencesPatch
	str := func(name string, dst **string) error {
		if !flags.Changed(name) {
			return nil
		}
		v, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = &v
		return nil
	}
	boolean := func(name string, dst **bool) error {
		if !flags.Changed(name) {
			return nil
		}
		v, err := flags.GetBool(name)
		if err != nil {
			return err
		}
		*dst = &v
		return nil
	}

	for _, err := range []error{
		str("theme", &patch.Theme),
		str("font-size", &patch.FontSize),
		str("response-style", &patch.ResponseStyle),
		boolean("show-timestamps", &patch.ShowTimestamps),
		boolean("enable-markdown", &patch.EnableMarkdown),
	} {
		if err != nil {
			return patch, err
		}
	}
	return patch, nil
}

func newPreferencesSetCmd(pf *preferencesFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change preferences and save them",
		Example: "  cook-configure preferences set --theme dark --font-size large\n" +
			"  cook-configure preferences set --user 3f0c... --enable-markdown=false",
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := patchFromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			return pf.withManager(func(m *preferences.Manager, userID uuid.UUID) error {
				ctx := context.Background()
				current, err := m.Load(ctx, userID)
				if err != nil {
					return err
				}
				updated, err := m.Update(current, patch)
				if err != nil {
					return fmt.Errorf("invalid preferences: %w", err)
				}
				notice, err := m.Save(ctx, userID, updated)
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", notice.Title, notice.Description)
				if err != nil {
					return err
				}
				return printPreferences(cmd, updated)
			})
		},
	}
	cmd.Flags().String("theme", "", "light, dark or system")
	cmd.Flags().String("font-size", "", "small, medium or large")
	cmd.Flags().String("response-style", "", "concise or detailed")
	cmd.Flags().Bool("show-timestamps", true, "Show message timestamps")
	cmd.Flags().Bool("enable-markdown", true, "Render assistant replies as markdown")
	return cmd
}

func newPreferencesResetCmd(pf *preferencesFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			return pf.withManager(func(m *preferences.Manager, userID uuid.UUID) error {
				defaults := m.Reset()
				if userID != uuid.Nil {
					notice, err := m.Save(context.Background(), userID, defaults)
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", notice.Title, notice.Description)
					if err != nil {
						return err
					}
				}
				return printPreferences(cmd, defaults)
			})
		},
	}
}
