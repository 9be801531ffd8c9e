package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/worrybox/internal/core/preferences"
	"github.com/example/worrybox/internal/wire"
)

// PrefsCmd returns the prefs command
func PrefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change preferences",
	}

	cmd.AddCommand(prefsShowCmd())
	cmd.AddCommand(prefsSetCmd())
	cmd.AddCommand(prefsResetCmd())
	return cmd
}

func prefsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := wire.PreferencesService().Get(NewContext())
			if err != nil {
				return err
			}
			printPreferences(cmd.OutOrStdout(), p)
			return nil
		},
	}
}

func prefsSetCmd() *cobra.Command {
	var defaultDelay, snooze time.Duration
	var notifications, onboarded bool
	var theme string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change preferences",
		Long: `Change one or more preferences. Only the flags you pass are changed.

Examples:
  worrybox prefs set --default-delay 12h
  worrybox prefs set --snooze 30m --theme dark
  worrybox prefs set --notifications=false`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var u preferences.Update
			flags := cmd.Flags()
			if flags.Changed("default-delay") {
				u.DefaultUnlockDelay = &defaultDelay
			}
			if flags.Changed("snooze") {
				u.SnoozeDuration = &snooze
			}
			if flags.Changed("notifications") {
				u.NotificationsEnabled = &notifications
			}
			if flags.Changed("onboarding-complete") {
				u.OnboardingComplete = &onboarded
			}
			if flags.Changed("theme") {
				t := preferences.Theme(theme)
				u.Theme = &t
			}
			if u == (preferences.Update{}) {
				return fmt.Errorf("nothing to change (see --help for the available flags)")
			}

			p, err := wire.PreferencesService().Update(NewContext(), u)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Preferences updated")
			printPreferences(cmd.OutOrStdout(), p)
			return nil
		},
	}

	cmd.Flags().DurationVar(&defaultDelay, "default-delay", 0, "Delay before a new worry unlocks")
	cmd.Flags().DurationVar(&snooze, "snooze", 0, "How long a snooze lasts")
	cmd.Flags().BoolVar(&notifications, "notifications", true, "Show unlock notifications")
	cmd.Flags().BoolVar(&onboarded, "onboarding-complete", true, "Mark onboarding as done")
	cmd.Flags().StringVar(&theme, "theme", "", "Theme: system, light or dark")
	return cmd
}

func prefsResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore default preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := wire.PreferencesService().Reset(NewContext())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Preferences reset")
			printPreferences(cmd.OutOrStdout(), p)
			return nil
		},
	}
}

func printPreferences(out io.Writer, p preferences.Preferences) {
	if out == nil {
		out = os.Stdout
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "default delay\t%s\n", p.DefaultUnlockDelay.Std())
	fmt.Fprintf(w, "snooze\t%s\n", p.SnoozeDuration.Std())
	fmt.Fprintf(w, "notifications\t%t\n", p.NotificationsEnabled)
	fmt.Fprintf(w, "onboarding complete\t%t\n", p.OnboardingComplete)
	fmt.Fprintf(w, "theme\t%s\n", p.Theme)
	w.Flush()
}
