package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/worrybox/internal/core/worry"
	"github.com/example/worrybox/internal/ports/primary"
	"github.com/example/worrybox/internal/wire"
)

// WorryCmds returns the top-level worry lifecycle commands.
func WorryCmds() []*cobra.Command {
	return []*cobra.Command{
		addCmd(),
		releaseCmd(),
		listCmd(),
		showCmd(),
		editCmd(),
		resolveCmd(),
		dismissCmd(),
		snoozeCmd(),
		unlockCmd(),
		deleteCmd(),
		checkCmd(),
		historyCmd(),
		pruneCmd(),
		exportCmd(),
		statsCmd(),
	}
}

func addCmd() *cobra.Command {
	var at, in, action, category, tags string

	cmd := &cobra.Command{
		Use:   "add [worry]",
		Short: "Lock a worry away until later",
		Long: `Write a worry down and lock it in the box until its unlock time.
A notification fires when it unlocks.

Without --at or --in the worry unlocks after the default delay
(see "worrybox prefs show").

Examples:
  worrybox add "the rent is going up" --in 2h
  worrybox add "call the dentist" --at "2026-03-01 09:00" --action "book a checkup"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			unlockAt, err := parseUnlockAt(at, in, time.Now())
			if err != nil {
				return err
			}
			_, err = wire.WorryAdapterWithOutput(cmd.OutOrStdout()).Create(NewContext(), primary.CreateWorryRequest{
				Content:  strings.Join(args, " "),
				Action:   action,
				UnlockAt: unlockAt,
				Category: category,
				Tags:     parseTags(tags),
			})
			return err
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "Unlock time (RFC3339 or \"2006-01-02 15:04\")")
	cmd.Flags().StringVar(&in, "in", "", "Unlock after a duration (e.g. 90m, 24h)")
	cmd.Flags().StringVarP(&action, "action", "a", "", "A small next step to take when it unlocks")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Category")
	cmd.Flags().StringVarP(&tags, "tags", "t", "", "Comma-separated tags")
	return cmd
}

func releaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "release [worry]",
		Short: "Write a worry down and let it go immediately",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := wire.WorryAdapterWithOutput(cmd.OutOrStdout()).Release(NewContext(), strings.Join(args, " "))
			return err
		},
	}
}

func listCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List worries",
		Long:  "List worries ordered by unlock time, optionally filtered by status.",
		RunE: func(cmd *cobra.Command, args []string) error {
			view := worry.View(status)
			if _, ok := worry.FilterFor(view); !ok {
				return fmt.Errorf("unknown status %q (want all, locked, unlocked, resolved, dismissed or released)", status)
			}
			_, err := wire.WorryAdapterWithOutput(cmd.OutOrStdout()).List(NewContext(), view)
			return err
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", string(worry.ViewAll), "Filter: all, locked, unlocked, resolved, dismissed, released")
	return cmd
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [worry-id]",
		Short: "Show worry details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := wire.WorryAdapterWithOutput(cmd.OutOrStdout()).Show(NewContext(), args[0])
			return err
		},
	}
}

func editCmd() *cobra.Command {
	var content, action, at, in, category, tags, bestOutcome string
	var talked bool

	cmd := &cobra.Command{
		Use:   "edit [worry-id]",
		Short: "Edit a worry",
		Long: `Change the text, unlock time or reflection of a worry.
Only the flags you pass are changed.

Text and unlock time can only change while a worry is locked or unlocked.
Reflection fields (--best-outcome, --talked) can be set at any time.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := primary.EditWorryRequest{ID: args[0]}
			flags := cmd.Flags()

			if flags.Changed("content") {
				req.Content = &content
			}
			if flags.Changed("action") {
				req.Action = &action
			}
			if flags.Changed("at") || flags.Changed("in") {
				unlockAt, err := parseUnlockAt(at, in, time.Now())
				if err != nil {
					return err
				}
				req.UnlockAt = &unlockAt
			}
			if flags.Changed("category") {
				req.Category = &category
			}
			if flags.Changed("tags") {
				parsed := parseTags(tags)
				req.Tags = &parsed
			}
			if flags.Changed("best-outcome") {
				req.BestOutcome = &bestOutcome
			}
			if flags.Changed("talked") {
				req.TalkedToSomeone = &talked
			}

			_, err := wire.WorryAdapterWithOutput(cmd.OutOrStdout()).Edit(NewContext(), req)
			return err
		},
	}

	cmd.Flags().StringVar(&content, "content", "", "New worry text")
	cmd.Flags().StringVarP(&action, "action", "a", "", "New next step")
	cmd.Flags().StringVar(&at, "at", "", "New unlock time")
	cmd.Flags().StringVar(&in, "in", "", "New unlock delay from now")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Category")
	cmd.Flags().StringVarP(&tags, "tags", "t", "", "Comma-separated tags (replaces existing)")
	cmd.Flags().StringVar(&bestOutcome, "best-outcome", "", "The best thing that could happen")
	cmd.Flags().BoolVar(&talked, "talked", false, "Whether you talked to someone about it")
	return cmd
}

func resolveCmd() *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   "resolve [worry-id]",
		Short: "Mark an unlocked worry as resolved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := wire.WorryAdapterWithOutput(cmd.OutOrStdout()).Resolve(NewContext(), args[0], note)
			return err
		},
	}

	cmd.Flags().StringVarP(&note, "note", "n", "", "How it turned out")
	return cmd
}

func dismissCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dismiss [worry-id]",
		Short: "Dismiss a worry without resolving it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := wire.WorryAdapterWithOutput(cmd.OutOrStdout()).Dismiss(NewContext(), args[0])
			return err
		},
	}
}

func snoozeCmd() *cobra.Command {
	var d time.Duration

	cmd := &cobra.Command{
		Use:   "snooze [worry-id]",
		Short: "Lock a worry again for a while",
		Long:  "Push the unlock time out. Without --for the preferred snooze duration is used.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()
			if !cmd.Flags().Changed("for") {
				prefs, err := wire.PreferencesService().Get(ctx)
				if err != nil {
					return fmt.Errorf("failed to load preferences: %w", err)
				}
				d = prefs.SnoozeDuration.Std()
			}
			_, err := wire.WorryAdapterWithOutput(cmd.OutOrStdout()).Snooze(ctx, args[0], d)
			return err
		},
	}

	cmd.Flags().DurationVar(&d, "for", 0, "Snooze duration (e.g. 30m, 2h)")
	return cmd
}

func unlockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unlock [worry-id]",
		Short: "Unlock a worry ahead of time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := wire.WorryAdapterWithOutput(cmd.OutOrStdout()).Unlock(NewContext(), args[0])
			return err
		},
	}
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [worry-id]",
		Short: "Delete a worry and its notification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := wire.WorryAdapterWithOutput(cmd.OutOrStdout()).Delete(NewContext(), args[0])
			return err
		},
	}
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Unlock every worry whose time has come",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := wire.WorryAdapterWithOutput(cmd.OutOrStdout()).Check(NewContext())
			return err
		},
	}
}

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history [worry-id]",
		Short: "Show the activity history of a worry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := wire.WorryAdapterWithOutput(cmd.OutOrStdout()).History(NewContext(), args[0])
			return err
		},
	}
}

func pruneCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old activity history",
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				return fmt.Errorf("--older-than-days must be positive")
			}
			_, err := wire.WorryAdapterWithOutput(cmd.OutOrStdout()).PruneHistory(NewContext(), time.Duration(days)*24*time.Hour)
			return err
		},
	}

	cmd.Flags().IntVar(&days, "older-than-days", 90, "Delete entries older than this many days")
	return cmd
}

func exportCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every worry and the stats summary",
		Long: `Write an archive of every worry to stdout.

Examples:
  worrybox export > worries.json
  worrybox export --format yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.WorryAdapterWithOutput(cmd.OutOrStdout()).Export(NewContext(), format, time.Now())
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json or yaml")
	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show usage statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := wire.WorryAdapterWithOutput(cmd.OutOrStdout()).Stats(NewContext())
			return err
		},
	}
}
