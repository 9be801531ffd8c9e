package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/worrybox/internal/ctxutil"
	"github.com/example/worrybox/internal/ports/primary"
	"github.com/example/worrybox/internal/wire"
)

// NotifyCmd returns the notify command, which answers a delivered notification.
func NotifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Respond to an unlock notification",
		Long: `Apply one of the actions offered by an unlock notification.

  done    unlock the worry if needed and mark it resolved
  snooze  lock it again for the preferred snooze duration
  open    unlock anything that is due and show the worry`,
	}

	for _, action := range []string{primary.ActionDone, primary.ActionSnooze, primary.ActionOpen} {
		cmd.AddCommand(notifyActionCmd(action))
	}
	return cmd
}

func notifyActionCmd(action string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " [worry-id]",
		Short: fmt.Sprintf("Apply the %q notification action", action),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := ctxutil.WithSource(NewContext(), ctxutil.SourceNotification)
			id := args[0]

			if err := wire.NotificationActionService().HandleAction(ctx, action, id); err != nil {
				return err
			}
			if action == primary.ActionOpen {
				_, err := wire.WorryAdapterWithOutput(cmd.OutOrStdout()).Show(ctx, id)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s %s\n", action, id)
			return nil
		},
	}
}
