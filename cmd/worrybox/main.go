package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/worrybox/internal/cli"
	"github.com/example/worrybox/internal/version"
	"github.com/example/worrybox/internal/wire"
)

func main() {
	var home string

	rootCmd := &cobra.Command{
		Use:     "worrybox",
		Short:   "Worry Box - lock worries away until a time you choose",
		Version: version.String(),
		Long: `Worry Box lets you write a worry down and lock it away until a
chosen time. When it unlocks you get a notification and can resolve it,
snooze it or dismiss it.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if home != "" {
				wire.SetHome(home)
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&home, "home", "", "Settings directory (default ~/.worrybox)")

	// Worry lifecycle
	rootCmd.AddCommand(cli.WorryCmds()...)

	// Notifications and settings
	rootCmd.AddCommand(cli.NotifyCmd())
	rootCmd.AddCommand(cli.PrefsCmd())
	rootCmd.AddCommand(cli.ConfigCmd())
	rootCmd.AddCommand(cli.ServeCmd())

	err := rootCmd.Execute()
	if cerr := wire.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
