package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iZac85/SecretSanta/internal/group"
)

// notifyCmd resends a message from a stored assignment
var notifyCmd = &cobra.Command{
	Use:   "notify <giver>",
	Short: "Resend the text message for one giver from a stored year",
	Long: `Looks up the giver's receiver in the stored assignment and resends
their text message. Useful when someone lost the original.`,
	Args: cobra.ExactArgs(1),
	RunE: runNotify,
}

func runNotify(cmd *cobra.Command, args []string) error {
	giver := args[0]

	g, err := group.Load(cfg.Data.GroupFile)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	assignment, err := st.Load(year)
	if err != nil {
		return err
	}

	notifier, err := newNotifier()
	if err != nil {
		return err
	}

	if err := notifier.NotifyOne(context.Background(), assignment, g.Contacts, giver); err != nil {
		return err
	}
	fmt.Printf("Sent message to %s\n", giver)
	return nil
}
