package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSeedCmd(dbPath *string) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo directory data",
		Long:  "Populates the store with a demo admin, users, a group, and an OU tree. Does nothing when the admin account already exists.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				var err error
				password, err = promptPassword()
				if err != nil {
					return err
				}
			}

			a, closer, err := openApp(*dbPath)
			if err != nil {
				return err
			}
			defer closer()

			if err := a.Seed(cmd.Context(), password); err != nil {
				return err
			}
			fmt.Println("Demo data loaded.")
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "password for the seeded accounts (prompted when omitted)")
	return cmd
}
