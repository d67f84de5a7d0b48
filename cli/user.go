package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newUserCmd(getApp func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Show or change your profile",
	}
	cmd.AddCommand(
		needsApp(&cobra.Command{
			Use:   "show",
			Short: "Show the current user",
			RunE: func(cmd *cobra.Command, args []string) error {
				u := getApp().users.GetCurrentUser(cmd.Context())
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Name:        %s\n", u.Name)
				fmt.Fprintf(out, "ID:          %s\n", u.ID)
				fmt.Fprintf(out, "Created:     %s\n", u.CreatedAt.Local().Format(time.RFC1123))
				fmt.Fprintf(out, "Last active: %s\n", u.LastActive.Local().Format(time.RFC1123))
				return nil
			},
		}),
		needsApp(&cobra.Command{
			Use:   "rename <name>",
			Short: "Change your display name",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				name := strings.TrimSpace(strings.Join(args, " "))
				if name == "" {
					return errors.New("name must not be empty")
				}
				u := getApp().users.UpdateUserName(cmd.Context(), name)
				fmt.Fprintf(cmd.OutOrStdout(), "Hello, %s!\n", u.Name)
				return nil
			},
		}),
	)
	return cmd
}
