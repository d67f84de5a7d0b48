package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kisaansahayak/sahayak/internal/domain"
)

func newTipsCmd(getApp func() *app) *cobra.Command {
	return needsApp(&cobra.Command{
		Use:   "tips",
		Short: "Show farming tips from the gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := getApp().gateway.Tips(cmd.Context())
			if err != nil {
				return describeErr(err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render("Farming tips"))
			for _, tip := range resp.Tips {
				fmt.Fprintf(out, "  %s %s\n", bulletStyle.Render("•"), tip)
			}
			return nil
		},
	})
}

func newHealthCmd(getApp func() *app) *cobra.Command {
	return needsApp(&cobra.Command{
		Use:   "health",
		Short: "Check that the gateway is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := getApp()
			if !a.gateway.Healthy(cmd.Context()) {
				return fmt.Errorf("gateway at %s is not healthy", a.cfg.APIURL)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Gateway at %s is healthy.\n", a.cfg.APIURL)
			return nil
		},
	})
}

// describeErr replaces a gateway failure with the message meant for the user.
func describeErr(err error) error {
	var gw *domain.GatewayError
	if errors.As(err, &gw) && gw.Message != "" {
		return errors.New(gw.Message)
	}
	return err
}
