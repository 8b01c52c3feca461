package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.apiBaseURL()
			if err != nil {
				return err
			}
			client := newAPIClient(base)

			var payload struct {
				Running       bool   `json:"running"`
				Version       string `json:"version"`
				UptimeSeconds int64  `json:"uptimeSeconds"`
				ConferenceID  string `json:"conferenceId"`
			}
			if err := client.getJSON(cmd.Context(), "/api/status", &payload); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Daemon: running (version %s)\n", payload.Version)
			fmt.Fprintf(out, "Uptime: %ds\n", payload.UptimeSeconds)
			if payload.ConferenceID != "" {
				fmt.Fprintf(out, "Conference: %s\n", payload.ConferenceID)
			}
			return nil
		},
	}
}
