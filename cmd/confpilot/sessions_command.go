package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"confpilot/internal/research"
)

func newSessionsCommand(ctx *commandContext) *cobra.Command {
	var conferenceID string

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List conference sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.apiBaseURL()
			if err != nil {
				return err
			}
			client := newAPIClient(base)

			path := "/api/research/sessions"
			if conferenceID != "" {
				path += "?conferenceId=" + url.QueryEscape(conferenceID)
			}
			var payload struct {
				Sessions []research.SessionOutline `json:"sessions"`
			}
			if err := client.getJSON(cmd.Context(), path, &payload); err != nil {
				return err
			}

			if len(payload.Sessions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sessions found.")
				return nil
			}

			rows := make([][]string, 0, len(payload.Sessions))
			for _, session := range payload.Sessions {
				rows = append(rows, []string{
					session.SessionID,
					session.SessionTitle,
					session.Speaker,
					session.Company,
					session.Track,
					session.Time,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]tableColumn{
					{Header: "ID", AlignRight: true},
					{Header: "Title"},
					{Header: "Speaker"},
					{Header: "Company"},
					{Header: "Track"},
					{Header: "Time"},
				},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&conferenceID, "conference", "", "Conference id (defaults to the configured conference)")
	return cmd
}
