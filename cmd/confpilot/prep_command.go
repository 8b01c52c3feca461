package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"confpilot/internal/prep"
)

func newPrepCommand(ctx *commandContext) *cobra.Command {
	var conferenceID string
	var forceRefresh bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "prep <session-id>",
		Short: "Generate a prep brief for a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.apiBaseURL()
			if err != nil {
				return err
			}
			client := newAPIClient(base)

			request := prep.Request{
				SessionID:    args[0],
				ConferenceID: conferenceID,
				ForceRefresh: forceRefresh,
			}
			var result prep.Result
			if err := client.postJSON(cmd.Context(), "/api/research/session-prep", request, &result); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(result)
			}

			printBrief(out, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&conferenceID, "conference", "", "Conference id (defaults to the configured conference)")
	cmd.Flags().BoolVar(&forceRefresh, "refresh", false, "Recompute even when a cached brief exists")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full response as JSON")
	return cmd
}

func printBrief(out io.Writer, result prep.Result) {
	session := result.Session
	fmt.Fprintf(out, "%s — %s\n", session.SessionID, session.SessionTitle)
	if session.Speaker != "" {
		speaker := session.Speaker
		if session.Company != "" {
			speaker += " (" + session.Company + ")"
		}
		fmt.Fprintf(out, "Speaker: %s\n", speaker)
	}
	if session.Time != "" || session.Room != "" {
		fmt.Fprintf(out, "When/where: %s %s\n", session.Time, session.Room)
	}
	fmt.Fprintf(out, "Cache: %s (generated %s)\n\n", result.Research.CacheInfo, result.GeneratedAt)

	brief := result.Brief
	if brief.SessionSummary.Headline != "" {
		fmt.Fprintln(out, brief.SessionSummary.Headline)
	}
	if brief.SessionSummary.WhyItMatters != "" {
		fmt.Fprintf(out, "Why it matters: %s\n", brief.SessionSummary.WhyItMatters)
	}
	if len(brief.KeyTakeaways) > 0 {
		fmt.Fprintln(out, "\nKey takeaways:")
		for _, takeaway := range brief.KeyTakeaways {
			fmt.Fprintf(out, "  - %s\n", takeaway)
		}
	}
	if brief.SpeakerBrief.ConversationStarter != "" {
		fmt.Fprintf(out, "\nConversation starter: %s\n", brief.SpeakerBrief.ConversationStarter)
	}
	if len(brief.SmartQuestions) > 0 {
		fmt.Fprintln(out, "\nSmart questions:")
		for _, question := range brief.SmartQuestions {
			fmt.Fprintf(out, "  - %s\n", question)
		}
	}
	if len(result.Research.RelatedLinks) > 0 {
		fmt.Fprintln(out, "\nRelated links:")
		for _, link := range result.Research.RelatedLinks {
			fmt.Fprintf(out, "  %s\n", link)
		}
	}
}
