package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"ai-advisor/internal/advisor/service"
	"ai-advisor/internal/app"
)

func ChatCmd(g *globalFlags) *cobra.Command {
	var in service.ChatInput
	cmd := &cobra.Command{
		Use:   "chat <message>",
		Short: "Run one advisor turn and print the result as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, zl, err := g.build(cmd.Context(), app.Options{ConnectRetries: 3})
			if err != nil {
				return err
			}
			defer func() { _ = zl.Sync() }()
			defer a.Close()

			in.Message = strings.Join(args, " ")
			result, err := a.Advisor.HandleMessage(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVar(&in.ConversationID, "conversation", "", "Append to an existing conversation id")
	cmd.Flags().StringVar(&in.ConversationTitle, "title", "", "Title for a new conversation")
	return cmd
}

func FeedCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "feed",
		Short: "Print the ranked model and article feed for the demo profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, zl, err := g.build(cmd.Context(), app.Options{ConnectRetries: 3})
			if err != nil {
				return err
			}
			defer func() { _ = zl.Sync() }()
			defer a.Close()

			profile, err := a.Repo.GetProfile(cmd.Context())
			if err != nil {
				return err
			}
			feed, err := a.Feed.GetFeed(cmd.Context(), profile)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), feed)
		},
	}
}
