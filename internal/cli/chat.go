package cli

import (
	"bufio"
	"strings"

	"github.com/spf13/cobra"

	"github.com/llehouerou/novatone/internal/errmsg"
)

var chatSession string

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Talk music with the assistant",
	Long: `Send one message, or start an interactive conversation when no message
is given. Conversations are saved; continue one with --session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := loadApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		store, err := a.openStore()
		if err != nil {
			return err
		}
		if !a.asst.Enabled() {
			cmd.PrintErrln("assistant not configured; set assistant.api_key or NOVATONE_AI_API_KEY")
		}

		session := chatSession
		send := func(msg string) error {
			reply, id, err := a.asst.Converse(ctx, store, session, msg)
			if err != nil && reply == "" {
				return errmsg.Wrap(errmsg.OpChatSend, err)
			}
			session = id
			cmd.Println(reply)
			return nil
		}

		if len(args) > 0 {
			if err := send(strings.Join(args, " ")); err != nil {
				return err
			}
			cmd.PrintErrf("session %s\n", session)
			return nil
		}

		cmd.PrintErrln("Type a message, an empty line or Ctrl-D to quit.")
		scanner := bufio.NewScanner(cmd.InOrStdin())
		for {
			cmd.Print("> ")
			if !scanner.Scan() {
				break
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				break
			}
			if err := send(line); err != nil {
				cmd.PrintErrln(err)
			}
		}
		if session != "" {
			cmd.PrintErrf("session %s\n", session)
		}
		return scanner.Err()
	},
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List saved chat sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		store, err := a.openStore()
		if err != nil {
			return err
		}
		sessions, err := store.Sessions(cmd.Context())
		if err != nil {
			return errmsg.Wrap(errmsg.OpChatSession, err)
		}
		for _, s := range sessions {
			cmd.Printf("%s  %s  %s\n", s.ID, s.CreatedAt.Format("2006-01-02 15:04"), s.Title)
		}
		return nil
	},
}

func init() {
	chatCmd.Flags().StringVar(&chatSession, "session", "", "continue a saved session")
	chatCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(chatCmd)
}
