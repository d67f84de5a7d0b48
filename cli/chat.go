package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kisaansahayak/sahayak/internal/chat"
	"github.com/kisaansahayak/sahayak/internal/domain"
)

var exampleQueries = []string{
	"What's the best time to plant tomatoes?",
	"How do I control pests in my corn crop?",
	"What fertilizer should I use for wheat?",
	"Tell me about soil preparation",
}

func newChatCmd(getApp func() *app) *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Chat with the farming assistant",
		Long: `Start an interactive conversation, or send a single message when one is given.

Commands inside the conversation:
  /1 ... /4   send an example question
  /clear      start over with an empty history
  /quit       leave`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := getApp()
			ctx := cmd.Context()
			c := chat.NewController(ctx, a.gateway, a.history, a.users,
				chat.WithSessionID(sessionID), chat.WithLogger(a.logger))

			if len(args) > 0 {
				return sendOnce(ctx, cmd.OutOrStdout(), c, strings.Join(args, " "))
			}
			return repl(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), c, a.users.GetCurrentUser(ctx))
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "Resume a session id instead of starting a new one")
	return needsApp(cmd)
}

func sendOnce(ctx context.Context, out io.Writer, c *chat.Controller, text string) error {
	if err := c.Submit(ctx, text); err != nil {
		if errors.Is(err, chat.ErrEmptyInput) {
			return err
		}
		return errors.New(c.Err())
	}
	msgs := c.Messages()
	fmt.Fprint(out, renderMessage(msgs[len(msgs)-1]))
	return nil
}

func repl(ctx context.Context, in io.Reader, out io.Writer, c *chat.Controller, user domain.User) error {
	fmt.Fprintf(out, "%s\n", titleStyle.Render("Namaste "+user.Name+"! Ask me anything about farming."))
	if len(c.Messages()) == 0 {
		fmt.Fprintln(out, dimStyle.Render("Try one of these:"))
		for i, q := range exampleQueries {
			fmt.Fprintf(out, "  /%d %s\n", i+1, q)
		}
	} else {
		fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("%d earlier messages loaded.", len(c.Messages()))))
	}
	fmt.Fprintln(out, dimStyle.Render("Type /quit to exit."))

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		input := strings.TrimSpace(scanner.Text())
		switch {
		case input == "":
			continue
		case input == "/quit" || input == "/exit":
			fmt.Fprintln(out, "Happy farming!")
			return nil
		case input == "/clear":
			if err := c.Reset(ctx); err != nil {
				return err
			}
			fmt.Fprintln(out, dimStyle.Render("History cleared."))
			continue
		case strings.HasPrefix(input, "/"):
			if q, ok := exampleQuery(input); ok {
				input = q
				fmt.Fprintln(out, dimStyle.Render(q))
			} else {
				fmt.Fprintln(out, errorStyle.Render("Unknown command: "+input))
				continue
			}
		}

		c.SetInput(input)
		fmt.Fprintln(out, dimStyle.Render("Thinking..."))
		if err := c.SubmitInput(ctx); err != nil {
			fmt.Fprintln(out, errorStyle.Render(c.Err()))
			continue
		}
		msgs := c.Messages()
		fmt.Fprintln(out, renderMessage(msgs[len(msgs)-1]))
	}
}

func exampleQuery(input string) (string, bool) {
	for i, q := range exampleQueries {
		if input == fmt.Sprintf("/%d", i+1) {
			return q, true
		}
	}
	return "", false
}
