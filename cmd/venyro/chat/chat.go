// Package chatcmder provides the chat command, a multi-turn conversation over
// the gateway's replay actions with the history kept in the .venyro/ directory.
package chatcmder

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/venyro/pkg/client"
	"github.com/papercomputeco/venyro/pkg/cliui"
	"github.com/papercomputeco/venyro/pkg/config"
	"github.com/papercomputeco/venyro/pkg/dotdir"
	"github.com/papercomputeco/venyro/pkg/llm"
	"github.com/papercomputeco/venyro/pkg/strategy"
)

type chatCommander struct {
	gatewayTarget string
	path          string
	configDir     string
	action        string
	context       string
	reset         bool

	ddm *dotdir.Manager
	out io.Writer
	err io.Writer
}

const chatLongDesc string = `Chat about a strategy or refine a blueprint.

Each message is appended to the session stored in .venyro/session.json and the
whole conversation is replayed through the gateway, which itself keeps no
state. The model's reply is appended to the session on success.

Use --new to start over. --context is remembered for the session.

Examples:
  venyro chat --new --context "$(cat strategy.json)" "How should we price this?"
  venyro chat "What about a freemium tier?"
  venyro chat --new --action refineBlueprint --context "$(cat blueprint.json)" "Cut the budget in half"`

const chatShortDesc string = "Chat with the gateway using a persisted conversation"

var chatFlags = []string{
	config.FlagGatewayTarget,
	config.FlagPath,
}

// chatReply is the chatWithStrategy output shape.
type chatReply struct {
	Reply            string   `json:"reply"`
	SuggestedActions []string `json:"suggestedActions"`
}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{ddm: dotdir.NewManager()}

	cmd := &cobra.Command{
		Use:   "chat <message>",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.Flags, chatFlags)
			cmder.gatewayTarget = v.GetString("client.gateway_target")
			cmder.path = v.GetString("gateway.path")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.out = cmd.OutOrStdout()
			cmder.err = cmd.ErrOrStderr()
			return cmder.run(cmd, args[0])
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagGatewayTarget, &cmder.gatewayTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagPath, &cmder.path)
	cmd.Flags().StringVar(&cmder.action, "action", strategy.ChatWithStrategy.String(), "Replay action: chatWithStrategy or refineBlueprint")
	cmd.Flags().StringVarP(&cmder.context, "context", "c", "", "Strategy or blueprint the conversation is about")
	cmd.Flags().BoolVar(&cmder.reset, "new", false, "Discard the stored session before sending")

	return cmd
}

func (c *chatCommander) run(cmd *cobra.Command, message string) error {
	if strings.TrimSpace(message) == "" {
		return errors.New("message must not be empty")
	}

	action, err := strategy.ParseAction(c.action)
	if err != nil {
		return err
	}
	if !action.ReplaysHistory() {
		return fmt.Errorf("%s does not take a conversation; use venyro invoke", action)
	}

	if c.reset {
		if err := c.ddm.ClearSession(c.configDir); err != nil {
			return err
		}
	}

	session, err := c.ddm.LoadSessionState(c.configDir)
	if err != nil {
		return err
	}
	if session == nil || session.Action != action.String() {
		session = &dotdir.SessionState{Action: action.String()}
	}
	if c.context != "" {
		session.Context = c.context
	}

	session.History = append(session.History, llm.NewTextTurn(llm.RoleUser, message))

	gw := client.New(c.gatewayTarget, c.path)

	var result json.RawMessage
	err = cliui.Step(c.err, "Thinking", func() error {
		var invokeErr error
		result, invokeErr = gw.Invoke(cmd.Context(), client.Request{
			Action:  session.Action,
			History: session.History,
			Context: session.Context,
		})
		return invokeErr
	})
	if err != nil {
		var gwErr *client.Error
		if errors.As(err, &gwErr) {
			return fmt.Errorf("%s (HTTP %d)", gwErr.Message, gwErr.StatusCode)
		}
		return err
	}

	session.History = append(session.History, llm.NewTextTurn(llm.RoleModel, string(result)))
	if err := c.ddm.SaveSession(session, c.configDir); err != nil {
		return err
	}

	return c.print(action, result)
}

func (c *chatCommander) print(action strategy.Action, result json.RawMessage) error {
	if action != strategy.ChatWithStrategy {
		rendered, err := cliui.RenderJSON(result)
		if err != nil {
			rendered = string(result) + "\n"
		}
		_, err = fmt.Fprint(c.out, rendered)
		return err
	}

	var reply chatReply
	if err := json.Unmarshal(result, &reply); err != nil {
		return fmt.Errorf("decoding reply: %w", err)
	}

	fmt.Fprintf(c.out, "\n%s\n", reply.Reply)
	if len(reply.SuggestedActions) > 0 {
		fmt.Fprintf(c.out, "\n%s\n", cliui.KeyStyle.Render("Suggested actions:"))
		for _, a := range reply.SuggestedActions {
			fmt.Fprintf(c.out, "  %s %s\n", cliui.DimStyle.Render("•"), a)
		}
	}
	fmt.Fprintln(c.out)
	return nil
}
