// Package invokecmder provides the invoke command for calling a single gateway
// action from the terminal.
package invokecmder

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/venyro/pkg/client"
	"github.com/papercomputeco/venyro/pkg/cliui"
	"github.com/papercomputeco/venyro/pkg/config"
	"github.com/papercomputeco/venyro/pkg/llm"
	"github.com/papercomputeco/venyro/pkg/strategy"
)

type invokeCommander struct {
	gatewayTarget string
	path          string
	context       string
	historyFile   string
	raw           bool

	out io.Writer
	err io.Writer
}

const invokeLongDesc string = `Invoke a gateway action and print the model's JSON result.

The payload may be inline JSON, @path/to/file.json, or plain text. Plain text
is sent as a JSON string, which is what inferStrategy expects.

Replay actions (refineBlueprint, chatWithStrategy) take their conversation from
--history, a JSON file of {"role","parts":[{"text"}]} turns.

Examples:
  venyro invoke inferStrategy "A subscription box for rare teas"
  venyro invoke generateStrategy '{"productName":"Leafwise","concept":"rare teas"}'
  venyro invoke generateBlueprint @strategy.json --context "Bootstrapped, two founders"
  venyro invoke chatWithStrategy --history chat.json --context "Leafwise strategy"`

const invokeShortDesc string = "Invoke a gateway action"

var invokeFlags = []string{
	config.FlagGatewayTarget,
	config.FlagPath,
}

func NewInvokeCmd() *cobra.Command {
	cmder := &invokeCommander{}

	cmd := &cobra.Command{
		Use:   "invoke <action> [payload]",
		Short: invokeShortDesc,
		Long:  invokeLongDesc,
		Args:  cobra.RangeArgs(1, 2),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.Flags, invokeFlags)
			cmder.gatewayTarget = v.GetString("client.gateway_target")
			cmder.path = v.GetString("gateway.path")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.out = cmd.OutOrStdout()
			cmder.err = cmd.ErrOrStderr()

			var payload string
			if len(args) > 1 {
				payload = args[1]
			}
			return cmder.run(cmd, args[0], payload)
		},
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return actionNames(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveDefault
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagGatewayTarget, &cmder.gatewayTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagPath, &cmder.path)
	cmd.Flags().StringVarP(&cmder.context, "context", "c", "", "Previous context or system instruction sent with the action")
	cmd.Flags().StringVar(&cmder.historyFile, "history", "", "JSON file holding the conversation history for replay actions")
	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Print the JSON result without terminal styling")

	return cmd
}

func (c *invokeCommander) run(cmd *cobra.Command, action, rawPayload string) error {
	if _, err := strategy.ParseAction(action); err != nil {
		return fmt.Errorf("%w\n\nValid actions: %s", err, strings.Join(actionNames(), ", "))
	}

	payload, err := ParsePayload(rawPayload)
	if err != nil {
		return err
	}

	var history []llm.Turn
	if c.historyFile != "" {
		history, err = readHistory(c.historyFile)
		if err != nil {
			return err
		}
	}

	gw := client.New(c.gatewayTarget, c.path)

	var result json.RawMessage
	stepErr := cliui.Step(c.err, fmt.Sprintf("Invoking %s", action), func() error {
		var invokeErr error
		result, invokeErr = gw.Invoke(cmd.Context(), client.Request{
			Action:  action,
			Payload: payload,
			History: history,
			Context: c.context,
		})
		return invokeErr
	})
	if stepErr != nil {
		var gwErr *client.Error
		if errors.As(stepErr, &gwErr) {
			return fmt.Errorf("%s (HTTP %d)", gwErr.Message, gwErr.StatusCode)
		}
		return stepErr
	}

	return printResult(c.out, result, c.raw)
}

// ParsePayload turns a command line payload into JSON: "@file" reads the
// file, valid JSON is passed through, and anything else becomes a JSON string.
func ParsePayload(raw string) (json.RawMessage, error) {
	if raw == "" {
		return nil, nil
	}

	if path, ok := strings.CutPrefix(raw, "@"); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading payload file: %w", err)
		}
		if !json.Valid(data) {
			return nil, fmt.Errorf("payload file %s is not valid JSON", path)
		}
		return json.RawMessage(data), nil
	}

	trimmed := strings.TrimSpace(raw)
	if json.Valid([]byte(trimmed)) && (strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, `"`)) {
		return json.RawMessage(trimmed), nil
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}
	return json.RawMessage(encoded), nil
}

func readHistory(path string) ([]llm.Turn, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading history file: %w", err)
	}

	var history []llm.Turn
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("parsing history file: %w", err)
	}
	return history, nil
}

func printResult(w io.Writer, result json.RawMessage, raw bool) error {
	if raw {
		_, err := fmt.Fprintln(w, string(result))
		return err
	}

	rendered, err := cliui.RenderJSON(result)
	if err != nil {
		_, err = fmt.Fprintln(w, string(result))
		return err
	}
	_, err = fmt.Fprint(w, rendered)
	return err
}

func actionNames() []string {
	actions := strategy.Actions()
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = a.String()
	}
	return names
}
