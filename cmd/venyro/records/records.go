// Package recordscmder provides the records command for reading gateway
// invocation records from a running records API.
package recordscmder

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/venyro/pkg/client"
	"github.com/papercomputeco/venyro/pkg/cliui"
	"github.com/papercomputeco/venyro/pkg/config"
	"github.com/papercomputeco/venyro/pkg/storage"
)

const recordsLongDesc string = `Read gateway invocation records from the records API.

  venyro records list [--action A] [--limit N]   Most recent records
  venyro records get <id>                        One record, including its result
  venyro records stats                           Counts by action and status

The record ID of any gateway response is in its X-Venyro-Record-Id header.`

const recordsShortDesc string = "Read gateway invocation records"

func NewRecordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: recordsShortDesc,
		Long:  recordsLongDesc,
	}

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newStatsCmd())

	return cmd
}

// newClient resolves the records API target through the usual
// flag > env > config > default chain.
func newClient(cmd *cobra.Command) (*client.RecordsClient, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")
	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagAPITarget})
	return client.NewRecordsClient(v.GetString("client.api_target")), nil
}

func newListCmd() *cobra.Command {
	var (
		action string
		limit  int
		target string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent invocation records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient(cmd)
			if err != nil {
				return err
			}

			list, err := c.List(cmd.Context(), action, limit)
			if err != nil {
				return err
			}

			printList(cmd.OutOrStdout(), list.Records)
			return nil
		},
	}

	cmd.Flags().StringVar(&action, "action", "", "Only show records of this action")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of records (default: server default)")
	config.AddStringFlag(cmd, config.Flags, config.FlagAPITarget, &target)

	return cmd
}

func newGetCmd() *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one invocation record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(cmd)
			if err != nil {
				return err
			}

			record, err := c.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			data, err := json.Marshal(record)
			if err != nil {
				return fmt.Errorf("encoding record: %w", err)
			}

			rendered, err := cliui.RenderJSON(data)
			if err != nil {
				rendered = string(data) + "\n"
			}
			fmt.Fprint(cmd.OutOrStdout(), rendered)
			return nil
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAPITarget, &target)
	return cmd
}

func newStatsCmd() *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show record counts by action and status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient(cmd)
			if err != nil {
				return err
			}

			stats, err := c.Stats(cmd.Context())
			if err != nil {
				return err
			}

			printStats(cmd.OutOrStdout(), stats)
			return nil
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAPITarget, &target)
	return cmd
}

func printList(w io.Writer, records []*storage.Record) {
	if len(records) == 0 {
		fmt.Fprintf(w, "  %s\n", cliui.DimStyle.Render("No records."))
		return
	}

	for _, r := range records {
		mark := cliui.SuccessMark
		if r.Status != storage.StatusSucceeded {
			mark = cliui.FailMark
		}

		fmt.Fprintf(w, "  %s %s  %-18s %s  %s\n",
			mark,
			cliui.DimStyle.Render(r.StartedAt.Local().Format("2006-01-02 15:04:05")),
			r.Action,
			cliui.ValueStyle.Render(r.ID),
			cliui.StepStyle.Render(fmt.Sprintf("(%d attempts, %dms)", r.Attempts, r.DurationMs)),
		)
		if r.Error != "" {
			fmt.Fprintf(w, "      %s\n", cliui.ErrorStyle.Render(r.Error))
		}
	}
}

func printStats(w io.Writer, stats *storage.Stats) {
	fmt.Fprintf(w, "\n  %s %d\n", cliui.KeyStyle.Render("Total:"), stats.Total)
	fmt.Fprintf(w, "  %s %s\n\n", cliui.KeyStyle.Render("Mean attempts:"), strconv.FormatFloat(stats.MeanAttempts, 'f', 2, 64))

	printCounts(w, "By action", stats.ByAction)
	printCounts(w, "By status", stats.ByStatus)
}

func printCounts(w io.Writer, title string, counts map[string]int) {
	fmt.Fprintf(w, "  %s\n", cliui.KeyStyle.Render(title))

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		fmt.Fprintf(w, "    %-20s %d\n", k, counts[k])
	}
	fmt.Fprintln(w)
}
