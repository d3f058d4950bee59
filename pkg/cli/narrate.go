package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"balance_insight/pkg/core/agent"
	"balance_insight/pkg/core/utils"
)

var flagNoData bool

var summarizeCmd = &cobra.Command{
	Use:   "summarize FILE",
	Short: "Ask the model for commentary on the statement",
	Args:  cobra.ExactArgs(1),
	RunE:  runSummarize,
}

var askCmd = &cobra.Command{
	Use:   "ask [FILE] QUESTION",
	Short: "Ask one question, with the statement as context",
	Args: func(cmd *cobra.Command, args []string) error {
		if flagNoData {
			return cobra.ExactArgs(1)(cmd, args)
		}
		return cobra.ExactArgs(2)(cmd, args)
	},
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&flagNoData, "no-data", false, "Ask without a statement")
	rootCmd.AddCommand(summarizeCmd, askCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := requestContext()
	defer cancel()

	table, err := loadTable(ctx, cfg, args[0])
	if err != nil {
		return err
	}
	out := newManager(cfg).Bridge(agent.PurposeSummary).SummarizeOutcome(ctx, table)
	printOutcome(cmd, out.Text, out.OK())
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := requestContext()
	defer cancel()

	var tableContext *string
	question := args[len(args)-1]
	if !flagNoData {
		table, err := loadTable(ctx, cfg, args[0])
		if err != nil {
			return err
		}
		md := table.Markdown()
		tableContext = &md
	}
	out := newManager(cfg).Bridge(agent.PurposeChat).AnswerOutcome(ctx, question, tableContext)
	printOutcome(cmd, out.Text, out.OK())
	return nil
}

func printOutcome(cmd *cobra.Command, text string, ok bool) {
	w := cmd.OutOrStdout()
	if !ok {
		fmt.Fprintln(w, warnStyle.Render(text))
		return
	}
	fmt.Fprintln(w, utils.PlainText(text))
}
