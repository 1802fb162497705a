package cli

import (
	"fmt"

	"github.com/calebreed/promptmill/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newRulesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Show the effective enhancement rule set",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Print(formatter.FormatRules(app.Rules))
			return nil
		},
	}
}
