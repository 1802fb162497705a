package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/calebreed/promptmill/internal/cli/formatter"
	"github.com/calebreed/promptmill/internal/enhancer"
	"github.com/spf13/cobra"
)

func newHistoryCmd(app *App) *cobra.Command {
	var engineKey string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show persisted enhancement history",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			engines := []string{engineKey}
			if engineKey == "" {
				var err error
				engines, err = app.History.ListEngines(ctx)
				if err != nil {
					return err
				}
			}

			byEngine := make(map[string][]enhancer.Record, len(engines))
			for _, key := range engines {
				records, err := app.History.ListByEngine(ctx, key)
				if err != nil {
					return err
				}
				byEngine[key] = records
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(byEngine)
			}

			if len(engines) == 0 {
				fmt.Println("No enhancement history recorded.")
				return nil
			}
			for _, key := range engines {
				fmt.Print(formatter.FormatHistory(key, byEngine[key]))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&engineKey, "engine", "", "Scope to a single engine key, e.g. openai/gpt-4o")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit raw JSON instead of a table")

	return cmd
}
