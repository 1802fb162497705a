package cli

import (
	"log/slog"

	"github.com/calebreed/promptmill/internal/enhancer"
	"github.com/calebreed/promptmill/internal/repository"
	"github.com/calebreed/promptmill/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to everything CLI commands operate on.
type App struct {
	Engines *service.Engines
	History repository.HistoryRepo
	Rules   *enhancer.RuleSet
	Logger  *slog.Logger
}

// NewRootCmd creates the top-level "promptmill" command and registers
// all subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "promptmill",
		Short: "Prompt-enhancing middleware between callers and LLM providers",
	}

	root.AddCommand(
		newServeCmd(app),
		newHistoryCmd(app),
		newRulesCmd(app),
	)

	return root
}
