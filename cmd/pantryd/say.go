package main

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/spf13/cobra"

	"github.com/greenstead/pantryd/internal/compose"
	"github.com/greenstead/pantryd/internal/templates"
)

var (
	sayLocale string
	sayAction string
	sayDone   []string
	sayFailed []string
	saySeed   int64
)

// sayCmd renders a response offline, without Bring or NATS. Useful for
// proofreading locale files.
var sayCmd = &cobra.Command{
	Use:   "say",
	Short: "Render a response offline from the embedded templates",
	Long: `Render the sentence pantryd would speak for a given classification,
without touching the shopping list or the broker.

Examples:

  # "I put eggs on the shopping list, but milk is already on the shopping list"
  pantryd say --locale en --action add --done eggs --failed milk

  # Narrate a list
  pantryd say --locale de --action read --done Milch,Eier,Brot

  # Empty request fallback
  pantryd say --locale en --action remove`,
	RunE: runSay,
}

var localesCmd = &cobra.Command{
	Use:   "locales",
	Short: "List the embedded template locales",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(strings.Join(templates.Locales(), "\n"))
	},
}

func init() {
	sayCmd.Flags().StringVar(&sayLocale, "locale", "de", "template locale")
	sayCmd.Flags().StringVar(&sayAction, "action", "add", "action: add, remove, check or read")
	sayCmd.Flags().StringSliceVar(&sayDone, "done", nil, "names for the primary clause")
	sayCmd.Flags().StringSliceVar(&sayFailed, "failed", nil, "names for the secondary clause")
	sayCmd.Flags().Int64Var(&saySeed, "seed", 0, "random seed for phrase selection (0 = clock)")
}

func runSay(cmd *cobra.Command, args []string) error {
	set, err := templates.Load(sayLocale)
	if err != nil {
		return err
	}

	var rng *rand.Rand
	if saySeed != 0 {
		rng = rand.New(rand.NewSource(saySeed))
	}
	composer := compose.New(set.List, rng)

	var text string
	switch sayAction {
	case "add":
		text = composer.Combine(sayDone, sayFailed, set.Add)
	case "remove":
		text = composer.Combine(sayDone, sayFailed, set.Remove)
	case "check":
		text = composer.Combine(sayDone, sayFailed, set.Check)
	case "read":
		text = composer.RenderClause(sayDone, set.Read)
	default:
		return fmt.Errorf("unknown action %q (want add, remove, check or read)", sayAction)
	}

	fmt.Println(text)
	return nil
}
