package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "List the available workflow plans",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := newLogger(cfg)

		catalog, err := buildCatalog(cfg, log)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TYPE\tTITLE\tPHASES\tAGENTS\tSTEPS")
		for _, plan := range catalog.List() {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n",
				plan.Type, plan.Title,
				len(plan.Phases), plan.AgentCount(), len(plan.GuidedSteps))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(plansCmd)
}
