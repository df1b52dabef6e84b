package cmd

import (
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check provider and store configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		defer appInstance.Close()

		ok := color.New(color.FgGreen).SprintFunc()
		warn := color.New(color.FgYellow).SprintFunc()

		status := func(enabled bool) string {
			if enabled {
				return ok("configured")
			}
			return warn("not configured")
		}

		completerEnabled := false
		if p, hasEnabled := appInstance.Completer.(interface{ Enabled() bool }); hasEnabled {
			completerEnabled = p.Enabled()
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Component", "Detail", "Status"})
		table.Append([]string{"llm provider", appInstance.Completer.Name() + " / " + appInstance.Completer.ModelName(), status(completerEnabled)})
		table.Append([]string{"vector store", "postgres (pgvector)", status(appInstance.VectorStore != nil)})
		table.Append([]string{"registry ttl", appInstance.Config.RegistryTTL().String(), ok("ok")})
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
