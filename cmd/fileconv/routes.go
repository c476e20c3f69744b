package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List supported conversions and whether they are available",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		service, err := newService(cfg)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "FROM\tTO\tMIME\tAVAILABLE")
		for _, r := range service.Routes() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", r.Route.Source, r.Route.Target, r.Route.MimeType, r.Available)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(routesCmd)
}
