package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bher20/tagihanpln/internal/app"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List providers in inquiry order",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "#\tKEY\tKIND\tTIMEOUT\tURL")
		for i, s := range a.Registry.Specs() {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i+1, s.Key, s.Kind, s.Timeout, s.URL)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(providersCmd)
}
