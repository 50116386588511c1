package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Carveion/JUNKFU-V2/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the food categories you can log by name",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.Load()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, g := range cat.Groups() {
			fmt.Fprintf(out, "%s\n", g.Cuisine)
			for _, c := range g.Items {
				fmt.Fprintf(out, "  %s %s\t%d\n", c.Emoji, c.Name, c.Calories)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}
