package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/reconcile/internal/core"
)

func newSourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the registered source kinds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds := core.Kinds()
			rows := make([][]string, len(kinds))
			for i, k := range kinds {
				rows[i] = []string{k.Key, k.Label, k.Format, strings.Join(k.Extensions, " ")}
			}
			return renderTable(cmd.OutOrStdout(), []string{"Key", "Name", "Format", "Extensions"}, rows)
		},
	}
}
