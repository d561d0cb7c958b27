// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scipaper/pkg/scipaper"
)

var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "List the registered backends and their capabilities",
	RunE: func(cmd *cobra.Command, args []string) error {
		descs := scipaper.Backends()
		if len(descs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no backends registered; set Modules/Modules in the config")
			return nil
		}
		for _, desc := range descs {
			fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s\n", desc.Name, desc.Capabilities)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backendsCmd)
}
