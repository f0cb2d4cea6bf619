package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var envFiles = []string{".env", ".env.local"}

func newRootCmd() *cobra.Command {
	cmd := newImportCmd()
	cmd.Use = "cr-import [path]"
	cmd.Short = "Import the Czech territorial structure (regions, districts, ORP, municipalities)"
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newLookupCmd())
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		code := exitCode(err)
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(code)
	}
}
