// Package main is the entry point for the datagrid CLI.
package main

import (
	"os"

	"github.com/runger/datagrid/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
