package main

import (
	"fmt"
	"os"

	"github.com/itam-io/itam-server/cmd/cli/audit"
	"github.com/itam-io/itam-server/cmd/cli/imports"
	"github.com/itam-io/itam-server/cmd/cli/root"
)

func main() {
	rootCmd := root.GetRoot()
	imports.InitImports(rootCmd)
	audit.InitAudit(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
