package main

import (
	"fmt"
	"os"

	"github.com/shehrozeikram/ERP-sub009/internal/cli/workflowcmd"
)

func main() {
	if err := workflowcmd.New().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "workflowctl:", err)
		os.Exit(1)
	}
}
