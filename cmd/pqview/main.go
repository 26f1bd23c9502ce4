// Command pqview queries parquet files with SQL.
//
// Each --repo names a parquet file or glob that becomes one table. With
// --query the statement runs once; without it pqview starts an interactive
// shell.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
