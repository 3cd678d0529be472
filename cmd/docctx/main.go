// Command docctx stores local documents and answers keyword queries with
// prompt-ready context.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/docctx/internal/adapters/driving/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version string

func main() {
	// A missing .env is normal.
	_ = godotenv.Load()

	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
