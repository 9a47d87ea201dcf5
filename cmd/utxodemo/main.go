// Command utxodemo seeds a pool with two genesis outputs, spends one of them
// with a signed transaction and runs the result through a TxHandler.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "utxodemo",
		Usage: "validate and apply a sample transaction against a UTXO pool",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to a key = value config file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "override the configured log level (debug, info, warn, error)",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "force human-readable log output",
			},
			&cli.BoolFlag{
				Name:  "chain",
				Usage: "also submit a second transaction spending the first one's output",
			},
			&cli.BoolFlag{
				Name:  "dump",
				Usage: "dump the final pool",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "utxodemo: %v\n", err)
		os.Exit(1)
	}
}
