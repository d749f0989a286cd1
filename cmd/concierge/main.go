package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	root := &cli.Command{
		Name:    "concierge",
		Usage:   "telegram door-opening bot for residents",
		Version: resolveVersion(),
		Commands: []*cli.Command{
			cmdVersion(),
			cmdServe(),
			cmdIntercoms(),
			cmdUsers(),
		},
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		cli.HandleExitCoder(err)
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
