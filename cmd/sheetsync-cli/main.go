package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/rudderlabs/sheetsync/cmd/sheetsync-cli/commands"
)

func main() {
	app := &cli.App{
		Name:  "sheetsync-cli",
		Usage: "manage sheetsync configurations and trigger jobs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "url",
				Usage:   "base URL of the sheetsync server",
				Value:   "http://localhost:5050",
				EnvVars: []string{"SHEETSYNC_URL"},
			},
		},
		Commands: commands.DefaultList,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
