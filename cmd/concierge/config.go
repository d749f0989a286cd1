package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/gloriapark/concierge/config"
	"github.com/gloriapark/concierge/paths"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "config",
		Aliases:  []string{"c"},
		Required: true,
		Usage:    "path to the JSON config file",
	}
}

func loadConfig(cmd *cli.Command) (*config.Config, error) {
	path := strings.TrimSpace(cmd.String("config"))
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	if strings.TrimSpace(cfg.SessionsDir) == "" {
		cfg.SessionsDir = paths.SessionsDir()
	}
	return cfg, nil
}
