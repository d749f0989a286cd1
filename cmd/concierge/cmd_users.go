package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/urfave/cli/v3"
)

func cmdUsers() *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "print the configured resident allow-list",
		Flags: []cli.Flag{configFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			phones := make([]string, 0, len(cfg.Users))
			for phone := range cfg.Users {
				phones = append(phones, phone)
			}
			sort.Strings(phones)

			for _, phone := range phones {
				section := cfg.Users[phone].Section
				if section == "" {
					section = "-"
				}
				fmt.Printf("%-16s %s\n", phone, section)
			}
			fmt.Printf("total: %d\n", len(phones))
			return nil
		},
	}
}
