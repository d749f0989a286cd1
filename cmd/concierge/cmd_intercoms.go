package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/gloriapark/concierge/intercom"
)

func cmdIntercoms() *cli.Command {
	return &cli.Command{
		Name:  "intercoms",
		Usage: "fetch and print the vendor's intercom list",
		Flags: []cli.Flag{configFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			client := intercom.NewClient(cfg.OpenerURL, cfg.OpenerUser, cfg.OpenerPassword)
			devices, err := client.ListDevices(ctx)
			if err != nil {
				return err
			}

			for _, d := range devices {
				section := d.Section
				if section == "" {
					section = "-"
				}
				fmt.Printf("%3d  %-12s %s\n", d.Index, section, d.Description)
			}
			fmt.Printf("total: %d\n", len(devices))
			return nil
		},
	}
}
