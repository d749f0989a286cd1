package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/gloriapark/concierge/access"
	"github.com/gloriapark/concierge/bus"
	"github.com/gloriapark/concierge/channels"
	"github.com/gloriapark/concierge/channels/telegram"
	"github.com/gloriapark/concierge/engine"
	"github.com/gloriapark/concierge/intercom"
	"github.com/gloriapark/concierge/paths"
	"github.com/gloriapark/concierge/session"
)

func cmdServe() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the concierge bot (telegram channel + conversation engine)",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "verbose logging"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			level := zerolog.InfoLevel
			if cmd.Bool("verbose") {
				level = zerolog.DebugLevel
			}
			log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

			if err := paths.EnsureStateDirs(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
			defer stop()

			client := intercom.NewClient(cfg.OpenerURL, cfg.OpenerUser, cfg.OpenerPassword)

			// One fetch at boot to surface misconfiguration early; sessions
			// fetch their own fresh lists.
			if devices, err := client.ListDevices(ctx); err != nil {
				log.Warn().Err(err).Msg("startup device list fetch failed")
			} else {
				log.Info().Int("devices", len(devices)).Msg("intercom list fetched")
			}

			b := bus.New(256)
			eng := engine.New(engine.Options{
				Bus:             b,
				Sessions:        session.NewManager(cfg.SessionsDir),
				Policy:          access.NewPolicy(cfg.Users),
				Intercom:        client,
				InstructionsDir: cfg.InstructionsDir,
				MenuTTL:         time.Duration(cfg.MenuTTLMinutes) * time.Minute,
				Logger:          log,
			})

			cm := channels.NewManager(b, log)
			cm.Add(telegram.New(cfg.APIToken, cfg.Telegram, b, log))
			if err := cm.StartAll(ctx); err != nil {
				return err
			}

			go cm.DispatchOutbound(ctx)
			go func() { _ = eng.Run(ctx) }()

			fmt.Printf("concierge running\n- users: %d\n- sessions: %s\n", len(cfg.Users), cfg.SessionsDir)
			fmt.Println("stop: Ctrl+C")
			<-ctx.Done()

			_ = cm.StopAll()
			return nil
		},
	}
}
