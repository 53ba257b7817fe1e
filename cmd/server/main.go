package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/mattlowe/formhall/internal/config"
	"github.com/mattlowe/formhall/internal/seed"
	"github.com/mattlowe/formhall/internal/server"
	"github.com/mattlowe/formhall/internal/store"
)

func main() {
	cmd := &cli.Command{
		Name:  "formhall",
		Usage: "dynamic form definition and submission server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to a TOML config file",
				Value: "formhall.toml",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "listen port (overrides config file)",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "sqlite database path (overrides config file)",
			},
			&cli.BoolFlag{
				Name:  "seed",
				Usage: "seed the member directory on startup if it is empty",
			},
			&cli.StringFlag{
				Name:  "roster",
				Usage: "JSON roster file used with --seed (demo data when omitted)",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}
	if p := cmd.Int("port"); p != 0 {
		cfg.Port = int(p)
	}
	if db := cmd.String("db"); db != "" {
		cfg.DatabasePath = db
	}

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		return err
	}
	log.Println("database migrated successfully")

	if cmd.Bool("seed") {
		if err := seed.Members(ctx, st, cmd.String("roster")); err != nil {
			return err
		}
	}

	return server.Run(ctx, server.Config{
		Port:           cfg.Port,
		Store:          st,
		ExportPageSize: cfg.ExportPageSize,
	})
}
