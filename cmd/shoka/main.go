package main

import (
	"os"

	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/shoka/pkg/config"
	"github.com/shishobooks/shoka/pkg/database"
	"github.com/shishobooks/shoka/pkg/version"
	"github.com/uptrace/bun"
	"github.com/urfave/cli/v2"
)

type app struct {
	cfg *config.Config
	db  *bun.DB
}

func main() {
	log := logger.New()

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}
	defer db.Close()

	a := &app{cfg: cfg, db: db}

	cliApp := &cli.App{
		Name:    "shoka",
		Usage:   "inspect and maintain a shoka library",
		Version: version.Version,
		Commands: []*cli.Command{
			a.seriesCommand(),
			a.bookCommand(),
		},
	}
	if err := cliApp.Run(os.Args); err != nil {
		log.Err(err).Fatal("app run error")
	}
}
