package main

import (
	"fmt"
	"strings"

	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/shoka/pkg/books"
	"github.com/shishobooks/shoka/pkg/plugins"
	"github.com/shishobooks/shoka/pkg/refresh"
	"github.com/shishobooks/shoka/pkg/series"
	"github.com/shishobooks/shoka/pkg/sidecar"
	"github.com/urfave/cli/v2"
)

func (a *app) bookCommand() *cli.Command {
	return &cli.Command{
		Name:  "book",
		Usage: "work with books",
		Subcommands: []*cli.Command{
			{
				Name:      "refresh",
				Usage:     "run the metadata providers against a book",
				ArgsUsage: "<book-id>",
				Action:    a.refreshBook,
			},
			{
				Name:      "sidecar",
				Usage:     "write the current metadata of a book to its sidecar file",
				ArgsUsage: "<book-id>",
				Action:    a.writeSidecar,
			},
		},
	}
}

func (a *app) refreshBook(c *cli.Context) error {
	id, err := idArg(c, "book id")
	if err != nil {
		return err
	}

	ctx := logger.New().WithContext(c.Context)

	manager := plugins.NewManager(a.cfg.PluginDir)
	if err := manager.Load(ctx); err != nil {
		return err
	}
	providers, err := refresh.Providers(a.cfg, manager)
	if err != nil {
		return err
	}

	result, err := refresh.NewService(a.db, providers).RefreshMetadata(ctx, id)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(result.Outcomes))
	for _, o := range result.Outcomes {
		rows = append(rows, []string{o.Provider, o.Status, strings.Join(o.LockedFields, ", "), o.Error})
	}
	return writeTable(c.App.Writer, []string{"Provider", "Outcome", "Locked", "Error"}, rows, nil)
}

func (a *app) writeSidecar(c *cli.Context) error {
	id, err := idArg(c, "book id")
	if err != nil {
		return err
	}

	bookService := books.NewService(a.db)
	book, err := bookService.RetrieveBookByID(c.Context, id)
	if err != nil {
		return err
	}
	m, err := bookService.RetrieveBookMetadata(c.Context, id)
	if err != nil {
		return err
	}
	sm, err := series.NewService(a.db).RetrieveSeriesMetadata(c.Context, book.SeriesID)
	if err != nil {
		return err
	}

	path := sidecar.Path(book.URL)
	if err := sidecar.Write(path, sidecar.FromMetadata(m, sm)); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "wrote %s\n", path)
	return nil
}
