package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/shishobooks/shoka/pkg/books"
	"github.com/shishobooks/shoka/pkg/models"
	"github.com/shishobooks/shoka/pkg/series"
	"github.com/urfave/cli/v2"
)

func (a *app) seriesCommand() *cli.Command {
	return &cli.Command{
		Name:  "series",
		Usage: "work with series",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list series",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "library", Usage: "only list series of this library"},
					&cli.IntFlag{Name: "limit", Value: 50},
					&cli.IntFlag{Name: "offset"},
				},
				Action: a.listSeries,
			},
			{
				Name:      "books",
				Usage:     "list the books of a series in order",
				ArgsUsage: "<series-id>",
				Action:    a.listSeriesBooks,
			},
			{
				Name:      "sort",
				Usage:     "renumber the books of a series in natural order",
				ArgsUsage: "<series-id>",
				Action:    a.sortSeries,
			},
			{
				Name:      "delete",
				Usage:     "delete a series with all of its books",
				ArgsUsage: "<series-id>",
				Action:    a.deleteSeries,
			},
		},
	}
}

func idArg(c *cli.Context, name string) (int, error) {
	if c.NArg() != 1 {
		return 0, errors.Errorf("expected exactly one %s argument", name)
	}
	id, err := strconv.Atoi(c.Args().First())
	if err != nil {
		return 0, errors.Errorf("invalid %s %q", name, c.Args().First())
	}
	return id, nil
}

func (a *app) listSeries(c *cli.Context) error {
	opts := series.ListSeriesOptions{
		Limit:  pointerutil.Int(c.Int("limit")),
		Offset: pointerutil.Int(c.Int("offset")),
	}
	if c.IsSet("library") {
		opts.LibraryID = pointerutil.Int(c.Int("library"))
	}

	list, total, err := series.NewService(a.db).ListSeriesWithTotal(c.Context, opts)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(list))
	for _, s := range list {
		title := s.Name
		status := ""
		if s.Metadata != nil {
			title = s.Metadata.Title
			status = s.Metadata.Status
		}
		rows = append(rows, []string{
			strconv.Itoa(s.ID),
			title,
			status,
			strconv.Itoa(s.BookCount),
			humanize.Time(s.FileLastModified),
		})
	}

	err = writeTable(c.App.Writer, []string{"ID", "Title", "Status", "Books", "Modified"}, rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft})
	if err != nil {
		return err
	}
	if len(list) < total {
		fmt.Fprintf(c.App.ErrWriter, "showing %d of %d series\n", len(list), total)
	}
	return nil
}

func (a *app) listSeriesBooks(c *cli.Context) error {
	id, err := idArg(c, "series id")
	if err != nil {
		return err
	}

	if _, err := series.NewService(a.db).RetrieveSeriesByID(c.Context, id); err != nil {
		return err
	}
	list, err := books.NewService(a.db).ListBooks(c.Context, books.ListBooksOptions{SeriesID: &id})
	if err != nil {
		return err
	}

	return writeTable(c.App.Writer, []string{"#", "ID", "Name", "Size", "Modified"}, bookRows(list),
		[]columnAlignment{alignRight, alignRight, alignLeft, alignRight, alignLeft})
}

func bookRows(list []*models.Book) [][]string {
	rows := make([][]string, 0, len(list))
	for _, b := range list {
		modified := ""
		if !b.FileLastModified.IsZero() {
			modified = b.FileLastModified.Format(time.DateTime)
		}
		rows = append(rows, []string{
			strconv.Itoa(b.Number),
			strconv.Itoa(b.ID),
			b.Name,
			b.FileSizeHumanReadable(),
			modified,
		})
	}
	return rows
}

func (a *app) sortSeries(c *cli.Context) error {
	id, err := idArg(c, "series id")
	if err != nil {
		return err
	}

	if err := series.NewService(a.db).SortBooks(c.Context, id); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "sorted series %d\n", id)
	return nil
}

func (a *app) deleteSeries(c *cli.Context) error {
	id, err := idArg(c, "series id")
	if err != nil {
		return err
	}

	if err := series.NewService(a.db).DeleteSeries(c.Context, id); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "deleted series %d\n", id)
	return nil
}
