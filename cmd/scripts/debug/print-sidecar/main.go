package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/shoka/pkg/metadata"
	"github.com/shishobooks/shoka/pkg/sidecar"
)

func main() {
	log := logger.New()

	var opts struct {
		Book bool `short:"b" long:"book" description:"Treat the argument as a book locator and read its sidecar"`
	}

	args, err := flags.Parse(&opts)
	if err != nil {
		log.Err(err).Fatal("flags parse error")
	}

	if len(args) != 1 {
		fmt.Println("go run ./cmd/scripts/debug/print-sidecar [--book] <path>")
		os.Exit(1)
	}

	path := args[0]
	if opts.Book {
		path = sidecar.Path(path)
	}

	s, err := sidecar.Read(path)
	if err != nil {
		log.Err(err).Fatal("sidecar read error")
	}
	if s == nil {
		fmt.Printf("No sidecar at %s\n", path)
		return
	}

	p := s.BookPatch
	fmt.Printf("Version: %d\n", s.Version)
	fmt.Printf("Title: %s\n", describe(p.Title))
	fmt.Printf("Summary: %s\n", describe(p.Summary))
	fmt.Printf("Publisher: %s\n", describe(p.Publisher))
	fmt.Printf("Authors: %s\n", describe(p.Authors))
	fmt.Printf("Tags: %s\n", describe(p.Tags))
}

func describe[T any](f metadata.Field[T]) string {
	if !f.IsPresent() {
		return "(absent)"
	}
	v, ok := f.Get()
	if !ok {
		return "(cleared)"
	}
	return fmt.Sprintf("%v", v)
}
