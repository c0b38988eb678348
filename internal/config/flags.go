package config

import (
	"flag"
	"os"
)

// parses CLI flags for the ingester
func ParseIngestFlags() Flags {
	args := os.Args[1:]

	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	path := fs.String("path", "./docs", "file or directory of .txt/.md documents to ingest")
	source := fs.String("source", "file", "source label stored with every chunk")
	title := fs.String("title", "", "title override (defaults to the file name)")
	replace := fs.Bool("replace", false, "delete documents previously ingested from the same file first")
	fs.Parse(args) //nolint:errcheck,gosec // G104: ExitOnError flag set handles errors

	return Flags{Path: *path, Source: *source, Title: *title, Replace: *replace}
}
