package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/meigma/wax"
	"github.com/meigma/wax/cache/disk"
	waxhttp "github.com/meigma/wax/http"
)

// app holds the process-wide streams shared by all commands.
type app struct {
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string
}

func (a *app) root() *Command {
	var showVersion bool
	root := &Command{
		Name:    "wax",
		Summary: "Build and read WAX single-file archives.",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("wax", pflag.ContinueOnError)
			fs.BoolVar(&showVersion, "version", false, "print the version and exit")
			return fs
		},
		Subcommands: []*Command{
			a.buildCommand(),
			a.readCommand(),
			a.lsCommand(),
			a.inspectCommand(),
		},
	}
	root.Run = func(args []string) error {
		if showVersion {
			fmt.Fprintf(a.stdout, "wax %s\n", version)
			return nil
		}
		root.PrintHelp(a.stderr)
		return usagef("command required")
	}
	return root
}

func (a *app) buildCommand() *Command {
	var (
		input   string
		output  string
		workers int
		verbose bool
	)
	return &Command{
		Name:    "build",
		Summary: "Pack a directory into an archive",
		Usage:   "wax build --input <dir> --output <file> [--workers N] [--verbose]",
		Examples: []string{
			"wax build --input ./site --output site.wax",
			"wax build -i ./site -o site.wax --workers 8",
		},
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("build", pflag.ContinueOnError)
			fs.StringVarP(&input, "input", "i", "", "directory to archive")
			fs.StringVarP(&output, "output", "o", "", "archive file to write")
			fs.IntVarP(&workers, "workers", "w", 1, "files compressed in parallel (0 uses all CPUs)")
			fs.BoolVarP(&verbose, "verbose", "v", false, "log each build step")
			return fs
		},
		Run: func(args []string) error {
			if err := noArgs(args); err != nil {
				return err
			}
			if input == "" || output == "" {
				return usagef("--input and --output are required")
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			opts := []wax.CreateOption{
				wax.CreateWithLogger(newLogger(a.stderr, verbose)),
				wax.CreateWithWorkers(workers),
			}
			bar := newProgressLine(a.stderr)
			if bar != nil {
				opts = append(opts, wax.CreateWithProgress(bar.update))
			}

			summary, err := wax.Create(ctx, input, output, opts...)
			bar.finish()
			if err != nil {
				return fmt.Errorf("build %s: %w", output, err)
			}
			printSummary(a.stdout, output, summary)
			return nil
		},
	}
}

func (a *app) readCommand() *Command {
	var archive, file, maxSize string
	return &Command{
		Name:    "read",
		Summary: "Print one file from an archive",
		Usage:   "wax read --archive <file> --file <path> [--max-file-size SIZE]",
		Examples: []string{
			"wax read --archive site.wax --file css/site.css",
			"wax read -a site.wax -f video/intro.mp4 --max-file-size 64MiB",
		},
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("read", pflag.ContinueOnError)
			fs.StringVarP(&archive, "archive", "a", "", "archive to read (path or http(s) URL)")
			fs.StringVarP(&file, "file", "f", "", "path of the file inside the archive")
			fs.StringVar(&maxSize, "max-file-size", "", "refuse files larger than SIZE (e.g. 512MiB); no limit by default")
			return fs
		},
		Run: func(args []string) error {
			if err := noArgs(args); err != nil {
				return err
			}
			if archive == "" || file == "" {
				return usagef("--archive and --file are required")
			}
			var extra []wax.Option
			if maxSize != "" {
				limit, err := humanize.ParseBytes(maxSize)
				if err != nil {
					return usagef("invalid --max-file-size %q: %v", maxSize, err)
				}
				extra = sizeLimit(limit)
			}

			r, err := a.openArchive(archive, extra...)
			if err != nil {
				return err
			}
			defer r.Close()

			data, err := r.ReadFile(file)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Found: %s (%d bytes, %s)\n", wax.NormalizePath(file), len(data), r.ContentType(file))
			if utf8.Valid(data) {
				fmt.Fprintln(a.stdout, string(data))
			} else {
				fmt.Fprintln(a.stdout, "(binary data)")
			}
			return nil
		},
	}
}

func (a *app) lsCommand() *Command {
	var archive string
	return &Command{
		Name:     "ls",
		Summary:  "List the files in an archive",
		Usage:    "wax ls --archive <file>",
		Examples: []string{"wax ls --archive site.wax"},
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("ls", pflag.ContinueOnError)
			fs.StringVarP(&archive, "archive", "a", "", "archive to list (path or http(s) URL)")
			return fs
		},
		Run: func(args []string) error {
			if err := noArgs(args); err != nil {
				return err
			}
			if archive == "" {
				return usagef("--archive is required")
			}

			r, err := a.openArchive(archive)
			if err != nil {
				return err
			}
			defer r.Close()

			entries, err := r.Entries()
			if err != nil {
				return err
			}
			printEntries(a.stdout, entries)
			return nil
		},
	}
}

func (a *app) inspectCommand() *Command {
	var archive string
	return &Command{
		Name:     "inspect",
		Summary:  "Show an archive's header",
		Usage:    "wax inspect --archive <file>",
		Examples: []string{"wax inspect --archive site.wax"},
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("inspect", pflag.ContinueOnError)
			fs.StringVarP(&archive, "archive", "a", "", "archive to inspect")
			return fs
		},
		Run: func(args []string) error {
			if err := noArgs(args); err != nil {
				return err
			}
			if archive == "" {
				return usagef("--archive is required")
			}

			res, err := wax.Inspect(archive)
			if err != nil {
				return err
			}
			printInspect(a.stdout, archive, res)
			return nil
		},
	}
}

// openArchive opens a local archive, or a remote one when archive is an
// http or https URL.
func (a *app) openArchive(archive string, extra ...wax.Option) (*wax.Reader, error) {
	opts, err := a.readerOptions()
	if err != nil {
		return nil, err
	}
	opts = append(opts, extra...)
	if !strings.HasPrefix(archive, "http://") && !strings.HasPrefix(archive, "https://") {
		return wax.Open(archive, opts...)
	}
	src, err := waxhttp.NewSource(context.Background(), archive)
	if err != nil {
		return nil, err
	}
	return wax.OpenSource(src, opts...)
}

// readerOptions applies environment configuration shared by read commands.
func (a *app) readerOptions() ([]wax.Option, error) {
	// build archives files of any size, so read accepts them all unless
	// --max-file-size says otherwise.
	opts := append([]wax.Option{wax.WithLogger(newLogger(a.stderr, false))}, sizeLimit(0)...)
	if dir := a.getenv("WAX_TMPDIR"); dir != "" {
		opts = append(opts, wax.WithTempDir(dir))
	}
	if dir := a.getenv("WAX_CACHE_DIR"); dir != "" {
		c, err := disk.New(dir)
		if err != nil {
			return nil, fmt.Errorf("open cache: %w", err)
		}
		opts = append(opts, wax.WithCache(c))
	}
	return opts, nil
}

// sizeLimit caps both the file size and the decoder memory at limit bytes.
// Zero disables both limits.
func sizeLimit(limit uint64) []wax.Option {
	return []wax.Option{wax.WithMaxFileSize(limit), wax.WithMaxDecoderMemory(limit)}
}

func noArgs(args []string) error {
	if len(args) > 0 {
		return usagef("unexpected arguments: %v", args)
	}
	return nil
}

// newLogger returns a text logger on w at warn level, or debug when verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
