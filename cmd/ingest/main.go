package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"

	"video-library/internal/database"
	"video-library/internal/filesystem"
	"video-library/internal/ingest"
	"video-library/internal/logging"
	"video-library/internal/media"
	"video-library/internal/mediatypes"
	"video-library/internal/memory"
	"video-library/internal/startup"

	"golang.org/x/term"
)

type options struct {
	title       string
	artist      string
	genre       string
	description string
	jsonOutput  bool
	verbose     bool
	files       []string
}

// line is one reported ingestion.
type line struct {
	File    string        `json:"file"`
	Result  ingest.Result `json:"result"`
	Kind    ingest.Kind   `json:"kind,omitempty"`
	Message string        `json:"error,omitempty"`
}

func main() {
	opts, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}

	if !opts.verbose {
		logging.SetLevel(logging.LevelWarn)
	}
	memory.ConfigureFromEnv()

	// Create a context that cancels on interrupt signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, rolling back...")
		cancel()
	}()

	os.Exit(run(ctx, opts))
}

func run(ctx context.Context, opts *options) int {
	config, err := startup.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if err := media.InitVips(config.FrameWorkers); err == nil {
		defer media.ShutdownVips()
	}

	db, err := database.New(ctx, config.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to connect to database: %v\n", err)
		fmt.Fprintf(os.Stderr, "Make sure DATABASE_DIR is set correctly (current: %s)\n", config.DatabaseDir)
		return 1
	}
	defer func() {
		if err := db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
	}()

	filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(config.Volumes()))
	layout := config.Layout()
	if err := layout.Ensure(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	tools := media.NewFFmpeg(media.ToolConfig{
		FFmpegPath:     config.FFmpegPath,
		FFprobePath:    config.FFprobePath,
		ProbeTimeout:   config.ProbeTimeout,
		ExtractTimeout: config.ExtractTimeout,
	})
	pipeline := ingest.New(ingest.Config{
		Layout:             layout,
		WorkDir:            config.WorkDir,
		SampleCount:        config.SampleCount,
		PreviewWidth:       config.PreviewWidth,
		FrameDelay:         config.FrameDelay,
		FrameWorkers:       config.FrameWorkers,
		MinPreviewDuration: config.MinPreviewDuration,
		MaxBytes:           config.MaxUploadBytes,
		OrphanGrace:        config.OrphanGrace,
	}, db, tools, tools)

	files, err := expandPaths(ctx, opts.files)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	lines := make([]line, 0, len(files))
	for _, path := range files {
		if ctx.Err() != nil {
			break
		}
		lines = append(lines, ingestFile(ctx, pipeline, opts, path))
	}

	if opts.jsonOutput || !term.IsTerminal(int(os.Stdout.Fd())) {
		err = writeJSONLines(os.Stdout, lines)
	} else {
		err = writeTable(os.Stdout, lines)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing results: %v\n", err)
		return 1
	}

	return exitCode(lines, len(files))
}

func ingestFile(ctx context.Context, p *ingest.Pipeline, opts *options, path string) line {
	l := line{File: path}

	if !mediatypes.IsAllowedVideo(path) {
		l.Result = ingest.Result{Outcome: ingest.Failed}
		l.Message = "unsupported file type"
		return l
	}

	f, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		l.Result = ingest.Result{Outcome: ingest.Failed}
		l.Kind = ingest.KindIO
		l.Message = err.Error()
		return l
	}
	defer f.Close()

	title := opts.title
	if title == "" {
		title = filepath.Base(path)
	}

	res, err := p.Ingest(ctx, ingest.Request{
		Body:         f,
		OriginalName: filepath.Base(path),
		Title:        title,
		Artist:       opts.artist,
		Genre:        opts.genre,
		Description:  opts.description,
	})
	l.Result = res
	if err != nil {
		l.Kind = ingest.KindOf(err)
		l.Message = err.Error()
	}
	return l
}

// exitCode is 1 when any ingestion failed or was never attempted.
func exitCode(lines []line, attempted int) int {
	if len(lines) < attempted {
		return 1
	}
	for _, l := range lines {
		if l.Result.Outcome == ingest.Failed {
			return 1
		}
	}
	return 0
}

func writeJSONLines(w io.Writer, lines []line) error {
	enc := json.NewEncoder(w)
	for _, l := range lines {
		if err := enc.Encode(l); err != nil {
			return err
		}
	}
	return nil
}

func writeTable(w io.Writer, lines []line) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tOUTCOME\tID\tSTORED AS\tPREVIEW\tDURATION\tERROR")
	for _, l := range lines {
		r := l.Result
		id := "-"
		if r.AssetID != 0 {
			id = fmt.Sprintf("%d", r.AssetID)
		}
		stored := orDash(r.StoredFileName)
		preview := "-"
		if r.PreviewFileName != nil {
			preview = *r.PreviewFileName
		}
		duration := "-"
		if r.DurationSeconds != nil {
			duration = fmt.Sprintf("%.1fs", *r.DurationSeconds)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			l.File, r.Outcome, id, stored, preview, duration, orDash(l.Message))
	}
	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func parseArgs(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("ingest", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.title, "title", "", "title for every file (default: the file name)")
	fs.StringVar(&opts.artist, "artist", "", "artist (required)")
	fs.StringVar(&opts.genre, "genre", "", "genre (required)")
	fs.StringVar(&opts.description, "description", "", "optional description")
	fs.BoolVar(&opts.jsonOutput, "json", false, "print JSON lines even on a terminal")
	fs.BoolVar(&opts.verbose, "v", false, "log startup and pipeline progress")
	fs.Usage = func() { printUsage(stderr, fs) }

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	opts.files = fs.Args()

	switch {
	case len(opts.files) == 0:
		err := fmt.Errorf("no files given")
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fs.Usage()
		return nil, err
	case opts.artist == "" || opts.genre == "":
		err := fmt.Errorf("-artist and -genre are required")
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fs.Usage()
		return nil, err
	}
	return opts, nil
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "Video Library Ingest")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage: ingest -artist NAME -genre NAME [flags] FILE|DIR...")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Flags:")
	fs.PrintDefaults()
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  Same as the server: UPLOAD_DIR, THUMBNAIL_DIR, STAGING_DIR, DATABASE_DIR, ...")
}
