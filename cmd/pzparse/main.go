// Command pzparse reads SAC pole-zero response files, prints their contents
// and maintains a SQLite catalog of the instruments they describe.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"

	"github.com/FocuswithJustin/PoleZero/core/catalog"
	"github.com/FocuswithJustin/PoleZero/core/errors"
	"github.com/FocuswithJustin/PoleZero/core/pz"
	"github.com/FocuswithJustin/PoleZero/core/pzfile"
	"github.com/FocuswithJustin/PoleZero/core/sqlite"
	"github.com/FocuswithJustin/PoleZero/internal/config"
	"github.com/FocuswithJustin/PoleZero/internal/logging"
)

const version = "0.1.0"

// Globals are flags shared by every command. Unset flags fall back to the
// configuration file.
type Globals struct {
	Config    string `help:"Configuration file (.yaml, .yml or .toml)" type:"path" env:"POLEZERO_CONFIG"`
	LogLevel  string `name:"log-level" help:"Log level: debug, info, warn, error" env:"POLEZERO_LOG_LEVEL"`
	LogFormat string `name:"log-format" help:"Log format: text or json" env:"POLEZERO_LOG_FORMAT"`
	Catalog   string `help:"Catalog database path" type:"path" env:"POLEZERO_CATALOG"`
	Workers   int    `help:"Files parsed in parallel" env:"POLEZERO_WORKERS"`
}

// CLI defines the command-line interface for pzparse.
type CLI struct {
	Globals

	Parse   ParseCmd     `cmd:"" help:"Parse pole-zero files and print their instruments"`
	Info    InfoCmd      `cmd:"" help:"Print station metadata from a pole-zero file"`
	Catalog CatalogGroup `cmd:"" help:"Instrument catalog operations"`
	Version VersionCmd   `cmd:"" help:"Print version information"`
}

// CatalogGroup contains catalog operations.
type CatalogGroup struct {
	Import ImportCmd `cmd:"" help:"Parse files and add their instruments to the catalog"`
	Find   FindCmd   `cmd:"" help:"Find cataloged instruments"`
	Files  FilesCmd  `cmd:"" help:"List imported files"`
	Remove RemoveCmd `cmd:"" help:"Remove an imported file and its instruments"`
}

// App carries the resolved configuration into command Run methods.
type App struct {
	Ctx    context.Context
	Config *config.Config
	Out    io.Writer
	loader *pzfile.Loader
}

// newApp loads the configuration, applies flag overrides and configures
// logging.
func newApp(g *Globals, out io.Writer) (*App, error) {
	var (
		cfg *config.Config
		err error
	)
	if g.Config != "" {
		cfg, err = config.Load(g.Config, false)
	} else {
		cfg, err = config.Load(config.DefaultPath(), true)
	}
	if err != nil {
		return nil, err
	}

	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if g.LogFormat != "" {
		cfg.Log.Format = g.LogFormat
	}
	if g.Catalog != "" {
		cfg.Catalog.Path = g.Catalog
	}
	if g.Workers != 0 {
		cfg.Workers = g.Workers
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, &errors.ValidationError{Field: "log.level", Value: cfg.Log.Level, Message: err.Error()}
	}
	format, err := logging.ParseFormat(cfg.Log.Format)
	if err != nil {
		return nil, &errors.ValidationError{Field: "log.format", Value: cfg.Log.Format, Message: err.Error()}
	}
	logging.InitLogger(level, format)

	return &App{
		Ctx:    logging.WithRunID(context.Background(), uuid.New().String()),
		Config: cfg,
		Out:    out,
		loader: pzfile.NewLoader(
			pzfile.WithWorkers(cfg.Workers),
			pzfile.WithCacheTTL(time.Duration(cfg.Cache.TTL)),
		),
	}, nil
}

// openCatalog opens the configured catalog database.
func (a *App) openCatalog() (*catalog.Catalog, error) {
	return catalog.Open(a.Ctx, a.Config.Catalog.Path)
}

// ParseCmd parses files and prints every instrument.
type ParseCmd struct {
	Files  []string `arg:"" help:"Pole-zero files (plain, .gz or .xz)" type:"path"`
	Format string   `help:"Output format" enum:"json,text" default:"json" short:"f"`
}

func (c *ParseCmd) Run(app *App) error {
	files, err := app.loader.LoadAll(app.Ctx, c.Files)
	if err != nil {
		return err
	}
	if c.Format == formatText {
		for _, f := range files {
			writeFileText(app.Out, f)
		}
		return nil
	}
	return writeJSON(app.Out, files)
}

// InfoCmd prints the station metadata of each instrument in a file.
type InfoCmd struct {
	File   string `arg:"" help:"Pole-zero file" type:"path"`
	Format string `help:"Output format" enum:"json,text" default:"text" short:"f"`
}

// infoRecord is the JSON form of one instrument's metadata.
type infoRecord struct {
	Path    string         `json:"path"`
	Ordinal int            `json:"ordinal"`
	SEEDID  string         `json:"seed_id"`
	Info    pz.StationInfo `json:"info"`
}

func (c *InfoCmd) Run(app *App) error {
	f, err := app.loader.Load(app.Ctx, c.File)
	if err != nil {
		return err
	}
	if c.Format == formatJSON {
		records := make([]infoRecord, len(f.Instruments))
		for i, in := range f.Instruments {
			info := in.Info()
			records[i] = infoRecord{Path: f.Path, Ordinal: i + 1, SEEDID: info.SEEDID(), Info: info}
		}
		return writeJSON(app.Out, records)
	}
	for i, in := range f.Instruments {
		writeInfoText(app.Out, f.Path, i+1, in.Info())
	}
	return nil
}

// ImportCmd adds files to the catalog.
type ImportCmd struct {
	Files []string `arg:"" help:"Pole-zero files (plain, .gz or .xz)" type:"path"`
}

func (c *ImportCmd) Run(app *App) error {
	files, err := app.loader.LoadAll(app.Ctx, c.Files)
	if err != nil {
		return err
	}
	cat, err := app.openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	for _, f := range files {
		res, err := cat.Import(app.Ctx, f)
		if err != nil {
			return err
		}
		status := "imported"
		if res.Duplicate {
			status = "already cataloged"
		}
		fmt.Fprintf(app.Out, "%s: %s as %s (%d instrument(s))\n", f.Path, status, res.FileID, res.Instruments)
	}
	return nil
}

// FindCmd queries the catalog.
type FindCmd struct {
	Network  string `help:"Network code" short:"n"`
	Station  string `help:"Station code" short:"s"`
	Location string `help:"Location code" short:"l"`
	Channel  string `help:"Channel code" short:"c"`
	At       string `help:"Only instruments active at this time (e.g. 2010-07-21T00:00:00)"`
	Format   string `help:"Output format" enum:"json,text" default:"text" short:"f"`
}

func (c *FindCmd) Run(app *App) error {
	q := catalog.Query{
		Network:  c.Network,
		Station:  c.Station,
		Location: c.Location,
		Channel:  c.Channel,
	}
	if c.At != "" {
		at, err := pz.ParseTimestamp(c.At)
		if err != nil {
			return fmt.Errorf("invalid --at %q: %w", c.At, err)
		}
		q.At = &at
	}

	cat, err := app.openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	entries, err := cat.Find(app.Ctx, q)
	if err != nil {
		return err
	}
	if c.Format == formatJSON {
		return writeJSON(app.Out, entries)
	}
	writeEntriesText(app.Out, entries)
	return nil
}

// FilesCmd lists imported files.
type FilesCmd struct {
	Format string `help:"Output format" enum:"json,text" default:"text" short:"f"`
}

func (c *FilesCmd) Run(app *App) error {
	cat, err := app.openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	files, err := cat.Files(app.Ctx)
	if err != nil {
		return err
	}
	if c.Format == formatJSON {
		return writeJSON(app.Out, files)
	}
	writeFilesText(app.Out, files)
	return nil
}

// RemoveCmd deletes an imported file from the catalog.
type RemoveCmd struct {
	ID string `arg:"" help:"File ID as printed by import or files"`
}

func (c *RemoveCmd) Run(app *App) error {
	cat, err := app.openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	if err := cat.Remove(app.Ctx, c.ID); err != nil {
		return err
	}
	fmt.Fprintf(app.Out, "removed %s\n", c.ID)
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(app *App) error {
	info := sqlite.GetInfo()
	fmt.Fprintf(app.Out, "pzparse version %s (sqlite: %s, %s)\n", version, info.DriverType, info.Package)
	return nil
}

// kongOptions are shared by main and the tests.
func kongOptions() []kong.Option {
	return []kong.Option{
		kong.Name("pzparse"),
		kong.Description("SAC pole-zero file parser and instrument catalog"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	}
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli, kongOptions()...)
	app, err := newApp(&cli.Globals, os.Stdout)
	ctx.FatalIfErrorf(err)
	err = ctx.Run(app)
	ctx.FatalIfErrorf(err)
}
