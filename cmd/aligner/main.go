// Command aligner is the CLI for Juniper Aligner.
// It edits word alignments between an OSIS source text and a target
// translation, and moves alignment data between projects as bundles.
package main

import (
	"archive/tar"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/JuniperAligner/core/alignment"
	"github.com/FocuswithJustin/JuniperAligner/core/cas"
	alerrors "github.com/FocuswithJustin/JuniperAligner/core/errors"
	"github.com/FocuswithJustin/JuniperAligner/core/ref"
	"github.com/FocuswithJustin/JuniperAligner/internal/bundle"
	"github.com/FocuswithJustin/JuniperAligner/internal/config"
	"github.com/FocuswithJustin/JuniperAligner/internal/logging"
	"github.com/FocuswithJustin/JuniperAligner/internal/osis"
	"github.com/FocuswithJustin/JuniperAligner/internal/persist"
	"github.com/FocuswithJustin/JuniperAligner/internal/session"
	"github.com/FocuswithJustin/JuniperAligner/internal/tokenize"
	"github.com/FocuswithJustin/JuniperAligner/internal/validation"
)

const version = "0.1.0"

// sources caches parsed OSIS files for the life of the process.
var sources = osis.NewLibrary(4)

// Globals are the flags shared by every command.
type Globals struct {
	Config   string `name:"config" help:"Config file path (default ~/.juniper-aligner/config.toml)" type:"path"`
	Project  string `name:"project" short:"C" help:"Project directory, overrides storage.project_dir" type:"path"`
	LogLevel string `name:"log-level" help:"Log level, overrides logging.level"`

	out io.Writer
}

// CLI defines the command-line interface for aligner.
type CLI struct {
	Globals

	Verse    VerseGroup    `cmd:"" help:"Edit the alignments of one verse"`
	Suggest  SuggestGroup  `cmd:"" help:"Alignment suggestions"`
	Bundle   BundleGroup   `cmd:"" help:"Export and import alignment bundles"`
	Migrate  MigrateCmd    `cmd:"" help:"Normalise a legacy chapter file against its texts"`
	Books    BooksCmd      `cmd:"" help:"List the books and chapters of a project"`
	Journal  JournalCmd    `cmd:"" help:"Show the operation journal of a verse"`
	Snapshot SnapshotGroup `cmd:"" help:"List, show and restore chapter snapshots"`
	Version  VersionCmd    `cmd:"" help:"Print version information"`
}

// BundleGroup contains bundle operations.
type BundleGroup struct {
	Export BundleExportCmd `cmd:"" help:"Export a book's alignment data"`
	Import BundleImportCmd `cmd:"" help:"Import a bundle into the project"`
	List   BundleListCmd   `cmd:"" help:"List the entries of a bundle"`
}

func (g *Globals) stdout() io.Writer {
	if g.out != nil {
		return g.out
	}
	return os.Stdout
}

func (g *Globals) loadConfig() (config.Config, error) {
	path := g.Config
	if path == "" {
		dir, err := config.DefaultDir()
		if err != nil {
			return config.Config{}, err
		}
		path = filepath.Join(dir, config.FileName)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if g.Project != "" {
		cfg.Storage.ProjectDir = g.Project
	}
	if g.LogLevel != "" {
		cfg.Logging.Level = g.LogLevel
		if err := cfg.Validate(); err != nil {
			return cfg, err
		}
	}
	if err := validation.ValidatePath(cfg.Storage.ProjectDir); err != nil {
		return cfg, fmt.Errorf("invalid project path: %w", err)
	}
	return cfg, nil
}

// env is the storage opened for one command.
type env struct {
	cfg       config.Config
	project   *persist.Project
	store     *persist.Store
	snapshots *cas.Store
}

func (g *Globals) open() (*env, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}
	cfg.ApplyLogging()

	e := &env{cfg: cfg, project: persist.NewProject(cfg.Storage.ProjectDir)}
	if cfg.Storage.Database != "" {
		e.store, err = persist.OpenStore(cfg.Storage.Database)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
	}
	if cfg.Storage.SnapshotDir != "" {
		e.snapshots, err = cas.NewStore(cfg.Storage.SnapshotDir)
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("open snapshot store: %w", err)
		}
	}
	return e, nil
}

func (e *env) Close() error {
	if e.store != nil {
		return e.store.Close()
	}
	return nil
}

func (e *env) session(writeback bool) *session.Session {
	return session.New(session.Options{
		Project:              e.project,
		Store:                e.store,
		Snapshots:            e.snapshots,
		HistoryLimit:         e.cfg.Session.HistoryLimit,
		Writeback:            writeback && e.cfg.Session.Writeback,
		KeepStaleSuggestions: e.cfg.Session.StaleSuggestions,
	})
}

// VerseFlags select a verse and the texts it is aligned between.
type VerseFlags struct {
	Ref    string `required:"" help:"Verse reference (e.g. Tit.1.1)"`
	Source string `required:"" help:"OSIS source text" type:"existingfile"`
	Target string `required:"" help:"Target chapter JSON mapping verse numbers to text" type:"existingfile"`
}

func (f *VerseFlags) baselines(r *ref.Ref) (alignment.Baseline, alignment.Baseline, error) {
	if err := validation.ValidateBookID(r.Book); err != nil {
		return nil, nil, err
	}
	source, err := sources.Chapter(f.Source, r.Book, r.Chapter)
	if err != nil {
		return nil, nil, err
	}

	texts, err := persist.ReadTargetChapter(f.Target)
	if err != nil {
		return nil, nil, err
	}
	var words tokenize.Words
	target := make(alignment.Baseline, len(source))
	for verse := range source {
		target[verse] = words.Tokenize(texts[verse])
	}
	return source, target, nil
}

// openVerse opens the project, loads the verse's chapter and reports any
// notices raised while loading.
func (g *Globals) openVerse(ctx context.Context, f *VerseFlags, writeback bool) (*env, *session.Session, error) {
	r, err := ref.Parse(f.Ref)
	if err != nil {
		return nil, nil, err
	}
	if err := r.RequireVerse(); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", f.Ref, err)
	}
	source, target, err := f.baselines(r)
	if err != nil {
		return nil, nil, err
	}

	e, err := g.open()
	if err != nil {
		return nil, nil, err
	}
	s := e.session(writeback)
	s.SetContext(r)
	if err := s.Load(ctx, source, target); err != nil {
		e.Close()
		return nil, nil, err
	}
	for _, n := range s.Notices() {
		fmt.Fprintf(os.Stderr, "notice: %s: %s\n", n.Ref, n.Message)
	}
	return e, s, nil
}

// findToken resolves "text" or "text:occurrence" against a sentence.
func findToken(s alignment.Sentence, arg string) (alignment.Token, error) {
	text, occurrence := arg, 1
	if i := strings.LastIndexByte(arg, ':'); i > 0 {
		n, err := strconv.Atoi(arg[i+1:])
		if err != nil || n < 1 {
			return alignment.Token{}, alerrors.NewValidation("token", fmt.Sprintf("bad occurrence in %q", arg))
		}
		text, occurrence = arg[:i], n
	}
	for _, t := range s {
		if t.Text == text && t.Occurrence == occurrence {
			return t, nil
		}
	}
	return alignment.Token{}, alerrors.NewNotFound("token", arg)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// BundleExportCmd exports a book as a bundle.
type BundleExportCmd struct {
	Book string `required:"" help:"Book ID (e.g. tit)"`
	Out  string `required:"" help:"Output bundle path (.tar.xz)" type:"path"`
}

func (c *BundleExportCmd) Run(g *Globals) error {
	if err := validation.ValidateBookID(c.Book); err != nil {
		return err
	}
	if err := validation.ValidatePath(c.Out); err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}
	e, err := g.open()
	if err != nil {
		return err
	}
	defer e.Close()

	m, err := bundle.ExportFile(e.project, c.Book, c.Out)
	if err != nil {
		return err
	}
	logging.Info("bundle_exported", "book", m.Book, "chapters", len(m.Chapters), "path", c.Out)
	fmt.Fprintf(g.stdout(), "Exported %s (%d chapters) to %s\n", m.Book, len(m.Chapters), c.Out)
	return nil
}

// BundleImportCmd imports a bundle.
type BundleImportCmd struct {
	Path string `arg:"" help:"Bundle to import" type:"existingfile"`
}

func (c *BundleImportCmd) Run(g *Globals) error {
	f, err := os.Open(c.Path)
	if err != nil {
		return err
	}
	ft, err := validation.ValidateFileType(f, c.Path)
	f.Close()
	if err != nil {
		return err
	}
	if ft != validation.FileTypeTarXZ {
		return alerrors.NewUnsupported("bundle import", fmt.Sprintf("%s is not a tar.xz bundle", c.Path))
	}

	e, err := g.open()
	if err != nil {
		return err
	}
	defer e.Close()

	m, err := bundle.ImportFile(c.Path, e.project)
	if err != nil {
		return err
	}
	logging.Info("bundle_imported", "book", m.Book, "chapters", len(m.Chapters), "path", c.Path)
	fmt.Fprintf(g.stdout(), "Imported %s (%d chapters)\n", m.Book, len(m.Chapters))
	return nil
}

// BundleListCmd lists a bundle's entries.
type BundleListCmd struct {
	Path string `arg:"" help:"Bundle to list" type:"existingfile"`
}

func (c *BundleListCmd) Run(g *Globals) error {
	r, err := bundle.NewReader(c.Path)
	if err != nil {
		return err
	}
	defer r.Close()

	w := g.stdout()
	count := 0
	err = r.Iterate(func(h *tar.Header, _ io.Reader) (bool, error) {
		if count >= validation.MaxBundleEntries {
			return true, fmt.Errorf("bundle has more than %d entries", validation.MaxBundleEntries)
		}
		count++
		fmt.Fprintf(w, "%8d  %s\n", h.Size, h.Name)
		return false, nil
	})
	return err
}

// MigrateCmd rewrites a legacy chapter file so its tokens carry the
// positions and occurrence counts of the current texts.
type MigrateCmd struct {
	Legacy string `arg:"" help:"Legacy chapter file (alignmentData JSON)" type:"existingfile"`
	Ref    string `required:"" help:"Chapter reference (e.g. Tit.1)"`
	Source string `required:"" help:"OSIS source text" type:"existingfile"`
	Target string `required:"" help:"Target chapter JSON mapping verse numbers to text" type:"existingfile"`
	Write  bool   `help:"Save the result into the project instead of printing it"`
}

func (c *MigrateCmd) Run(g *Globals) error {
	r, err := chapterRef(c.Ref)
	if err != nil {
		return err
	}
	flags := VerseFlags{Ref: c.Ref, Source: c.Source, Target: c.Target}
	source, target, err := flags.baselines(r)
	if err != nil {
		return err
	}
	legacy, err := persist.ReadLegacyChapter(c.Legacy)
	if err != nil {
		return err
	}

	verses, err := alignment.MigrateChapterAlignments(legacy, source, target)
	if err != nil {
		return err
	}
	state, err := alignment.Apply(alignment.State{}, alignment.SetChapterAlignments{Chapter: r.Chapter, Verses: verses})
	if err != nil {
		return err
	}
	data, err := alignment.LegacyChapterAlignments(state, r.Chapter)
	if err != nil {
		return err
	}
	if !c.Write {
		return writeJSON(g.stdout(), data)
	}

	e, err := g.open()
	if err != nil {
		return err
	}
	defer e.Close()
	if err := e.project.WriteChapter(r.BookID(), r.Chapter, data); err != nil {
		return err
	}
	logging.Info("chapter_migrated", "ref", r.String(), "verses", len(verses))
	fmt.Fprintf(g.stdout(), "Migrated %s (%d verses)\n", r, len(verses))
	return nil
}

// BooksCmd lists a project's alignment data.
type BooksCmd struct{}

func (c *BooksCmd) Run(g *Globals) error {
	e, err := g.open()
	if err != nil {
		return err
	}
	defer e.Close()

	books, err := e.project.Books()
	if err != nil {
		return err
	}
	w := g.stdout()
	for _, book := range books {
		chapters, err := e.project.Chapters(book)
		if err != nil {
			return err
		}
		parts := make([]string, len(chapters))
		for i, ch := range chapters {
			parts[i] = strconv.Itoa(ch)
		}
		fmt.Fprintf(w, "%s: %s\n", book, strings.Join(parts, " "))
	}
	return nil
}

// JournalCmd prints the journal of one verse.
type JournalCmd struct {
	Ref string `required:"" help:"Verse reference (e.g. Tit.1.1)"`
}

func (c *JournalCmd) Run(g *Globals) error {
	r, err := ref.Parse(c.Ref)
	if err != nil {
		return err
	}
	if err := r.RequireVerse(); err != nil {
		return fmt.Errorf("%s: %w", c.Ref, err)
	}
	e, err := g.open()
	if err != nil {
		return err
	}
	defer e.Close()
	if e.store == nil {
		return alerrors.NewUnsupported("journal", "storage.database is not configured")
	}

	entries, err := e.store.Journal(context.Background(), r.BookID(), r.Chapter, r.Verse)
	if err != nil {
		return err
	}
	w := g.stdout()
	for _, entry := range entries {
		fmt.Fprintf(w, "%s  %-32s %s\n", entry.CreatedAt.Format("2006-01-02T15:04:05Z07:00"), entry.Kind, entry.SessionID)
	}
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(g *Globals) error {
	fmt.Fprintf(g.stdout(), "aligner version %s\n", version)
	return nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("aligner"),
		kong.Description("Juniper Aligner - word alignment editing for Bible translations"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
