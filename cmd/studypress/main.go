// Command studypress turns a saved study-edition chapter page into a
// validated structured record and a two-column print layout.
// It provides commands for extracting, validating, rendering, and
// previewing chapters, plus a pipeline command running all stages.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"

	"github.com/FocuswithJustin/StudyPress/core/extract"
	"github.com/FocuswithJustin/StudyPress/core/layout"
	"github.com/FocuswithJustin/StudyPress/core/markup"
	"github.com/FocuswithJustin/StudyPress/core/model"
	"github.com/FocuswithJustin/StudyPress/core/resolve"
	"github.com/FocuswithJustin/StudyPress/internal/logging"
	"github.com/FocuswithJustin/StudyPress/internal/preview"
	"github.com/FocuswithJustin/StudyPress/internal/storage"
)

const version = "0.1.0"

// CLI defines the command-line interface for studypress.
var CLI struct {
	// Global flags
	LogLevel  string `name:"log-level" default:"info" enum:"debug,info,warn,error" help:"Log level"`
	LogFormat string `name:"log-format" default:"text" enum:"json,text" help:"Log output format"`

	Extract  ExtractCmd  `cmd:"" help:"Extract a chapter record from saved markup"`
	Merge    MergeCmd    `cmd:"" help:"Merge re-supplied markup into an extracted chapter"`
	Validate ValidateCmd `cmd:"" help:"Run completeness checks on a chapter record"`
	Render   RenderCmd   `cmd:"" help:"Render a chapter record to print HTML"`
	Pipeline PipelineCmd `cmd:"" help:"Run extract, validate, and render in one pass"`
	Preview  PreviewCmd  `cmd:"" help:"Serve a rendered chapter with live reload"`
	Version  VersionCmd  `cmd:"" help:"Print version information"`
}

// rulesFlag is shared by every command that reads markup.
type rulesFlag struct {
	Rules string `name:"rules" help:"Selection-rules JSON file (default: built-in study-edition rules)" type:"existingfile"`
}

func (r rulesFlag) load() (extract.Rules, error) {
	if r.Rules == "" {
		return extract.DefaultRules(), nil
	}
	data, err := os.ReadFile(r.Rules)
	if err != nil {
		return extract.Rules{}, fmt.Errorf("reading rules: %w", err)
	}
	return extract.LoadRules(data)
}

// geometryFlags maps CLI flags onto a layout geometry.
type geometryFlags struct {
	PageWidth    float64 `name:"page-width" default:"210" help:"Page width in mm"`
	PageHeight   float64 `name:"page-height" default:"297" help:"Page height in mm"`
	MarginTop    float64 `name:"margin-top" default:"20" help:"Top margin in mm"`
	MarginBottom float64 `name:"margin-bottom" default:"20" help:"Bottom margin in mm"`
	MarginLeft   float64 `name:"margin-left" default:"15" help:"Left margin in mm"`
	MarginRight  float64 `name:"margin-right" default:"15" help:"Right margin in mm"`
	ColumnRatio  float64 `name:"column-ratio" default:"0.6" help:"Left column share of content width (0,1)"`
	ColumnGap    float64 `name:"column-gap" default:"10" help:"Inter-column gap in mm"`
	Style        string  `name:"style" default:"paragraphs" enum:"paragraphs,inline,boxed" help:"Cross-reference presentation style"`
}

func (g geometryFlags) geometry() layout.Geometry {
	return layout.Geometry{
		PageWidth:       g.PageWidth,
		PageHeight:      g.PageHeight,
		MarginTop:       g.MarginTop,
		MarginBottom:    g.MarginBottom,
		MarginLeft:      g.MarginLeft,
		MarginRight:     g.MarginRight,
		ColumnRatio:     g.ColumnRatio,
		ColumnGap:       g.ColumnGap,
		AnnotationStyle: layout.AnnotationStyle(g.Style),
	}
}

// extractChapter runs the extraction and resolution stages on one markup
// file, logging every omission and resolver finding.
func extractChapter(markupPath string, rules extract.Rules) (*model.Chapter, error) {
	data, err := os.ReadFile(markupPath)
	if err != nil {
		return nil, fmt.Errorf("reading markup: %w", err)
	}
	doc, err := markup.Parse(data)
	if err != nil {
		return nil, err
	}

	chapter, omissions, err := extract.Extract(doc, rules)
	if err != nil {
		return nil, err
	}
	for _, o := range omissions {
		logging.Omission(string(o.Field), o.Context, o.Reason)
	}
	logging.Extraction(chapter.Book, chapter.Number, len(chapter.Verses), len(omissions),
		"rules", rules.Version)

	result := resolve.Chapter(chapter)
	for _, gap := range result.Gaps {
		logging.Warn("marker gap",
			"kind", string(gap.Marker.Kind),
			"glyph", gap.Marker.Glyph,
			"verse", gap.Marker.Verse)
	}
	for _, orphan := range result.Orphans {
		logging.Warn("orphan annotation",
			"kind", string(orphan.Kind),
			"id", orphan.ID,
			"verse", orphan.Verse)
	}

	return chapter, nil
}

// reportViolations logs every finding and returns whether any is fatal.
func reportViolations(c *model.Chapter) bool {
	violations := model.Validate(c)
	for _, v := range violations {
		logging.Violation(string(v.Kind), string(v.Severity), v.Entity, v.Message)
	}
	return model.HasFatal(violations)
}

// ExtractCmd extracts a chapter record from saved markup.
type ExtractCmd struct {
	rulesFlag
	Markup   string `arg:"" help:"Saved chapter markup (HTML file)" type:"existingfile"`
	Out      string `name:"out" short:"o" required:"" help:"Output chapter JSON path"`
	CSV      string `name:"csv" help:"Also export the verse stream as CSV"`
	Snapshot string `name:"snapshot-dir" help:"Also store the raw markup in a snapshot store at this root"`
}

func (c *ExtractCmd) Run() error {
	rules, err := c.load()
	if err != nil {
		return err
	}
	chapter, err := extractChapter(c.Markup, rules)
	if err != nil {
		logging.StageError("extract", err, "input", c.Markup)
		return err
	}

	if c.Snapshot != "" {
		store, err := storage.NewSnapshotStore(c.Snapshot)
		if err != nil {
			return err
		}
		raw, err := os.ReadFile(c.Markup)
		if err != nil {
			return fmt.Errorf("reading markup: %w", err)
		}
		hash, err := store.Save(raw)
		if err != nil {
			return err
		}
		logging.Info("snapshot stored", "hash", hash)
	}

	if err := storage.SaveChapter(chapter, c.Out); err != nil {
		return err
	}
	if c.CSV != "" {
		if err := storage.ExportVersesCSV(chapter, c.CSV); err != nil {
			return err
		}
	}

	fmt.Printf("Extracted %s: %d verses, %d footnotes, %d cross-references, %d study notes\n",
		chapter.Reference(), len(chapter.Verses), len(chapter.Footnotes),
		len(chapter.CrossReferences), len(chapter.StudyNotes))
	return nil
}

// MergeCmd folds re-supplied markup (with lazily populated detail blocks)
// into an existing chapter record.
type MergeCmd struct {
	rulesFlag
	Chapter string `arg:"" help:"Existing chapter JSON" type:"existingfile"`
	Markup  string `arg:"" help:"Updated chapter markup (HTML file)" type:"existingfile"`
	Out     string `name:"out" short:"o" help:"Output path (default: overwrite the chapter file)"`
}

func (c *MergeCmd) Run() error {
	rules, err := c.load()
	if err != nil {
		return err
	}
	chapter, err := storage.LoadChapter(c.Chapter)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(c.Markup)
	if err != nil {
		return fmt.Errorf("reading markup: %w", err)
	}
	doc, err := markup.Parse(data)
	if err != nil {
		return err
	}

	omissions, err := extract.Merge(chapter, doc, rules)
	if err != nil {
		logging.StageError("merge", err, "input", c.Markup)
		return err
	}
	for _, o := range omissions {
		logging.Omission(string(o.Field), o.Context, o.Reason)
	}
	resolve.Chapter(chapter)

	out := c.Out
	if out == "" {
		out = c.Chapter
	}
	if err := storage.SaveChapter(chapter, out); err != nil {
		return err
	}

	resolved := 0
	for _, xr := range chapter.CrossReferences {
		if xr.Resolved() {
			resolved++
		}
	}
	fmt.Printf("Merged %s: %d of %d cross-references resolved\n",
		chapter.Reference(), resolved, len(chapter.CrossReferences))
	return nil
}

// ValidateCmd runs the completeness checks on a chapter record.
type ValidateCmd struct {
	Chapter string `arg:"" help:"Chapter JSON to validate" type:"existingfile"`
	Strict  bool   `name:"strict" help:"Exit non-zero on error-severity findings, not only fatal ones"`
}

func (c *ValidateCmd) Run() error {
	chapter, err := storage.LoadChapter(c.Chapter)
	if err != nil {
		return err
	}

	violations := model.Validate(chapter)
	for _, v := range violations {
		logging.Violation(string(v.Kind), string(v.Severity), v.Entity, v.Message)
		fmt.Println(v)
	}
	if len(violations) == 0 {
		fmt.Printf("%s: no findings\n", chapter.Reference())
		return nil
	}

	if model.HasFatal(violations) {
		return fmt.Errorf("%s: fatal findings", chapter.Reference())
	}
	if c.Strict {
		for _, v := range violations {
			if v.Severity == model.SeverityError {
				return fmt.Errorf("%s: error findings in strict mode", chapter.Reference())
			}
		}
	}
	return nil
}

// RenderCmd renders a chapter record to print HTML.
type RenderCmd struct {
	geometryFlags
	Chapter string `arg:"" help:"Chapter JSON to render" type:"existingfile"`
	Out     string `name:"out" short:"o" required:"" help:"Output HTML path"`
	Archive string `name:"archive" help:"Also archive the chapter into this SQLite database"`
}

func (c *RenderCmd) Run() error {
	chapter, err := storage.LoadChapter(c.Chapter)
	if err != nil {
		return err
	}
	if reportViolations(chapter) {
		return fmt.Errorf("%s: fatal findings, refusing to render", chapter.Reference())
	}

	doc, err := layout.Layout(chapter, c.geometry())
	if err != nil {
		logging.StageError("layout", err, "chapter", chapter.Reference())
		return err
	}
	if err := os.WriteFile(c.Out, []byte(doc.HTML()), 0644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	logging.LayoutRendered(chapter.Reference(), c.Style, len(doc.Panel))

	if c.Archive != "" {
		if err := archiveChapter(c.Archive, chapter); err != nil {
			return err
		}
	}

	fmt.Printf("Rendered %s to %s (%d panel entries)\n", chapter.Reference(), c.Out, len(doc.Panel))
	return nil
}

func archiveChapter(path string, chapter *model.Chapter) error {
	archive, err := storage.OpenArchive(path)
	if err != nil {
		return err
	}
	defer archive.Close()
	return archive.Put(chapter)
}

// PipelineCmd runs extraction, validation, and rendering in one pass.
type PipelineCmd struct {
	rulesFlag
	geometryFlags
	Markup  string `arg:"" help:"Saved chapter markup (HTML file)" type:"existingfile"`
	Out     string `name:"out" short:"o" required:"" help:"Output HTML path"`
	JSON    string `name:"json" help:"Also save the chapter record as JSON"`
	Archive string `name:"archive" help:"Also archive the chapter into this SQLite database"`
}

func (c *PipelineCmd) Run() error {
	runID := uuid.NewString()
	ctx := logging.WithRunID(context.Background(), runID)
	logging.InfoContext(ctx, "pipeline started", "input", c.Markup)

	rules, err := c.load()
	if err != nil {
		return err
	}
	chapter, err := extractChapter(c.Markup, rules)
	if err != nil {
		logging.StageError("extract", err, "input", c.Markup)
		return err
	}
	if reportViolations(chapter) {
		return fmt.Errorf("%s: fatal findings, refusing to render", chapter.Reference())
	}

	doc, err := layout.Layout(chapter, c.geometry())
	if err != nil {
		logging.StageError("layout", err, "chapter", chapter.Reference())
		return err
	}
	if err := os.WriteFile(c.Out, []byte(doc.HTML()), 0644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	logging.LayoutRendered(chapter.Reference(), c.Style, len(doc.Panel))

	if c.JSON != "" {
		if err := storage.SaveChapter(chapter, c.JSON); err != nil {
			return err
		}
	}
	if c.Archive != "" {
		if err := archiveChapter(c.Archive, chapter); err != nil {
			return err
		}
	}

	logging.InfoContext(ctx, "pipeline finished", "chapter", chapter.Reference())
	fmt.Printf("Rendered %s to %s\n", chapter.Reference(), c.Out)
	return nil
}

// PreviewCmd serves a rendered chapter over HTTP with live reload,
// re-running the pipeline whenever the markup file changes on disk.
type PreviewCmd struct {
	rulesFlag
	geometryFlags
	Markup string `arg:"" help:"Saved chapter markup (HTML file)" type:"existingfile"`
	Addr   string `name:"addr" default:"127.0.0.1:8080" help:"Listen address"`
}

func (c *PreviewCmd) Run() error {
	rules, err := c.load()
	if err != nil {
		return err
	}

	render := func() (string, string, error) {
		chapter, err := extractChapter(c.Markup, rules)
		if err != nil {
			return "", "", err
		}
		if reportViolations(chapter) {
			return "", "", fmt.Errorf("%s: fatal findings", chapter.Reference())
		}
		doc, err := layout.Layout(chapter, c.geometry())
		if err != nil {
			return "", "", err
		}
		return chapter.Reference(), doc.HTML(), nil
	}

	reference, page, err := render()
	if err != nil {
		return err
	}

	server := preview.NewServer(c.Addr)
	server.SetPage(reference, page)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go watchMarkup(ctx, c.Markup, func() {
		reference, page, err := render()
		if err != nil {
			logging.StageError("preview", err, "input", c.Markup)
			return
		}
		server.SetPage(reference, page)
	})

	logging.ServerStartup("preview", "http", addrPort(c.Addr))
	fmt.Printf("Preview at http://%s/\n", c.Addr)
	return server.ListenAndServe(ctx)
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("studypress version %s (sqlite driver: %s)\n", version, storage.DriverType())
	return nil
}

func initLogging() {
	level := map[string]logging.Level{
		"debug": logging.LevelDebug,
		"info":  logging.LevelInfo,
		"warn":  logging.LevelWarn,
		"error": logging.LevelError,
	}[CLI.LogLevel]

	format := logging.FormatText
	if CLI.LogFormat == "json" {
		format = logging.FormatJSON
	}
	logging.InitLogger(level, format)
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("studypress"),
		kong.Description("StudyPress - study-edition chapter extraction and print layout"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	initLogging()
	err := ctx.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		ctx.FatalIfErrorf(err)
	}
}
