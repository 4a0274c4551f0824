package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// layoutFlags select and adjust the layout preset.
type layoutFlags struct {
	style  string
	margin string
	font   string
}

// contentFlags control what the renderer adds to the document.
type contentFlags struct {
	toc      bool
	tocTitle string
	harvard  bool
	fetch    bool
	strict   bool
}

// engineFlags configure the PDF backend.
type engineFlags struct {
	engine  string
	timeout string
}

// assetFlags select a CSS add-on.
type assetFlags struct {
	css       string // add-on name, file path or inline CSS
	assetPath string // directory holding styles/*.css
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common        commonFlags
	output        string
	workers       int
	format        string
	nameFromTitle bool
	layout        layoutFlags
	content       contentFlags
	engine        engineFlags
	assets        assetFlags
}

// reviewFlags holds all flags for the review command.
type reviewFlags struct {
	common   commonFlags
	pages    int
	model    string
	envFile  string
	json     bool
	minScore float64
	timeout  string
	layout   layoutFlags
	content  contentFlags
	assets   assetFlags
}

// stylesFlags holds flags for the styles command.
type stylesFlags struct {
	assetPath string
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs and timing")
}

// addLayoutFlags adds layout flags to a FlagSet.
func addLayoutFlags(fs *flag.FlagSet, f *layoutFlags) {
	fs.StringVarP(&f.style, "layout", "l", "", "layout: business, academic, novel, modern, classic")
	fs.StringVar(&f.margin, "margin", "", "page margin as a CSS length (e.g. 2cm, 1in)")
	fs.StringVar(&f.font, "font", "", "font family for all text")
}

// addContentFlags adds content flags to a FlagSet.
func addContentFlags(fs *flag.FlagSet, f *contentFlags) {
	fs.BoolVar(&f.toc, "toc", false, "add a table of contents")
	fs.StringVar(&f.tocTitle, "toc-title", "", "table of contents heading")
	fs.BoolVar(&f.harvard, "harvard", false, "rewrite citations in Harvard style")
	fs.BoolVar(&f.fetch, "fetch-images", false, "download remote images")
	fs.BoolVar(&f.strict, "strict", false, "fail on dangling image references")
}

// addEngineFlags adds PDF engine flags to a FlagSet.
func addEngineFlags(fs *flag.FlagSet, f *engineFlags) {
	fs.StringVarP(&f.engine, "engine", "e", "", "PDF engine: chrome, fpdf")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "page load timeout (e.g. 30s, 2m)")
}

// addAssetFlags adds CSS add-on flags to a FlagSet.
func addAssetFlags(fs *flag.FlagSet, f *assetFlags) {
	fs.StringVar(&f.css, "css", "", "CSS add-on name, .css file or inline CSS")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")
}

// newConvertFlagSet registers every convert flag into a new FlagSet.
func newConvertFlagSet(f *convertFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringVarP(&f.format, "format", "f", "", "output format: pdf, docx, html, md")
	fs.BoolVar(&f.nameFromTitle, "name-from-title", false, "name outputs after the document title")

	addCommonFlags(fs, &f.common)
	addLayoutFlags(fs, &f.layout)
	addContentFlags(fs, &f.content)
	addEngineFlags(fs, &f.engine)
	addAssetFlags(fs, &f.assets)
	return fs
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string) (*convertFlags, []string, error) {
	f := &convertFlags{}
	fs := newConvertFlagSet(f)
	if err := fs.Parse(args); err != nil {
		return nil, nil, usageError(err)
	}
	return f, fs.Args(), nil
}

// parseReviewFlags parses review command flags and returns positional args.
func parseReviewFlags(args []string) (*reviewFlags, []string, error) {
	f := &reviewFlags{}
	fs := flag.NewFlagSet("review", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.IntVarP(&f.pages, "pages", "n", 0, "pages to review (0 = config or 3)")
	fs.StringVarP(&f.model, "model", "m", "", "Gemini model name")
	fs.StringVar(&f.envFile, "env-file", ".env", "file to read "+apiKeyEnv+" from")
	fs.BoolVar(&f.json, "json", false, "print reviews as JSON")
	fs.Float64Var(&f.minScore, "min-score", 0, "exit with an error below this average score")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "page load timeout (e.g. 30s, 2m)")

	addCommonFlags(fs, &f.common)
	addLayoutFlags(fs, &f.layout)
	addContentFlags(fs, &f.content)
	addAssetFlags(fs, &f.assets)

	if err := fs.Parse(args); err != nil {
		return nil, nil, usageError(err)
	}
	return f, fs.Args(), nil
}

// parseStylesFlags parses styles command flags.
func parseStylesFlags(args []string) (*stylesFlags, error) {
	f := &stylesFlags{}
	fs := flag.NewFlagSet("styles", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")
	if err := fs.Parse(args); err != nil {
		return nil, usageError(err)
	}
	return f, nil
}
