package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/docspell/internal/config"
	"github.com/dgallion1/docspell/internal/console"
	"github.com/dgallion1/docspell/internal/langtool"
	"github.com/dgallion1/docspell/internal/parser"
	"github.com/dgallion1/docspell/internal/pipeline"
	"github.com/dgallion1/docspell/internal/spellcheck"
)

// watchDebounce groups the burst of events editors emit on save.
const watchDebounce = 200 * time.Millisecond

type checkFlags struct {
	limit            int
	language         string
	reportDir        string
	ignore           []string
	skip             []string
	singleVisitLists bool
	pretty           bool
	watch            bool
}

func newCheckCmd(opts *rootOptions, stdout, stderr io.Writer) *cobra.Command {
	f := &checkFlags{}
	cmd := &cobra.Command{
		Use:   "check FILE...",
		Short: "Check files and write a spelling mistakes report per document",
		Long: `Check parses each file, walks its document tree and checks every piece
of text. Mistakes are echoed to stdout and written to
<docname>_spelling_mistakes_report.txt in the report directory.

Exit status is 1 when mistakes were found and 2 on any other error.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f.apply(cmd, &opts.cfg)
			if err := opts.cfg.Validate(); err != nil {
				return err
			}
			for _, path := range args {
				if !parser.IsSupportedExtension(path) {
					return fmt.Errorf("unsupported file type: %s", path)
				}
			}

			c, err := newChecker(opts.cfg, opts.log, f.pretty)
			if err != nil {
				return err
			}
			if c.docnames, err = reportNames(args); err != nil {
				return err
			}
			results, err := c.checkAll(cmd.Context(), args)
			if err != nil {
				return err
			}
			err = c.print(results, stdout, stderr)
			if !f.watch {
				return err
			}

			fmt.Fprintln(stderr, console.FormatInfoMessage("watching "+strconv.Itoa(len(args))+" file(s), press Ctrl+C to stop"))
			return c.watch(cmd.Context(), args, func(results []*fileResult) {
				_ = c.print(results, stdout, stderr)
			})
		},
	}
	fl := cmd.Flags()
	fl.IntVarP(&f.limit, "limit", "l", 0, "stop descending once more than this many mistakes are buffered")
	fl.StringVar(&f.language, "lang", "", "language variant, one of "+strings.Join(langtool.SupportedCodes(), ", "))
	fl.StringVarP(&f.reportDir, "report-dir", "o", "", "directory for report files")
	fl.StringSliceVar(&f.ignore, "ignore", nil, "extra words to accept")
	fl.StringSliceVar(&f.skip, "skip", nil, "block contexts not to check (replaces the configured list)")
	fl.BoolVar(&f.singleVisitLists, "single-visit-lists", false, "check list items once instead of twice")
	fl.BoolVar(&f.pretty, "pretty", false, "print findings with highlighted context instead of the report text")
	fl.BoolVarP(&f.watch, "watch", "w", false, "re-check files when they change")
	return cmd
}

// apply lets explicitly set flags override the loaded configuration.
func (f *checkFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	fl := cmd.Flags()
	if fl.Changed("limit") && f.limit > 0 {
		cfg.Limit = f.limit
	}
	if fl.Changed("lang") {
		cfg.Language = f.language
	}
	if fl.Changed("report-dir") {
		cfg.ReportDir = f.reportDir
	}
	if fl.Changed("skip") {
		cfg.SkipContexts = f.skip
	}
	if fl.Changed("single-visit-lists") {
		cfg.SingleVisitLists = f.singleVisitLists
	}
	cfg.IgnoreWords = append(cfg.IgnoreWords, f.ignore...)
}

type checker struct {
	cfg    config.Config
	lang   *langtool.Language
	log    *slog.Logger
	pretty bool

	// docnames overrides the docname of files that would otherwise share
	// a report file, keyed by path as given.
	docnames map[string]string
}

// fileResult is the outcome of checking one file. out holds the report
// text the walker echoed.
type fileResult struct {
	file       string
	out        bytes.Buffer
	mistakes   []spellcheck.Mistake
	reportPath string
	err        error
}

func newChecker(cfg config.Config, log *slog.Logger, pretty bool) (*checker, error) {
	tool, err := cfg.NewTool()
	if err != nil {
		return nil, err
	}
	return &checker{cfg: cfg, lang: tool.Language(), log: log, pretty: pretty}, nil
}

// checkAll checks files concurrently. Each file gets its own walker and
// rule engine; results keep the order of paths.
func (c *checker) checkAll(ctx context.Context, paths []string) ([]*fileResult, error) {
	results := make([]*fileResult, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = c.checkFile(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *checker) checkFile(path string) *fileResult {
	res := &fileResult{file: path}
	f, err := os.Open(path)
	if err != nil {
		res.err = err
		return res
	}
	defer f.Close()

	opts := parser.Options{PDFFallback: c.cfg.PDFFallbackPdftotext}
	if name, ok := c.docnames[path]; ok {
		opts.Attributes = map[string]string{"docname": name}
	}
	walker := spellcheck.New(c.cfg.Spellcheck(&res.out), langtool.NewTool(c.lang), c.log)
	p := pipeline.New(opts, c.log, nil, spellcheck.Extension{Walker: walker})

	_, err = p.Convert(f, path)
	var found *spellcheck.MistakesFoundError
	if errors.As(err, &found) {
		res.mistakes, res.reportPath = found.Mistakes, found.ReportPath
		return res
	}
	res.err = err
	return res
}

// reportNames picks a docname for every file whose base name is shared
// with another file, so each file writes its own report. Such a file is
// named after its path below the deepest directory the group shares:
// a/readme.txt and b/readme.txt become a_readme and b_readme. A file given
// twice, or names that still clash, are an error.
func reportNames(paths []string) (map[string]string, error) {
	abs := make(map[string]string, len(paths))
	given := make(map[string]string, len(paths))
	groups := make(map[string][]string)
	for _, p := range paths {
		a, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		if prev, ok := given[a]; ok {
			return nil, fmt.Errorf("%s and %s are the same file", prev, p)
		}
		given[a] = p
		abs[p] = a
		name := baseDocname(a)
		groups[name] = append(groups[name], p)
	}

	names := make(map[string]string)
	for _, group := range groups {
		if len(group) < 2 {
			continue
		}
		root := filepath.Dir(abs[group[0]])
		for _, p := range group[1:] {
			for !strings.HasPrefix(abs[p], root+string(filepath.Separator)) && root != filepath.Dir(root) {
				root = filepath.Dir(root)
			}
		}
		for _, p := range group {
			rel, err := filepath.Rel(root, abs[p])
			if err != nil {
				return nil, err
			}
			rel = strings.TrimSuffix(rel, filepath.Ext(rel))
			names[p] = strings.ReplaceAll(filepath.ToSlash(rel), "/", "_")
		}
	}

	owner := make(map[string]string, len(paths))
	for _, p := range paths {
		name, ok := names[p]
		if !ok {
			name = baseDocname(abs[p])
		}
		if prev, ok := owner[name]; ok {
			return nil, fmt.Errorf("%s and %s would both write %s", prev, p, spellcheck.ReportFileName(name))
		}
		owner[name] = p
	}
	return names, nil
}

// baseDocname is the docname the parsers derive from a file name.
func baseDocname(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// print writes findings to stdout and a per-file summary to stderr. It
// returns an error wrapping spellcheck.ErrMistakesFound when any file had
// mistakes, or a plain error when any file could not be checked.
func (c *checker) print(results []*fileResult, stdout, stderr io.Writer) error {
	var failed, withMistakes int
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		if c.pretty {
			for _, m := range r.mistakes {
				fmt.Fprint(stdout, console.FormatDiagnostic(diagnostic(m)))
			}
		} else {
			stdout.Write(r.out.Bytes())
		}

		switch {
		case r.err != nil:
			failed++
			fmt.Fprintln(stderr, console.FormatErrorMessage(fmt.Sprintf("%s: %v", r.file, r.err)))
			rows = append(rows, []string{r.file, "-", "error"})
		case len(r.mistakes) > 0:
			withMistakes++
			fmt.Fprintln(stderr, console.FormatWarningMessage(fmt.Sprintf("%s: %d potential spelling mistakes, see %s",
				r.file, len(r.mistakes), console.ToRelativePath(r.reportPath))))
			rows = append(rows, []string{r.file, strconv.Itoa(len(r.mistakes)), console.ToRelativePath(r.reportPath)})
		default:
			fmt.Fprintln(stderr, console.FormatSuccessMessage(r.file+": no spelling mistakes"))
			rows = append(rows, []string{r.file, "0", ""})
		}
	}
	if len(results) > 1 {
		fmt.Fprint(stderr, console.RenderTable(console.TableConfig{
			Title:   "Summary",
			Headers: []string{"File", "Mistakes", "Report"},
			Rows:    rows,
		}))
	}

	switch {
	case failed > 0:
		return fmt.Errorf("%d of %d files could not be checked", failed, len(results))
	case withMistakes > 0:
		return fmt.Errorf("%d of %d files have spelling mistakes: %w", withMistakes, len(results), spellcheck.ErrMistakesFound)
	}
	return nil
}

func diagnostic(m spellcheck.Mistake) console.Diagnostic {
	d := console.Diagnostic{
		Type:    "warning",
		Message: m.Match.Message,
		Context: m.Text,
		Start:   m.Match.FromPos,
		End:     m.Match.ToPos,
	}
	if loc := m.Location.OrUnavailable(); loc.IsAvailable() {
		d.Position = console.Position{File: loc.File(), Line: loc.LineNumber()}
	}
	if len(m.Match.SuggestedReplacements) > 0 {
		d.Hint = "did you mean " + strings.Join(m.Match.SuggestedReplacements, ", ")
	}
	return d
}

// watch re-checks files as they change until ctx is done. Directories are
// watched rather than files so that editors replacing a file on save are
// still seen.
func (c *checker) watch(ctx context.Context, paths []string, onResults func([]*fileResult)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer w.Close()

	watched := make(map[string]string, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		watched[abs] = p
		if dir := filepath.Dir(abs); !dirs[dir] {
			if err := w.Add(dir); err != nil {
				return fmt.Errorf("watch %s: %w", dir, err)
			}
			dirs[dir] = true
		}
	}

	pending := make(map[string]bool)
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if orig, ok := watched[filepath.Clean(ev.Name)]; ok {
				c.log.Debug("file changed", "file", orig, "op", ev.Op.String())
				pending[orig] = true
				fire = time.After(watchDebounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			c.log.Warn("file watcher error", "error", err)
		case <-fire:
			fire = nil
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			clear(pending)
			slices.Sort(changed)
			results, err := c.checkAll(ctx, changed)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			onResults(results)
		}
	}
}
