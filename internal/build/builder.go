package build

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/apidoc/internal/buildstate"
	"git.home.luguber.info/inful/apidoc/internal/config"
	ferrors "git.home.luguber.info/inful/apidoc/internal/foundation/errors"
	"git.home.luguber.info/inful/apidoc/internal/logfields"
	"git.home.luguber.info/inful/apidoc/internal/markdown"
	"git.home.luguber.info/inful/apidoc/internal/metrics"
	"git.home.luguber.info/inful/apidoc/internal/notify"
	"git.home.luguber.info/inful/apidoc/internal/observability"
	"git.home.luguber.info/inful/apidoc/internal/page"
	"git.home.luguber.info/inful/apidoc/internal/site"
)

// Builder renders a documentation tree. A Builder may run several builds
// but not concurrently.
type Builder struct {
	input       string
	output      string
	concurrency int

	site      *site.Site
	assembler *page.Assembler
	settings  buildstate.Settings

	state     *buildstate.Store
	recorder  metrics.Recorder
	publisher notify.Publisher
	logger    *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithState enables incremental builds backed by store.
func WithState(store *buildstate.Store) Option {
	return func(b *Builder) { b.state = store }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(b *Builder) { b.recorder = r }
}

// WithPublisher sets the page event publisher.
func WithPublisher(p notify.Publisher) Option {
	return func(b *Builder) { b.publisher = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// WithOutput overrides the configured output directory.
func WithOutput(dir string) Option {
	return func(b *Builder) {
		if dir != "" {
			b.output = dir
		}
	}
}

// New returns a Builder for cfg rendering against s.
func New(cfg *config.Config, s *site.Site, md *markdown.Renderer, opts ...Option) *Builder {
	b := &Builder{
		input:       cfg.Input,
		output:      cfg.Output,
		concurrency: cfg.Concurrency,
		site:        s,
		recorder:    metrics.NoopRecorder{},
		publisher:   notify.NoopPublisher{},
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.concurrency < 1 {
		b.concurrency = 1
	}
	b.assembler = page.NewAssembler(s, md, b.logger)
	b.settings = settingsOf(s)
	return b
}

// Build renders every page. With force set, stored state is ignored and all
// pages are rendered. The returned error is a CategoryBuild error when any
// page failed; the report is returned either way.
func (b *Builder) Build(ctx context.Context, force bool) (*Report, error) {
	start := time.Now()
	report := &Report{}

	buildID, err := b.beginBuild(ctx, start)
	if err != nil {
		b.recorder.IncBuildOutcome(metrics.BuildFailed)
		return report, err
	}
	report.BuildID = buildID
	ctx = observability.WithBuildID(ctx, buildID)

	stageStart := time.Now()
	files, err := Discover(b.input)
	if err != nil {
		b.recorder.IncBuildOutcome(metrics.BuildFailed)
		return report, err
	}
	b.recorder.ObserveStageDuration("discover", time.Since(stageStart))
	observability.InfoContext(observability.WithStage(ctx, "discover"), b.logger, "Discovered pages", logfields.Count(len(files)))

	if err := os.MkdirAll(b.output, 0o750); err != nil {
		b.recorder.IncBuildOutcome(metrics.BuildFailed)
		return report, ferrors.FileSystemError("create output directory").
			WithCause(err).
			WithContext("path", b.output).
			Build()
	}

	stageStart = time.Now()
	report.Pages = b.renderAll(observability.WithStage(ctx, "render"), files, force)
	b.recorder.ObserveStageDuration("render", time.Since(stageStart))

	report.count()
	report.Duration = time.Since(start)
	b.recorder.ObserveBuildDuration(report.Duration)

	outcome := report.outcome()
	if ctx.Err() != nil {
		outcome = metrics.BuildCanceled
	}
	b.recorder.IncBuildOutcome(outcome)
	b.finishBuild(ctx, report, outcome)

	observability.InfoContext(ctx, b.logger, "Build finished",
		logfields.Count(report.Rendered),
		logfields.Skipped(report.Skipped),
		logfields.Failed(report.Failed),
		logfields.Duration(report.Duration))

	if err := ctx.Err(); err != nil {
		return report, err
	}
	if report.Failed > 0 {
		return report, ferrors.BuildError("pages failed to render").
			WithContext("failed", report.Failed).
			WithContext("pages", strings.Join(report.FailedPages(), ", ")).
			WithContext("build_id", buildID).
			Build()
	}
	return report, nil
}

func (b *Builder) beginBuild(ctx context.Context, start time.Time) (string, error) {
	if b.state == nil {
		return uuid.NewString(), nil
	}
	return b.state.BeginBuild(ctx, start)
}

func (b *Builder) finishBuild(ctx context.Context, r *Report, outcome metrics.BuildOutcomeLabel) {
	if b.state == nil {
		return
	}
	sum := buildstate.Summary{Rendered: r.Rendered, Skipped: r.Skipped, Failed: r.Failed, Outcome: string(outcome)}
	if err := b.state.FinishBuild(context.WithoutCancel(ctx), r.BuildID, time.Now(), sum); err != nil {
		observability.WarnContext(ctx, b.logger, "Failed to store build summary", logfields.Error(err))
	}
}

// renderAll runs the worker pool. Results keep the order of files; pages not
// started before ctx is done are reported as failed with ctx's error.
func (b *Builder) renderAll(ctx context.Context, files []string, force bool) []PageResult {
	results := make([]PageResult, len(files))
	workers := min(b.concurrency, len(files))
	b.recorder.SetWorkers(workers)

	jobs := make(chan int)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = b.renderPage(ctx, files[i], force)
			}
		}()
	}

	next := 0
dispatch:
	for ; next < len(files); next++ {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- next:
		}
	}
	close(jobs)
	wg.Wait()

	for i := next; i < len(files); i++ {
		results[i] = PageResult{
			Name:   page.PageName(files[i]),
			Source: files[i],
			Status: PageFailed,
			Err:    ctx.Err(),
		}
	}
	return results
}

func (b *Builder) renderPage(ctx context.Context, source string, force bool) (res PageResult) {
	start := time.Now()
	name := page.PageName(source)
	ctx = observability.WithPage(ctx, name)
	res = PageResult{Name: name, Source: source, Output: filepath.Join(b.output, name+".html")}

	defer func() {
		res.Duration = time.Since(start)
		b.recorder.ObservePageDuration(res.Duration)
		b.recorder.IncPageResult(res.Status.label())
		b.publish(ctx, res)
	}()

	fail := func(err error) PageResult {
		res.Status, res.Err = PageFailed, err
		cat := ferrors.GetCategory(err)
		attrs := []slog.Attr{logfields.Error(err), logfields.Category(string(cat))}
		// Errors in the page source log at warn level.
		if ferrors.IsPageCategory(cat) {
			observability.WarnContext(ctx, b.logger, "Page failed", attrs...)
		} else {
			observability.ErrorContext(ctx, b.logger, "Page failed", attrs...)
		}
		b.forget(ctx, name)
		return res
	}

	src, err := os.ReadFile(source)
	if err != nil {
		return fail(ferrors.FileSystemError("read page source").
			WithCause(err).
			WithContext("page", name).
			Build())
	}

	fingerprint, err := buildstate.Fingerprint(b.settings, src)
	if err != nil {
		return fail(err)
	}
	if !force && b.unchanged(ctx, name, fingerprint, res.Output) {
		res.Status = PageSkipped
		observability.DebugContext(ctx, b.logger, "Page unchanged")
		return res
	}

	p, err := b.assembler.ToHTML(source, string(src))
	if err != nil {
		return fail(err)
	}
	if err := writeFile(res.Output, p.HTML); err != nil {
		return fail(err)
	}
	if err := writeFile(filepath.Join(b.output, name+".toc.html"), p.TOC.TOC); err != nil {
		return fail(err)
	}

	if b.state != nil {
		buildID := observability.FromContext(ctx).BuildID
		rec := buildstate.PageRecord{Name: name, Fingerprint: fingerprint, Output: res.Output, BuildID: buildID}
		if err := b.state.RecordPage(ctx, rec); err != nil {
			observability.WarnContext(ctx, b.logger, "Failed to record page state", logfields.Error(err))
		}
	}
	res.Status = PageRendered
	observability.DebugContext(ctx, b.logger, "Page rendered", logfields.Path(res.Output))
	return res
}

// unchanged reports whether the stored fingerprint matches and the output
// still exists.
func (b *Builder) unchanged(ctx context.Context, name, fingerprint, output string) bool {
	if b.state == nil {
		return false
	}
	rec, ok, err := b.state.Page(ctx, name)
	if err != nil {
		observability.WarnContext(ctx, b.logger, "Failed to read page state", logfields.Error(err))
		return false
	}
	if !ok || rec.Fingerprint != fingerprint || rec.Output != output {
		return false
	}
	_, err = os.Stat(output)
	return err == nil
}

func (b *Builder) forget(ctx context.Context, name string) {
	if b.state == nil {
		return
	}
	if err := b.state.ForgetPage(context.WithoutCancel(ctx), name); err != nil {
		observability.WarnContext(ctx, b.logger, "Failed to clear page state", logfields.Error(err))
	}
}

func (b *Builder) publish(ctx context.Context, res PageResult) {
	ev := notify.PageEvent{
		BuildID: observability.FromContext(ctx).BuildID,
		Page:    res.Name,
		Status:  notify.Status(res.Status),
	}
	if res.Status == PageRendered {
		ev.Output = res.Output
	}
	if res.Err != nil && !errors.Is(res.Err, context.Canceled) {
		ev.Error = res.Err.Error()
	}
	if err := b.publisher.PublishPage(ctx, ev); err != nil {
		observability.WarnContext(ctx, b.logger, "Failed to publish page event", logfields.Error(err))
	}
}

func writeFile(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil { //nolint:gosec // published pages are world readable
		return ferrors.FileSystemError("write page").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	return nil
}

// settingsOf captures the site inputs that affect every page.
func settingsOf(s *site.Site) buildstate.Settings {
	settings := buildstate.Settings{
		ProductVersion: s.ProductVersion,
		Template:       s.Template,
		GTOC:           s.GTOC,
		APILinks:       s.APILinks,
		EditURLBase:    s.EditURLBase,
		AltDocsHost:    s.AltDocsHost,
		Types:          s.Types.Table(),
	}
	for _, r := range s.Releases {
		v := r.Num
		if r.IsLTS {
			v += " lts"
		}
		settings.Releases = append(settings.Releases, v)
	}
	if len(s.LinksMapper) > 0 {
		settings.LinkOverrides = map[string]string{}
		for pg, labels := range s.LinksMapper {
			for label, url := range labels {
				settings.LinkOverrides[pg+"/"+label] = url
			}
		}
	}
	return settings
}
