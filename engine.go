// Package formfill stamps applicant data onto a fixed-layout PDF form.
//
// An Engine resolves the input record's derived fields, loads the mapping
// that says where each field goes, imports the template PDF and draws the
// values on top of it:
//
//	eng := formfill.New(formfill.WithRoot("/srv/form"))
//	res, err := eng.Generate(ctx, fields.Record{"name": "홍길동", "autopay_method": "card"})
//
// Missing fonts and unparseable mappings degrade the output instead of
// failing it; each degradation is logged and reported in Result.Warnings.
package formfill

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"maps"
	"path/filepath"

	"github.com/lvillar/formfill/assets"
	"github.com/lvillar/formfill/fields"
	"github.com/lvillar/formfill/fonts"
	"github.com/lvillar/formfill/mapping"
	"github.com/lvillar/formfill/pageops"
	"github.com/lvillar/formfill/pdfinfo"
	"github.com/lvillar/formfill/render"
)

// Engine renders filled forms. It holds only read-only configuration and
// is safe for concurrent use.
type Engine struct {
	cfg    *config
	loader *assets.Loader
	log    *slog.Logger
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &Engine{
		cfg:    cfg,
		loader: assets.NewLoader(cfg.cache, cfg.logger),
		log:    cfg.logger,
	}
}

// Close releases resources held by the asset cache, such as a redis
// connection pool. The Engine must not be used afterwards.
func (e *Engine) Close() error {
	if c, ok := e.cfg.cache.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Result is a rendered document.
type Result struct {
	PDF      []byte
	Warnings []string
	Plan     *render.Plan
}

// Generate fills the template with rec. rec is not modified.
func (e *Engine) Generate(ctx context.Context, rec fields.Record) (*Result, error) {
	j, err := e.prepare(ctx, rec)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var fontData []byte
	if j.font != nil {
		fontData = j.font.Data()
	}
	out, err := pageops.Overlay(j.template.Data, j.info.Pages, j.plan, fontData)
	if err != nil {
		return nil, newRenderError("overlay", err)
	}
	e.log.DebugContext(ctx, "form rendered",
		"template", j.template.Path,
		"ops", len(j.plan.Ops),
		"bytes", len(out),
		"warnings", len(j.warnings))
	return &Result{PDF: out, Warnings: j.warnings, Plan: j.plan}, nil
}

// Baseline returns the unfilled template named by the current mapping.
func (e *Engine) Baseline(ctx context.Context) ([]byte, error) {
	j := &job{}
	if err := e.loadMapping(ctx, j); err != nil {
		return nil, err
	}
	f, err := e.findTemplate(ctx, j.doc.Meta.PDFPath)
	if err != nil {
		return nil, err
	}
	return f.Data, nil
}

// Mapping loads and normalizes the mapping file. A missing or, unless
// strict, unparseable file yields an empty mapping and a warning.
func (e *Engine) Mapping(ctx context.Context) (*mapping.Document, []string, error) {
	j := &job{}
	if err := e.loadMapping(ctx, j); err != nil {
		return nil, nil, err
	}
	return j.doc, j.warnings, nil
}

// job carries one request through the pipeline.
type job struct {
	record       fields.Record
	doc          *mapping.Document
	mappingPath  string
	mappingFound bool
	template     *assets.File
	info         *pdfinfo.Info
	font         *fonts.TrueType
	fontPath     string
	fontErr      error
	rctx         *render.Context
	plan         *render.Plan
	warnings     []string
}

func (e *Engine) warn(ctx context.Context, j *job, msg string, args ...any) {
	j.warnings = append(j.warnings, msg)
	e.log.WarnContext(ctx, msg, args...)
}

// noteCache records a cache failure the loader has already logged.
func (e *Engine) noteCache(j *job, f *assets.File) {
	if f.CacheErr != nil {
		j.warnings = append(j.warnings, fmt.Sprintf("asset cache bypassed for %s: %v", f.Path, f.CacheErr))
	}
}

func (e *Engine) prepare(ctx context.Context, rec fields.Record) (*job, error) {
	j := &job{record: fields.Resolve(rec.Clone(), e.cfg.clock())}

	if err := e.loadMapping(ctx, j); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := e.loadTemplate(ctx, j); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.loadFont(ctx, j)

	j.rctx = &render.Context{
		Meta:      j.doc.Meta,
		Pages:     j.info.Pages,
		Default:   fonts.NewCore(),
		WrapBoxes: make(map[string]mapping.WrapBox, len(e.cfg.wrapBoxes)+len(j.doc.Wrap)),
	}
	if j.font != nil {
		j.rctx.Embedded = j.font
	}
	maps.Copy(j.rctx.WrapBoxes, e.cfg.wrapBoxes)
	maps.Copy(j.rctx.WrapBoxes, j.doc.Wrap)

	plan, err := render.Build(j.rctx, j.doc, j.record)
	if err != nil {
		return nil, newRenderError("plan", err)
	}
	for _, w := range plan.Warnings {
		e.warn(ctx, j, w)
	}
	j.plan = plan
	return j, nil
}

func (e *Engine) loadMapping(ctx context.Context, j *job) error {
	path := e.cfg.resolveMappingPath()
	j.mappingPath = path

	f, err := e.loader.Load(ctx, path)
	if errors.Is(err, fs.ErrNotExist) {
		e.warn(ctx, j, "mapping not found; using empty mapping", "path", path)
		j.doc = mapping.Empty()
		return nil
	}
	if err != nil {
		return &ConfigurationError{Resource: "mapping", Path: path, Err: err}
	}
	j.mappingFound = true
	e.noteCache(j, f)

	doc, err := mapping.Normalize(f.Data)
	if err != nil {
		perr := &MappingParseError{Path: path, Err: err}
		if e.cfg.strictMapping {
			return perr
		}
		e.warn(ctx, j, "mapping unparseable; using empty mapping", "path", path, "err", err)
		doc = mapping.Empty()
	}
	j.doc = doc
	return nil
}

func (e *Engine) templateCandidates(name string) []string {
	if name == "" {
		name = mapping.DefaultPDFPath
	}
	cands := assets.Candidates(name, e.cfg.dirs()...)
	if name != mapping.DefaultPDFPath {
		cands = append(cands, filepath.Join(e.cfg.root, mapping.DefaultPDFPath))
	}
	return cands
}

func (e *Engine) findTemplate(ctx context.Context, name string) (*assets.File, error) {
	f, err := e.loader.LoadFirst(ctx, e.templateCandidates(name)...)
	if errors.Is(err, assets.ErrNotFound) {
		e.log.ErrorContext(ctx, "template not found", "name", name, "root", e.cfg.root)
		return nil, &ConfigurationError{Resource: "template", Path: name, Err: ErrTemplateNotFound}
	}
	if err != nil {
		return nil, &ConfigurationError{Resource: "template", Path: name, Err: err}
	}
	return f, nil
}

func (e *Engine) loadTemplate(ctx context.Context, j *job) error {
	f, err := e.findTemplate(ctx, j.doc.Meta.PDFPath)
	if err != nil {
		return err
	}
	e.noteCache(j, f)

	info, err := pdfinfo.Read(f.Data)
	if err != nil {
		return &ConfigurationError{Resource: "template", Path: f.Path, Err: err}
	}
	j.template, j.info = f, info
	return nil
}

// loadFont never fails the request; problems are recorded as warnings.
func (e *Engine) loadFont(ctx context.Context, j *job) {
	path, err := assets.Resolve(e.cfg.fontSearch()...)
	if err != nil {
		j.fontErr = &FontLoadError{Err: ErrFontNotFound}
		e.warn(ctx, j, "font not found; falling back to "+fonts.CoreFamily)
		return
	}
	j.fontPath = path

	f, err := e.loader.Load(ctx, path)
	if err != nil {
		j.fontErr = &FontLoadError{Path: path, Err: err}
		e.warn(ctx, j, "font unreadable; falling back to "+fonts.CoreFamily, "path", path, "err", err)
		return
	}
	e.noteCache(j, f)

	tt, err := fonts.ParseTrueType(filepath.Base(path), f.Data)
	if err != nil {
		j.fontErr = &FontLoadError{Path: path, Err: err}
		e.warn(ctx, j, "font unparseable; falling back to "+fonts.CoreFamily, "path", path, "err", err)
		return
	}
	j.font = tt
}
