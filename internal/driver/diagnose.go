package driver

import (
	"context"
	"errors"
	"fmt"

	"kiln/internal/diag"
	"kiln/internal/layout"
	"kiln/internal/observ"
	"kiln/internal/project"
	"kiln/internal/project/dag"
	"kiln/internal/sema"
	"kiln/internal/source"
	"kiln/internal/trace"
)

type DiagnoseOptions struct {
	Jobs           int
	MaxDiagnostics int
	WarnUnused     bool
	Timings        bool
	Target         layout.Target
	Tracer         trace.Tracer
	Progress       ProgressSink
	// Cache, если задан, хранит диагностики проверки по хешу исходников.
	Cache *DiskCache
}

type DiagnoseResult struct {
	Project   *Project
	FileSet   *source.FileSet
	Workspace *Workspace
	// Check пуст, если проверка не запускалась (ошибка манифеста или попадание в кеш).
	Check   *sema.Result
	Bag     *diag.Bag
	Digest  project.Digest
	Cached  bool
	Timings observ.Report
}

// Diagnose находит проект по пути и проверяет всё рабочее пространство.
// Ошибка манифеста становится диагностикой, а не ошибкой вызова.
func Diagnose(ctx context.Context, path string, opts DiagnoseOptions) (*DiagnoseResult, error) {
	proj, err := LoadProject(path)
	if errors.Is(err, ErrInvalidManifest) {
		bag := diag.NewBag(max(opts.MaxDiagnostics, 1))
		diag.ReportError(diag.BagReporter{Bag: bag}, diag.ProjInvalidManifest, source.Span{}, err.Error()).Emit()
		return &DiagnoseResult{FileSet: source.NewFileSet(), Bag: bag}, nil
	}
	if err != nil {
		return nil, err
	}
	return DiagnoseProject(ctx, proj, opts)
}

func DiagnoseProject(ctx context.Context, proj *Project, opts DiagnoseOptions) (*DiagnoseResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.MaxDiagnostics <= 0 {
		opts.MaxDiagnostics = proj.MaxDiagnostics()
	}
	if opts.MaxDiagnostics <= 0 {
		opts.MaxDiagnostics = defaultMaxDiagnostics
	}
	if opts.Jobs <= 0 {
		opts.Jobs = proj.Jobs()
	}
	if opts.Target.PtrSize == 0 {
		opts.Target = layout.Host()
	}
	var timer *observ.Timer
	if opts.Timings {
		timer = observ.NewTimer()
	}

	if opts.Tracer == nil {
		opts.Tracer = trace.TracerFrom(ctx)
	}
	ctx, span := trace.Start(trace.Attach(ctx, opts.Tracer), trace.ScopeDriver, "diagnose")
	defer span.End("")

	endParse := timer.Begin("parse")
	ws, err := ParseWorkspace(ctx, proj, WorkspaceOptions{
		Jobs:           opts.Jobs,
		MaxDiagnostics: opts.MaxDiagnostics,
		Tracer:         opts.Tracer,
		Progress:       opts.Progress,
	})
	if err != nil {
		return nil, err
	}
	endParse(fmt.Sprintf("modules=%d lines=%d", len(ws.Modules), ws.TotalLines))

	endGraph := timer.Begin("graph")
	order, digest := moduleGraph(ws)
	endGraph("")
	span.WithExtra("digest", digest.Short())

	res := &DiagnoseResult{
		Project:   proj,
		FileSet:   ws.FileSet,
		Workspace: ws,
		Bag:       ws.Bag,
		Digest:    digest,
	}
	key := cacheKey(digest, opts)

	if hit := lookupCache(opts, ws, key); hit != nil {
		endCache := timer.Begin("cache")
		mergeCapped(res.Bag, hit)
		res.Cached = true
		for _, m := range order {
			emit(opts.Progress, StageCache, m.Info.Path, StatusDone)
		}
		endCache(fmt.Sprintf("diags=%d", len(hit)))
	} else {
		endCheck := timer.Begin("check")
		checkBag := diag.NewBag(opts.MaxDiagnostics)
		res.Check = checkModules(ctx, order, checkBag, opts)
		mergeCapped(res.Bag, checkBag.Items())
		endCheck(fmt.Sprintf("diags=%d", checkBag.Len()))
		if opts.Cache != nil && !res.Check.Aborted && ctx.Err() == nil {
			payload := &DiskPayload{Digest: key, Diagnostics: encodeDiagnostics(ws.FileSet, checkBag.Items())}
			for _, m := range ws.Modules {
				payload.Modules = append(payload.Modules, m.Info.Path)
			}
			if err := opts.Cache.Put(key, payload); err != nil {
				span.WithExtra("cache", err.Error())
			}
		}
	}

	res.Bag.Sort()
	if timer != nil {
		res.Timings = timer.Report()
		appendTimingDiagnostic(res.Bag, proj.Entry, ws.TotalLines, res.Timings)
	}
	return res, nil
}

func checkModules(ctx context.Context, order []*ParsedModule, bag *diag.Bag, opts DiagnoseOptions) *sema.Result {
	mods := make([]sema.Module, 0, len(order))
	for _, m := range order {
		emit(opts.Progress, StageCheck, m.Info.Path, StatusWorking)
		mods = append(mods, sema.Module{ID: m.ID, Info: m.Info, Builder: m.Builder, File: m.File})
	}
	result := sema.Check(ctx, mods, sema.Options{
		Reporter:   diag.BagReporter{Bag: bag},
		Tracer:     opts.Tracer,
		Target:     opts.Target,
		WarnUnused: opts.WarnUnused,
	})
	failed := make(map[source.FileID]bool)
	for _, d := range bag.Items() {
		if d.Severity == diag.SevError {
			failed[d.Primary.File] = true
		}
	}
	for _, m := range order {
		status := StatusDone
		if failed[m.FileID] {
			status = StatusError
		}
		emit(opts.Progress, StageCheck, m.Info.Path, status)
	}
	return &result
}

// moduleGraph строит граф импортов, считает хеши модулей и возвращает
// проверяемые модули в порядке "зависимости раньше".
func moduleGraph(ws *Workspace) ([]*ParsedModule, project.Digest) {
	metas := make([]project.ModuleMeta, 0, len(ws.Modules))
	for _, m := range ws.Modules {
		meta := project.ModuleMeta{
			Name: m.Info.Name,
			Path: m.Info.Path,
			Span: source.Span{File: m.FileID},
		}
		if f := ws.FileSet.Get(m.FileID); f != nil {
			meta.ContentHash = f.Hash
		}
		for _, imp := range m.Imports {
			meta.Imports = append(meta.Imports, imp.Path)
		}
		metas = append(metas, meta)
	}
	idx := dag.BuildIndex(metas)
	g, slots := dag.BuildGraph(idx, metas)
	topo := dag.ToposortKahn(g)
	dag.ComputeModuleHashes(g, slots, topo)

	order := make([]*ParsedModule, 0, len(ws.Modules))
	for _, id := range topo.CheckOrder() {
		if m, ok := ws.Lookup(idx.IDToName[id]); ok && m.Status == NewModule {
			order = append(order, m)
		}
	}
	return order, dag.WorkspaceDigest(g, slots)
}

// cacheKey учитывает опции, меняющие набор диагностик проверки.
func cacheKey(digest project.Digest, opts DiagnoseOptions) project.Digest {
	return project.NewHasher().
		Digest(digest).
		Text(fmt.Sprintf("warn_unused=%t", opts.WarnUnused)).
		Text("target=" + opts.Target.Triple).
		Text(fmt.Sprintf("ptr=%d/%d", opts.Target.PtrSize, opts.Target.PtrAlign)).
		Sum()
}

func lookupCache(opts DiagnoseOptions, ws *Workspace, key project.Digest) []*diag.Diagnostic {
	if opts.Cache == nil {
		return nil
	}
	var payload DiskPayload
	ok, err := opts.Cache.Get(key, &payload)
	if err != nil || !ok {
		return nil
	}
	diags, ok := decodeDiagnostics(ws.FileSet, payload.Diagnostics)
	if !ok {
		return nil
	}
	return diags
}

func mergeCapped(dst *diag.Bag, items []*diag.Diagnostic) {
	for _, d := range items {
		dst.Add(d)
	}
}
