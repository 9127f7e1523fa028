package driver

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"fortio.org/safecast"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"kiln/internal/ast"
	"kiln/internal/diag"
	"kiln/internal/lexer"
	"kiln/internal/parser"
	"kiln/internal/project"
	"kiln/internal/source"
	"kiln/internal/trace"
)

const defaultMaxDiagnostics = 100

// ParseStatus - итог задачи разбора одного модуля.
type ParseStatus uint8

const (
	NewModule ParseStatus = iota
	AlreadyParsed
	ParserFailed
	LexerFailed
)

func (s ParseStatus) String() string {
	switch s {
	case NewModule:
		return "new"
	case AlreadyParsed:
		return "already parsed"
	case ParserFailed:
		return "parser failed"
	case LexerFailed:
		return "lexer failed"
	}
	return "unknown"
}

// ParsedModule - результат разбора одного файла.
type ParsedModule struct {
	ID      uint32 // назначается после сбора, по отсортированным путям
	Status  ParseStatus
	Info    ast.ModuleInfo
	FileID  source.FileID
	Builder *ast.Builder
	File    ast.FileID
	Imports []ast.ModuleInfo
}

// Workspace - все модули, достижимые из входного файла.
type Workspace struct {
	Project    *Project
	FileSet    *source.FileSet
	Modules    []*ParsedModule // по возрастанию ID
	Bag        *diag.Bag
	TotalLines int
}

type WorkspaceOptions struct {
	// Jobs ограничивает число одновременно работающих парсеров; 0 - GOMAXPROCS.
	Jobs           int
	MaxDiagnostics int
	Tracer         trace.Tracer
	Progress       ProgressSink
}

// parseCache - единственная структура, которую меняют несколько воркеров.
// Захват пути и слияние диагностик идут под одним мьютексом; чтение файла,
// лексинг и разбор выполняются без блокировки.
type parseCache struct {
	mu         sync.Mutex
	parsed     map[string]struct{}
	bag        *diag.Bag
	totalLines int
}

// claim атомарно проверяет и помечает путь: true только для первого вызова.
func (c *parseCache) claim(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.parsed[path]; ok {
		return false
	}
	c.parsed[path] = struct{}{}
	return true
}

func (c *parseCache) record(bag *diag.Bag, lines int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	mergeCapped(c.bag, bag.Items())
	c.totalLines += lines
}

type workspaceParser struct {
	ctx       context.Context
	fs        *source.FileSet
	resolver  *project.Resolver
	cache     *parseCache
	sem       *semaphore.Weighted
	group     *errgroup.Group
	out       chan<- ParsedModule
	opts      WorkspaceOptions
	maxErrors uint
}

// ParseWorkspace разбирает входной модуль и всё, что он импортирует.
// Каждый файл разбирается в своей задаче; задача, встретившая новый `use`,
// сама ставит в группу задачу для импортируемого файла и не ждёт её.
// Результаты идут по каналу одному сборщику; конец работы определяется
// через Wait группы, а не подсчётом задач.
func ParseWorkspace(ctx context.Context, proj *Project, opts WorkspaceOptions) (*Workspace, error) {
	if opts.MaxDiagnostics <= 0 {
		opts.MaxDiagnostics = defaultMaxDiagnostics
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	maxErrors, err := safecast.Conv[uint](opts.MaxDiagnostics)
	if err != nil {
		return nil, err
	}
	resolver, err := project.NewResolver(proj.Root, proj.Std)
	if err != nil {
		return nil, err
	}

	span := trace.Begin(opts.Tracer, trace.ScopePass, "parse", trace.ParentFrom(ctx))

	fs := source.NewFileSetWithBase(proj.Root)
	cache := &parseCache{
		parsed: make(map[string]struct{}),
		bag:    diag.NewBag(opts.MaxDiagnostics),
	}
	results := make(chan ParsedModule, jobs)
	// группа без лимита: задача должна иметь возможность породить новую,
	// не дожидаясь свободного слота; одновременность ограничивает семафор
	var group errgroup.Group
	w := &workspaceParser{
		ctx:       ctx,
		fs:        fs,
		resolver:  resolver,
		cache:     cache,
		sem:       semaphore.NewWeighted(int64(jobs)),
		group:     &group,
		out:       results,
		opts:      opts,
		maxErrors: maxErrors,
	}

	collected := make(chan []*ParsedModule, 1)
	go func() {
		var mods []*ParsedModule
		for r := range results {
			if r.Status == AlreadyParsed {
				continue
			}
			mods = append(mods, &r)
		}
		collected <- mods
	}()

	w.spawn(resolver.ModuleInfoFor(proj.Entry), span.ID())
	waitErr := group.Wait()
	close(results)
	mods := <-collected
	if waitErr != nil {
		span.End("cancelled")
		return nil, waitErr
	}

	sort.Slice(mods, func(i, j int) bool { return mods[i].Info.Path < mods[j].Info.Path })
	for i, m := range mods {
		id, err := safecast.Conv[uint32](i + 1)
		if err != nil {
			panic(fmt.Errorf("module id overflow: %w", err))
		}
		m.ID = id
	}
	reportDuplicateNames(mods, diag.BagReporter{Bag: cache.bag})

	span.WithExtra("modules", fmt.Sprint(len(mods))).End(fmt.Sprintf("lines=%d", cache.totalLines))
	return &Workspace{
		Project:    proj,
		FileSet:    fs,
		Modules:    mods,
		Bag:        cache.bag,
		TotalLines: cache.totalLines,
	}, nil
}

func (w *workspaceParser) spawn(info ast.ModuleInfo, parent uint64) {
	w.group.Go(func() error {
		if err := w.sem.Acquire(w.ctx, 1); err != nil {
			return err
		}
		defer w.sem.Release(1)
		w.out <- w.parseModule(info, parent)
		return nil
	})
}

func (w *workspaceParser) parseModule(info ast.ModuleInfo, parent uint64) ParsedModule {
	if !w.cache.claim(info.Path) {
		return ParsedModule{Status: AlreadyParsed, Info: info}
	}
	sp := trace.Begin(w.opts.Tracer, trace.ScopeModule, "parse:"+info.Name, parent)
	emit(w.opts.Progress, StageParse, info.Path, StatusWorking)

	bag := diag.NewBag(w.opts.MaxDiagnostics)
	rep := diag.BagReporter{Bag: bag}
	fileID, err := w.fs.Load(info.Path)
	if err != nil {
		// пустой виртуальный файл с тем же путём даёт диагностике место
		fileID = w.fs.AddVirtual(info.Path, nil)
		diag.ReportError(rep, diag.IOLoadFileError, source.Span{File: fileID}, fmt.Sprintf("failed to load file: %v", err)).Emit()
		w.cache.record(bag, 0)
		return w.finish(sp, ParsedModule{Status: ParserFailed, Info: info, FileID: fileID})
	}
	file := w.fs.Get(fileID)

	lx := lexer.New(file, lexer.Options{Reporter: rep})
	toks := lx.Tokenize()
	if lx.ErrorCount() > 0 {
		w.cache.record(bag, file.LineCount())
		return w.finish(sp, ParsedModule{Status: LexerFailed, Info: info, FileID: fileID})
	}

	builder := ast.NewBuilder(ast.Hints{})
	res := parser.ParseFile(file, toks, builder, parser.Options{
		Reporter:  rep,
		Resolver:  w.resolver,
		MaxErrors: w.maxErrors,
	})
	for _, imp := range res.Imports {
		w.spawn(imp, sp.ID())
	}
	w.cache.record(bag, file.LineCount())

	status := NewModule
	if hasSyntaxErrors(bag) {
		status = ParserFailed
	}
	return w.finish(sp, ParsedModule{
		Status:  status,
		Info:    info,
		FileID:  fileID,
		Builder: builder,
		File:    res.File,
		Imports: res.Imports,
	})
}

func (w *workspaceParser) finish(sp *trace.Span, m ParsedModule) ParsedModule {
	status := StatusDone
	if m.Status != NewModule {
		status = StatusError
	}
	emit(w.opts.Progress, StageParse, m.Info.Path, status)
	sp.End(m.Status.String())
	return m
}

// hasSyntaxErrors: ненайденный модуль не мешает проверке остального файла.
func hasSyntaxErrors(bag *diag.Bag) bool {
	for _, d := range bag.Items() {
		if d.Severity == diag.SevError && d.Code >= diag.SynInfo && d.Code < diag.SemaInfo {
			return true
		}
	}
	return false
}

// reportDuplicateNames: два файла с одним именем модуля (например,
// `@import("a.kn")` из разных каталогов) неразличимы в сообщениях.
func reportDuplicateNames(mods []*ParsedModule, rep diag.Reporter) {
	seen := make(map[string]*ParsedModule, len(mods))
	for _, m := range mods {
		prev, dup := seen[m.Info.Name]
		if !dup {
			seen[m.Info.Name] = m
			continue
		}
		diag.ReportWarning(rep, diag.ProjDuplicateModule, source.Span{File: m.FileID},
			fmt.Sprintf("module name `%s` is used by %s and %s", m.Info.Name, prev.Info.Path, m.Info.Path)).Emit()
	}
}

// Checkable возвращает модули без синтаксических ошибок.
func (ws *Workspace) Checkable() []*ParsedModule {
	out := make([]*ParsedModule, 0, len(ws.Modules))
	for _, m := range ws.Modules {
		if m.Status == NewModule {
			out = append(out, m)
		}
	}
	return out
}

// Lookup находит модуль по пути файла.
func (ws *Workspace) Lookup(path string) (*ParsedModule, bool) {
	i := sort.Search(len(ws.Modules), func(i int) bool { return ws.Modules[i].Info.Path >= path })
	if i < len(ws.Modules) && ws.Modules[i].Info.Path == path {
		return ws.Modules[i], true
	}
	return nil, false
}
