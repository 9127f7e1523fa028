package sema

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"kiln/internal/ast"
	"kiln/internal/diag"
	"kiln/internal/layout"
	"kiln/internal/source"
	"kiln/internal/symbols"
	"kiln/internal/trace"
	"kiln/internal/types"
)

// Module is one parsed module handed to the checker. ID must be unique
// within a session; it is what BindingInfo.Module and KindModule refer to.
type Module struct {
	ID      uint32
	Info    ast.ModuleInfo
	Builder *ast.Builder
	File    ast.FileID
}

// Options configure a semantic pass over a workspace.
type Options struct {
	Reporter diag.Reporter
	Tracer   trace.Tracer
	// Table and Types may be shared with an earlier session; nil creates fresh ones.
	Table  *symbols.Table
	Types  *types.Context
	Target layout.Target
	// WarnUnused reports local bindings that are never read.
	WarnUnused bool
}

// ExprKey names an expression across modules.
type ExprKey struct {
	Module uint32
	Expr   ast.ExprID
}

// Result stores semantic artefacts produced by the checker.
type Result struct {
	Types     *types.Context
	Table     *symbols.Table
	ExprTypes map[ExprKey]types.Ty
	Consts    map[ExprKey]*symbols.ConstValue
	// Aborted is set when an internal error stopped the pass.
	Aborted bool
}

// TypeOf returns the normalized type of an expression.
func (r *Result) TypeOf(module uint32, id ast.ExprID) (types.TyKind, bool) {
	ty, ok := r.ExprTypes[ExprKey{Module: module, Expr: id}]
	if !ok {
		return types.Unknown(), false
	}
	return r.Types.Kind(ty), true
}

// ConstOf returns the folded value of an expression, if any.
func (r *Result) ConstOf(module uint32, id ast.ExprID) (*symbols.ConstValue, bool) {
	cv, ok := r.Consts[ExprKey{Module: module, Expr: id}]
	return cv, ok && cv != nil
}

// Check runs name resolution and type inference over every module. Global
// declarations are checked in module order, and on demand when another
// declaration refers to them first.
func Check(ctx context.Context, modules []Module, opts Options) Result {
	res := Result{
		Types:     opts.Types,
		Table:     opts.Table,
		ExprTypes: make(map[ExprKey]types.Ty),
		Consts:    make(map[ExprKey]*symbols.ConstValue),
	}
	if res.Types == nil {
		res.Types = types.NewContext()
	}
	if res.Table == nil {
		res.Table = symbols.NewTable(symbols.Hints{})
	}
	res.Table.InstallPrelude(res.Types)
	if opts.Target.PtrSize == 0 {
		opts.Target = layout.Host()
	}

	span := trace.Begin(opts.Tracer, trace.ScopePass, "sema", 0)
	defer span.End("")

	c := newChecker(ctx, modules, opts, &res)
	c.run(span.ID())
	if !res.Aborted {
		c.reportOverflow()
	}
	if opts.WarnUnused && !res.Aborted {
		c.reportUnused()
	}
	return res
}

type checker struct {
	ctx    context.Context
	tracer trace.Tracer
	tycx   *types.Context
	table  *symbols.Table
	binder *symbols.Binder
	layout *layout.LayoutEngine
	out    diag.Reporter
	// reporter drops follow-up errors of a declaration that already failed.
	reporter diag.Reporter
	result   *Result

	modules []*moduleState
	byID    map[uint32]*moduleState
	byKey   map[string]*moduleState

	cur *frame
}

func newChecker(ctx context.Context, modules []Module, opts Options, res *Result) *checker {
	if ctx == nil {
		ctx = context.Background()
	}
	out := opts.Reporter
	if out == nil {
		out = diag.BagReporter{}
	}
	c := &checker{
		ctx:    ctx,
		tracer: opts.Tracer,
		tycx:   res.Types,
		table:  res.Table,
		layout: layout.New(opts.Target, res.Types),
		out:    out,
		result: res,
		byID:   make(map[uint32]*moduleState, len(modules)),
		byKey:  make(map[string]*moduleState, len(modules)),
	}
	c.reporter = declReporter{c: c}
	c.binder = &symbols.Binder{Table: c.table, Tycx: c.tycx, Reporter: c.reporter, TopLevel: c}
	for _, m := range modules {
		if m.Builder == nil || !m.File.IsValid() {
			continue
		}
		ms := newModuleState(m)
		c.modules = append(c.modules, ms)
		c.byID[m.ID] = ms
		c.byKey[moduleKey(m.Info)] = ms
	}
	return c
}

func moduleKey(info ast.ModuleInfo) string {
	if info.Path != "" {
		return info.Path
	}
	return info.Name
}

func (c *checker) run(parent uint64) {
	defer c.recoverInternal()
	for _, m := range c.modules {
		if c.ctx.Err() != nil {
			return
		}
		sp := trace.Begin(c.tracer, trace.ScopeModule, "sema:"+m.Info.Name, parent)
		for _, item := range m.items {
			c.checkDecl(m, item)
		}
		sp.End("")
	}
}

// recoverInternal turns an internal-error panic into a diagnostic and stops
// the pass. Runtime faults are not ours to hide.
func (c *checker) recoverInternal() {
	r := recover()
	if r == nil {
		return
	}
	err, ok := r.(error)
	var rerr runtime.Error
	if !ok || errors.As(err, &rerr) {
		panic(r)
	}
	c.result.Aborted = true
	at := source.Span{}
	if c.cur != nil {
		at = c.cur.declSpan
	}
	diag.ReportError(c.out, diag.SemaInternal, at, fmt.Sprintf("internal compiler error: %v", err)).Emit()
}

func (c *checker) reportUnused() {
	for _, id := range c.table.Unused() {
		info := c.table.Get(id)
		diag.ReportWarning(c.out, diag.SemaUnusedBinding, info.Span, fmt.Sprintf("unused variable: `%s`", info.Name)).
			WithLabel(fmt.Sprintf("if this is intentional, prefix it with an underscore: `_%s`", info.Name)).
			Emit()
	}
}

// declReporter forwards diagnostics; after the first error of the current
// declaration the rest of that declaration's errors are dropped.
type declReporter struct{ c *checker }

func (r declReporter) Report(d *diag.Diagnostic) {
	if d == nil {
		return
	}
	if f := r.c.cur; f != nil && d.Severity.IsError() {
		if f.failed {
			return
		}
		f.failed = true
	}
	r.c.out.Report(d)
}

// setType records the type of an expression and returns it.
func (c *checker) setType(id ast.ExprID, ty types.Ty) types.Ty {
	c.result.ExprTypes[ExprKey{Module: c.cur.mod.ID, Expr: id}] = ty
	c.cur.tys = append(c.cur.tys, ty)
	return ty
}

func (c *checker) setConst(id ast.ExprID, cv *symbols.ConstValue) {
	if cv == nil {
		return
	}
	c.result.Consts[ExprKey{Module: c.cur.mod.ID, Expr: id}] = cv
}

func (c *checker) constOf(id ast.ExprID) *symbols.ConstValue {
	return c.result.Consts[ExprKey{Module: c.cur.mod.ID, Expr: id}]
}

func (c *checker) bound(k types.TyKind, sp source.Span) types.Ty {
	return c.tycx.Bound(k, sp)
}

func (c *checker) unknown(id ast.ExprID) types.Ty {
	return c.setType(id, c.bound(types.Unknown(), c.span(id)))
}

func (c *checker) span(id ast.ExprID) source.Span {
	return c.cur.mod.exprs.Span(id)
}

// expect checks that found fits where expected is required. A found type
// that widens into expected is accepted without binding anything.
func (c *checker) expect(expected, found types.Ty, at, origin source.Span) bool {
	if c.coerces(found, expected) {
		return true
	}
	if err := c.tycx.UnifyTy(expected, found); err != nil {
		types.ReportUnify(c.reporter, c.tycx, err, types.VarOf(expected), types.VarOf(found), at, origin)
		return false
	}
	return true
}

func (c *checker) coerces(from, to types.Ty) bool {
	f, t := c.tycx.Kind(from), c.tycx.Kind(to)
	if f.IsOpen() || t.IsOpen() {
		return false
	}
	return c.tycx.Coerce(f, t) == types.CoerceToRight
}

// internalf is raised for broken checker invariants; recoverInternal turns
// it into a diagnostic at the pass boundary.
func internalf(format string, args ...any) {
	panic(fmt.Errorf(format, args...))
}
