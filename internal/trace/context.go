package trace

import "context"

// ctxState - трассировщик и самый вложенный спан, открытый через Start.
type ctxState struct {
	tracer Tracer
	parent uint64
}

type ctxKey struct{}

func stateOf(ctx context.Context) ctxState {
	if ctx != nil {
		if st, ok := ctx.Value(ctxKey{}).(ctxState); ok {
			return st
		}
	}
	return ctxState{tracer: Nop}
}

// Attach returns ctx carrying t; spans started from it become roots.
func Attach(ctx context.Context, t Tracer) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, ctxKey{}, ctxState{tracer: t})
}

// TracerFrom returns the tracer set by Attach, or Nop.
func TracerFrom(ctx context.Context) Tracer {
	return stateOf(ctx).tracer
}

// ParentFrom returns the innermost span opened by Start, 0 at the root.
func ParentFrom(ctx context.Context) uint64 {
	return stateOf(ctx).parent
}

// Start opens a span under the span carried by ctx. A filtered span does not
// become the parent: nested spans attach to the nearest recorded one.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	st := stateOf(ctx)
	sp := Begin(st.tracer, scope, name, st.parent)
	if sp.ID() == 0 {
		return ctx, sp
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey{}, ctxState{tracer: st.tracer, parent: sp.ID()}), sp
}
