package sema

import (
	"context"
	"strings"
	"testing"

	"kiln/internal/ast"
	"kiln/internal/diag"
	"kiln/internal/layout"
	"kiln/internal/lexer"
	"kiln/internal/parser"
	"kiln/internal/source"
	"kiln/internal/types"
)

type moduleSrc struct {
	name string
	text string
}

type checked struct {
	res  Result
	bag  *diag.Bag
	mods []Module
}

// checkModules parses every source as its own module and runs the checker
// over all of them. Parse errors fail the test.
func checkModules(t *testing.T, opts Options, srcs ...moduleSrc) checked {
	t.Helper()
	fs := source.NewFileSet()
	bag := diag.NewBag(100)
	rep := diag.BagReporter{Bag: bag}
	mods := make([]Module, 0, len(srcs))
	for i, s := range srcs {
		id := fs.AddVirtual(s.name+".kn", []byte(s.text))
		toks := lexer.New(fs.Get(id), lexer.Options{Reporter: rep}).Tokenize()
		b := ast.NewBuilder(ast.Hints{})
		pr := parser.ParseFile(fs.Get(id), toks, b, parser.Options{Reporter: rep})
		if bag.Len() != 0 {
			t.Fatalf("parse %s: %s", s.name, messages(bag))
		}
		mods = append(mods, Module{ID: uint32(i + 1), Info: ast.ModuleInfo{Name: s.name}, Builder: b, File: pr.File})
	}
	opts.Reporter = rep
	if opts.Target.PtrSize == 0 {
		opts.Target = layout.X86_64LinuxGNU()
	}
	res := Check(context.Background(), mods, opts)
	return checked{res: res, bag: bag, mods: mods}
}

func checkSource(t *testing.T, src string) checked {
	t.Helper()
	return checkModules(t, Options{}, moduleSrc{name: "main", text: src})
}

func messages(bag *diag.Bag) string {
	var sb strings.Builder
	for _, d := range bag.Items() {
		sb.WriteString(d.Code.ID() + " " + d.Message + "; ")
	}
	return sb.String()
}

// global returns the type of a top-level name of the first module.
func (c checked) global(t *testing.T, name string) types.TyKind {
	t.Helper()
	id, ok := c.res.Table.Global(c.mods[0].ID, name)
	if !ok {
		t.Fatalf("no global %q", name)
	}
	return c.res.Types.Kind(c.res.Table.Get(id).Ty)
}

func (c checked) display(t *testing.T, name string) string {
	t.Helper()
	return c.res.Types.Display(c.global(t, name))
}

func (c checked) noErrors(t *testing.T) {
	t.Helper()
	if c.bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %s", messages(c.bag))
	}
}

func TestMismatchedReturnReportsOnce(t *testing.T) {
	src := "fn f() -> i32 { true }"
	c := checkSource(t, src)
	items := c.bag.Items()
	if len(items) != 1 {
		t.Fatalf("want exactly one diagnostic, got: %s", messages(c.bag))
	}
	d := items[0]
	if d.Code != diag.SemaTypeMismatch {
		t.Fatalf("code = %v, want %v", d.Code, diag.SemaTypeMismatch)
	}
	if !strings.Contains(d.Message, "`i32`") || !strings.Contains(d.Message, "`bool`") {
		t.Errorf("message %q must name both types", d.Message)
	}
	if want := uint32(strings.Index(src, "true")); d.Primary.Start != want {
		t.Errorf("primary starts at %d, want %d (the trailing expression)", d.Primary.Start, want)
	}
	if len(d.Notes) != 1 || d.Notes[0].Span.Start != uint32(strings.Index(src, "i32")) {
		t.Errorf("notes = %+v, want one note at the return type", d.Notes)
	}
}

func TestDuplicateGlobal(t *testing.T) {
	src := "let a = 1;\nlet a = 2;"
	c := checkSource(t, src)
	items := c.bag.Items()
	if len(items) != 1 || items[0].Code != diag.SemaDuplicateSymbol {
		t.Fatalf("want one duplicate symbol error, got: %s", messages(c.bag))
	}
	if len(items[0].Notes) != 1 || items[0].Notes[0].Span.Start != uint32(strings.Index(src, "a")) {
		t.Errorf("notes = %+v, want the first definition", items[0].Notes)
	}
}

func TestGlobalTypes(t *testing.T) {
	c := checkSource(t, `
let i = 1;
let f = 2.5;
let small: u8 = 3;
let sum = i + 4;
let flag = i < 2 && true;
let s = "hi";
let arr = .[1, 2, 3];
let tup = (1, true);
let wide = small + 1000 as u16;
fn add(a: i64, b: i64) -> i64 { a + b }
let total = add(1, b: 2);
`)
	c.noErrors(t)
	tests := []struct {
		name string
		want string
	}{
		{"i", "i32"},
		{"f", "f32"},
		{"small", "u8"},
		{"sum", "i32"},
		{"flag", "bool"},
		{"s", "[]u8"},
		{"arr", "[3]i32"},
		{"tup", "(i32, bool)"},
		{"wide", "u16"},
		{"add", "fn(i64, i64) -> i64"},
		{"total", "i64"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.display(t, tt.name); got != tt.want {
				t.Errorf("type of %s = %s, want %s", tt.name, got, tt.want)
			}
		})
	}
}

func TestRecursionAndForwardReferences(t *testing.T) {
	c := checkSource(t, `
fn fact(n: i32) -> i32 {
	if n <= 1 { 1 } else { n * fact(n - 1) }
}
let early = later() + 1;
fn later() -> i64 { 2 }
type Node = struct { value: i32, next: *Node };
let size = @size_of(Node);
`)
	c.noErrors(t)
	if got := c.display(t, "early"); got != "i64" {
		t.Errorf("early = %s, want i64", got)
	}
	if got := c.global(t, "Node"); got.Kind != types.KindType || got.Elem.Kind != types.KindStruct {
		t.Fatalf("Node = %s, want a struct type", c.res.Types.Display(got))
	}
}

func TestSelfReference(t *testing.T) {
	c := checkSource(t, "let a = a + 1;\nlet b = a;")
	items := c.bag.Items()
	if len(items) != 1 || items[0].Code != diag.SemaCyclicDeclaration {
		t.Fatalf("want one cycle error, got: %s", messages(c.bag))
	}
	if got := c.global(t, "a").Kind; got != types.KindUnknown {
		t.Errorf("a = %v, want unknown after the failed declaration", got)
	}
}

func TestModules(t *testing.T) {
	util := moduleSrc{name: "util", text: "let secret = 1;\npub let open: u16 = 2;\npub fn twice(x: i32) -> i32 { x * 2 }"}

	t.Run("member", func(t *testing.T) {
		c := checkModules(t, Options{}, moduleSrc{name: "main", text: "use util;\nlet a = util.open;\nlet b = util.twice(3);"}, util)
		c.noErrors(t)
		if got := c.display(t, "a"); got != "u16" {
			t.Errorf("a = %s, want u16", got)
		}
		if got := c.display(t, "b"); got != "i32" {
			t.Errorf("b = %s, want i32", got)
		}
	})
	t.Run("private", func(t *testing.T) {
		c := checkModules(t, Options{}, moduleSrc{name: "main", text: "use util;\nlet a = util.secret;"}, util)
		items := c.bag.Items()
		if len(items) != 1 || items[0].Code != diag.SemaPrivateSymbol {
			t.Fatalf("want one private symbol error, got: %s", messages(c.bag))
		}
	})
	t.Run("path", func(t *testing.T) {
		c := checkModules(t, Options{}, moduleSrc{name: "main", text: "use util.open;\nuse util.twice: dbl;\nlet a = open;\nlet b = dbl(1);"}, util)
		c.noErrors(t)
		if got := c.display(t, "b"); got != "i32" {
			t.Errorf("b = %s, want i32", got)
		}
	})
	t.Run("wildcard", func(t *testing.T) {
		c := checkModules(t, Options{}, moduleSrc{name: "main", text: "use util.?;\nlet a = twice(open as i32);"}, util)
		c.noErrors(t)
	})
	t.Run("wildcard skips private", func(t *testing.T) {
		c := checkModules(t, Options{}, moduleSrc{name: "main", text: "use util.?;\nlet a = secret;"}, util)
		items := c.bag.Items()
		if len(items) != 1 || items[0].Code != diag.SemaUnresolvedSymbol {
			t.Fatalf("want one unresolved error, got: %s", messages(c.bag))
		}
	})
	t.Run("missing member", func(t *testing.T) {
		c := checkModules(t, Options{}, moduleSrc{name: "main", text: "use util;\nlet a = util.nope;"}, util)
		items := c.bag.Items()
		if len(items) != 1 || items[0].Code != diag.SemaUnresolvedSymbol {
			t.Fatalf("want one unresolved error, got: %s", messages(c.bag))
		}
	})
}

func TestUnusedLocals(t *testing.T) {
	c := checkModules(t, Options{WarnUnused: true}, moduleSrc{name: "main", text: "fn f(a: i32) -> i32 {\n\tlet b = 1;\n\tlet _c = 2;\n\ta\n}"})
	items := c.bag.Items()
	if len(items) != 1 || items[0].Code != diag.SemaUnusedBinding || items[0].Severity != diag.SevWarning {
		t.Fatalf("want one unused warning, got: %s", messages(c.bag))
	}
	if !strings.Contains(items[0].Message, "`b`") {
		t.Errorf("message = %q", items[0].Message)
	}
}
