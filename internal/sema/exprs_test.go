package sema

import (
	"testing"

	"kiln/internal/diag"
	"kiln/internal/symbols"
)

func TestDiagnostics(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want diag.Code
	}{
		{"unresolved", "let a = b;", diag.SemaUnresolvedSymbol},
		{"if branches", "fn f(c: bool) -> i32 { if c { 1 } else { true } }", diag.SemaTypeMismatch},
		{"declared type", "let a: bool = 1;", diag.SemaTypeMismatch},
		{"assign twice", "fn f() {\n\tlet x = 1;\n\tx = 2;\n}", diag.SemaAssignTwice},
		{"uninitialized", "fn f() -> i32 {\n\tlet x: i32;\n\tif true { x = 1; }\n\tx\n}", diag.SemaUninitialized},
		{"assign through const pointer", "fn f(p: *i32) {\n\tp.* = 1;\n}", diag.SemaAssignImmutable},
		{"assign to function", "fn g() {}\nfn f() {\n\tg = g;\n}", diag.SemaAssignImmutable},
		{"mut ref of immutable", "fn f() {\n\tlet x = 1;\n\tlet p = &mut x;\n}", diag.SemaMutRefImmutable},
		{"capture", "fn f() {\n\tlet x = 1;\n\tlet g = fn() -> i32 { x };\n}", diag.SemaIllegalCapture},
		{"break outside loop", "fn f() {\n\tbreak;\n}", diag.SemaBreakOutsideLoop},
		{"invalid cast", "let a = true as f32;", diag.SemaInvalidCast},
		{"not callable", "let a = 1;\nlet b = a();", diag.SemaNotCallable},
		{"argument count", "fn g(a: i32) {}\nlet b = g(1, 2);", diag.SemaArgCount},
		{"unknown named argument", "fn g(a: i32) {}\nlet b = g(c: 1);", diag.SemaUnknownNamedArg},
		{"no field", "type P = struct { x: i32 };\nlet p = P{x: 1};\nlet v = p.y;", diag.SemaNoField},
		{"missing field", "type P = struct { x: i32, y: i32 };\nlet p = P{x: 1};", diag.SemaMissingField},
		{"duplicate literal field", "type P = struct { x: i32 };\nlet p = P{x: 1, x: 2};", diag.SemaDuplicateField},
		{"duplicate declared field", "type P = struct { x: i32, x: bool };", diag.SemaDuplicateField},
		{"duplicate parameter", "fn f(a: i32, a: i32) {}", diag.SemaDuplicateParameter},
		{"array length not const", "fn f(n: i32) {\n\tlet a: [n]i32 = .[0; 3];\n}", diag.SemaNotConst},
		{"not indexable", "let a = 1;\nlet b = a[0];", diag.SemaNotIndexable},
		{"index out of bounds", "let a = .[1, 2];\nlet b = a[5];", diag.SemaNotIndexable},
		{"bad operand", "let a = -true;", diag.SemaInvalidOperand},
		{"not a type", "let x = 1;\nlet y: x = 2;", diag.SemaNotAType},
		{"recursive value type", "type Bad = struct { inner: Bad };\nlet s = @size_of(Bad);", diag.SemaNotConst},
		{"partial field missing", "let getx = fn(q) -> i32 { q.x };\nlet v = getx(.{y: 1});", diag.SemaTypeMismatch},
		{"literal overflow", "let x: u8 = 300;", diag.SemaConstOverflow},
		{"folded overflow", "let x: i8 = 100 + 100;", diag.SemaConstOverflow},
		{"negative unsigned", "let x: u32 = -1;", diag.SemaConstOverflow},
		{"overflowing argument", "fn g(a: u16) {}\nfn f() {\n\tg(70000);\n}", diag.SemaConstOverflow},
		{"divide by zero", "let z = 1 / 0;", diag.SemaDivideByZero},
		{"remainder by folded zero", "fn f(x: i32) -> i32 { x % (2 - 2) }", diag.SemaDivideByZero},
		{"compound divide by zero", "fn f() -> i32 {\n\tlet mut x = 8;\n\tx /= 0;\n\tx\n}", diag.SemaDivideByZero},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := checkSource(t, tt.src)
			items := c.bag.Items()
			if len(items) != 1 {
				t.Fatalf("want one diagnostic, got: %s", messages(c.bag))
			}
			if items[0].Code != tt.want {
				t.Fatalf("code = %s (%s), want %s", items[0].Code.ID(), items[0].Message, tt.want.ID())
			}
		})
	}
}

func TestAcceptedPrograms(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"deferred init", "fn f() -> i32 {\n\tlet x: i32;\n\tx = 2;\n\tx\n}"},
		{"init on both branches", "fn f(c: bool) -> i32 {\n\tlet x: i32;\n\tif c { x = 1; } else { x = 2; }\n\tx\n}"},
		{"mutable", "fn f() -> i32 {\n\tlet mut x = 1;\n\tx = 2;\n\tx += 3;\n\tx\n}"},
		{"write through mut pointer", "fn f(p: *mut i32) {\n\tp.* = 1;\n}"},
		{"widening", "fn f(a: i8, b: i32) -> i32 { a + b }"},
		{"loops", "fn f(xs: []i32) -> i32 {\n\tlet mut s = 0;\n\tfor x in xs { s += x; }\n\tfor i in 0..10 { if i > 5 { break; } }\n\twhile s > 100 { s -= 1; }\n\ts\n}"},
		{"slices", "fn f(a: *[4]u8) -> []u8 { a[1..3] }"},
		{"array pointer coerces", "fn f(a: *[4]u8) -> []u8 { a }"},
		{"struct destructuring", "let p = .{x: 1, y: true};\nlet {x, y: flag} = p;"},
		{"tuple destructuring", "let (a, _, c) = (1, 2.5, true);"},
		{"partial struct", "let getx = fn(q) -> i32 { q.x };\nlet v = getx(.{x: 5, y: true});"},
		{"partial tuple", "let second = fn(t) -> i32 { t.1 };\nlet v = second((true, 5));"},
		{"extern", "extern \"c\" fn puts(s: str, ...) -> i32;\nlet n = puts(\"hi\", 1, 2);"},
		{"union literal", "type U = union { a: i32, b: f32 };\nlet u = U{a: 1};"},
		{"panic diverges", "fn f(c: bool) -> i32 {\n\tif c { return 1; }\n\t@panic(\"no\")\n}"},
		{"typed anonymous literal", "type P = struct { x: i32, y: i32 };\nlet p: P = .{x: 1, y: 2};"},
		{"integer bounds", "let a: i8 = -128;\nlet b: u8 = 255;\nlet c: i64 = -9223372036854775807;\nlet d: u8 = !0;"},
		{"float division by zero", "let f = 1.0 / 0.0;"},
		{"nonzero divisor", "fn f(x: i32) -> i32 { x / (2 - 1) }"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkSource(t, tt.src).noErrors(t)
		})
	}
}

func TestConstFolding(t *testing.T) {
	c := checkSource(t, `
let a = 2 + 3 * 4;
let m = 0 - 1;
let b = m as u8;
let big = 300 as u8;
let cmp = a > 10;
let p = .{x: 1, y: 2};
let q = p.y;
let t = (1, 7);
let u = t.1;
let arr = .[1, 2, 3];
let n = arr.len;
let sz = @size_of((i32, i8));
let al = @align_of(i64);
let neg = -(2 << 3);
type Node = struct { value: i32, next: *Node };
let node = @size_of(Node);
`)
	c.noErrors(t)
	ints := []struct {
		name string
		want int64
	}{
		{"a", 14},
		{"m", -1},
		{"b", 255},
		{"big", 44},
		{"q", 2},
		{"u", 7},
		{"n", 3},
		{"sz", 8},
		{"al", 8},
		{"neg", -16},
		{"node", 16},
	}
	for _, tt := range ints {
		t.Run(tt.name, func(t *testing.T) {
			cv := c.constOf(t, tt.name)
			if cv.Kind != symbols.ConstInt || cv.Int != tt.want {
				t.Errorf("%s = %s, want %d", tt.name, cv, tt.want)
			}
		})
	}
	if cv := c.constOf(t, "cmp"); cv.Kind != symbols.ConstBool || !cv.Bool {
		t.Errorf("cmp = %s, want true", cv)
	}
}

func (c checked) constOf(t *testing.T, name string) *symbols.ConstValue {
	t.Helper()
	id, ok := c.res.Table.Global(c.mods[0].ID, name)
	if !ok {
		t.Fatalf("no global %q", name)
	}
	cv := c.res.Table.Get(id).Const
	if cv == nil {
		t.Fatalf("%s has no constant value", name)
	}
	return cv
}

func TestConstOverflowMessage(t *testing.T) {
	c := checkSource(t, "let x: u8 = 200 + 100;")
	items := c.bag.Items()
	if len(items) != 1 || items[0].Code != diag.SemaConstOverflow {
		t.Fatalf("diagnostics: %s", messages(c.bag))
	}
	if items[0].Message != "integer constant 300 overflows `u8`" {
		t.Errorf("message = %q", items[0].Message)
	}
	if items[0].Primary.Start != 12 || items[0].Primary.End != 21 {
		t.Errorf("primary = %v, want the whole sum", items[0].Primary)
	}
	if len(items[0].Notes) != 1 || items[0].Notes[0].Msg != "`u8` holds values from 0 to 255" {
		t.Errorf("notes = %+v", items[0].Notes)
	}
}
