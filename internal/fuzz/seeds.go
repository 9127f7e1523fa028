package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB
	maxFuzzInput = 1 << 16
)

// languageSeeds покрывают основные конструкции языка.
var languageSeeds = []string{
	"",
	"fn main() {\n}\n",
	"let i = 1;\nlet f = 2.5;\nlet small: u8 = 3;\nlet sum = i + 4;",
	"let flag = 1 < 2 && true;\nlet s = \"hi\";\nlet arr = .[1, 2, 3];\nlet tup = (1, true);",
	"fn add(a: i64, b: i64) -> i64 { a + b }\nlet total = add(1, b: 2);",
	"fn f() -> i32 { true }",
	"type Point = struct { x: i32, y: i32 };\nlet p = Point{x: 1, y: 2};\nlet px = p.x;",
	"fn loop_it(n: i32) -> i32 {\n  let mut acc = 0;\n  for i in 0..n { acc += i; }\n  acc\n}",
	"let t = (1, (2, 3));\nlet inner = t.1.0;",
	"fn g(x: i32) -> i32 { if x > 0 { x } else { -x } }",
	"let size = @size_of(i64);",
	"fn f() { { { { } } } }",
	"let x = 1 as u8 as i64;",
	"let = 2",
	"fn (",
	"let s = \"unterminated",
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range languageSeeds {
		f.Add([]byte(s))
	}
	addTestdataSeeds(f)
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("testdata", "seeds")
	if _, err := os.Stat(root); err != nil {
		return
	}
	// проходим по дереву testdata, добавляем все *.kn файлы
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || filepath.Ext(path) != ".kn" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
