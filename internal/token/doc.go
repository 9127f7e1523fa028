// Package token defines lexical token kinds for the kiln compiler.
// Invariants:
//   - Token.Text is the lexeme of Token.Span (no decoding of escapes); non-ASCII
//     identifiers are NFC-normalized, so Text may differ from the raw bytes.
//   - A token stream always ends with exactly one EOF token.
//   - Builtin type names (i32, u8, f64, bool, str, ...) are identifiers.
//     They are recognized by the semantic layer, not the lexer.
package token
