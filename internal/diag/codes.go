package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Лексические
	LexInfo                     Code = 1000
	LexUnknownChar              Code = 1001
	LexUnterminatedString       Code = 1002
	LexUnterminatedBlockComment Code = 1003
	LexBadNumber                Code = 1004
	LexUnterminatedChar         Code = 1005
	LexBadEscape                Code = 1006
	LexBadChar                  Code = 1007

	// Парсерные
	SynInfo                 Code = 2000
	SynUnexpectedToken      Code = 2001
	SynUnclosedDelimiter    Code = 2002
	SynExpectSemicolon      Code = 2012
	SynExpectIdentifier     Code = 2102
	SynExpectExpression     Code = 2203
	SynExpectColon          Code = 2204
	SynInvalidTupleIndex    Code = 2206
	SynBadLiteral           Code = 2207
	SynPositionalAfterNamed Code = 2208
	SynUnknownBuiltin       Code = 2209
	SynExpectBlock          Code = 2210
	SynUnexpectedTopLevel   Code = 2211
	SynInvalidPattern       Code = 2212

	// Семантические
	SemaInfo               Code = 3000
	SemaTypeMismatch       Code = 3001
	SemaDuplicateSymbol    Code = 3002
	SemaRecursiveType      Code = 3003
	SemaUnresolvedSymbol   Code = 3005
	SemaUninitialized      Code = 3010
	SemaAssignTwice        Code = 3011
	SemaAssignImmutable    Code = 3012
	SemaMutRefImmutable    Code = 3013
	SemaIllegalCapture     Code = 3014
	SemaNoField            Code = 3020
	SemaMissingField       Code = 3021
	SemaDuplicateField     Code = 3022
	SemaNotCallable        Code = 3023
	SemaArgCount           Code = 3024
	SemaUnknownNamedArg    Code = 3025
	SemaNotIndexable       Code = 3026
	SemaInvalidCast        Code = 3027
	SemaNotAType           Code = 3028
	SemaNotConst           Code = 3029
	SemaBreakOutsideLoop   Code = 3030
	SemaReturnOutsideFn    Code = 3031
	SemaPrivateSymbol      Code = 3032
	SemaCyclicDeclaration  Code = 3033
	SemaInvalidOperand     Code = 3034
	SemaInvalidPattern     Code = 3035
	SemaDuplicateParameter Code = 3036
	SemaConstOverflow      Code = 3037
	SemaDivideByZero       Code = 3038
	SemaUnusedBinding      Code = 3040
	SemaInternal           Code = 3099

	// I/O
	IOLoadFileError Code = 4001

	// Проект
	ProjMissingModule   Code = 5002
	ProjOutsideRoot     Code = 5006
	ProjInvalidManifest Code = 5007
	ProjDuplicateModule Code = 5008

	// Observability
	ObsTimings Code = 6001
)

var codeDescription = map[Code]string{
	UnknownCode:                 "Unknown error",
	LexInfo:                     "Lexical information",
	LexUnknownChar:              "Unknown character",
	LexUnterminatedString:       "Unterminated string literal",
	LexUnterminatedBlockComment: "Unterminated block comment",
	LexBadNumber:                "Invalid number literal",
	LexUnterminatedChar:         "Unterminated character literal",
	LexBadEscape:                "Invalid escape sequence",
	LexBadChar:                  "Invalid character literal",

	SynInfo:                 "Syntax information",
	SynUnexpectedToken:      "Unexpected token",
	SynUnclosedDelimiter:    "Unclosed delimiter",
	SynExpectSemicolon:      "Expected semicolon",
	SynExpectIdentifier:     "Expected identifier",
	SynExpectExpression:     "Expected expression",
	SynExpectColon:          "Expected colon",
	SynInvalidTupleIndex:    "Invalid tuple index",
	SynBadLiteral:           "Malformed literal",
	SynPositionalAfterNamed: "Positional argument after named argument",
	SynUnknownBuiltin:       "Unknown builtin function",
	SynExpectBlock:          "Expected block",
	SynUnexpectedTopLevel:   "Unexpected top-level construct",
	SynInvalidPattern:       "Invalid binding pattern",

	SemaInfo:               "Semantic information",
	SemaTypeMismatch:       "Mismatched types",
	SemaDuplicateSymbol:    "Duplicate symbol",
	SemaRecursiveType:      "Recursive type",
	SemaUnresolvedSymbol:   "Unresolved symbol",
	SemaUninitialized:      "Use of possibly uninitialized value",
	SemaAssignTwice:        "Assignment to initialized immutable variable",
	SemaAssignImmutable:    "Assignment to immutable value",
	SemaMutRefImmutable:    "Mutable reference to immutable value",
	SemaIllegalCapture:     "Capture of a local from an enclosing function",
	SemaNoField:            "Unknown field",
	SemaMissingField:       "Missing field in struct literal",
	SemaDuplicateField:     "Field specified more than once",
	SemaNotCallable:        "Call of a non-function value",
	SemaArgCount:           "Wrong number of arguments",
	SemaUnknownNamedArg:    "Unknown named argument",
	SemaNotIndexable:       "Value cannot be indexed",
	SemaInvalidCast:        "Invalid cast",
	SemaNotAType:           "Expected a type",
	SemaNotConst:           "Expected a compile-time constant",
	SemaBreakOutsideLoop:   "Loop control outside of a loop",
	SemaReturnOutsideFn:    "Return outside of a function",
	SemaPrivateSymbol:      "Private symbol",
	SemaCyclicDeclaration:  "Declaration refers to itself",
	SemaInvalidOperand:     "Invalid operand type",
	SemaInvalidPattern:     "Pattern does not match value",
	SemaDuplicateParameter: "Duplicate parameter",
	SemaConstOverflow:      "Integer constant out of range",
	SemaDivideByZero:       "Division by zero",
	SemaUnusedBinding:      "Unused variable",
	SemaInternal:           "Internal compiler error",

	IOLoadFileError: "I/O load file error",

	ProjMissingModule:   "Module not found",
	ProjOutsideRoot:     "Module outside of the root scope",
	ProjInvalidManifest: "Invalid project manifest",
	ProjDuplicateModule: "Module parsed twice",

	ObsTimings: "Pipeline timings",
}

// ID renders the stable short form, e.g. SYN2001.
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
