package project

import (
	"unicode"

	"kiln/internal/source"
)

// ModuleMeta - сводка по одному разобранному модулю для построения графа импортов.
type ModuleMeta struct {
	Name        string
	Path        string      // абсолютный путь файла модуля
	Span        source.Span // span всего файла
	Imports     []string    // пути импортированных модулей
	ContentHash Digest      // хеш содержимого файла (из FileSet)
	ModuleHash  Digest      // агрегированный хеш модуля с учётом зависимостей
}

func IsValidModuleIdent(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r > unicode.MaxASCII {
			return false
		}
		if i == 0 && r != '_' && !unicode.IsLetter(r) {
			return false
		}
		if i > 0 && r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
