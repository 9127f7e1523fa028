// Package fuzztests houses Go fuzz harnesses for the kiln front end
// (source -> lexer -> parser -> checker). They guard against panics and
// hangs on arbitrary inputs.
//
// Назначение: загружать байты в FileSet и прогонять их через лексер,
// парсер и проверку типов.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.

package fuzztests
