package dag

import (
	"slices"

	"kiln/internal/project"
)

// Graph - граф импортов: ребро from -> to означает "from использует to".
type Graph struct {
	Edges   [][]ModuleID // Edges[from] = []to
	Indeg   []int        // входящие степени для Kahn (учитывает только присутствующие модули)
	Present []bool       // признак, что модуль реально разобран (а не только импортируется)
}

// BuildGraph раскладывает метаданные по ID индекса. Импорты, не попавшие
// в разбор (файл не нашёлся), остаются без узла: о них уже сообщил парсер.
func BuildGraph(idx ModuleIndex, metas []project.ModuleMeta) (Graph, []project.ModuleMeta) {
	nodeCount := len(idx.IDToName)
	g := Graph{
		Edges:   make([][]ModuleID, nodeCount),
		Indeg:   make([]int, nodeCount),
		Present: make([]bool, nodeCount),
	}
	slots := make([]project.ModuleMeta, nodeCount)
	for i, name := range idx.IDToName {
		slots[i].Path = name
	}
	for _, meta := range metas {
		id, ok := idx.NameToID[meta.Path]
		if !ok || g.Present[id] {
			continue
		}
		slots[id] = meta
		g.Present[id] = true
	}

	for from := range slots {
		if !g.Present[from] {
			continue
		}
		seen := make(map[ModuleID]struct{}, len(slots[from].Imports))
		for _, dep := range slots[from].Imports {
			toID, ok := idx.NameToID[dep]
			if !ok || int(toID) == from {
				continue
			}
			if _, dup := seen[toID]; dup {
				continue
			}
			seen[toID] = struct{}{}
			g.Edges[from] = append(g.Edges[from], toID)
			if g.Present[toID] {
				g.Indeg[toID]++
			}
		}
		slices.Sort(g.Edges[from])
	}
	return g, slots
}

// Names переводит ID в пути модулей.
func (idx ModuleIndex) Names(ids []ModuleID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = idx.IDToName[id]
	}
	return out
}
