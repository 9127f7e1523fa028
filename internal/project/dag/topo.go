package dag

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

type Topo struct {
	Order   []ModuleID   // линейный порядок (только реальные модули)
	Batches [][]ModuleID // волны независимых модулей
	Cyclic  bool
	Cycles  []ModuleID // узлы, оставшиеся в цикле
}

func ToposortKahn(g Graph) *Topo {
	nodeCount := len(g.Edges)
	indeg := make([]int, len(g.Indeg))
	copy(indeg, g.Indeg)

	topo := &Topo{
		Order:   make([]ModuleID, 0, nodeCount),
		Batches: make([][]ModuleID, 0),
	}

	active := 0
	current := make([]ModuleID, 0, nodeCount)
	for i := range nodeCount {
		if !g.Present[i] {
			continue
		}
		active++
		if indeg[i] == 0 {
			current = append(current, moduleID(i))
		}
	}

	visited := 0
	for len(current) > 0 {
		batch := slices.Clone(current)
		topo.Batches = append(topo.Batches, batch)

		next := make([]ModuleID, 0)
		for _, id := range batch {
			topo.Order = append(topo.Order, id)
			visited++
			for _, to := range g.Edges[id] {
				if !g.Present[to] {
					continue
				}
				indeg[to]--
				if indeg[to] == 0 {
					next = append(next, to)
				}
			}
		}
		slices.Sort(next)
		current = next
	}

	if visited != active {
		topo.Cyclic = true
		for i := range nodeCount {
			if g.Present[i] && indeg[i] > 0 {
				topo.Cycles = append(topo.Cycles, moduleID(i))
			}
		}
	}
	return topo
}

// CheckOrder - порядок проверки модулей: зависимости раньше зависящих,
// модули из циклов (они допустимы, глобалы проверяются лениво) в конце.
func (t *Topo) CheckOrder() []ModuleID {
	out := make([]ModuleID, 0, len(t.Order)+len(t.Cycles))
	for i := len(t.Order) - 1; i >= 0; i-- {
		out = append(out, t.Order[i])
	}
	return append(out, t.Cycles...)
}

func moduleID(i int) ModuleID {
	id, err := safecast.Conv[ModuleID](i)
	if err != nil {
		panic(fmt.Errorf("module id overflow: %w", err))
	}
	return id
}
