package dag

import (
	"kiln/internal/project"
)

// ComputeModuleHashes заполняет ModuleHash: H(content || хеши зависимостей).
// Зависимости обходятся раньше зависящих; внутри цикла берётся хеш содержимого соседей.
func ComputeModuleHashes(g Graph, slots []project.ModuleMeta, topo *Topo) {
	done := make([]bool, len(slots))
	for _, id := range topo.CheckOrder() {
		deps := make([]project.Digest, 0, len(g.Edges[id]))
		for _, to := range g.Edges[id] {
			switch {
			case !g.Present[to]:
				continue
			case done[to]:
				deps = append(deps, slots[to].ModuleHash)
			default:
				deps = append(deps, slots[to].ContentHash)
			}
		}
		slots[id].ModuleHash = project.Combine(slots[id].ContentHash, deps...)
		done[id] = true
	}
}

// WorkspaceDigest сворачивает хеши всех разобранных модулей в порядке ID.
func WorkspaceDigest(g Graph, slots []project.ModuleMeta) project.Digest {
	var all []project.Digest
	for i := range slots {
		if g.Present[i] {
			all = append(all, slots[i].ModuleHash)
		}
	}
	return project.Combine(project.Digest{}, all...)
}
