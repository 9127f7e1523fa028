package dag

import (
	"reflect"
	"testing"

	"kiln/internal/project"
)

func buildTopo(metas []project.ModuleMeta) (ModuleIndex, Graph, []project.ModuleMeta, *Topo) {
	idx := BuildIndex(metas)
	g, slots := BuildGraph(idx, metas)
	return idx, g, slots, ToposortKahn(g)
}

func TestBuildIndexIncludesImports(t *testing.T) {
	metas := []project.ModuleMeta{
		{Path: "/p/main.kn", Imports: []string{"/p/math.kn", "/p/util.kn"}},
		{Path: "/p/util.kn"},
	}
	idx := BuildIndex(metas)

	want := []string{"/p/main.kn", "/p/math.kn", "/p/util.kn"}
	if !reflect.DeepEqual(idx.IDToName, want) {
		t.Fatalf("IDToName = %v, want %v", idx.IDToName, want)
	}
	for i, name := range want {
		if id := idx.NameToID[name]; int(id) != i {
			t.Fatalf("NameToID[%q] = %d, want %d", name, id, i)
		}
	}
}

func TestBuildGraphSkipsMissingAndSelfImports(t *testing.T) {
	metas := []project.ModuleMeta{
		{Path: "a", Imports: []string{"b", "a", "missing", "b"}},
		{Path: "b"},
	}
	idx, g, _, _ := buildTopo(metas)

	a, b, missing := idx.NameToID["a"], idx.NameToID["b"], idx.NameToID["missing"]
	if got := g.Edges[a]; !reflect.DeepEqual(got, []ModuleID{b, missing}) {
		t.Fatalf("edges of a = %v", got)
	}
	if g.Present[missing] {
		t.Fatalf("missing module must not be present")
	}
	if g.Indeg[b] != 1 || g.Indeg[missing] != 0 {
		t.Fatalf("indeg = %v", g.Indeg)
	}
}

func TestCheckOrderPutsDependenciesFirst(t *testing.T) {
	metas := []project.ModuleMeta{
		{Path: "app", Imports: []string{"core", "util"}},
		{Path: "core", Imports: []string{"util"}},
		{Path: "util"},
	}
	idx, _, _, topo := buildTopo(metas)
	if topo.Cyclic {
		t.Fatalf("unexpected cycle: %v", idx.Names(topo.Cycles))
	}
	if got := idx.Names(topo.CheckOrder()); !reflect.DeepEqual(got, []string{"util", "core", "app"}) {
		t.Fatalf("check order = %v", got)
	}
	if len(topo.Batches) != 3 {
		t.Fatalf("batches = %v", topo.Batches)
	}
}

func TestCyclesAreOrderedLast(t *testing.T) {
	metas := []project.ModuleMeta{
		{Path: "main", Imports: []string{"x"}},
		{Path: "x", Imports: []string{"y"}},
		{Path: "y", Imports: []string{"x"}},
	}
	idx, _, _, topo := buildTopo(metas)
	if !topo.Cyclic {
		t.Fatalf("expected cycle")
	}
	if got := idx.Names(topo.Cycles); !reflect.DeepEqual(got, []string{"x", "y"}) {
		t.Fatalf("cycles = %v", got)
	}
	if got := idx.Names(topo.CheckOrder()); !reflect.DeepEqual(got, []string{"main", "x", "y"}) {
		t.Fatalf("check order = %v", got)
	}
}

func TestModuleHashFollowsDependencies(t *testing.T) {
	metas := func(utilByte byte) []project.ModuleMeta {
		return []project.ModuleMeta{
			{Path: "app", Imports: []string{"util"}, ContentHash: project.Digest{1}},
			{Path: "util", ContentHash: project.Digest{utilByte}},
			{Path: "other", ContentHash: project.Digest{3}},
		}
	}
	hashes := func(utilByte byte) (map[string]project.Digest, project.Digest) {
		idx, g, slots, topo := buildTopo(metas(utilByte))
		ComputeModuleHashes(g, slots, topo)
		out := make(map[string]project.Digest)
		for i, s := range slots {
			out[idx.IDToName[i]] = s.ModuleHash
		}
		return out, WorkspaceDigest(g, slots)
	}

	before, wsBefore := hashes(2)
	after, wsAfter := hashes(9)
	if before["app"] == after["app"] {
		t.Fatalf("app hash must change when util changes")
	}
	if before["other"] != after["other"] {
		t.Fatalf("unrelated module hash changed")
	}
	if wsBefore == wsAfter {
		t.Fatalf("workspace digest must change")
	}
}
