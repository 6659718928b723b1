package storage

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/plasmakit/torfield/internal/analytic"
	"github.com/plasmakit/torfield/internal/mesh"
)

func TestSaveLoadRun(t *testing.T) {
	s := New(t.TempDir())
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	grid := []float64{0.01, 0.03, 0.05}
	j := []float64{1e5, 8e4, 2e4}
	e := []float64{0, -1.5, -0.3}

	id, err := s.SaveRun(RunMetadata{
		Model:        "gc",
		Cells:        3,
		TotalCurrent: 2e5,
		Diagnostics:  map[string]float64{"mean_e": -0.6},
	}, grid, j, e)
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	meta, cols, err := s.LoadRun(id)
	if err != nil {
		t.Fatalf("LoadRun: %v", err)
	}
	if meta.ID != id || meta.Model != "gc" || meta.Cells != 3 {
		t.Errorf("metadata round trip: %+v", meta)
	}
	if meta.Diagnostics["mean_e"] != -0.6 {
		t.Errorf("diagnostics round trip: %v", meta.Diagnostics)
	}
	for i := range grid {
		if cols[0][i] != grid[i] || cols[1][i] != j[i] || cols[2][i] != e[i] {
			t.Errorf("row %d: got (%g %g %g)", i, cols[0][i], cols[1][i], cols[2][i])
		}
	}
}

func TestListRunsNaturalOrder(t *testing.T) {
	s := New(t.TempDir())
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	for _, id := range []string{"gc_10", "gc_2", "gc_1"} {
		if err := os.MkdirAll(filepath.Join(s.baseDir, id), 0755); err != nil {
			t.Fatal(err)
		}
	}

	ids, err := s.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	want := []string{"gc_1", "gc_2", "gc_10"}
	if len(ids) != len(want) {
		t.Fatalf("got %v", ids)
	}
	for i, id := range ids {
		if id != want[i] {
			t.Errorf("order[%d] = %s, want %s", i, id, want[i])
		}
	}
}

func TestListRunsMissingDir(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "absent"))
	ids, err := s.ListRuns()
	if err != nil || ids != nil {
		t.Errorf("missing dir: ids=%v err=%v", ids, err)
	}
}

func TestMeshRoundTrip(t *testing.T) {
	eq := analytic.Equilibrium{B0: 2.2, R0: 1.7, A: 0.6, Q0: 1.6, Lambda: 0.7}
	f := mesh.NewField2D(mesh.UniformGrid(1.2, 2.2, 9), mesh.UniformGrid(-0.5, 0.5, 9))
	f.SampleGC(eq)
	f.Valid = make([]bool, f.Nodes())
	for k := range f.Valid {
		f.Valid[k] = k != 0 // one masked node survives the round trip
	}

	path := filepath.Join(t.TempDir(), "eq.json")
	if err := SaveMesh(path, f); err != nil {
		t.Fatalf("SaveMesh: %v", err)
	}
	g, err := LoadMesh(path)
	if err != nil {
		t.Fatalf("LoadMesh: %v", err)
	}
	if g.Valid == nil || g.Valid[0] || !g.Valid[1] {
		t.Error("validity mask not preserved")
	}
	for k := range f.BR {
		if math.Abs(f.BR[k]-g.BR[k]) > 1e-15 ||
			math.Abs(f.BPhi[k]-g.BPhi[k]) > 1e-15 ||
			math.Abs(f.Psi[k]-g.Psi[k]) > 1e-15 {
			t.Fatalf("node %d mismatch", k)
		}
	}
}

func TestLoadMeshBadShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"r":[1,2],"z":[0,1],"b_r":[1],"b_phi":[1,2,3,4],"b_z":[1,2,3,4]}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadMesh(path); err == nil {
		t.Error("expected shape error")
	}
}
