package storage

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/plasmakit/torfield/internal/mesh"
)

// meshSnapshot is the on-disk form of a poloidal field mesh.
type meshSnapshot struct {
	R     []float64 `json:"r"`
	Z     []float64 `json:"z"`
	BR    []float64 `json:"b_r"`
	BPhi  []float64 `json:"b_phi"`
	BZ    []float64 `json:"b_z"`
	ER    []float64 `json:"e_r,omitempty"`
	EPhi  []float64 `json:"e_phi,omitempty"`
	EZ    []float64 `json:"e_z,omitempty"`
	Psi   []float64 `json:"psi,omitempty"`
	Valid []bool    `json:"valid,omitempty"`
}

// SaveMesh writes a 2D field mesh as JSON.
func SaveMesh(path string, f *mesh.Field2D) error {
	snap := meshSnapshot{
		R: f.R, Z: f.Z,
		BR: f.BR, BPhi: f.BPhi, BZ: f.BZ,
		ER: f.ER, EPhi: f.EPhi, EZ: f.EZ,
		Psi: f.Psi, Valid: f.Valid,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadMesh reads a 2D field mesh written by SaveMesh and validates its
// shape before returning it.
func LoadMesh(path string) (*mesh.Field2D, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap meshSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("storage: parse mesh %s: %w", path, err)
	}

	if len(snap.R) < 2 || len(snap.Z) < 2 {
		return nil, fmt.Errorf("storage: mesh %s grid too small", path)
	}
	f := mesh.NewField2D(snap.R, snap.Z)
	n := len(snap.R) * len(snap.Z)
	for _, c := range []struct {
		name string
		src  []float64
		dst  []float64
	}{
		{"b_r", snap.BR, f.BR},
		{"b_phi", snap.BPhi, f.BPhi},
		{"b_z", snap.BZ, f.BZ},
	} {
		if len(c.src) != n {
			return nil, fmt.Errorf("storage: mesh %s field %s has %d values, want %d", path, c.name, len(c.src), n)
		}
		copy(c.dst, c.src)
	}
	for _, c := range []struct {
		src []float64
		dst []float64
	}{
		{snap.ER, f.ER},
		{snap.EPhi, f.EPhi},
		{snap.EZ, f.EZ},
		{snap.Psi, f.Psi},
	} {
		if len(c.src) == n {
			copy(c.dst, c.src)
		}
	}
	if len(snap.Valid) == n {
		f.Valid = snap.Valid
	}
	return f, nil
}
