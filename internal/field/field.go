// Package field holds the shared field descriptor and the single dispatch
// entry that evaluates electromagnetic fields for particle batches. The
// descriptor is created once per simulation and passed explicitly to every
// component; there is no package-level state.
package field

import (
	"errors"
	"fmt"

	"github.com/plasmakit/torfield/internal/analytic"
	"github.com/plasmakit/torfield/internal/mesh"
)

// Domain errors for field evaluation.
var (
	// ErrUnknownModel indicates an unsupported field-model name. Evaluation
	// is required for every step, so callers treat this as fatal.
	ErrUnknownModel = errors.New("field: unknown field model")

	// ErrNoMeshEvaluator indicates the mesh-interpolated model was selected
	// with neither an interpolation collaborator nor a sampled mesh wired.
	ErrNoMeshEvaluator = errors.New("field: mesh model selected but no mesh evaluator set")

	// ErrBatchMismatch indicates index-misaligned batch arrays.
	ErrBatchMismatch = errors.New("field: batch arrays are not index-aligned")
)

// Model is the closed set of field evaluation models, selected once at
// configuration time.
type Model int

const (
	// ModelFullOrbit is the analytical toroidal field evaluated in toroidal
	// particle coordinates and rotated to Cartesian components.
	ModelFullOrbit Model = iota
	// ModelGCInit is the analytical guiding-center field returning
	// cylindrical (R,phi,Z) components directly.
	ModelGCInit
	// ModelGC is the analytical guiding-center field rotated through the
	// local poloidal angle into the particle frame.
	ModelGC
	// ModelMesh delegates evaluation to the external structured-mesh
	// interpolation collaborator.
	ModelMesh
	// ModelUniform is a constant field along x.
	ModelUniform
)

var modelNames = map[string]Model{
	"full_orbit": ModelFullOrbit,
	"gc_init":    ModelGCInit,
	"gc":         ModelGC,
	"mesh":       ModelMesh,
	"uniform":    ModelUniform,
}

// ParseModel resolves a configuration name to a Model.
func ParseModel(name string) (Model, error) {
	m, ok := modelNames[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownModel, name)
	}
	return m, nil
}

func (m Model) String() string {
	for name, v := range modelNames {
		if v == m {
			return name
		}
	}
	return fmt.Sprintf("model(%d)", int(m))
}

// GuidingCenter reports whether the model must supply flux and auxiliary
// fields in addition to B and E.
func (m Model) GuidingCenter() bool { return m == ModelGC || m == ModelGCInit }

// MeshEvaluator is the structured-mesh interpolation collaborator. The
// core calls it for ModelMesh batches and treats its internals as opaque.
type MeshEvaluator interface {
	EvaluateBatch(b *Batch) error
}

// Descriptor owns the field parameters, the optional sampled mesh, and the
// wiring to external collaborators. Exactly one instance exists per
// simulation; evaluators reference it without owning it.
type Descriptor struct {
	Model Model
	Eq    analytic.Equilibrium
	Pulse analytic.Pulse

	// Mesh-backed state, populated by sampling or by the persisted-mesh
	// loader; nil for purely analytical runs. ModelMesh interpolates these
	// bilinearly when no external evaluator is wired.
	Mesh2D *mesh.Field2D
	Aux2D  *mesh.Aux2D

	// MeshEval performs per-particle interpolation for ModelMesh,
	// overriding the built-in sampling of Mesh2D/Aux2D when set.
	MeshEval MeshEvaluator

	// Step is the elapsed orbit step count, advanced by the caller; it
	// drives the dynamic pulse clock.
	Step int
}
