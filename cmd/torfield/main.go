package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/plasmakit/torfield/internal/analytic"
	"github.com/plasmakit/torfield/internal/config"
	"github.com/plasmakit/torfield/internal/diag"
	"github.com/plasmakit/torfield/internal/ensemble"
	"github.com/plasmakit/torfield/internal/export"
	"github.com/plasmakit/torfield/internal/field"
	"github.com/plasmakit/torfield/internal/interp"
	"github.com/plasmakit/torfield/internal/mesh"
	"github.com/plasmakit/torfield/internal/scefield"
	"github.com/plasmakit/torfield/internal/storage"
	"github.com/plasmakit/torfield/internal/tui"
	"github.com/plasmakit/torfield/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string

	// eval point
	coord1 float64
	coord2 float64
	coord3 float64
	pStep  int

	// sce run
	steps     int
	seed      int64
	particles int

	// mesh
	meshOut string
	meshIn  string

	// plot
	svgBase string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "torfield",
		Short: "tokamak field evaluation and self-consistent electric field",
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".torfield", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")

	evalCmd := &cobra.Command{
		Use:   "eval [model]",
		Short: "evaluate fields at a single point",
		Args:  cobra.ExactArgs(1),
		RunE:  evalPoint,
	}
	evalCmd.Flags().Float64Var(&coord1, "c1", 0.1, "first coordinate (r or R)")
	evalCmd.Flags().Float64Var(&coord2, "c2", 0.0, "second coordinate (theta or phi)")
	evalCmd.Flags().Float64Var(&coord3, "c3", 0.0, "third coordinate (zeta or Z)")
	evalCmd.Flags().IntVar(&pStep, "step", 0, "orbit step for the dynamic pulse clock")
	evalCmd.Flags().StringVar(&meshIn, "mesh", "", "mesh snapshot to interpolate (mesh model); sampled from config when empty")

	meshCmd := &cobra.Command{
		Use:   "mesh",
		Short: "sample the equilibrium onto a poloidal mesh",
		RunE:  sampleMesh,
	}
	meshCmd.Flags().StringVar(&meshOut, "out", "", "write mesh snapshot to file (json)")
	meshCmd.Flags().StringVar(&meshIn, "in", "", "load mesh snapshot instead of sampling")

	sceCmd := &cobra.Command{
		Use:   "sce",
		Short: "run the self-consistent field loop",
		RunE:  runSCE,
	}
	sceCmd.Flags().IntVar(&steps, "steps", 200, "effective field steps")
	sceCmd.Flags().Int64Var(&seed, "seed", 1, "ensemble seed")
	sceCmd.Flags().IntVar(&particles, "particles", 0, "ensemble size (0 = config value)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the field loop with a live terminal view",
		RunE:  runLive,
	}
	liveCmd.Flags().Int64Var(&seed, "seed", 1, "ensemble seed")
	liveCmd.Flags().IntVar(&particles, "particles", 0, "ensemble size (0 = config value)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot stored run profiles",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&svgBase, "svg", "", "also write <base>_j.svg and <base>_e.svg")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range config.ListPresets() {
				fmt.Println(p)
			}
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a default config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.Save(args[0], config.DefaultConfig())
		},
	}

	rootCmd.AddCommand(evalCmd, meshCmd, sceCmd, liveCmd, listCmd, plotCmd, exportCmd, presetsCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if preset != "" {
		cfg := config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		return cfg, nil
	}
	if configFile != "" {
		cfg, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return config.DefaultConfig(), nil
}

func equilibriumFrom(cfg *config.Config) analytic.Equilibrium {
	return analytic.Equilibrium{
		B0:     cfg.Equilibrium.B0,
		E0:     cfg.Equilibrium.E0,
		R0:     cfg.Equilibrium.R0,
		A:      cfg.Equilibrium.MinorRadius,
		Q0:     cfg.Equilibrium.Q0,
		Lambda: cfg.Equilibrium.Lambda,
		Sign:   cfg.Equilibrium.Sign,
	}
}

func pulseFrom(cfg *config.Config) analytic.Pulse {
	return analytic.Pulse{
		Enabled:   cfg.Pulse.Enabled,
		Amplitude: cfg.Pulse.Amplitude,
		Center:    cfg.Pulse.Center,
		Width:     cfg.Pulse.Width,
		TStart:    cfg.Pulse.TStart,
		Dt:        cfg.SCE.DtOrbit,
	}
}

func policyFrom(cfg *config.Config) scefield.Policy {
	if cfg.SCE.Policy == "gaussian" {
		return scefield.DepositGaussian
	}
	return scefield.DepositNGP
}

func evalPoint(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	model, err := field.ParseModel(args[0])
	if err != nil {
		return err
	}

	d := &field.Descriptor{
		Model: model,
		Eq:    equilibriumFrom(cfg),
		Pulse: pulseFrom(cfg),
		Step:  pStep,
	}
	if model == field.ModelMesh {
		var f *mesh.Field2D
		if meshIn != "" {
			f, err = storage.LoadMesh(meshIn)
			if err != nil {
				return err
			}
		} else {
			f = mesh.NewField2D(
				mesh.UniformGrid(cfg.Mesh.RMin, cfg.Mesh.RMax, cfg.Mesh.NR),
				mesh.UniformGrid(cfg.Mesh.ZMin, cfg.Mesh.ZMax, cfg.Mesh.NZ),
			)
			f.SampleGC(d.Eq)
		}
		aux, err := f.AuxFields()
		if err != nil {
			return err
		}
		d.Mesh2D, d.Aux2D = f, aux
	}
	// mesh batches carry the guiding-center outputs so psi and the
	// auxiliary fields are reported too
	gc := model.GuidingCenter() || model == field.ModelMesh
	b := field.NewBatch(1, gc)
	b.P1[0], b.P2[0], b.P3[0] = coord1, coord2, coord3

	if err := field.Evaluate(d, b); err != nil {
		return err
	}
	if !b.Confined[0] {
		return fmt.Errorf("point (%g, %g, %g) is outside the mesh domain", coord1, coord2, coord3)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "model\t%s\n", model)
	fmt.Fprintf(w, "point\t(%.4f, %.4f, %.4f)\n", coord1, coord2, coord3)
	fmt.Fprintf(w, "B\t(%.6e, %.6e, %.6e)\n", b.B1[0], b.B2[0], b.B3[0])
	fmt.Fprintf(w, "|B|\t%.6e\n", math.Sqrt(b.B1[0]*b.B1[0]+b.B2[0]*b.B2[0]+b.B3[0]*b.B3[0]))
	fmt.Fprintf(w, "E\t(%.6e, %.6e, %.6e)\n", b.E1[0], b.E2[0], b.E3[0])
	if gc {
		fmt.Fprintf(w, "psi_p\t%.6e\n", b.Psi[0])
		fmt.Fprintf(w, "grad|B|\t(%.6e, %.6e, %.6e)\n", b.GradB1[0], b.GradB2[0], b.GradB3[0])
		fmt.Fprintf(w, "curl b\t(%.6e, %.6e, %.6e)\n", b.Curl1[0], b.Curl2[0], b.Curl3[0])
	}
	return w.Flush()
}

func sampleMesh(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var f *mesh.Field2D
	if meshIn != "" {
		f, err = storage.LoadMesh(meshIn)
		if err != nil {
			return err
		}
		fmt.Printf("loaded mesh %s\n", meshIn)
	} else {
		f = mesh.NewField2D(
			mesh.UniformGrid(cfg.Mesh.RMin, cfg.Mesh.RMax, cfg.Mesh.NR),
			mesh.UniformGrid(cfg.Mesh.ZMin, cfg.Mesh.ZMax, cfg.Mesh.NZ),
		)
		f.SampleGC(equilibriumFrom(cfg))
	}

	aux, err := f.AuxFields()
	if err != nil {
		return err
	}
	var maxGrad float64
	for k := range aux.GradBR {
		g := math.Hypot(aux.GradBR[k], aux.GradBZ[k])
		if g > maxGrad {
			maxGrad = g
		}
	}

	meanB, err := f.MeanMagnitude("B")
	if err != nil {
		return err
	}
	meanE, _ := f.MeanMagnitude("E")

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "nodes\t%d x %d\n", len(f.R), len(f.Z))
	fmt.Fprintf(w, "R span\t[%.3f, %.3f]\n", f.R[0], f.R[len(f.R)-1])
	fmt.Fprintf(w, "Z span\t[%.3f, %.3f]\n", f.Z[0], f.Z[len(f.Z)-1])
	fmt.Fprintf(w, "mean |B|\t%.6e\n", meanB)
	fmt.Fprintf(w, "mean |E|\t%.6e\n", meanE)
	fmt.Fprintf(w, "max |grad B| (pol)\t%.6e\n", maxGrad)
	if err := w.Flush(); err != nil {
		return err
	}

	if meshOut != "" {
		if err := storage.SaveMesh(meshOut, f); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", meshOut)
	}
	return nil
}

// coupled owns the ensemble, the field descriptor, and the solver for
// one SC-E run. Each effective step re-evaluates local fields, deposits
// current, solves, and nudges parallel momenta with the new field.
type coupled struct {
	cfg    *config.Config
	desc   *field.Descriptor
	batch  *field.Batch
	view   *scefield.Particles
	solver *scefield.Solver
	interp *interp.Linear1D
	stepN  int
}

func newCoupled(cfg *config.Config) (*coupled, error) {
	model, err := field.ParseModel(cfg.Model)
	if err != nil {
		return nil, err
	}
	if !model.GuidingCenter() {
		return nil, fmt.Errorf("sce loop needs a guiding-center model, got %s", model)
	}

	ep := ensemble.Params{
		N:     cfg.Ensemble.N,
		Seed:  seed,
		RMax:  cfg.Ensemble.RMax,
		VPar:  cfg.Ensemble.VPar,
		MuMax: cfg.Ensemble.MuMax,
	}
	if particles > 0 {
		ep.N = particles
	}

	desc := &field.Descriptor{
		Model: model,
		Eq:    equilibriumFrom(cfg),
		Pulse: pulseFrom(cfg),
	}
	batch := ensemble.GuidingCenter(ep, desc.Eq.R0, desc.Eq.A)
	if err := field.Evaluate(desc, batch); err != nil {
		return nil, err
	}

	li := interp.NewLinear1D(nil, nil)
	solver, err := scefield.New(scefield.Config{
		Cells:         cfg.SCE.Cells,
		Dx:            cfg.SCE.Dx,
		Flux:          cfg.SCE.Flux,
		TotalCurrent:  cfg.SCE.TotalCurrent,
		Policy:        policyFrom(cfg),
		GaussianWidth: cfg.SCE.GaussianWidth,
		EScale:        cfg.SCE.EScale,
		Mass:          cfg.SCE.Mass,
		DtTarget:      cfg.SCE.DtTarget,
		DtOrbit:       cfg.SCE.DtOrbit,
		OutputSkip:    cfg.SCE.OutputSkip,
		Workers:       cfg.SCE.Workers,
	}, li)
	if err != nil {
		return nil, err
	}

	c := &coupled{
		cfg:    cfg,
		desc:   desc,
		batch:  batch,
		view:   ensemble.DepositionView(batch, desc.Eq.R0),
		solver: solver,
		interp: li,
	}
	if cfg.SCE.Flux {
		// flux-surface solve bins by poloidal flux, not minor radius
		for i := range c.view.X {
			c.view.X[i] = batch.Psi[i]
		}
		area, err := fluxArea(desc.Eq, solver.Grid())
		if err != nil {
			return nil, err
		}
		if err := solver.FluxMetricsFromArea(area); err != nil {
			return nil, err
		}
	}
	if err := solver.Init(c.view); err != nil {
		return nil, err
	}
	return c, nil
}

// fluxArea samples the enclosed area A(psi) on the solver's flux grid by
// inverting the outboard-midplane flux profile psi(r).
func fluxArea(eq analytic.Equilibrium, grid []float64) ([]float64, error) {
	const samples = 512
	psi := make([]float64, samples)
	rm := make([]float64, samples)
	for k := 0; k < samples; k++ {
		rm[k] = eq.A * float64(k) / float64(samples-1)
		psi[k] = eq.PsiP(eq.R0+rm[k], 0)
	}
	inv := interp.NewLinear1D(psi, rm)

	area := make([]float64, len(grid))
	hint := 0
	for i, p := range grid {
		r, err := inv.At(p, &hint)
		if err != nil {
			return nil, err
		}
		area[i] = math.Pi * r * r
	}
	return area, nil
}

// step advances one effective field step: the parallel momenta respond
// to the local field, the batch is re-evaluated, and the solver updates
// the field from the new current.
func (c *coupled) step() (scefield.Snapshot, error) {
	dt := c.solver.EffectiveDt()
	qm := 1.0 / c.cfg.SCE.Mass
	hint := 0
	for i := range c.view.X {
		if !c.view.Confined[i] {
			continue
		}
		e, err := c.interp.At(c.view.X[i], &hint)
		if err != nil {
			return scefield.Snapshot{}, err
		}
		// the view shares momentum storage with the batch
		c.view.PPar[i] += qm * e * dt
	}

	c.stepN++
	c.desc.Step = c.stepN * c.solver.SubcycleCount()
	if err := field.Evaluate(c.desc, c.batch); err != nil {
		return scefield.Snapshot{}, err
	}
	for i := range c.view.X {
		b1, b2, b3 := c.batch.B1[i], c.batch.B2[i], c.batch.B3[i]
		c.view.Bmag[i] = math.Sqrt(b1*b1 + b2*b2 + b3*b3)
	}

	if err := c.solver.Step(c.view); err != nil {
		return scefield.Snapshot{}, err
	}
	return c.solver.Snapshot(), nil
}

func runSCE(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	c, err := newCoupled(cfg)
	if err != nil {
		return err
	}

	diags := []diag.Diagnostic{
		&diag.MeanE{}, &diag.PeakE{},
		diag.NewCurrentDrift(c.solver.Measure()),
	}

	fmt.Printf("running sce loop: %d particles, %d cells, subcycle %d, dt_eff %.3e\n",
		c.view.Len(), cfg.SCE.Cells, c.solver.SubcycleCount(), c.solver.EffectiveDt())
	start := time.Now()

	var snap scefield.Snapshot
	for i := 0; i < steps; i++ {
		snap, err = c.step()
		if err != nil {
			return err
		}
		for _, d := range diags {
			d.Observe(snap)
		}
	}
	elapsed := time.Since(start)

	dvals := make(map[string]float64, len(diags))
	for _, d := range diags {
		dvals[d.Name()] = d.Value()
	}

	runID, err := st.SaveRun(storage.RunMetadata{
		Model:        cfg.Model,
		Seed:         seed,
		DtOrbit:      cfg.SCE.DtOrbit,
		DtEffective:  c.solver.EffectiveDt(),
		Subcycle:     c.solver.SubcycleCount(),
		Cells:        cfg.SCE.Cells,
		TotalCurrent: cfg.SCE.TotalCurrent,
		Diagnostics:  dvals,
	}, snap.Grid, snap.J, snap.E)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("Ip0: %.6e\n", snap.Ip0)
	fmt.Println("\ndiagnostics:")
	for _, d := range diags {
		fmt.Printf("  %s: %.6e\n", d.Name(), d.Value())
	}
	fmt.Println()
	fmt.Println(viz.Profile(snap.Grid, snap.E, "parallel electric field"))
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	c, err := newCoupled(cfg)
	if err != nil {
		return err
	}
	return tui.Run(c.step,
		&diag.MeanE{}, &diag.PeakE{},
		diag.NewCurrentDrift(c.solver.Measure()))
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	ids, err := st.ListRuns()
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tCELLS\tSUBCYCLE\tDT_EFF\tCURRENT")
	for _, id := range ids {
		meta, _, err := st.LoadRun(id)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.3e\t%.3e\n",
			meta.ID, meta.Model,
			meta.Timestamp.Format("2006-01-02 15:04:05"),
			meta.Cells, meta.Subcycle, meta.DtEffective, meta.TotalCurrent)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, cols, err := st.LoadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("cells: %d\n\n", meta.Cells)
	fmt.Println(viz.Series(cols[0], map[string][]float64{
		"current density":         cols[1],
		"parallel electric field": cols[2],
	}, []string{"current density", "parallel electric field"}))

	if svgBase != "" {
		if err := export.WriteProfiles(svgBase, cols[0], cols[1], cols[2]); err != nil {
			return err
		}
		fmt.Printf("wrote %s_j.svg and %s_e.svg\n", svgBase, svgBase)
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, _, err := st.LoadRun(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}
