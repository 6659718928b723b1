package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultB0           = 2.2
	DefaultR0           = 1.7
	DefaultMinorRadius  = 0.5
	DefaultQ0           = 1.0
	DefaultLambda       = 1.0
	DefaultCells        = 100
	DefaultDtOrbit      = 1e-9
	DefaultDtSCE        = 1e-7
	DefaultTotalCurrent = 2.0e5
	DefaultParticles    = 10000
)

type Config struct {
	Model       string          `yaml:"model"`
	Equilibrium EquilibriumConf `yaml:"equilibrium"`
	Pulse       PulseConf       `yaml:"pulse"`
	Mesh        MeshConf        `yaml:"mesh"`
	SCE         SCEConf         `yaml:"sce"`
	Ensemble    EnsembleConf    `yaml:"ensemble"`
}

type EquilibriumConf struct {
	B0          float64 `yaml:"b0"`
	E0          float64 `yaml:"e0"`
	R0          float64 `yaml:"r0"`
	MinorRadius float64 `yaml:"minor_radius"`
	Q0          float64 `yaml:"q0"`
	Lambda      float64 `yaml:"lambda"`
	Sign        float64 `yaml:"sign"`
}

type PulseConf struct {
	Enabled   bool    `yaml:"enabled"`
	Amplitude float64 `yaml:"amplitude"`
	Center    float64 `yaml:"center"`
	Width     float64 `yaml:"width"`
	TStart    float64 `yaml:"t_start"`
}

type MeshConf struct {
	NR   int     `yaml:"nr"`
	NZ   int     `yaml:"nz"`
	RMin float64 `yaml:"r_min"`
	RMax float64 `yaml:"r_max"`
	ZMin float64 `yaml:"z_min"`
	ZMax float64 `yaml:"z_max"`
}

type SCEConf struct {
	Cells         int     `yaml:"cells"`
	Dx            float64 `yaml:"dx"`
	Flux          bool    `yaml:"flux"`
	TotalCurrent  float64 `yaml:"total_current"`
	Policy        string  `yaml:"policy"`
	GaussianWidth float64 `yaml:"gaussian_width"`
	EScale        float64 `yaml:"e_scale"`
	Mass          float64 `yaml:"mass"`
	DtTarget      float64 `yaml:"dt_target"`
	DtOrbit       float64 `yaml:"dt_orbit"`
	OutputSkip    int     `yaml:"output_skip"`
	Workers       int     `yaml:"workers"`
}

type EnsembleConf struct {
	N     int     `yaml:"n"`
	Seed  int64   `yaml:"seed"`
	RMax  float64 `yaml:"r_max"`
	VPar  float64 `yaml:"v_par"`
	MuMax float64 `yaml:"mu_max"`
}

func DefaultConfig() *Config {
	return &Config{
		Model: "gc",
		Equilibrium: EquilibriumConf{
			B0:          DefaultB0,
			R0:          DefaultR0,
			MinorRadius: DefaultMinorRadius,
			Q0:          DefaultQ0,
			Lambda:      DefaultLambda,
			Sign:        1,
		},
		Pulse: PulseConf{
			Width: 1e-3,
		},
		Mesh: MeshConf{
			NR:   101,
			NZ:   101,
			RMin: DefaultR0 - DefaultMinorRadius,
			RMax: DefaultR0 + DefaultMinorRadius,
			ZMin: -DefaultMinorRadius,
			ZMax: DefaultMinorRadius,
		},
		SCE: SCEConf{
			Cells:        DefaultCells,
			Dx:           DefaultMinorRadius / DefaultCells,
			TotalCurrent: DefaultTotalCurrent,
			Policy:       "ngp",
			EScale:       1,
			Mass:         1,
			DtTarget:     DefaultDtSCE,
			DtOrbit:      DefaultDtOrbit,
			OutputSkip:   1,
		},
		Ensemble: EnsembleConf{
			N:     DefaultParticles,
			Seed:  1,
			RMax:  0.8 * DefaultMinorRadius,
			VPar:  0.5,
			MuMax: 0.1,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Equilibrium.B0 == 0 {
		return fmt.Errorf("config: on-axis field must be nonzero")
	}
	if c.Equilibrium.R0 <= 0 {
		return fmt.Errorf("config: major radius must be positive, got %g", c.Equilibrium.R0)
	}
	if c.Mesh.NR < 3 || c.Mesh.NZ < 3 {
		return fmt.Errorf("config: mesh needs at least 3 nodes per direction")
	}
	if c.SCE.Policy != "ngp" && c.SCE.Policy != "gaussian" {
		return fmt.Errorf("config: unknown deposition policy %q", c.SCE.Policy)
	}
	return nil
}
