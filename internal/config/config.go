package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/smoothdyn/internal/curve"
	"github.com/san-kum/smoothdyn/internal/dynamo"
	"github.com/san-kum/smoothdyn/internal/signal"
	"github.com/san-kum/smoothdyn/internal/sim"
)

const (
	DefaultDt       = 1.0 / 60
	DefaultDuration = 5.0
	DefaultStyle    = "smooth"
	DefaultF        = 1.0
	DefaultZ        = 1.0
	DefaultR        = 0.0
)

type Config struct {
	Style    StyleConfig   `yaml:"style"`
	Target   signal.Config `yaml:"target"`
	Dt       float64       `yaml:"dt"`
	Duration float64       `yaml:"duration"`
	Init     InitConfig    `yaml:"init"`
}

type StyleConfig struct {
	Name string  `yaml:"name"`
	F    float64 `yaml:"f"`
	Z    float64 `yaml:"z"`
	R    float64 `yaml:"r"`
}

type InitConfig struct {
	Position [3]float64 `yaml:"position"`
	Velocity [3]float64 `yaml:"velocity"`
}

func DefaultConfig() *Config {
	return &Config{
		Style:    StyleConfig{Name: DefaultStyle, F: DefaultF, Z: DefaultZ, R: DefaultR},
		Target:   signal.UnitStep(),
		Dt:       DefaultDt,
		Duration: DefaultDuration,
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

// Validate checks the run settings and that the style and target resolve.
func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("%w, got %g", dynamo.ErrNonPositiveStep, c.Dt)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %g", c.Duration)
	}
	if _, err := c.Params(); err != nil {
		return err
	}
	if _, err := c.Signal(); err != nil {
		return err
	}
	return nil
}

func (c *Config) CurveStyle() (curve.Style, error) {
	return curve.Parse(c.Style.Name, c.Style.F, c.Style.Z, c.Style.R)
}

func (c *Config) Params() (curve.Params, error) {
	style, err := c.CurveStyle()
	if err != nil {
		return curve.Params{}, err
	}
	return curve.New(style)
}

func (c *Config) Signal() (dynamo.TargetFunc, error) {
	return c.Target.Build()
}

func (c *Config) InitState() dynamo.State {
	p, v := c.Init.Position, c.Init.Velocity
	return dynamo.State{
		Position: dynamo.Vec3{X: p[0], Y: p[1], Z: p[2]},
		Velocity: dynamo.Vec3{X: v[0], Y: v[1], Z: v[2]},
	}
}

func (c *Config) SimConfig() sim.Config {
	return sim.Config{Dt: c.Dt, Duration: c.Duration, ValidateState: true}
}
