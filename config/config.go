package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/voxelsplace/isonets/chunk"
	"github.com/voxelsplace/isonets/density"
	"github.com/voxelsplace/isonets/noise"
	"github.com/voxelsplace/isonets/pack"
	"github.com/voxelsplace/isonets/world"
)

type Config struct {
	World   WorldConfig   `yaml:"world"`
	Chunk   ChunkConfig   `yaml:"chunk"`
	Density DensityConfig `yaml:"density"`
	Runner  RunnerConfig  `yaml:"runner"`
	Output  OutputConfig  `yaml:"output"`
}

type WorldConfig struct {
	Size    [3]int `yaml:"size"`
	Spacing int    `yaml:"spacing"`
	Order   string `yaml:"order"`
}

type ChunkConfig struct {
	Width          int `yaml:"width"`
	Height         int `yaml:"height"`
	Depth          int `yaml:"depth"`
	SamplesPerTick int `yaml:"samples_per_tick"`
}

// DensityConfig selects the noise source and the terrain formula. Seed 0
// keeps the reference simplex lattice; any other seed selects seeded Perlin
// noise.
type DensityConfig struct {
	Seed           int64 `yaml:"seed"`
	density.Params `yaml:",inline"`
}

type RunnerConfig struct {
	TickInterval string `yaml:"tick_interval"`
}

type OutputConfig struct {
	Compression string `yaml:"compression"`
}

func Default() *Config {
	sc := world.DefaultSchedulerConfig()
	return &Config{
		World: WorldConfig{Size: sc.Size, Spacing: sc.Spacing, Order: string(sc.Order)},
		Chunk: ChunkConfig{
			Width:          sc.Chunk.Dims.W,
			Height:         sc.Chunk.Dims.H,
			Depth:          sc.Chunk.Dims.P,
			SamplesPerTick: sc.Chunk.Budget,
		},
		Density: DensityConfig{Params: density.DefaultParams()},
		Runner:  RunnerConfig{TickInterval: "0s"},
		Output:  OutputConfig{Compression: "zstd"},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data, cfg)
}

// Parse decodes YAML over base, or over the defaults when base is nil.
func Parse(data []byte, base *Config) (*Config, error) {
	cfg := base
	if cfg == nil {
		cfg = Default()
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.World.Order == "" {
		c.World.Order = string(world.OrderNested)
	}
	if c.Runner.TickInterval == "" {
		c.Runner.TickInterval = "0s"
	}
	if c.Output.Compression == "" {
		c.Output.Compression = "zstd"
	}

	for i, n := range c.World.Size {
		if n < 0 {
			return fmt.Errorf("world.size[%d] must not be negative", i)
		}
	}
	if c.World.Spacing <= 0 {
		return fmt.Errorf("world.spacing must be positive")
	}
	if _, err := world.ParseOrder(c.World.Order); err != nil {
		return fmt.Errorf("world.order invalid: %w", err)
	}
	if c.Chunk.Width < 2 || c.Chunk.Height < 2 || c.Chunk.Depth < 2 {
		return fmt.Errorf("chunk dimensions must be at least 2")
	}
	if c.Chunk.Width > pack.MaxDim || c.Chunk.Height > pack.MaxDim || c.Chunk.Depth > pack.MaxDim {
		return fmt.Errorf("chunk dimensions must not exceed %d", pack.MaxDim)
	}
	if c.Chunk.SamplesPerTick <= 0 {
		return fmt.Errorf("chunk.samples_per_tick must be positive")
	}
	if err := c.Density.Params.Validate(); err != nil {
		return fmt.Errorf("density: %w", err)
	}
	d, err := time.ParseDuration(c.Runner.TickInterval)
	if err != nil {
		return fmt.Errorf("runner.tick_interval invalid: %w", err)
	}
	if d < 0 {
		return fmt.Errorf("runner.tick_interval must not be negative")
	}
	if _, err := pack.ParseCompression(c.Output.Compression); err != nil {
		return fmt.Errorf("output.compression invalid: %w", err)
	}
	return nil
}

// Scheduler returns the lattice and chunk settings. Call Validate first.
func (c *Config) Scheduler() world.SchedulerConfig {
	order, _ := world.ParseOrder(c.World.Order)
	return world.SchedulerConfig{
		Size:    c.World.Size,
		Spacing: c.World.Spacing,
		Order:   order,
		Chunk: chunk.Config{
			Dims:   chunk.Dims{W: c.Chunk.Width, H: c.Chunk.Height, P: c.Chunk.Depth},
			Budget: c.Chunk.SamplesPerTick,
		},
	}
}

func (c *Config) Noise() noise.Source {
	if c.Density.Seed == 0 {
		return noise.NewSimplex()
	}
	return noise.NewPerlin(c.Density.Seed)
}

func (c *Config) Field() (*density.Field, error) {
	return density.NewField(c.Density.Params, c.Noise())
}

func (c *Config) TickInterval() time.Duration {
	d, _ := time.ParseDuration(c.Runner.TickInterval)
	return d
}

func (c *Config) Compression() pack.Compression {
	comp, _ := pack.ParseCompression(c.Output.Compression)
	return comp
}

// Marshal renders the effective configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
