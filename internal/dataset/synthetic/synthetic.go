// Package synthetic generates a reproducible sales dataset.
package synthetic

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"ventas/internal/core"
)

// Config controls the generator. The same Config always yields the same
// records.
type Config struct {
	Seed  uint64
	Size  int
	Start core.Date
	End   core.Date

	// Gamma distribution of the amount.
	Shape float64
	Scale float64
}

// DefaultConfig mirrors the dashboard's demo data: 5000 orders between
// 2024-01-01 and 2025-07-31, amounts Gamma(5, 120).
func DefaultConfig() Config {
	return Config{
		Seed:  42,
		Size:  5000,
		Start: core.NewDate(2024, 1, 1),
		End:   core.NewDate(2025, 7, 31),
		Shape: 5,
		Scale: 120,
	}
}

// Generator is a dataset.Source backed by a seeded PRNG.
type Generator struct {
	cfg Config
}

// New returns a generator. Zero-valued fields fall back to DefaultConfig.
func New(cfg Config) *Generator {
	def := DefaultConfig()
	if cfg.Size <= 0 {
		cfg.Size = def.Size
	}
	if cfg.Start.IsZero() {
		cfg.Start = def.Start
	}
	if cfg.End.IsZero() {
		cfg.End = def.End
	}
	if cfg.Shape <= 0 {
		cfg.Shape = def.Shape
	}
	if cfg.Scale <= 0 {
		cfg.Scale = def.Scale
	}
	return &Generator{cfg: cfg}
}

// Load implements dataset.Source.
func (g *Generator) Load(ctx context.Context) ([]core.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return g.Generate()
}

// Generate produces the records.
func (g *Generator) Generate() ([]core.Record, error) {
	span := core.NewDateRange(g.cfg.Start, g.cfg.End)
	if !span.IsValid() {
		return nil, errors.New("synthetic: start date after end date")
	}
	days := span.Days()
	cats := core.Categories()
	regs := core.Regions()

	src := rand.NewPCG(g.cfg.Seed, g.cfg.Seed^0x9e3779b97f4a7c15)
	rng := rand.New(src)
	// distuv parameterises by rate, the inverse of scale.
	amount := distuv.Gamma{Alpha: g.cfg.Shape, Beta: 1 / g.cfg.Scale, Src: src}
	out := make([]core.Record, g.cfg.Size)
	for i := range out {
		out[i] = core.Record{
			Date:     g.cfg.Start.AddDays(rng.IntN(days)),
			Category: cats[rng.IntN(len(cats))],
			Region:   regs[rng.IntN(len(regs))],
			Amount:   math.Round(amount.Rand()*100) / 100,
		}
	}
	return out, nil
}
