// Package charts renders the report's static figures with gonum/plot. It
// consumes the immutable tables produced by the pipeline and writes PNG
// files; nothing here feeds back into the analysis.
package charts

import (
	"fmt"
	"image/color"
	"math/rand"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/MwillianM/FlchainExploration/internal/aggregate"
	"github.com/MwillianM/FlchainExploration/internal/dataset"
	"github.com/MwillianM/FlchainExploration/internal/regress"
	"github.com/MwillianM/FlchainExploration/internal/transform"
)

// Options controls chart rendering.
type Options struct {
	// Dir receives the PNG files.
	Dir string
	// Width and Height of each chart in inches.
	Width, Height float64
	// Seed drives the jitter offsets so renders are reproducible.
	Seed int64
}

// DefaultOptions returns the rendering defaults.
func DefaultOptions(dir string) Options {
	return Options{Dir: dir, Width: 8, Height: 5, Seed: 1}
}

// palette is shared across grouped charts so a level keeps its color
// from one figure to the next.
var palette = []color.Color{
	color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	color.RGBA{R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
	color.RGBA{R: 0x8c, G: 0x56, B: 0x4b, A: 0xff},
}

// RenderAll draws the full figure set and returns the written paths.
func RenderAll(t *dataset.Table, groups []aggregate.GroupAggregate, m *regress.Model, opt Options) ([]string, error) {
	if err := os.MkdirAll(opt.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("charts dir: %w", err)
	}
	rng := rand.New(rand.NewSource(opt.Seed))

	age, err := t.Int(dataset.ColAge)
	if err != nil {
		return nil, err
	}
	ageVals := make([]float64, age.Len())
	for i := range ageVals {
		ageVals[i] = float64(age.At(i))
	}
	flc, err := t.Float(transform.ColFLC)
	if err != nil {
		return nil, err
	}

	steps := []struct {
		name string
		draw func(path string) error
	}{
		{"age_histogram.png", func(p string) error {
			return Histogram(ageVals, "Age at sampling", "age (years)", opt, p)
		}},
		{"flc_histogram.png", func(p string) error {
			return Histogram(flc.Values(), "Combined FLC level", "flc (kappa + lambda)", opt, p)
		}},
		{"kappa_by_group_boxplot.png", func(p string) error {
			return BoxplotByGroup(t, dataset.ColKappa, transform.ColFLCGroup, opt, p)
		}},
		{"lambda_by_group_boxplot.png", func(p string) error {
			return BoxplotByGroup(t, dataset.ColLambda, transform.ColFLCGroup, opt, p)
		}},
		{"flc_vs_age_scatter.png", func(p string) error {
			return JitterScatter(t, opt, rng, p)
		}},
		{"flc_by_recruits_freqpoly.png", func(p string) error {
			return FreqPolygon(t, transform.ColFLC, transform.ColRecruits, opt, p)
		}},
		{"death_rate_regression.png", func(p string) error {
			return RegressionPlot(groups, m, opt, p)
		}},
	}

	written := make([]string, 0, len(steps))
	for _, step := range steps {
		path := filepath.Join(opt.Dir, step.name)
		if err := step.draw(path); err != nil {
			return nil, err
		}
		written = append(written, path)
	}
	return written, nil
}

func (o Options) size() (vg.Length, vg.Length) {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = 8
	}
	if h <= 0 {
		h = 5
	}
	return vg.Length(w) * vg.Inch, vg.Length(h) * vg.Inch
}

// Histogram draws a 20-bin histogram of the given values.
func Histogram(vals []float64, title, xlabel string, opt Options, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = "count"

	h, err := plotter.NewHist(plotter.Values(vals), 20)
	if err != nil {
		return fmt.Errorf("histogram %s: %w", title, err)
	}
	h.FillColor = palette[0]
	p.Add(h, plotter.NewGrid())

	w, ht := opt.size()
	if err := p.Save(w, ht, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// BoxplotByGroup draws one box per factor level for a numeric column,
// positioned in level order.
func BoxplotByGroup(t *dataset.Table, valueName, factorName string, opt Options, path string) error {
	col, err := t.Float(valueName)
	if err != nil {
		return err
	}
	f, err := t.Factor(factorName)
	if err != nil {
		return err
	}
	levels := f.Levels()
	grouped := make([]plotter.Values, len(levels))
	for i := 0; i < col.Len(); i++ {
		v, ok := col.At(i)
		if !ok {
			continue
		}
		code := f.Code(i)
		if code < 0 {
			continue
		}
		grouped[code] = append(grouped[code], v)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s by %s", valueName, factorName)
	p.Y.Label.Text = valueName
	for code, vals := range grouped {
		if len(vals) == 0 {
			continue
		}
		b, err := plotter.NewBoxPlot(vg.Points(18), float64(code), vals)
		if err != nil {
			return fmt.Errorf("boxplot %s level %s: %w", valueName, levels[code], err)
		}
		p.Add(b)
	}
	p.NominalX(levels...)

	w, h := opt.size()
	if err := p.Save(w, h, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// JitterScatter draws flc against age with a small horizontal jitter,
// colored by vital status.
func JitterScatter(t *dataset.Table, opt Options, rng *rand.Rand, path string) error {
	age, err := t.Int(dataset.ColAge)
	if err != nil {
		return err
	}
	flc, err := t.Float(transform.ColFLC)
	if err != nil {
		return err
	}
	death, err := t.Factor(dataset.ColDeath)
	if err != nil {
		return err
	}

	levels := death.Levels()
	byLevel := make([]plotter.XYs, len(levels))
	for i := 0; i < age.Len(); i++ {
		v, ok := flc.At(i)
		if !ok {
			continue
		}
		code := death.Code(i)
		x := float64(age.At(i)) + (rng.Float64()-0.5)*0.8
		byLevel[code] = append(byLevel[code], plotter.XY{X: x, Y: v})
	}

	p := plot.New()
	p.Title.Text = "Combined FLC vs age"
	p.X.Label.Text = "age (years)"
	p.Y.Label.Text = "flc"
	for code, xys := range byLevel {
		if len(xys) == 0 {
			continue
		}
		s, err := plotter.NewScatter(xys)
		if err != nil {
			return fmt.Errorf("scatter level %s: %w", levels[code], err)
		}
		s.GlyphStyle.Color = palette[code%len(palette)]
		s.GlyphStyle.Radius = vg.Points(1.5)
		p.Add(s)
		p.Legend.Add(levels[code], s)
	}
	p.Add(plotter.NewGrid())
	p.Legend.Top = true

	w, h := opt.size()
	if err := p.Save(w, h, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// FreqPolygon draws per-level frequency polygons of a numeric column over a
// shared 20-bin grid, so the level distributions are directly comparable.
func FreqPolygon(t *dataset.Table, valueName, factorName string, opt Options, path string) error {
	col, err := t.Float(valueName)
	if err != nil {
		return err
	}
	f, err := t.Factor(factorName)
	if err != nil {
		return err
	}
	present := col.Present()
	if len(present) == 0 {
		return fmt.Errorf("freq polygon %s: no values", valueName)
	}
	lo, hi := present[0], present[0]
	for _, v := range present[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	const bins = 20
	width := (hi - lo) / bins
	if width == 0 {
		width = 1
	}

	levels := f.Levels()
	counts := make([][]float64, len(levels))
	for i := range counts {
		counts[i] = make([]float64, bins)
	}
	for i := 0; i < col.Len(); i++ {
		v, ok := col.At(i)
		if !ok {
			continue
		}
		code := f.Code(i)
		if code < 0 {
			continue
		}
		b := int((v - lo) / width)
		if b >= bins {
			b = bins - 1
		}
		counts[code][b]++
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s by %s", valueName, factorName)
	p.X.Label.Text = valueName
	p.Y.Label.Text = "count"
	for code, cs := range counts {
		xys := make(plotter.XYs, bins)
		var any bool
		for b, c := range cs {
			xys[b] = plotter.XY{X: lo + (float64(b)+0.5)*width, Y: c}
			if c > 0 {
				any = true
			}
		}
		if !any {
			continue
		}
		l, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("freq polygon level %s: %w", levels[code], err)
		}
		l.Color = palette[code%len(palette)]
		l.Width = vg.Points(1.5)
		p.Add(l)
		p.Legend.Add(levels[code], l)
	}
	p.Add(plotter.NewGrid())
	p.Legend.Top = true

	w, h := opt.size()
	if err := p.Save(w, h, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// RegressionPlot draws death rate against mean FLC per group with the fitted
// line over the observed range.
func RegressionPlot(groups []aggregate.GroupAggregate, m *regress.Model, opt Options, path string) error {
	xys := make(plotter.XYs, len(groups))
	for i, g := range groups {
		xys[i] = plotter.XY{X: g.FLCMean, Y: g.DeathRate}
	}

	p := plot.New()
	p.Title.Text = "Death rate vs mean FLC by group"
	p.X.Label.Text = "mean flc"
	p.Y.Label.Text = "death rate"

	s, err := plotter.NewScatter(xys)
	if err != nil {
		return fmt.Errorf("regression scatter: %w", err)
	}
	s.GlyphStyle.Color = palette[0]
	s.GlyphStyle.Radius = vg.Points(3)
	p.Add(s, plotter.NewGrid())

	if m != nil {
		fit := plotter.NewFunction(m.Predict)
		fit.Color = palette[1]
		fit.Width = vg.Points(1.5)
		p.Add(fit)
		p.Legend.Add(fmt.Sprintf("fit (R²=%.3f)", m.R2), fit)
		p.Legend.Top = true
	}

	w, h := opt.size()
	if err := p.Save(w, h, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
