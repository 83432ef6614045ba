package initializers

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/fumitoshi0524/deconvnd/tensor"
)

type sampler interface {
	Rand() float64
}

// draw fills t from the distribution returned by build, which receives
// the shared source while it is locked.
func draw(t *tensor.Tensor, build func(s rand.Source) sampler) error {
	srcMu.Lock()
	defer srcMu.Unlock()
	dist := build(src)
	values := make([]float64, t.Numel())
	for i := range values {
		values[i] = dist.Rand()
	}
	return t.SetData(values)
}

func drawNormal(t *tensor.Tensor, std float64) error {
	return draw(t, func(s rand.Source) sampler {
		return distuv.Normal{Mu: 0, Sigma: std, Src: s}
	})
}

func drawUniform(t *tensor.Tensor, limit float64) error {
	return draw(t, func(s rand.Source) sampler {
		return distuv.Uniform{Min: -limit, Max: limit, Src: s}
	})
}

// Normal draws from N(0, Scale^2). Scale defaults to 0.05.
type Normal struct {
	Scale float64
}

func (n Normal) Initialize(t *tensor.Tensor) error {
	scale := n.Scale
	if scale == 0 {
		scale = 0.05
	}
	return drawNormal(t, scale)
}

// Uniform draws from U(-Scale, Scale). Scale defaults to 0.05.
type Uniform struct {
	Scale float64
}

func (u Uniform) Initialize(t *tensor.Tensor) error {
	scale := u.Scale
	if scale == 0 {
		scale = 0.05
	}
	return drawUniform(t, scale)
}

// LeCunNormal draws from N(0, Scale^2/fan_in).
type LeCunNormal struct {
	Scale float64
}

func (l LeCunNormal) Initialize(t *tensor.Tensor) error {
	fanIn, _, err := GetFans(t.Shape())
	if err != nil {
		return err
	}
	return drawNormal(t, orOne(l.Scale)*math.Sqrt(1/float64(fanIn)))
}

// LeCunUniform draws from U(-s, s) with s = Scale*sqrt(3/fan_in).
type LeCunUniform struct {
	Scale float64
}

func (l LeCunUniform) Initialize(t *tensor.Tensor) error {
	fanIn, _, err := GetFans(t.Shape())
	if err != nil {
		return err
	}
	return drawUniform(t, orOne(l.Scale)*math.Sqrt(3/float64(fanIn)))
}

// GlorotNormal draws from N(0, 2*Scale^2/(fan_in+fan_out)).
type GlorotNormal struct {
	Scale float64
}

func (g GlorotNormal) Initialize(t *tensor.Tensor) error {
	fanIn, fanOut, err := GetFans(t.Shape())
	if err != nil {
		return err
	}
	return drawNormal(t, orOne(g.Scale)*math.Sqrt(2/float64(fanIn+fanOut)))
}

// GlorotUniform draws from U(-s, s) with s = Scale*sqrt(6/(fan_in+fan_out)).
type GlorotUniform struct {
	Scale float64
}

func (g GlorotUniform) Initialize(t *tensor.Tensor) error {
	fanIn, fanOut, err := GetFans(t.Shape())
	if err != nil {
		return err
	}
	return drawUniform(t, orOne(g.Scale)*math.Sqrt(6/float64(fanIn+fanOut)))
}

// HeNormal draws from N(0, 2*Scale^2/fan_in).
type HeNormal struct {
	Scale float64
}

func (h HeNormal) Initialize(t *tensor.Tensor) error {
	fanIn, _, err := GetFans(t.Shape())
	if err != nil {
		return err
	}
	return drawNormal(t, orOne(h.Scale)*math.Sqrt(2/float64(fanIn)))
}

// HeUniform draws from U(-s, s) with s = Scale*sqrt(6/fan_in).
type HeUniform struct {
	Scale float64
}

func (h HeUniform) Initialize(t *tensor.Tensor) error {
	fanIn, _, err := GetFans(t.Shape())
	if err != nil {
		return err
	}
	return drawUniform(t, orOne(h.Scale)*math.Sqrt(6/float64(fanIn)))
}
