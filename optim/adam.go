package optim

import (
	"math"

	"github.com/fumitoshi0524/deconvnd/tensor"
)

type AdamConfig struct {
	LR    float64
	Beta1 float64
	Beta2 float64
	Eps   float64
}

// DefaultAdamConfig returns the usual Adam hyper-parameters.
func DefaultAdamConfig() AdamConfig {
	return AdamConfig{LR: 1e-3, Beta1: 0.9, Beta2: 0.999, Eps: 1e-8}
}

type adamState struct {
	m []float64
	v []float64
}

type Adam struct {
	params []*tensor.Tensor
	cfg    AdamConfig
	state  map[*tensor.Tensor]*adamState
	step   int
}

func NewAdam(params []*tensor.Tensor, lr, beta1, beta2, eps float64) *Adam {
	return NewAdamWithConfig(params, AdamConfig{LR: lr, Beta1: beta1, Beta2: beta2, Eps: eps})
}

func NewAdamWithConfig(params []*tensor.Tensor, cfg AdamConfig) *Adam {
	return &Adam{
		params: append([]*tensor.Tensor(nil), params...),
		cfg:    cfg,
		state:  make(map[*tensor.Tensor]*adamState),
	}
}

func (o *Adam) Step() error {
	o.step++
	corr1 := 1 - math.Pow(o.cfg.Beta1, float64(o.step))
	corr2 := 1 - math.Pow(o.cfg.Beta2, float64(o.step))
	if corr1 == 0 {
		corr1 = math.SmallestNonzeroFloat64
	}
	if corr2 == 0 {
		corr2 = math.SmallestNonzeroFloat64
	}
	for _, p := range o.params {
		if p == nil {
			continue
		}
		grad := p.Grad()
		if grad == nil {
			continue
		}
		g := grad.Data()
		st := o.state[p]
		if st == nil {
			st = &adamState{m: make([]float64, len(g)), v: make([]float64, len(g))}
			o.state[p] = st
		}
		values := p.Data()
		for i, gi := range g {
			st.m[i] = o.cfg.Beta1*st.m[i] + (1-o.cfg.Beta1)*gi
			st.v[i] = o.cfg.Beta2*st.v[i] + (1-o.cfg.Beta2)*gi*gi
			mHat := st.m[i] / corr1
			vHat := st.v[i] / corr2
			values[i] -= o.cfg.LR * mHat / (math.Sqrt(vHat) + o.cfg.Eps)
		}
		if err := p.SetData(values); err != nil {
			return err
		}
	}
	return nil
}

func (o *Adam) ZeroGrad() {
	zeroGrad(o.params)
}
