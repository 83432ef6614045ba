package optim

import "github.com/fumitoshi0524/deconvnd/tensor"

type SGDConfig struct {
	LR          float64
	Momentum    float64
	WeightDecay float64
	Nesterov    bool
}

// SGD is stochastic gradient descent with optional momentum and L2 weight
// decay.
type SGD struct {
	params   []*tensor.Tensor
	cfg      SGDConfig
	velocity map[*tensor.Tensor]*tensor.Tensor
}

func NewSGD(params []*tensor.Tensor, lr float64, momentum float64) *SGD {
	return NewSGDWithConfig(params, SGDConfig{LR: lr, Momentum: momentum})
}

func NewSGDWithConfig(params []*tensor.Tensor, cfg SGDConfig) *SGD {
	return &SGD{
		params:   append([]*tensor.Tensor(nil), params...),
		cfg:      cfg,
		velocity: make(map[*tensor.Tensor]*tensor.Tensor),
	}
}

func (o *SGD) Step() error {
	for _, p := range o.params {
		if p == nil {
			continue
		}
		update := p.Grad()
		if update == nil {
			continue
		}
		if o.cfg.WeightDecay > 0 {
			if err := update.AddScaled(p, o.cfg.WeightDecay); err != nil {
				return err
			}
		}
		if o.cfg.Momentum > 0 {
			v := o.velocity[p]
			if v == nil {
				v = tensor.Zeros(update.Shape()...)
				o.velocity[p] = v
			}
			v.Scale(o.cfg.Momentum)
			if err := v.AddScaled(update, 1); err != nil {
				return err
			}
			if o.cfg.Nesterov {
				if err := update.AddScaled(v, o.cfg.Momentum); err != nil {
					return err
				}
			} else {
				update = v
			}
		}
		if err := p.AddScaled(update, -o.cfg.LR); err != nil {
			return err
		}
	}
	return nil
}

func (o *SGD) ZeroGrad() {
	zeroGrad(o.params)
}
