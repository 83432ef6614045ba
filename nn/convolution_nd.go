package nn

import (
	"fmt"

	"github.com/fumitoshi0524/deconvnd/initializers"
	"github.com/fumitoshi0524/deconvnd/tensor"
)

// ConvolutionNDConfig configures a ConvolutionND link. Fields follow
// DeconvolutionNDConfig.
type ConvolutionNDConfig struct {
	NDim        int
	InChannels  int
	OutChannels int
	KSize       []int
	Stride      []int
	Pad         []int
	InitialW    any
	InitialBias any
	NoBias      bool
}

// ConvolutionND is an N-dimensional convolution link with filter W shaped
// (out_channels, in_channels, k1..kN).
type ConvolutionND struct {
	ndim   int
	geo    convGeometry
	weight *tensor.Tensor
	bias   *tensor.Tensor
}

func NewConvolutionND(cfg ConvolutionNDConfig) (*ConvolutionND, error) {
	geo, err := newConvGeometry("ConvolutionND", cfg.NDim, cfg.InChannels, cfg.OutChannels, cfg.KSize, cfg.Stride, cfg.Pad)
	if err != nil {
		return nil, err
	}
	wShape := append([]int{cfg.OutChannels, cfg.InChannels}, geo.ksize...)
	weight, err := newParam(wShape, cfg.InitialW, initializers.LeCunNormal{})
	if err != nil {
		return nil, fmt.Errorf("ConvolutionND W: %w", err)
	}
	var bias *tensor.Tensor
	if !cfg.NoBias {
		bias, err = newParam([]int{cfg.OutChannels}, cfg.InitialBias, initializers.Zero())
		if err != nil {
			return nil, fmt.Errorf("ConvolutionND b: %w", err)
		}
	}
	return &ConvolutionND{ndim: cfg.NDim, geo: geo, weight: weight, bias: bias}, nil
}

func MustNewConvolutionND(cfg ConvolutionNDConfig) *ConvolutionND {
	c, err := NewConvolutionND(cfg)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *ConvolutionND) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	return tensor.ConvolutionND(x, c.weight, c.bias, c.geo.stride, c.geo.pad)
}

func (c *ConvolutionND) W() *tensor.Tensor { return c.weight }
func (c *ConvolutionND) B() *tensor.Tensor { return c.bias }
func (c *ConvolutionND) NDim() int         { return c.ndim }

func (c *ConvolutionND) NamedParams() []Param {
	params := []Param{{Name: "W", Tensor: c.weight}}
	if c.bias != nil {
		params = append(params, Param{Name: "b", Tensor: c.bias})
	}
	return params
}

func (c *ConvolutionND) Parameters() []*tensor.Tensor {
	return tensorsOf(c.NamedParams())
}

func (c *ConvolutionND) ZeroGrad() {
	zeroGradParams(c.NamedParams())
}

func (c *ConvolutionND) StateDict(prefix string, state map[string]*tensor.Tensor) {
	paramsState(prefix, c.NamedParams(), state)
}

func (c *ConvolutionND) LoadState(prefix string, state map[string]*tensor.Tensor) error {
	return loadParamsState("ConvolutionND", prefix, c.NamedParams(), state)
}
