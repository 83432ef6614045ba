package nn

import (
	"fmt"

	"github.com/fumitoshi0524/deconvnd/tensor"
)

type Sequential struct {
	modules []Module
}

func NewSequential(mods ...Module) *Sequential {
	copyMods := make([]Module, len(mods))
	copy(copyMods, mods)
	return &Sequential{modules: copyMods}
}

func (s *Sequential) Forward(input *tensor.Tensor) (*tensor.Tensor, error) {
	out := input
	for idx, m := range s.modules {
		next, err := m.Forward(out)
		if err != nil {
			return nil, fmt.Errorf("layer %d (%T): %w", idx, m, err)
		}
		out = next
	}
	return out, nil
}

// Layers returns the contained modules in order.
func (s *Sequential) Layers() []Module {
	return append([]Module(nil), s.modules...)
}

func (s *Sequential) Parameters() []*tensor.Tensor {
	var params []*tensor.Tensor
	for _, m := range s.modules {
		params = append(params, m.Parameters()...)
	}
	return params
}

func (s *Sequential) ZeroGrad() {
	for _, m := range s.modules {
		m.ZeroGrad()
	}
}

func (s *Sequential) StateDict(prefix string, state map[string]*tensor.Tensor) {
	for idx, mod := range s.modules {
		if len(mod.Parameters()) == 0 {
			continue
		}
		captureState(joinPrefix(prefix, fmt.Sprintf("%d", idx)), mod, state)
	}
}

func (s *Sequential) LoadState(prefix string, state map[string]*tensor.Tensor) error {
	for idx, mod := range s.modules {
		if len(mod.Parameters()) == 0 {
			continue
		}
		if err := restoreState(joinPrefix(prefix, fmt.Sprintf("%d", idx)), mod, state); err != nil {
			return err
		}
	}
	return nil
}
