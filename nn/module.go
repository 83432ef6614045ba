// Package nn holds the layer library: links that own learnable parameters
// and forward their input through the tensor operators.
package nn

import (
	"errors"
	"fmt"

	"github.com/fumitoshi0524/deconvnd/tensor"
)

type Module interface {
	Forward(input *tensor.Tensor) (*tensor.Tensor, error)
	Parameters() []*tensor.Tensor
	ZeroGrad()
}

type StatefulModule interface {
	Module
	StateDict(prefix string, state map[string]*tensor.Tensor)
	LoadState(prefix string, state map[string]*tensor.Tensor) error
}

// Param is a learnable tensor together with the name its link registers
// it under.
type Param struct {
	Name   string
	Tensor *tensor.Tensor
}

// Link is a module whose parameters carry names. Names key the state
// dict, so a link saved and reloaded round-trips by name rather than by
// position.
type Link interface {
	Module
	NamedParams() []Param
}

func ZeroGradAll(mods ...Module) {
	for _, m := range mods {
		if m == nil {
			continue
		}
		m.ZeroGrad()
	}
}

func SaveModule(path string, mod Module) error {
	if mod == nil {
		return errors.New("SaveModule requires non-nil module")
	}
	state := make(map[string]*tensor.Tensor)
	captureState("", mod, state)
	if len(state) == 0 {
		return errors.New("module has no state to save")
	}
	return tensor.SaveTensors(path, state)
}

func LoadModule(path string, mod Module) error {
	if mod == nil {
		return errors.New("LoadModule requires non-nil module")
	}
	state, err := tensor.LoadTensors(path)
	if err != nil {
		return err
	}
	return restoreState("", mod, state)
}

func joinPrefix(prefix, name string) string {
	if prefix == "" {
		return name
	}
	if name == "" {
		return prefix
	}
	return prefix + "." + name
}

func captureState(prefix string, mod Module, state map[string]*tensor.Tensor) {
	switch m := mod.(type) {
	case StatefulModule:
		m.StateDict(prefix, state)
	case Link:
		paramsState(prefix, m.NamedParams(), state)
	default:
		for idx, p := range mod.Parameters() {
			if p != nil {
				state[joinPrefix(prefix, fmt.Sprintf("param_%d", idx))] = p.Clone()
			}
		}
	}
}

func restoreState(prefix string, mod Module, state map[string]*tensor.Tensor) error {
	switch m := mod.(type) {
	case StatefulModule:
		return m.LoadState(prefix, state)
	case Link:
		return loadParamsState(fmt.Sprintf("%T", mod), prefix, m.NamedParams(), state)
	default:
		for idx, p := range mod.Parameters() {
			if p == nil {
				continue
			}
			key := joinPrefix(prefix, fmt.Sprintf("param_%d", idx))
			t, ok := state[key]
			if !ok {
				return fmt.Errorf("missing parameter %s", key)
			}
			if err := tensor.CopyInto(p, t); err != nil {
				return fmt.Errorf("load %s: %w", key, err)
			}
		}
		return nil
	}
}

func paramsState(prefix string, params []Param, state map[string]*tensor.Tensor) {
	if state == nil {
		return
	}
	for _, p := range params {
		state[joinPrefix(prefix, p.Name)] = p.Tensor.Clone()
	}
}

func loadParamsState(owner, prefix string, params []Param, state map[string]*tensor.Tensor) error {
	if state == nil {
		return fmt.Errorf("state dict is nil")
	}
	for _, p := range params {
		key := joinPrefix(prefix, p.Name)
		t, ok := state[key]
		if !ok {
			return fmt.Errorf("%s missing %s", owner, key)
		}
		if err := tensor.CopyInto(p.Tensor, t); err != nil {
			return fmt.Errorf("load %s: %w", key, err)
		}
	}
	return nil
}

func tensorsOf(params []Param) []*tensor.Tensor {
	out := make([]*tensor.Tensor, len(params))
	for i, p := range params {
		out[i] = p.Tensor
	}
	return out
}

func zeroGradParams(params []Param) {
	for _, p := range params {
		p.Tensor.ZeroGrad()
	}
}
