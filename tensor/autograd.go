package tensor

import (
	"errors"
	"fmt"

	"github.com/fumitoshi0524/deconvnd/internal/parallel"
)

// ErrNoGrad is returned by Backward on a tensor outside the graph.
var ErrNoGrad = errors.New("tensor does not require grad")

// Backward seeds the gradient of t with ones and propagates it through
// the graph. Gradients accumulate into every tensor that requires grad.
func (t *Tensor) Backward() error {
	if t == nil {
		return errors.New("nil tensor")
	}
	return t.BackwardWith(Ones(t.shape...))
}

// BackwardWith is Backward with an explicit upstream gradient.
func (t *Tensor) BackwardWith(seed *Tensor) error {
	if t == nil {
		return errors.New("nil tensor")
	}
	if !t.requiresGrad {
		return ErrNoGrad
	}
	if err := ensureSameShape(t, seed); err != nil {
		return fmt.Errorf("backward seed: %w", err)
	}
	order := topo(t)
	grads := map[*Tensor]*Tensor{t: seed.Clone()}
	for i := len(order) - 1; i >= 0; i-- {
		current := order[i]
		grad := grads[current]
		if grad == nil {
			continue
		}
		if current.grad == nil {
			current.grad = grad.Clone()
		} else {
			addInPlace(current.grad, grad)
		}
		if current.node != nil {
			current.node.backward(grad, grads)
		}
	}
	return nil
}

func topo(root *Tensor) []*Tensor {
	visited := map[*Tensor]bool{}
	var order []*Tensor
	var visit func(*Tensor)
	visit = func(n *Tensor) {
		if n == nil || visited[n] {
			return
		}
		visited[n] = true
		for _, parent := range n.parents {
			visit(parent)
		}
		order = append(order, n)
	}
	visit(root)
	return order
}

// attachGrad wires out into the graph when any of inputs requires grad.
// Nil inputs are skipped, so optional operands such as a missing bias can
// be passed through unchanged.
func attachGrad(out *Tensor, backward func(grad *Tensor, grads map[*Tensor]*Tensor), inputs ...*Tensor) {
	parents := make([]*Tensor, 0, len(inputs))
	for _, in := range inputs {
		if in != nil && in.requiresGrad {
			parents = append(parents, in)
		}
	}
	if len(parents) == 0 {
		return
	}
	out.requiresGrad = true
	out.parents = parents
	out.node = &node{backward: backward}
}

func needsGrad(t *Tensor) bool {
	return t != nil && t.requiresGrad
}

func accumulate(grads map[*Tensor]*Tensor, target *Tensor, value *Tensor) {
	if target == nil || value == nil {
		return
	}
	if existing, ok := grads[target]; ok {
		addInPlace(existing, value)
	} else {
		grads[target] = value.Clone()
	}
}

func addInPlace(dst, src *Tensor) {
	if err := ensureSameShape(dst, src); err != nil {
		panic(err)
	}
	parallel.ForGrain(len(dst.data), elementGrain, func(start, end int) {
		for i := start; i < end; i++ {
			dst.data[i] += src.data[i]
		}
	})
}
