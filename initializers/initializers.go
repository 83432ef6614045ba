// Package initializers fills parameter tensors with their initial values.
//
// An Initializer writes into an already allocated tensor; links allocate
// their parameters with the right shape and hand them to the initializer
// picked by Get.
package initializers

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/exp/rand"

	"github.com/fumitoshi0524/deconvnd/internal/convnd"
	"github.com/fumitoshi0524/deconvnd/tensor"
)

// ErrUnsupported is returned by Get for values it cannot turn into an
// Initializer.
var ErrUnsupported = errors.New("unsupported initializer")

// Initializer sets the contents of a parameter tensor.
type Initializer interface {
	Initialize(t *tensor.Tensor) error
}

// Func adapts a plain function to Initializer.
type Func func(t *tensor.Tensor) error

func (f Func) Initialize(t *tensor.Tensor) error {
	return f(t)
}

var (
	srcMu sync.Mutex
	src   rand.Source = rand.NewSource(uint64(time.Now().UnixNano()))
)

// Seed resets the source shared by the random initializers.
func Seed(seed uint64) {
	srcMu.Lock()
	src = rand.NewSource(seed)
	srcMu.Unlock()
}

// Get resolves an initializer specification:
//
//	nil                     -> nil, the caller applies its own default
//	Initializer             -> itself
//	float64, float32, int   -> Constant with that value
//	[]float64               -> Constant filled element for element
//	*tensor.Tensor          -> Array copying the tensor
func Get(spec any) (Initializer, error) {
	switch v := spec.(type) {
	case nil:
		return nil, nil
	case Initializer:
		return v, nil
	case float64:
		return Constant{Value: v}, nil
	case float32:
		return Constant{Value: float64(v)}, nil
	case int:
		return Constant{Value: float64(v)}, nil
	case []float64:
		return Constant{Values: append([]float64(nil), v...)}, nil
	case *tensor.Tensor:
		if v == nil {
			return nil, fmt.Errorf("%w: nil tensor", ErrUnsupported)
		}
		return Array{Source: v.Detach()}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupported, spec)
	}
}

// GetOr is Get with a fallback for nil specifications.
func GetOr(spec any, fallback Initializer) (Initializer, error) {
	init, err := Get(spec)
	if err != nil {
		return nil, err
	}
	if init == nil {
		return fallback, nil
	}
	return init, nil
}

// GetFans returns the fan-in and fan-out of a weight shaped
// (a, b, k1..kN): fan-in is b*prod(k), fan-out is a*prod(k).
func GetFans(shape []int) (fanIn, fanOut int, err error) {
	if len(shape) < 2 {
		return 0, 0, fmt.Errorf("fans need a weight of rank >= 2, got shape %v", shape)
	}
	receptive := convnd.Product(shape[2:])
	return shape[1] * receptive, shape[0] * receptive, nil
}

func orOne(scale float64) float64 {
	if scale == 0 {
		return 1
	}
	return scale
}
