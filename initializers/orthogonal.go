package initializers

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/fumitoshi0524/deconvnd/internal/convnd"
	"github.com/fumitoshi0524/deconvnd/tensor"
)

// Orthogonal fills a weight viewed as a (shape[0], prod(shape[1:]))
// matrix with a random matrix whose rows, or columns when there are more
// rows than columns, are orthonormal, times Scale.
type Orthogonal struct {
	Scale float64
}

func (o Orthogonal) Initialize(t *tensor.Tensor) error {
	shape := t.Shape()
	if len(shape) < 2 {
		return fmt.Errorf("orthogonal initializer needs rank >= 2, got shape %v", shape)
	}
	rows, cols := shape[0], convnd.Product(shape[1:])

	gauss := tensor.Zeros(rows, cols)
	if err := drawNormal(gauss, 1); err != nil {
		return err
	}
	a := mat.NewDense(rows, cols, gauss.Data())

	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return errors.New("orthogonal initializer: SVD did not converge")
	}
	var q mat.Dense
	if rows >= cols {
		svd.UTo(&q)
	} else {
		var v mat.Dense
		svd.VTo(&v)
		q.CloneFrom(v.T())
	}
	q.Scale(orOne(o.Scale), &q)
	return t.SetData(q.RawMatrix().Data)
}
