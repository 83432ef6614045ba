// Package convnd holds the shape arithmetic shared by the N-dimensional
// convolution and deconvolution operators and links.
package convnd

import "fmt"

// AsTuple expands v into an n-tuple. A single value is repeated n times;
// a slice of length n is copied.
func AsTuple(v []int, n int) ([]int, error) {
	if n <= 0 {
		return nil, fmt.Errorf("tuple length must be positive, got %d", n)
	}
	switch len(v) {
	case 1:
		out := make([]int, n)
		for i := range out {
			out[i] = v[0]
		}
		return out, nil
	case n:
		return append([]int(nil), v...), nil
	default:
		return nil, fmt.Errorf("expected 1 or %d values, got %d", n, len(v))
	}
}

// ConvOutsize returns the spatial extent produced by convolving size
// elements with a kernel of k elements, stride s and padding p.
// With coverAll the last partial window is kept.
func ConvOutsize(size, k, s, p int, coverAll bool) int {
	if coverAll {
		return floorDiv(size+2*p-k+s-1, s) + 1
	}
	return floorDiv(size+2*p-k, s) + 1
}

// DeconvOutsize is the inverse of ConvOutsize: the extent whose
// convolution yields size.
func DeconvOutsize(size, k, s, p int, coverAll bool) int {
	if coverAll {
		return s*(size-1) + k - s + 1 - 2*p
	}
	return s*(size-1) + k - 2*p
}

// Product multiplies dims together. The empty product is 1.
func Product(dims []int) int {
	n := 1
	for _, d := range dims {
		n *= d
	}
	return n
}

// Strides returns row-major strides for dims.
func Strides(dims []int) []int {
	strides := make([]int, len(dims))
	stride := 1
	for i := len(dims) - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= dims[i]
	}
	return strides
}

// Unravel writes the multi-index of flat offset idx into dst.
func Unravel(idx int, dims, dst []int) {
	for i := len(dims) - 1; i >= 0; i-- {
		dst[i] = idx % dims[i]
		idx /= dims[i]
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
