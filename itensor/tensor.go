package itensor

import (
	"fmt"
	"math"
	"math/cmplx"
	"slices"

	"github.com/fumin/tensor"
)

// Tensor couples an ordered index list with its dense data.
// Rank-0 results are held as a single element with an empty index list.
type Tensor struct {
	inds []Index
	data *tensor.Dense
}

// New returns a zero tensor over the given indices.
func New(inds ...Index) *Tensor {
	return &Tensor{inds: slices.Clone(inds), data: tensor.Zeros(dimsOf(inds)...)}
}

// Inds returns the tensor's indices in data axis order.
func (t *Tensor) Inds() []Index { return t.inds }

// At returns the element at the given position, one coordinate per index.
func (t *Tensor) At(pos ...int) complex64 {
	if len(t.inds) == 0 {
		return t.data.At(0)
	}
	return t.data.At(pos...)
}

// Set assigns the element at the given position.
func (t *Tensor) Set(v complex64, pos ...int) {
	t.data.SetAt(slices.Clone(pos), v)
}

// Scalar returns the value of a rank-0 tensor.
func (t *Tensor) Scalar() (complex64, error) {
	if len(t.inds) != 0 {
		return 0, fmt.Errorf("not a scalar: %v", t.inds)
	}
	return t.data.At(0), nil
}

// Conj returns the element-wise complex conjugate.
// Index identities are unchanged.
func (t *Tensor) Conj() *Tensor {
	return &Tensor{inds: slices.Clone(t.inds), data: clone(t.data.Conj())}
}

// Prime returns a view of t with the given indices primed, or with
// every index primed when none are given. Data is shared with t.
func (t *Tensor) Prime(targets ...Index) *Tensor {
	inds := slices.Clone(t.inds)
	for i, ix := range inds {
		if len(targets) == 0 || slices.Contains(targets, ix) {
			inds[i] = ix.Prime()
		}
	}
	return &Tensor{inds: inds, data: t.data}
}

// Norm returns the Frobenius norm.
func (t *Tensor) Norm() float64 {
	var sum float64
	for _, v := range t.data.All() {
		x, y := float64(real(v)), float64(imag(v))
		sum += x*x + y*y
	}
	return math.Sqrt(sum)
}

// Scale multiplies every element by c in place and returns t.
func (t *Tensor) Scale(c complex64) *Tensor {
	t.data = clone(t.data.Mul(c))
	return t
}

// Clone returns a deep copy sharing index identities.
func (t *Tensor) Clone() *Tensor {
	return &Tensor{inds: slices.Clone(t.inds), data: clone(t.data)}
}

// HasIndex reports whether ix is one of t's indices.
func (t *Tensor) HasIndex(ix Index) bool {
	return slices.Contains(t.inds, ix)
}

// Mul contracts a and b over every index they share. When no index is
// shared the result is the outer product. A full contraction yields a
// rank-0 tensor readable through Scalar.
func Mul(a, b *Tensor) *Tensor {
	// Match shared indices to contraction axis pairs. The pair axes are
	// offset by the dummy legs inserted below.
	axes := make([][2]int, 0, len(a.inds))
	aFree := make([]Index, 0, len(a.inds))
	used := make([]bool, len(b.inds))
	for i, ia := range a.inds {
		j := -1
		for k, ib := range b.inds {
			if !used[k] && ia == ib {
				j = k
				break
			}
		}
		if j < 0 {
			aFree = append(aFree, ia)
			continue
		}
		used[j] = true
		axes = append(axes, [2]int{i, j + 1})
	}
	bFree := make([]Index, 0, len(b.inds))
	for k, ib := range b.inds {
		if !used[k] {
			bFree = append(bFree, ib)
		}
	}

	// Two dummy unit legs keep the contraction list non-empty and the
	// result non-empty: a gets a kept leg and a contracted leg, b gets
	// the partner of the contracted one.
	aDims, bDims := dimsOf(a.inds), dimsOf(b.inds)
	a2 := clone(a.data).Reshape(append(slices.Clone(aDims), 1, 1)...)
	b2 := clone(b.data).Reshape(append([]int{1}, bDims...)...)
	axes = append(axes, [2]int{len(aDims) + 1, 0})

	dst := tensor.Product(tensor.Zeros(1), a2, b2, axes)

	// dst axes: a's free legs, the kept dummy, b's free legs.
	outInds := append(slices.Clone(aFree), bFree...)
	outDims := dimsOf(outInds)
	if len(outDims) == 0 {
		outDims = []int{1}
	}
	return &Tensor{inds: outInds, data: dst.Reshape(outDims...)}
}

func dimsOf(inds []Index) []int {
	dims := make([]int, 0, len(inds))
	for _, ix := range inds {
		dims = append(dims, ix.dim)
	}
	return dims
}

func clone(src *tensor.Dense) *tensor.Dense {
	dst := tensor.Zeros(1)
	shape := src.Shape()
	dst.Reset(shape...).Set(make([]int, len(shape)), src)
	return dst
}

func abs(x complex64) float64 {
	return cmplx.Abs(complex128(x))
}
