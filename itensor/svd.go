package itensor

import (
	"fmt"
	"math"
	"math/cmplx"
	"slices"

	"github.com/fumin/tensor"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// SVD factors t into u*s*v where u carries the left indices plus a
// fresh bond index, s is diagonal with non-negative entries in
// descending order, and v carries the fresh partner bond index plus the
// remaining indices.
//
// The spectrum is truncated so that the discarded squared singular
// values sum to at most cutoff times the total, and so that at most
// maxDim values are kept (0 means unlimited). At least one value is
// always kept.
func SVD(t *Tensor, left []Index, cutoff float64, maxDim int) (*Tensor, *Tensor, *Tensor, error) {
	leftPos := make([]int, 0, len(left))
	for _, ix := range left {
		p := slices.Index(t.inds, ix)
		if p < 0 {
			return nil, nil, nil, errors.Errorf("index %v not in tensor %v", ix, t.inds)
		}
		if slices.Contains(leftPos, p) {
			return nil, nil, nil, errors.Errorf("duplicate index %v", ix)
		}
		leftPos = append(leftPos, p)
	}
	if len(leftPos) == 0 || len(leftPos) == len(t.inds) {
		return nil, nil, nil, errors.Errorf("trivial partition %d of %d", len(leftPos), len(t.inds))
	}

	rightPos := make([]int, 0, len(t.inds)-len(leftPos))
	for p := range t.inds {
		if !slices.Contains(leftPos, p) {
			rightPos = append(rightPos, p)
		}
	}

	leftInds := make([]Index, 0, len(leftPos))
	m := 1
	for _, p := range leftPos {
		leftInds = append(leftInds, t.inds[p])
		m *= t.inds[p].dim
	}
	rightInds := make([]Index, 0, len(rightPos))
	n := 1
	for _, p := range rightPos {
		rightInds = append(rightInds, t.inds[p])
		n *= t.inds[p].dim
	}

	// Matricize with the left legs as rows.
	perm := append(slices.Clone(leftPos), rightPos...)
	a := clone(t.data.Transpose(perm...)).Reshape(m, n)

	sigmas, us, vs := factorize(a, m, n)

	// Truncate the spectrum.
	var total float64
	for _, s := range sigmas {
		total += s * s
	}
	keep := len(sigmas)
	var discarded float64
	for keep > 1 {
		d := discarded + sigmas[keep-1]*sigmas[keep-1]
		if d > cutoff*total {
			break
		}
		discarded = d
		keep--
	}
	if maxDim > 0 && keep > maxDim {
		keep = maxDim
	}

	uIdx := NewIndex(keep, "Link")
	vIdx := NewIndex(keep, "Link")

	uData := tensor.Zeros(m, keep)
	for k := 0; k < keep; k++ {
		for i := 0; i < m; i++ {
			uData.SetAt([]int{i, k}, complex64(us[k][i]))
		}
	}
	u := &Tensor{inds: append(leftInds, uIdx), data: uData.Reshape(append(dimsOf(leftInds), keep)...)}

	sData := tensor.Zeros(keep, keep)
	for k := 0; k < keep; k++ {
		sData.SetAt([]int{k, k}, complex64(complex(sigmas[k], 0)))
	}
	s := &Tensor{inds: []Index{uIdx, vIdx}, data: sData}

	// v rows are the conjugated right singular vectors, so that the
	// plain contraction u*s*v reconstructs t.
	vData := tensor.Zeros(keep, n)
	for k := 0; k < keep; k++ {
		for j := 0; j < n; j++ {
			vData.SetAt([]int{k, j}, complex64(cmplx.Conj(vs[k][j])))
		}
	}
	v := &Tensor{inds: append([]Index{vIdx}, rightInds...), data: vData.Reshape(append([]int{keep}, dimsOf(rightInds)...)...)}

	return u, s, v, nil
}

// factorize computes the complex singular triples of the m-by-n matrix
// a through the singular value decomposition of its real embedding
// [[X, -Y], [Y, X]]. Every real singular triple of the embedding
// complexifies to a valid triple of a, with each complex triple
// appearing twice; a Gram-Schmidt sweep keeps one copy of each.
func factorize(a *tensor.Dense, m, n int) ([]float64, [][]complex128, [][]complex128) {
	emb := mat.NewDense(2*m, 2*n, nil)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			v := a.At(i, j)
			x, y := float64(real(v)), float64(imag(v))
			emb.Set(i, j, x)
			emb.Set(i, n+j, -y)
			emb.Set(m+i, j, y)
			emb.Set(m+i, n+j, x)
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(emb, mat.SVDThin); !ok {
		panic(fmt.Sprintf("SVD failed: %d %d", m, n))
	}
	vals := svd.Values(nil)
	var u2, v2 mat.Dense
	svd.UTo(&u2)
	svd.VTo(&v2)

	rank := min(m, n)
	sigmas := make([]float64, 0, rank)
	us := make([][]complex128, 0, rank)
	vs := make([][]complex128, 0, rank)
	for k := 0; k < len(vals) && len(sigmas) < rank; k++ {
		u := make([]complex128, m)
		for i := 0; i < m; i++ {
			u[i] = complex(u2.At(i, k), u2.At(m+i, k))
		}
		v := make([]complex128, n)
		for j := 0; j < n; j++ {
			v[j] = complex(v2.At(j, k), v2.At(n+j, k))
		}

		// Remove components along already accepted directions. The
		// duplicate copy of an accepted triple reduces to noise here
		// and is dropped.
		for t, ut := range us {
			var c complex128
			for i := range u {
				c += cmplx.Conj(ut[i]) * u[i]
			}
			for i := range u {
				u[i] -= c * ut[i]
			}
			for j := range v {
				v[j] -= c * vs[t][j]
			}
		}
		nu := vecNorm(u)
		if nu*nu < 0.5 {
			continue
		}
		nv := vecNorm(v)
		for i := range u {
			u[i] /= complex(nu, 0)
		}
		for j := range v {
			v[j] /= complex(nv, 0)
		}

		sigmas = append(sigmas, vals[k])
		us = append(us, u)
		vs = append(vs, v)
	}
	if len(sigmas) < rank {
		panic(fmt.Sprintf("%d %d", len(sigmas), rank))
	}
	return sigmas, us, vs
}

func vecNorm(x []complex128) float64 {
	var sum float64
	for _, v := range x {
		sum += real(v)*real(v) + imag(v)*imag(v)
	}
	return math.Sqrt(sum)
}
