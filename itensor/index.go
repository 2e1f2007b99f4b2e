// Package itensor provides tensors with named indices on top of the
// dense tensor engine of github.com/fumin/tensor.
//
// An Index identifies a tensor leg. Two legs contract with each other
// exactly when their indices are equal, which requires the same id and
// the same prime level. Fresh indices never collide, so identity is
// established by copying index values, not by matching dimensions.
package itensor

import (
	"fmt"
	"sync/atomic"
)

var indexSeq atomic.Uint64

// Index is one tensor leg. The zero value is invalid; use NewIndex.
type Index struct {
	id    uint64
	dim   int
	prime int
	tag   string
}

// NewIndex returns a fresh index of the given dimension.
// The tag is cosmetic and does not affect identity.
func NewIndex(dim int, tag string) Index {
	return Index{id: indexSeq.Add(1), dim: dim, tag: tag}
}

// Dim returns the index dimension.
func (ix Index) Dim() int { return ix.dim }

// PrimeLevel returns the prime level.
func (ix Index) PrimeLevel() int { return ix.prime }

// Prime returns the same index at prime level +1.
func (ix Index) Prime() Index {
	ix.prime++
	return ix
}

func (ix Index) String() string {
	return fmt.Sprintf("%s%d/%d'%d", ix.tag, ix.id, ix.dim, ix.prime)
}
