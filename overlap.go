package qcircuit

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/fumin/qcircuit/itensor"
)

// Overlap returns <a|op|b>, the inner product between two circuit
// states under a per-site operator list.
//
// Both circuits must share the same topology and, by construction
// convention, the same physical index objects (see NewSharing). Both
// are canonicalized at their current cursor first; b's legs are primed
// during the walk so that a circuit can be overlapped with itself.
func Overlap(a *Circuit, ops []*itensor.Tensor, b *Circuit, options ...Options) (complex64, error) {
	if a.topo != b.topo {
		return 0, errors.Errorf("different topologies")
	}
	if len(ops) != a.Size() || len(ops) != b.Size() {
		return 0, errors.Errorf("%d operators for %d and %d sites", len(ops), a.Size(), b.Size())
	}

	if err := a.decompose(a.opt(options)); err != nil {
		return 0, errors.Wrap(err, "")
	}
	if b != a {
		if err := b.decompose(b.opt(options)); err != nil {
			return 0, errors.Wrap(err, "")
		}
	}

	var running *itensor.Tensor
	for i := 0; i < a.Size(); i++ {
		t := itensor.Mul(a.m[i].Conj(), ops[i])
		if running != nil {
			t = itensor.Mul(t, running)
		}
		running = itensor.Mul(t, b.m[i].Prime())

		// Each link's singular-value tensors join in once, at the
		// link's smaller endpoint.
		for _, nb := range a.topo.NeighborsOf(i) {
			if nb.Site < i {
				continue
			}
			running = itensor.Mul(itensor.Mul(a.sv[nb.Link].Conj(), running), b.sv[nb.Link].Prime())
		}
	}

	amp, err := running.Scalar()
	if err != nil {
		panic(fmt.Sprintf("overlap left open legs: %+v", err))
	}
	return amp, nil
}
