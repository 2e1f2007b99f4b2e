// Package qcircuit simulates quantum circuits in a tensor product state
// representation over an arbitrary qubit connectivity graph.
//
// The state is held in mixed canonical form centered on a two-site
// cursor: every link carries a normalized diagonal singular-value
// tensor, every site a local tensor, and the working tensor Psi is the
// exact contraction of the two cursor sites, their connecting
// singular-value tensor, and the singular-value tensors of every other
// link touching a cursor site. Gates are applied to Psi after moving
// the cursor onto the target sites; moving the cursor factors Psi with
// a truncated singular value decomposition.
//
// References:
//   - The density-matrix renormalization group in the age of matrix product states, Ulrich Schollwock
package qcircuit

import (
	"fmt"
	"math/rand/v2"

	"github.com/pkg/errors"

	"github.com/fumin/qcircuit/gate"
	"github.com/fumin/qcircuit/itensor"
	"github.com/fumin/qcircuit/topology"
)

// svEpsilon is the smallest singular value that is still inverted when
// a neighboring singular-value tensor is divided back out of a factor.
// Anything below it is treated as exactly zero.
const svEpsilon = 1e-16

var (
	// ErrDisconnected is returned when the topology is not connected.
	ErrDisconnected = errors.New("qcircuit: topology not connected")
	// ErrInvalidCursorMove is returned when a cursor shift target is not
	// adjacent to the indicated cursor site.
	ErrInvalidCursorMove = errors.New("qcircuit: invalid cursor move")
	// ErrOperatorShape is returned when an operator's legs do not match
	// the cursor's physical indices.
	ErrOperatorShape = errors.New("qcircuit: operator shape mismatch")
)

// Direction selects which cursor site a shift target is anchored to.
type Direction int

const (
	// DirAuto detects the anchor by adjacency, preferring the second
	// cursor site when the target is adjacent to both.
	DirAuto Direction = iota
	// DirFirst requires the target to be adjacent to the first cursor site.
	DirFirst
	// DirSecond requires the target to be adjacent to the second cursor site.
	DirSecond
)

// Circuit is a quantum circuit state over a fixed topology.
//
// All mutable state is instance private; a Circuit must not be used
// from multiple goroutines without external synchronization. The
// topology is shared read-only and may back several circuits.
type Circuit struct {
	topo *topology.Topology

	// phys[i] is the 2-dimensional physical index of site i.
	phys []itensor.Index
	// bond[l] are the two legs of link l's singular-value tensor,
	// aligned with topology.LinkSites(l).
	bond [][2]itensor.Index
	// m[i] is the local tensor of site i, legs {phys[i]} plus the
	// near-side bond leg of every incident link. The entries at the
	// cursor sites are stale between a cursor shift and the next
	// factorization; Psi holds their content.
	m []*itensor.Tensor
	// sv[l] is the diagonal singular-value tensor of link l, unit
	// Frobenius norm, entries descending.
	sv []*itensor.Tensor

	psi    *itensor.Tensor
	cursor [2]int

	opts Options
	rng  *rand.Rand
}

// ZeroState returns the all |0> initial amplitudes for n qubits.
func ZeroState(n int) [][2]complex64 {
	qubits := make([][2]complex64, n)
	for i := range qubits {
		qubits[i] = [2]complex64{1, 0}
	}
	return qubits
}

// New constructs a circuit over topo with one amplitude pair per site.
// The topology must be connected and have at least two sites.
func New(topo *topology.Topology, qubits [][2]complex64) (*Circuit, error) {
	return NewSharing(topo, qubits, nil)
}

// NewSharing is New with caller-supplied physical indices, normally the
// Sites of an existing circuit. Sharing physical index identity is the
// precondition for computing overlaps between two circuits.
func NewSharing(topo *topology.Topology, qubits [][2]complex64, phys []itensor.Index) (*Circuit, error) {
	if topo.NumBits() < 2 {
		return nil, errors.Errorf("%d sites", topo.NumBits())
	}
	if !topo.IsConnected() {
		return nil, errors.Wrap(ErrDisconnected, fmt.Sprintf("%d sites %d links", topo.NumBits(), topo.NumLinks()))
	}
	if len(qubits) != topo.NumBits() {
		return nil, errors.Errorf("%d amplitudes for %d sites", len(qubits), topo.NumBits())
	}

	c := &Circuit{
		topo: topo,
		opts: NewOptions(),
		rng:  rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}

	if phys == nil {
		c.phys = make([]itensor.Index, 0, topo.NumBits())
		for i := 0; i < topo.NumBits(); i++ {
			c.phys = append(c.phys, itensor.NewIndex(2, "Site"))
		}
	} else {
		if len(phys) != topo.NumBits() {
			return nil, errors.Errorf("%d indices for %d sites", len(phys), topo.NumBits())
		}
		for _, ix := range phys {
			if ix.Dim() != 2 {
				return nil, errors.Errorf("physical dimension %d", ix.Dim())
			}
		}
		c.phys = append([]itensor.Index{}, phys...)
	}

	c.bond = make([][2]itensor.Index, topo.NumLinks())
	c.sv = make([]*itensor.Tensor, topo.NumLinks())
	for l := 0; l < topo.NumLinks(); l++ {
		c.bond[l] = [2]itensor.Index{itensor.NewIndex(1, "Link"), itensor.NewIndex(1, "Link")}
		sv := itensor.New(c.bond[l][0], c.bond[l][1])
		sv.Set(1, 0, 0)
		c.sv[l] = sv
	}

	c.m = make([]*itensor.Tensor, topo.NumBits())
	for i := 0; i < topo.NumBits(); i++ {
		inds := []itensor.Index{c.phys[i]}
		for _, nb := range topo.NeighborsOf(i) {
			inds = append(inds, c.nearLeg(nb.Link, i))
		}
		mi := itensor.New(inds...)
		pos := make([]int, len(inds))
		mi.Set(qubits[i][0], pos...)
		pos[0] = 1
		mi.Set(qubits[i][1], pos...)
		c.m[i] = mi
	}

	c.cursor = [2]int{0, minNeighbor(topo, 0)}
	c.psi = c.contractPsi()

	return c, nil
}

// Size returns the number of qubits.
func (c *Circuit) Size() int { return c.topo.NumBits() }

// Sites returns the physical indices, one per site.
func (c *Circuit) Sites() []itensor.Index {
	return append([]itensor.Index{}, c.phys...)
}

// Site returns the physical index of site i.
func (c *Circuit) Site(i int) itensor.Index { return c.phys[i] }

// Cursor returns the current cursor position.
func (c *Circuit) Cursor() [2]int { return c.cursor }

// Topology returns the shared topology.
func (c *Circuit) Topology() *topology.Topology { return c.topo }

// SetCutoff sets the default truncation cutoff for future factorizations.
func (c *Circuit) SetCutoff(cutoff float64) { c.opts.cutoff = cutoff }

// SetMaxDim sets the default maximum bond dimension, 0 for unlimited.
func (c *Circuit) SetMaxDim(maxDim int) { c.opts.maxDim = maxDim }

// Seed reseeds the instance's measurement generator, for reproducible runs.
func (c *Circuit) Seed(s1, s2 uint64) {
	c.rng = rand.New(rand.NewPCG(s1, s2))
}

func (c *Circuit) opt(options []Options) Options {
	if len(options) > 0 {
		return options[0]
	}
	return c.opts
}

// nearLeg returns link l's bond leg on site's side.
func (c *Circuit) nearLeg(l, site int) itensor.Index {
	if c.topo.LinkSites(l)[0] == site {
		return c.bond[l][0]
	}
	return c.bond[l][1]
}

// farLeg returns link l's bond leg on the side opposite to site. The
// far legs are the open bond legs of Psi.
func (c *Circuit) farLeg(l, site int) itensor.Index {
	if c.topo.LinkSites(l)[0] == site {
		return c.bond[l][1]
	}
	return c.bond[l][0]
}

func minNeighbor(topo *topology.Topology, site int) int {
	nbs := topo.NeighborsOf(site)
	m := nbs[0].Site
	for _, nb := range nbs[1:] {
		if nb.Site < m {
			m = nb.Site
		}
	}
	return m
}

// contractPsi contracts the full canonical center around the cursor:
// both cursor site tensors, the cursor link's singular-value tensor,
// and the singular-value tensors of all other links touching either
// cursor site. Valid only while the site tensors are current, i.e. at
// construction and right after a factorization.
func (c *Circuit) contractPsi() *itensor.Tensor {
	f, s := c.cursor[0], c.cursor[1]
	clink, err := c.topo.LinkBetween(f, s)
	if err != nil {
		panic(fmt.Sprintf("cursor %v: %+v", c.cursor, err))
	}

	psi := itensor.Mul(c.m[f], c.sv[clink])
	psi = itensor.Mul(psi, c.m[s])
	for _, site := range []int{f, s} {
		for _, nb := range c.topo.NeighborsOf(site) {
			if nb.Link == clink {
				continue
			}
			psi = itensor.Mul(psi, c.sv[nb.Link])
		}
	}
	return psi
}

// leftLegs returns the legs of Psi belonging to site f's side of the
// cursor: f's physical index and the far-side legs of f's links other
// than the cursor link.
func (c *Circuit) leftLegs(f, other int) []itensor.Index {
	legs := []itensor.Index{c.phys[f]}
	for _, nb := range c.topo.NeighborsOf(f) {
		if nb.Site == other {
			continue
		}
		legs = append(legs, c.farLeg(nb.Link, f))
	}
	return legs
}

// pinv returns the pseudo-inverse of link l's singular-value tensor,
// oriented to map the far-side leg back to site's near-side leg.
// Singular values below svEpsilon are not inverted; the spectrum is
// descending, so the first such entry ends the scan.
func (c *Circuit) pinv(l, site int) *itensor.Tensor {
	sv := c.sv[l]
	p := itensor.New(c.farLeg(l, site), c.nearLeg(l, site))
	d := sv.Inds()[0].Dim()
	for i := 0; i < d; i++ {
		v := float64(real(sv.At(i, i)))
		if v < svEpsilon {
			break
		}
		p.Set(complex64(complex(1/v, 0)), i, i)
	}
	return p
}

// divideOut multiplies t by the pseudo-inverse of every singular-value
// tensor of site's links except the one to skip.
func (c *Circuit) divideOut(t *itensor.Tensor, site, skipSite int) *itensor.Tensor {
	for _, nb := range c.topo.NeighborsOf(site) {
		if nb.Site == skipSite {
			continue
		}
		t = itensor.Mul(t, c.pinv(nb.Link, site))
	}
	return t
}

// setCursorSV installs s as the cursor link's singular-value tensor.
// s's first index becomes the bond leg on site f's side.
func (c *Circuit) setCursorSV(s *itensor.Tensor, clink, f int) {
	uIdx, vIdx := s.Inds()[0], s.Inds()[1]
	if c.topo.LinkSites(clink)[0] == f {
		c.bond[clink] = [2]itensor.Index{uIdx, vIdx}
	} else {
		c.bond[clink] = [2]itensor.Index{vIdx, uIdx}
	}
	c.sv[clink] = s
}

// decompose factors Psi at the cursor and writes the results back into
// the site tensors and the cursor link's singular-value tensor. Psi
// itself is unchanged.
func (c *Circuit) decompose(o Options) error {
	f, s := c.cursor[0], c.cursor[1]
	clink, err := c.topo.LinkBetween(f, s)
	if err != nil {
		panic(fmt.Sprintf("cursor %v: %+v", c.cursor, err))
	}

	u, sv, v, err := itensor.SVD(c.psi, c.leftLegs(f, s), o.cutoff, o.maxDim)
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("cursor %v", c.cursor))
	}
	sv.Scale(complex64(complex(1/sv.Norm(), 0)))

	c.setCursorSV(sv, clink, f)
	c.m[f] = c.divideOut(u, f, s)
	c.m[s] = c.divideOut(v, s, f)
	return nil
}

// ShiftCursorTo moves the cursor one step so that it covers dest and
// the cursor site dest is adjacent to. dir disambiguates the anchor
// when dest is adjacent to both cursor sites; DirAuto prefers the
// second. On failure the state is unchanged.
func (c *Circuit) ShiftCursorTo(dest int, dir Direction, options ...Options) error {
	o := c.opt(options)
	f, s := c.cursor[0], c.cursor[1]
	if dest == f || dest == s {
		return errors.Wrap(ErrInvalidCursorMove, fmt.Sprintf("%d is a cursor site %v", dest, c.cursor))
	}
	adjF, adjS := c.topo.HasLink(f, dest), c.topo.HasLink(s, dest)
	switch dir {
	case DirFirst:
		if !adjF {
			return errors.Wrap(ErrInvalidCursorMove, fmt.Sprintf("%d not adjacent to first of %v", dest, c.cursor))
		}
	case DirSecond:
		if !adjS {
			return errors.Wrap(ErrInvalidCursorMove, fmt.Sprintf("%d not adjacent to second of %v", dest, c.cursor))
		}
	default:
		switch {
		case adjS:
			dir = DirSecond
		case adjF:
			dir = DirFirst
		default:
			return errors.Wrap(ErrInvalidCursorMove, fmt.Sprintf("%d not adjacent to %v", dest, c.cursor))
		}
	}

	clink, err := c.topo.LinkBetween(f, s)
	if err != nil {
		panic(fmt.Sprintf("cursor %v: %+v", c.cursor, err))
	}

	u, sv, v, err := itensor.SVD(c.psi, c.leftLegs(f, s), o.cutoff, o.maxDim)
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("cursor %v", c.cursor))
	}
	sv.Scale(complex64(complex(1/sv.Norm(), 0)))
	c.setCursorSV(sv, clink, f)

	switch dir {
	case DirFirst:
		// dest is on the first site's side: store the second site's
		// tensor and absorb U*S into the new center around (dest, f).
		c.m[s] = c.divideOut(v, s, f)

		link, err := c.topo.LinkBetween(f, dest)
		if err != nil {
			panic(fmt.Sprintf("%d %d: %+v", f, dest, err))
		}
		psi := itensor.Mul(c.m[dest], u)
		psi = itensor.Mul(psi, sv)
		for _, nb := range c.topo.NeighborsOf(dest) {
			if nb.Link == link {
				continue
			}
			psi = itensor.Mul(psi, c.sv[nb.Link])
		}
		c.psi = psi
		c.cursor = [2]int{dest, f}
	default:
		// dest is on the second site's side.
		c.m[f] = c.divideOut(u, f, s)

		link, err := c.topo.LinkBetween(s, dest)
		if err != nil {
			panic(fmt.Sprintf("%d %d: %+v", s, dest, err))
		}
		psi := itensor.Mul(sv, v)
		psi = itensor.Mul(psi, c.m[dest])
		for _, nb := range c.topo.NeighborsOf(dest) {
			if nb.Link == link {
				continue
			}
			psi = itensor.Mul(psi, c.sv[nb.Link])
		}
		c.psi = psi
		c.cursor = [2]int{s, dest}
	}
	return nil
}

// MoveCursorAlong shifts the cursor through each site of path in order.
func (c *Circuit) MoveCursorAlong(path []int, options ...Options) error {
	for _, site := range path {
		if err := c.ShiftCursorTo(site, DirAuto, options...); err != nil {
			return errors.Wrap(err, fmt.Sprintf("path %v", path))
		}
	}
	return nil
}

// MoveCursorTo moves the cursor onto the adjacent pair {d1, d2}. The
// route is computed before any shift, so a validation failure leaves
// the state unchanged.
func (c *Circuit) MoveCursorTo(d1, d2 int, options ...Options) error {
	if !c.topo.HasLink(d1, d2) {
		return errors.Wrap(topology.ErrNoLink, fmt.Sprintf("%d %d", d1, d2))
	}
	if (c.cursor[0] == d1 && c.cursor[1] == d2) || (c.cursor[0] == d2 && c.cursor[1] == d1) {
		return nil
	}

	path, err := c.topo.Route(c.cursor, [2]int{d1, d2})
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("cursor %v", c.cursor))
	}
	if err := c.MoveCursorAlong(path, options...); err != nil {
		return err
	}

	// The route ends when one destination site is covered; one anchored
	// shift brings the other one in.
	f, s := c.cursor[0], c.cursor[1]
	switch {
	case (f == d1 && s == d2) || (f == d2 && s == d1):
		return nil
	case f == d1:
		return c.ShiftCursorTo(d2, DirFirst, options...)
	case f == d2:
		return c.ShiftCursorTo(d1, DirFirst, options...)
	case s == d1:
		return c.ShiftCursorTo(d2, DirSecond, options...)
	case s == d2:
		return c.ShiftCursorTo(d1, DirSecond, options...)
	default:
		panic(fmt.Sprintf("route to (%d,%d) ended at %v", d1, d2, c.cursor))
	}
}

// ApplyAtCursor contracts op with Psi. op's legs must be exactly the
// two cursor physical indices in plain and primed form.
func (c *Circuit) ApplyAtCursor(op *itensor.Tensor) error {
	sf, ss := c.phys[c.cursor[0]], c.phys[c.cursor[1]]
	if len(op.Inds()) != 4 {
		return errors.Wrap(ErrOperatorShape, fmt.Sprintf("%d legs", len(op.Inds())))
	}
	for _, want := range []itensor.Index{sf, ss, sf.Prime(), ss.Prime()} {
		if !op.HasIndex(want) {
			return errors.Wrap(ErrOperatorShape, fmt.Sprintf("missing leg %v", want))
		}
	}

	c.psi = itensor.Mul(op, c.psi.Prime(sf, ss))
	return nil
}

// ApplyPair applies two one-site gates jointly. The gate sites must be
// adjacent; the cursor is moved onto them first.
func (c *Circuit) ApplyPair(g1, g2 gate.One, options ...Options) error {
	for _, site := range []int{g1.Site, g2.Site} {
		if site < 0 || site >= c.Size() {
			return errors.Errorf("site %d of %d", site, c.Size())
		}
	}
	if err := c.MoveCursorTo(g1.Site, g2.Site, options...); err != nil {
		return err
	}
	op := itensor.Mul(g1.Op(c.phys), g2.Op(c.phys))
	return c.ApplyAtCursor(op)
}

// Apply applies a single one-site gate, pairing it with an implicit
// identity on the site's first neighbor to keep the two-site cursor.
func (c *Circuit) Apply(g gate.One, options ...Options) error {
	if g.Site < 0 || g.Site >= c.Size() {
		return errors.Errorf("site %d of %d", g.Site, c.Size())
	}
	nb := c.topo.NeighborsOf(g.Site)[0].Site
	return c.ApplyPair(g, gate.Id(nb), options...)
}

// ApplyTwo applies a two-site gate. The gate sites must be adjacent.
func (c *Circuit) ApplyTwo(g gate.Two, options ...Options) error {
	for _, site := range []int{g.Site1, g.Site2} {
		if site < 0 || site >= c.Size() {
			return errors.Errorf("site %d of %d", site, c.Size())
		}
	}
	if err := c.MoveCursorTo(g.Site1, g.Site2, options...); err != nil {
		return err
	}
	return c.ApplyAtCursor(g.Op(c.phys))
}

// Normalize rescales Psi to unit norm.
func (c *Circuit) Normalize() {
	nrm := c.psi.Norm()
	if nrm == 0 {
		return
	}
	c.psi.Scale(complex64(complex(1/nrm, 0)))
}

// Probability returns the probability of observing bit at site.
func (c *Circuit) Probability(site, bit int, options ...Options) (float64, error) {
	if site < 0 || site >= c.Size() {
		return 0, errors.Errorf("site %d of %d", site, c.Size())
	}
	if bit != 0 && bit != 1 {
		return 0, errors.Errorf("bit %d", bit)
	}

	ops := make([]*itensor.Tensor, c.Size())
	for i := range ops {
		ops[i] = gate.Id(i).Op(c.phys)
	}
	switch bit {
	case 0:
		ops[site] = gate.Proj0(site).Op(c.phys)
	default:
		ops[site] = gate.Proj1(site).Op(c.phys)
	}

	amp, err := Overlap(c, ops, c, options...)
	if err != nil {
		return 0, errors.Wrap(err, fmt.Sprintf("site %d bit %d", site, bit))
	}
	return float64(real(amp)), nil
}

// Observe measures the qubit at site, collapses the state onto the
// observed basis state and returns the observed bit. The draw comes
// from the circuit's private generator.
func (c *Circuit) Observe(site int, options ...Options) (int, error) {
	p0, err := c.Probability(site, 0, options...)
	if err != nil {
		return 0, err
	}
	bit := 1
	if c.rng.Float64() < p0 {
		bit = 0
	}
	return bit, c.project(site, bit, options...)
}

// Reset deterministically collapses the qubit at site onto |0>
// whenever its amplitude is nonzero, and onto |1> otherwise. It draws
// no randomness. The forced bit is returned.
func (c *Circuit) Reset(site int, options ...Options) (int, error) {
	p0, err := c.Probability(site, 0, options...)
	if err != nil {
		return 0, err
	}
	bit := 0
	if !(p0 > 0) {
		bit = 1
	}
	return bit, c.project(site, bit, options...)
}

func (c *Circuit) project(site, bit int, options ...Options) error {
	g := gate.Proj0(site)
	if bit == 1 {
		g = gate.Proj1(site)
	}
	nb := c.topo.NeighborsOf(site)[0].Site
	if err := c.ApplyPair(g, gate.Id(nb), options...); err != nil {
		return err
	}
	c.Normalize()
	return nil
}
