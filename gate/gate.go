// Package gate defines the elementary quantum gates as a closed set of
// variants and builds their tensor operators.
//
// An operator tensor has one plain and one primed physical leg per
// involved site, with entries op[out, in] = <out|G|in>, so applying a
// gate to a state tensor psi is the contraction op * prime(psi).
package gate

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/fumin/qcircuit/itensor"
)

// OneKind enumerates the one-site gates.
type OneKind int

const (
	KindId OneKind = iota
	KindX
	KindY
	KindZ
	KindProj0
	KindProj1
	KindRaise
	KindLower
	KindH
	KindPhase
	KindU3
)

// TwoKind enumerates the two-site gates.
type TwoKind int

const (
	KindCNOT TwoKind = iota
	KindCY
	KindCZ
	KindCPhase
	KindCU
	KindSwap
)

// One is a one-site gate acting on Site.
// Theta, Phi and Lambda are only meaningful for the parameterized kinds.
type One struct {
	Kind   OneKind
	Site   int
	Theta  float64
	Phi    float64
	Lambda float64
}

// Two is a two-site gate acting on Site1 and Site2.
// For the controlled kinds Site1 is the control and Site2 the target.
type Two struct {
	Kind   TwoKind
	Site1  int
	Site2  int
	Theta  float64
	Phi    float64
	Lambda float64
}

// Id returns the identity gate.
func Id(site int) One { return One{Kind: KindId, Site: site} }

// X returns the Pauli X gate.
func X(site int) One { return One{Kind: KindX, Site: site} }

// Y returns the Pauli Y gate.
func Y(site int) One { return One{Kind: KindY, Site: site} }

// Z returns the Pauli Z gate.
func Z(site int) One { return One{Kind: KindZ, Site: site} }

// Proj0 returns the projector |0><0|.
func Proj0(site int) One { return One{Kind: KindProj0, Site: site} }

// Proj1 returns the projector |1><1|.
func Proj1(site int) One { return One{Kind: KindProj1, Site: site} }

// Raise returns the raising map |1><0|.
func Raise(site int) One { return One{Kind: KindRaise, Site: site} }

// Lower returns the lowering map |0><1|.
func Lower(site int) One { return One{Kind: KindLower, Site: site} }

// H returns the Hadamard gate.
func H(site int) One { return One{Kind: KindH, Site: site} }

// Phase returns the phase gate diag(1, exp(i*theta)).
func Phase(site int, theta float64) One {
	return One{Kind: KindPhase, Site: site, Theta: theta}
}

// U3 returns the general single-qubit unitary with Euler angles
// theta, phi, lambda.
func U3(site int, theta, phi, lambda float64) One {
	return One{Kind: KindU3, Site: site, Theta: theta, Phi: phi, Lambda: lambda}
}

// CNOT returns the controlled-X gate.
func CNOT(control, target int) Two { return Two{Kind: KindCNOT, Site1: control, Site2: target} }

// CY returns the controlled-Y gate.
func CY(control, target int) Two { return Two{Kind: KindCY, Site1: control, Site2: target} }

// CZ returns the controlled-Z gate.
func CZ(control, target int) Two { return Two{Kind: KindCZ, Site1: control, Site2: target} }

// CPhase returns the controlled phase gate.
func CPhase(control, target int, theta float64) Two {
	return Two{Kind: KindCPhase, Site1: control, Site2: target, Theta: theta}
}

// CU returns the controlled general single-qubit unitary.
func CU(control, target int, theta, phi, lambda float64) Two {
	return Two{Kind: KindCU, Site1: control, Site2: target, Theta: theta, Phi: phi, Lambda: lambda}
}

// Swap returns the swap gate.
func Swap(site1, site2 int) Two { return Two{Kind: KindSwap, Site1: site1, Site2: site2} }

// Matrix returns the 2x2 matrix of the gate, row = out, col = in.
func (g One) Matrix() [2][2]complex128 {
	switch g.Kind {
	case KindId:
		return [2][2]complex128{{1, 0}, {0, 1}}
	case KindX:
		return [2][2]complex128{{0, 1}, {1, 0}}
	case KindY:
		return [2][2]complex128{{0, -1i}, {1i, 0}}
	case KindZ:
		return [2][2]complex128{{1, 0}, {0, -1}}
	case KindProj0:
		return [2][2]complex128{{1, 0}, {0, 0}}
	case KindProj1:
		return [2][2]complex128{{0, 0}, {0, 1}}
	case KindRaise:
		return [2][2]complex128{{0, 0}, {1, 0}}
	case KindLower:
		return [2][2]complex128{{0, 1}, {0, 0}}
	case KindH:
		s := complex(1/math.Sqrt2, 0)
		return [2][2]complex128{{s, s}, {s, -s}}
	case KindPhase:
		return [2][2]complex128{{1, 0}, {0, cmplx.Exp(complex(0, g.Theta))}}
	case KindU3:
		return u3Matrix(g.Theta, g.Phi, g.Lambda)
	default:
		panic(fmt.Sprintf("unknown one-site gate %d", g.Kind))
	}
}

func u3Matrix(theta, phi, lambda float64) [2][2]complex128 {
	cos := complex(math.Cos(theta/2), 0)
	sin := complex(math.Sin(theta/2), 0)
	return [2][2]complex128{
		{cos, -cmplx.Exp(complex(0, lambda)) * sin},
		{cmplx.Exp(complex(0, phi)) * sin, cmplx.Exp(complex(0, phi+lambda)) * cos},
	}
}

// Matrix returns the 4x4 matrix of the gate in the |Site1 Site2> basis,
// row = out, col = in.
func (g Two) Matrix() [4][4]complex128 {
	var m [4][4]complex128
	switch g.Kind {
	case KindCNOT, KindCY, KindCZ, KindCU:
		var u [2][2]complex128
		switch g.Kind {
		case KindCNOT:
			u = X(g.Site2).Matrix()
		case KindCY:
			u = Y(g.Site2).Matrix()
		case KindCZ:
			u = Z(g.Site2).Matrix()
		default:
			u = u3Matrix(g.Theta, g.Phi, g.Lambda)
		}
		m[0][0], m[1][1] = 1, 1
		for i := 0; i < 2; i++ {
			for j := 0; j < 2; j++ {
				m[2+i][2+j] = u[i][j]
			}
		}
	case KindCPhase:
		m[0][0], m[1][1], m[2][2] = 1, 1, 1
		m[3][3] = cmplx.Exp(complex(0, g.Theta))
	case KindSwap:
		m[0][0], m[3][3] = 1, 1
		m[1][2], m[2][1] = 1, 1
	default:
		panic(fmt.Sprintf("unknown two-site gate %d", g.Kind))
	}
	return m
}

// Op builds the operator tensor of g over the physical index list s.
func (g One) Op(s []itensor.Index) *itensor.Tensor {
	si := s[g.Site]
	op := itensor.New(si, si.Prime())
	m := g.Matrix()
	for out := 0; out < 2; out++ {
		for in := 0; in < 2; in++ {
			if m[out][in] != 0 {
				op.Set(complex64(m[out][in]), out, in)
			}
		}
	}
	return op
}

// Op builds the operator tensor of g over the physical index list s.
// The legs are (s1, s2, s1', s2').
func (g Two) Op(s []itensor.Index) *itensor.Tensor {
	s1, s2 := s[g.Site1], s[g.Site2]
	op := itensor.New(s1, s2, s1.Prime(), s2.Prime())
	m := g.Matrix()
	for out := 0; out < 4; out++ {
		for in := 0; in < 4; in++ {
			if m[out][in] != 0 {
				op.Set(complex64(m[out][in]), out>>1, out&1, in>>1, in&1)
			}
		}
	}
	return op
}
