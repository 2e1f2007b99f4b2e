package topology

import (
	"flag"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateLink(t *testing.T) {
	t.Parallel()
	topo := New(4)
	require.NoError(t, topo.GenerateLink(0, 1))
	require.NoError(t, topo.GenerateLink(2, 1))
	require.NoError(t, topo.GenerateLink(2, 3))

	assert.Equal(t, 4, topo.NumBits())
	assert.Equal(t, 3, topo.NumLinks())
	assert.True(t, topo.HasLink(1, 2))
	assert.True(t, topo.HasLink(2, 1))
	assert.False(t, topo.HasLink(0, 3))

	l, err := topo.LinkBetween(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, l)
	assert.Equal(t, [2]int{2, 1}, topo.LinkSites(l))

	_, err = topo.LinkBetween(0, 3)
	assert.ErrorIs(t, err, ErrNoLink)
}

func TestGenerateLinkErrors(t *testing.T) {
	t.Parallel()
	topo := New(3)
	require.NoError(t, topo.GenerateLink(0, 1))

	tests := []struct {
		name string
		a, b int
		err  error
	}{
		{name: "out of range", a: 0, b: 3, err: ErrSiteOutOfRange},
		{name: "negative", a: -1, b: 1, err: ErrSiteOutOfRange},
		{name: "self", a: 1, b: 1, err: ErrSelfLink},
		{name: "duplicate", a: 1, b: 0, err: ErrDuplicateLink},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := topo.GenerateLink(test.a, test.b)
			assert.ErrorIs(t, err, test.err)
		})
	}

	// Failed calls leave the graph untouched.
	assert.Equal(t, 1, topo.NumLinks())
	assert.Len(t, topo.NeighborsOf(1), 1)
}

func TestNeighborsOrder(t *testing.T) {
	t.Parallel()
	topo := New(5)
	require.NoError(t, topo.GenerateLink(2, 4))
	require.NoError(t, topo.GenerateLink(2, 0))
	require.NoError(t, topo.GenerateLink(1, 2))

	// Neighbors follow link insertion order.
	got := topo.NeighborsOf(2)
	require.Len(t, got, 3)
	assert.Equal(t, Neighbor{Site: 4, Link: 0}, got[0])
	assert.Equal(t, Neighbor{Site: 0, Link: 1}, got[1])
	assert.Equal(t, Neighbor{Site: 1, Link: 2}, got[2])
}

func TestIsConnected(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		topo      *Topology
		connected bool
	}{
		{name: "chain", topo: Chain(7, false), connected: true},
		{name: "ring", topo: Chain(7, true), connected: true},
		{name: "allToAll", topo: AllToAll(5), connected: true},
		{name: "ibmq53", topo: IBMQ53(), connected: true},
		{name: "singleSite", topo: New(1), connected: true},
		{name: "twoChains", topo: twoChains(), connected: false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, test.connected, test.topo.IsConnected())
		})
	}
}

// twoChains is 0-1-2 and 3-4, with no link between the halves.
func twoChains() *Topology {
	topo := New(5)
	for _, l := range [][2]int{{0, 1}, {1, 2}, {3, 4}} {
		if err := topo.GenerateLink(l[0], l[1]); err != nil {
			panic(err)
		}
	}
	return topo
}

func TestBuilders(t *testing.T) {
	t.Parallel()
	chain := Chain(4, false)
	assert.Equal(t, 4, chain.NumBits())
	assert.Equal(t, 3, chain.NumLinks())

	ring := Chain(4, true)
	assert.Equal(t, 4, ring.NumLinks())
	assert.True(t, ring.HasLink(3, 0))

	// A periodic 2-chain has no room for the wrap-around link.
	pair := Chain(2, true)
	assert.Equal(t, 1, pair.NumLinks())

	full := AllToAll(6)
	assert.Equal(t, 6*5/2, full.NumLinks())
	assert.Len(t, full.NeighborsOf(3), 5)

	heavyHex := IBMQ53()
	assert.Equal(t, 53, heavyHex.NumBits())
	assert.Equal(t, 58, heavyHex.NumLinks())
}

func TestRoute(t *testing.T) {
	t.Parallel()
	ring := Chain(8, true)
	tests := []struct {
		name   string
		origin [2]int
		dest   [2]int
		path   []int
	}{
		{name: "shared site", origin: [2]int{0, 1}, dest: [2]int{1, 2}, path: []int{}},
		{name: "same pair", origin: [2]int{0, 1}, dest: [2]int{1, 0}, path: []int{}},
		{name: "forward", origin: [2]int{0, 1}, dest: [2]int{3, 4}, path: []int{2, 3}},
		{name: "wrap", origin: [2]int{0, 1}, dest: [2]int{6, 7}, path: []int{7}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			path, err := ring.Route(test.origin, test.dest)
			require.NoError(t, err)
			assert.Equal(t, test.path, path)
		})
	}
}

func TestRouteNotFound(t *testing.T) {
	t.Parallel()
	topo := twoChains()
	_, err := topo.Route([2]int{0, 1}, [2]int{3, 4})
	assert.ErrorIs(t, err, ErrPathNotFound)
}

func TestSwapRoute(t *testing.T) {
	t.Parallel()
	chain := Chain(6, false)
	path, err := chain.SwapRoute(1, 4)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 4}, path)

	_, err = chain.SwapRoute(2, 2)
	assert.ErrorIs(t, err, ErrPathNotFound)

	_, err = twoChains().SwapRoute(0, 4)
	assert.ErrorIs(t, err, ErrPathNotFound)
}

func TestDot(t *testing.T) {
	t.Parallel()
	topo := Chain(3, false)
	dot := topo.Dot("neato", "circle")
	assert.True(t, strings.HasPrefix(dot, "graph topology {"))
	assert.Contains(t, dot, "layout=neato")
	assert.Contains(t, dot, "shape=circle")
	assert.Contains(t, dot, "0 -- 1;")
	assert.Contains(t, dot, "1 -- 2;")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(dot), "}"))
}

func TestMain(m *testing.M) {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds | log.Llongfile | log.LstdFlags)

	m.Run()
}
