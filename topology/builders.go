package topology

// Chain returns a linear chain of n sites, optionally closed into a
// ring by a link between the last site and site 0. A periodic 2-site
// chain stays open, since the wrap-around link would duplicate the
// existing one.
func Chain(n int, periodic bool) *Topology {
	t := New(n)
	for i := 0; i < n-1; i++ {
		mustLink(t, i, i+1)
	}
	if periodic && n > 2 {
		mustLink(t, n-1, 0)
	}
	return t
}

// AllToAll returns the complete graph over n sites.
func AllToAll(n int) *Topology {
	t := New(n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			mustLink(t, i, j)
		}
	}
	return t
}

// ibmq53Links is the heavy-hex layout of the 53-qubit IBM Q Rochester
// device. The edge list is fixed; results on it are comparable across
// implementations.
var ibmq53Links = [][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 4},
	{0, 5}, {4, 6}, {5, 7}, {6, 11},
	{7, 8}, {8, 9}, {9, 10}, {10, 11},
	{7, 12}, {11, 13}, {12, 14}, {13, 15}, {14, 16}, {15, 18},
	{9, 17},
	{16, 19}, {18, 20}, {19, 21}, {20, 22}, {21, 23}, {22, 27},
	{17, 25},
	{23, 24}, {24, 25}, {25, 26}, {26, 27},
	{23, 28}, {27, 29}, {28, 30}, {29, 34},
	{30, 31}, {31, 32}, {32, 33}, {33, 34},
	{30, 35}, {34, 36}, {35, 37}, {36, 38}, {37, 39}, {38, 41},
	{32, 40},
	{39, 42}, {41, 43}, {42, 44}, {43, 45}, {44, 46}, {45, 50},
	{40, 48},
	{46, 47}, {47, 48}, {48, 49}, {49, 50},
	{46, 51}, {50, 52},
}

// IBMQ53 returns the fixed 53-site heavy-hex topology.
func IBMQ53() *Topology {
	t := New(53)
	for _, l := range ibmq53Links {
		mustLink(t, l[0], l[1])
	}
	return t
}

func mustLink(t *Topology, a, b int) {
	if err := t.GenerateLink(a, b); err != nil {
		panic(err)
	}
}
