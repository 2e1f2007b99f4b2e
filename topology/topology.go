// Package topology describes the qubit connectivity of a circuit as an
// undirected graph of sites and links.
//
// A topology is built once by repeated GenerateLink calls and is
// read-only afterwards, so a single instance may be shared by several
// circuit states.
package topology

import (
	"errors"
	"fmt"
)

var (
	// ErrSiteOutOfRange is returned when a site id is outside [0, NumBits).
	ErrSiteOutOfRange = errors.New("topology: site out of range")
	// ErrSelfLink is returned when both endpoints of a link are the same site.
	ErrSelfLink = errors.New("topology: self link")
	// ErrDuplicateLink is returned when a link between the two sites already exists.
	ErrDuplicateLink = errors.New("topology: duplicate link")
	// ErrNoLink is returned when the two sites are not adjacent.
	ErrNoLink = errors.New("topology: no link between sites")
	// ErrPathNotFound is returned when no path connects the queried sites.
	ErrPathNotFound = errors.New("topology: path not found")
)

// Neighbor is one entry of a site's adjacency list.
type Neighbor struct {
	// Site is the neighboring site id.
	Site int
	// Link is the id of the link leading to Site.
	Link int
}

// Topology is an undirected graph of qubit sites.
// Link ids are dense integers assigned in creation order.
type Topology struct {
	numBits   int
	links     [][2]int
	neighbors [][]Neighbor
}

// New returns an empty topology over n sites.
func New(n int) *Topology {
	return &Topology{
		numBits:   n,
		links:     make([][2]int, 0),
		neighbors: make([][]Neighbor, n),
	}
}

// NumBits returns the number of sites.
func (t *Topology) NumBits() int { return t.numBits }

// NumLinks returns the number of links.
func (t *Topology) NumLinks() int { return len(t.links) }

// GenerateLink adds an undirected link between sites a and b.
func (t *Topology) GenerateLink(a, b int) error {
	if a < 0 || a >= t.numBits {
		return fmt.Errorf("%w: %d", ErrSiteOutOfRange, a)
	}
	if b < 0 || b >= t.numBits {
		return fmt.Errorf("%w: %d", ErrSiteOutOfRange, b)
	}
	if a == b {
		return fmt.Errorf("%w: %d", ErrSelfLink, a)
	}
	if t.HasLink(a, b) {
		return fmt.Errorf("%w: %d %d", ErrDuplicateLink, a, b)
	}

	id := len(t.links)
	t.links = append(t.links, [2]int{a, b})
	t.neighbors[a] = append(t.neighbors[a], Neighbor{Site: b, Link: id})
	t.neighbors[b] = append(t.neighbors[b], Neighbor{Site: a, Link: id})
	return nil
}

// NeighborsOf returns the adjacency list of a site.
// Entries appear in link insertion order; callers rely on this order to
// address bond legs positionally.
func (t *Topology) NeighborsOf(site int) []Neighbor {
	return t.neighbors[site]
}

// HasLink reports whether sites a and b are adjacent.
func (t *Topology) HasLink(a, b int) bool {
	if a < 0 || a >= t.numBits {
		return false
	}
	for _, nb := range t.neighbors[a] {
		if nb.Site == b {
			return true
		}
	}
	return false
}

// LinkBetween returns the id of the link between sites a and b.
func (t *Topology) LinkBetween(a, b int) (int, error) {
	if a < 0 || a >= t.numBits {
		return 0, fmt.Errorf("%w: %d", ErrSiteOutOfRange, a)
	}
	for _, nb := range t.neighbors[a] {
		if nb.Site == b {
			return nb.Link, nil
		}
	}
	return 0, fmt.Errorf("%w: %d %d", ErrNoLink, a, b)
}

// LinkSites returns the two endpoints of a link.
func (t *Topology) LinkSites(link int) [2]int {
	return t.links[link]
}

// IsConnected reports whether every site is reachable from site 0.
func (t *Topology) IsConnected() bool {
	if t.numBits == 0 {
		return true
	}
	visited := make([]bool, t.numBits)
	visited[0] = true
	queue := []int{0}
	count := 1
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, nb := range t.neighbors[cur] {
			if visited[nb.Site] {
				continue
			}
			visited[nb.Site] = true
			count++
			queue = append(queue, nb.Site)
		}
	}
	return count == t.numBits
}

// Route returns the sites a two-site cursor at the origin pair must
// visit, in order, to reach one site of the destination pair. The path
// excludes the origin sites and ends at the first destination site
// reached. It is empty when the two pairs already share a site.
//
// The search is a breadth-first search seeded from both origin sites at
// once, so the result is a shortest such path.
func (t *Topology) Route(origin, dest [2]int) ([]int, error) {
	for _, s := range []int{origin[0], origin[1], dest[0], dest[1]} {
		if s < 0 || s >= t.numBits {
			return nil, fmt.Errorf("%w: %d", ErrSiteOutOfRange, s)
		}
	}
	if origin[0] == dest[0] || origin[0] == dest[1] || origin[1] == dest[0] || origin[1] == dest[1] {
		return []int{}, nil
	}

	const noParent = -1
	parent := make([]int, t.numBits)
	for i := range parent {
		parent[i] = noParent
	}
	visited := make([]bool, t.numBits)
	visited[origin[0]], visited[origin[1]] = true, true
	queue := []int{origin[0], origin[1]}

	goal := noParent
Search:
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, nb := range t.neighbors[cur] {
			if visited[nb.Site] {
				continue
			}
			visited[nb.Site] = true
			parent[nb.Site] = cur
			if nb.Site == dest[0] || nb.Site == dest[1] {
				goal = nb.Site
				break Search
			}
			queue = append(queue, nb.Site)
		}
	}
	if goal == noParent {
		return nil, fmt.Errorf("%w: (%d,%d) to (%d,%d)", ErrPathNotFound, origin[0], origin[1], dest[0], dest[1])
	}

	path := make([]int, 0)
	for cur := goal; cur != origin[0] && cur != origin[1]; cur = parent[cur] {
		path = append(path, cur)
	}
	reverse(path)
	return path, nil
}

// SwapRoute returns the shortest path from origin to target as the
// ordered sites one step past origin up to and including target.
func (t *Topology) SwapRoute(origin, target int) ([]int, error) {
	for _, s := range []int{origin, target} {
		if s < 0 || s >= t.numBits {
			return nil, fmt.Errorf("%w: %d", ErrSiteOutOfRange, s)
		}
	}
	if origin == target {
		return nil, fmt.Errorf("%w: origin equals target %d", ErrPathNotFound, origin)
	}

	const noParent = -1
	parent := make([]int, t.numBits)
	for i := range parent {
		parent[i] = noParent
	}
	visited := make([]bool, t.numBits)
	visited[origin] = true
	queue := []int{origin}

	found := false
Search:
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, nb := range t.neighbors[cur] {
			if visited[nb.Site] {
				continue
			}
			visited[nb.Site] = true
			parent[nb.Site] = cur
			if nb.Site == target {
				found = true
				break Search
			}
			queue = append(queue, nb.Site)
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %d to %d", ErrPathNotFound, origin, target)
	}

	path := make([]int, 0)
	for cur := target; cur != origin; cur = parent[cur] {
		path = append(path, cur)
	}
	reverse(path)
	return path, nil
}

func reverse(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
