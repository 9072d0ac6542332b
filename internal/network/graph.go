// Package network models the agent-teller relationship graph extracted
// from deposit transactions. It supports degree, density, and connected
// component analysis.
package network

import (
	"sort"
)

// Role classifies a node in the network.
type Role string

const (
	// RoleAgent marks a node that appears as a parent (an agent with
	// tellers operating under it).
	RoleAgent Role = "agent"
	// RoleTeller marks a node that only appears as a child.
	RoleTeller Role = "teller"
)

// Node is a participant in the agent network.
type Node struct {
	ID   string
	Role Role
}

// Edge is an agent->teller relationship weighted by shared deposits.
type Edge struct {
	Parent string
	Child  string
	Weight int64
}

// Graph is an undirected view of the agent-teller network. Edges are
// stored once, adjacency in both directions.
type Graph struct {
	nodes    map[string]*Node
	adjacent map[string][]string
	edges    []Edge
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		adjacent: make(map[string][]string),
	}
}

// AddNode adds a node, upgrading a teller to an agent if it is later
// seen as a parent.
func (g *Graph) AddNode(id string, role Role) {
	if existing, ok := g.nodes[id]; ok {
		if role == RoleAgent {
			existing.Role = RoleAgent
		}
		return
	}
	g.nodes[id] = &Node{ID: id, Role: role}
	g.adjacent[id] = nil
}

// AddEdge records a parent-child relationship. Both endpoints are
// created as needed; self-loops are ignored.
func (g *Graph) AddEdge(parent, child string, weight int64) {
	if parent == child || parent == "" || child == "" {
		return
	}
	g.AddNode(parent, RoleAgent)
	g.AddNode(child, RoleTeller)

	for _, n := range g.adjacent[parent] {
		if n == child {
			return
		}
	}
	g.adjacent[parent] = append(g.adjacent[parent], child)
	g.adjacent[child] = append(g.adjacent[child], parent)
	g.edges = append(g.edges, Edge{Parent: parent, Child: child, Weight: weight})
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of distinct edges.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// Degree returns the number of neighbors of a node.
func (g *Graph) Degree(id string) int {
	return len(g.adjacent[id])
}

// Nodes returns all nodes ordered by ID for deterministic output.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Edges returns all edges ordered by descending weight, then parent ID.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].Parent < out[j].Parent
	})
	return out
}

// components returns the sizes of all connected components.
func (g *Graph) components() []int {
	visited := make(map[string]bool, len(g.nodes))
	var sizes []int

	for id := range g.nodes {
		if visited[id] {
			continue
		}
		size := 0
		stack := []string{id}
		visited[id] = true
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			size++
			for _, next := range g.adjacent[cur] {
				if !visited[next] {
					visited[next] = true
					stack = append(stack, next)
				}
			}
		}
		sizes = append(sizes, size)
	}
	return sizes
}

// Stats summarizes the network structure.
type Stats struct {
	Agents           int     `json:"agents"`
	Tellers          int     `json:"tellers"`
	Nodes            int     `json:"nodes"`
	Edges            int     `json:"edges"`
	Density          float64 `json:"density"`
	AverageDegree    float64 `json:"average_degree"`
	Components       int     `json:"connected_components"`
	LargestComponent int     `json:"largest_component"`
}

// Stats computes summary statistics. An empty graph yields zeroes.
func (g *Graph) Stats() Stats {
	s := Stats{Nodes: g.NodeCount(), Edges: g.EdgeCount()}
	for _, n := range g.nodes {
		if n.Role == RoleAgent {
			s.Agents++
		} else {
			s.Tellers++
		}
	}
	if s.Nodes > 1 {
		s.Density = float64(2*s.Edges) / float64(s.Nodes*(s.Nodes-1))
	}
	if s.Nodes > 0 {
		s.AverageDegree = float64(2*s.Edges) / float64(s.Nodes)
	}
	for _, size := range g.components() {
		s.Components++
		if size > s.LargestComponent {
			s.LargestComponent = size
		}
	}
	return s
}

// Hub is an agent ranked by the number of tellers under it.
type Hub struct {
	UserID  string `json:"user_id"`
	Tellers int    `json:"tellers"`
	Weight  int64  `json:"deposit_count"`
}

// TopHubs returns the n agents with the most connected tellers.
func (g *Graph) TopHubs(n int) []Hub {
	weights := make(map[string]int64)
	for _, e := range g.edges {
		weights[e.Parent] += e.Weight
	}

	var hubs []Hub
	for id, node := range g.nodes {
		if node.Role != RoleAgent {
			continue
		}
		hubs = append(hubs, Hub{UserID: id, Tellers: g.Degree(id), Weight: weights[id]})
	}
	sort.Slice(hubs, func(i, j int) bool {
		if hubs[i].Tellers != hubs[j].Tellers {
			return hubs[i].Tellers > hubs[j].Tellers
		}
		return hubs[i].UserID < hubs[j].UserID
	})
	if n > 0 && len(hubs) > n {
		hubs = hubs[:n]
	}
	return hubs
}
