package ontology

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/mr1hm/siting-dashboard/internal/models"
)

type NodeCategory string

const (
	NodeMining         = NodeCategory(models.CategoryMining)
	NodeDataCenter     = NodeCategory(models.CategoryDataCenter)
	NodeHospital       = NodeCategory(models.CategoryHospital)
	NodeSolar          = NodeCategory(models.CategorySolar)
	NodeManufacturing  = NodeCategory(models.CategoryManufacturing)
	NodeInfrastructure NodeCategory = "infrastructure"
	NodeStakeholder    NodeCategory = "stakeholder"
)

// CategoryOrder is the order roots are discovered in. Categories not listed
// sort after all of these.
var CategoryOrder = []NodeCategory{
	NodeMining,
	NodeDataCenter,
	NodeHospital,
	NodeSolar,
	NodeManufacturing,
	NodeInfrastructure,
	NodeStakeholder,
}

// RelationshipIncludes marks the parent -> child links that form the layout
// tree. Every other relationship is a display-only cross-reference.
const RelationshipIncludes = "includes"

type Node struct {
	ID       string       `json:"id" yaml:"id"`
	Label    string       `json:"label" yaml:"label"`
	Category NodeCategory `json:"category" yaml:"category"`
	Level    int          `json:"level" yaml:"level"`
}

type Link struct {
	Source       string `json:"source" yaml:"source"`
	Target       string `json:"target" yaml:"target"`
	Relationship string `json:"relationship" yaml:"relationship"`
}

func (l Link) Hierarchical() bool {
	return l.Relationship == RelationshipIncludes
}

func (l Link) String() string {
	return fmt.Sprintf("%s -[%s]-> %s", l.Source, l.Relationship, l.Target)
}

var (
	ErrInvalidNode     = errors.New("invalid node")
	ErrDuplicateNode   = errors.New("duplicate node id")
	ErrUnresolvedNode  = errors.New("link references unknown node")
	ErrIncludesCycle   = errors.New("includes links form a cycle")
	ErrMissingParent   = errors.New("node has no includes parent")
	ErrMultipleParents = errors.New("node has more than one includes parent")
	ErrLevelMismatch   = errors.New("includes parent is not one level up")
)

// ValidationError pins a violation to the node or link that caused it.
type ValidationError struct {
	Err    error
	NodeID string
	Link   *Link
	Detail string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(e.Err.Error())
	if e.NodeID != "" {
		fmt.Fprintf(&b, ": node %q", e.NodeID)
	}
	if e.Link != nil {
		fmt.Fprintf(&b, ": link %s", e.Link)
	}
	if e.Detail != "" {
		b.WriteString(" (" + e.Detail + ")")
	}
	return b.String()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Graph is a validated, immutable ontology. The only way to get one is Build.
type Graph struct {
	version  string
	nodes    []Node
	index    map[string]int
	links    []Link
	parent   map[string]string
	children map[string][]string
	roots    []string
}

// Build validates nodes and links and returns the graph, or every violation
// found joined into one error. It never returns a partial graph.
func Build(nodes []Node, links []Link) (*Graph, error) {
	var errs []error
	fail := func(err error, nodeID string, link *Link, detail string) {
		errs = append(errs, &ValidationError{Err: err, NodeID: nodeID, Link: link, Detail: detail})
	}

	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		switch {
		case n.ID == "":
			fail(ErrInvalidNode, "", nil, fmt.Sprintf("nodes[%d] has an empty id", i))
			continue
		case n.Level < 0:
			fail(ErrInvalidNode, n.ID, nil, fmt.Sprintf("negative level %d", n.Level))
		}
		if _, dup := index[n.ID]; dup {
			fail(ErrDuplicateNode, n.ID, nil, "")
			continue
		}
		index[n.ID] = i
	}

	incoming := make(map[string][]string)
	children := make(map[string][]string)
	for i := range links {
		l := links[i]
		_, srcOK := index[l.Source]
		_, dstOK := index[l.Target]
		if !srcOK {
			fail(ErrUnresolvedNode, l.Source, &l, "source")
		}
		if !dstOK {
			fail(ErrUnresolvedNode, l.Target, &l, "target")
		}
		if !srcOK || !dstOK || !l.Hierarchical() {
			continue
		}
		incoming[l.Target] = append(incoming[l.Target], l.Source)
		if !slices.Contains(children[l.Source], l.Target) {
			children[l.Source] = append(children[l.Source], l.Target)
		}
	}

	for _, cycle := range findCycles(nodes, index, children) {
		fail(ErrIncludesCycle, cycle[0], nil, strings.Join(cycle, " -> "))
	}

	parent := make(map[string]string)
	for i, n := range nodes {
		if first, ok := index[n.ID]; !ok || first != i {
			continue
		}
		parents := incoming[n.ID]
		switch {
		case n.Level == 0 && len(parents) > 0:
			fail(ErrLevelMismatch, n.ID, nil, fmt.Sprintf("root is included by %q", parents[0]))
		case n.Level > 0 && len(parents) == 0:
			fail(ErrMissingParent, n.ID, nil, fmt.Sprintf("level %d", n.Level))
		case len(parents) > 1:
			fail(ErrMultipleParents, n.ID, nil, strings.Join(parents, ", "))
		case len(parents) == 1:
			p := nodes[index[parents[0]]]
			if p.Level != n.Level-1 {
				fail(ErrLevelMismatch, n.ID, nil, fmt.Sprintf("parent %q is level %d, node is level %d", p.ID, p.Level, n.Level))
				continue
			}
			parent[n.ID] = p.ID
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return &Graph{
		version:  uuid.NewString(),
		nodes:    slices.Clone(nodes),
		index:    index,
		links:    slices.Clone(links),
		parent:   parent,
		children: children,
		roots:    orderRoots(nodes),
	}, nil
}

// findCycles runs a three-colour DFS over the includes edges. Each back edge
// yields one cycle, listed from its entry node round to the closing node.
func findCycles(nodes []Node, index map[string]int, children map[string][]string) [][]string {
	const (
		white = iota
		grey
		black
	)

	color := make(map[string]int, len(index))
	var stack []string
	var cycles [][]string

	var visit func(id string)
	visit = func(id string) {
		color[id] = grey
		stack = append(stack, id)

		for _, child := range children[id] {
			switch color[child] {
			case white:
				visit(child)
			case grey:
				start := slices.Index(stack, child)
				cycle := slices.Clone(stack[start:])
				cycles = append(cycles, append(cycle, child))
			}
		}

		stack = stack[:len(stack)-1]
		color[id] = black
	}

	for _, n := range nodes {
		if _, ok := index[n.ID]; ok && color[n.ID] == white {
			visit(n.ID)
		}
	}
	return cycles
}

func orderRoots(nodes []Node) []string {
	var roots []Node
	for _, n := range nodes {
		if n.Level == 0 {
			roots = append(roots, n)
		}
	}
	slices.SortStableFunc(roots, func(a, b Node) int {
		return categoryRank(a.Category) - categoryRank(b.Category)
	})

	ids := make([]string, len(roots))
	for i, r := range roots {
		ids[i] = r.ID
	}
	return ids
}

func categoryRank(c NodeCategory) int {
	if i := slices.Index(CategoryOrder, c); i >= 0 {
		return i
	}
	return len(CategoryOrder)
}

func (g *Graph) Version() string {
	return g.version
}

// Nodes returns every node in input order.
func (g *Graph) Nodes() []Node {
	return slices.Clone(g.nodes)
}

// Links returns the original edge list, hierarchical and cross-reference
// alike, in input order.
func (g *Graph) Links() []Link {
	return slices.Clone(g.links)
}

func (g *Graph) Node(id string) (Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

// Roots returns the level-0 node ids in category order.
func (g *Graph) Roots() []string {
	return slices.Clone(g.roots)
}

func (g *Graph) Parent(id string) (string, bool) {
	p, ok := g.parent[id]
	return p, ok
}

// Children returns a node's includes children in the order their links first
// appear.
func (g *Graph) Children(id string) []string {
	return slices.Clone(g.children[id])
}
