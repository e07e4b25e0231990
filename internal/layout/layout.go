package layout

import (
	"fmt"
	"slices"

	"github.com/mr1hm/siting-dashboard/internal/ontology"
)

// Hierarchy is the read-only view of a validated ontology the layout needs.
// *ontology.Graph satisfies it.
type Hierarchy interface {
	Nodes() []ontology.Node
	Links() []ontology.Link
	Roots() []string
	Children(id string) []string
	Parent(id string) (string, bool)
}

type Config struct {
	RootX       float64 `json:"root_x"`
	RootY       float64 `json:"root_y"`
	ChildY      float64 `json:"child_y"`
	RootGap     float64 `json:"root_gap"`
	SiblingGap  float64 `json:"sibling_gap"`
	FallbackGap float64 `json:"fallback_gap"`
}

func Default() Config {
	return Config{
		RootX:       150,
		RootY:       80,
		ChildY:      200,
		RootGap:     280,
		SiblingGap:  120,
		FallbackGap: 80,
	}
}

// Key identifies the config in cache keys.
func (c Config) Key() string {
	return fmt.Sprintf("x=%g;y=%g;cy=%g;rg=%g;sg=%g;fg=%g",
		c.RootX, c.RootY, c.ChildY, c.RootGap, c.SiblingGap, c.FallbackGap)
}

func (c Config) levelY(level int) float64 {
	switch {
	case level <= 0:
		return c.RootY
	case level == 1:
		return c.ChildY
	default:
		return c.ChildY + float64(level-1)*(c.ChildY-c.RootY)
	}
}

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Edge is an ontology link with its endpoint coordinates resolved.
type Edge struct {
	ontology.Link
	Hierarchical bool     `json:"hierarchical"`
	From         Position `json:"from"`
	To           Position `json:"to"`
}

type Result struct {
	Positions map[string]Position `json:"positions"`
	// Unplaced lists, in node order, the nodes that fell back to the
	// horizontal strip because their parent had no position.
	Unplaced []string `json:"unplaced"`
	Edges    []Edge   `json:"edges"`
}

// Compute assigns every node a position. Roots are laid out left to right in
// Roots() order, then each level is placed under the level above it, siblings
// centred on their parent. Cross-reference links never move a node.
func Compute(h Hierarchy, cfg Config) Result {
	nodes := h.Nodes()
	level := make(map[string]int, len(nodes))
	maxLevel := 0
	for _, n := range nodes {
		if _, seen := level[n.ID]; !seen {
			level[n.ID] = n.Level
		}
		maxLevel = max(maxLevel, n.Level)
	}

	pos := make(map[string]Position, len(nodes))
	for i, id := range h.Roots() {
		if _, ok := level[id]; !ok {
			continue
		}
		pos[id] = Position{X: cfg.RootX + float64(i)*cfg.RootGap, Y: cfg.RootY}
	}

	for l := 1; l <= maxLevel; l++ {
		for _, n := range nodes {
			if n.Level != l {
				continue
			}
			if _, done := pos[n.ID]; done {
				continue
			}
			parentID, ok := h.Parent(n.ID)
			if !ok || level[parentID] != l-1 {
				continue
			}
			parent, ok := pos[parentID]
			if !ok {
				continue
			}

			siblings := h.Children(parentID)
			i := slices.Index(siblings, n.ID)
			if i < 0 {
				continue
			}
			offset := float64(i) - float64(len(siblings)-1)/2
			pos[n.ID] = Position{X: parent.X + offset*cfg.SiblingGap, Y: cfg.levelY(l)}
		}
	}

	unplaced := []string{}
	for i, n := range nodes {
		if _, done := pos[n.ID]; done {
			continue
		}
		pos[n.ID] = Position{X: cfg.RootX + float64(i)*cfg.FallbackGap, Y: cfg.levelY(n.Level)}
		unplaced = append(unplaced, n.ID)
	}

	links := h.Links()
	edges := make([]Edge, len(links))
	for i, l := range links {
		edges[i] = Edge{
			Link:         l,
			Hierarchical: l.Hierarchical(),
			From:         pos[l.Source],
			To:           pos[l.Target],
		}
	}

	return Result{Positions: pos, Unplaced: unplaced, Edges: edges}
}
