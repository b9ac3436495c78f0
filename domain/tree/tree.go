package tree

import (
	"fmt"

	"cladeshift/domain/core"
)

// ParsedNode is the boundary representation of a rooted hierarchy of tip
// identifiers, already parsed from a clustering or phylogenetic format.
// Tips carry a SampleID and no children; internal nodes carry children and
// an optional label.
type ParsedNode struct {
	SampleID string
	Label    string
	Children []*ParsedNode
}

// NodeID addresses a node inside a Tree's arena. IDs are assigned in
// pre-order, so NodeID doubles as the pre-order position.
type NodeID int

// CladeStats holds the per-node sample-membership counts.
// INVARIANTS:
// - TotalTips == TargetedCount + OtherCount
// - TotalTips == sum of children's TotalTips (== 1 for a tip)
type CladeStats struct {
	TargetedCount int `json:"targeted_count"`
	OtherCount    int `json:"other_count"`
	TotalTips     int `json:"total_tips"`
}

type node struct {
	parent   NodeID
	children []NodeID
	label    string
	sampleID core.SampleID
	isTip    bool
	targeted bool
	stats    CladeStats

	// Tips under a node occupy a contiguous range of the pre-order tip
	// sequence; [tipStart, tipEnd) indexes into the tree's tip ordering.
	tipStart int
	tipEnd   int
}

// Tree is an immutable arena of nodes built once per dataset. All stats are
// memoized at construction; reads never trigger recomputation.
type Tree struct {
	dataset       core.DatasetID
	nodes         []node
	tips          []NodeID // tips in pre-order; index is the tip ordinal
	targetedTotal int
}

// Build constructs a Tree from a parsed hierarchy and a sample label table.
// It fails with a MalformedTree error on duplicate tips, cycles, shared
// children or structurally invalid nodes, and with an UnlabeledSample error
// when a tip is absent from the label table.
func Build(dataset core.DatasetID, root *ParsedNode, labels map[core.SampleID]bool) (*Tree, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: dataset %s", core.ErrEmptyTree, dataset)
	}

	t := &Tree{dataset: dataset}
	seenTips := make(map[core.SampleID]struct{})
	onPath := make(map[*ParsedNode]struct{})
	visited := make(map[*ParsedNode]struct{})

	var walk func(pn *ParsedNode, parent NodeID) (NodeID, error)
	walk = func(pn *ParsedNode, parent NodeID) (NodeID, error) {
		if pn == nil {
			return -1, core.NewMalformedTreeError(string(dataset), "nil child node")
		}
		if _, ok := onPath[pn]; ok {
			return -1, fmt.Errorf("%w in dataset %s", core.ErrCycleDetected, dataset)
		}
		if _, ok := visited[pn]; ok {
			// Same node reachable along two paths: the hierarchy is not proper.
			return -1, core.NewMalformedTreeError(string(dataset), "node has multiple parents")
		}
		onPath[pn] = struct{}{}
		visited[pn] = struct{}{}
		defer delete(onPath, pn)

		id := NodeID(len(t.nodes))
		t.nodes = append(t.nodes, node{parent: parent, label: pn.Label})

		if len(pn.Children) == 0 {
			sid := core.SampleID(pn.SampleID)
			if sid == "" {
				return -1, core.NewMalformedTreeError(string(dataset), "leaf node without sample id")
			}
			if _, dup := seenTips[sid]; dup {
				return -1, core.NewDuplicateTipError(string(dataset), string(sid))
			}
			seenTips[sid] = struct{}{}

			targeted, ok := labels[sid]
			if !ok {
				return -1, core.NewUnlabeledSampleError(string(dataset), string(sid))
			}

			n := &t.nodes[id]
			n.isTip = true
			n.sampleID = sid
			n.targeted = targeted
			n.tipStart = len(t.tips)
			n.tipEnd = len(t.tips) + 1
			n.stats = CladeStats{TotalTips: 1}
			if targeted {
				n.stats.TargetedCount = 1
				t.targetedTotal++
			} else {
				n.stats.OtherCount = 1
			}
			t.tips = append(t.tips, id)
			return id, nil
		}

		if pn.SampleID != "" {
			return -1, core.NewMalformedTreeError(string(dataset), fmt.Sprintf("internal node carries sample id %s", pn.SampleID))
		}

		tipStart := len(t.tips)
		var stats CladeStats
		for _, child := range pn.Children {
			cid, err := walk(child, id)
			if err != nil {
				return -1, err
			}
			cs := t.nodes[cid].stats
			stats.TargetedCount += cs.TargetedCount
			stats.OtherCount += cs.OtherCount
			stats.TotalTips += cs.TotalTips
			t.nodes[id].children = append(t.nodes[id].children, cid)
		}

		n := &t.nodes[id]
		n.stats = stats
		n.tipStart = tipStart
		n.tipEnd = len(t.tips)
		return id, nil
	}

	if _, err := walk(root, -1); err != nil {
		return nil, err
	}
	return t, nil
}

// Dataset returns the dataset this tree was built for.
func (t *Tree) Dataset() core.DatasetID { return t.dataset }

// Root returns the root node.
func (t *Tree) Root() NodeID { return 0 }

// Len returns the total number of nodes (tips and internal).
func (t *Tree) Len() int { return len(t.nodes) }

// TipCount returns the number of tips in the tree.
func (t *Tree) TipCount() int { return len(t.tips) }

// TargetedTotal returns the number of targeted tips in the whole tree.
func (t *Tree) TargetedTotal() int { return t.targetedTotal }

// Preorder returns node IDs in pre-order (root first, children
// left-to-right in input order). This is the traversal order all
// downstream algorithms rely on.
func (t *Tree) Preorder() []NodeID {
	order := make([]NodeID, len(t.nodes))
	for i := range order {
		order[i] = NodeID(i)
	}
	return order
}

// Stats returns the memoized CladeStats for a node.
func (t *Tree) Stats(id NodeID) CladeStats { return t.nodes[id].stats }

// IsTip reports whether the node is a leaf.
func (t *Tree) IsTip(id NodeID) bool { return t.nodes[id].isTip }

// Children returns the child IDs of a node in input order.
func (t *Tree) Children(id NodeID) []NodeID { return t.nodes[id].children }

// SampleID returns the sample identifier of a tip, or "" for internal nodes.
func (t *Tree) SampleID(id NodeID) core.SampleID { return t.nodes[id].sampleID }

// Targeted reports whether a tip carries the target label.
func (t *Tree) Targeted(id NodeID) bool { return t.nodes[id].targeted }

// Label returns a stable human-readable label for the node: the sample id
// for tips, the input label for internal nodes, or a positional fallback.
func (t *Tree) Label(id NodeID) string {
	n := t.nodes[id]
	if n.isTip {
		return string(n.sampleID)
	}
	if n.label != "" {
		return n.label
	}
	return fmt.Sprintf("node%d", int(id))
}

// TipRange returns the half-open ordinal range [start, end) of tips under
// the node within the tree's pre-order tip sequence.
func (t *Tree) TipRange(id NodeID) (start, end int) {
	return t.nodes[id].tipStart, t.nodes[id].tipEnd
}

// TipSampleIDs returns the sample ids of all tips under the node, in
// pre-order.
func (t *Tree) TipSampleIDs(id NodeID) []core.SampleID {
	start, end := t.TipRange(id)
	out := make([]core.SampleID, 0, end-start)
	for _, tip := range t.tips[start:end] {
		out = append(out, t.nodes[tip].sampleID)
	}
	return out
}

// ComplementSampleIDs returns the sample ids of all tips NOT under the
// node, in pre-order.
func (t *Tree) ComplementSampleIDs(id NodeID) []core.SampleID {
	start, end := t.TipRange(id)
	out := make([]core.SampleID, 0, len(t.tips)-(end-start))
	for ord, tip := range t.tips {
		if ord >= start && ord < end {
			continue
		}
		out = append(out, t.nodes[tip].sampleID)
	}
	return out
}
