package engine

import (
	"math"

	"github.com/hailam/chesszero/internal/board"
)

// NodeID addresses a node in a Tree. The root is 0.
type NodeID int32

// NoNode is the parent of the root.
const NoNode NodeID = -1

// Node is one position in the search tree. Children are stored
// contiguously in the arena in move-generation order.
type Node struct {
	Position board.Position
	Move     board.Move // move from the parent; NoMove at the root
	Parent   NodeID

	Visits   int
	ValueSum float64 // sum of backed-up values, from Position's side to move
	Prior    float32

	firstChild  NodeID
	numChildren int32
}

// Expanded reports whether children have been created.
func (n *Node) Expanded() bool {
	return n.numChildren > 0
}

// Q is the mean value from the node's side to move, 0 when unvisited.
func (n *Node) Q() float64 {
	if n.Visits == 0 {
		return 0
	}
	return n.ValueSum / float64(n.Visits)
}

// Tree is an arena of nodes. Parents own their children by index and
// children refer back through the non-owning Parent field.
type Tree struct {
	nodes []Node
}

// NewTree returns a tree holding only the root.
func NewTree(root *board.Position) *Tree {
	t := &Tree{nodes: make([]Node, 1, 1024)}
	t.nodes[0] = Node{Position: *root, Parent: NoNode, firstChild: NoNode}
	return t
}

// Node returns the node with the given id. The pointer is invalidated by
// the next expansion.
func (t *Tree) Node(id NodeID) *Node {
	return &t.nodes[id]
}

// Root returns the root node.
func (t *Tree) Root() *Node {
	return &t.nodes[0]
}

// Len is the number of nodes in the arena.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Children returns the ids of id's children in move order.
func (t *Tree) Children(id NodeID) []NodeID {
	n := &t.nodes[id]
	out := make([]NodeID, n.numChildren)
	for i := range out {
		out[i] = n.firstChild + NodeID(i)
	}
	return out
}

// expand appends one child per move with the given priors. moves must be
// legal in id's position.
func (t *Tree) expand(id NodeID, moves []board.Move, priors []float32) {
	first := NodeID(len(t.nodes))
	parent := t.nodes[id].Position
	for i, m := range moves {
		child := Node{Position: parent, Move: m, Parent: id, Prior: priors[i], firstChild: NoNode}
		child.Position.MakeMove(m)
		t.nodes = append(t.nodes, child)
	}
	n := &t.nodes[id]
	n.firstChild = first
	n.numChildren = int32(len(moves))
}

// selectChild returns the child maximising
//
//	-W/N + c * P * sqrt(N_parent) / (1 + N)
//
// An unvisited child scores +Inf. Ties go to the earlier move.
func (t *Tree) selectChild(id NodeID, cPuct float64) NodeID {
	n := &t.nodes[id]
	sqrtParent := math.Sqrt(float64(n.Visits))
	best := NoNode
	bestScore := math.Inf(-1)
	for i := int32(0); i < n.numChildren; i++ {
		cid := n.firstChild + NodeID(i)
		c := &t.nodes[cid]
		var score float64
		if c.Visits == 0 {
			score = math.Inf(1)
		} else {
			score = -c.ValueSum/float64(c.Visits) +
				cPuct*float64(c.Prior)*sqrtParent/float64(1+c.Visits)
		}
		if best == NoNode || score > bestScore {
			best, bestScore = cid, score
		}
	}
	return best
}

// backpropagate adds value to id and its ancestors, flipping the sign at
// every ply. value is from id's side to move.
func (t *Tree) backpropagate(id NodeID, value float64) {
	for id != NoNode {
		n := &t.nodes[id]
		n.Visits++
		n.ValueSum += value
		value = -value
		id = n.Parent
	}
}
