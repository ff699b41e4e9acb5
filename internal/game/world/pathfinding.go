package world

import (
	"container/heap"

	"github.com/Faultbox/tr1-engine/internal/engine/level"
	"github.com/Faultbox/tr1-engine/pkg/core"
)

// WallHeight is the floor height of a solid wall sector (-127 clicks).
const WallHeight = -127 * core.QuarterSectorSize

// MaxStep is the largest floor difference walked over without climbing.
const MaxStep = core.QuarterSectorSize

// PathNode is a node in the A* search.
type PathNode struct {
	X, Z   int
	G      float32 // cost from start
	H      float32 // estimated cost to goal
	F      float32 // G + H
	Parent *PathNode
	Index  int // index in heap
}

// PathHeap is the A* open set.
type PathHeap []*PathNode

func (h PathHeap) Len() int           { return len(h) }
func (h PathHeap) Less(i, j int) bool { return h[i].F < h[j].F }
func (h PathHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].Index = i
	h[j].Index = j
}

func (h *PathHeap) Push(x any) {
	node := x.(*PathNode)
	node.Index = len(*h)
	*h = append(*h, node)
}

func (h *PathHeap) Pop() any {
	old := *h
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.Index = -1
	*h = old[:n-1]
	return node
}

// PathFinder finds walkable routes across the sector grid of one room.
type PathFinder struct {
	room *level.Room
}

// NewPathFinder creates a pathfinder for room.
func NewPathFinder(room *level.Room) *PathFinder {
	if room == nil {
		return nil
	}
	return &PathFinder{room: room}
}

var directions = [8][2]int{
	{0, 1}, {-1, 1}, {-1, 0}, {-1, -1},
	{0, -1}, {1, -1}, {1, 0}, {1, 1},
}

const (
	straightCost = float32(1.0)
	diagonalCost = float32(1.414)
)

// FindPath returns the sector cells from start to goal, both included, or
// nil if goal cannot be reached.
func (pf *PathFinder) FindPath(startX, startZ, goalX, goalZ int) [][2]int {
	if pf == nil {
		return nil
	}
	if !pf.IsWalkable(startX, startZ) || !pf.IsWalkable(goalX, goalZ) {
		return nil
	}

	openSet := &PathHeap{}
	heap.Init(openSet)
	closed := make(map[int]bool)
	nodes := make(map[int]*PathNode)

	start := &PathNode{X: startX, Z: startZ, H: heuristic(startX, startZ, goalX, goalZ)}
	start.F = start.H
	heap.Push(openSet, start)
	nodes[pf.key(startX, startZ)] = start

	for openSet.Len() > 0 {
		current := heap.Pop(openSet).(*PathNode)
		if current.X == goalX && current.Z == goalZ {
			return reconstructPath(current)
		}
		closed[pf.key(current.X, current.Z)] = true

		for i, dir := range directions {
			nx, nz := current.X+dir[0], current.Z+dir[1]
			if closed[pf.key(nx, nz)] || !pf.canStep(current.X, current.Z, nx, nz) {
				continue
			}

			moveCost := straightCost
			if i%2 == 1 {
				// no corner cutting
				if !pf.canStep(current.X, current.Z, nx, current.Z) ||
					!pf.canStep(current.X, current.Z, current.X, nz) {
					continue
				}
				moveCost = diagonalCost
			}

			g := current.G + moveCost
			neighbor, ok := nodes[pf.key(nx, nz)]
			if !ok {
				neighbor = &PathNode{X: nx, Z: nz, G: g, H: heuristic(nx, nz, goalX, goalZ), Parent: current}
				neighbor.F = neighbor.G + neighbor.H
				nodes[pf.key(nx, nz)] = neighbor
				heap.Push(openSet, neighbor)
			} else if g < neighbor.G {
				neighbor.G = g
				neighbor.F = neighbor.G + neighbor.H
				neighbor.Parent = current
				heap.Fix(openSet, neighbor.Index)
			}
		}
	}
	return nil
}

// IsWalkable reports whether the cell is inside the room and not a wall.
func (pf *PathFinder) IsWalkable(x, z int) bool {
	if pf == nil {
		return false
	}
	s := pf.room.SectorAt(x, z)
	return s != nil && s.FloorHeight != WallHeight && s.FloorHeight > s.CeilingHeight
}

func (pf *PathFinder) canStep(fx, fz, tx, tz int) bool {
	if !pf.IsWalkable(tx, tz) {
		return false
	}
	from, to := pf.room.SectorAt(fx, fz), pf.room.SectorAt(tx, tz)
	return (to.FloorHeight - from.FloorHeight).Abs() <= MaxStep
}

func (pf *PathFinder) key(x, z int) int {
	return x*pf.room.SectorCountZ + z
}

// heuristic is the octile distance.
func heuristic(x1, z1, x2, z2 int) float32 {
	dx, dz := abs(x2-x1), abs(z2-z1)
	if dx < dz {
		return float32(dx)*diagonalCost + float32(dz-dx)
	}
	return float32(dz)*diagonalCost + float32(dx-dz)
}

func reconstructPath(node *PathNode) [][2]int {
	var path [][2]int
	for ; node != nil; node = node.Parent {
		path = append(path, [2]int{node.X, node.Z})
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
