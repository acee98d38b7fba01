package bvh

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/microsoft/morphcharts-sub000/asset/scene"
	"github.com/microsoft/morphcharts-sub000/log"
	"github.com/microsoft/morphcharts-sub000/types"
)

type SplitStrategy string

const (
	// Evaluate bucketed split candidates with the surface area heuristic.
	SurfaceAreaHeuristic SplitStrategy = "sah"

	// Split nodes into two halves with equal primitive counts.
	EqualCounts SplitStrategy = "median"
)

// Parse a split strategy name.
func ParseSplitStrategy(name string) (SplitStrategy, error) {
	switch SplitStrategy(name) {
	case SurfaceAreaHeuristic, EqualCounts:
		return SplitStrategy(name), nil
	}
	return "", fmt.Errorf("bvh: unknown split strategy '%s'", name)
}

const (
	// Number of SAH buckets along the split axis.
	numBuckets = 12

	// Cost of traversing an interior node relative to a primitive test.
	traversalCost float32 = 0.125

	// Nodes below this depth always use equal count splits so the tree
	// depth stays within the traversal stack size.
	maxSahDepth = 32

	// Work lists with at least this many items score split candidates
	// in parallel.
	parallelScoreThreshold = 256

	// Leaf primitive counts are stored as uint16.
	maxLeafCapacity = math.MaxUint16
)

// An item partitioned by the BVH builder.
type Item struct {
	Bounds   scene.Bounds
	Centroid types.Vec3

	// Index of the item in the builder input list.
	Index int
}

// Create an item for the bounds of the input item at index.
func NewItem(index int, bounds scene.Bounds) Item {
	return Item{Bounds: bounds, Centroid: bounds.Centroid(), Index: index}
}

type splitScore struct {
	axis       int
	splitPoint float32

	leftCount, rightCount int
	score                 float32
}

type stats struct {
	totalItems int
	nodes      int
	leafs      int
	maxDepth   int
}

type builder struct {
	logger log.Logger

	// Bvh nodes stored as a contiguous pre-order list.
	nodes []scene.BvhNode

	// Input item indices in leaf order.
	order []int

	maxLeafItems int
	strategy     SplitStrategy

	// A channel for receiving score results.
	scoreChan chan splitScore

	stats stats
}

// Construct a BVH from a set of items. The builder returns the linear node
// list (node 0 is the root) and a permutation of the input indices such that
// each leaf addresses a contiguous range of it. An empty item list produces
// an empty node list.
//
// Leafs contain at most maxPrimsInNode items unless their centroids cannot
// be separated.
func Build(items []Item, maxPrimsInNode int, strategy SplitStrategy) (nodes []scene.BvhNode, order []int) {
	if len(items) == 0 {
		return nil, nil
	}

	if maxPrimsInNode < 1 {
		maxPrimsInNode = 1
	} else if maxPrimsInNode > maxLeafCapacity {
		maxPrimsInNode = maxLeafCapacity
	}

	b := &builder{
		logger:       log.New("bvh builder"),
		nodes:        make([]scene.BvhNode, 0, 2*len(items)/maxPrimsInNode+1),
		order:        make([]int, 0, len(items)),
		maxLeafItems: maxPrimsInNode,
		strategy:     strategy,
		scoreChan:    make(chan splitScore, numBuckets),
		stats: stats{
			totalItems: len(items),
		},
	}

	workList := make([]Item, len(items))
	copy(workList, items)

	start := time.Now()
	b.partition(workList, 0)
	b.logger.Debugf(
		"BVH tree build time: %d ms, items: %d, maxDepth: %d, nodes: %d, leafs: %d",
		time.Since(start).Nanoseconds()/1e6,
		b.stats.totalItems, b.stats.maxDepth, b.stats.nodes, b.stats.leafs,
	)
	return b.nodes, b.order
}

// Partition worklist and return node index.
func (b *builder) partition(workList []Item, depth int) uint32 {
	if depth > b.stats.maxDepth {
		b.stats.maxDepth = depth
	}

	bounds := scene.EmptyBounds()
	centroidBounds := scene.EmptyBounds()
	for _, item := range workList {
		bounds = bounds.Union(item.Bounds)
		centroidBounds = centroidBounds.Extend(item.Centroid)
	}

	var node scene.BvhNode
	node.SetBounds(bounds)

	if len(workList) == 1 {
		return b.createLeaf(&node, workList)
	}

	axis := centroidBounds.MaxExtentAxis()

	var leftWorkList, rightWorkList []Item
	switch {
	case centroidBounds.Max[axis] <= centroidBounds.Min[axis]:
		// All centroids coincide; no split plane can separate them
		if len(workList) <= b.maxLeafItems {
			return b.createLeaf(&node, workList)
		}
		leftWorkList, rightWorkList = splitEqualCounts(workList, axis)
	case b.strategy == EqualCounts || len(workList) <= 2 || depth >= maxSahDepth:
		if len(workList) <= b.maxLeafItems {
			return b.createLeaf(&node, workList)
		}
		leftWorkList, rightWorkList = splitEqualCounts(workList, axis)
	default:
		bestSplit := b.bestSahSplit(workList, axis, centroidBounds)
		leafCost := float32(len(workList))
		switch {
		case bestSplit != nil && (bestSplit.score < leafCost || len(workList) > b.maxLeafItems):
			leftWorkList, rightWorkList = splitAt(workList, bestSplit)
		case len(workList) <= b.maxLeafItems:
			return b.createLeaf(&node, workList)
		default:
			leftWorkList, rightWorkList = splitEqualCounts(workList, axis)
		}
	}

	// Add node to list; the left child follows it directly
	nodeIndex := len(b.nodes)
	b.nodes = append(b.nodes, node)
	b.stats.nodes++

	b.partition(leftWorkList, depth+1)
	rightNodeIndex := b.partition(rightWorkList, depth+1)
	b.nodes[nodeIndex].SetSecondChild(rightNodeIndex, uint8(axis))

	return uint32(nodeIndex)
}

// Evaluate the bucket boundaries along axis and return the split with the
// lowest SAH cost or nil if every candidate leaves a side empty.
func (b *builder) bestSahSplit(workList []Item, axis int, centroidBounds scene.Bounds) *splitScore {
	extent := centroidBounds.Max[axis] - centroidBounds.Min[axis]
	pendingScores := 0
	scores := make([]splitScore, 0, numBuckets-1)

	for bucket := 1; bucket < numBuckets; bucket++ {
		splitPoint := centroidBounds.Min[axis] + extent*float32(bucket)/float32(numBuckets)
		if len(workList) < parallelScoreThreshold {
			scores = append(scores, scoreSplit(workList, axis, splitPoint))
			continue
		}

		pendingScores++
		go func(splitPoint float32) {
			b.scoreChan <- scoreSplit(workList, axis, splitPoint)
		}(splitPoint)
	}

	for ; pendingScores > 0; pendingScores-- {
		scores = append(scores, <-b.scoreChan)
	}

	var bestSplit *splitScore
	for index := range scores {
		candidate := &scores[index]
		if candidate.score == math.MaxFloat32 {
			continue
		}
		// Ties are resolved by split point so parallel scoring stays deterministic
		if bestSplit == nil || candidate.score < bestSplit.score ||
			(candidate.score == bestSplit.score && candidate.splitPoint < bestSplit.splitPoint) {
			bestSplit = candidate
		}
	}
	return bestSplit
}

// Setup the node as a leaf containing all items in the work list.
// Returns the index to the node in the bvh node array.
func (b *builder) createLeaf(node *scene.BvhNode, workList []Item) uint32 {
	node.SetPrimitives(uint32(len(b.order)), uint16(len(workList)))
	for _, item := range workList {
		b.order = append(b.order, item.Index)
	}

	nodeIndex := len(b.nodes)
	b.nodes = append(b.nodes, *node)

	b.stats.leafs++
	return uint32(nodeIndex)
}

// Score a BVH split based on the surface area heuristic. The SAH calculates
// the split cost using the formula (lower cost is better):
//
// traversal cost + (left count * left area + right count * right area) / node area
//
// Splits that generate empty partitions get the worst possible score
// (MaxFloat32).
func scoreSplit(workList []Item, axis int, splitPoint float32) splitScore {
	left := scene.EmptyBounds()
	right := scene.EmptyBounds()
	s := splitScore{axis: axis, splitPoint: splitPoint}

	for _, item := range workList {
		if item.Centroid[axis] < splitPoint {
			s.leftCount++
			left = left.Union(item.Bounds)
		} else {
			s.rightCount++
			right = right.Union(item.Bounds)
		}
	}

	if s.leftCount == 0 || s.rightCount == 0 {
		s.score = math.MaxFloat32
		return s
	}

	nodeArea := left.Union(right).SurfaceArea()
	if nodeArea <= 0 {
		// Flat nodes; fall back to comparing counts
		s.score = traversalCost + float32(s.leftCount+s.rightCount)/2
		return s
	}

	s.score = traversalCost +
		(float32(s.leftCount)*left.SurfaceArea()+float32(s.rightCount)*right.SurfaceArea())/nodeArea
	return s
}

// Split the work list using a scored split plane.
func splitAt(workList []Item, split *splitScore) (leftWorkList, rightWorkList []Item) {
	leftWorkList = make([]Item, 0, split.leftCount)
	rightWorkList = make([]Item, 0, split.rightCount)
	for _, item := range workList {
		if item.Centroid[split.axis] < split.splitPoint {
			leftWorkList = append(leftWorkList, item)
		} else {
			rightWorkList = append(rightWorkList, item)
		}
	}
	return leftWorkList, rightWorkList
}

// Split the work list into two halves with equal item counts ordered by
// their centroid along axis.
func splitEqualCounts(workList []Item, axis int) (leftWorkList, rightWorkList []Item) {
	sort.SliceStable(workList, func(i, j int) bool {
		return workList[i].Centroid[axis] < workList[j].Centroid[axis]
	})
	mid := len(workList) / 2
	return workList[:mid], workList[mid:]
}
