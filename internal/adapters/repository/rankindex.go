package repository

// Treap-based order-statistics index over novelty scores.
//
// Percentile queries need "how many stored scores are strictly below s" in
// better than linear time; a treap with subtree sizes answers that in
// O(log n) expected, and the same structure serves the percentile-threshold
// and top-score stats. Duplicate scores are kept as separate nodes, ordered
// by insertion sequence for determinism.

// scoreScale controls fixed-point scaling from float64. Novelty scores live
// in [0,1], so 12 decimal places lose nothing that matters.
const scoreScale = 1_000_000_000_000

type scoreFP int64

func toFixedPoint(x float64) scoreFP {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return scoreScale
	}
	return scoreFP(x*scoreScale + 0.5)
}

func toFloat(x scoreFP) float64 {
	return float64(x) / scoreScale
}

// rankNode is a treap node keyed by (score, seq) ascending.
type rankNode struct {
	score scoreFP
	seq   uint64
	prio  uint64
	left  *rankNode
	right *rankNode
	size  int
}

func nsize(n *rankNode) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *rankNode) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

func rankLess(aScore scoreFP, aSeq uint64, bScore scoreFP, bSeq uint64) bool {
	if aScore != bScore {
		return aScore < bScore
	}
	return aSeq < bSeq
}

func rotateRight(y *rankNode) *rankNode {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *rankNode) *rankNode {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

// splitmix64 turns the insertion sequence into a well-distributed priority,
// keeping the treap balanced without a random source.
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

func insertNode(n *rankNode, score scoreFP, seq uint64) *rankNode {
	if n == nil {
		return &rankNode{score: score, seq: seq, prio: splitmix64(seq), size: 1}
	}
	if rankLess(score, seq, n.score, n.seq) {
		n.left = insertNode(n.left, score, seq)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insertNode(n.right, score, seq)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

// rankIndex is the index root plus the insertion sequence counter.
type rankIndex struct {
	root *rankNode
	seq  uint64
}

// add inserts a score.
func (ix *rankIndex) add(score float64) {
	ix.root = insertNode(ix.root, toFixedPoint(score), ix.seq)
	ix.seq++
}

// size returns the number of indexed scores.
func (ix *rankIndex) size() int {
	return nsize(ix.root)
}

// countBelow returns how many indexed scores are strictly less than score.
func (ix *rankIndex) countBelow(score float64) int {
	s := toFixedPoint(score)
	count := 0
	n := ix.root
	for n != nil {
		if n.score < s {
			count += nsize(n.left) + 1
			n = n.right
		} else {
			n = n.left
		}
	}
	return count
}

// kth returns the k-th smallest indexed score (0-based). The second return
// is false when k is out of range.
func (ix *rankIndex) kth(k int) (float64, bool) {
	if k < 0 || k >= ix.size() {
		return 0, false
	}
	n := ix.root
	for n != nil {
		l := nsize(n.left)
		switch {
		case k < l:
			n = n.left
		case k == l:
			return toFloat(n.score), true
		default:
			k -= l + 1
			n = n.right
		}
	}
	return 0, false
}

// topDesc returns up to m largest scores in descending order.
func (ix *rankIndex) topDesc(m int) []float64 {
	total := ix.size()
	if m > total {
		m = total
	}
	out := make([]float64, 0, m)
	for i := 0; i < m; i++ {
		if v, ok := ix.kth(total - 1 - i); ok {
			out = append(out, v)
		}
	}
	return out
}

// quantile returns the nearest-rank q-quantile (q in [0,1]) of the indexed
// scores, or fallback when the index is empty.
func (ix *rankIndex) quantile(q, fallback float64) float64 {
	total := ix.size()
	if total == 0 {
		return fallback
	}
	k := int(q * float64(total-1))
	if v, ok := ix.kth(k); ok {
		return v
	}
	return fallback
}
