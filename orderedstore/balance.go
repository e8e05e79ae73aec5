package orderedstore

import "github.com/homier/assoc/errcode"

func height[K, V any](n *node[K, V]) int8 {
	if n == nil {
		return 0
	}

	return n.height
}

func fix[K, V any](n *node[K, V]) {
	n.height = max(height(n.left), height(n.right)) + 1
}

func balanceOf[K, V any](n *node[K, V]) int8 {
	return height(n.left) - height(n.right)
}

// rotateRight lifts the left child of n and returns it as the new subtree
// root. rotateLeft mirrors it.
func rotateRight[K, V any](n *node[K, V]) *node[K, V] {
	//       n            l
	//      / \          / \
	//     l   c   ->   a   n
	//    / \              / \
	//   a   b            b   c
	l := n.left
	n.left = l.right
	l.right = n

	fix(n)
	fix(l)

	return l
}

func rotateLeft[K, V any](n *node[K, V]) *node[K, V] {
	r := n.right
	n.right = r.left
	r.left = n

	fix(n)
	fix(r)

	return r
}

// rebalance restores the AVL property at n after one of its subtrees changed
// height by one, and returns the new subtree root.
func rebalance[K, V any](n *node[K, V]) *node[K, V] {
	fix(n)

	switch b := balanceOf(n); {
	case b > 2 || b < -2:
		errcode.Abort("orderedstore: balance factor %d outside [-2, 2]", b)
	case b == 2:
		if balanceOf(n.left) < 0 {
			n.left = rotateLeft(n.left)
		}

		return rotateRight(n)
	case b == -2:
		if balanceOf(n.right) > 0 {
			n.right = rotateRight(n.right)
		}

		return rotateLeft(n)
	}

	return n
}
