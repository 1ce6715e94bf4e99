package repository

// In-memory helpers over the flat category rows. The tree is rebuilt per
// request from the full row set, which stays small (tens to low hundreds
// of nodes), so no caching or incremental maintenance is needed.

// CategoryNode is a category with its resolved children, used for the
// tree view returned by the admin listing.
type CategoryNode struct {
	Category
	Children []*CategoryNode `json:"children"`
}

// BuildTree assembles the parent/child tree from flat rows in one pass:
// every row becomes a node, then each node attaches under its parent when
// the parent is present in the set, or becomes a root otherwise. The
// fallback keeps dangling parent references from hiding whole subtrees.
func BuildTree(cats []Category) []*CategoryNode {
	byID := make(map[uint64]*CategoryNode, len(cats))
	for i := range cats {
		byID[cats[i].ID] = &CategoryNode{Category: cats[i], Children: []*CategoryNode{}}
	}

	roots := []*CategoryNode{}
	for i := range cats {
		node := byID[cats[i].ID]
		if p := cats[i].ParentID; p != nil {
			if parent, ok := byID[*p]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}

// DescendantIDs returns rootID plus the ids of every category reachable
// by following child links from it. The visited set guarantees
// termination even if the stored rows contain a parent cycle.
func DescendantIDs(cats []Category, rootID uint64) map[uint64]struct{} {
	childrenOf := make(map[uint64][]uint64, len(cats))
	for i := range cats {
		if p := cats[i].ParentID; p != nil {
			childrenOf[*p] = append(childrenOf[*p], cats[i].ID)
		}
	}

	seen := map[uint64]struct{}{rootID: {}}
	stack := []uint64{rootID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, child := range childrenOf[id] {
			if _, ok := seen[child]; ok {
				continue
			}
			seen[child] = struct{}{}
			stack = append(stack, child)
		}
	}
	return seen
}
