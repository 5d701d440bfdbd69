package catalog

import (
	"sort"

	"github.com/google/uuid"
)

type CategoryNode struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	ParentID    *uuid.UUID      `json:"parent_id"`
	Description string          `json:"description"`
	SortOrder   int             `json:"sort_order"`
	Children    []*CategoryNode `json:"children"`
}

type TreeResult struct {
	Roots []*CategoryNode
	// Cycles lists categories whose parent chain loops back on itself. They
	// are placed at the root so the forest stays finite.
	Cycles []uuid.UUID
}

// SortCategories orders by sort_order then name, the order BuildCategoryTree
// expects its input in.
func SortCategories(cats []*Category) {
	sort.SliceStable(cats, func(i, j int) bool {
		if cats[i].SortOrder != cats[j].SortOrder {
			return cats[i].SortOrder < cats[j].SortOrder
		}
		return cats[i].Name < cats[j].Name
	})
}

// BuildCategoryTree turns a flat, pre-sorted category list into a forest.
// Children keep the input order. A parent id that is not in the input makes
// the node a root.
func BuildCategoryTree(cats []*Category) TreeResult {
	nodes := make(map[uuid.UUID]*CategoryNode, len(cats))
	parentOf := make(map[uuid.UUID]uuid.UUID, len(cats))
	for _, c := range cats {
		if c == nil {
			continue
		}
		nodes[c.ID] = &CategoryNode{
			ID:          c.ID,
			Name:        c.Name,
			Slug:        c.Slug,
			ParentID:    c.ParentID,
			Description: c.Description,
			SortOrder:   c.SortOrder,
			Children:    []*CategoryNode{},
		}
		if c.ParentID != nil {
			parentOf[c.ID] = *c.ParentID
		}
	}

	inCycle := findCycles(cats, nodes, parentOf)

	res := TreeResult{Roots: []*CategoryNode{}}
	for _, c := range cats {
		if c == nil {
			continue
		}
		node := nodes[c.ID]
		if inCycle[c.ID] {
			res.Cycles = append(res.Cycles, c.ID)
			res.Roots = append(res.Roots, node)
			continue
		}
		if pid, has := parentOf[c.ID]; has {
			if parent, ok := nodes[pid]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		res.Roots = append(res.Roots, node)
	}
	return res
}

func findCycles(cats []*Category, nodes map[uuid.UUID]*CategoryNode, parentOf map[uuid.UUID]uuid.UUID) map[uuid.UUID]bool {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[uuid.UUID]int, len(nodes))
	inCycle := map[uuid.UUID]bool{}
	for _, c := range cats {
		if c == nil || state[c.ID] != unvisited {
			continue
		}
		var path []uuid.UUID
		cur := c.ID
		for {
			if state[cur] == done {
				break
			}
			if state[cur] == visiting {
				for i := len(path) - 1; i >= 0; i-- {
					inCycle[path[i]] = true
					if path[i] == cur {
						break
					}
				}
				break
			}
			state[cur] = visiting
			path = append(path, cur)
			pid, has := parentOf[cur]
			if !has {
				break
			}
			if _, exists := nodes[pid]; !exists {
				break
			}
			cur = pid
		}
		for _, id := range path {
			state[id] = done
		}
	}
	return inCycle
}

// Walk visits every node depth-first, parents before children.
func Walk(roots []*CategoryNode, fn func(node *CategoryNode, parent *CategoryNode, depth int)) {
	var visit func(n, p *CategoryNode, d int)
	visit = func(n, p *CategoryNode, d int) {
		fn(n, p, d)
		for _, ch := range n.Children {
			visit(ch, n, d+1)
		}
	}
	for _, r := range roots {
		visit(r, nil, 0)
	}
}
