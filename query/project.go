package query

// Project prunes a fully populated document down to the fields named by
// the selection tree. Keys absent from the tree are omitted: this is a
// strict allow-list, not a deny-list. A nil or empty tree means no
// projection and returns the document untouched.
func Project(document map[string]interface{}, tree SelectionTree) map[string]interface{} {
	if len(tree) == 0 {
		return document
	}

	pruned := make(map[string]interface{}, len(tree))
	for key, rule := range tree {
		value, ok := document[key]
		if !ok {
			continue
		}
		pruned[key] = projectValue(value, rule)
	}
	return pruned
}

func projectValue(value interface{}, rule interface{}) interface{} {
	tree, ok := rule.(SelectionTree)
	if !ok {
		// Leaf: copy the field verbatim.
		return value
	}

	if inner, many := tree[AllElements]; many {
		list, ok := value.([]interface{})
		if !ok {
			return value
		}
		pruned := make([]interface{}, 0, len(list))
		for _, element := range list {
			pruned = append(pruned, projectValue(element, inner))
		}
		return pruned
	}

	if nested, ok := value.(map[string]interface{}); ok {
		return Project(nested, tree)
	}
	return value
}
