package jobs

import (
	"fmt"
	"sort"
)

// UncoveredRequired returns the ids of required missing-data items that
// the supplied values do not cover, sorted for stable error messages.
func UncoveredRequired(items []MissingDataItem, supplied map[string]any) []string {
	var uncovered []string
	for _, item := range items {
		if !item.Required {
			continue
		}
		if _, ok := supplied[item.ID]; !ok {
			uncovered = append(uncovered, item.ID)
		}
	}
	sort.Strings(uncovered)
	return uncovered
}

// stringifySupplied renders supplied values for the AI prompt.
func stringifySupplied(supplied map[string]any) map[string]string {
	if len(supplied) == 0 {
		return nil
	}
	out := make(map[string]string, len(supplied))
	for key, value := range supplied {
		out[key] = fmt.Sprintf("%v", value)
	}
	return out
}
