package shopping

import (
	"fmt"
	"sort"
	"strings"

	"meal-planner/internal/planner"
)

// BuildList aggregates the ingredients of every placed meal. Lines are
// keyed by lower-cased name and unit, so "2 cups rice" and "100 g rice"
// stay separate. A repeated meal is bought again and counts again.
func BuildList(week planner.MealPlanWeek) []Item {
	type key struct{ name, unit string }

	index := make(map[key]int)
	var items []Item
	for _, r := range week.Recipes() {
		for _, ing := range r.Ingredients {
			k := key{
				name: strings.ToLower(strings.TrimSpace(ing.Name)),
				unit: strings.ToLower(strings.TrimSpace(ing.Unit)),
			}
			if k.name == "" {
				continue
			}
			i, ok := index[k]
			if !ok {
				i = len(items)
				index[k] = i
				items = append(items, Item{Name: k.name, Unit: k.unit})
			}
			items[i].Amount += ing.Amount
			items[i].Count++
		}
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].Unit < items[j].Unit
	})
	return items
}

// FormatItem renders an item as "name amount unit", leaving out a zero amount.
func FormatItem(item Item) string {
	if item.Amount == 0 {
		return item.Name
	}
	return strings.Join(strings.Fields(fmt.Sprintf("%s %g %s", item.Name, item.Amount, item.Unit)), " ")
}
