// Package catalog holds the fixed reference list of medicines the
// gateway can identify from a photo. The list is built once at startup
// and never mutated afterwards, so it is safe to share across requests.
package catalog

// Item is one medicine the visual matcher can recognize. Price is in
// CFA francs; nil when the price is not tracked.
type Item struct {
	Name  string
	Price *float64
}

func price(v float64) *float64 { return &v }

// Default returns the built-in medicine catalog.
func Default() []Item {
	return []Item{
		{Name: "Doliprane 1000mg", Price: price(1500)},
		{Name: "Efferalgan 500mg", Price: price(1200)},
		{Name: "Spasfon", Price: price(2000)},
		{Name: "Smecta", Price: price(1800)},
		{Name: "Amoxicilline 500mg", Price: price(2500)},
		{Name: "Paracétamol générique", Price: price(500)},
		{Name: "Ibuprofène 400mg", Price: price(1300)},
		{Name: "Nivaquine", Price: price(900)},
		{Name: "Coartem", Price: price(3500)},
		{Name: "Vitamine C 500mg", Price: nil},
	}
}

// Names extracts the item names in catalog order, the candidate label
// set handed to the zero-shot matcher.
func Names(items []Item) []string {
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	return names
}
