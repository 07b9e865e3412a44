package catalog

import "strings"

// MaxIngredientSlots is the number of strIngredientN/strMeasureN pairs a
// lookup response carries.
const MaxIngredientSlots = 20

// Category is a catalog category name such as "Seafood".
type Category string

// RecipeSummary is one entry of a category listing.
type RecipeSummary struct {
	ID    string
	Name  string
	Thumb string
}

// Ingredient is one numbered ingredient slot of a recipe, as returned upstream.
type Ingredient struct {
	Slot    int
	Name    string
	Measure string
}

// RecipeDetail is the full record returned by a lookup.
type RecipeDetail struct {
	ID           string
	Name         string
	Category     string
	Area         string
	Instructions string
	// Ingredients holds every non-null slot in slot order, untrimmed.
	Ingredients []Ingredient
}

// FilledIngredients returns the slots whose name is non-empty after trimming,
// with name and measure trimmed.
func (d RecipeDetail) FilledIngredients() []Ingredient {
	out := make([]Ingredient, 0, len(d.Ingredients))
	for _, ing := range d.Ingredients {
		name := strings.TrimSpace(ing.Name)
		if name == "" {
			continue
		}
		out = append(out, Ingredient{
			Slot:    ing.Slot,
			Name:    name,
			Measure: strings.TrimSpace(ing.Measure),
		})
	}
	return out
}
