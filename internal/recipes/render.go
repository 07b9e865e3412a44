package recipes

import (
	"strings"
	"unicode/utf8"

	"github.com/m3rciful/mealbot/core/telegram/format"
	"github.com/m3rciful/mealbot/internal/catalog"
)

// localizedRecipe is a recipe detail after translation.
type localizedRecipe struct {
	Name         string
	Instructions string
	Ingredients  []catalog.Ingredient
}

// ingredientLine renders "name - measure", or the bare name when the measure
// is blank.
func ingredientLine(ing catalog.Ingredient) string {
	name := strings.TrimSpace(ing.Name)
	measure := strings.TrimSpace(ing.Measure)
	if measure == "" {
		return name
	}
	return name + " - " + measure
}

// maxMessageRunes is Telegram's limit on the text of a single message.
const maxMessageRunes = 4096

// renderRecipe builds the HTML detail messages for one recipe. A recipe that
// fits in one message yields one part; longer instructions continue in
// follow-up parts and the ingredients close the last one.
func renderRecipe(t Texts, r localizedRecipe) []string {
	lines := make([]string, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		lines = append(lines, format.EscapeHTML(ingredientLine(ing)))
	}
	head := format.Bold(r.Name) + "\n\n" + format.EscapeHTML(t.RecipeLabel) + ":\n"
	tail := format.EscapeHTML(t.IngredientsLabel) + ": " + strings.Join(lines, ", ")

	body := format.EscapeHTML(r.Instructions)
	if whole := head + body + "\n\n" + tail; utf8.RuneCountInString(whole) <= maxMessageRunes {
		return []string{whole}
	}

	chunks := splitEscaped(r.Instructions, maxMessageRunes-utf8.RuneCountInString(head))
	if len(chunks) == 0 {
		chunks = []string{""}
	}
	parts := make([]string, 0, len(chunks)+1)
	parts = append(parts, head+chunks[0])
	parts = append(parts, chunks[1:]...)

	last := len(parts) - 1
	if utf8.RuneCountInString(parts[last])+2+utf8.RuneCountInString(tail) <= maxMessageRunes {
		parts[last] += "\n\n" + tail
		return parts
	}
	return append(parts, tail)
}

// splitEscaped HTML-escapes raw and packs it into chunks of at most limit
// runes. Chunks break at line and word boundaries; a word longer than limit
// is cut between runes, never inside an entity.
func splitEscaped(raw string, limit int) []string {
	var (
		chunks []string
		cur    strings.Builder
		n      int
	)
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			chunks = append(chunks, s)
		}
		cur.Reset()
		n = 0
	}
	add := func(esc string) {
		l := utf8.RuneCountInString(esc)
		if n+l > limit {
			flush()
		}
		cur.WriteString(esc)
		n += l
	}
	for _, line := range strings.SplitAfter(raw, "\n") {
		for _, word := range strings.SplitAfter(line, " ") {
			esc := format.EscapeHTML(word)
			if utf8.RuneCountInString(esc) <= limit {
				add(esc)
				continue
			}
			for _, r := range word {
				add(format.EscapeHTML(string(r)))
			}
		}
	}
	flush()
	return chunks
}

// renderSelection lists the chosen recipe names under the header.
func renderSelection(t Texts, names []string) string {
	return t.SelectedHeader + "\n" + format.NumberedList(names)
}
