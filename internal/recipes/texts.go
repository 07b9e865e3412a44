package recipes

// Texts holds every user-facing string of the conversation. Empty fields fall
// back to the Russian defaults.
type Texts struct {
	CountPrompt      string `yaml:"count_prompt"`
	ChooseCategory   string `yaml:"choose_category"`
	SelectedHeader   string `yaml:"selected_header"`
	FetchButton      string `yaml:"fetch_button"`
	RecipeLabel      string `yaml:"recipe_label"`
	IngredientsLabel string `yaml:"ingredients_label"`
	UpstreamFailure  string `yaml:"upstream_failure"`
	EmptyCategory    string `yaml:"empty_category"`
	SessionExpired   string `yaml:"session_expired"`
	Cancelled        string `yaml:"cancelled"`
	NothingToCancel  string `yaml:"nothing_to_cancel"`
	Welcome          string `yaml:"welcome"`
}

// DefaultTexts returns the built-in Russian texts.
func DefaultTexts() Texts {
	return Texts{
		CountPrompt:      "Пожалуйста, укажите число рецептов после команды, например: /category_search_random 3",
		ChooseCategory:   "Выберите категорию:",
		SelectedHeader:   "Выбранные рецепты:",
		FetchButton:      "Получить рецепты",
		RecipeLabel:      "Рецепт",
		IngredientsLabel: "Ингредиенты",
		UpstreamFailure:  "Не удалось получить данные о рецептах. Попробуйте ещё раз чуть позже.",
		EmptyCategory:    "В этой категории нет рецептов. Выберите другую категорию.",
		SessionExpired:   "Поиск устарел. Начните заново: /category_search_random <число>",
		Cancelled:        "Поиск рецептов отменён.",
		NothingToCancel:  "Сейчас нечего отменять.",
		Welcome:          "Я подбираю случайные рецепты из TheMealDB и перевожу их.",
	}
}

// WithDefaults fills empty fields from DefaultTexts.
func (t Texts) WithDefaults() Texts {
	d := DefaultTexts()
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&t.CountPrompt, d.CountPrompt)
	fill(&t.ChooseCategory, d.ChooseCategory)
	fill(&t.SelectedHeader, d.SelectedHeader)
	fill(&t.FetchButton, d.FetchButton)
	fill(&t.RecipeLabel, d.RecipeLabel)
	fill(&t.IngredientsLabel, d.IngredientsLabel)
	fill(&t.UpstreamFailure, d.UpstreamFailure)
	fill(&t.EmptyCategory, d.EmptyCategory)
	fill(&t.SessionExpired, d.SessionExpired)
	fill(&t.Cancelled, d.Cancelled)
	fill(&t.NothingToCancel, d.NothingToCancel)
	fill(&t.Welcome, d.Welcome)
	return t
}
