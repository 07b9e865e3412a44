// Package translate turns catalog text into the bot's target language and
// caches the results.
package translate

import "context"

// Translator translates text into targetLang.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// Func adapts a plain function to Translator.
type Func func(ctx context.Context, text, targetLang string) (string, error)

// Translate calls f.
func (f Func) Translate(ctx context.Context, text, targetLang string) (string, error) {
	return f(ctx, text, targetLang)
}
