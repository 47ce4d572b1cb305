// internal/generator/translate.go
//
// Opportunistic Korean-to-English prompt translation.
//
// The image models perform noticeably better on English prompts, so prompts
// containing Hangul script are run through the chat endpoint first.  The
// translation is best-effort: any failure logs a warning and the original
// prompt is used untouched.  The user never sees a translation error.
package generator

import (
	"context"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

const translateSystemPrompt = "Translate the following text-to-image prompt " +
	"into natural English.  Reply with the translation only, no commentary."

// translateIfKorean returns prompt translated to English when it contains
// Hangul, and the prompt unchanged otherwise.
func (c *Client) translateIfKorean(ctx context.Context, prompt string) string {
	if !containsHangul(prompt) {
		return prompt
	}

	translated, err := c.Text(ctx, translateSystemPrompt, prompt, TextOptions{
		MaxTokens:   400,
		Temperature: 0.2,
	})
	if err != nil {
		zap.S().Warnw("prompt translation failed, using original",
			"err", err)
		return prompt
	}

	translated = strings.TrimSpace(translated)
	if translated == "" {
		return prompt
	}
	return translated
}

// containsHangul reports whether s has at least one Hangul rune.
func containsHangul(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Hangul, r) {
			return true
		}
	}
	return false
}
