package workflow

import (
	"strings"

	"luxlife-studio/services/order"
)

const (
	PromptPreamble = "luxury lifestyle cinematic background, 4k, ultra high definition, golden hour lighting, bokeh, elegant modern architecture, depth of field, film still"

	DefaultVoiceScript = "Living my best life with LuxLife's AI studio."
)

// BuildPrompt appends the scene, tagline and custom prompt of o to the
// fixed style preamble.
func BuildPrompt(o *order.Order) string {
	parts := []string{PromptPreamble}
	for _, extra := range []string{o.SceneLabel(), o.Tagline, o.Prompt} {
		if extra = strings.TrimSpace(extra); extra != "" {
			parts = append(parts, extra)
		}
	}
	return strings.Join(parts, ", ")
}

// VoiceScript picks the tagline, then a scene sentence, then the default.
func VoiceScript(o *order.Order) string {
	if tagline := strings.TrimSpace(o.Tagline); tagline != "" {
		return tagline
	}
	if scene := strings.TrimSpace(o.Scene); scene != "" {
		return "Hi, I'm living the LuxLife in " + scene + "."
	}
	return DefaultVoiceScript
}
