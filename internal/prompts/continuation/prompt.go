package continuation

import (
	"bytes"
	_ "embed"
	"text/template"

	"github.com/alonmar/books-gen/internal/prompts"
)

//go:embed system.tmpl
var systemPrompt string

//go:embed user.tmpl
var userPromptTmpl string

var userTemplate = template.Must(template.New("user").Parse(userPromptTmpl))

// Params carries the chapter context plus the text written so far.
type Params struct {
	Title              string
	Synopsis           string
	ChapterTitle       string
	ChapterDescription string
	IndexOutline       string
	CurrentContent     string
	IsLastChapter      bool
}

// SystemPrompt returns the system prompt for chapter continuation.
func SystemPrompt() string {
	return systemPrompt
}

// UserPrompt builds the user prompt for chapter continuation.
func UserPrompt(p Params) string {
	var buf bytes.Buffer
	if err := userTemplate.Execute(&buf, p); err != nil {
		return userPromptTmpl
	}
	return buf.String()
}

// Prompt keys
const (
	SystemPromptKey = "continuation.system"
	UserPromptKey   = "continuation.user"
)

// RegisterPrompts registers the continuation prompts with the catalog.
func RegisterPrompts(c *prompts.Catalog) {
	c.Register(prompts.EmbeddedPrompt{
		Key:         SystemPromptKey,
		Text:        systemPrompt,
		Description: "Chapter continuation system prompt - extend the current chapter coherently",
	})
	c.Register(prompts.EmbeddedPrompt{
		Key:         UserPromptKey,
		Text:        userPromptTmpl,
		Description: "Chapter continuation user prompt template with existing chapter text",
	})
}
