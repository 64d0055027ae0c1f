package chapter

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

// Params carries the book and chapter context for drafting a chapter.
type Params struct {
	Title              string
	Synopsis           string
	Style              string
	Summary            string
	IndexOutline       string
	ChapterNumber      int
	ChapterTitle       string
	ChapterDescription string
	TargetWords        int
	IsLastChapter      bool
}

// SystemPrompt returns the system prompt for chapter drafting.
func SystemPrompt() string {
	return systemPrompt
}

// UserPrompt builds the user prompt for chapter drafting.
func UserPrompt(p Params) string {
	var buf bytes.Buffer
	if err := userTemplate.Execute(&buf, p); err != nil {
		return userPromptTmpl
	}
	return buf.String()
}

// Prompt keys
const (
	SystemPromptKey = "chapter.system"
	UserPromptKey   = "chapter.user"
)

// RegisterPrompts registers the chapter prompts with the catalog.
func RegisterPrompts(c *prompts.Catalog) {
	c.Register(prompts.EmbeddedPrompt{
		Key:         SystemPromptKey,
		Text:        systemPrompt,
		Description: "Chapter drafting system prompt - narrative-only output, no restated titles",
	})
	c.Register(prompts.EmbeddedPrompt{
		Key:         UserPromptKey,
		Text:        userPromptTmpl,
		Description: "Chapter drafting user prompt template with full book context",
	})
}
