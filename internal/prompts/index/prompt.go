package index

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

// Params carries the book attributes the index prompt needs.
type Params struct {
	Title       string
	Synopsis    string
	Style       string
	TargetPages int
	MaxChapters int
}

// SystemPrompt returns the system prompt for index generation.
func SystemPrompt() string {
	return systemPrompt
}

// UserPrompt builds the user prompt for index generation.
func UserPrompt(p Params) string {
	var buf bytes.Buffer
	if err := userTemplate.Execute(&buf, p); err != nil {
		return userPromptTmpl
	}
	return buf.String()
}

// Prompt keys
const (
	SystemPromptKey = "index.system"
	UserPromptKey   = "index.user"
)

// RegisterPrompts registers the index prompts with the catalog.
func RegisterPrompts(c *prompts.Catalog) {
	c.Register(prompts.EmbeddedPrompt{
		Key:         SystemPromptKey,
		Text:        systemPrompt,
		Description: "Index generation system prompt - editorial assistant persona with strict JSON contract",
	})
	c.Register(prompts.EmbeddedPrompt{
		Key:         UserPromptKey,
		Text:        userPromptTmpl,
		Description: "Index generation user prompt template",
	})
}
