package summary

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

//go:embed extend.tmpl
var extendPromptTmpl string

var (
	userTemplate   = template.Must(template.New("user").Parse(userPromptTmpl))
	extendTemplate = template.Must(template.New("extend").Parse(extendPromptTmpl))
)

// Params carries the book context for creating or extending the running
// summary. Summary is empty when creating the first summary; it holds the
// current summary when extending.
type Params struct {
	Title          string
	Synopsis       string
	Style          string
	Summary        string
	ChapterContent string
}

// SystemPrompt returns the system prompt for summary maintenance.
func SystemPrompt() string {
	return systemPrompt
}

// UserPrompt builds the user prompt for the first summary of a book.
func UserPrompt(p Params) string {
	var buf bytes.Buffer
	if err := userTemplate.Execute(&buf, p); err != nil {
		return userPromptTmpl
	}
	return buf.String()
}

// ExtendPrompt builds the user prompt that folds a new chapter into an
// existing summary.
func ExtendPrompt(p Params) string {
	var buf bytes.Buffer
	if err := extendTemplate.Execute(&buf, p); err != nil {
		return extendPromptTmpl
	}
	return buf.String()
}

// Prompt keys
const (
	SystemPromptKey = "summary.system"
	UserPromptKey   = "summary.user"
	ExtendPromptKey = "summary.extend"
)

// RegisterPrompts registers the summary prompts with the catalog.
func RegisterPrompts(c *prompts.Catalog) {
	c.Register(prompts.EmbeddedPrompt{
		Key:         SystemPromptKey,
		Text:        systemPrompt,
		Description: "Summary system prompt - brief dense book summaries",
	})
	c.Register(prompts.EmbeddedPrompt{
		Key:         UserPromptKey,
		Text:        userPromptTmpl,
		Description: "Summary creation user prompt template (first chapter)",
	})
	c.Register(prompts.EmbeddedPrompt{
		Key:         ExtendPromptKey,
		Text:        extendPromptTmpl,
		Description: "Summary extension user prompt template (subsequent chapters)",
	})
}
