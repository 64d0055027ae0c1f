// Package prompts provides the embedded prompt templates used by the
// generation workflow. Each operation lives in its own subpackage with
// embedded .tmpl files as the source of truth; templates are versioned by
// key and content hash for traceability only.
package prompts

import "sort"

// EmbeddedPrompt represents a prompt loaded from an embedded .tmpl file.
type EmbeddedPrompt struct {
	Key         string   `json:"key"`         // Hierarchical key: index.user
	Text        string   `json:"text"`        // The prompt text (Go template)
	Description string   `json:"description"` // Human-readable description
	Variables   []string `json:"variables"`   // Extracted template variables
	Hash        string   `json:"hash"`        // SHA256 of the text
}

// Catalog collects the embedded prompts registered by the operation
// packages, keyed for listing and inspection.
type Catalog struct {
	prompts map[string]EmbeddedPrompt
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{prompts: make(map[string]EmbeddedPrompt)}
}

// Register adds a prompt to the catalog, filling in the derived fields.
func (c *Catalog) Register(p EmbeddedPrompt) {
	p.Variables = ExtractVariables(p.Text)
	p.Hash = HashText(p.Text)
	c.prompts[p.Key] = p
}

// Get returns a prompt by key.
func (c *Catalog) Get(key string) (EmbeddedPrompt, bool) {
	p, ok := c.prompts[key]
	return p, ok
}

// List returns all prompts sorted by key.
func (c *Catalog) List() []EmbeddedPrompt {
	out := make([]EmbeddedPrompt, 0, len(c.prompts))
	for _, p := range c.prompts {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
