package index

import "encoding/json"

// Schema is the JSON schema the model output must satisfy before an index
// is accepted onto a book.
var Schema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"chapters": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"properties": {
					"id": {"type": "string", "minLength": 1},
					"title": {"type": "string", "minLength": 1},
					"description": {"type": "string", "minLength": 1}
				},
				"required": ["id", "title", "description"],
				"additionalProperties": false
			}
		}
	},
	"required": ["chapters"],
	"additionalProperties": false
}`)

// ChapterStub is a single chapter entry in the generated index.
type ChapterStub struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Result represents the parsed result from index generation.
type Result struct {
	Chapters []ChapterStub `json:"chapters"`
}
