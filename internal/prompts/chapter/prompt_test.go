package chapter

import (
	"strings"
	"testing"
)

func TestUserPrompt(t *testing.T) {
	p := Params{
		Title:              "La Sombra del Faro",
		Synopsis:           "Un guardafaros descubre un secreto.",
		Style:              "misterio",
		IndexOutline:       "1. La llegada\n2. El hallazgo",
		ChapterNumber:      2,
		ChapterTitle:       "El hallazgo",
		ChapterDescription: "Aparece el diario.",
		TargetWords:        800,
	}

	t.Run("middle chapter", func(t *testing.T) {
		got := UserPrompt(p)
		if !strings.Contains(got, `Write chapter 2: "El hallazgo"`) {
			t.Errorf("missing task line:\n%s", got)
		}
		if !strings.Contains(got, "approximately 800 words") {
			t.Errorf("missing word target:\n%s", got)
		}
		if strings.Contains(got, "final chapter") {
			t.Error("closing instruction should only appear for the last chapter")
		}
		if strings.Contains(got, "Book summary so far") {
			t.Error("summary block should be omitted when empty")
		}
	})

	t.Run("last chapter with summary", func(t *testing.T) {
		p := p
		p.IsLastChapter = true
		p.Summary = "El diario revela un naufragio."
		got := UserPrompt(p)
		if !strings.Contains(got, "final chapter") {
			t.Error("last chapter should carry the closing instruction")
		}
		if !strings.Contains(got, "El diario revela un naufragio.") {
			t.Error("summary should be included when present")
		}
	})
}
