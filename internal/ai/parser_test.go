package ai

import (
	"fmt"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentai/contentai-golang/internal/models"
)

const wellFormed = `Título: Gato programador
Descrição: Um gato tenta resolver bugs
Hashtags: #tech #gato
---
Título: Café e deploy
Descrição: Deploy na sexta
Hashtags: #devlife
---
Title: Teclado barulhento
Description: ASMR de teclado mecânico
Hashtags: #asmr
---`

func TestParseIdeas_WellFormed(t *testing.T) {
	ideas := ParseIdeas(wellFormed, 3, "tech", "devs")

	require.Len(t, ideas, 3)
	assert.Equal(t, models.Idea{Title: "Gato programador", Description: "Um gato tenta resolver bugs", Hashtags: "#tech #gato"}, ideas[0])
	assert.Equal(t, "Café e deploy", ideas[1].Title)
	assert.Equal(t, "Teclado barulhento", ideas[2].Title)
	assert.Equal(t, "#asmr", ideas[2].Hashtags)
}

func TestParseIdeas_TruncatesExtra(t *testing.T) {
	ideas := ParseIdeas(wellFormed, 2, "tech", "devs")
	require.Len(t, ideas, 2)
	assert.Equal(t, "Café e deploy", ideas[1].Title)
}

func TestParseIdeas_PadsWithFallback(t *testing.T) {
	ideas := ParseIdeas(wellFormed, 5, "tech", "devs")
	require.Len(t, ideas, 5)
	assert.Equal(t, FallbackIdea(4, "tech", "devs"), ideas[3])
	assert.Equal(t, FallbackIdea(5, "tech", "devs"), ideas[4])
}

func TestParseIdeas_NewTitleClosesIdea(t *testing.T) {
	text := "Título: A\nDescrição: a\nTítulo: B\nHashtags: #b"
	ideas := ParseIdeas(text, 2, "n", "p")
	require.Len(t, ideas, 2)
	assert.Equal(t, models.Idea{Title: "A", Description: "a"}, ideas[0])
	assert.Equal(t, models.Idea{Title: "B", Hashtags: "#b"}, ideas[1])
}

func TestParseIdeas_MarkdownLabels(t *testing.T) {
	text := "1.\n**Título:** Dança do escritório\n**Descrição:** Coreografia no home office\n**Hashtags:** #danca"
	ideas := ParseIdeas(text, 1, "n", "p")
	assert.Equal(t, "Dança do escritório", ideas[0].Title)
	assert.Equal(t, "Coreografia no home office", ideas[0].Description)
	assert.Equal(t, "#danca", ideas[0].Hashtags)
}

func TestParseIdeas_ColonInValue(t *testing.T) {
	ideas := ParseIdeas("Título: Parte 1: o início", 1, "n", "p")
	assert.Equal(t, "Parte 1: o início", ideas[0].Title)
}

func TestParseIdeas_JSONArray(t *testing.T) {
	text := "```json\n[{\"title\":\"T1\",\"description\":\"D1\",\"hashtags\":\"#a\"},{\"title\":\"\"},{\"title\":\"T2\"}]\n```"
	ideas := ParseIdeas(text, 3, "n", "p")
	require.Len(t, ideas, 3)
	assert.Equal(t, "T1", ideas[0].Title)
	assert.Equal(t, "T2", ideas[1].Title)
	assert.Equal(t, FallbackIdea(3, "n", "p"), ideas[2])
}

func TestParseIdeas_GarbageYieldsPlaceholders(t *testing.T) {
	for _, text := range []string{"", "   ", "lorem ipsum\n---\n---", "[not json", "{}"} {
		ideas := ParseIdeas(text, 3, "fitness", "idosos")
		require.Len(t, ideas, 3, "input %q", text)
		for i, idea := range ideas {
			assert.Equal(t, FallbackIdea(i+1, "fitness", "idosos"), idea)
		}
	}
}

func TestIdeasFromResponse(t *testing.T) {
	_, err := IdeasFromResponse("lorem ipsum\n---", 3, "fitness", "idosos")
	assert.ErrorIs(t, err, ErrUnparseable)

	ideas, err := IdeasFromResponse("Título: Só uma", 3, "fitness", "idosos")
	require.NoError(t, err)
	require.Len(t, ideas, 3)
	assert.Equal(t, "Só uma", ideas[0].Title)
	assert.Equal(t, FallbackIdea(2, "fitness", "idosos"), ideas[1])
}

func TestParseIdeas_NonPositiveCount(t *testing.T) {
	assert.Empty(t, ParseIdeas(wellFormed, 0, "n", "p"))
}

func TestParseIdeas_Properties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("always returns exactly the expected count", prop.ForAll(
		func(text string, count int) bool {
			return len(ParseIdeas(text, count, "nicho", "publico")) == count
		},
		gen.AnyString(),
		gen.IntRange(1, 10),
	))

	properties.Property("N labelled blocks parse back in order", prop.ForAll(
		func(titles []string) bool {
			var b strings.Builder
			for i, title := range titles {
				fmt.Fprintf(&b, "Título: %s\nDescrição: d%d\nHashtags: #h%d\n---\n", title, i, i)
			}
			ideas := ParseIdeas(b.String(), len(titles), "n", "p")
			for i, title := range titles {
				if ideas[i].Title != title || ideas[i].Description != fmt.Sprintf("d%d", i) {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(5, gen.Identifier()).SuchThat(func(v []string) bool { return len(v) > 0 }),
	))

	properties.TestingRun(t)
}

func TestParseImprovement(t *testing.T) {
	imp, ok := ParseImprovement("Título: Novo título\nDescrição: Melhor\nHashtags: #novo #top")
	require.True(t, ok)
	assert.Equal(t, Improvement{Title: "Novo título", Description: "Melhor", Hashtags: "#novo #top"}, imp)

	_, ok = ParseImprovement("sem formato")
	assert.False(t, ok)
}
