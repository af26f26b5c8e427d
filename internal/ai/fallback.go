package ai

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gosimple/slug"

	"github.com/contentai/contentai-golang/internal/models"
)

var (
	fallbackTypes = []string{
		"Reação engraçada",
		"Desafio divertido",
		"Top momentos",
		"Paródia",
		"Situação cômica",
	}
	fallbackDescriptions = []string{
		"Vídeo engraçado e engaging para seu público",
		"Conteúdo viral que vai fazer sucesso",
		"Ideia criativa para bombar nas redes",
		"Conteúdo divertido que todos vão compartilhar",
	}
)

// Fallback generates template content. It never fails.
type Fallback struct{}

func NewFallback() *Fallback {
	return &Fallback{}
}

func (f *Fallback) Live() bool { return false }

func (f *Fallback) GenerateIdeas(_ context.Context, niche, audience string, count int) ([]models.Idea, error) {
	ideas := make([]models.Idea, 0, count)
	for i := 0; i < count; i++ {
		ideas = append(ideas, FallbackIdea(i, niche, audience))
	}
	return ideas, nil
}

func (f *Fallback) GenerateScript(_ context.Context, idea string) (string, error) {
	return FallbackScript(idea), nil
}

func (f *Fallback) ImproveIdea(_ context.Context, idea, _ string) (Improvement, error) {
	return FallbackImprovement(idea), nil
}

// FallbackIdea builds the placeholder idea for position index.
func FallbackIdea(index int, niche, audience string) models.Idea {
	tags := []string{Hashtag(niche), Hashtag(audience), "#humor", "#viral", "#engraçado"}
	return models.Idea{
		Title:       fmt.Sprintf("%s de %s para %s", fallbackTypes[index%len(fallbackTypes)], niche, audience),
		Description: fallbackDescriptions[index%len(fallbackDescriptions)],
		Hashtags:    joinTags(tags),
	}
}

func FallbackImprovement(idea string) Improvement {
	return Improvement{
		Title:       "[Melhorado] " + idea,
		Description: "Descrição aprimorada para: " + idea,
		Hashtags:    "#melhorado #conteudo #viral",
	}
}

// Hashtag turns free text into a single #tag, or "" when nothing is left.
func Hashtag(s string) string {
	tag := strings.ReplaceAll(slug.Make(s), "-", "")
	if tag == "" {
		return ""
	}
	return "#" + tag
}

func joinTags(tags []string) string {
	kept := tags[:0]
	for _, t := range tags {
		if t != "" {
			kept = append(kept, t)
		}
	}
	return strings.Join(kept, " ")
}

// scriptKeywordTags tags the first three words of idea that are longer than
// three characters.
func scriptKeywordTags(idea string) string {
	words := strings.Fields(strings.ToLower(idea))
	if len(words) > 3 {
		words = words[:3]
	}
	var tags []string
	for _, w := range words {
		if utf8.RuneCountInString(w) > 3 {
			tags = append(tags, Hashtag(w))
		}
	}
	return joinTags(tags)
}

// FallbackScript is the template script used when no model is available.
func FallbackScript(idea string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📝 ROTEIRO DETALHADO PARA: %s\n\n", idea)
	b.WriteString("⏰ DURAÇÃO TOTAL: 20-25 segundos\n\n")
	b.WriteString("🎬 CENÁRIO: Ambiente bem iluminado e casual\n\n")
	b.WriteString("🎯 PÚBLICO: Jovens e adultos que apreciam humor\n\n")
	b.WriteString("⏱️ LINHA DO TEMPO:\n\n")

	b.WriteString("[0-5 SEGUNDOS] - GANCHO INICIAL\n")
	b.WriteString("• Entrada impactante com expressão facial exagerada\n")
	b.WriteString("• Texto na tela explicando a situação rapidamente\n")
	b.WriteString("• Efeito sonoro: \"whoosh\" ou \"ding\" para chamar atenção\n\n")

	b.WriteString("[5-15 SEGUNDOS] - DESENVOLVIMENTO\n")
	b.WriteString("• Progressão da história com cortes rápidos\n")
	b.WriteString("• 2-3 takes mostrando diferentes ângulos\n")
	b.WriteString("• Mudanças expressivas de rosto e linguagem corporal\n")
	b.WriteString("• Música de fundo: Trend atual do TikTok (30% volume)\n\n")

	b.WriteString("[15-22 SEGUNDOS] - CLÍMAX\n")
	b.WriteString("• Momento mais engraçado da cena\n")
	b.WriteString("• Reação exagerada à situação\n")
	b.WriteString("• Texto na tela: \"O resultado 👀\" ou \"E então...\"\n")
	b.WriteString("• Efeito sonoro: Risadas ou suspense\n\n")

	b.WriteString("[22-25 SEGUNDOS] - FINAL E CHAMADA PARA AÇÃO\n")
	b.WriteString("• Resolução rápida e satisfatória\n")
	b.WriteString("• Olhar direto para câmera com sorriso\n")
	b.WriteString("• Gestual pedindo like/compartilhamento\n")
	b.WriteString("• Texto: \"Compartilha se riu! ❤️ Salva pra ver depois! 💾\"\n\n")

	b.WriteString("🏷️ HASHTAGS SUGERIDAS:\n")
	if tags := scriptKeywordTags(idea); tags != "" {
		b.WriteString(tags + "\n")
	}
	b.WriteString("#viral #engraçado #tiktok #comedia #humorbrasil\n\n")

	b.WriteString("💡 DICAS DE PRODUÇÃO:\n")
	b.WriteString("• Use iluminação natural sempre que possível\n")
	b.WriteString("• Mantenha edição rápida e dinâmica (cortes a cada 2-3 segundos)\n")
	b.WriteString("• Adicione legendas claras e objetivas\n")
	b.WriteString("• Use transições criativas entre cenas\n")
	b.WriteString("• Teste o áudio antes de gravar\n")
	b.WriteString("• Mantenha energia alta durante toda a gravação\n")

	return b.String()
}
