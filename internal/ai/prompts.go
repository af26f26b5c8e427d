package ai

import "fmt"

func ideasPrompt(niche, audience string, count int) string {
	return fmt.Sprintf(`Gere %d ideias criativas para vídeos do TikTok/Instagram Reels no nicho de %s
para o público-alvo de %s.

REQUISITOS:
1. Seja criativo e original
2. Foco em humor e viralidade
3. Títulos chamativos (máximo 60 caracteres)
4. Descrições claras e objetivas (1-2 linhas)
5. 3-5 hashtags relevantes

FORMATO DE RESPOSTA (para cada ideia):
Título: [Título criativo]
Descrição: [Descrição de 1-2 linhas]
Hashtags: #[hashtag1] #[hashtag2] #[hashtag3]
---`, count, niche, audience)
}

func scriptPrompt(idea string) string {
	return fmt.Sprintf(`Crie um roteiro COMPLETO para um vídeo do TikTok/Instagram Reels baseado nesta ideia:
%q

ESTRUTURA DO ROTEIRO:
1. Título do vídeo
2. Duração total (15-30 segundos)
3. Cenário/Ambiente
4. Sequência temporal detalhada (ex: 0-3s, 3-8s, etc.)
5. Ações e diálogos para cada momento
6. Efeitos sonoros sugeridos
7. Textos para legenda
8. Transições recomendadas
9. Hashtags estratégicas

Seja detalhado e específico. Formate a resposta de maneira organizada.`, idea)
}

func improvePrompt(idea, kind string) string {
	return fmt.Sprintf(`Melhore a seguinte ideia de conteúdo: %q

Tipo de melhoria: %s

Forneça:
1. Título melhorado (mais atraente)
2. Descrição aprimorada (mais detalhada)
3. Novas hashtags relevantes (3-5 hashtags)

Formato:
Título: [título melhorado]
Descrição: [descrição aprimorada]
Hashtags: #[hashtag1] #[hashtag2] #[hashtag3]`, idea, kind)
}
