package filter

import (
	"regexp"

	"github.com/Amulyanrao7777/MorningGlow/internal/news"
)

// DefaultSpeculationThreshold: три и более слова-спекуляции отклоняют статью.
// Одиночное «may» или «could» встречается и в аккуратных научных новостях.
const DefaultSpeculationThreshold = 3

// DefaultAccuracyRules возвращает встроенные таблицы точности. Каждый вызов отдаёт новую копию.
func DefaultAccuracyRules() AccuracyRules {
	return AccuracyRules{
		SpeculationKeywords: []string{
			"might", "could", "may", "possibly", "allegedly", "rumor", "rumour",
			"unconfirmed", "speculation", "claims without evidence", "anonymous sources",
			"insider says", "reportedly", "sources say", "could be", "might be",
			"potential", "preliminary",
		},
		SpeculationThreshold: DefaultSpeculationThreshold,
		ClickbaitPatterns: compileAll(
			`you won'?t believe`,
			`shocking`,
			`miracle cure`,
			`doctors hate`,
			`one weird trick`,
			`this will blow your mind`,
			`secret that`,
			`what happens next`,
		),
		UnverifiedMedicalKeywords: []string{
			"breakthrough cure", "miracle treatment", "revolutionary cure",
			"cancer cured", "aging reversed", "miracle cure",
		},
		VerificationMarkers: []string{
			"study published", "peer-reviewed", "peer reviewed", "fda approved",
			"clinical trial", "research shows", "scientists confirm", "university study",
			"official announcement", "government confirms",
		},
		UnknownSource: "Unknown",
	}
}

// DefaultSafetyRules возвращает девять тем и стоп-лист.
func DefaultSafetyRules() SafetyRules {
	return SafetyRules{
		Categories: []CategoryRule{
			{Category: news.CategoryEnvironmentHealing, Triggers: []string{
				"coral reef restoration", "nature recovery", "reforestation", "wildlife conservation",
				"species protection", "ocean healing", "habitat restoration", "ecological program",
				"conservation success", "biodiversity", "ecosystem recovery",
				"marine sanctuary", "forest regrowth", "clean water", "pollution reduction",
				"rewilding", "nature preserve", "wildlife sanctuary", "green spaces",
			}},
			{Category: news.CategoryMedicalHope, Triggers: []string{
				"clinical trial success", "fda approval", "treatment advancement", "recovery outcome",
				"health improvement", "medical breakthrough", "new therapy", "disease treatment",
				"patient recovery", "healthcare success", "medical innovation", "healing",
				"cure approved", "treatment approved", "life-saving", "health victory",
			}},
			{Category: news.CategoryPeaceHarmony, Triggers: []string{
				"peace agreement", "ceasefire", "diplomatic resolution", "conflict resolution",
				"unity", "cooperation", "reconciliation", "harmony", "agreement reached",
				"neighbors unite", "community peace", "collaboration", "partnership",
				"nations agree", "treaty signed", "peaceful solution",
			}},
			{Category: news.CategoryHumanKindness, Triggers: []string{
				"stranger helps", "volunteer", "charity success", "rescue", "kindness",
				"compassion", "donation", "community support", "good samaritan",
				"helping hand", "generous", "fundraiser success", "community gives",
				"neighbors help", "act of kindness", "good deed",
			}},
			{Category: news.CategoryEducationWins, Triggers: []string{
				"scholarship", "student achievement", "teacher inspires", "learning program",
				"educational success", "graduation", "literacy program", "school success",
				"educational innovation", "students excel", "academic achievement",
				"mentorship program", "tutoring success", "educational opportunity",
			}},
			{Category: news.CategoryWomenEmpowerment, Triggers: []string{
				"women-led", "female leadership", "women scientists", "women creators",
				"women entrepreneurs", "women in stem", "female founder", "women innovators",
				"women breaking barriers", "female pioneers", "women achieve",
				"women empowerment", "girls education", "women leaders",
			}},
			{Category: news.CategoryEthicalInnovation, Triggers: []string{
				"renewable energy", "sustainable technology", "green technology", "clean energy",
				"accessibility technology", "assistive technology", "environmental technology",
				"solar power", "wind energy", "electric vehicle", "sustainable engineering",
				"carbon reduction", "eco-friendly innovation", "tech for good",
			}},
			{Category: news.CategoryArtCulture, Triggers: []string{
				"museum", "art exhibition", "cultural festival", "heritage conservation",
				"children art", "creative project", "artistic community", "cultural celebration",
				"music festival", "dance performance", "theater", "gallery opening",
				"cultural heritage", "art installation", "creative workshop",
			}},
			{Category: news.CategoryFeelGood, Triggers: []string{
				"uplifting", "inspiring", "beautiful", "joyful", "celebration",
				"happiness", "wonderful", "amazing story", "touching", "delightful",
				"precious moment", "feel-good", "wholesome", "adorable",
			}},
		},
		// Стоп-слова ищутся подстрокой: "war" срабатывает и на "award", "warm", "toward".
		// Поэтому триггеры тем не должны содержать стоп-слов (см. тест на мёртвые триггеры).
		RejectKeywords: []string{
			"crisis", "shortage", "suicide", "violence", "shooting", "attack", "murder",
			"war", "combat", "battle", "crime", "corruption", "scandal",
			"controversy", "disaster", "catastrophe", "emergency", "threat", "danger",
			"fear", "terror", "tragic", "death toll", "casualties", "victim",
			"collapse", "crash", "failure", "bankruptcy", "layoff", "recession",
			"pandemic", "outbreak", "epidemic", "infection surge", "hospital overwhelmed",
			"supply shortage", "food bank empty", "running out", "desperate",
			"alarming", "concerning", "worrying", "devastating", "horrific",
		},
		CrisisPatterns: compileAll(
			`running low on`,
			`supplies dwindling`,
			`in short supply`,
			`desperate need`,
			`critically low`,
			`struggling to meet`,
			`faces shortage`,
		),
	}
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(`(?i)`+p))
	}
	return out
}
