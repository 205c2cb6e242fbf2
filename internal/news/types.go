package news

import "time"

// Category: одна из девяти фиксированных «позитивных» тем.
type Category string

const (
	CategoryEnvironmentHealing Category = "environment_healing"
	CategoryMedicalHope        Category = "medical_hope"
	CategoryPeaceHarmony       Category = "peace_harmony"
	CategoryHumanKindness      Category = "human_kindness"
	CategoryEducationWins      Category = "education_wins"
	CategoryWomenEmpowerment   Category = "women_empowerment"
	CategoryEthicalInnovation  Category = "ethical_innovation"
	CategoryArtCulture         Category = "art_culture"
	CategoryFeelGood           Category = "feel_good"
)

var categoryLabels = map[Category]string{
	CategoryEnvironmentHealing: "Environment Healing",
	CategoryMedicalHope:        "Medical Hope",
	CategoryPeaceHarmony:       "Peace & Harmony",
	CategoryHumanKindness:      "Human Kindness",
	CategoryEducationWins:      "Education Wins",
	CategoryWomenEmpowerment:   "Women Empowerment",
	CategoryEthicalInnovation:  "Ethical Innovation",
	CategoryArtCulture:         "Art & Culture",
	CategoryFeelGood:           "Feel Good",
}

// Label возвращает название категории для писем и сообщений.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// Article описывает новость на всём пути через пайплайн.
// Categories заполняет фильтр безопасности, Summary заполняет суммаризатор.
type Article struct {
	// ID задан только у кураторских резервных историй; у живых статей идентичность: URL.
	ID          string     `json:"id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Content     string     `json:"content,omitempty"`
	URL         string     `json:"url"`
	Source      string     `json:"source"`
	PublishedAt string     `json:"published_at"`
	Categories  []Category `json:"categories,omitempty"`
	Summary     string     `json:"summary,omitempty"`
}

// IsFallback сообщает, что статья взята из кураторского резервного набора.
func (a Article) IsFallback() bool {
	return a.ID != ""
}

// HistoryEntry: запись об уже отправленной истории. После добавления не меняется.
type HistoryEntry struct {
	ID     string    `json:"id"`
	URL    string    `json:"url"`
	Title  string    `json:"title"`
	SentAt time.Time `json:"sent_at"`
}

// Digest: итоговый выпуск перед рендерингом.
type Digest struct {
	Date        time.Time `json:"date"`
	Stories     []Article `json:"stories"`
	Affirmation string    `json:"affirmation"`
}

// DeliveryReport хранит результат доставки по каждому получателю.
type DeliveryReport map[string]bool

// Merge добавляет результаты другого канала.
func (r DeliveryReport) Merge(other DeliveryReport) {
	for recipient, ok := range other {
		r[recipient] = ok
	}
}

// Delivered возвращает число успешных доставок.
func (r DeliveryReport) Delivered() int {
	n := 0
	for _, ok := range r {
		if ok {
			n++
		}
	}
	return n
}
