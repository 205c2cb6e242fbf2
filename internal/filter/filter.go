package filter

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Amulyanrao7777/MorningGlow/internal/news"
)

// Reason: причина отказа. Отказ классификатора это данные, а не ошибка.
type Reason string

const (
	ReasonSpeculation       Reason = "speculation"
	ReasonClickbait         Reason = "clickbait"
	ReasonUnverifiedMedical Reason = "unverified_medical_claim"
	ReasonMissingSource     Reason = "missing_source"
	ReasonMissingURL        Reason = "missing_url"
	ReasonUnsafeKeyword     Reason = "unsafe_keyword"
	ReasonCrisisFraming     Reason = "crisis_framing"
	ReasonNoCategory        Reason = "no_matching_category"
)

// Unsafe сообщает, что отказ вызван стоп-словами, а не отсутствием темы.
func (r Reason) Unsafe() bool {
	return r == ReasonUnsafeKeyword || r == ReasonCrisisFraming
}

// Verdict: результат классификации одной статьи.
type Verdict struct {
	Accepted   bool
	Reason     Reason
	Detail     string
	Categories []news.Category
}

// Accept создаёт положительный вердикт.
func Accept(categories ...news.Category) Verdict {
	return Verdict{Accepted: true, Categories: categories}
}

// Reject создаёт отказ с причиной и человекочитаемым пояснением.
func Reject(reason Reason, detail string) Verdict {
	return Verdict{Reason: reason, Detail: detail}
}

func (v Verdict) String() string {
	if v.Accepted {
		if len(v.Categories) == 0 {
			return "accepted"
		}
		names := make([]string, 0, len(v.Categories))
		for _, c := range v.Categories {
			names = append(names, string(c))
		}
		return "accepted: " + strings.Join(names, ", ")
	}
	return fmt.Sprintf("rejected (%s): %s", v.Reason, v.Detail)
}

// Classifier: чистая функция статья → вердикт.
type Classifier interface {
	Classify(article news.Article) Verdict
}

// Rejection хранит отклонённую статью вместе с вердиктом (для логов и тестов).
type Rejection struct {
	Stage   string
	Article news.Article
	Verdict Verdict
}

// Result: итог прогона одного этапа.
type Result struct {
	Accepted []news.Article
	Rejected []Rejection
}

// Stage применяет классификатор к списку статей, сохраняя порядок.
type Stage struct {
	name       string
	classifier Classifier
	logger     *slog.Logger
}

// NewStage создаёт этап фильтрации.
func NewStage(name string, classifier Classifier, logger *slog.Logger) *Stage {
	if logger == nil {
		logger = slog.Default()
	}
	return &Stage{
		name:       name,
		classifier: classifier,
		logger:     logger.With("stage", name),
	}
}

// Name возвращает имя этапа.
func (s *Stage) Name() string {
	return s.name
}

// Apply прогоняет статьи через классификатор.
// Принятые статьи копируются; категории из вердикта прикрепляются к копии.
func (s *Stage) Apply(articles []news.Article) Result {
	res := Result{Accepted: make([]news.Article, 0, len(articles))}
	for _, article := range articles {
		verdict := s.classifier.Classify(article)
		if !verdict.Accepted {
			s.logger.Debug("article rejected",
				"title", truncate(article.Title, 50),
				"reason", string(verdict.Reason),
				"detail", verdict.Detail)
			res.Rejected = append(res.Rejected, Rejection{Stage: s.name, Article: article, Verdict: verdict})
			continue
		}
		if len(verdict.Categories) > 0 {
			article.Categories = append([]news.Category(nil), verdict.Categories...)
		}
		res.Accepted = append(res.Accepted, article)
	}

	s.logger.Info(fmt.Sprintf("%s: %d/%d passed", s.name, len(res.Accepted), len(articles)))
	return res
}

// textBlob склеивает заголовок, описание и текст в нижнем регистре.
func textBlob(article news.Article) string {
	return strings.ToLower(article.Title + " " + article.Description + " " + article.Content)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
