package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/Amulyanrao7777/MorningGlow/internal/filter"
	"github.com/Amulyanrao7777/MorningGlow/internal/news"
)

// ErrNotConfigured возвращается, когда пайплайн запущен без обязательных зависимостей.
var ErrNotConfigured = errors.New("pipeline dependencies not configured")

// Этапы, которые попадают в PipelineError.
const (
	StageConfig    = "config"
	StageGuarantee = "guarantee"
	StageDeliver   = "deliver"
	StageHistory   = "history"
)

// Clock определяет источник времени (удобно подменять в тестах).
type Clock func() time.Time

// SourceCollector агрегирует новости из подключённых источников.
type SourceCollector interface {
	Collect(ctx context.Context, queries []string) ([]news.Article, error)
}

// FilterStage: один этап классификации (точность, безопасность).
type FilterStage interface {
	Name() string
	Apply(articles []news.Article) filter.Result
}

// Enricher проставляет резюме статьям и никогда не падает.
type Enricher interface {
	Enrich(ctx context.Context, articles []news.Article) []news.Article
}

// ContentGuarantee отбирает итоговый набор историй и записывает его в журнал.
type ContentGuarantee interface {
	EnsureStories(ctx context.Context, candidates []news.Article, minimum, maximum int, rng *rand.Rand) ([]news.Article, error)
}

// AffirmationSource выдаёт аффирмацию дня.
type AffirmationSource interface {
	PickDaily(rng *rand.Rand) string
}

// Deliverer отправляет выпуск по своему каналу и отчитывается по каждому получателю.
type Deliverer interface {
	Deliver(ctx context.Context, d news.Digest) (news.DeliveryReport, error)
}

// PreviewWriter сохраняет выпуск локально, когда отправки нет или она не удалась.
type PreviewWriter interface {
	Write(d news.Digest, runID string) (string, error)
}

// PipelineError: отказ пайплайна с указанием этапа.
type PipelineError struct {
	Stage string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline %s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// Report описывает результат одного запуска.
type Report struct {
	RunID       string
	Fetched     int
	Accepted    int
	Rejections  []filter.Rejection
	Stories     []news.Article
	Affirmation string
	Delivery    news.DeliveryReport
	PreviewPath string
}

// PipelineDeps перечисляет зависимости пайплайна.
type PipelineDeps struct {
	Collector    SourceCollector
	Stages       []FilterStage
	Enricher     Enricher
	Guarantee    ContentGuarantee
	Affirmations AffirmationSource
	Deliverers   []Deliverer
	Preview      PreviewWriter
	Clock        Clock
	Rand         *rand.Rand
	RunID        func() string
	Logger       *slog.Logger

	Queries     []string
	MinStories  int
	MaxStories  int
	PreviewMode bool // ничего не отправлять, только сохранить предпросмотр
}

// Pipeline инкапсулирует ежедневный процесс.
type Pipeline struct {
	collector    SourceCollector
	stages       []FilterStage
	enricher     Enricher
	guarantee    ContentGuarantee
	affirmations AffirmationSource
	deliverers   []Deliverer
	preview      PreviewWriter
	clock        Clock
	rng          *rand.Rand
	runID        func() string
	logger       *slog.Logger

	queries     []string
	minStories  int
	maxStories  int
	previewMode bool
}

// NewPipeline создаёт новый экземпляр пайплайна.
func NewPipeline(deps PipelineDeps) *Pipeline {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	runID := deps.RunID
	if runID == nil {
		runID = func() string { return uuid.NewString()[:8] }
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Pipeline{
		collector:    deps.Collector,
		stages:       deps.Stages,
		enricher:     deps.Enricher,
		guarantee:    deps.Guarantee,
		affirmations: deps.Affirmations,
		deliverers:   deps.Deliverers,
		preview:      deps.Preview,
		clock:        clock,
		rng:          deps.Rand,
		runID:        runID,
		logger:       logger,
		queries:      deps.Queries,
		minStories:   deps.MinStories,
		maxStories:   deps.MaxStories,
		previewMode:  deps.PreviewMode,
	}
}

// Process прогоняет статьи через этапы классификации и проставляет резюме.
// Отклонённые статьи возвращаются вместе с причинами.
func (p *Pipeline) Process(ctx context.Context, raw []news.Article) ([]news.Article, []filter.Rejection, error) {
	if len(p.stages) == 0 || p.enricher == nil {
		return nil, nil, ErrNotConfigured
	}
	accepted, rejections := p.classify(raw)
	return p.enricher.Enrich(ctx, accepted), rejections, nil
}

// Deliver отбирает от minStories до maxStories историй, добивая резервными при нехватке.
func (p *Pipeline) Deliver(ctx context.Context, processed []news.Article) ([]news.Article, error) {
	if p.guarantee == nil {
		return nil, ErrNotConfigured
	}
	return p.guarantee.EnsureStories(ctx, processed, p.minStories, p.maxStories, p.random())
}

// Run исполняет полный цикл: сбор, классификация, отбор, резюме, доставка.
// Сбои сборщика, суммаризатора и каналов доставки логируются и не возвращаются.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	report := Report{RunID: p.runID()}
	if err := p.validateDeps(); err != nil {
		return report, &PipelineError{Stage: StageConfig, Err: err}
	}
	logger := p.logger.With("run_id", report.RunID)

	logger.Info("step 1: collecting articles", "queries", len(p.queries))
	raw, err := p.collector.Collect(ctx, p.queries)
	if err != nil {
		logger.Error("collector failed, continuing with what was fetched", "err", err)
	}
	report.Fetched = len(raw)

	logger.Info("step 2: classifying articles", "count", len(raw))
	accepted, rejections := p.classify(raw)
	report.Accepted = len(accepted)
	report.Rejections = rejections

	// Отбор не зависит от текста резюме, поэтому суммаризация идёт уже по выбранным историям.
	logger.Info("step 3: selecting stories", "candidates", len(accepted))
	stories, guaranteeErr := p.Deliver(ctx, accepted)
	if len(stories) == 0 {
		if guaranteeErr == nil {
			guaranteeErr = errors.New("no stories selected")
		}
		return report, &PipelineError{Stage: StageGuarantee, Err: guaranteeErr}
	}
	if guaranteeErr != nil {
		logger.Error("history append failed, continuing with delivery", "err", guaranteeErr)
	}

	logger.Info("step 4: summarizing stories", "count", len(stories))
	report.Stories = p.enricher.Enrich(ctx, stories)

	report.Affirmation = p.affirmations.PickDaily(p.random())
	digest := news.Digest{
		Date:        p.clock(),
		Stories:     report.Stories,
		Affirmation: report.Affirmation,
	}

	logger.Info("step 5: delivering digest")
	report.Delivery = p.dispatch(ctx, logger, digest)

	if p.previewMode || len(p.deliverers) == 0 || report.Delivery.Delivered() == 0 {
		path, err := p.writePreview(digest, report.RunID)
		if err != nil {
			logger.Error("preview write failed", "err", err)
			return report, &PipelineError{Stage: StageDeliver, Err: fmt.Errorf("write preview: %w", err)}
		}
		report.PreviewPath = path
	}

	if guaranteeErr != nil {
		return report, &PipelineError{Stage: StageHistory, Err: guaranteeErr}
	}
	logger.Info("pipeline completed",
		"stories", len(report.Stories),
		"delivered", report.Delivery.Delivered(),
		"recipients", len(report.Delivery),
		"preview", report.PreviewPath)
	return report, nil
}

func (p *Pipeline) classify(raw []news.Article) ([]news.Article, []filter.Rejection) {
	current := raw
	var rejections []filter.Rejection
	for _, stage := range p.stages {
		res := stage.Apply(current)
		rejections = append(rejections, res.Rejected...)
		current = res.Accepted
	}
	if len(current) == 0 {
		p.logger.Warn("no articles passed filters, fallback stories will be used")
	}
	return current, rejections
}

func (p *Pipeline) dispatch(ctx context.Context, logger *slog.Logger, d news.Digest) news.DeliveryReport {
	report := news.DeliveryReport{}
	if p.previewMode {
		logger.Info("preview mode, skipping delivery")
		return report
	}
	for _, deliverer := range p.deliverers {
		res, err := deliverer.Deliver(ctx, d)
		if err != nil {
			logger.Error("delivery channel failed", "err", err)
		}
		report.Merge(res)
	}
	return report
}

func (p *Pipeline) writePreview(d news.Digest, runID string) (string, error) {
	if p.preview == nil {
		return "", errors.New("preview writer not configured")
	}
	return p.preview.Write(d, runID)
}

func (p *Pipeline) random() *rand.Rand {
	if p.rng != nil {
		return p.rng
	}
	seed := uint64(p.clock().UnixNano())
	return rand.New(rand.NewPCG(seed, seed>>17|1))
}

func (p *Pipeline) validateDeps() error {
	// без этапов фильтрации живые статьи дошли бы до выпуска без категорий;
	// deliverers и preview опциональны по отдельности, но без обоих выпуск некуда деть
	switch {
	case p.collector == nil,
		len(p.stages) == 0,
		p.enricher == nil,
		p.guarantee == nil,
		p.affirmations == nil,
		p.clock == nil:
		return ErrNotConfigured
	case len(p.deliverers) == 0 && p.preview == nil:
		return fmt.Errorf("%w: no deliverers and no preview writer", ErrNotConfigured)
	case p.minStories < 1 || p.maxStories < p.minStories:
		return fmt.Errorf("%w: story bounds [%d, %d]", ErrNotConfigured, p.minStories, p.maxStories)
	default:
		return nil
	}
}
