package previewserver

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Amulyanrao7777/MorningGlow/internal/email"
	"github.com/Amulyanrao7777/MorningGlow/internal/news"
)

//go:embed templates/index.html
var templatesFS embed.FS

// HistoryReader: то, что серверу нужно от журнала отправок.
type HistoryReader interface {
	Recent(ctx context.Context, window time.Duration) ([]news.HistoryEntry, error)
}

// Server отдаёт сохранённые предпросмотры и недавнюю историю отправок.
type Server struct {
	dir     string
	history HistoryReader
	window  time.Duration
	router  *gin.Engine
	logger  *slog.Logger
}

// NewServer создаёт сервер над каталогом предпросмотров dir.
func NewServer(dir string, history HistoryReader, window time.Duration, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	tmpl, err := template.ParseFS(templatesFS, "templates/index.html")
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))
	router.SetHTMLTemplate(tmpl)

	s := &Server{
		dir:     dir,
		history: history,
		window:  window,
		router:  router,
		logger:  logger,
	}

	router.GET("/", s.handleIndex)
	router.GET("/previews/:name", s.handlePreview)
	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api")
	{
		api.GET("/previews", s.handleAPIPreviews)
		api.GET("/history", s.handleAPIHistory)
	}

	return s, nil
}

// Handler возвращает http.Handler (для httptest и http.Server).
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run запускает сервер на addr.
func (s *Server) Run(addr string) error {
	s.logger.Info("preview server listening", "addr", addr, "dir", s.dir)
	return s.router.Run(addr)
}

func (s *Server) handleIndex(c *gin.Context) {
	previews, err := email.ListPreviews(s.dir)
	if err != nil {
		c.String(http.StatusInternalServerError, "list previews: %v", err)
		return
	}
	history, err := s.recent(c.Request.Context())
	if err != nil {
		s.logger.Warn("history unavailable", "err", err)
	}
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Previews":   previews,
		"History":    history,
		"WindowDays": int(s.window.Hours() / 24),
	})
}

func (s *Server) handlePreview(c *gin.Context) {
	name := c.Param("name")
	if name != filepath.Base(name) || !strings.HasSuffix(name, ".html") || strings.HasPrefix(name, ".") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid preview name"})
		return
	}
	c.File(filepath.Join(s.dir, name))
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleAPIPreviews(c *gin.Context) {
	previews, err := email.ListPreviews(s.dir)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if previews == nil {
		previews = []email.PreviewFile{}
	}
	c.JSON(http.StatusOK, gin.H{"previews": previews})
}

func (s *Server) handleAPIHistory(c *gin.Context) {
	window := s.window
	if raw := c.Query("hours"); raw != "" {
		d, err := time.ParseDuration(raw + "h")
		if err != nil || d <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "hours must be a positive number"})
			return
		}
		window = d
	}
	if s.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "history store not configured"})
		return
	}
	entries, err := s.history.Recent(c.Request.Context(), window)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if entries == nil {
		entries = []news.HistoryEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}

func (s *Server) recent(ctx context.Context) ([]news.HistoryEntry, error) {
	if s.history == nil {
		return nil, nil
	}
	return s.history.Recent(ctx, s.window)
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
