package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/agastia7500-collab/arima/internal/pipeline"
	"github.com/agastia7500-collab/arima/internal/race"
	"github.com/agastia7500-collab/arima/internal/session"
	"github.com/agastia7500-collab/arima/internal/stats"
	"github.com/agastia7500-collab/arima/internal/view"
	"github.com/agastia7500-collab/arima/pkg/llm"
)

const sessionCookie = "arima_session"
const cookieMaxAge = 24 * 60 * 60

type Handler struct {
	sessions  *session.Manager
	registry  *race.Registry
	loader    *stats.Loader
	client    llm.Completer
	statsPath string

	comprehensive *pipeline.Pipeline
	evaluation    *pipeline.Pipeline
	sign          *pipeline.Pipeline
}

// New wires the three pipelines. client may be nil when no credential is
// configured; the page then renders with run triggers disabled.
func New(sessions *session.Manager, registry *race.Registry, loader *stats.Loader, client llm.Completer, statsPath string, events pipeline.EventsSource) *Handler {
	return &Handler{
		sessions:      sessions,
		registry:      registry,
		loader:        loader,
		client:        client,
		statsPath:     statsPath,
		comprehensive: pipeline.Comprehensive(),
		evaluation:    pipeline.Evaluation(),
		sign:          pipeline.SignTheory(events),
	}
}

// session resolves the caller's session from the cookie, minting a new
// one (and the cookie) when absent or expired.
func (h *Handler) session(c *gin.Context) *session.Context {
	id, _ := c.Cookie(sessionCookie)
	sess := h.sessions.Get(id)
	if sess.ID != id {
		c.SetCookie(sessionCookie, sess.ID, cookieMaxAge, "/", "", false, true)
	}
	return sess
}

func (h *Handler) GetPage(c *gin.Context) {
	sess := h.session(c)

	tab := c.DefaultQuery("tab", TabComprehensive)
	if tab != TabComprehensive && tab != TabEvaluate && tab != TabSign {
		tab = TabComprehensive
	}

	selected := sess.Selected()
	if q := c.Query("horse"); q != "" {
		if n, err := strconv.Atoi(q); err == nil {
			selected = n
		}
	}
	if selected == 0 {
		selected = h.registry.Entrants()[0].Number
	}

	data := PageData{
		Tab:         tab,
		ClientReady: h.client != nil,
		Entrants:    h.registry.Entrants(),
		Selected:    selected,
		StatsSource: h.statsSourceLabel(sess),
		LookupError: sess.Lookup.LastError(),
	}

	switch tab {
	case TabEvaluate:
		data.Stages = h.entrantStages(sess, selected)
	case TabSign:
		data.Stages = h.pipelineStages(sess, h.sign)
	default:
		data.Stages = h.pipelineStages(sess, h.comprehensive)
	}
	for _, sv := range data.Stages {
		if sv.Ran {
			data.HasResults = true
			break
		}
	}

	c.HTML(http.StatusOK, "index.tmpl", data)
}

func (h *Handler) pipelineStages(sess *session.Context, p *pipeline.Pipeline) []StageView {
	views := make([]StageView, 0, len(p.Stages))
	for _, st := range p.Stages {
		text, ok := sess.Results.GetStage(p.Name, st.Name)
		views = append(views, StageView{
			Name:  st.Name,
			Title: st.Title,
			Box:   st.Box,
			Body:  view.Body(text),
			Ran:   ok,
		})
	}
	return views
}

func (h *Handler) entrantStages(sess *session.Context, number int) []StageView {
	views := make([]StageView, 0, len(h.evaluation.Stages))
	for _, st := range h.evaluation.Stages {
		text, ok := sess.Results.GetEntrantStage(number, st.Name)
		views = append(views, StageView{
			Name:  st.Name,
			Title: st.Title,
			Box:   st.Box,
			Body:  view.Body(text),
			Ran:   ok,
		})
	}
	return views
}

func (h *Handler) statsSourceLabel(sess *session.Context) string {
	if table, name := sess.Stats(); name != "" {
		if table == nil {
			return name + "（読み込み失敗）"
		}
		return name
	}
	if h.loader.LoadFile(h.statsPath) == nil {
		return "なし"
	}
	return "デフォルトデータ"
}

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"entrants":    h.registry.Len(),
		"llm_enabled": h.client != nil,
	})
}
