package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/agastia7500-collab/arima/internal/pipeline"
	"github.com/agastia7500-collab/arima/internal/session"
	"github.com/agastia7500-collab/arima/internal/stats"
)

// runContext assembles the static prompt context for one trigger:
// roster text, the formatted stats block (session upload first, default
// workbook otherwise) and today's lookup text.
func (h *Handler) runContext(c *gin.Context, sess *session.Context) pipeline.RunContext {
	table, name := sess.Stats()
	if table == nil && name == "" {
		table = h.loader.LoadFile(h.statsPath)
	}

	rc := pipeline.RunContext{
		RosterText: h.registry.PromptList(),
		NumberList: h.registry.NumberList(),
		StatsText:  stats.FormatForPrompt(table),
	}
	rc.LookupText = sess.Lookup.Ensure(c.Request.Context(), h.client, pipeline.LookupQuery(rc.RosterText))
	return rc
}

func (h *Handler) RunComprehensive(c *gin.Context) {
	sess := h.session(c)
	if h.client == nil {
		c.Redirect(http.StatusSeeOther, "/?tab="+TabComprehensive)
		return
	}

	rc := h.runContext(c, sess)

	sess.Results.ClearPipeline(pipeline.NameComprehensive)
	h.comprehensive.Run(c.Request.Context(), h.client, rc, func(stage, text string) {
		sess.Results.SetStage(pipeline.NameComprehensive, stage, text)
	})

	slog.Info("comprehensive prediction finished", "session", sess.ID)
	c.Redirect(http.StatusSeeOther, "/?tab="+TabComprehensive)
}

func (h *Handler) RunEvaluate(c *gin.Context) {
	sess := h.session(c)

	number, err := strconv.Atoi(c.PostForm("horse"))
	if err != nil {
		slog.Warn("invalid horse number in form", "value", c.PostForm("horse"), "error", err)
		c.Redirect(http.StatusSeeOther, "/?tab="+TabEvaluate)
		return
	}
	sess.SetSelected(number)

	if h.client == nil {
		c.Redirect(http.StatusSeeOther, fmt.Sprintf("/?tab=%s&horse=%d", TabEvaluate, number))
		return
	}

	rc := pipeline.EntrantContext(h.runContext(c, sess), h.registry, number)

	sess.Results.ClearEntrant(number)
	h.evaluation.Run(c.Request.Context(), h.client, rc, func(stage, text string) {
		sess.Results.SetEntrantStage(number, stage, text)
	})

	slog.Info("entrant evaluation finished", "session", sess.ID, "horse", number)
	c.Redirect(http.StatusSeeOther, fmt.Sprintf("/?tab=%s&horse=%d", TabEvaluate, number))
}

func (h *Handler) RunSign(c *gin.Context) {
	sess := h.session(c)
	if h.client == nil {
		c.Redirect(http.StatusSeeOther, "/?tab="+TabSign)
		return
	}

	rc := h.runContext(c, sess)

	sess.Results.ClearPipeline(pipeline.NameSign)
	h.sign.Run(c.Request.Context(), h.client, rc, func(stage, text string) {
		sess.Results.SetStage(pipeline.NameSign, stage, text)
	})

	slog.Info("sign analysis finished", "session", sess.ID)
	c.Redirect(http.StatusSeeOther, "/?tab="+TabSign)
}

// UploadStats replaces the stats source for this session only. A broken
// workbook degrades to the no-data sentinel, it never errors the page.
func (h *Handler) UploadStats(c *gin.Context) {
	sess := h.session(c)

	file, err := c.FormFile("file")
	if err != nil {
		slog.Warn("stats upload without file", "error", err)
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	f, err := file.Open()
	if err != nil {
		slog.Error("error opening uploaded stats file", "name", file.Filename, "error", err)
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("error reading uploaded stats file", "name", file.Filename, "error", err)
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	table := h.loader.LoadBytes(file.Filename, data)
	sess.SetStats(file.Filename, table)

	slog.Info("session stats source replaced", "session", sess.ID, "name", file.Filename, "loaded", table != nil)
	c.Redirect(http.StatusSeeOther, "/")
}
