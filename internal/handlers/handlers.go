package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"modelreport/internal/data"
	"modelreport/internal/features"
	"modelreport/internal/models"
	"modelreport/internal/plotting"
	"modelreport/internal/registry"
)

// Source is what the handlers need from the training service.
type Source interface {
	models.Registry
	features.FrameSource
}

type Options struct {
	APIKey     string
	Cache      bool
	PlotWidth  float64
	PlotHeight float64
}

type Handler struct {
	src  Source
	opts Options
	log  *zap.Logger
}

func New(src Source, opts Options, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.PlotWidth <= 0 {
		opts.PlotWidth = 10
	}
	if opts.PlotHeight <= 0 {
		opts.PlotHeight = 10
	}
	return &Handler{src: src, opts: opts, log: log}
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID, h.accessLog)

	api := r.Group("/")
	api.Use(h.apiKey)
	api.GET("/models/:id/coefficients", h.coefficients)
	api.GET("/models/:id/r2", h.bestR2)
	api.GET("/models/:id/predictors", h.predictors)
	api.GET("/infogram/:id/admissible", h.admissible)
	api.GET("/infogram/:id/predictors", h.allPredictors)
	api.GET("/infogram/:id/plot", h.plot)
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	return r
}

func requestID(c *gin.Context) {
	id := c.GetHeader("X-Request-ID")
	if id == "" {
		id = uuid.NewString()
	}
	c.Set("request_id", id)
	c.Header("X-Request-ID", id)
	c.Next()
}

func (h *Handler) accessLog(c *gin.Context) {
	c.Next()
	h.log.Info("request",
		zap.String("request_id", c.GetString("request_id")),
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", c.Writer.Status()),
	)
}

func (h *Handler) apiKey(c *gin.Context) {
	if h.opts.APIKey == "" {
		c.Next()
		return
	}
	if c.GetHeader("X-API-Key") != h.opts.APIKey {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}
	c.Next()
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := http.StatusBadGateway
	msg := "registry error"
	switch {
	case errors.Is(err, data.ErrInvalidSubsetSize):
		status, msg = http.StatusBadRequest, "invalid predictor_size"
	case errors.Is(err, data.ErrMissingResult), errors.Is(err, registry.ErrNotFound):
		status, msg = http.StatusNotFound, "result not found"
	case errors.Is(err, data.ErrStructureMismatch), errors.Is(err, data.ErrUnknownMode):
		status, msg = http.StatusUnprocessableEntity, "malformed result"
	case errors.Is(err, context.Canceled):
		status, msg = 499, "request canceled"
	}
	if status >= http.StatusInternalServerError {
		h.log.Warn("request failed", zap.String("request_id", c.GetString("request_id")), zap.Error(err))
	}
	c.JSON(status, ErrorResponse{Error: msg, Details: err.Error()})
}

func (h *Handler) selection(c *gin.Context) (*models.ModelSelection, bool) {
	m, err := h.src.GetModel(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	opts := []models.Option{models.WithLogger(h.log)}
	if h.opts.Cache {
		opts = append(opts, models.WithModelCache())
	}
	ms, err := models.NewModelSelection(m, h.src, opts...)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return ms, true
}

func (h *Handler) infogram(c *gin.Context) (*features.Infogram, bool) {
	m, err := h.src.GetModel(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	ig, err := features.NewInfogram(m, h.src, h.log)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return ig, true
}

func (h *Handler) coefficients(c *gin.Context) {
	ms, ok := h.selection(c)
	if !ok {
		return
	}
	normalized, _ := strconv.ParseBool(c.Query("normalized"))
	raw := c.Query("predictor_size")
	if raw == "" {
		all, err := ms.AllCoefficients(c.Request.Context(), normalized)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"mode": ms.Mode(), "normalized": normalized, "coefficients": all})
		return
	}
	size, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid predictor_size", Details: err.Error()})
		return
	}
	coefs, err := ms.Coefficients(c.Request.Context(), size, normalized)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mode": ms.Mode(), "predictor_size": size, "normalized": normalized, "coefficients": coefs})
}

func (h *Handler) bestR2(c *gin.Context) {
	ms, ok := h.selection(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"best_r2_values": ms.BestR2Values()})
}

func (h *Handler) predictors(c *gin.Context) {
	ms, ok := h.selection(c)
	if !ok {
		return
	}
	switch c.DefaultQuery("kind", "best") {
	case "added":
		steps, adv := ms.PredictorsAddedPerStep()
		resp := gin.H{"predictors_added_per_step": steps}
		if adv != nil {
			resp["advisories"] = []data.Advisory{*adv}
		}
		c.JSON(http.StatusOK, resp)
	case "removed":
		c.JSON(http.StatusOK, gin.H{"predictors_removed_per_step": ms.PredictorsRemovedPerStep()})
	case "best":
		c.JSON(http.StatusOK, gin.H{"best_predictors_subset": ms.BestModelPredictors()})
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "kind must be one of added, removed, best"})
	}
}

func splitParam(c *gin.Context) (data.Split, bool) {
	s, ok := data.ParseSplit(c.Query("split"))
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "split must be one of training, validation, xval"})
	}
	return s, ok
}

func (h *Handler) admissible(c *gin.Context) {
	ig, ok := h.infogram(c)
	if !ok {
		return
	}
	s, ok := splitParam(c)
	if !ok {
		return
	}
	feats, err := ig.AdmissibleFeatures(s)
	if err != nil {
		h.fail(c, err)
		return
	}
	rel, err := ig.AdmissibleRelevance(s)
	if err != nil {
		h.fail(c, err)
		return
	}
	cmi, err := ig.AdmissibleCMI(s)
	if err != nil {
		h.fail(c, err)
		return
	}
	raw, err := ig.AdmissibleCMIRaw(s)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"split":               s.String(),
		"thresholds":          ig.Thresholds(),
		"admissible_features": feats,
		"relevance":           rel,
		"cmi":                 cmi,
		"cmi_raw":             raw,
	})
}

func (h *Handler) allPredictors(c *gin.Context) {
	ig, ok := h.infogram(c)
	if !ok {
		return
	}
	names, rel, err := ig.AllPredictorRelevance()
	if err != nil {
		h.fail(c, err)
		return
	}
	_, cmi, err := ig.AllPredictorCMI()
	if err != nil {
		h.fail(c, err)
		return
	}
	_, raw, err := ig.AllPredictorCMIRaw()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"predictors": names, "relevance": rel, "cmi": cmi, "cmi_raw": raw})
}

func (h *Handler) plot(c *gin.Context) {
	ig, ok := h.infogram(c)
	if !ok {
		return
	}
	opts := features.PlotOptions{
		Train:  c.DefaultQuery("train", "true") == "true",
		Valid:  c.Query("valid") == "true",
		Xval:   c.Query("xval") == "true",
		Title:  c.Query("title"),
		Legend: c.Query("legend") == "true",
	}
	if !opts.Train && !opts.Valid && !opts.Xval {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "select at least one of train, valid, xval"})
		return
	}
	surface := plotting.NewGonum(h.opts.PlotWidth, h.opts.PlotHeight, "")
	fig, err := ig.Plot(c.Request.Context(), surface, opts)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Type", "image/png")
	c.Status(http.StatusOK)
	if err := fig.WritePNG(c.Writer); err != nil {
		h.log.Warn("write plot", zap.Error(err))
	}
}
