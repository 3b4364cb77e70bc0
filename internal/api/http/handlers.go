package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/scrubd/scrubd/internal/cleaner"
	"github.com/scrubd/scrubd/internal/dataset"
	"github.com/scrubd/scrubd/internal/logging"
	"github.com/scrubd/scrubd/internal/monitoring"
	"github.com/scrubd/scrubd/internal/pipeline"
)

// Handlers bundles the HTTP handlers and their collaborators.
type Handlers struct {
	features  *dataset.Store
	pipelines *pipeline.Store
	cleaner   *cleaner.Cleaner
	metrics   *monitoring.Metrics
	log       *logging.Logger
}

// NewHandlers creates the handler set.
func NewHandlers(
	features *dataset.Store,
	pipelines *pipeline.Store,
	cl *cleaner.Cleaner,
	metrics *monitoring.Metrics,
	log *logging.Logger,
) *Handlers {
	if log == nil {
		log = logging.NewDefault()
	}
	return &Handlers{
		features:  features,
		pipelines: pipelines,
		cleaner:   cl,
		metrics:   metrics,
		log:       log,
	}
}

// Version is the service version reported by the root banner.
const Version = "0.1.0"

// Root returns the service banner.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "scrubd",
		"version": Version,
		"status":  "running",
	})
}

// Health returns service health.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

type processRequest struct {
	ID    string `json:"id"`
	Clean *bool  `json:"clean"`
}

// Process runs the cleaner against a feature set's data and persists the
// results. Clean defaults to true; clean=false analyzes without
// transforming.
func (h *Handlers) Process(c *gin.Context) {
	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
		return
	}
	if !h.features.Exists(req.ID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "feature set not found"})
		return
	}

	frame, err := h.features.Data(req.ID)
	if err != nil {
		h.fail(c, "load feature set data", err)
		return
	}

	doClean := req.Clean == nil || *req.Clean
	result, err := h.runCleaner(frame, doClean)
	if err != nil {
		h.fail(c, "process feature set", err)
		return
	}

	if err := h.writeResults(req.ID, result, doClean); err != nil {
		h.fail(c, "persist results", err)
		return
	}

	doc, err := h.features.Document(req.ID)
	if err != nil {
		h.fail(c, "assemble document", err)
		return
	}
	renderJSON(c, http.StatusOK, doc)
}

type createFeatureSetRequest struct {
	Name    string     `json:"name" binding:"required"`
	Columns []string   `json:"columns" binding:"required"`
	Rows    [][]string `json:"rows"`
	Clean   *bool      `json:"clean"`
}

// CreateFeatureSet ingests a new tabular feature set and immediately
// runs the cleaner over it.
func (h *Handlers) CreateFeatureSet(c *gin.Context) {
	var req createFeatureSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	for _, row := range req.Rows {
		if len(row) != len(req.Columns) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "row width does not match columns"})
			return
		}
	}

	frame := dataset.Frame{Columns: req.Columns, Rows: req.Rows}
	fs, err := h.features.Create("", req.Name, frame)
	if err != nil {
		h.fail(c, "create feature set", err)
		return
	}

	doClean := req.Clean == nil || *req.Clean
	result, err := h.runCleaner(frame, doClean)
	if err != nil {
		h.fail(c, "process feature set", err)
		return
	}
	if err := h.writeResults(fs.Metadata.ID, result, doClean); err != nil {
		h.fail(c, "persist results", err)
		return
	}

	doc, err := h.features.Document(fs.Metadata.ID)
	if err != nil {
		h.fail(c, "assemble document", err)
		return
	}
	renderJSON(c, http.StatusCreated, doc)
}

// ListFeatureSets returns descriptors of processed feature sets only:
// sets that never went through the cleaner have no statistics to show.
func (h *Handlers) ListFeatureSets(c *gin.Context) {
	all, err := h.features.List()
	if err != nil {
		h.fail(c, "list feature sets", err)
		return
	}
	out := make([]gin.H, 0, len(all))
	for _, md := range all {
		if !md.Processed() {
			continue
		}
		out = append(out, gin.H{"id": md.ID, "metadata": md})
	}
	renderJSON(c, http.StatusOK, out)
}

// GetFeatureSet returns one feature set's full document, narrowed to a
// single column when the "column" query parameter is set.
func (h *Handlers) GetFeatureSet(c *gin.Context) {
	id := c.Param("id")
	if !h.features.Exists(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "feature set not found"})
		return
	}

	var (
		doc map[string]any
		err error
	)
	if column := c.Query("column"); column != "" {
		doc, err = h.features.ColumnDocument(id, column)
	} else {
		doc, err = h.features.Document(id)
	}
	if err != nil {
		h.fail(c, "assemble document", err)
		return
	}
	renderJSON(c, http.StatusOK, doc)
}

type updateFeatureSetRequest struct {
	Metadata    *dataset.Metadata `json:"metadata"`
	Statistics  map[string]any    `json:"statistics"`
	Insights    any               `json:"insights"`
	Suggestions any               `json:"suggestions"`
}

// UpdateFeatureSet overwrites the documents present in the request body
// and returns the refreshed full document.
func (h *Handlers) UpdateFeatureSet(c *gin.Context) {
	id := c.Param("id")
	if !h.features.Exists(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "feature set not found"})
		return
	}
	var req updateFeatureSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if req.Metadata != nil {
		md := *req.Metadata
		md.ID = id // the path owns the identity
		if err := h.features.SaveMetadata(md); err != nil {
			h.fail(c, "save metadata", err)
			return
		}
	}
	docs := map[string]any{
		dataset.DocStatistics:  req.Statistics,
		dataset.DocInsights:    req.Insights,
		dataset.DocSuggestions: req.Suggestions,
	}
	for name, v := range docs {
		if v == nil {
			continue
		}
		if err := h.features.SaveDocument(id, name, v); err != nil {
			h.fail(c, "save "+name, err)
			return
		}
	}

	doc, err := h.features.Document(id)
	if err != nil {
		h.fail(c, "assemble document", err)
		return
	}
	renderJSON(c, http.StatusOK, doc)
}

// ListPipelines returns all stored pipelines.
func (h *Handlers) ListPipelines(c *gin.Context) {
	all, err := h.pipelines.List()
	if err != nil {
		h.fail(c, "list pipelines", err)
		return
	}
	out := make([]gin.H, 0, len(all))
	for _, p := range all {
		out = append(out, pipelineDoc(p))
	}
	renderJSON(c, http.StatusOK, out)
}

// GetPipeline returns one pipeline.
func (h *Handlers) GetPipeline(c *gin.Context) {
	p, err := h.pipelines.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "pipeline not found"})
		return
	}
	renderJSON(c, http.StatusOK, pipelineDoc(p))
}

type updatePipelineRequest struct {
	Actions []pipeline.Action `json:"actions"`
}

// UpdatePipeline replaces a pipeline's actions. When the pipeline is
// bound to a feature set, the set's original data is re-run through the
// new actions and its statistics recomputed, so edits to the pipeline
// reshape the feature set deterministically from its pristine input.
func (h *Handlers) UpdatePipeline(c *gin.Context) {
	id := c.Param("id")
	p, err := h.pipelines.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "pipeline not found"})
		return
	}
	var req updatePipelineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	p.Actions = req.Actions
	if err := h.pipelines.Save(p); err != nil {
		h.fail(c, "save pipeline", err)
		return
	}

	if fsID := p.Metadata.FeatureSetID; fsID != "" && h.features.Exists(fsID) {
		if err := h.reapplyPipeline(p, fsID); err != nil {
			h.fail(c, "reapply pipeline", err)
			return
		}
	}

	renderJSON(c, http.StatusOK, pipelineDoc(p))
}

// reapplyPipeline transforms the feature set's original data through the
// pipeline and refreshes its persisted statistics without triggering
// another transform pass.
func (h *Handlers) reapplyPipeline(p *pipeline.Pipeline, fsID string) error {
	orig, err := h.features.OrigData(fsID)
	if err != nil {
		return err
	}
	transformed, err := p.Apply(orig)
	if err != nil {
		return err
	}
	result, err := h.runCleaner(transformed, false)
	if err != nil {
		return err
	}
	if err := h.features.SaveData(fsID, transformed); err != nil {
		return err
	}
	return h.writeResults(fsID, result, false)
}

// runCleaner dispatches to Clean or Analyze and records metrics.
func (h *Handlers) runCleaner(frame dataset.Frame, doClean bool) (*cleaner.Result, error) {
	mode := "analyze"
	if doClean {
		mode = "clean"
	}
	start := time.Now()

	var (
		result *cleaner.Result
		err    error
	)
	if doClean {
		result, err = h.cleaner.Clean(frame)
	} else {
		result, err = h.cleaner.Analyze(frame)
	}

	status := "success"
	if err != nil {
		status = "error"
	}
	if h.metrics != nil {
		h.metrics.RecordCleanerRun(mode, status, time.Since(start))
	}
	return result, err
}

// writeResults persists a cleaner result against a feature set. A clean
// run also stores the transformed data and upserts the pipeline that
// reproduces it.
func (h *Handlers) writeResults(id string, r *cleaner.Result, transformed bool) error {
	docs := map[string]any{
		dataset.DocStatistics:  r.Statistics,
		dataset.DocInsights:    r.Insights,
		dataset.DocSuggestions: r.Suggestions,
	}
	for name, v := range docs {
		if err := h.features.SaveDocument(id, name, v); err != nil {
			return err
		}
	}

	md, err := h.features.Metadata(id)
	if err != nil {
		return err
	}
	md.ColumnTypes = r.ColumnTypes
	md.Statistics = r.SummaryStatistics()

	if transformed && len(r.Actions) > 0 {
		if err := h.features.SaveData(id, r.Frame); err != nil {
			return err
		}
		pipelineID, err := h.upsertPipeline(md.PipelineID, id, r.Actions)
		if err != nil {
			return err
		}
		md.PipelineID = pipelineID
	}

	return h.features.SaveMetadata(md)
}

// upsertPipeline stores the actions that produced a cleaned frame as the
// feature set's pipeline.
func (h *Handlers) upsertPipeline(pipelineID, fsID string, actions []pipeline.Action) (string, error) {
	if pipelineID != "" && h.pipelines.Exists(pipelineID) {
		p, err := h.pipelines.Get(pipelineID)
		if err != nil {
			return "", err
		}
		p.Actions = actions
		return pipelineID, h.pipelines.Save(p)
	}
	p, err := h.pipelines.Create("", fsID, actions)
	if err != nil {
		return "", err
	}
	return p.Metadata.ID, nil
}

func pipelineDoc(p *pipeline.Pipeline) gin.H {
	actions := p.Actions
	if actions == nil {
		actions = []pipeline.Action{}
	}
	return gin.H{
		"id":       p.Metadata.ID,
		"metadata": p.Metadata,
		"actions":  actions,
	}
}

func (h *Handlers) fail(c *gin.Context, op string, err error) {
	h.log.Error("request failed", zap.String("op", op), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": op + " failed"})
}
