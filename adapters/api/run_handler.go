package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cladeshift/adapters/newick"
	shiftheuristic "cladeshift/adapters/shift/heuristic"
	"cladeshift/app"
	"cladeshift/domain/clade"
	"cladeshift/domain/core"
	"cladeshift/internal"
	"cladeshift/ports"
)

// RunHandler handles assignment run requests
type RunHandler struct {
	assignment   *app.AssignmentService
	significance ports.SignificancePort
	interpreter  ports.InterpreterPort
	repo         ports.SelectionRepository
	log          *internal.Logger
}

// NewRunHandler creates a new run handler. Significance port and
// interpreter are optional.
func NewRunHandler(assignment *app.AssignmentService, significance ports.SignificancePort,
	interpreter ports.InterpreterPort, repo ports.SelectionRepository, logger *internal.Logger) *RunHandler {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &RunHandler{
		assignment:   assignment,
		significance: significance,
		interpreter:  interpreter,
		repo:         repo,
		log:          logger,
	}
}

type datasetPayload struct {
	Name   string            `json:"name" binding:"required"`
	Newick string            `json:"newick" binding:"required"`
	Labels map[string]string `json:"labels" binding:"required"`
}

type runRequest struct {
	Datasets []datasetPayload `json:"datasets" binding:"required"`
	// Abundance (element -> sample -> value) enables the in-process shift
	// computer; without it the run stops after assignment.
	Abundance map[string]map[string]float64 `json:"abundance,omitempty"`
}

type outcomeView struct {
	Dataset    string                `json:"dataset"`
	Error      string                `json:"error,omitempty"`
	Clades     []clade.SelectedClade `json:"clades"`
	Candidates int                   `json:"candidates"`
	Qualifying int                   `json:"qualifying"`
}

// CreateRun parses the posted datasets, runs assignment, and when an
// abundance matrix is supplied also builds the cross-dataset combinations.
func (h *RunHandler) CreateRun(c *gin.Context) {
	var req runRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	if len(req.Datasets) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one dataset is required"})
		return
	}

	inputs := make([]app.DatasetInput, 0, len(req.Datasets))
	for _, ds := range req.Datasets {
		root, err := newick.Parse(ds.Newick)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "dataset " + ds.Name + ": " + err.Error()})
			return
		}
		labels, err := parseLabels(ds.Labels)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "dataset " + ds.Name + ": " + err.Error()})
			return
		}
		inputs = append(inputs, app.DatasetInput{
			Dataset: core.DatasetID(ds.Name),
			Root:    root,
			Labels:  labels,
		})
	}

	runID := core.RunID(core.NewID())
	outcomes, err := h.assignment.RunAssignments(c.Request.Context(), runID, inputs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := gin.H{
		"run_id":   runID,
		"outcomes": outcomeViews(outcomes),
	}

	if len(req.Abundance) > 0 {
		computer := shiftheuristic.NewComputer(abundanceMatrix(req.Abundance))
		combiner := app.NewCombinationService(computer, h.significance, h.interpreter, h.repo, h.log)
		result, err := combiner.BuildCombinations(c.Request.Context(), runID, outcomes)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		resp["combinations"] = result.Tables
		if len(result.Interpretations) > 0 {
			resp["interpretations"] = result.Interpretations
		}
	}

	c.JSON(http.StatusOK, resp)
}

// GetSelections returns the persisted selections for a run
func (h *RunHandler) GetSelections(c *gin.Context) {
	runID, err := core.ParseRunID(c.Param("runId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return
	}

	selections, err := h.repo.GetSelections(c.Request.Context(), runID)
	if err != nil {
		if core.IsNotFoundError(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"run_id": runID, "selections": selections})
}

// GetCombinations returns the persisted combination tables for a run
func (h *RunHandler) GetCombinations(c *gin.Context) {
	runID, err := core.ParseRunID(c.Param("runId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return
	}

	tables, err := h.repo.ListCombinations(c.Request.Context(), runID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"run_id": runID, "combinations": tables})
}

func outcomeViews(outcomes []app.DatasetOutcome) []outcomeView {
	views := make([]outcomeView, len(outcomes))
	for i, o := range outcomes {
		views[i] = outcomeView{
			Dataset:    string(o.Dataset),
			Clades:     o.Selection.Clades,
			Candidates: o.Candidates,
			Qualifying: o.Qualifying,
		}
		if o.Err != nil {
			views[i].Error = o.Err.Error()
		}
	}
	return views
}

func parseLabels(raw map[string]string) (map[core.SampleID]bool, error) {
	labels := make(map[core.SampleID]bool, len(raw))
	for sample, v := range raw {
		switch strings.ToUpper(strings.TrimSpace(v)) {
		case "Y":
			labels[core.SampleID(sample)] = true
		case "N":
			labels[core.SampleID(sample)] = false
		default:
			return nil, core.NewInvalidConfigError("label for sample "+sample, "must be Y or N")
		}
	}
	return labels, nil
}

func abundanceMatrix(raw map[string]map[string]float64) map[string]map[core.SampleID]float64 {
	out := make(map[string]map[core.SampleID]float64, len(raw))
	for element, bySample := range raw {
		m := make(map[core.SampleID]float64, len(bySample))
		for sample, v := range bySample {
			m[core.SampleID(sample)] = v
		}
		out[element] = m
	}
	return out
}
