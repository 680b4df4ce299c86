package http

import (
	"analyzer_server/core/domain"
	"analyzer_server/core/port/in"
	"analyzer_server/core/port/out"
	"analyzer_server/pkg/logger"
	"analyzer_server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const maxBatchSize = 20

type AnalysisHandler struct {
	analysisService in.AnalysisService
	workloadRepo    out.WorkloadRepository
}

func NewAnalysisHandler(analysisService in.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysisService: analysisService}
}

// NewAnalysisHandlerFull creates a handler that also pulls workload
// snapshots from the database when the request omits them.
func NewAnalysisHandlerFull(analysisService in.AnalysisService, workloadRepo out.WorkloadRepository) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
		workloadRepo:    workloadRepo,
	}
}

func (h *AnalysisHandler) Register(app fiber.Router) {
	ai := app.Group("/ai")
	ai.Post("/analyze", h.AnalyzeTask)
	ai.Post("/analyze/batch", h.AnalyzeBatch)
	ai.Get("/mode", h.GetMode)
}

type analyzeTaskRequest struct {
	Task           *domain.Task             `json:"task"`
	ContextEntries []domain.ContextEntry    `json:"context_entries,omitempty"`
	UserPrefs      map[string]any           `json:"user_prefs,omitempty"`
	Workload       *domain.WorkloadSnapshot `json:"workload,omitempty"`
}

type analyzeBatchRequest struct {
	Requests []in.AnalyzeRequest `json:"requests"`
}

func (h *AnalysisHandler) AnalyzeTask(c *fiber.Ctx) error {
	var req analyzeTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if req.Task == nil || req.Task.Title == "" {
		return response.BadRequest(c, "task title is required")
	}

	workload := req.Workload
	if workload == nil {
		workload = h.fetchWorkload(c)
	}

	result := h.analysisService.AnalyzeTask(c.Context(), req.Task, req.ContextEntries, req.UserPrefs, workload)
	return response.OK(c, result)
}

func (h *AnalysisHandler) AnalyzeBatch(c *fiber.Ctx) error {
	var req analyzeBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if len(req.Requests) == 0 {
		return response.BadRequest(c, "requests is required")
	}
	if len(req.Requests) > maxBatchSize {
		return response.BadRequest(c, "too many requests in batch")
	}
	for i, r := range req.Requests {
		if r.Task == nil || r.Task.Title == "" {
			return response.BadRequest(c, "task title is required")
		}
		if r.Workload == nil {
			req.Requests[i].Workload = h.fetchWorkload(c)
		}
	}

	results := h.analysisService.AnalyzeBatch(c.Context(), req.Requests)

	degraded := 0
	for _, r := range results {
		if r.Degraded {
			degraded++
		}
	}

	requestID, _ := c.Locals("request_id").(string)
	return response.OKWithMeta(c, results, &response.Meta{
		Total:     len(results),
		Degraded:  degraded,
		RequestID: requestID,
	})
}

func (h *AnalysisHandler) GetMode(c *fiber.Ctx) error {
	return response.OK(c, fiber.Map{"mode": h.analysisService.Mode()})
}

// fetchWorkload loads the caller's task counts when a repository is wired.
// Analysis proceeds without a snapshot on any failure.
func (h *AnalysisHandler) fetchWorkload(c *fiber.Ctx) *domain.WorkloadSnapshot {
	if h.workloadRepo == nil {
		return nil
	}
	userID, err := GetUserID(c)
	if err != nil {
		return nil
	}
	snapshot, err := h.workloadRepo.SnapshotForUser(c.Context(), userID)
	if err != nil {
		logger.WithError(err).Warn("Failed to load workload snapshot")
		return nil
	}
	return snapshot
}
