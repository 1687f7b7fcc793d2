package handlers

import (
	"database/sql"
	"net/http"

	"github.com/ASHISH26940/manim-asset-gateway/pkg/db"
	"github.com/ASHISH26940/manim-asset-gateway/pkg/db/queries"
	"github.com/ASHISH26940/manim-asset-gateway/pkg/errs"
	"github.com/ASHISH26940/manim-asset-gateway/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// GenerateRequest is the body of POST /api/generate.
type GenerateRequest struct {
	Prompt string `json:"prompt" binding:"required,min=3"`
}

// Generate proxies the long-running generation call. Callers must be
// prepared for multi-minute latency; the budget comes from config and
// defaults to 720 seconds.
func (h *Handlers) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Generate: Invalid request body: %v", err)
		utils.ResponseWithError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	log.Infof("Generate: forwarding prompt to upstream (length %d)", len(req.Prompt))

	result, err := h.Generation.Generate(c.Request.Context(), req.Prompt)
	if err != nil {
		h.recordGeneration(req.Prompt, "", "failed", err.Error())

		switch errs.KindOf(err) {
		case errs.KindTimeout:
			log.Errorf("Generate: upstream exceeded the generation budget: %v", err)
			utils.ResponseWithError(c, http.StatusGatewayTimeout, "Generation timed out upstream", err.Error())
		case errs.KindConnection:
			log.Errorf("Generate: upstream unreachable: %v", err)
			utils.ResponseWithError(c, http.StatusBadGateway,
				"Unable to connect to the generation backend. Please ensure it is running.", err.Error())
		default:
			log.Errorf("Generate: generation failed: %v", err)
			status := errs.StatusOf(err)
			if status == 0 {
				status = http.StatusBadGateway
			}
			utils.ResponseWithError(c, status, "Failed to generate animation", err.Error())
		}
		return
	}

	h.recordGeneration(req.Prompt, result.ClassName, "succeeded", "")

	utils.ResponseWithSuccess(c, http.StatusOK, "Animation generated successfully", result)
}

// LatestCode returns the most recently generated Manim source upstream.
func (h *Handlers) LatestCode(c *gin.Context) {
	code, err := h.Upstream.LatestCode(c.Request.Context())
	if err != nil {
		log.Errorf("LatestCode: failed to fetch latest code: %v", err)
		status := http.StatusBadGateway
		if errs.Is(err, errs.KindTimeout) {
			status = http.StatusGatewayTimeout
		}
		utils.ResponseWithError(c, status, "Failed to fetch latest code", err.Error())
		return
	}
	utils.ResponseWithSuccess(c, http.StatusOK, "Latest code retrieved successfully", code)
}

// RecentGenerations lists the newest ledger rows. Answers 503 when the
// gateway runs without a database.
func (h *Handlers) RecentGenerations(c *gin.Context) {
	if !db.Enabled() {
		utils.ResponseWithError(c, http.StatusServiceUnavailable, "Generation ledger is not enabled", nil)
		return
	}
	requests, err := queries.RecentGenerationRequests(20)
	if err != nil {
		log.Errorf("RecentGenerations: %v", err)
		utils.ResponseWithError(c, http.StatusInternalServerError, "Failed to list generation requests", nil)
		return
	}
	utils.ResponseWithSuccess(c, http.StatusOK, "Generation requests retrieved successfully", requests)
}

// recordGeneration writes one ledger row. Best-effort: a ledger failure is
// logged and never fails the request itself.
func (h *Handlers) recordGeneration(prompt, className, status, errDetail string) {
	if !db.Enabled() {
		return
	}
	row := &db.GenerationRequest{
		ID:     uuid.New(),
		Prompt: prompt,
		Status: status,
	}
	if className != "" {
		row.ClassName = sql.NullString{String: className, Valid: true}
	}
	if errDetail != "" {
		row.ErrorDetail = sql.NullString{String: errDetail, Valid: true}
	}
	if err := queries.InsertGenerationRequest(row); err != nil {
		log.Warnf("recordGeneration: ledger insert failed: %v", err)
	}
}
