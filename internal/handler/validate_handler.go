package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/octobees/contact-engine/internal/dto"
	"github.com/octobees/contact-engine/internal/engine"
	"github.com/octobees/contact-engine/internal/entity"
)

// Batches larger than this are rejected so one caller cannot monopolize the
// worker pool for minutes.
const maxBatchSize = 5000

// ValidateHandler exposes the validation engine over HTTP.
type ValidateHandler struct {
	engine *engine.Engine
}

// NewValidateHandler constructs a handler backed by the given engine.
func NewValidateHandler(eng *engine.Engine) *ValidateHandler {
	return &ValidateHandler{engine: eng}
}

// Validate handles POST /validate: runs the full pipeline over the submitted
// records and returns per-record results, deduplicated contacts and the
// batch report.
func (h *ValidateHandler) Validate(c echo.Context) error {
	var req dto.ValidateRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	if len(req.Items) == 0 {
		return Error(c, http.StatusBadRequest, "items is required")
	}
	if len(req.Items) > maxBatchSize {
		return Error(c, http.StatusRequestEntityTooLarge, "batch exceeds maximum size")
	}

	records := make([]entity.EmailRecord, 0, len(req.Items))
	for _, item := range req.Items {
		if strings.TrimSpace(item.Email) == "" && len(item.Contact) == 0 {
			continue
		}
		records = append(records, h.engine.NewRecord(item.Email, item.Contact))
	}
	if len(records) == 0 {
		return Error(c, http.StatusBadRequest, "no usable items in payload")
	}

	outcome, err := h.engine.ValidateBatch(c.Request().Context(), records)
	if err != nil {
		return Error(c, http.StatusInternalServerError, err.Error())
	}

	return Success(c, http.StatusOK, "batch validated", outcome)
}
