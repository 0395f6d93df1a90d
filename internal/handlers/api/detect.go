package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"crisiswatch/internal/config"
	"crisiswatch/internal/db"
	"crisiswatch/internal/detector"
	"crisiswatch/internal/metrics"
	"crisiswatch/internal/models"
	"crisiswatch/internal/notify"
	"crisiswatch/internal/validation"
)

// DetectHandler serves the detection endpoints called by the ticket
// workflow before persisting submissions and responses.
type DetectHandler struct {
	db         *db.DB
	cfg        *config.Config
	detector   *detector.Detector
	dispatcher notify.Dispatcher
}

// NewDetectHandler creates a new detection handler.
func NewDetectHandler(database *db.DB, cfg *config.Config, det *detector.Detector, dispatcher notify.Dispatcher) *DetectHandler {
	return &DetectHandler{db: database, cfg: cfg, detector: det, dispatcher: dispatcher}
}

type detectRequest struct {
	Text       string     `json:"text"`
	CategoryID *uuid.UUID `json:"category_id"`
	TicketRef  string     `json:"ticket_ref"`
}

// Detect runs a production detection: matches and scores the text, records
// a trigger for every matched keyword, and requests a notification when
// the result is a crisis. Absence of matches is a normal outcome, never an
// error.
func (h *DetectHandler) Detect(c fiber.Ctx) error {
	req, result, matches, ok := h.run(c)
	if !ok {
		return nil
	}

	metrics.RecordDetection(result)

	if len(matches) > 0 {
		if err := h.db.RecordTriggers(c.Context(), detector.MatchedIDs(matches)); err != nil {
			// Statistics must never fail the submission path.
			slog.Error("failed to record keyword triggers", "error", err)
		}
	}

	if result.IsCrisis && h.dispatcher != nil {
		event := notify.CrisisEvent{
			TicketRef:   req.TicketRef,
			CategoryID:  req.CategoryID,
			CrisisScore: result.CrisisScore,
			Keywords:    result.DetectedKeywords,
			Rules:       detector.MergeRules(matches),
			DetectedAt:  time.Now().UTC(),
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := h.dispatcher.DispatchCrisis(ctx, event); err != nil {
				slog.Error("failed to dispatch crisis event", "ticket_ref", event.TicketRef, "error", err)
			}
		}()
	}

	return jsonSuccess(c, result)
}

// Test runs a side-effect-free detection for admin tooling: no trigger
// recording, no notification, no metrics.
func (h *DetectHandler) Test(c fiber.Ctx) error {
	_, result, _, ok := h.run(c)
	if !ok {
		return nil
	}
	return jsonSuccess(c, result)
}

// run parses and validates the request and executes matching and scoring.
// A false return means an error response has already been written and the
// handler must not touch the response again.
func (h *DetectHandler) run(c fiber.Ctx) (detectRequest, models.DetectionResult, []detector.RawMatch, bool) {
	var req detectRequest
	var zero models.DetectionResult

	if err := json.Unmarshal(c.Body(), &req); err != nil {
		jsonError(c, fiber.StatusBadRequest, "invalid request body")
		return req, zero, nil, false
	}

	if ok, msg := validation.ValidateDetectionText(req.Text, h.cfg.MaxTextLength); !ok {
		jsonError(c, fiber.StatusBadRequest, msg)
		return req, zero, nil, false
	}

	if req.CategoryID != nil {
		if _, err := h.db.GetCategoryByID(c.Context(), *req.CategoryID); err != nil {
			if errors.Is(err, db.ErrCategoryNotFound) {
				jsonError(c, fiber.StatusBadRequest, "unknown ticket category")
			} else {
				jsonError(c, fiber.StatusInternalServerError, "failed to resolve category")
			}
			return req, zero, nil, false
		}
	}

	result, matches, err := h.detector.Detect(c.Context(), req.Text, req.CategoryID)
	if err != nil {
		jsonError(c, fiber.StatusInternalServerError, "detection failed")
		return req, zero, nil, false
	}

	return req, result, matches, true
}
