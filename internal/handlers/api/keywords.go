package api

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"crisiswatch/internal/config"
	"crisiswatch/internal/db"
	"crisiswatch/internal/models"
	"crisiswatch/internal/validation"
)

// KeywordHandler handles keyword CRUD operations via JSON API.
type KeywordHandler struct {
	db  *db.DB
	cfg *config.Config
}

// NewKeywordHandler creates a new keyword handler.
func NewKeywordHandler(database *db.DB, cfg *config.Config) *KeywordHandler {
	return &KeywordHandler{db: database, cfg: cfg}
}

type keywordBody struct {
	Text              string                    `json:"text"`
	SeverityLevel     string                    `json:"severity_level"`
	CategoryID        *uuid.UUID                `json:"category_id"`
	IsActive          *bool                     `json:"is_active"`
	ExactMatch        bool                      `json:"exact_match"`
	CaseSensitive     bool                      `json:"case_sensitive"`
	ResponseAction    string                    `json:"response_action"`
	NotificationRules *models.NotificationRules `json:"notification_rules"`
}

// validate normalizes and checks the body, returning a field-level message
// on failure.
func (b *keywordBody) validate() (string, bool) {
	b.Text = validation.NormalizeKeyword(b.Text)
	if ok, msg := validation.ValidateKeywordText(b.Text); !ok {
		return msg, false
	}
	if ok, msg := validation.ValidateSeverity(b.SeverityLevel); !ok {
		return msg, false
	}
	return "", true
}

// List returns keywords matching the query filters.
func (h *KeywordHandler) List(c fiber.Ctx) error {
	filter := db.KeywordFilter{
		Severity: c.Query("severity", ""),
		Search:   c.Query("q", ""),
		Limit:    fiber.Query(c, "limit", 500),
	}

	if scope := c.Query("scope", ""); scope == "global" {
		filter.GlobalOnly = true
	}
	if raw := c.Query("category_id", ""); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, "invalid category_id")
		}
		filter.CategoryID = &id
	}
	if raw := c.Query("active", ""); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, "invalid active filter")
		}
		filter.Active = &active
	}
	if filter.Severity != "" {
		if ok, msg := validation.ValidateSeverity(filter.Severity); !ok {
			return jsonError(c, fiber.StatusBadRequest, msg)
		}
	}

	keywords, err := h.db.ListKeywords(c.Context(), filter)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch keywords")
	}
	if keywords == nil {
		keywords = []models.Keyword{}
	}
	return jsonSuccess(c, keywords)
}

// Get returns a single keyword by ID.
func (h *KeywordHandler) Get(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid keyword id")
	}

	keyword, err := h.db.GetKeywordByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrKeywordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "keyword not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch keyword")
	}
	return jsonSuccess(c, keyword)
}

// Create creates a new keyword.
func (h *KeywordHandler) Create(c fiber.Ctx) error {
	var body keywordBody
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if msg, ok := body.validate(); !ok {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	if body.CategoryID != nil {
		if _, err := h.db.GetCategoryByID(c.Context(), *body.CategoryID); err != nil {
			if errors.Is(err, db.ErrCategoryNotFound) {
				return jsonError(c, fiber.StatusBadRequest, "unknown ticket category")
			}
			return jsonError(c, fiber.StatusInternalServerError, "failed to resolve category")
		}
	}

	keyword := &models.Keyword{
		Text:           body.Text,
		SeverityLevel:  body.SeverityLevel,
		CategoryID:     body.CategoryID,
		IsActive:       true,
		ExactMatch:     body.ExactMatch,
		CaseSensitive:  body.CaseSensitive,
		ResponseAction: body.ResponseAction,
		CreatedBy:      actorFrom(c),
	}
	if body.IsActive != nil {
		keyword.IsActive = *body.IsActive
	}
	if body.NotificationRules != nil {
		keyword.NotificationRules = *body.NotificationRules
	}

	if err := h.db.CreateKeyword(c.Context(), keyword); err != nil {
		if errors.Is(err, db.ErrDuplicateKeyword) {
			return jsonError(c, fiber.StatusConflict, "keyword already exists for this category")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to create keyword")
	}
	return jsonSuccess(c, keyword)
}

// Update updates a keyword's configuration. Trigger statistics cannot be
// changed here.
func (h *KeywordHandler) Update(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid keyword id")
	}

	keyword, err := h.db.GetKeywordByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrKeywordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "keyword not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch keyword")
	}

	var body keywordBody
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if msg, ok := body.validate(); !ok {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	if body.CategoryID != nil {
		if _, err := h.db.GetCategoryByID(c.Context(), *body.CategoryID); err != nil {
			if errors.Is(err, db.ErrCategoryNotFound) {
				return jsonError(c, fiber.StatusBadRequest, "unknown ticket category")
			}
			return jsonError(c, fiber.StatusInternalServerError, "failed to resolve category")
		}
	}

	keyword.Text = body.Text
	keyword.SeverityLevel = body.SeverityLevel
	keyword.CategoryID = body.CategoryID
	keyword.ExactMatch = body.ExactMatch
	keyword.CaseSensitive = body.CaseSensitive
	keyword.ResponseAction = body.ResponseAction
	keyword.UpdatedBy = actorFrom(c)
	if body.IsActive != nil {
		keyword.IsActive = *body.IsActive
	}
	if body.NotificationRules != nil {
		keyword.NotificationRules = *body.NotificationRules
	}

	if err := h.db.UpdateKeyword(c.Context(), keyword); err != nil {
		if errors.Is(err, db.ErrDuplicateKeyword) {
			return jsonError(c, fiber.StatusConflict, "keyword already exists for this category")
		}
		if errors.Is(err, db.ErrKeywordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "keyword not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to update keyword")
	}
	return jsonSuccess(c, keyword)
}

// Delete hard-deletes a keyword and its statistics.
func (h *KeywordHandler) Delete(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid keyword id")
	}

	if err := h.db.DeleteKeyword(c.Context(), id); err != nil {
		if errors.Is(err, db.ErrKeywordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "keyword not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to delete keyword")
	}
	return jsonSuccess(c, fiber.Map{"message": "keyword deleted"})
}

// ListCategories returns the ticket categories known to this service.
func (h *KeywordHandler) ListCategories(c fiber.Ctx) error {
	cats, err := h.db.ListCategories(c.Context())
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch categories")
	}
	if cats == nil {
		cats = []models.TicketCategory{}
	}
	return jsonSuccess(c, cats)
}
