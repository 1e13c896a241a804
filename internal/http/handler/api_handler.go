package handler

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jianyuhu/TinyLink/internal/app/generator"
	"github.com/jianyuhu/TinyLink/internal/app/repository"
	"github.com/jianyuhu/TinyLink/internal/app/service"
	"github.com/jianyuhu/TinyLink/internal/app/validate"
	"go.uber.org/zap"
)

// APIDeps groups dependencies required by API handlers.
type APIDeps struct {
	Logger      *zap.Logger
	LinkService service.LinkService
	BaseURL     string
}

// APIHandler implements the JSON management endpoints.
type APIHandler struct {
	logger  *zap.Logger
	links   service.LinkService
	baseURL string
}

// NewAPIHandler creates an API handler with the provided dependencies.
func NewAPIHandler(deps APIDeps) *APIHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIHandler{
		logger:  logger,
		links:   deps.LinkService,
		baseURL: deps.BaseURL,
	}
}

// Register wires API routes onto the provided router.
func (h *APIHandler) Register(router fiber.Router) {
	api := router.Group("/api")
	{
		links := api.Group("/links")
		{
			links.Post("/", h.CreateLink)
			links.Get("/:code", h.GetLink)
		}
	}
}

// CreateLinkRequest represents the request body for creating a link.
type CreateLinkRequest struct {
	URL string `json:"url"`
}

// LinkResponse represents a link in API responses.
type LinkResponse struct {
	ID          int64     `json:"id"`
	ShortCode   string    `json:"short_code"`
	ShortURL    string    `json:"short_url"`
	OriginalURL string    `json:"original_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateLink handles POST /api/links
func (h *APIHandler) CreateLink(c *fiber.Ctx) error {
	var req CreateLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	link, err := h.links.CreateShortenedFor(h.userContext(c), req.URL)
	if err != nil {
		switch {
		case errors.Is(err, validate.ErrEmptyURL),
			errors.Is(err, validate.ErrMalformedURL),
			errors.Is(err, validate.ErrURLTooLong):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		case errors.Is(err, generator.ErrAllocationExhausted):
			h.logger.Error("short-code allocation exhausted", zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "could not allocate a short code",
			})
		default:
			h.logger.Error("failed to create link", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to create link",
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(h.toResponse(link.ID, link.ShortCode, link.OriginalURL, link.CreatedAt))
}

// GetLink handles GET /api/links/:code
func (h *APIHandler) GetLink(c *fiber.Ctx) error {
	code := c.Params("code")

	link, err := h.links.Resolve(h.userContext(c), code)
	if err != nil {
		switch {
		case errors.Is(err, validate.ErrMalformedCode):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		case errors.Is(err, repository.ErrLinkNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "link not found",
			})
		default:
			h.logger.Error("failed to resolve link", zap.Error(err), zap.String("code", code))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "internal server error",
			})
		}
	}

	return c.JSON(h.toResponse(link.ID, link.ShortCode, link.OriginalURL, link.CreatedAt))
}

func (h *APIHandler) toResponse(id int64, code, originalURL string, createdAt time.Time) LinkResponse {
	return LinkResponse{
		ID:          id,
		ShortCode:   code,
		ShortURL:    h.baseURL + "/" + code,
		OriginalURL: originalURL,
		CreatedAt:   createdAt,
	}
}

func (h *APIHandler) userContext(c *fiber.Ctx) context.Context {
	if ctx := c.UserContext(); ctx != nil {
		return ctx
	}
	return context.Background()
}
