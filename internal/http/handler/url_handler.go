package handler

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/snapurl/snapurl/internal/app/repository"
	"github.com/snapurl/snapurl/internal/app/service"
	"go.uber.org/zap"
)

// URLDeps groups dependencies required by the URL handlers.
type URLDeps struct {
	Logger  *zap.Logger
	Service service.URLService
	// BaseURL, when set, is prepended to codes in shorten responses.
	BaseURL string
}

// URLHandler implements the shorten and redirect endpoints.
type URLHandler struct {
	logger  *zap.Logger
	service service.URLService
	baseURL string
	now     func() time.Time
}

// NewURLHandler creates a URL handler with the provided dependencies.
func NewURLHandler(deps URLDeps) *URLHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &URLHandler{
		logger:  logger,
		service: deps.Service,
		baseURL: strings.TrimRight(deps.BaseURL, "/"),
		now:     time.Now,
	}
}

// Register wires URL routes onto the provided router. The extra handlers
// run before every URL route; the rate limiter goes here so it guards
// only the two hot endpoints.
func (h *URLHandler) Register(router fiber.Router, middleware ...fiber.Handler) {
	urls := router.Group("/api/v1/urls", middleware...)
	{
		urls.Post("/shorten", h.Shorten)
		urls.Get("/:shortCode", h.Redirect)
	}
}

// ShortenRequest represents the request body for shortening a URL.
type ShortenRequest struct {
	LongURL    string `json:"longUrl"`
	ExpiryDays *int   `json:"expiryDays,omitempty"`
}

// ShortenResponse represents the response for shortening a URL.
type ShortenResponse struct {
	ShortURL string     `json:"shortUrl"`
	ExpiryAt *time.Time `json:"expiryAt"`
}

// Shorten handles POST /api/v1/urls/shorten
func (h *URLHandler) Shorten(c *fiber.Ctx) error {
	var req ShortenRequest
	if err := c.BodyParser(&req); err != nil {
		return h.apiError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if req.ExpiryDays != nil && *req.ExpiryDays < 1 {
		return h.apiError(c, fiber.StatusBadRequest, "expiryDays must be at least 1")
	}

	var expiryAt *time.Time
	if req.ExpiryDays != nil {
		t := h.now().AddDate(0, 0, *req.ExpiryDays)
		expiryAt = &t
	}

	code, err := h.service.CreateShortURL(h.userContext(c), req.LongURL, expiryAt)
	if err != nil {
		if errors.Is(err, service.ErrBlankURL) {
			return h.apiError(c, fiber.StatusBadRequest, "longUrl cannot be blank")
		}
		h.logger.Error("failed to shorten url", zap.Error(err))
		return h.apiError(c, fiber.StatusInternalServerError, "something went wrong")
	}

	return c.Status(fiber.StatusCreated).JSON(ShortenResponse{
		ShortURL: h.shortURL(code),
		ExpiryAt: expiryAt,
	})
}

// Redirect handles GET /api/v1/urls/:shortCode
func (h *URLHandler) Redirect(c *fiber.Ctx) error {
	code := c.Params("shortCode")
	if code == "" {
		return h.apiError(c, fiber.StatusBadRequest, "shortCode is required")
	}

	longURL, err := h.service.ResolveLongURL(h.userContext(c), code)
	if err != nil {
		if errors.Is(err, repository.ErrURLNotFound) {
			return h.apiError(c, fiber.StatusNotFound, "short url not found")
		}
		h.logger.Error("failed to resolve url", zap.Error(err), zap.String("code", code))
		return h.apiError(c, fiber.StatusInternalServerError, "something went wrong")
	}

	return c.Redirect(longURL, fiber.StatusFound)
}

func (h *URLHandler) shortURL(code string) string {
	if h.baseURL == "" {
		return code
	}
	return h.baseURL + "/" + code
}

func (h *URLHandler) userContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return ctx
}

// apiErrorResponse is the JSON body returned for every error status.
type apiErrorResponse struct {
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *URLHandler) apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(apiErrorResponse{
		Status:    status,
		Error:     utils.StatusMessage(status),
		Message:   message,
		Path:      c.Path(),
		Timestamp: h.now().UTC(),
	})
}
