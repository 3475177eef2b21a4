package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/snapurl/snapurl/internal/app/repository"
	"github.com/snapurl/snapurl/internal/app/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockURLService struct {
	createFn  func(ctx context.Context, longURL string, expiryAt *time.Time) (string, error)
	resolveFn func(ctx context.Context, shortCode string) (string, error)

	createCalls  int
	resolveCalls int
}

func (m *mockURLService) CreateShortURL(ctx context.Context, longURL string, expiryAt *time.Time) (string, error) {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, longURL, expiryAt)
	}
	return "b", nil
}

func (m *mockURLService) ResolveLongURL(ctx context.Context, shortCode string) (string, error) {
	m.resolveCalls++
	if m.resolveFn != nil {
		return m.resolveFn(ctx, shortCode)
	}
	return "", repository.ErrURLNotFound
}

func newTestApp(svc service.URLService, baseURL string) *fiber.App {
	app := fiber.New()
	h := NewURLHandler(URLDeps{Service: svc, BaseURL: baseURL})
	h.Register(app)
	return app
}

func TestShorten_Created(t *testing.T) {
	svc := &mockURLService{
		createFn: func(ctx context.Context, longURL string, expiryAt *time.Time) (string, error) {
			assert.Equal(t, "https://a.example", longURL)
			require.NotNil(t, expiryAt)
			return "b", nil
		},
	}
	app := newTestApp(svc, "")

	req := httptest.NewRequest("POST", "/api/v1/urls/shorten",
		bytes.NewBufferString(`{"longUrl":"https://a.example","expiryDays":1}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body ShortenResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "b", body.ShortURL)
	require.NotNil(t, body.ExpiryAt)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 1), *body.ExpiryAt, time.Minute)
}

func TestShorten_BaseURLPrefixesCode(t *testing.T) {
	app := newTestApp(&mockURLService{}, "https://sho.rt/")

	req := httptest.NewRequest("POST", "/api/v1/urls/shorten",
		bytes.NewBufferString(`{"longUrl":"https://a.example"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body ShortenResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "https://sho.rt/b", body.ShortURL)
	assert.Nil(t, body.ExpiryAt)
}

func TestShorten_BlankURL(t *testing.T) {
	svc := &mockURLService{
		createFn: func(ctx context.Context, longURL string, expiryAt *time.Time) (string, error) {
			return "", service.ErrBlankURL
		},
	}
	app := newTestApp(svc, "")

	req := httptest.NewRequest("POST", "/api/v1/urls/shorten",
		bytes.NewBufferString(`{"longUrl":"  "}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body apiErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, fiber.StatusBadRequest, body.Status)
	assert.Equal(t, "/api/v1/urls/shorten", body.Path)
	assert.NotEmpty(t, body.Message)
}

func TestShorten_InvalidExpiryDays(t *testing.T) {
	svc := &mockURLService{}
	app := newTestApp(svc, "")

	req := httptest.NewRequest("POST", "/api/v1/urls/shorten",
		bytes.NewBufferString(`{"longUrl":"https://a.example","expiryDays":0}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 0, svc.createCalls, "validation failures must not reach the service")
}

func TestShorten_ServiceFailure(t *testing.T) {
	svc := &mockURLService{
		createFn: func(ctx context.Context, longURL string, expiryAt *time.Time) (string, error) {
			return "", assert.AnError
		},
	}
	app := newTestApp(svc, "")

	req := httptest.NewRequest("POST", "/api/v1/urls/shorten",
		bytes.NewBufferString(`{"longUrl":"https://a.example"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	var body apiErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "something went wrong", body.Message, "internal detail must not leak")
}

func TestRedirect_Found(t *testing.T) {
	svc := &mockURLService{
		resolveFn: func(ctx context.Context, shortCode string) (string, error) {
			assert.Equal(t, "b", shortCode)
			return "https://a.example", nil
		},
	}
	app := newTestApp(svc, "")

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/urls/b", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "https://a.example", resp.Header.Get("Location"))
}

func TestRedirect_NotFound(t *testing.T) {
	app := newTestApp(&mockURLService{}, "")

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/urls/zz", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var body apiErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, fiber.StatusNotFound, body.Status)
	assert.Equal(t, "/api/v1/urls/zz", body.Path)
}

func TestRedirect_ServiceFailure(t *testing.T) {
	svc := &mockURLService{
		resolveFn: func(ctx context.Context, shortCode string) (string, error) {
			return "", assert.AnError
		},
	}
	app := newTestApp(svc, "")

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/urls/b", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
