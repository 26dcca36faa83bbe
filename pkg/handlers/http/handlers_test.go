package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/NeuralTrust/TrustSearch/pkg/app/search/mocks"
	"github.com/NeuralTrust/TrustSearch/pkg/domain"
	"github.com/NeuralTrust/TrustSearch/pkg/domain/embedding"
	domainSearch "github.com/NeuralTrust/TrustSearch/pkg/domain/search"
	"github.com/NeuralTrust/TrustSearch/pkg/handlers/http/response"
	"github.com/NeuralTrust/TrustSearch/pkg/version"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func ranked() []domainSearch.ScoredResult {
	return []domainSearch.ScoredResult{
		{Result: domainSearch.Result{URL: "https://cats.example", Title: "Cats", Snippet: "All about cats", ImageURL: "https://cats.example/c.png"}, Score: 0.912},
		{Result: domainSearch.Result{URL: "https://dogs.example", Title: "Dogs", Snippet: "All about dogs"}, Score: 0.404},
	}
}

func postJSON(t *testing.T, app *fiber.App, path, body string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, path, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func decodeError(t *testing.T, raw []byte) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body["error"]
}

func TestSearchHandler_TextMode(t *testing.T) {
	searcher := new(mocks.Searcher)
	searcher.On("SearchText", mock.Anything, "cats").Return(ranked(), nil)

	app := fiber.New()
	app.Post("/search", NewSearchHandler(newTestLogger(), searcher).Handle)

	status, raw := postJSON(t, app, "/search", `{"mode":"text","query":"  cats "}`)
	assert.Equal(t, fiber.StatusOK, status)

	var out []response.SearchResult
	require.NoError(t, json.Unmarshal(raw, &out))
	require.Len(t, out, 2)
	assert.Equal(t, "https://cats.example", out[0].URL)
	require.NotNil(t, out[0].Image)
	assert.Equal(t, "https://cats.example/c.png", *out[0].Image)
	assert.InDelta(t, 0.912, out[0].Score, 1e-9)
	assert.Nil(t, out[1].Image)
	assert.Contains(t, string(raw), `"image":null`)
	searcher.AssertExpectations(t)
}

func TestSearchHandler_ImageModeUsesQueryAsHint(t *testing.T) {
	searcher := new(mocks.Searcher)
	searcher.On("SearchImageURL", mock.Anything, "https://img.example/cat.png", "kittens").
		Return([]domainSearch.ScoredResult{}, nil)

	app := fiber.New()
	app.Post("/search", NewSearchHandler(newTestLogger(), searcher).Handle)

	status, raw := postJSON(t, app, "/search",
		`{"mode":"image","image_url":"https://img.example/cat.png","query":"kittens"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `[]`, string(raw))
	searcher.AssertExpectations(t)
}

func TestSearchHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setup      func(s *mocks.Searcher)
		wantStatus int
		wantError  string
		exact      bool
	}{
		{
			name:       "invalid json",
			body:       `{"mode":`,
			wantStatus: fiber.StatusBadRequest,
			wantError:  "invalid request body",
		},
		{
			name:       "invalid mode",
			body:       `{"mode":"video","query":"cats"}`,
			wantStatus: fiber.StatusBadRequest,
			wantError:  `invalid mode, must be 'text' or 'image': "video"`,
			exact:      true,
		},
		{
			name: "empty query",
			body: `{"mode":"text","query":""}`,
			setup: func(s *mocks.Searcher) {
				s.On("SearchText", mock.Anything, "").Return(nil, domain.NewInputError(domain.ErrEmptyQuery))
			},
			wantStatus: fiber.StatusBadRequest,
			wantError:  "empty query",
			exact:      true,
		},
		{
			name: "missing image url",
			body: `{"mode":"image"}`,
			setup: func(s *mocks.Searcher) {
				s.On("SearchImageURL", mock.Anything, "", "").Return(nil, domain.NewInputError(domain.ErrMissingImageURL))
			},
			wantStatus: fiber.StatusBadRequest,
			wantError:  "missing image url",
			exact:      true,
		},
		{
			name: "encoding failure",
			body: `{"mode":"text","query":"cats"}`,
			setup: func(s *mocks.Searcher) {
				s.On("SearchText", mock.Anything, "cats").
					Return(nil, domain.NewEncodingError(errors.Join(domain.ErrEncodingFailed, embedding.ErrEncoding)))
			},
			wantStatus: fiber.StatusInternalServerError,
			wantError:  "encoding failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			searcher := new(mocks.Searcher)
			if tt.setup != nil {
				tt.setup(searcher)
			}
			app := fiber.New()
			app.Post("/search", NewSearchHandler(newTestLogger(), searcher).Handle)

			status, raw := postJSON(t, app, "/search", tt.body)
			assert.Equal(t, tt.wantStatus, status)
			if tt.exact {
				assert.Equal(t, tt.wantError, decodeError(t, raw))
			} else {
				assert.Contains(t, decodeError(t, raw), tt.wantError)
			}
			assert.NotRegexp(t, `^(input|encoding) error: `, decodeError(t, raw))
			searcher.AssertExpectations(t)
		})
	}
}

func multipartBody(t *testing.T, field, filename string, data []byte, query string) (*bytes.Buffer, string) {
	t.Helper()
	buf := new(bytes.Buffer)
	w := multipart.NewWriter(buf)
	if field != "" {
		part, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	if query != "" {
		require.NoError(t, w.WriteField(QueryFormField, query))
	}
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func postUpload(t *testing.T, app *fiber.App, body io.Reader, contentType string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/upload_search", body)
	req.Header.Set(fiber.HeaderContentType, contentType)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func TestUploadSearchHandler_OK(t *testing.T) {
	data := []byte("fake-png-bytes")
	searcher := new(mocks.Searcher)
	searcher.On("SearchImageUpload", mock.Anything, "cat.png", data, "tabby").Return(ranked(), nil)

	app := fiber.New()
	app.Post("/upload_search", NewUploadSearchHandler(newTestLogger(), searcher, 1024).Handle)

	body, ct := multipartBody(t, ImageFormField, "cat.png", data, "tabby")
	status, raw := postUpload(t, app, body, ct)
	assert.Equal(t, fiber.StatusOK, status)

	var out []response.SearchResult
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Len(t, out, 2)
	searcher.AssertExpectations(t)
}

func TestUploadSearchHandler_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		searcher := new(mocks.Searcher)
		app := fiber.New()
		app.Post("/upload_search", NewUploadSearchHandler(newTestLogger(), searcher, 1024).Handle)

		body, ct := multipartBody(t, "", "", nil, "tabby")
		status, raw := postUpload(t, app, body, ct)
		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.Equal(t, domain.ErrMissingImageFile.Error(), decodeError(t, raw))
		searcher.AssertNotCalled(t, "SearchImageUpload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("not multipart", func(t *testing.T) {
		searcher := new(mocks.Searcher)
		app := fiber.New()
		app.Post("/upload_search", NewUploadSearchHandler(newTestLogger(), searcher, 1024).Handle)

		status, raw := postUpload(t, app, strings.NewReader(`{}`), fiber.MIMEApplicationJSON)
		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.Equal(t, domain.ErrMissingImageFile.Error(), decodeError(t, raw))
	})

	t.Run("too large", func(t *testing.T) {
		searcher := new(mocks.Searcher)
		app := fiber.New()
		app.Post("/upload_search", NewUploadSearchHandler(newTestLogger(), searcher, 8).Handle)

		body, ct := multipartBody(t, ImageFormField, "cat.png", bytes.Repeat([]byte("x"), 64), "")
		status, raw := postUpload(t, app, body, ct)
		assert.Equal(t, fiber.StatusRequestEntityTooLarge, status)
		assert.Equal(t, domain.ErrImageTooLarge.Error(), decodeError(t, raw))
		searcher.AssertNotCalled(t, "SearchImageUpload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unsupported type", func(t *testing.T) {
		data := []byte("gif-bytes")
		searcher := new(mocks.Searcher)
		searcher.On("SearchImageUpload", mock.Anything, "anim.gif", data, "").
			Return(nil, domain.NewInputError(domain.ErrUnsupportedImageType))
		app := fiber.New()
		app.Post("/upload_search", NewUploadSearchHandler(newTestLogger(), searcher, 1024).Handle)

		body, ct := multipartBody(t, ImageFormField, "anim.gif", data, "")
		status, raw := postUpload(t, app, body, ct)
		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.Equal(t, domain.ErrUnsupportedImageType.Error(), decodeError(t, raw))
		searcher.AssertExpectations(t)
	})
}

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(context.Context) error {
	return p.err
}

func TestHealthHandler(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		app := fiber.New()
		app.Get("/health", NewHealthHandler(newTestLogger(), map[string]Pinger{"embedder": fakePinger{}}).Handle)

		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/health", nil), -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "ok", body["status"])
		assert.NotEmpty(t, body["time"])
	})

	t.Run("degraded", func(t *testing.T) {
		checks := map[string]Pinger{"embedder": fakePinger{err: errors.New("connection refused")}}
		app := fiber.New()
		app.Get("/health", NewHealthHandler(newTestLogger(), checks).Handle)

		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/health", nil), -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "degraded", body["status"])
		deps, ok := body["dependencies"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "connection refused", deps["embedder"])
	})
}

func TestGetVersionHandler(t *testing.T) {
	app := fiber.New()
	app.Get("/version", NewGetVersionHandler(newTestLogger()).Handle)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/version", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var info version.Info
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Equal(t, version.AppName, info.AppName)
	assert.Equal(t, version.Version, info.Version)
}
