package http

import (
	"errors"
	"io"
	"path/filepath"
	"strings"

	appSearch "github.com/NeuralTrust/TrustSearch/pkg/app/search"
	"github.com/NeuralTrust/TrustSearch/pkg/domain"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
)

const (
	ImageFormField = "image"
	QueryFormField = "query"
)

type uploadSearchHandler struct {
	logger        *logrus.Logger
	searcher      appSearch.Searcher
	maxUploadSize int64
}

func NewUploadSearchHandler(logger *logrus.Logger, searcher appSearch.Searcher, maxUploadSize int64) Handler {
	if maxUploadSize <= 0 {
		maxUploadSize = appSearch.DefaultMaxUploadSize
	}
	return &uploadSearchHandler{
		logger:        logger,
		searcher:      searcher,
		maxUploadSize: maxUploadSize,
	}
}

// Handle ranks web results against an uploaded image.
func (h *uploadSearchHandler) Handle(c *fiber.Ctx) error {
	header, err := c.FormFile(ImageFormField)
	if err != nil {
		if errors.Is(err, fasthttp.ErrMissingFile) || errors.Is(err, fasthttp.ErrNoMultipartForm) {
			return writeError(c, h.logger, domain.NewInputError(domain.ErrMissingImageFile))
		}
		return writeError(c, h.logger, domain.NewInputError(err))
	}
	if header == nil {
		return writeError(c, h.logger, domain.NewInputError(domain.ErrMissingImageFile))
	}

	filename := strings.TrimSpace(header.Filename)
	if filename == "" {
		return writeError(c, h.logger, domain.NewInputError(domain.ErrEmptyFilename))
	}
	filename = filepath.Base(filename)

	if header.Size > h.maxUploadSize {
		return writeError(c, h.logger, domain.NewInputError(domain.ErrImageTooLarge))
	}

	file, err := header.Open()
	if err != nil {
		return writeError(c, h.logger, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			h.logger.WithError(cerr).Warn("failed to close uploaded file")
		}
	}()

	// one extra byte detects payloads that lie about their size
	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadSize+1))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	if int64(len(data)) > h.maxUploadSize {
		return writeError(c, h.logger, domain.NewInputError(domain.ErrImageTooLarge))
	}

	results, err := h.searcher.SearchImageUpload(c.UserContext(), filename, data, c.FormValue(QueryFormField))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return writeResults(c, results)
}
