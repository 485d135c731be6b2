package api

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// GenerateRequest is the document upload payload. The document travels as
// base64 because clients read it from a file picker; a data URL prefix is
// tolerated.
type GenerateRequest struct {
	DocumentBase64 string `json:"documentBase64"`
	Filename       string `json:"filename"`
}

// GenerateWorkflow runs the extraction pipeline over an uploaded document
// and returns the normalized draft without persisting it; the client decides
// whether to save. Unusable model output is a generation failure, not a
// caller error, so it surfaces as a 500 with the pipeline's reason.
// (POST /api/generate-workflow)
func (s *Server) GenerateWorkflow(c echo.Context) error {
	ctx := c.Request().Context()

	var req GenerateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	if strings.TrimSpace(req.DocumentBase64) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "documentBase64 is required")
	}

	document, err := decodeDocument(req.DocumentBase64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "documentBase64 is not valid base64")
	}

	draft, err := s.generation.Generate(ctx, document, req.Filename)
	if err != nil {
		s.countGenerate(ctx, "error")
		s.logger.Error("workflow generation failed", "filename", req.Filename, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	s.countGenerate(ctx, "ok")
	return c.JSON(http.StatusOK, draft)
}

// decodeDocument accepts bare base64 and full data URLs.
func decodeDocument(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if i := strings.IndexByte(s, ','); i >= 0 {
			s = s[i+1:]
		}
	}
	return base64.StdEncoding.DecodeString(s)
}
