package server

import (
	"net/http"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"

	"cabinet/pkg/schema"
)

// GET /
func (s *Server) handleGetRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "ok",
		"offline": s.Config.Offline,
		"reports": s.Reports.Len(),
	})
}

// GET /api/reports
func (s *Server) handleGetReports(c echo.Context) error {
	reports := s.Reports.Values()
	slices.SortFunc(reports, func(a, b schema.Report) int {
		return strings.Compare(b.CreatedAt, a.CreatedAt)
	})
	return c.JSON(http.StatusOK, reports)
}
