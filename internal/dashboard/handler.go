package dashboard

import (
	"errors"
	"net/http"

	httperr "github.com/aevon-lab/salesdash/internal/core/errors"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all dashboard API routes on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	v1 := r.Group("/v1")
	v1.GET("/dashboard", s.HandleDashboard)
	v1.GET("/summaries/:name", s.HandleSummary)
	v1.GET("/records", s.HandleRecords)
	v1.GET("/options", s.HandleOptions)
}

// HandleDashboard handles GET /v1/dashboard
// Query parameters: region, year, all_years, salespeople, salesperson, top
func (s *Service) HandleDashboard(c *gin.Context) {
	q, ok := bindQuery(c)
	if !ok {
		return
	}

	resp, err := s.Dashboard(c.Request.Context(), q)
	if err != nil {
		writeError(c, err, "Failed to compute dashboard")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HandleSummary handles GET /v1/summaries/:name with the dashboard filter parameters.
func (s *Service) HandleSummary(c *gin.Context) {
	q, ok := bindQuery(c)
	if !ok {
		return
	}

	resp, err := s.Summary(c.Request.Context(), c.Param("name"), q)
	if err != nil {
		writeError(c, err, "Failed to compute summary")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HandleRecords handles GET /v1/records with the dashboard filter parameters.
func (s *Service) HandleRecords(c *gin.Context) {
	q, ok := bindQuery(c)
	if !ok {
		return
	}

	resp, err := s.Records(c.Request.Context(), q)
	if err != nil {
		writeError(c, err, "Failed to list records")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HandleOptions handles GET /v1/options
func (s *Service) HandleOptions(c *gin.Context) {
	c.JSON(http.StatusOK, s.Options())
}

func bindQuery(c *gin.Context) (Query, bool) {
	var q Query
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidQueryError,
			Message:   "Invalid query parameters",
			Details:   err.Error(),
		})
		return q, false
	}
	return q, true
}

func writeError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, ErrInvalidQuery):
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidQueryError,
			Message:   "Invalid dashboard query",
			Details:   err.Error(),
		})
	case errors.Is(err, ErrSummaryNotFound):
		c.JSON(http.StatusNotFound, httperr.ErrorResponse{
			ErrorType: httperr.HttpSummaryNotFoundError,
			Message:   "Unknown summary",
			Details:   gin.H{"error": err.Error(), "available": SummaryNames()},
		})
	default:
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   message,
			Details:   err.Error(),
		})
	}
}
