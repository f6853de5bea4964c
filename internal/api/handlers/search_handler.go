package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Marga-Ghale/backpackers-backend/internal/models"
	"github.com/Marga-Ghale/backpackers-backend/internal/service"
)

type SearchHandler struct {
	searchService service.SearchService
}

// Search never fails; bad or empty input just matches nothing.
func (h *SearchHandler) Search(c *gin.Context) {
	query := c.Query("q")
	location := c.Query("location")

	results := h.searchService.Search(c.Request.Context(), query, location)

	c.JSON(http.StatusOK, models.SearchResponse{
		Query:       query,
		Location:    location,
		Total:       results.Total(),
		Rentals:     results.Rentals,
		Sightseeing: results.Sightseeing,
		Tours:       results.Tours,
	})
}
