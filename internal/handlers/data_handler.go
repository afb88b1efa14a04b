package handlers

import (
	"net/http"
	"strconv"

	"github.com/garjemarathi/community-agent/internal/store"
	"github.com/gin-gonic/gin"
)

const maxSearchLimit = 50

// DataHandler exposes the community data the agent formats, as plain JSON.
type DataHandler struct {
	Store store.Store
}

func NewDataHandler(st store.Store) *DataHandler {
	return &DataHandler{Store: st}
}

// SearchMembers is the GET /api/members/search endpoint
func (h *DataHandler) SearchMembers(c *gin.Context) {
	members, err := h.Store.SearchMembers(c.Query("q"), parseLimit(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Member search failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(members), "members": members})
}

// SearchJobs is the GET /api/jobs/search endpoint
func (h *DataHandler) SearchJobs(c *gin.Context) {
	jobs, err := h.Store.SearchJobs(c.Query("q"), parseLimit(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Job search failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(jobs), "jobs": jobs})
}

// Stats is the GET /api/stats endpoint
func (h *DataHandler) Stats(c *gin.Context) {
	stats, err := h.Store.Stats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Stats lookup failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func parseLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		return store.DefaultSearchLimit
	}
	if limit > maxSearchLimit {
		return maxSearchLimit
	}
	return limit
}
