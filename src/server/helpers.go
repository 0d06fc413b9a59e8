package server

import (
	"net/http"

	"trading-dashboard/src/models"
	"trading-dashboard/src/validation"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------

func (s *DashboardServer) requireBroker(c *gin.Context) bool {
	if s.broker != nil {
		return true
	}
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": "broker client not configured"})
	return false
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) upstreamError(c *gin.Context, what string, err error) {
	s.Logger.Error("Fetching %s failed: %v", what, err)
	c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
}

// -----------------------------------------------------------------------------

// intervalQuery reads the optional ?interval= filter. It answers 400 itself
// and returns ok=false when the value is not an interval name.
func (s *DashboardServer) intervalQuery(c *gin.Context) (models.MInterval, bool) {
	raw := c.Query("interval")
	if raw == "" {
		return "", true
	}
	iv, err := validation.ValidateInterval(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return iv, true
}

// -----------------------------------------------------------------------------

// filterBatch keeps only interval when one is given. Absent intervals come
// back as empty lists.
func filterBatch(batch models.MIntervalBatch, only models.MInterval) models.MIntervalBatch {
	out := make(models.MIntervalBatch)
	for _, iv := range models.AllIntervals {
		if only != "" && iv != only {
			continue
		}
		records := batch[iv]
		if records == nil {
			records = []models.MRecord{}
		}
		out[iv] = records
	}
	return out
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) connectionCount() int {
	total := 0
	for _, hub := range s.hubs {
		total += hub.ClientCount()
	}
	return total
}
