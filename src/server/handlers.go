package server

import (
	"net/http"

	"trading-dashboard/src/broker"
	"trading-dashboard/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *DashboardServer) getAccount(c *gin.Context) {
	if !s.requireBroker(c) {
		return
	}
	acct, err := s.broker.Account(c.Request.Context())
	if err != nil {
		s.upstreamError(c, "account", err)
		return
	}
	c.JSON(http.StatusOK, acct)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getPositions(c *gin.Context) {
	if !s.requireBroker(c) {
		return
	}
	positions, err := s.broker.Positions(c.Request.Context())
	if err != nil {
		s.upstreamError(c, "positions", err)
		return
	}
	if positions == nil {
		positions = []models.MPosition{}
	}
	c.JSON(http.StatusOK, positions)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getSettings(c *gin.Context) {
	c.JSON(http.StatusOK, models.MSettings{
		Model:        s.Config.Advisor.Model,
		DisabledGrok: s.Config.Advisor.Disabled,
		Interval:     s.Config.Advisor.IntervalMinutes,
		Paper:        s.Config.Broker.Paper,
	})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getPortfolioValue(c *gin.Context) {
	if !s.requireBroker(c) {
		return
	}
	only, ok := s.intervalQuery(c)
	if !ok {
		return
	}

	batch, err := broker.PortfolioBatch(c.Request.Context(), s.broker)
	if err != nil {
		s.upstreamError(c, "portfolio history", err)
		return
	}
	c.JSON(http.StatusOK, filterBatch(batch, only))
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getData(c *gin.Context) {
	if s.prices == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "price feed not configured"})
		return
	}
	only, ok := s.intervalQuery(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, filterBatch(s.prices.Snapshot(), only))
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getHealth(c *gin.Context) {
	resp := gin.H{
		"status":      "ok",
		"connections": s.connectionCount(),
		"broker":      s.broker != nil,
	}
	if s.prices != nil {
		pm := s.prices.ProcessingMetrics()
		resp["latest_update"] = pm.LastBarTimestamp
		resp["processing_metrics"] = pm
	}
	c.JSON(http.StatusOK, resp)
}
