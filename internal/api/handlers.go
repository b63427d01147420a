package api

import (
	"log/slog"
	"net/http"

	"StockPredictor/internal/apperr"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":     "Stock Prediction API is running!",
		"environment": s.opts.Environment,
		"version":     Version,
		"provider":    s.opts.Provider,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": s.now()})
}

func (s *Server) handleStock(c *gin.Context) {
	symbol := c.Param("symbol")
	analysis, err := s.analyzer.Collect(c.Request.Context(), symbol)
	if err != nil {
		status := apperr.Status(err)
		if status >= http.StatusInternalServerError {
			slog.Error("error processing symbol", "symbol", symbol, "kind", apperr.KindOf(err), "error", err)
		}
		c.JSON(status, gin.H{"detail": apperr.Detail(err)})
		return
	}
	c.JSON(http.StatusOK, analysis)
}
