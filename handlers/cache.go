package handlers

import (
	"net/http"

	"lung-server/cache"
	"lung-server/usecases"

	"github.com/gin-gonic/gin"
)

type CacheHandler struct {
	records *cache.UserCache[[]usecases.PatientView]
}

func NewCacheHandler(records *cache.UserCache[[]usecases.PatientView]) *CacheHandler {
	return &CacheHandler{records: records}
}

func (h *CacheHandler) GetCacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"stats":  h.records.GetCacheStats(),
	})
}

func (h *CacheHandler) ClearCache(c *gin.Context) {
	h.records.Clear()
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}
