package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"farmflow-backend/internal/log"
	"farmflow-backend/internal/store"
)

func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"status": status, "error": message})
}

// respondStoreError maps store errors onto HTTP responses. notFound is the
// message used for store.ErrNotFound.
func respondStoreError(c *gin.Context, err error, notFound string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(c, http.StatusNotFound, notFound)
	case errors.Is(err, store.ErrMachineMismatch):
		respondError(c, http.StatusBadRequest, store.ErrMachineMismatch.Error())
	default:
		log.Error(err, "request failed", "path", c.FullPath())
		respondError(c, http.StatusInternalServerError, "internal server error")
	}
}
