package server

import (
	"log"
	"net/http"
	"time"

	"photo-hunt/internal/game"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func writeError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// respondError maps the service error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case game.IsValidation(err):
		writeError(c, http.StatusBadRequest, err.Error())
	case game.IsNotFound(err):
		writeError(c, http.StatusNotFound, err.Error())
	case game.IsConflict(err):
		writeError(c, http.StatusConflict, err.Error())
	case game.IsStorage(err):
		log.Printf("storage failure method=%s path=%s err=%v", c.Request.Method, c.FullPath(), err)
		writeError(c, http.StatusInternalServerError, "storage unavailable")
	default:
		log.Printf("request failed method=%s path=%s err=%v", c.Request.Method, c.FullPath(), err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func paramID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusNotFound, "not found")
		return uuid.Nil, false
	}
	return id, true
}

func queryID(c *gin.Context, name string) (uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		writeError(c, http.StatusBadRequest, name+" is required")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(c, http.StatusBadRequest, name+" must be a uuid")
		return uuid.Nil, false
	}
	return id, true
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Printf("http request method=%s path=%s status=%d duration=%s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Round(time.Millisecond))
	}
}
