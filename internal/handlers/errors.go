package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"donor-batch-ledger/internal/models"
	"donor-batch-ledger/internal/repository"
	"donor-batch-ledger/internal/services/batchentry"
	"donor-batch-ledger/internal/services/pledges"
)

// statusOf maps service and repository errors onto HTTP status codes.
func statusOf(err error) int {
	var ve *models.ValidationError
	var be *batchentry.ValidationError
	switch {
	case errors.As(err, &ve), errors.As(err, &be):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrReferentialIntegrity),
		errors.Is(err, repository.ErrConflict),
		errors.Is(err, pledges.ErrCancelled):
		return http.StatusConflict
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, batchentry.ErrBatchNotFound),
		errors.Is(err, batchentry.ErrRowNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, log zerolog.Logger, err error) {
	code := statusOf(err)
	if code == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		_ = c.Error(err)
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + param})
		return 0, false
	}
	return id, true
}

func parseUUID(c *gin.Context, param, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + what + " ID"})
		return uuid.Nil, false
	}
	return id, true
}

// queryID reads an optional numeric query parameter. ok is false when the
// parameter is present but malformed; a 400 has been written then.
func queryID(c *gin.Context, name string) (id *int64, ok bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return nil, false
	}
	return &v, true
}
