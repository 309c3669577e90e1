package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_catalog/internal/utils"
)

// respondError maps the error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, utils.ErrValidation):
		utils.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", detail(err, utils.ErrValidation))
	case errors.Is(err, utils.ErrNotFound):
		utils.Error(c, http.StatusNotFound, "NOT_FOUND", detail(err, utils.ErrNotFound))
	case errors.Is(err, utils.ErrMalformedEncoding):
		log.Error().Err(err).Str("request_id", utils.RequestID(c)).Msg("data integrity fault while serving request")
		utils.Error(c, http.StatusInternalServerError, "DATA_INTEGRITY_ERROR", "Stored catalog data could not be decoded")
	default:
		log.Error().Err(err).Str("request_id", utils.RequestID(c)).Msg(fallback)
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
	}
}

// detail strips the sentinel prefix so clients see only the human part.
func detail(err, sentinel error) string {
	msg := err.Error()
	if i := strings.Index(msg, sentinel.Error()+": "); i >= 0 {
		return msg[i+len(sentinel.Error())+2:]
	}
	return msg
}
