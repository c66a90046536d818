package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/t-azam747/SecureRelief-sub003/internal/errs"
)

// writeError renders a service error as {error, issues?, detail?}. Causes of
// internal errors are logged and never returned.
func writeError(c *gin.Context, err error) {
	var e *errs.Error
	if !errors.As(err, &e) {
		e = errs.Internal("Internal server error", err)
	}

	if e.Kind == errs.KindInternal {
		zerolog.Ctx(c.Request.Context()).Error().Err(e.Err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	body := gin.H{"error": e.Message}
	if len(e.Issues) > 0 {
		body["issues"] = e.Issues
	}
	if e.Detail != "" {
		body["detail"] = e.Detail
	}
	c.JSON(e.Kind.HTTPStatus(), body)
}

func badBody(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
}
