package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anchore/riskboard/riskboard/rberr"
)

var errNegativeLimit = errors.New("must not be negative")

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// abortWithError maps domain errors onto status codes: unknown ids are 404, bad input is 400 and everything else
// (store and audit failures included) is a 500.
func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)

	var validationErr *rberr.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: validationErr.Error(), Field: validationErr.Field})
	case rberr.IsNotFound(err):
		c.AbortWithStatusJSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

func abortWithBadRequest(c *gin.Context, field string, err error) {
	abortWithError(c, rberr.NewValidationError(field, "%v", err))
}
