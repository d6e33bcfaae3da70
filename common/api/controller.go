package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

const httpStatusCodeInternalError = 600

// Wrap adapts a controller returning a JSON result into a gin handler.
func Wrap(controller func(c *gin.Context) (interface{}, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := controller(c)
		if err != nil {
			ResponseError(c, err)
		} else if result == nil {
			c.JSON(http.StatusOK, ErrNil)
		} else {
			c.JSON(http.StatusOK, ErrNil.WithData(result))
		}
	}
}

// ResponseError writes err as a JSON business error. Handlers that stream
// their own body use it as long as nothing has been written yet. Business
// and validation errors wrapped in err are found as well.
func ResponseError(c *gin.Context, err error) {
	var be *BusinessError
	var ve validator.ValidationErrors

	switch {
	case errors.As(err, &be):
		c.JSON(http.StatusOK, be)
	case errors.As(err, &ve):
		c.JSON(http.StatusOK, ErrValidation.WithData(ve.Error()))
	default:
		c.JSON(httpStatusCodeInternalError, ErrInternal.WithData(err.Error()))
	}
}
