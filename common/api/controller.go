package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const httpStatusCodeInternalError = 600

// Wrap adapts a controller to a gin handler, wrapping results and errors into a
// BusinessError envelope.
func Wrap(controller func(c *gin.Context) (interface{}, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := controller(c)
		if err != nil {
			var (
				businessErr   *BusinessError
				validationErr validator.ValidationErrors
			)

			switch {
			case errors.As(err, &businessErr):
				// custom business error
				c.JSON(http.StatusOK, businessErr)
			case errors.As(err, &validationErr):
				// binding error
				c.JSON(http.StatusOK, ErrValidation.WithData(validationErr.Error()))
			default:
				// internal server error
				logrus.WithError(err).WithField("path", c.FullPath()).Debug("API request failed")
				c.JSON(httpStatusCodeInternalError, ErrInternal.WithData(err.Error()))
			}
		} else if result == nil {
			c.JSON(http.StatusOK, ErrNil)
		} else {
			c.JSON(http.StatusOK, ErrNil.WithData(result))
		}
	}
}
