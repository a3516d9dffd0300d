// README: Panic recovery.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func Recovery(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.WithField("panic", rec).Error("panic recovered")
				abort(c, http.StatusInternalServerError, "internal error")
			}
		}()
		c.Next()
	}
}
