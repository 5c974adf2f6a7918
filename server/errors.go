package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/murtaza309/streemza/utils"
	Logger "github.com/murtaza309/streemza/utils/log"
)

// respondError maps err to a status code. Categorized errors carry their own
// client facing message, anything else is logged and answered with
// failureMessage.
func respondError(c *gin.Context, err error, failureMessage string) {
	switch {
	case utils.IsValidationError(err):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case utils.IsNotFoundError(err):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	case utils.IsForbiddenError(err):
		c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
	default:
		Logger.Log.WithField("path", c.FullPath()).Errorf("%s: %v", failureMessage, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": failureMessage})
	}
}
