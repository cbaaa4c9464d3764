package routes

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"eventhub/middlewares"
	"eventhub/models"
)

// fail translates an error kind into its HTTP status. Store failures are logged here, once.
func (d *deps) fail(c *gin.Context, err error) {
	if errors.Is(err, models.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid username or password"})
		return
	}

	status := http.StatusInternalServerError
	switch models.KindOf(err) {
	case models.KindNotFound:
		status = http.StatusNotFound
	case models.KindConflict:
		status = http.StatusConflict
	case models.KindValidation:
		status = http.StatusBadRequest
	default:
		d.log.Error("store failure",
			zap.String("request_id", middlewares.RequestID(c)),
			zap.String("route", c.FullPath()),
			zap.Error(err))
	}
	c.JSON(status, gin.H{"message": models.Message(err)})
}

func badRequest(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"message": "Could not parse request data."})
}

// idParam reads a positive integer path parameter; on failure it has already answered 400.
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid " + name})
		return 0, false
	}
	return id, true
}
