package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eventhub/models"
)

// GET /notifications/:username  (newest first)
func (d *deps) userNotifications(c *gin.Context) {
	notes, err := d.notes.ListForUser(c.Request.Context(), c.Param("username"))
	if err != nil {
		d.fail(c, models.StoreFailure("Error fetching notifications", err))
		return
	}
	c.JSON(http.StatusOK, notes)
}

// PUT /notifications/:username/:eventID/read
func (d *deps) markRead(c *gin.Context) {
	eventID, ok := idParam(c, "eventID")
	if !ok {
		return
	}
	username := c.Param("username")
	if err := d.notes.MarkRead(c.Request.Context(), username, eventID); err != nil {
		d.fail(c, models.StoreFailure("Error updating notification", err))
		return
	}
	d.inv.Purge(c.Request.Context(), "notifications")
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read", "username": username, "eventID": eventID})
}
