package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eventhub/models"
)

/* --------------------- RSVPs --------------------- */

// GET /rsvp/:eventID/:username
func (d *deps) checkRSVP(c *gin.Context) {
	eventID, ok := idParam(c, "eventID")
	if !ok {
		return
	}
	username := c.Param("username")
	yes, err := d.rsvps.Exists(c.Request.Context(), eventID, username)
	if err != nil {
		d.fail(c, models.StoreFailure("Error checking RSVP", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"eventID": eventID, "username": username, "isRSVPed": yes})
}

// POST /rsvp/:eventID  body: {"username": "..."}
func (d *deps) addRSVP(c *gin.Context) {
	eventID, ok := idParam(c, "eventID")
	if !ok {
		return
	}
	var req struct {
		Username string `json:"username" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	ctx := c.Request.Context()
	found, err := d.events.Exists(ctx, eventID)
	if err != nil {
		d.fail(c, models.StoreFailure("Error adding RSVP", err))
		return
	}
	if !found {
		d.fail(c, models.NotFound("Event not found"))
		return
	}
	already, err := d.rsvps.Exists(ctx, eventID, req.Username)
	if err != nil {
		d.fail(c, models.StoreFailure("Error adding RSVP", err))
		return
	}
	if already {
		d.fail(c, models.Conflict("Already RSVPed to this event"))
		return
	}
	// 主鍵衝突仍會回 Conflict（並發時）
	if err := d.rsvps.Add(ctx, eventID, req.Username); err != nil {
		d.fail(c, models.StoreFailure("Error adding RSVP", err))
		return
	}
	d.inv.Purge(ctx, "rsvp")
	c.JSON(http.StatusCreated, gin.H{"message": "RSVP successful", "eventID": eventID, "username": req.Username})
}

// DELETE /rsvp/:eventID/:username
func (d *deps) removeRSVP(c *gin.Context) {
	eventID, ok := idParam(c, "eventID")
	if !ok {
		return
	}
	username := c.Param("username")
	if err := d.rsvps.Remove(c.Request.Context(), eventID, username); err != nil {
		d.fail(c, models.StoreFailure("Error removing RSVP", err))
		return
	}
	d.inv.Purge(c.Request.Context(), "rsvp")
	c.JSON(http.StatusOK, gin.H{"message": "RSVP removed successfully", "eventID": eventID, "username": username})
}
