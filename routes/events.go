package routes

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"eventhub/models"
)

/* -------------------- Events -------------------- */

// events, admin event counts, notifications and RSVPs all change when an event does.
var eventNamespaces = []string{"events", "groups", "notifications", "rsvp"}

// GET /events/user/:username
func (d *deps) userEvents(c *gin.Context) {
	events, err := d.events.ListForUser(c.Request.Context(), c.Param("username"))
	if err != nil {
		d.fail(c, models.StoreFailure("Error fetching events", err))
		return
	}
	c.JSON(http.StatusOK, events)
}

// GET /events/group/:groupID
func (d *deps) groupEvents(c *gin.Context) {
	groupID, ok := idParam(c, "groupID")
	if !ok {
		return
	}
	events, err := d.events.ListForGroup(c.Request.Context(), groupID)
	if err != nil {
		d.fail(c, models.StoreFailure("Error fetching events", err))
		return
	}
	c.JSON(http.StatusOK, events)
}

// GET /events/:eventID
func (d *deps) getEvent(c *gin.Context) {
	eventID, ok := idParam(c, "eventID")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	ev, err := d.events.GetByID(ctx, eventID)
	if err != nil {
		d.fail(c, models.StoreFailure("Error fetching event", err))
		return
	}
	groups, err := d.events.GroupsFor(ctx, eventID)
	if err != nil {
		d.fail(c, models.StoreFailure("Error fetching event", err))
		return
	}
	c.JSON(http.StatusOK, models.EventDetail{Event: ev, Groups: groups})
}

// POST /events/group/:groupID
func (d *deps) createGroupEvent(c *gin.Context) {
	groupID, ok := idParam(c, "groupID")
	if !ok {
		return
	}
	var req struct {
		Date        string `json:"date" binding:"required"`
		Description string `json:"description" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	date, err := models.ParseDate(req.Date)
	if err != nil {
		d.fail(c, err)
		return
	}

	out, err := d.eventFlow.CreateForGroup(c.Request.Context(), groupID, date, req.Description)
	if err != nil {
		d.fail(c, err)
		return
	}
	d.inv.Purge(c.Request.Context(), eventNamespaces...)
	c.JSON(http.StatusCreated, out)
}

// POST /events/:username
func (d *deps) createUserEvent(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
		Date string `json:"date" binding:"required"`
		Time string `json:"time" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	out, err := d.eventFlow.CreateForUser(c.Request.Context(), c.Param("username"), req.Name, req.Date, req.Time)
	if err != nil {
		d.fail(c, models.StoreFailure("Error creating event", err))
		return
	}
	d.inv.Purge(c.Request.Context(), eventNamespaces...)
	c.JSON(http.StatusCreated, out)
}

// PUT /events/:username/:eventID
func (d *deps) updateUserEvent(c *gin.Context) {
	eventID, ok := idParam(c, "eventID")
	if !ok {
		return
	}
	var req struct {
		Name *string `json:"name"`
		Date *string `json:"date"`
		Time *string `json:"time"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	out, err := d.eventFlow.UpdateForUser(c.Request.Context(), c.Param("username"), eventID, req.Name, req.Date, req.Time)
	if err != nil {
		d.fail(c, models.StoreFailure("Error updating event", err))
		return
	}
	d.inv.Purge(c.Request.Context(), eventNamespaces...)
	c.JSON(http.StatusOK, out)
}

// DELETE /events/:username/:eventID
func (d *deps) deleteUserEvent(c *gin.Context) {
	eventID, ok := idParam(c, "eventID")
	if !ok {
		return
	}
	if err := d.eventFlow.DeleteForUser(c.Request.Context(), c.Param("username"), eventID); err != nil {
		d.fail(c, err)
		return
	}
	d.inv.Purge(c.Request.Context(), eventNamespaces...)
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Event %d deleted successfully", eventID)})
}
