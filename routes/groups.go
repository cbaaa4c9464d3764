package routes

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"eventhub/models"
)

/* --------------------- Groups -------------------- */

// GET /groups/
func (d *deps) listGroupIDs(c *gin.Context) {
	ids, err := d.groups.AllIDs(c.Request.Context())
	if err != nil {
		d.fail(c, models.StoreFailure("Error fetching groups", err))
		return
	}
	c.JSON(http.StatusOK, ids)
}

// POST /groups/by_id/  body: [1, 2, 3]
func (d *deps) groupsByID(c *gin.Context) {
	var ids []int64
	if err := c.ShouldBindJSON(&ids); err != nil {
		badRequest(c)
		return
	}
	groups, err := d.groups.GetByIDs(c.Request.Context(), ids)
	if err != nil {
		d.fail(c, models.StoreFailure("Error fetching groups", err))
		return
	}
	c.JSON(http.StatusOK, groups)
}

// POST /groups/create
func (d *deps) createGroup(c *gin.Context) {
	var req struct {
		GroupName     string `json:"groupName" binding:"required"`
		Description   string `json:"description"`
		AdminUsername string `json:"adminUsername" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	g, err := d.groupFlow.Create(c.Request.Context(), req.GroupName, req.Description, req.AdminUsername)
	if err != nil {
		d.fail(c, err)
		return
	}
	d.inv.Purge(c.Request.Context(), "groups", "events")
	c.JSON(http.StatusCreated, g)
}

// POST /groups/join/:groupID
func (d *deps) joinGroup(c *gin.Context) {
	groupID, username, ok := membershipRequest(c)
	if !ok {
		return
	}
	if err := d.groupFlow.Join(c.Request.Context(), username, groupID); err != nil {
		d.fail(c, models.StoreFailure("Error joining group", err))
		return
	}
	d.inv.Purge(c.Request.Context(), "groups", "events")
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("User %s joined group %d", username, groupID)})
}

// POST /groups/leave/:groupID
func (d *deps) leaveGroup(c *gin.Context) {
	groupID, username, ok := membershipRequest(c)
	if !ok {
		return
	}
	if err := d.groupFlow.Leave(c.Request.Context(), username, groupID); err != nil {
		d.fail(c, models.StoreFailure("Error leaving group", err))
		return
	}
	d.inv.Purge(c.Request.Context(), "groups", "events")
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("User %s left group %d", username, groupID)})
}

// membershipRequest reads the group id from the path and the username from ?username= or a
// JSON body {"username": ...}.
func membershipRequest(c *gin.Context) (int64, string, bool) {
	groupID, ok := idParam(c, "groupID")
	if !ok {
		return 0, "", false
	}
	username := c.Query("username")
	if username == "" {
		var body struct {
			Username string `json:"username"`
		}
		_ = c.ShouldBindJSON(&body)
		username = body.Username
	}
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "username is required"})
		return 0, "", false
	}
	return groupID, username, true
}

// GET /groups/user/:username
func (d *deps) userGroups(c *gin.Context) {
	groups, err := d.groups.ListForUser(c.Request.Context(), c.Param("username"))
	if err != nil {
		d.fail(c, models.StoreFailure("Error fetching groups", err))
		return
	}
	c.JSON(http.StatusOK, groups)
}

// GET /groups/admin/:username
func (d *deps) adminGroups(c *gin.Context) {
	groups, err := d.groups.ListAdminGroups(c.Request.Context(), c.Param("username"))
	if err != nil {
		d.fail(c, models.StoreFailure("Error fetching admin groups", err))
		return
	}
	c.JSON(http.StatusOK, groups)
}
