package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eventhub/models"
)

/* --------------------- Users --------------------- */

// POST /login
func (d *deps) login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	user, err := d.users.ValidateCredentials(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		d.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// POST /register
func (d *deps) register(c *gin.Context) {
	var req struct {
		Username  string `json:"username" binding:"required"`
		Password  string `json:"password" binding:"required"`
		FirstName string `json:"firstName" binding:"required"`
		LastName  string `json:"lastName" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	ctx := c.Request.Context()
	taken, err := d.users.Exists(ctx, req.Username)
	if err != nil {
		d.fail(c, models.StoreFailure("Error during registration", err))
		return
	}
	if taken {
		d.fail(c, models.Conflict("Username already exists"))
		return
	}

	u := models.User{
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if err := d.users.Create(ctx, &u); err != nil {
		d.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}
