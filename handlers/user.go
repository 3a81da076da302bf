package handlers

import (
	"github.com/gin-gonic/gin"

	"kinship/middleware"
	"kinship/models"
	"kinship/utils"
)

type UpdateUserRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,min=1,max=50"`
	LastName  *string `json:"last_name" binding:"omitempty,min=1,max=50"`
	Age       *int    `json:"age" binding:"omitempty,gte=12"`
	Email     *string `json:"email" binding:"omitempty,email,max=255"`
}

func (h *Handler) SearchUsers(c *gin.Context) {
	users, err := h.users.Search(c.Request.Context(), middleware.GetUserID(c), c.Query("search"))
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, users)
}

func (h *Handler) GetCurrentUser(c *gin.Context) {
	user, err := h.users.GetUser(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, user)
}

func (h *Handler) GetUserByID(c *gin.Context) {
	id, ok := idParam(c, "userId")
	if !ok {
		return
	}

	user, err := h.users.GetUser(c.Request.Context(), id)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, user)
}

func (h *Handler) UpdateCurrentUser(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), middleware.GetUserID(c), models.UserUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Age:       req.Age,
	})
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.SuccessMessage(c, "Profile updated.", user)
}
