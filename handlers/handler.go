package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"kinship/apperrors"
	"kinship/auth"
	"kinship/middleware"
	"kinship/services"
	"kinship/utils"
)

// Presence reports whether a user currently has a live connection.
type Presence interface {
	IsOnline(userID int64) bool
}

type Handler struct {
	auth     *services.AuthService
	users    *services.UserService
	friends  *services.FriendService
	presence Presence
}

// New builds the HTTP handlers. presence may be nil.
func New(authSvc *services.AuthService, users *services.UserService, friends *services.FriendService, presence Presence) *Handler {
	return &Handler{auth: authSvc, users: users, friends: friends, presence: presence}
}

// Routes mounts the API routes on r.
func (h *Handler) Routes(r gin.IRouter, tokens middleware.TokenVerifier) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", middleware.AuthMiddleware(tokens, auth.KindRefresh), h.Refresh)
	}

	users := r.Group("/api/users")
	users.Use(middleware.AuthMiddleware(tokens, auth.KindAccess))
	{
		users.GET("", h.SearchUsers)
		users.GET("/me", h.GetCurrentUser)
		users.PATCH("/me", h.UpdateCurrentUser)
		users.GET("/user/:userId", h.GetUserByID)

		users.GET("/friends", h.GetFriends)
		users.GET("/friends/:friendId", h.GetFriendByID)
		users.POST("/friend-request", h.SendFriendRequest)
		users.GET("/friend-requests", h.GetFriendRequests)
		users.PATCH("/friend-request/:senderId/respond", h.RespondToFriendRequest)
	}
}

// idParam reads a positive integer path parameter.
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		utils.Error(c, apperrors.New(apperrors.CodeValidation, name+" must be a positive integer"))
		return 0, false
	}
	return id, true
}
