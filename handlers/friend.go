package handlers

import (
	"github.com/gin-gonic/gin"

	"kinship/middleware"
	"kinship/utils"
)

type SendFriendRequestRequest struct {
	ReceiverID int64 `json:"receiverId" binding:"required,gt=0"`
}

type RespondFriendRequestRequest struct {
	Action string `json:"action" binding:"required,oneof=accept reject"`
}

func (h *Handler) GetFriends(c *gin.Context) {
	friends, err := h.friends.GetFriends(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		utils.Error(c, err)
		return
	}

	if h.presence != nil {
		for i := range friends {
			friends[i].Online = h.presence.IsOnline(friends[i].ID)
		}
	}
	utils.Success(c, friends)
}

func (h *Handler) GetFriendByID(c *gin.Context) {
	friendID, ok := idParam(c, "friendId")
	if !ok {
		return
	}

	friend, err := h.friends.GetFriendByID(c.Request.Context(), middleware.GetUserID(c), friendID)
	if err != nil {
		utils.Error(c, err)
		return
	}

	if h.presence != nil {
		friend.Online = h.presence.IsOnline(friend.ID)
	}
	utils.Success(c, friend)
}

func (h *Handler) SendFriendRequest(c *gin.Context) {
	var req SendFriendRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	outcome, err := h.friends.SendFriendRequest(c.Request.Context(), middleware.GetUserID(c), req.ReceiverID)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.SuccessMessage(c, outcome.Message, outcome)
}

func (h *Handler) GetFriendRequests(c *gin.Context) {
	requests, err := h.friends.GetFriendRequests(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, requests)
}

func (h *Handler) RespondToFriendRequest(c *gin.Context) {
	senderID, ok := idParam(c, "senderId")
	if !ok {
		return
	}

	var req RespondFriendRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Action must be either accept or reject.")
		return
	}

	outcome, err := h.friends.RespondToFriendRequest(c.Request.Context(), middleware.GetUserID(c), senderID, req.Action)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.SuccessMessage(c, outcome.Message, outcome)
}
