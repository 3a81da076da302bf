package handlers

import (
	"unicode"

	"github.com/gin-gonic/gin"

	"kinship/middleware"
	"kinship/services"
	"kinship/utils"
)

type RegisterRequest struct {
	FirstName string `json:"first_name" binding:"required,max=50"`
	LastName  string `json:"last_name" binding:"required,max=50"`
	Age       int    `json:"age" binding:"required,gte=12"`
	Email     string `json:"email" binding:"required,email,max=255"`
	Password  string `json:"password" binding:"required,min=6,max=50"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=50"`
}

const passwordRuleMessage = "Password must contain at least one uppercase letter, one lowercase letter, one number, and one special character."

// strongPassword requires one upper, one lower, one digit and one of
// @$!%*?& with nothing outside those classes.
func strongPassword(password string) bool {
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case r <= unicode.MaxASCII && unicode.IsUpper(r):
			upper = true
		case r <= unicode.MaxASCII && unicode.IsLower(r):
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case r == '@' || r == '$' || r == '!' || r == '%' || r == '*' || r == '?' || r == '&':
			special = true
		default:
			return false
		}
	}
	return upper && lower && digit && special
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}
	if !strongPassword(req.Password) {
		utils.BadRequest(c, passwordRuleMessage)
		return
	}

	confirmation, err := h.auth.Register(c.Request.Context(), services.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Age:       req.Age,
		Password:  req.Password,
	})
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Created(c, confirmation.Message, confirmation)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	tokens, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, tokens)
}

// Refresh runs behind the refresh-token guard.
func (h *Handler) Refresh(c *gin.Context) {
	tokens, err := h.auth.Refresh(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, tokens)
}
