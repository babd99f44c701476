package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"productflow-backend/internal/domains/product/model"
	"productflow-backend/internal/shared/response"
	"productflow-backend/pkg/jwt"
)

// AuthHandler issues role tokens. The workflow has three fixed roles picked
// at sign-in; there is no user directory behind them.
type AuthHandler struct {
	jwtManager *jwt.Manager
}

func NewAuthHandler(jwtManager *jwt.Manager) *AuthHandler {
	return &AuthHandler{jwtManager: jwtManager}
}

// ========== POST /v1/auth/role ==========
func (h *AuthHandler) SelectRole(c *gin.Context) {
	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	role := model.Role(req.Role)
	if !role.IsValid() {
		response.ErrorResponse(c, http.StatusBadRequest, model.ErrCodeInvalidRole, "unknown role: "+req.Role)
		return
	}

	// Session id stands in for a user id; tokens are otherwise anonymous.
	token, err := h.jwtManager.GenerateAccessToken(uuid.New().String(), string(role))
	if err != nil {
		response.InternalServerError(c, "failed to issue token")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token": token,
		"role":  role,
		"label": role.Label(),
	})
}

// ========== GET /v1/auth/roles ==========
func (h *AuthHandler) ListRoles(c *gin.Context) {
	roles := []gin.H{}
	for _, r := range model.AllRoles() {
		roles = append(roles, gin.H{"role": r, "label": r.Label()})
	}
	response.Success(c, http.StatusOK, roles)
}
