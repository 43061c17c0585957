package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/modex/screening-booking/internal/config"
	"github.com/modex/screening-booking/internal/utils"
)

// AuthHandler issues access tokens for the mock login.  Customers are not
// registered anywhere: any non-empty id is accepted as a USER.  ADMIN logins
// must match the configured bcrypt hash and are refused when none is set.
type AuthHandler struct {
	Cfg config.AuthConfig
}

func NewAuthHandler(cfg config.AuthConfig) *AuthHandler { return &AuthHandler{Cfg: cfg} }

type loginReq struct {
	ID       string `json:"id" validate:"required,max=200"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type userPart struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

type loginResp struct {
	User   userPart          `json:"user"`
	Access utils.AccessToken `json:"access"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	req.ID = strings.TrimSpace(req.ID)
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if role != utils.RoleAdmin {
		role = utils.RoleUser
	}
	if role == utils.RoleAdmin &&
		(h.Cfg.AdminPasswordHash == "" || !utils.VerifyPassword(h.Cfg.AdminPasswordHash, req.Password)) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid credentials"})
	}

	ttl := time.Duration(h.Cfg.AccessTTLMin) * time.Minute
	if ttl <= 0 {
		ttl = time.Hour
	}
	tok, err := utils.NewAccessToken(h.Cfg.JWTSecret, req.ID, role, ttl)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not issue token"})
	}
	return c.JSON(http.StatusOK, loginResp{User: userPart{ID: req.ID, Role: role}, Access: tok})
}
