package mockapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/MrEthical07/portalAuth/role"
	"github.com/MrEthical07/portalAuth/session"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"full_name"`
}

type tokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"token_type"`
}

func detail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"detail": msg})
}

func (s *Server) login(c *gin.Context) {
	logger := zerolog.Ctx(c.Request.Context())

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	acc, ok := s.lookupEmail(req.Email)
	if !ok {
		logger.Warn().Msg("login for unknown email")
		detail(c, http.StatusBadRequest, msgBadCredentials)
		return
	}
	valid, err := s.hasher.Verify(req.Password, acc.hash)
	if err != nil || !valid {
		logger.Warn().Str("user_id", acc.user.ID).Msg("login with wrong password")
		detail(c, http.StatusBadRequest, msgBadCredentials)
		return
	}

	s.issue(c, acc.user)
	logger.Info().Str("user_id", acc.user.ID).Msg("login successful")
}

func (s *Server) register(r role.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := zerolog.Ctx(c.Request.Context())

		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			detail(c, http.StatusUnprocessableEntity, err.Error())
			return
		}

		user, err := s.CreateUser(req.Email, req.Password, req.FullName, r)
		switch {
		case errors.Is(err, ErrUserExists):
			detail(c, http.StatusBadRequest, msgUserExists)
			return
		case err != nil:
			detail(c, http.StatusUnprocessableEntity, err.Error())
			return
		}

		s.issue(c, user)
		logger.Info().Str("user_id", user.ID).Str("role", r.String()).Msg("registration successful")
	}
}

func (s *Server) refresh(c *gin.Context) {
	raw, err := c.Cookie(RefreshCookie)
	if err != nil || raw == "" {
		detail(c, http.StatusUnauthorized, msgRefreshMissing)
		return
	}
	claims, err := s.tokens.ParseRefresh(raw)
	if err != nil {
		detail(c, http.StatusForbidden, msgInvalidToken)
		return
	}
	acc, ok := s.lookupID(claims.UID)
	if !ok {
		detail(c, http.StatusNotFound, msgUserNotFound)
		return
	}

	access, err := s.tokens.CreateAccess(acc.user.ID, acc.user.Role.String())
	if err != nil {
		detail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, tokenResponse{AccessToken: access, TokenType: "bearer"})
}

func (s *Server) logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(RefreshCookie, "", -1, "/", "", s.cfg.CookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"message": msgLoggedOut})
}

func (s *Server) me(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": msgTokenNotGiven})
		return
	}
	claims, err := s.tokens.ParseAccess(token)
	if err != nil {
		detail(c, http.StatusUnauthorized, msgInvalidToken)
		return
	}
	acc, found := s.lookupID(claims.UID)
	if !found {
		detail(c, http.StatusNotFound, msgUserNotFound)
		return
	}
	c.JSON(http.StatusOK, acc.user)
}

// issue writes the access token body and sets the refresh cookie.
func (s *Server) issue(c *gin.Context, user session.User) {
	access, err := s.tokens.CreateAccess(user.ID, user.Role.String())
	if err != nil {
		detail(c, http.StatusInternalServerError, err.Error())
		return
	}
	refresh, err := s.tokens.CreateRefresh(user.ID)
	if err != nil {
		detail(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(RefreshCookie, refresh, int(s.tokens.RefreshTTL().Seconds()), "/", "", s.cfg.CookieSecure, true)
	c.JSON(http.StatusOK, tokenResponse{AccessToken: access, TokenType: "bearer"})
}
