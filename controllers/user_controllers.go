package controllers

import (
	"errors"
	"net/http"

	middlewares "staybook/middleware"
	"staybook/services"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	Users        *services.UserService
	CookieSecure bool
	TokenMaxAge  int
}

func NewUserController(users *services.UserService, cookieSecure bool, tokenMaxAge int) UserController {
	return UserController{
		Users:        users,
		CookieSecure: cookieSecure,
		TokenMaxAge:  tokenMaxAge,
	}
}

type GoogleLoginInput struct {
	Credential string `json:"credential" binding:"required"`
}

type LoginResponse struct {
	User  any    `json:"user"`
	Token string `json:"token"`
}

func (u UserController) setTokenCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(middlewares.CookieName, token, maxAge, "/", "", u.CookieSecure, true)
}

// Register godoc
// @Summary Register a new account
// @Tags users
// @Accept json
// @Produce json
// @Param input body services.RegisterInput true "Account"
// @Success 201 {object} models.User
// @Failure 400 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Router /register [post]
func (u UserController) Register(c *gin.Context) {
	var input services.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	user, err := u.Users.Register(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "Account created", user)
}

// Login godoc
// @Summary Log in with email and password
// @Description Sets the token cookie and also returns the token in the body.
// @Tags users
// @Accept json
// @Produce json
// @Param input body services.LoginInput true "Credentials"
// @Success 200 {object} LoginResponse
// @Failure 401 {object} map[string]any
// @Router /login [post]
func (u UserController) Login(c *gin.Context) {
	var input services.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	user, token, err := u.Users.Login(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	u.setTokenCookie(c, token, u.TokenMaxAge)
	respondOK(c, http.StatusOK, "Login successful", LoginResponse{User: user, Token: token})
}

// GoogleLogin godoc
// @Summary Log in with a Google ID token
// @Tags users
// @Accept json
// @Produce json
// @Param input body GoogleLoginInput true "Google credential"
// @Success 200 {object} LoginResponse
// @Failure 401 {object} map[string]any
// @Router /google/login [post]
func (u UserController) GoogleLogin(c *gin.Context) {
	var input GoogleLoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	user, token, err := u.Users.GoogleLogin(c.Request.Context(), input.Credential)
	if err != nil {
		respondError(c, err)
		return
	}

	u.setTokenCookie(c, token, u.TokenMaxAge)
	respondOK(c, http.StatusOK, "Login successful", LoginResponse{User: user, Token: token})
}

// Logout godoc
// @Summary Log out
// @Description Revokes the current token when it is still valid and clears the cookie.
// @Tags users
// @Produce json
// @Success 200 {object} map[string]any
// @Router /logout [get]
func (u UserController) Logout(c *gin.Context) {
	u.setTokenCookie(c, "", -1)

	token := middlewares.TokenFromRequest(c)
	if token != "" {
		err := u.Users.Logout(c.Request.Context(), token)
		if err != nil && !errors.Is(err, services.ErrUnauthenticated) {
			respondError(c, err)
			return
		}
	}

	respondOK(c, http.StatusOK, "Logged out", nil)
}

// Profile godoc
// @Summary Current user's profile
// @Tags users
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} map[string]any
// @Router /profile [get]
func (u UserController) Profile(c *gin.Context) {
	user, err := u.Users.Profile(c.Request.Context(), middlewares.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Profile loaded", user)
}

// UpdateUser godoc
// @Summary Update name, picture or password
// @Tags users
// @Accept json
// @Produce json
// @Param input body services.UserUpdate true "Fields to change"
// @Success 200 {object} models.User
// @Failure 400 {object} map[string]any
// @Router /update-user [put]
func (u UserController) UpdateUser(c *gin.Context) {
	var input services.UserUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	user, err := u.Users.Update(c.Request.Context(), middlewares.CurrentUserID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Profile updated", user)
}
