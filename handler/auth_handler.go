package handler

import (
	"go-property-api/common"
	"go-property-api/model"
	"go-property-api/service"
	"net/http"
)

type AuthHandler struct {
	auth    *service.AuthService
	users   *service.UserService
	tempDir string
}

func NewAuthHandler(auth *service.AuthService, users *service.UserService, tempDir string) *AuthHandler {
	return &AuthHandler{auth: auth, users: users, tempDir: tempDir}
}

type userData struct {
	User *model.User `json:"user"`
}

type sessionData struct {
	User         *model.User `json:"user,omitempty"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

// Register godoc
// @Summary      Register a new user
// @Description  Creates a user from a multipart form. The avatar file is optional.
// @Tags         auth
// @Accept       mpfd
// @Produce      json
// @Param        fullName  formData  string  true   "Full name"
// @Param        email     formData  string  true   "Email"
// @Param        username  formData  string  true   "Username"
// @Param        password  formData  string  true   "Password"
// @Param        phone     formData  string  true   "Phone number"
// @Param        isOwner   formData  bool    false  "Registers a property owner"
// @Param        avatar    formData  file    false  "Avatar image"
// @Success      200  {object}  common.APIResponse
// @Failure      400  {object}  common.AppError
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) *common.AppError {
	paths, appErr := receiveFiles(w, r, "avatar", 1, h.tempDir)
	defer cleanupUpload(r, paths)
	if appErr != nil {
		return appErr
	}

	var req model.RegisterRequest
	if appErr := common.ValidateAndDecode(w, r, &req); appErr != nil {
		return appErr
	}

	user, err := h.auth.Register(r.Context(), req, firstPath(paths))
	if err != nil {
		return serviceError(err, "Something went wrong while registering the user")
	}

	common.SendJSON(w, http.StatusOK, "User registered Successfully", userData{User: user})
	return nil
}

// Login godoc
// @Summary      Log in
// @Description  Accepts an email or username as identifier and sets the session cookies.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        credentials  body  model.LoginRequest  true  "Login credentials"
// @Success      200  {object}  common.APIResponse
// @Failure      401  {object}  common.AppError
// @Failure      404  {object}  common.AppError
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.LoginRequest
	if appErr := common.ValidateAndDecode(w, r, &req); appErr != nil {
		return appErr
	}

	session, err := h.auth.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		return serviceError(err, "Something went wrong while logging in")
	}

	setSessionCookies(w, session.AccessToken, session.RefreshToken)
	common.SendJSON(w, http.StatusOK, "User logged in successfully", sessionData{
		User:         session.User,
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
	})
	return nil
}

// Logout godoc
// @Summary      Log out
// @Description  Revokes the refresh token and clears the session cookies.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  common.APIResponse
// @Failure      401  {object}  common.AppError
// @Security     BearerAuth
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) *common.AppError {
	user, appErr := currentUser(r)
	if appErr != nil {
		return appErr
	}

	if err := h.auth.Logout(r.Context(), user.ID); err != nil {
		return serviceError(err, "Something went wrong while logging out")
	}

	clearSessionCookies(w)
	common.SendJSON(w, http.StatusOK, "User logged out", nil)
	return nil
}

// ChangePassword godoc
// @Summary      Change password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        passwords  body  model.ChangePasswordRequest  true  "Current and new password"
// @Success      200  {object}  common.APIResponse
// @Failure      401  {object}  common.AppError
// @Security     BearerAuth
// @Router       /api/auth/change-password [post]
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) *common.AppError {
	user, appErr := currentUser(r)
	if appErr != nil {
		return appErr
	}

	var req model.ChangePasswordRequest
	if appErr := common.ValidateAndDecode(w, r, &req); appErr != nil {
		return appErr
	}

	if err := h.auth.ChangePassword(r.Context(), user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return serviceError(err, "Something went wrong while changing the password")
	}

	clearCookie(w, RefreshTokenCookie)
	common.SendJSON(w, http.StatusOK, "Password changed successfully", nil)
	return nil
}

// UpdateUser godoc
// @Summary      Update profile
// @Description  Replaces the non-empty profile fields and, when sent, the avatar.
// @Tags         auth
// @Accept       mpfd
// @Produce      json
// @Param        fullName  formData  string  false  "Full name"
// @Param        username  formData  string  false  "Username"
// @Param        avatar    formData  file    false  "Avatar image"
// @Success      200  {object}  common.APIResponse
// @Failure      400  {object}  common.AppError
// @Security     BearerAuth
// @Router       /api/auth/update-user [post]
func (h *AuthHandler) UpdateUser(w http.ResponseWriter, r *http.Request) *common.AppError {
	user, appErr := currentUser(r)
	if appErr != nil {
		return appErr
	}

	paths, appErr := receiveFiles(w, r, "avatar", 1, h.tempDir)
	defer cleanupUpload(r, paths)
	if appErr != nil {
		return appErr
	}

	var req model.UpdateUserRequest
	if appErr := common.ValidateAndDecode(w, r, &req); appErr != nil {
		return appErr
	}

	updated, err := h.users.UpdateUser(r.Context(), user.ID, req, firstPath(paths))
	if err != nil {
		return serviceError(err, "Something went wrong while updating the user")
	}

	common.SendJSON(w, http.StatusOK, "User details updated", userData{User: updated})
	return nil
}

// RefreshSession godoc
// @Summary      Rotate the session tokens
// @Description  Exchanges the refresh token cookie for a new token pair. A refresh token works once.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  common.APIResponse
// @Failure      401  {object}  common.AppError
// @Router       /api/auth/refresh-session [get]
func (h *AuthHandler) RefreshSession(w http.ResponseWriter, r *http.Request) *common.AppError {
	session, err := h.auth.Refresh(r.Context(), cookieValue(r, RefreshTokenCookie))
	if err != nil {
		return serviceError(err, "Something went wrong while refreshing the session")
	}

	setSessionCookies(w, session.AccessToken, session.RefreshToken)
	common.SendJSON(w, http.StatusOK, "Access token refreshed", sessionData{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
	})
	return nil
}

// Me godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  common.APIResponse
// @Failure      401  {object}  common.AppError
// @Security     BearerAuth
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) *common.AppError {
	user, appErr := currentUser(r)
	if appErr != nil {
		return appErr
	}
	common.SendJSON(w, http.StatusOK, "User fetched successfully", userData{User: user})
	return nil
}

// GetUserByID godoc
// @Summary      Fetch a user
// @Tags         auth
// @Produce      json
// @Param        id   path  string  true  "User ID"
// @Success      200  {object}  common.APIResponse
// @Failure      404  {object}  common.AppError
// @Security     BearerAuth
// @Router       /api/auth/user/{id} [post]
func (h *AuthHandler) GetUserByID(w http.ResponseWriter, r *http.Request) *common.AppError {
	user, err := h.users.GetUserByID(r.Context(), r.PathValue("id"))
	if err != nil {
		return serviceError(err, "Something went wrong while fetching the user")
	}
	common.SendJSON(w, http.StatusOK, "User fetched successfully", userData{User: user})
	return nil
}
