// file: router/router_test.go

package router_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"go-property-api/config"
	"go-property-api/handler"
	"go-property-api/logger"
	"go-property-api/media"
	"go-property-api/model"
	"go-property-api/router"
	"go-property-api/service"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	logger.Init()
	logger.Log.SetLevel(logrus.ErrorLevel)
	config.AppConfig.BcryptCost = bcrypt.MinCost
	config.AppConfig.Server.CookieSecure = true
	os.Exit(m.Run())
}

// --- Test Helper Functions ---

type testAPI struct {
	router http.Handler
	users  *memUsers
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	users := newMemUsers()
	properties := newMemProperties()
	uploader := media.WithCleanup(cdnUploader{})
	tokens := service.NewTokenService("access-secret", 15*time.Minute, "refresh-secret", 24*time.Hour)

	authService := service.NewAuthService(users, tokens, uploader)
	userService := service.NewUserService(users, uploader)
	propertyService := service.NewPropertyService(properties, uploader)
	tempDir := t.TempDir()

	return &testAPI{
		users: users,
		router: router.NewRouter(router.Deps{
			Auth:        handler.NewAuthHandler(authService, userService, tempDir),
			Properties:  handler.NewPropertyHandler(propertyService, tempDir),
			AuthService: authService,
			Metrics:     handler.NewMetrics(),
			CORSOrigin:  "https://app.example.com",
		}),
	}
}

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Errors     []string        `json:"errors"`
	Success    bool            `json:"success"`
}

type session struct {
	UserID  string
	Access  string
	Refresh string
}

func (s session) cookies() []*http.Cookie {
	return []*http.Cookie{
		{Name: handler.AccessTokenCookie, Value: s.Access},
		{Name: handler.RefreshTokenCookie, Value: s.Refresh},
	}
}

func (a *testAPI) do(t *testing.T, req *http.Request, cookies ...*http.Cookie) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)

	var env envelope
	if strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	}
	return rr, env
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

type upload struct {
	field, name string
	content     []byte
}

func multipartRequest(t *testing.T, method, path string, fields map[string]string, files ...upload) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = fw.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

var pngBytes = []byte("\x89PNG\r\n\x1a\nfake-image-data")

func (a *testAPI) register(t *testing.T, fullName, email, username, password string, files ...upload) model.User {
	t.Helper()
	req := multipartRequest(t, http.MethodPost, "/api/auth/register", map[string]string{
		"fullName": fullName,
		"email":    email,
		"username": username,
		"password": password,
		"phone":    "5551234567",
		"isOwner":  "true",
	}, files...)
	rr, env := a.do(t, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var data struct {
		User model.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.User
}

func (a *testAPI) login(t *testing.T, identifier, password string) session {
	t.Helper()
	body := fmt.Sprintf(`{"identifier":%q,"password":%q}`, identifier, password)
	rr, env := a.do(t, jsonRequest(http.MethodPost, "/api/auth/login", body))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var data struct {
		User         model.User `json:"user"`
		AccessToken  string     `json:"accessToken"`
		RefreshToken string     `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return session{UserID: data.User.ID.Hex(), Access: data.AccessToken, Refresh: data.RefreshToken}
}

func (a *testAPI) refresh(t *testing.T, refreshToken string) (*httptest.ResponseRecorder, session) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/refresh-session", nil)
	rr, env := a.do(t, req, &http.Cookie{Name: handler.RefreshTokenCookie, Value: refreshToken})

	var data struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	if rr.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(env.Data, &data))
	}
	return rr, session{Access: data.AccessToken, Refresh: data.RefreshToken}
}

func responseCookie(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func propertyFields(title string) map[string]string {
	return map[string]string{
		"title":        title,
		"address":      "12 Harbour St",
		"propertyType": "Desk",
		"area":         "12.5",
		"tags":         "quiet, downtown",
		"hasParking":   "true",
		"isAvailable":  "true",
		"capacity":     "4",
		"leaseTerm":    "Monthly",
		"price":        "350",
	}
}

func (a *testAPI) createProperty(t *testing.T, s session, title string, images int) model.Property {
	t.Helper()
	var files []upload
	for i := 0; i < images; i++ {
		files = append(files, upload{"images", fmt.Sprintf("photo%d.png", i), pngBytes})
	}
	req := multipartRequest(t, http.MethodPost, "/api/properties/", propertyFields(title), files...)
	rr, env := a.do(t, req, s.cookies()...)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var p model.Property
	require.NoError(t, json.Unmarshal(env.Data, &p))
	return p
}

// --- Test Suites ---

func TestHealthCheck_Integration(t *testing.T) {
	api := newTestAPI(t)
	req, _ := http.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()
	api.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	expectedBody := `{"status":"API is healthy and running"}`
	assert.JSONEq(t, expectedBody, rr.Body.String())
}

func TestRegister_Integration(t *testing.T) {
	api := newTestAPI(t)

	t.Run("success strips secrets and normalizes identity", func(t *testing.T) {
		req := multipartRequest(t, http.MethodPost, "/api/auth/register", map[string]string{
			"fullName": "Ann Lee",
			"email":    "Ann@Example.com",
			"username": "AnnL",
			"password": "s3cret-pass",
			"phone":    "5551234567",
		})
		rr, env := api.do(t, req)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.True(t, env.Success)

		var data map[string]map[string]interface{}
		require.NoError(t, json.Unmarshal(env.Data, &data))
		user := data["user"]
		assert.Equal(t, "annl", user["username"])
		assert.Equal(t, "ann@example.com", user["email"])
		assert.Equal(t, "https://ui-avatars.com/api/?name=Ann+Lee", user["avatar"])
		assert.NotContains(t, user, "password")
		assert.NotContains(t, user, "refreshToken")
	})

	t.Run("json body with a numeric phone", func(t *testing.T) {
		body := `{"fullName":"Cy Park","email":"cy@example.com","username":"cypark","password":"pw","phone":5551234567}`
		rr, env := api.do(t, jsonRequest(http.MethodPost, "/api/auth/register", body))
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var data struct {
			User model.User `json:"user"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, int64(5551234567), data.User.Phone)
	})

	t.Run("duplicate username is rejected", func(t *testing.T) {
		req := multipartRequest(t, http.MethodPost, "/api/auth/register", map[string]string{
			"fullName": "Other Ann",
			"email":    "other@example.com",
			"username": "annl",
			"password": "pw",
			"phone":    "5550000000",
		})
		rr, env := api.do(t, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.False(t, env.Success)
		assert.Equal(t, "User already exists", env.Message)
	})

	t.Run("missing fields are reported", func(t *testing.T) {
		req := multipartRequest(t, http.MethodPost, "/api/auth/register", map[string]string{
			"fullName": "No Email",
			"username": "noemail",
			"password": "pw",
			"phone":    "5550000000",
		})
		rr, env := api.do(t, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.NotEmpty(t, env.Errors)
	})

	t.Run("non-image avatar is refused", func(t *testing.T) {
		req := multipartRequest(t, http.MethodPost, "/api/auth/register", map[string]string{
			"fullName": "Eve Page",
			"email":    "eve@example.com",
			"username": "evepage",
			"password": "pw",
			"phone":    "5550000001",
		}, upload{"avatar", "me.png", []byte("<html><body onload=alert(1)></body></html>")})
		rr, _ := api.do(t, req)
		assert.Equal(t, http.StatusUnsupportedMediaType, rr.Code)
	})

	t.Run("avatar upload is used when sent", func(t *testing.T) {
		user := api.register(t, "Bo Chen", "bo@example.com", "bochen", "pw",
			upload{"avatar", "me.png", pngBytes})
		assert.True(t, strings.HasPrefix(user.Avatar, "https://cdn.example.com/"), user.Avatar)
		assert.True(t, strings.HasSuffix(user.Avatar, ".png"), user.Avatar)
	})
}

func TestLogin_Integration(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "Ann Lee", "ann@example.com", "annl", "s3cret-pass")

	t.Run("by username sets session cookies", func(t *testing.T) {
		body := `{"identifier":"annl","password":"s3cret-pass"}`
		rr, env := api.do(t, jsonRequest(http.MethodPost, "/api/auth/login", body))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, env.Success)

		access := responseCookie(rr, handler.AccessTokenCookie)
		refresh := responseCookie(rr, handler.RefreshTokenCookie)
		require.NotNil(t, access)
		require.NotNil(t, refresh)
		assert.True(t, access.HttpOnly)
		assert.True(t, access.Secure)
		assert.True(t, refresh.HttpOnly)
		assert.NotEmpty(t, refresh.Value)
	})

	t.Run("by email", func(t *testing.T) {
		s := api.login(t, "ANN@example.com", "s3cret-pass")
		assert.NotEmpty(t, s.Access)
	})

	t.Run("wrong password", func(t *testing.T) {
		rr, env := api.do(t, jsonRequest(http.MethodPost, "/api/auth/login", `{"identifier":"annl","password":"nope"}`))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.False(t, env.Success)
	})

	t.Run("unknown user", func(t *testing.T) {
		rr, _ := api.do(t, jsonRequest(http.MethodPost, "/api/auth/login", `{"identifier":"ghost","password":"x"}`))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("a new login invalidates the previous refresh token", func(t *testing.T) {
		first := api.login(t, "annl", "s3cret-pass")
		api.login(t, "annl", "s3cret-pass")
		rr, _ := api.refresh(t, first.Refresh)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestRefreshSession_Integration(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "Ann Lee", "ann@example.com", "annl", "s3cret-pass")
	s := api.login(t, "annl", "s3cret-pass")

	rr, rotated := api.refresh(t, s.Refresh)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.NotEqual(t, s.Refresh, rotated.Refresh)
	assert.NotEqual(t, s.Access, rotated.Access)
	assert.Equal(t, rotated.Refresh, responseCookie(rr, handler.RefreshTokenCookie).Value)

	t.Run("the old refresh token is spent", func(t *testing.T) {
		rr, _ := api.refresh(t, s.Refresh)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("the rotated token works once", func(t *testing.T) {
		rr, _ := api.refresh(t, rotated.Refresh)
		assert.Equal(t, http.StatusOK, rr.Code)
		rr, _ = api.refresh(t, rotated.Refresh)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("missing cookie", func(t *testing.T) {
		rr, _ := api.do(t, httptest.NewRequest(http.MethodGet, "/api/auth/refresh-session", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("an access token is not a refresh token", func(t *testing.T) {
		rr, _ := api.refresh(t, s.Access)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestLogout_Integration(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "Ann Lee", "ann@example.com", "annl", "s3cret-pass")
	s := api.login(t, "annl", "s3cret-pass")

	rr, env := api.do(t, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil), s.cookies()...)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.True(t, env.Success)
	for _, name := range []string{handler.AccessTokenCookie, handler.RefreshTokenCookie} {
		c := responseCookie(rr, name)
		require.NotNil(t, c, name)
		assert.Less(t, c.MaxAge, 0, name)
	}

	rr, _ = api.refresh(t, s.Refresh)
	assert.Equal(t, http.StatusUnauthorized, rr.Code, "refresh token should be revoked after logout")

	t.Run("logging out twice is harmless", func(t *testing.T) {
		rr, _ := api.do(t, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil), s.cookies()...)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("requires authentication", func(t *testing.T) {
		rr, _ := api.do(t, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestChangePassword_Integration(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "Ann Lee", "ann@example.com", "annl", "old-pass")
	s := api.login(t, "annl", "old-pass")

	t.Run("wrong current password", func(t *testing.T) {
		body := `{"currentPassword":"guess","newPassword":"new-pass"}`
		rr, _ := api.do(t, jsonRequest(http.MethodPost, "/api/auth/change-password", body), s.cookies()...)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	body := `{"currentPassword":"old-pass","newPassword":"new-pass"}`
	req := jsonRequest(http.MethodPost, "/api/auth/change-password", body)
	req.Header.Set("Authorization", "Bearer "+s.Access)
	rr, _ := api.do(t, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr, _ = api.do(t, jsonRequest(http.MethodPost, "/api/auth/login", `{"identifier":"annl","password":"old-pass"}`))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	api.login(t, "annl", "new-pass")

	rr, _ = api.refresh(t, s.Refresh)
	assert.Equal(t, http.StatusUnauthorized, rr.Code, "sessions opened before the change cannot renew")
}

func TestProfile_Integration(t *testing.T) {
	api := newTestAPI(t)
	ann := api.register(t, "Ann Lee", "ann@example.com", "annl", "pw")
	api.register(t, "Bo Chen", "bo@example.com", "bochen", "pw")
	s := api.login(t, "annl", "pw")

	t.Run("me via bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+s.Access)
		rr, env := api.do(t, req)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, string(env.Data), `"username":"annl"`)
		assert.NotContains(t, string(env.Data), "password")
	})

	t.Run("me without a token", func(t *testing.T) {
		rr, _ := api.do(t, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("me with a forged token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.Header.Set("Authorization", "Bearer not.a.jwt")
		rr, _ := api.do(t, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("user by id", func(t *testing.T) {
		rr, env := api.do(t, httptest.NewRequest(http.MethodPost, "/api/auth/user/"+ann.ID.Hex(), nil), s.cookies()...)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, string(env.Data), ann.ID.Hex())

		rr, _ = api.do(t, httptest.NewRequest(http.MethodPost, "/api/auth/user/not-an-id", nil), s.cookies()...)
		assert.Equal(t, http.StatusBadRequest, rr.Code)

		rr, _ = api.do(t, httptest.NewRequest(http.MethodPost, "/api/auth/user/65f0c0ffee0000000000beef", nil), s.cookies()...)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("update user", func(t *testing.T) {
		req := multipartRequest(t, http.MethodPost, "/api/auth/update-user", map[string]string{"fullName": "Ann Lee-Park"},
			upload{"avatar", "new.jpg", pngBytes})
		rr, env := api.do(t, req, s.cookies()...)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Contains(t, string(env.Data), `"fullName":"Ann Lee-Park"`)
		assert.Contains(t, string(env.Data), "https://cdn.example.com/")
		assert.Contains(t, string(env.Data), `"username":"annl"`)
	})

	t.Run("update user to a taken username", func(t *testing.T) {
		req := multipartRequest(t, http.MethodPost, "/api/auth/update-user", map[string]string{"username": "BoChen"})
		rr, _ := api.do(t, req, s.cookies()...)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("deleted user cannot authenticate", func(t *testing.T) {
		require.NoError(t, api.users.Delete(t.Context(), ann.ID))
		rr, _ := api.do(t, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), s.cookies()...)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestPropertyOwnership_Integration(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "Ann Lee", "ann@example.com", "annl", "pw")
	api.register(t, "Bo Chen", "bo@example.com", "bochen", "pw")
	owner := api.login(t, "annl", "pw")
	other := api.login(t, "bochen", "pw")

	p := api.createProperty(t, owner, "Harbour Desk", 2)
	assert.Equal(t, owner.UserID, p.Owner.Hex())
	assert.Equal(t, []string{"quiet", "downtown"}, p.Tags)
	assert.Len(t, p.Images, 2)
	assert.Equal(t, 12.5, p.Area)
	assert.Equal(t, 4, p.Capacity)
	assert.True(t, p.HasParking)
	assert.False(t, p.IsAccessible)

	editPath := "/api/properties/edit/" + p.ID.Hex()

	t.Run("anyone signed in can view", func(t *testing.T) {
		rr, env := api.do(t, httptest.NewRequest(http.MethodPost, "/api/properties/view/"+p.ID.Hex(), nil), other.cookies()...)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, string(env.Data), "Harbour Desk")
	})

	t.Run("non owner cannot edit", func(t *testing.T) {
		req := multipartRequest(t, http.MethodPatch, editPath, map[string]string{"title": "Mine now"})
		rr, _ := api.do(t, req, other.cookies()...)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("non owner cannot delete", func(t *testing.T) {
		rr, _ := api.do(t, httptest.NewRequest(http.MethodDelete, "/api/properties/"+p.ID.Hex(), nil), other.cookies()...)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("owner edits fields and appends images", func(t *testing.T) {
		req := multipartRequest(t, http.MethodPatch, editPath,
			map[string]string{"title": "Corner Desk", "hasParking": "false", "price": "400"},
			upload{"images", "extra.png", pngBytes})
		rr, env := api.do(t, req, owner.cookies()...)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var updated model.Property
		require.NoError(t, json.Unmarshal(env.Data, &updated))
		assert.Equal(t, "Corner Desk", updated.Title)
		assert.Equal(t, "12 Harbour St", updated.Address)
		assert.False(t, updated.HasParking)
		assert.Equal(t, float64(400), updated.Price)
		assert.Len(t, updated.Images, 3)
		p = updated
	})

	t.Run("invalid edit value", func(t *testing.T) {
		req := multipartRequest(t, http.MethodPatch, editPath, map[string]string{"leaseTerm": "Forever"})
		rr, _ := api.do(t, req, owner.cookies()...)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("owner removes an image", func(t *testing.T) {
		body := fmt.Sprintf(`{"imageUrl":%q}`, p.Images[0])
		rr, env := api.do(t, jsonRequest(http.MethodDelete, editPath+"/images", body), owner.cookies()...)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.NotContains(t, string(env.Data), p.Images[0])

		rr, _ = api.do(t, jsonRequest(http.MethodDelete, editPath+"/images", body), owner.cookies()...)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("non owner cannot remove images", func(t *testing.T) {
		body := fmt.Sprintf(`{"imageUrl":%q}`, p.Images[1])
		rr, _ := api.do(t, jsonRequest(http.MethodDelete, editPath+"/images", body), other.cookies()...)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("owner deletes", func(t *testing.T) {
		rr, env := api.do(t, httptest.NewRequest(http.MethodDelete, "/api/properties/"+p.ID.Hex(), nil), owner.cookies()...)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{}`, string(env.Data))

		rr, _ = api.do(t, httptest.NewRequest(http.MethodPost, "/api/properties/view/"+p.ID.Hex(), nil), owner.cookies()...)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestCreateProperty_Validation(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "Ann Lee", "ann@example.com", "annl", "pw")
	s := api.login(t, "annl", "pw")

	t.Run("too many images", func(t *testing.T) {
		var files []upload
		for i := 0; i <= service.MaxImagesPerRequest; i++ {
			files = append(files, upload{"images", fmt.Sprintf("%d.png", i), pngBytes})
		}
		req := multipartRequest(t, http.MethodPost, "/api/properties/", propertyFields("Too many"), files...)
		rr, _ := api.do(t, req, s.cookies()...)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("html disguised as an image", func(t *testing.T) {
		page := []byte("<!DOCTYPE html><html><script>fetch('/api/auth/me')</script></html>")
		req := multipartRequest(t, http.MethodPost, "/api/properties/", propertyFields("Stored page"),
			upload{"images", "photo.png", page})
		rr, env := api.do(t, req, s.cookies()...)
		assert.Equal(t, http.StatusUnsupportedMediaType, rr.Code)
		assert.False(t, env.Success)
	})

	t.Run("unknown property type", func(t *testing.T) {
		fields := propertyFields("Bad type")
		fields["propertyType"] = "Castle"
		rr, env := api.do(t, multipartRequest(t, http.MethodPost, "/api/properties/", fields), s.cookies()...)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.NotEmpty(t, env.Errors)
	})

	t.Run("requires authentication", func(t *testing.T) {
		rr, _ := api.do(t, multipartRequest(t, http.MethodPost, "/api/properties/", propertyFields("Anon")))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestListProperties_Integration(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "Ann Lee", "ann@example.com", "annl", "pw")
	api.register(t, "Bo Chen", "bo@example.com", "bochen", "pw")
	ann := api.login(t, "annl", "pw")
	bo := api.login(t, "bochen", "pw")

	for i := 1; i <= 3; i++ {
		api.createProperty(t, ann, fmt.Sprintf("Ann %d", i), 0)
	}
	latest := api.createProperty(t, bo, "Bo 1", 0)

	page := func(t *testing.T, req *http.Request, cookies ...*http.Cookie) model.PropertyPage {
		t.Helper()
		rr, env := api.do(t, req, cookies...)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		var p model.PropertyPage
		require.NoError(t, json.Unmarshal(env.Data, &p))
		return p
	}

	first := page(t, httptest.NewRequest(http.MethodGet, "/api/properties/all-properties?limit=3", nil))
	assert.Equal(t, int64(1), first.Page)
	assert.Equal(t, int64(4), first.Total)
	assert.Equal(t, int64(2), first.TotalPages)
	require.Len(t, first.Properties, 3)
	assert.Equal(t, latest.ID, first.Properties[0].ID, "newest first by default")

	second := page(t, httptest.NewRequest(http.MethodGet, "/api/properties/all-properties?limit=3&page=2", nil))
	assert.Len(t, second.Properties, 1)

	beyond := page(t, httptest.NewRequest(http.MethodGet, "/api/properties/all-properties?limit=3&page=9", nil))
	assert.Empty(t, beyond.Properties)
	assert.NotNil(t, beyond.Properties)

	oldest := page(t, httptest.NewRequest(http.MethodGet, "/api/properties/all-properties?order=asc&limit=1", nil))
	assert.Equal(t, "Ann 1", oldest.Properties[0].Title)

	filtered := page(t, httptest.NewRequest(http.MethodGet, "/api/properties/all-properties?filters[owner]="+bo.UserID, nil))
	assert.Equal(t, int64(1), filtered.Total)

	mine := page(t, httptest.NewRequest(http.MethodPost, "/api/properties/my-properties", nil), ann.cookies()...)
	assert.Equal(t, int64(3), mine.Total)
	for _, p := range mine.Properties {
		assert.Equal(t, ann.UserID, p.Owner.Hex())
	}

	t.Run("bad parameters", func(t *testing.T) {
		for _, q := range []string{"page=0", "page=9223372036854775807&limit=100", "limit=abc", "sortBy=password", "order=sideways", "filters[refreshToken]=x"} {
			rr, _ := api.do(t, httptest.NewRequest(http.MethodGet, "/api/properties/all-properties?"+q, nil))
			assert.Equal(t, http.StatusBadRequest, rr.Code, q)
		}
	})
}

func TestOperationalRoutes(t *testing.T) {
	api := newTestAPI(t)

	t.Run("metrics", func(t *testing.T) {
		api.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))
		rr := httptest.NewRecorder()
		api.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `route="GET /health"`)
	})

	t.Run("swagger document", func(t *testing.T) {
		rr := httptest.NewRecorder()
		api.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
		body, _ := io.ReadAll(rr.Body)
		assert.Contains(t, string(body), "/api/auth/refresh-session")
	})

	t.Run("cors preflight allows credentials from the configured origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
		req.Header.Set("Origin", "https://app.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rr := httptest.NewRecorder()
		api.router.ServeHTTP(rr, req)
		assert.Equal(t, "https://app.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("request id header", func(t *testing.T) {
		rr, _ := api.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	})
}
