package transport

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"shop-api/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var adaBody = map[string]interface{}{
	"fullName": "Ada Lovelace",
	"email":    "ada@example.com",
	"password": "analytical",
	"role":     "customer",
}

func registerAda(t *testing.T, api *testAPI) (RegisterResponse, *http.Cookie) {
	t.Helper()
	w := api.do(t, "POST", "/api/user/register", adaBody)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp RegisterResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	cookie := authCookie(w)
	require.NotNil(t, cookie)
	return resp, cookie
}

func TestRegister_IssuesHTTPOnlyCookie(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, "POST", "/api/user/register", adaBody)
	require.Equal(t, http.StatusOK, w.Code)

	cookie := authCookie(w)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 3600, cookie.MaxAge)
	assert.NotEmpty(t, cookie.Value)

	assert.NotContains(t, w.Body.String(), "password")
	assert.NotContains(t, w.Body.String(), "$2a$")
}

func TestRegister_DuplicateEmailConflicts(t *testing.T) {
	api := newTestAPI(t)
	registerAda(t, api)

	w := api.do(t, "POST", "/api/user/register", adaBody)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Nil(t, authCookie(w))
	assert.Len(t, api.users.docs, 1)
}

func TestRegister_ValidationErrorsNameFields(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, "POST", "/api/user/register", map[string]interface{}{
		"fullName": "Ada",
		"email":    "not-an-email",
		"password": "short",
		"role":     "customer",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	detail := decodeError(t, w)
	raw, err := json.Marshal(detail.Details["validation_errors"])
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"field":"email"`)
	assert.Contains(t, string(raw), `"field":"password"`)
}

func TestProperty_LoginFailuresLookIdentical(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	properties := gopter.NewProperties(parameters)

	api := newTestAPI(t)
	registerAda(t, api)

	properties.Property("wrong password and unknown email share status and message", prop.ForAll(
		func(password string, local string) bool {
			if password == "analytical" {
				return true
			}
			wrongPassword := api.do(t, "POST", "/api/user/login", map[string]interface{}{
				"email": "ada@example.com", "password": password,
			})
			unknownEmail := api.do(t, "POST", "/api/user/login", map[string]interface{}{
				"email": local + "@nowhere.test", "password": password,
			})

			return wrongPassword.Code == http.StatusBadRequest &&
				unknownEmail.Code == http.StatusBadRequest &&
				decodeError(t, wrongPassword).Message == decodeError(t, unknownEmail).Message &&
				authCookie(wrongPassword) == nil &&
				authCookie(unknownEmail) == nil
		},
		gen.RegexMatch(`[a-z0-9]{8,16}`),
		gen.RegexMatch(`[a-z]{3,10}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestLogin_WelcomesUser(t *testing.T) {
	api := newTestAPI(t)
	registerAda(t, api)

	w := api.do(t, "POST", "/api/user/login", map[string]interface{}{
		"email": " ADA@example.com ", "password": "analytical",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var msg MessageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &msg))
	assert.Equal(t, "Welcome back Ada Lovelace.", msg.Message)
	assert.NotNil(t, authCookie(w))
}

func TestProtectedRoutesRequireCookie(t *testing.T) {
	api := newTestAPI(t)

	for _, route := range []struct{ method, path string }{
		{"GET", "/api/user/list"},
		{"GET", "/api/user/me"},
		{"PUT", "/api/user/me"},
		{"GET", "/api/user/u1"},
	} {
		w := api.do(t, route.method, route.path, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, route.path)
	}
}

func TestMe(t *testing.T) {
	api := newTestAPI(t)
	registered, cookie := registerAda(t, api)

	w := api.do(t, "GET", "/api/user/me", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	var me domain.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, registered.AddedUser.ID, me.ID)
	assert.Equal(t, "ada@example.com", me.Email)
}

func TestUpdateMe(t *testing.T) {
	api := newTestAPI(t)
	registered, cookie := registerAda(t, api)
	id := registered.AddedUser.ID

	w := api.do(t, "PUT", "/api/user/me", map[string]interface{}{"fullName": "Augusta Ada King"}, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var msg MessageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &msg))
	assert.Equal(t, "User "+id+" updated!", msg.Message)

	stored := api.users.docs[id]
	assert.Equal(t, "Augusta Ada King", stored.FullName)
	assert.Equal(t, "Ada Lovelace", stored.LastUpdatedBy)
	assert.NotNil(t, stored.LastUpdated)

	w = api.do(t, "PUT", "/api/user/me", map[string]interface{}{"password": "short"}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetUser(t *testing.T) {
	api := newTestAPI(t)
	registered, cookie := registerAda(t, api)

	assert.Equal(t, http.StatusOK, api.do(t, "GET", "/api/user/"+registered.AddedUser.ID, nil, cookie).Code)
	assert.Equal(t, http.StatusNotFound, api.do(t, "GET", "/api/user/u404", nil, cookie).Code)
	assert.Equal(t, http.StatusBadRequest, api.do(t, "GET", "/api/user/bogus", nil, cookie).Code)

	w := api.do(t, "GET", "/api/user/list", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, strings.Contains(w.Body.String(), "$2a$"))
}

func TestLogout_RevokesCookieToken(t *testing.T) {
	api := newTestAPI(t)
	_, cookie := registerAda(t, api)

	w := api.do(t, "POST", "/api/user/logout", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	cleared := authCookie(w)
	require.NotNil(t, cleared)
	assert.Equal(t, "", cleared.Value)
	assert.Less(t, cleared.MaxAge, 0)

	w = api.do(t, "GET", "/api/user/me", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "token revoked", decodeError(t, w).Message)

	assert.Equal(t, http.StatusOK, api.do(t, "POST", "/api/user/logout", nil).Code)
}

func TestRegister_OverlongMultibytePasswordIsValidationError(t *testing.T) {
	api := newTestAPI(t)

	body := map[string]interface{}{
		"fullName": "Ada Lovelace",
		"email":    "ada@example.com",
		"password": strings.Repeat("€", 25),
		"role":     "customer",
	}
	w := api.do(t, "POST", "/api/user/register", body)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"field":"password"`)
	assert.Nil(t, authCookie(w))
	assert.Empty(t, api.users.docs)

	_, cookie := registerAda(t, api)
	w = api.do(t, "PUT", "/api/user/me", map[string]interface{}{"password": strings.Repeat("€", 25)}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
}

func TestPasswordsAreTrimmed(t *testing.T) {
	api := newTestAPI(t)

	body := map[string]interface{}{
		"fullName": "Ada Lovelace",
		"email":    "ada@example.com",
		"password": "  analytical  ",
		"role":     "customer",
	}
	require.Equal(t, http.StatusOK, api.do(t, "POST", "/api/user/register", body).Code)

	w := api.do(t, "POST", "/api/user/login", map[string]interface{}{
		"email": "ada@example.com", "password": "analytical",
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.do(t, "POST", "/api/user/login", map[string]interface{}{
		"email": "ada@example.com", "password": " analytical ",
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}
