package controllers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-pos/config"
	"github.com/yeremiapane/restaurant-pos/database"
)

func seedAdmin(t *testing.T, env *testEnv) {
	t.Helper()
	cfg := config.Default()
	cfg.RestaurantName = "Test Kitchen"
	cfg.Auth.AdminEmail = "admin@pos.test"
	cfg.Auth.AdminPassword = "s3cret!"
	require.NoError(t, database.Seed(env.db, cfg))
}

func TestLogin(t *testing.T) {
	env := setupTestEnv(t)
	seedAdmin(t, env)

	w := env.do(t, http.MethodPost, "/login", gin.H{"email": "admin@pos.test", "password": "s3cret!"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decode(t, w).data()
	assert.Equal(t, "admin", data["user_role"])

	claims, err := env.tokens.ParseToken(data["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "Admin", claims.Name)
}

func TestLoginInvalidCredentials(t *testing.T) {
	env := setupTestEnv(t)
	seedAdmin(t, env)

	w := env.do(t, http.MethodPost, "/login", gin.H{"email": "admin@pos.test", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/login", gin.H{"email": "nobody@pos.test", "password": "s3cret!"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid credentials", decode(t, w)["message"])

	w = env.do(t, http.MethodPost, "/login", gin.H{"email": "admin@pos.test"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterStaff(t *testing.T) {
	env := setupTestEnv(t)

	body := gin.H{"name": "Meena", "email": "Meena@pos.test", "password": "kitchen1", "role": "Kitchen"}
	w := env.do(t, http.MethodPost, "/api/users", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/users", body)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPost, "/api/users", gin.H{"name": "X", "email": "x@pos.test", "password": "secret1", "role": "chef"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = env.do(t, http.MethodPost, "/login", gin.H{"email": "meena@pos.test", "password": "kitchen1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "kitchen", decode(t, w).data()["user_role"])
}

func TestLogoutRevokesToken(t *testing.T) {
	env := setupTestEnv(t)

	token, err := env.tokens.GenerateToken(1, "Asha", "cashier")
	require.NoError(t, err)
	bearer := map[string]string{"Authorization": "Bearer " + token}

	w := env.doWithHeader(t, http.MethodPost, "/api/logout", nil, bearer)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	_, err = env.tokens.ParseToken(token)
	assert.Error(t, err)

	// token yang sudah dicabut tidak bisa logout lagi
	w = env.doWithHeader(t, http.MethodPost, "/api/logout", nil, bearer)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/api/logout", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
