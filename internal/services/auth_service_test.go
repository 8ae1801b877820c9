package services

import (
	"bytes"
	"context"
	"database/sql/driver"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func setupAuthConfig() {
	viper.Set("argon2.salt_length", 16)
	viper.Set("argon2.time", 1)
	viper.Set("argon2.memory", 64*1024)
	viper.Set("argon2.threads", 4)
	viper.Set("argon2.key_length", 32)
	viper.Set("jwt.secret_key", "test-secret")
	viper.Set("jwt.expiry_hours", 24)
}

func TestAuthService_Register(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	setupAuthConfig()
	service := NewAuthService(db, nil)

	t.Run("successful registration", func(t *testing.T) {
		req := RegisterRequest{
			Name:     "Jane Doe",
			Email:    "Test@Example.com",
			Password: "password123",
		}

		mock.ExpectQuery("INSERT INTO users").
			WithArgs("Jane Doe", "test@example.com", sqlmock.AnyArg(), "").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(1, time.Now()))

		body, _ := json.Marshal(req)
		r := httptest.NewRequest("POST", "/auth/register", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		service.Register(w, r)

		assert.Equal(t, http.StatusCreated, w.Code)
		var response AuthResponse
		json.Unmarshal(w.Body.Bytes(), &response)
		assert.NotEmpty(t, response.Token)
		assert.Equal(t, "test@example.com", response.User.Email)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid request body", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/auth/register", bytes.NewBuffer([]byte("invalid")))
		w := httptest.NewRecorder()

		service.Register(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("validation failure on short password", func(t *testing.T) {
		body, _ := json.Marshal(RegisterRequest{Name: "Jane", Email: "a@b.com", Password: "abc"})
		r := httptest.NewRequest("POST", "/auth/register", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		service.Register(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthService_Login(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	setupAuthConfig()
	service := NewAuthService(db, nil)

	hashed, err := hashPassword("password123")
	assert.NoError(t, err)

	userRow := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "name", "email", "password", "avatar", "created_at"}).
			AddRow(1, "Jane Doe", "test@example.com", hashed, "", time.Now())
	}

	t.Run("successful login", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, name, email, password, avatar, created_at").
			WithArgs("test@example.com").
			WillReturnRows(userRow())

		body, _ := json.Marshal(LoginRequest{Email: "test@example.com", Password: "password123"})
		r := httptest.NewRequest("POST", "/auth/login", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		service.Login(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		var response AuthResponse
		json.Unmarshal(w.Body.Bytes(), &response)
		assert.NotEmpty(t, response.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, name, email, password, avatar, created_at").
			WithArgs("test@example.com").
			WillReturnRows(userRow())

		body, _ := json.Marshal(LoginRequest{Email: "test@example.com", Password: "wrongpassword"})
		r := httptest.NewRequest("POST", "/auth/login", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		service.Login(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown email", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, name, email, password, avatar, created_at").
			WithArgs("nobody@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password", "avatar", "created_at"}))

		body, _ := json.Marshal(LoginRequest{Email: "nobody@example.com", Password: "password123"})
		r := httptest.NewRequest("POST", "/auth/login", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		service.Login(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthService_GetAccount(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	service := NewAuthService(db, nil)

	t.Run("returns the caller's profile", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, name, email, password, avatar, created_at").
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password", "avatar", "created_at"}).
				AddRow(1, "Jane Doe", "test@example.com", "hash", "", time.Now()))

		r := httptest.NewRequest("GET", "/auth/account", nil)
		r = r.WithContext(context.WithValue(r.Context(), "userID", 1))
		w := httptest.NewRecorder()

		service.GetAccount(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp map[string]any
		json.Unmarshal(w.Body.Bytes(), &resp)
		assert.Equal(t, "Jane Doe", resp["name"])
		// The password hash never leaves the server.
		assert.NotContains(t, w.Body.String(), "hash")
	})

	t.Run("unauthorized without context identity", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/auth/account", nil)
		w := httptest.NewRecorder()

		service.GetAccount(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthService_UpdateAccount(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	setupAuthConfig()
	service := NewAuthService(db, nil)

	t.Run("re-hashes a supplied password", func(t *testing.T) {
		oldHash, err := hashPassword("old-password")
		assert.NoError(t, err)

		mock.ExpectQuery("SELECT id, name, email, password, avatar, created_at").
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password", "avatar", "created_at"}).
				AddRow(1, "Jane Doe", "test@example.com", oldHash, "", time.Now()))
		mock.ExpectExec("UPDATE users SET").
			WithArgs("Jane Doe", "test@example.com", argonHashArg{}, "", 1).
			WillReturnResult(sqlmock.NewResult(0, 1))

		body, _ := json.Marshal(UpdateAccountRequest{Password: "new-password"})
		r := httptest.NewRequest("PUT", "/auth/account", bytes.NewBuffer(body))
		r = r.WithContext(context.WithValue(r.Context(), "userID", 1))
		w := httptest.NewRecorder()

		service.UpdateAccount(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects a short password", func(t *testing.T) {
		body, _ := json.Marshal(UpdateAccountRequest{Password: "abc"})
		r := httptest.NewRequest("PUT", "/auth/account", bytes.NewBuffer(body))
		r = r.WithContext(context.WithValue(r.Context(), "userID", 1))
		w := httptest.NewRecorder()

		service.UpdateAccount(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// argonHashArg matches an argon2id salt$hash derived from "new-password"
// that differs from the stored hash.
type argonHashArg struct{}

func (argonHashArg) Match(v driver.Value) bool {
	s, ok := v.(string)
	return ok && verifyPassword("new-password", s)
}

func TestAuthService_SearchUsers(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	service := NewAuthService(db, nil)

	t.Run("suggests matching users", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, name, email, avatar, created_at").
			WithArgs("jane").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "avatar", "created_at"}).
				AddRow(1, "Jane Doe", "jane@example.com", "", time.Now()))

		r := httptest.NewRequest("GET", "/users/search?email=jane", nil)
		r = r.WithContext(context.WithValue(r.Context(), "userID", 2))
		w := httptest.NewRecorder()

		service.SearchUsers(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp []map[string]any
		json.Unmarshal(w.Body.Bytes(), &resp)
		assert.Len(t, resp, 1)
	})

	t.Run("requires an email fragment", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/users/search", nil)
		r = r.WithContext(context.WithValue(r.Context(), "userID", 2))
		w := httptest.NewRecorder()

		service.SearchUsers(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPasswordHashing(t *testing.T) {
	setupAuthConfig()

	hashed, err := hashPassword("secret-password")
	assert.NoError(t, err)
	assert.NotEqual(t, "secret-password", hashed)

	assert.True(t, verifyPassword("secret-password", hashed))
	assert.False(t, verifyPassword("other-password", hashed))
	assert.False(t, verifyPassword("secret-password", "malformed"))
}
