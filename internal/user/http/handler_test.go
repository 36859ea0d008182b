package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/nekogravitycat/item-share-backend/internal/user"
)

func performWriteError(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/users/me", nil)

	h := NewHandler(nil, nil)
	h.writeError(c, err)
	return w
}

func TestWriteError(t *testing.T) {
	t.Run("Sentinel Mapping", func(t *testing.T) {
		cases := []struct {
			err    error
			status int
		}{
			{user.ErrNotFound, http.StatusNotFound},
			{user.ErrEmailAlreadyUsed, http.StatusConflict},
			{user.ErrInvalidCredentials, http.StatusUnauthorized},
			{user.ErrInactiveUser, http.StatusForbidden},
			{user.ErrEmailRequired, http.StatusBadRequest},
			{user.ErrPasswordTooShort, http.StatusBadRequest},
		}

		for _, tc := range cases {
			w := performWriteError(tc.err)
			assert.Equal(t, tc.status, w.Code, "error: %v", tc.err)
		}
	})

	t.Run("Wrapped Sentinel Keeps Its Status", func(t *testing.T) {
		w := performWriteError(fmt.Errorf("%w: minimum 8 characters", user.ErrPasswordTooShort))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Unexpected Error Is A Generic 500", func(t *testing.T) {
		w := performWriteError(errors.New("pgx: connection refused to 10.0.0.5:5432"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
		assert.NotContains(t, w.Body.String(), "connection refused", "storage details must not reach the client")
	})
}
