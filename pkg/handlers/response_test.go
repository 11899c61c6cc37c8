package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rocketscienceinc/gamehub-backend/internal/apperror"
)

func TestStatusOf(t *testing.T) {
	cases := map[error]int{
		fmt.Errorf("wrapped: %w", apperror.ErrCellOccupied): http.StatusBadRequest,
		apperror.ErrInsufficientPoints:                     http.StatusBadRequest,
		apperror.ErrUnauthorized:                           http.StatusUnauthorized,
		apperror.ErrNotFound:                               http.StatusNotFound,
		apperror.ErrStoreUnavailable:                       http.StatusServiceUnavailable,
		errors.New("boom"):                                 http.StatusInternalServerError,
	}

	for err, status := range cases {
		assert.Equal(t, status, StatusOf(err), err.Error())
	}
}

func TestBearerToken(t *testing.T) {
	t.Run("header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer abc")

		token, ok := BearerToken(r, false)

		assert.True(t, ok)
		assert.Equal(t, "abc", token)
	})

	t.Run("query only when allowed", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/ws/arcade?token=xyz", nil)

		_, ok := BearerToken(r, false)
		assert.False(t, ok)

		token, ok := BearerToken(r, true)
		assert.True(t, ok)
		assert.Equal(t, "xyz", token)
	})

	t.Run("other schemes are ignored", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

		_, ok := BearerToken(r, false)

		assert.False(t, ok)
	})
}
