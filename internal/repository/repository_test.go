package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/EcommerceGo/storefront/internal/domain"
	apperrors "github.com/utafrali/EcommerceGo/storefront/pkg/errors"
)

func TestEncodeSession_Envelope(t *testing.T) {
	data, err := EncodeSession(domain.Session{
		User:            &domain.User{ID: "u1", Email: "a@b.c"},
		Token:           "tok",
		IsAuthenticated: true,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"version": 1,
		"state": {
			"user": {"id":"u1","email":"a@b.c","firstName":"","lastName":"","phone":"",
				"address":{"street":"","city":"","state":"","zipCode":"","country":""}},
			"token": "tok",
			"isAuthenticated": true
		}
	}`, string(data))
}

func TestDecodeSession_RoundTrip(t *testing.T) {
	data, err := EncodeSession(domain.Session{User: &domain.User{ID: "u1"}, Token: "tok"})
	require.NoError(t, err)

	s, err := DecodeSession(data)
	require.NoError(t, err)
	assert.Equal(t, "tok", s.Token)
	assert.Equal(t, "u1", s.User.ID)
	assert.True(t, s.IsAuthenticated)
}

func TestDecodeSession_DiscardsUnusableRecords(t *testing.T) {
	tests := map[string]string{
		"corrupt":       `{{not json`,
		"old version":   `{"version":0,"state":{"token":"tok","user":{"id":"u1"}}}`,
		"newer version": `{"version":2,"state":{"token":"tok","user":{"id":"u1"}}}`,
		"no token":      `{"version":1,"state":{"user":{"id":"u1"}}}`,
		"no user":       `{"version":1,"state":{"token":"tok"}}`,
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			s, err := DecodeSession([]byte(raw))
			assert.Nil(t, s)
			assert.ErrorIs(t, err, apperrors.ErrNotFound)
		})
	}
}
