package sms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	got, err := NormalizePhone("0712 345 678", "KE")
	require.NoError(t, err)
	assert.Equal(t, "+254712345678", got)

	got, err = NormalizePhone("+1 650-253-0000", "KE")
	require.NoError(t, err)
	assert.Equal(t, "+16502530000", got)

	_, err = NormalizePhone("12", "KE")
	assert.Error(t, err)
	_, err = NormalizePhone("", "KE")
	assert.Error(t, err)
}

func TestSendPostsToGateway(t *testing.T) {
	var got message
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(Config{GatewayURL: srv.URL, APIToken: "tok", DefaultRegion: "KE", SenderID: "SHOP"})
	require.NoError(t, c.Send(context.Background(), "0712345678", "Thanks for shopping"))
	assert.Equal(t, "tok", auth)
	assert.Equal(t, "+254712345678", got.Target)
	assert.Equal(t, "Thanks for shopping", got.Message)
}

func TestSendReportsGatewayFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(Config{GatewayURL: srv.URL, APIToken: "tok"})
	assert.Error(t, c.Send(context.Background(), "+254712345678", "x"))
}

func TestUnconfiguredClient(t *testing.T) {
	c := NewClient(Config{})
	assert.False(t, c.Configured())
	assert.Error(t, c.Send(context.Background(), "+254712345678", "x"))
}
