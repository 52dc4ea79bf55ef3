package mercadopago

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyroball/checkout/internal/checkout/core/ports"
)

func TestCreatePreference(t *testing.T) {
	var gotReq ports.PreferenceRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/checkout/preferences", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"pref-1","init_point":"https://mp.example/init","sandbox_init_point":"https://mp.example/sandbox"}`))
	}))
	defer srv.Close()

	client := New(Config{AccessToken: "test-token", BaseURL: srv.URL})

	pref, err := client.CreatePreference(context.Background(), &ports.PreferenceRequest{
		Items: []ports.PreferenceItem{{
			ID:        "order-1",
			Title:     "Gyroball Pro - 2 unidades",
			Quantity:  2,
			UnitPrice: 99.90,
		}},
		ExternalReference: "order-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "pref-1", pref.ID)
	assert.Equal(t, "https://mp.example/init", pref.InitPoint)
	assert.Equal(t, "https://mp.example/sandbox", pref.SandboxInitPoint)
	assert.Equal(t, "order-1", gotReq.ExternalReference)
	require.Len(t, gotReq.Items, 1)
	assert.Equal(t, "Gyroball Pro - 2 unidades", gotReq.Items[0].Title)
}

func TestCreatePreferenceGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"invalid access token"}`))
	}))
	defer srv.Close()

	client := New(Config{AccessToken: "bad", BaseURL: srv.URL})

	_, err := client.CreatePreference(context.Background(), &ports.PreferenceRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
	assert.Contains(t, err.Error(), "invalid access token")
}
