package api

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmflow-backend/internal/model"
)

func setupSubscriptionRouter() *gin.Engine {
	r := gin.New()
	handler := NewHandler(nil, nil)
	r.PUT("/subscriptions", handler.PutSubscription)
	r.DELETE("/subscriptions", handler.DeleteSubscription)
	return r
}

func TestPutSubscription_InvalidRequest(t *testing.T) {
	router := setupSubscriptionRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPut, "/subscriptions", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"status":400,"error":"invalid request"}`, w.Body.String())
}

func TestDeleteSubscription_InvalidRequest(t *testing.T) {
	router := setupSubscriptionRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodDelete, "/subscriptions", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"status":400,"error":"invalid request"}`, w.Body.String())
}

func TestSubscriptionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	endpoint := "https://push.example.com/send/abc?x=1"

	w := env.do(http.MethodPut, "/subscriptions", `{
		"endpoint": "https://push.example.com/send/abc?x=1",
		"p256dh": "key",
		"auth": "secret",
		"subscribed_machines": ["TRACTOR-001", "GHOST"]
	}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(http.MethodGet, "/subscriptions?endpoint="+endpoint, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"subscribed_machines":["TRACTOR-001"]}`, w.Body.String())

	// Replacing the set with nothing keeps the subscription.
	w = env.do(http.MethodPut, "/subscriptions", `{"endpoint":"`+endpoint+`","p256dh":"key2","auth":"secret"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var sub model.PushSubscription
	require.NoError(t, env.db.Preload("Machines").Where("endpoint = ?", endpoint).Take(&sub).Error)
	assert.Equal(t, "key2", sub.P256DH)
	assert.Empty(t, sub.Machines)

	w = env.do(http.MethodDelete, "/subscriptions", `{"endpoint":"`+endpoint+`"}`)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(http.MethodGet, "/subscriptions?endpoint="+url.QueryEscape(endpoint), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetSubscription_MissingEndpoint(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodGet, "/subscriptions", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"status":400,"error":"endpoint is required"}`, w.Body.String())
}
