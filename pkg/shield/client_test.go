package shield

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncClientReport(t *testing.T) {
	var gotPath, gotKey string
	var gotBody TamperingReport

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-API-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(TamperingResult{Action: "warn", RequestID: "r1"})
	}))
	defer srv.Close()

	client := NewSyncClient(ClientConfig{BaseURL: srv.URL, APIKey: "k1"})
	result, err := client.Report(context.Background(), TamperingReport{
		Type:     "debugger",
		Severity: "high",
		DeviceID: "d1",
	})
	require.NoError(t, err)

	assert.Equal(t, "/api/log-tampering", gotPath)
	assert.Equal(t, "k1", gotKey)
	assert.Equal(t, "debugger", gotBody.Type)
	assert.Equal(t, "warn", result.Action)
}

func TestSyncClientBanResponseIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(SyncResult{Status: "suspended", Action: "ban"})
	}))
	defer srv.Close()

	client := NewSyncClient(ClientConfig{BaseURL: srv.URL})
	result, err := client.Sync(context.Background(), SyncRequest{PlayerID: "p1"})
	require.NoError(t, err)
	assert.True(t, result.Suspended())
	assert.Equal(t, "ban", result.Action)
}

func TestSyncClientRegister(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(RegisterResult{PlayerID: "p1", Created: true})
	}))
	defer srv.Close()

	client := NewSyncClient(ClientConfig{BaseURL: srv.URL})
	result, err := client.Register(context.Background(), RegisterRequest{PlayerID: "p1", DeviceID: "d1"})
	require.NoError(t, err)
	assert.True(t, result.Created)
}

func TestSyncClientServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewSyncClient(ClientConfig{BaseURL: srv.URL})
	_, err := client.Sync(context.Background(), SyncRequest{PlayerID: "p1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestSyncClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewSyncClient(ClientConfig{
		BaseURL:        srv.URL,
		RequestTimeout: 20 * time.Millisecond,
	})
	_, err := client.Sync(context.Background(), SyncRequest{PlayerID: "p1"})
	require.Error(t, err)
}

func TestValuesChecksumDeterministic(t *testing.T) {
	a := ValuesChecksum(map[string]any{"coins": 100.0, "health": 80.0, "name": "x"})
	b := ValuesChecksum(map[string]any{"name": "x", "health": 80.0, "coins": 100.0})
	assert.Equal(t, a, b, "checksum must not depend on map order")

	c := ValuesChecksum(map[string]any{"coins": 101.0, "health": 80.0, "name": "x"})
	assert.NotEqual(t, a, c)

	assert.Len(t, a, 64, "hex sha-256")
}
