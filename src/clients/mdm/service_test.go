package mdm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reporter/src/clients/mdm"
	"reporter/src/config"
	"reporter/src/models"
)

// mdmAPIServer fakes the token endpoint and the export endpoints.
func mdmAPIServer(t *testing.T) (*httptest.Server, *int) {
	t.Helper()
	tokenRequests := 0

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		tokenRequests++
		require.NoError(t, r.ParseForm())
		require.Equal(t, "client_credentials", r.Form.Get("grant_type"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "tok-123",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/api/v1/exports", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		var req mdm.ExportRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "devices", req.ReportType)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": "export-7"})
	})
	mux.HandleFunc("/api/v1/exports/export-7", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]string{
			"id":          "export-7",
			"status":      "COMPLETED",
			"downloadUrl": "http://" + r.Host + "/download/export-7",
		})
	})
	mux.HandleFunc("/download/export-7", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("archive-bytes"))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &tokenRequests
}

func TestServiceClientExportLifecycle(t *testing.T) {
	server, tokenRequests := mdmAPIServer(t)

	client := mdm.NewClient(&config.MDMConfig{
		BaseURL:      server.URL + "/api",
		TokenURL:     server.URL + "/oauth/token",
		ClientID:     "reporter",
		ClientSecret: "secret",
	})
	ctx := context.Background()

	jobID, err := client.CreateExportJob(ctx, mdm.ExportRequest{ReportType: "devices", Format: "csv"})
	require.NoError(t, err)
	assert.Equal(t, "export-7", jobID)

	job, err := client.GetExportJob(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, models.ExportCompleted, job.Status)
	require.NotEmpty(t, job.DownloadURL)

	archive, err := client.Download(ctx, job.DownloadURL)
	require.NoError(t, err)
	assert.Equal(t, []byte("archive-bytes"), archive)

	assert.Equal(t, 1, *tokenRequests, "the bearer token must be cached across calls")
}

func TestServiceClientSurfacesAPIErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"access_token": "t", "expires_in": 3600})
	})
	mux.HandleFunc("/api/v1/exports", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "report type unknown", http.StatusUnprocessableEntity)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := mdm.NewClient(&config.MDMConfig{
		BaseURL:  server.URL + "/api",
		TokenURL: server.URL + "/oauth/token",
	})

	_, err := client.CreateExportJob(context.Background(), mdm.ExportRequest{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "report type unknown")
}
