package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPortal(t *testing.T, h http.HandlerFunc) string {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv.URL
}

func respond(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestRemote_RequiresToken(t *testing.T) {
	t.Setenv(envToken, "")
	_, err := execute(t, nil, "", "farms", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access token is required")
}

func TestFarmsList(t *testing.T) {
	url := newPortal(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/farms", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		respond(w, http.StatusOK, map[string]interface{}{"farms": []map[string]interface{}{
			{"id": "f1", "name": "North Paddock", "farm_type": "cattle", "location": "Riverina", "animal_count": 120},
		}})
	})

	out, err := execute(t, nil, "", "farms", "list", "--server", url, "--token", "tok")
	require.NoError(t, err)
	assert.Contains(t, out, "North Paddock")
	assert.Contains(t, out, "120")
}

func TestFarmsList_TokenFromEnv(t *testing.T) {
	t.Setenv(envToken, "env-token")
	url := newPortal(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer env-token", r.Header.Get("Authorization"))
		respond(w, http.StatusOK, map[string]interface{}{"farms": []interface{}{}})
	})
	t.Setenv(envServer, url)

	out, err := execute(t, nil, "", "farms", "list", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, out)
}

func TestAlertsList(t *testing.T) {
	url := newPortal(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "high", r.URL.Query().Get("severity"))
		respond(w, http.StatusOK, map[string]interface{}{
			"alerts": []map[string]interface{}{{"id": "a1", "title": "Foot and mouth outbreak", "severity": "high", "alert_type": "disease"}},
			"total":  1,
		})
	})

	out, err := execute(t, nil, "", "alerts", "list", "--severity", "high", "--server", url, "--token", "tok")
	require.NoError(t, err)
	assert.Contains(t, out, "Foot and mouth outbreak")
	assert.Contains(t, out, "all")
	assert.Contains(t, out, "1 of 1 alerts")
}

func TestAssessSubmit(t *testing.T) {
	url := newPortal(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/farms/f1/assessments", r.URL.Path)
		var body struct {
			Responses       map[string]int `json:"responses"`
			Recommendations string         `json:"recommendations"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]int{"q1": 4, "q2": 2}, body.Responses)
		assert.Equal(t, "new footbath", body.Recommendations)
		respond(w, http.StatusCreated, map[string]interface{}{
			"id": "as1", "overall_score": 67, "risk_level": "medium",
			"areas": map[string]interface{}{"advisories": []string{"Hygiene scored 50%"}},
		})
	})

	out, err := execute(t, nil, "q1: Always\nq2: 2\n", "assess", "submit", "f1", "-f", "-",
		"--recommendations", "new footbath", "--server", url, "--token", "tok")
	require.NoError(t, err)
	assert.Contains(t, out, "assessment as1: 67% (medium risk)")
	assert.Contains(t, out, "Hygiene scored 50%")
}

func TestAssessSubmit_ValidationFields(t *testing.T) {
	url := newPortal(t, func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusUnprocessableEntity, map[string]interface{}{"error": map[string]interface{}{
			"code": "COMMON_010", "message": "incomplete responses",
			"fields": map[string]string{"responses.q9": "is required"},
		}})
	})

	_, err := execute(t, nil, "q1: 4\n", "assess", "submit", "f1", "-f", "-", "--server", url, "--token", "tok")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "responses.q9: is required")
}

func TestAssessExport(t *testing.T) {
	url := newPortal(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/assessments/as1/export", r.URL.Path)
		respond(w, http.StatusOK, map[string]interface{}{
			"key": "reports/as1.json", "url": "https://minio.local/reports/as1.json", "expires_at": "2026-01-02T03:04:05Z",
		})
	})

	out, err := execute(t, nil, "", "assess", "export", "as1", "--server", url, "--token", "tok")
	require.NoError(t, err)
	assert.Contains(t, out, "https://minio.local/reports/as1.json")
	assert.Contains(t, out, "2026-01-02 03:04 UTC")
}
