package client

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFarms_CRUD(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/farms":
			var in FarmInput
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			writeJSON(w, http.StatusCreated, Farm{ID: "f1", Name: in.Name, FarmType: in.FarmType})
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/farms/f1":
			writeJSON(w, http.StatusOK, Farm{ID: "f1", Name: "North"})
		case r.Method == http.MethodPut && r.URL.Path == "/api/v1/farms/f1":
			writeJSON(w, http.StatusOK, Farm{ID: "f1", Name: "North Renamed"})
		case r.Method == http.MethodDelete && r.URL.Path == "/api/v1/farms/f1":
			w.WriteHeader(http.StatusNoContent)
		default:
			writeJSON(w, http.StatusNotFound, map[string]interface{}{"error": map[string]string{"code": "FARM_001", "message": "farm not found"}})
		}
	})
	ctx := context.Background()

	created, err := c.Farms().Create(ctx, &FarmInput{Name: "North", FarmType: "cattle"})
	require.NoError(t, err)
	assert.Equal(t, "cattle", created.FarmType)

	got, err := c.Farms().Get(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "North", got.Name)

	updated, err := c.Farms().Update(ctx, "f1", &FarmInput{Name: "North Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "North Renamed", updated.Name)

	require.NoError(t, c.Farms().Delete(ctx, "f1"))

	_, err = c.Farms().Get(ctx, "missing")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsNotFound())
	assert.Equal(t, "FARM_001", apiErr.Code)
}

func TestAssessments(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/catalog":
			writeJSON(w, http.StatusOK, Catalog{Version: "2024.1", Areas: []Area{{ID: "a", Questions: []Question{{ID: "q", Weight: 2}}}}})
		case "/api/v1/farms/f1/assessments":
			var body map[string]interface{}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, map[string]interface{}{"q": float64(3)}, body["responses"])
			assert.Equal(t, "fence repairs", body["recommendations"])
			writeJSON(w, http.StatusCreated, Assessment{ID: "a1", FarmID: "f1", OverallScore: 75, RiskLevel: "medium"})
		case "/api/v1/assessments":
			assert.Equal(t, "f1", r.URL.Query().Get("farm_id"))
			assert.Equal(t, "2", r.URL.Query().Get("page"))
			writeJSON(w, http.StatusOK, AssessmentPage{Assessments: []*Assessment{{ID: "a1"}}, Total: 11, Page: 2, PageSize: 10, TotalPages: 2})
		case "/api/v1/assessments/a1":
			writeJSON(w, http.StatusOK, Assessment{ID: "a1", Areas: AssessmentAreas{AreaScores: map[string]int{"a": 75}}})
		case "/api/v1/assessments/a1/export":
			assert.Equal(t, http.MethodPost, r.Method)
			writeJSON(w, http.StatusOK, DownloadLink{Key: "reports/a1.json", URL: "https://minio/reports/a1.json"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	cat, err := c.Assessments().Catalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024.1", cat.Version)

	a, err := c.Assessments().Submit(ctx, "f1", map[string]int{"q": 3}, "fence repairs")
	require.NoError(t, err)
	assert.Equal(t, "medium", a.RiskLevel)

	page, err := c.Assessments().List(ctx, &AssessmentListOptions{ListOptions: ListOptions{Page: 2}, FarmID: "f1"})
	require.NoError(t, err)
	assert.Equal(t, int64(11), page.Total)
	require.Len(t, page.Assessments, 1)

	got, err := c.Assessments().Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, 75, got.Areas.AreaScores["a"])

	link, err := c.Assessments().Export(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "reports/a1.json", link.Key)
}

func TestAlerts_ListFilters(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/alerts", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "poultry", q.Get("farm_type"))
		assert.Equal(t, "high", q.Get("severity"))
		assert.Equal(t, "5", q.Get("page_size"))
		writeJSON(w, http.StatusOK, AlertPage{Alerts: []*Alert{{ID: "al1", Title: "Avian influenza", Severity: "high"}}, Total: 1})
	})

	page, err := c.Alerts().List(context.Background(), &AlertListOptions{
		ListOptions: ListOptions{PageSize: 5},
		FarmType:    "poultry",
		Severity:    "high",
	})
	require.NoError(t, err)
	require.Len(t, page.Alerts, 1)
	assert.Equal(t, "Avian influenza", page.Alerts[0].Title)
}

func TestAlerts_ListWithoutOptions(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		writeJSON(w, http.StatusOK, AlertPage{})
	})
	page, err := c.Alerts().List(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, page.Alerts)
}
