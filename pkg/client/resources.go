package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// Profile is the caller's portal profile.
type Profile struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email,omitempty"`
	FullName  string    `json:"full_name"`
	FarmType  string    `json:"farm_type,omitempty"`
	Location  string    `json:"location,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Farm is a registered farm.
type Farm struct {
	ID                 string    `json:"id"`
	OwnerID            string    `json:"owner_id"`
	Name               string    `json:"name"`
	FarmType           string    `json:"farm_type"`
	Location           string    `json:"location"`
	SizeHectares       *float64  `json:"size_hectares,omitempty"`
	AnimalCount        int       `json:"animal_count"`
	RegistrationNumber string    `json:"registration_number,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// FarmInput creates or updates a farm.
type FarmInput struct {
	Name               string   `json:"name"`
	FarmType           string   `json:"farm_type"`
	Location           string   `json:"location"`
	SizeHectares       *float64 `json:"size_hectares,omitempty"`
	AnimalCount        *int     `json:"animal_count,omitempty"`
	RegistrationNumber string   `json:"registration_number,omitempty"`
}

// Question is one weighted questionnaire item.
type Question struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Weight int    `json:"weight"`
}

// Area is one biosecurity domain of the questionnaire.
type Area struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Questions   []Question `json:"questions"`
}

// Catalog is the questionnaire the portal scores against.
type Catalog struct {
	Version string `json:"version"`
	Areas   []Area `json:"areas"`
}

// AssessmentAreas is the scored detail of an assessment.
type AssessmentAreas struct {
	CatalogVersion string         `json:"catalog_version"`
	Responses      map[string]int `json:"responses"`
	AreaScores     map[string]int `json:"area_scores"`
	Advisories     []string       `json:"advisories,omitempty"`
}

// Assessment is a completed risk assessment.
type Assessment struct {
	ID              string          `json:"id"`
	FarmID          string          `json:"farm_id"`
	AssessmentDate  time.Time       `json:"assessment_date"`
	OverallScore    int             `json:"overall_score"`
	RiskLevel       string          `json:"risk_level"`
	Areas           AssessmentAreas `json:"areas"`
	Recommendations string          `json:"recommendations"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// AssessmentPage is one page of assessments.
type AssessmentPage struct {
	Assessments []*Assessment `json:"assessments"`
	Total       int64         `json:"total"`
	Page        int           `json:"page"`
	PageSize    int           `json:"page_size"`
	TotalPages  int           `json:"total_pages"`
}

// DownloadLink is a time-limited URL for an exported document.
type DownloadLink struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Alert is a biosecurity alert.
type Alert struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Severity  string    `json:"severity"`
	AlertType string    `json:"alert_type"`
	FarmType  string    `json:"farm_type,omitempty"`
	Location  string    `json:"location,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AlertPage is one page of alerts.
type AlertPage struct {
	Alerts     []*Alert `json:"alerts"`
	Total      int64    `json:"total"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
	TotalPages int      `json:"total_pages"`
}

// ListOptions selects a page.  Zero values use the server defaults.
type ListOptions struct {
	Page     int
	PageSize int
}

func (o *ListOptions) encode(q url.Values) {
	if o == nil {
		return
	}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(o.PageSize))
	}
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

// FarmsClient manages the caller's farms.
type FarmsClient struct {
	client *Client
}

// List returns every farm owned by the caller.
func (f *FarmsClient) List(ctx context.Context) ([]*Farm, error) {
	var resp struct {
		Farms []*Farm `json:"farms"`
	}
	if err := f.client.get(ctx, "/farms", &resp); err != nil {
		return nil, err
	}
	return resp.Farms, nil
}

// Get returns one farm.
func (f *FarmsClient) Get(ctx context.Context, id string) (*Farm, error) {
	var farm Farm
	if err := f.client.get(ctx, "/farms/"+url.PathEscape(id), &farm); err != nil {
		return nil, err
	}
	return &farm, nil
}

// Create registers a farm.
func (f *FarmsClient) Create(ctx context.Context, in *FarmInput) (*Farm, error) {
	var farm Farm
	if err := f.client.post(ctx, "/farms", in, &farm); err != nil {
		return nil, err
	}
	return &farm, nil
}

// Update replaces a farm's details.
func (f *FarmsClient) Update(ctx context.Context, id string, in *FarmInput) (*Farm, error) {
	var farm Farm
	if err := f.client.put(ctx, "/farms/"+url.PathEscape(id), in, &farm); err != nil {
		return nil, err
	}
	return &farm, nil
}

// Delete removes a farm and its assessments.
func (f *FarmsClient) Delete(ctx context.Context, id string) error {
	return f.client.delete(ctx, "/farms/"+url.PathEscape(id))
}

// AssessmentsClient submits and reads risk assessments.
type AssessmentsClient struct {
	client *Client
}

// Catalog returns the questionnaire.
func (a *AssessmentsClient) Catalog(ctx context.Context) (*Catalog, error) {
	var c Catalog
	if err := a.client.get(ctx, "/catalog", &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Submit scores responses, keyed by question id with answers 1-4, for a
// farm the caller owns.
func (a *AssessmentsClient) Submit(ctx context.Context, farmID string, responses map[string]int, recommendations string) (*Assessment, error) {
	body := struct {
		Responses       map[string]int `json:"responses"`
		Recommendations string         `json:"recommendations,omitempty"`
	}{responses, recommendations}

	var out Assessment
	if err := a.client.post(ctx, fmt.Sprintf("/farms/%s/assessments", url.PathEscape(farmID)), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AssessmentListOptions filters List.
type AssessmentListOptions struct {
	ListOptions
	FarmID string
}

// List returns the caller's assessments, newest first.
func (a *AssessmentsClient) List(ctx context.Context, opts *AssessmentListOptions) (*AssessmentPage, error) {
	q := url.Values{}
	if opts != nil {
		opts.ListOptions.encode(q)
		if opts.FarmID != "" {
			q.Set("farm_id", opts.FarmID)
		}
	}
	var page AssessmentPage
	if err := a.client.get(ctx, withQuery("/assessments", q), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Get returns one assessment.
func (a *AssessmentsClient) Get(ctx context.Context, id string) (*Assessment, error) {
	var out Assessment
	if err := a.client.get(ctx, "/assessments/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Export renders the assessment report and returns a download link.
func (a *AssessmentsClient) Export(ctx context.Context, id string) (*DownloadLink, error) {
	var link DownloadLink
	if err := a.client.post(ctx, "/assessments/"+url.PathEscape(id)+"/export", nil, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

// AlertsClient reads active biosecurity alerts.
type AlertsClient struct {
	client *Client
}

// AlertListOptions filters List.
type AlertListOptions struct {
	ListOptions
	FarmType string
	Severity string
}

// List returns active alerts, newest first.
func (a *AlertsClient) List(ctx context.Context, opts *AlertListOptions) (*AlertPage, error) {
	q := url.Values{}
	if opts != nil {
		opts.ListOptions.encode(q)
		if opts.FarmType != "" {
			q.Set("farm_type", opts.FarmType)
		}
		if opts.Severity != "" {
			q.Set("severity", opts.Severity)
		}
	}
	var page AlertPage
	if err := a.client.get(ctx, withQuery("/alerts", q), &page); err != nil {
		return nil, err
	}
	return &page, nil
}
