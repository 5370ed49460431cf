package handlers

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appcompliance "github.com/turtacn/BioSecure-Portal/internal/application/compliance"
	"github.com/turtacn/BioSecure-Portal/internal/domain/compliance"
	"github.com/turtacn/BioSecure-Portal/internal/testutil"
	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

func complianceSetup() (*mockComplianceService, *gin.Engine) {
	svc := new(mockComplianceService)
	h := NewComplianceHandler(svc, testutil.NewMockLogger())
	e := newEngine()
	h.RegisterRoutes(e.Group("/admin"))
	return svc, e
}

func multipartUpload(t *testing.T, path, field, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestListCompliance_Filters(t *testing.T) {
	svc, e := complianceSetup()
	farmID := uuid.New()
	svc.On("List", mock.Anything, mock.MatchedBy(func(in *appcompliance.ListInput) bool {
		return in.FarmID != nil && *in.FarmID == farmID && in.Status == "active"
	})).Return(&appcompliance.ListResult{Records: []*compliance.Record{}}, nil)

	w := doJSON(e, http.MethodGet, "/admin/compliance?farm_id="+farmID.String()+"&status=active", nil)
	assertStatus(t, w, http.StatusOK)
	svc.AssertExpectations(t)
}

func TestCreateCompliance(t *testing.T) {
	svc, e := complianceSetup()
	farmID := uuid.New()
	svc.On("Create", mock.Anything, mock.Anything, mock.MatchedBy(func(in *compliance.Input) bool {
		return in.FarmID == farmID && in.ComplianceType == "Red Tractor"
	})).Return(&compliance.Record{ID: uuid.New(), FarmID: farmID, Status: compliance.StatusActive}, nil)

	w := doJSON(e, http.MethodPost, "/admin/compliance", compliance.Input{FarmID: farmID, ComplianceType: "Red Tractor"})
	assertStatus(t, w, http.StatusCreated)
}

func TestUploadCertificate_Success(t *testing.T) {
	svc, e := complianceSetup()
	id := uuid.New()
	svc.On("AttachCertificate", mock.Anything, mock.Anything, mock.MatchedBy(func(in *appcompliance.CertificateInput) bool {
		if in.RecordID != id || in.Filename != "cert.pdf" || in.Size != 7 {
			return false
		}
		body, err := io.ReadAll(in.Body)
		return err == nil && string(body) == "%PDF-1."
	})).Return(&compliance.Record{ID: id, DocumentKey: "certificates/" + id.String() + "/cert.pdf"}, nil)

	w := httptest.NewRecorder()
	e.ServeHTTP(w, multipartUpload(t, "/admin/compliance/"+id.String()+"/certificate", CertificateField, "cert.pdf", []byte("%PDF-1.")))
	assertStatus(t, w, http.StatusOK)
	svc.AssertExpectations(t)
}

func TestUploadCertificate_MissingFile(t *testing.T) {
	_, e := complianceSetup()

	w := httptest.NewRecorder()
	e.ServeHTTP(w, multipartUpload(t, "/admin/compliance/"+uuid.NewString()+"/certificate", "", "", nil))
	assertStatus(t, w, http.StatusBadRequest)
}

func TestUploadCertificate_TooLarge(t *testing.T) {
	svc, e := complianceSetup()
	svc.On("AttachCertificate", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New(errors.ErrCodeCertificateTooLarge, "certificate exceeds upload limit"))

	w := httptest.NewRecorder()
	e.ServeHTTP(w, multipartUpload(t, "/admin/compliance/"+uuid.NewString()+"/certificate", CertificateField, "big.pdf", []byte("xx")))
	assertStatus(t, w, http.StatusRequestEntityTooLarge)
}

func TestCertificateURL(t *testing.T) {
	svc, e := complianceSetup()
	id := uuid.New()
	svc.On("CertificateURL", mock.Anything, id).
		Return(&appcompliance.CertificateLink{URL: "https://s3.local/c", ExpiresAt: time.Now().Add(time.Hour)}, nil)
	missing := uuid.New()
	svc.On("CertificateURL", mock.Anything, missing).
		Return(nil, errors.New(errors.ErrCodeCertificateNotFound, "no certificate attached"))

	w := doJSON(e, http.MethodGet, "/admin/compliance/"+id.String()+"/certificate", nil)
	assertStatus(t, w, http.StatusOK)
	assert.Contains(t, w.Body.String(), "https://s3.local/c")

	w = doJSON(e, http.MethodGet, "/admin/compliance/"+missing.String()+"/certificate", nil)
	assertStatus(t, w, http.StatusNotFound)
	assert.Equal(t, errors.ErrCodeCertificateNotFound.String(), errorCode(t, w))
}

func TestDeleteCompliance(t *testing.T) {
	svc, e := complianceSetup()
	id := uuid.New()
	svc.On("Delete", mock.Anything, mock.Anything, id).Return(nil)

	assertStatus(t, doJSON(e, http.MethodDelete, "/admin/compliance/"+id.String(), nil), http.StatusNoContent)
}
