package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"homologacao/internal/database"
	"homologacao/internal/domain"
	"homologacao/internal/middleware"
	"homologacao/internal/modules/auth"
	"homologacao/internal/modules/cases"
	"homologacao/internal/modules/documents"
	"homologacao/internal/modules/scheduling"
	"homologacao/internal/modules/signatures"
	jwtsvc "homologacao/internal/pkg/jwt"
	"homologacao/internal/pkg/lock"
	"homologacao/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// 2026-08-31 is a Monday, matching the seeded weekday-1 capacity window.
const meetingDate = "2026-08-31"

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")

type E2ETestSuite struct {
	router *gin.Engine
	db     *gorm.DB

	companyToken string
	unionToken   string
	responsible  int64
}

type TestResponse struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   *ErrorDetail           `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func setupTestSuite(t *testing.T) *E2ETestSuite {
	t.Helper()

	dsn := fmt.Sprintf("file:e2e_%s?mode=memory&cache=shared", t.Name())
	db, err := database.Connect(dsn)
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, database.Migrate(db))

	userRepo := repository.NewUserRepository(db)
	caseRepo := repository.NewCaseRepository(db)
	docRepo := repository.NewDocumentRepository(db)
	windowRepo := repository.NewCapacityWindowRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	sigRepo := repository.NewSignatureRepository(db)

	jwtService := jwtsvc.New("test_secret_key_32_characters_min", 24*time.Hour)

	authService := auth.NewService(userRepo, jwtService)
	authHandler := auth.NewHandler(authService)

	availability := scheduling.NewAvailability(windowRepo, bookingRepo)
	coordinator := scheduling.NewCoordinator(availability, bookingRepo, userRepo, lock.NewMemoryLock())
	schedulingHandler := scheduling.NewHandler(availability, coordinator)

	signatureService := signatures.NewService(sigRepo)
	caseService := cases.NewService(caseRepo, coordinator, signatureService, nil)
	caseHandler := cases.NewHandler(caseService)

	documentService := documents.NewService(docRepo, caseService, documents.NewDiskStore(t.TempDir()))
	documentHandler := documents.NewHandler(documentService)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())

	v1 := r.Group("/api/v1")
	authHandler.RegisterRoutes(v1)

	protected := v1.Group("/")
	protected.Use(middleware.Auth(jwtService))
	{
		authHandler.RegisterProtectedRoutes(protected)
		caseHandler.RegisterRoutes(protected)
		documentHandler.RegisterRoutes(protected)
		schedulingHandler.RegisterRoutes(protected)
	}

	// seed one company user, one union responsible and her Monday window
	hash, err := bcrypt.GenerateFromPassword([]byte("senha123"), bcrypt.MinCost)
	require.NoError(t, err)

	company := &domain.User{Email: "rh@empresa.local", PasswordHash: string(hash), Name: "RH Empresa", Role: domain.RoleCompany, CompanyID: 1}
	require.NoError(t, db.Create(company).Error)
	ana := &domain.User{Email: "ana@sindicato.local", PasswordHash: string(hash), Name: "Ana", Role: domain.RoleUnion, UnionID: 1}
	require.NoError(t, db.Create(ana).Error)

	require.NoError(t, db.Create(&domain.CapacityWindow{
		UnionID:         1,
		ResponsibleID:   ana.ID,
		Weekday:         1,
		StartTime:       "08:00",
		EndTime:         "12:00",
		BreakStart:      "10:00",
		BreakEnd:        "10:15",
		SlotDurationMin: 30,
	}).Error)

	s := &E2ETestSuite{router: r, db: db, responsible: ana.ID}
	s.companyToken = s.login(t, "rh@empresa.local")
	s.unionToken = s.login(t, "ana@sindicato.local")
	return s
}

func (s *E2ETestSuite) makeRequest(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var bodyBytes []byte
	if body != nil {
		var err error
		bodyBytes, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *E2ETestSuite) uploadDocument(t *testing.T, caseID float64, docType, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("type", docType))
	fw, err := mw.CreateFormFile("file", docType+".pdf")
	require.NoError(t, err)
	_, err = io.Copy(fw, bytes.NewReader(pdfBytes))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", fmt.Sprintf("/api/v1/cases/%.0f/documents", caseID), &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) *TestResponse {
	t.Helper()
	var resp TestResponse
	require.NoErrorf(t, json.Unmarshal(w.Body.Bytes(), &resp), "unparseable response, status %d: %s", w.Code, w.Body.String())
	return &resp
}

func (s *E2ETestSuite) login(t *testing.T, email string) string {
	t.Helper()
	w := s.makeRequest(t, "POST", "/api/v1/auth/login", map[string]string{"email": email, "password": "senha123"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := parseResponse(t, w)
	token, _ := resp.Data["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func (s *E2ETestSuite) createCase(t *testing.T, requiredTypes ...string) float64 {
	t.Helper()
	w := s.makeRequest(t, "POST", "/api/v1/cases", map[string]interface{}{
		"employee_name":      "João da Silva",
		"employee_role":      "Operador",
		"union_id":           1,
		"termination_reason": "sem justa causa",
		"required_types":     requiredTypes,
	}, s.companyToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := parseResponse(t, w)
	return resp.Data["case"].(map[string]interface{})["id"].(float64)
}

func (s *E2ETestSuite) caseStatus(t *testing.T, caseID float64) string {
	t.Helper()
	w := s.makeRequest(t, "GET", fmt.Sprintf("/api/v1/cases/%.0f", caseID), nil, s.unionToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := parseResponse(t, w)
	return resp.Data["case"].(map[string]interface{})["status"].(string)
}

// approveAllDocuments approves every pending document of the case as the
// union reviewer.
func (s *E2ETestSuite) approveAllDocuments(t *testing.T, caseID float64) {
	t.Helper()
	w := s.makeRequest(t, "GET", fmt.Sprintf("/api/v1/cases/%.0f/documents", caseID), nil, s.unionToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := parseResponse(t, w)
	for _, raw := range resp.Data["documents"].([]interface{}) {
		doc := raw.(map[string]interface{})
		if doc["status"].(string) != "pending" {
			continue
		}
		w := s.makeRequest(t, "POST", fmt.Sprintf("/api/v1/documents/%s/approve", doc["id"].(string)), nil, s.unionToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
}

func TestFlow_FullHomologation(t *testing.T) {
	s := setupTestSuite(t)

	caseID := s.createCase(t, "termination_form", "notice_letter")
	assert.Equal(t, "awaiting_approval", s.caseStatus(t, caseID))

	w := s.makeRequest(t, "POST", fmt.Sprintf("/api/v1/cases/%.0f/accept", caseID), nil, s.unionToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "pending_documentation", s.caseStatus(t, caseID))

	w = s.uploadDocument(t, caseID, "termination_form", s.companyToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = s.uploadDocument(t, caseID, "notice_letter", s.companyToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "under_review", s.caseStatus(t, caseID))

	s.approveAllDocuments(t, caseID)
	assert.Equal(t, "awaiting_scheduling", s.caseStatus(t, caseID))

	// the company picks a slot from the listing
	w = s.makeRequest(t, "GET", "/api/v1/slots?union_id=1&date="+meetingDate, nil, s.companyToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := parseResponse(t, w)
	slots := resp.Data["slots"].([]interface{})
	require.Len(t, slots, 8)
	first := slots[0].(map[string]interface{})
	assert.Equal(t, meetingDate+"T08:00:00Z", first["start"].(string))

	w = s.makeRequest(t, "POST", fmt.Sprintf("/api/v1/cases/%.0f/book", caseID), map[string]interface{}{
		"responsible_id": s.responsible,
		"start":          first["start"],
		"end":            first["end"],
	}, s.companyToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "scheduled", s.caseStatus(t, caseID))

	w = s.makeRequest(t, "POST", fmt.Sprintf("/api/v1/cases/%.0f/meeting/start", caseID), nil, s.unionToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.makeRequest(t, "PATCH", fmt.Sprintf("/api/v1/cases/%.0f/remarks", caseID), map[string]string{
		"remarks": "empresa pagará diferença de FGTS até sexta",
	}, s.unionToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.makeRequest(t, "POST", fmt.Sprintf("/api/v1/cases/%.0f/meeting/finish", caseID), nil, s.unionToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "pending_signature", s.caseStatus(t, caseID))

	w = s.makeRequest(t, "POST", fmt.Sprintf("/api/v1/cases/%.0f/sign", caseID), map[string]interface{}{
		"party": "company", "confirmed": true,
	}, s.companyToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "pending_signature", s.caseStatus(t, caseID))

	// same party cannot sign twice
	w = s.makeRequest(t, "POST", fmt.Sprintf("/api/v1/cases/%.0f/sign", caseID), map[string]interface{}{
		"party": "company", "confirmed": true,
	}, s.companyToken)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ALREADY_SIGNED", parseResponse(t, w).Error.Code)

	w = s.makeRequest(t, "POST", fmt.Sprintf("/api/v1/cases/%.0f/sign", caseID), map[string]interface{}{
		"party": "union", "artifact_id": "scan-123",
	}, s.unionToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "finalized", s.caseStatus(t, caseID))

	// finalized cases refuse further commands
	w = s.makeRequest(t, "PATCH", fmt.Sprintf("/api/v1/cases/%.0f/remarks", caseID), map[string]string{"remarks": "tarde"}, s.unionToken)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CASE_CLOSED", parseResponse(t, w).Error.Code)
	w = s.uploadDocument(t, caseID, "other", s.companyToken)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestFlow_RejectionLoop(t *testing.T) {
	s := setupTestSuite(t)

	caseID := s.createCase(t, "termination_form")
	w := s.makeRequest(t, "POST", fmt.Sprintf("/api/v1/cases/%.0f/accept", caseID), nil, s.unionToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.uploadDocument(t, caseID, "termination_form", s.companyToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	docID := parseResponse(t, w).Data["document"].(map[string]interface{})["id"].(string)

	// the same type is locked while a pending document exists
	w = s.uploadDocument(t, caseID, "termination_form", s.companyToken)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "DOCUMENT_LOCKED", parseResponse(t, w).Error.Code)

	// rejection without a reason is refused, and the envelope says why
	w = s.makeRequest(t, "POST", "/api/v1/documents/"+docID+"/reject", map[string]string{}, s.unionToken)
	require.Equal(t, http.StatusBadRequest, w.Code)
	errResp := parseResponse(t, w)
	assert.Equal(t, "VALIDATION_ERROR", errResp.Error.Code)
	assert.NotNil(t, errResp.Error.Details)

	w = s.makeRequest(t, "POST", "/api/v1/documents/"+docID+"/reject", map[string]string{"reason": "página ilegível"}, s.unionToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "documentation_rejected", s.caseStatus(t, caseID))

	// a replacement re-opens review and can finish the set
	w = s.uploadDocument(t, caseID, "termination_form", s.companyToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "under_review", s.caseStatus(t, caseID))
	s.approveAllDocuments(t, caseID)
	assert.Equal(t, "awaiting_scheduling", s.caseStatus(t, caseID))
}

func TestFlow_Authorization(t *testing.T) {
	s := setupTestSuite(t)

	// no token
	w := s.makeRequest(t, "GET", "/api/v1/cases", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// the union does not open cases
	w = s.makeRequest(t, "POST", "/api/v1/cases", map[string]interface{}{
		"employee_name": "João", "union_id": 1,
	}, s.unionToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// the company does not accept them
	caseID := s.createCase(t)
	w = s.makeRequest(t, "POST", fmt.Sprintf("/api/v1/cases/%.0f/accept", caseID), nil, s.companyToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// nor does it manage capacity
	w = s.makeRequest(t, "GET", "/api/v1/unions/1/capacity-windows", nil, s.companyToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// union users cannot touch another union's capacity
	w = s.makeRequest(t, "GET", "/api/v1/unions/2/capacity-windows", nil, s.unionToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestFlow_BookingConflict(t *testing.T) {
	s := setupTestSuite(t)

	prepare := func() float64 {
		caseID := s.createCase(t, "termination_form")
		w := s.makeRequest(t, "POST", fmt.Sprintf("/api/v1/cases/%.0f/accept", caseID), nil, s.unionToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		w = s.uploadDocument(t, caseID, "termination_form", s.companyToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		s.approveAllDocuments(t, caseID)
		return caseID
	}

	first := prepare()
	second := prepare()

	book := func(caseID float64) *httptest.ResponseRecorder {
		return s.makeRequest(t, "POST", fmt.Sprintf("/api/v1/cases/%.0f/book", caseID), map[string]interface{}{
			"responsible_id": s.responsible,
			"start":          meetingDate + "T09:00:00Z",
			"end":            meetingDate + "T09:30:00Z",
		}, s.companyToken)
	}

	w := book(first)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = book(second)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "SLOT_UNAVAILABLE", parseResponse(t, w).Error.Code)
	assert.Equal(t, "awaiting_scheduling", s.caseStatus(t, second))

	// cancelling frees the slot for the second case
	w = s.makeRequest(t, "POST", fmt.Sprintf("/api/v1/cases/%.0f/cancel-booking", first), nil, s.unionToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = book(second)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}
