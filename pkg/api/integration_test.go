package api_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/loopfz/gadgeto/tonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cleancity-app/waste-report-api/pkg/api"
	"github.com/cleancity-app/waste-report-api/pkg/api/auth"
	"github.com/cleancity-app/waste-report-api/pkg/api/handler"
	"github.com/cleancity-app/waste-report-api/pkg/api/helpers/problem"
	"github.com/cleancity-app/waste-report-api/pkg/api/models"
	"github.com/cleancity-app/waste-report-api/pkg/api/repositories"
	"github.com/cleancity-app/waste-report-api/pkg/api/services"
	"github.com/cleancity-app/waste-report-api/pkg/api/testutil"
	"github.com/cleancity-app/waste-report-api/pkg/api/uploads"
)

var errorHookOnce sync.Once

func setupErrorHook() {
	errorHookOnce.Do(func() {
		tonic.SetErrorHook(func(c *gin.Context, err error) (int, interface{}) {
			if apiErr, ok := err.(problem.APIError); ok {
				c.Header("Content-Type", "application/problem+json")
				return apiErr.Status, apiErr
			}
			var be tonic.BindError
			if errors.As(err, &be) {
				apiErr := problem.NewBadRequest("body", err.Error())
				c.Header("Content-Type", "application/problem+json")
				return apiErr.Status, apiErr
			}
			internal := problem.NewInternalServerError(err.Error())
			c.Header("Content-Type", "application/problem+json")
			return internal.Status, internal
		})
	})
}

type testEnv struct {
	server *testServer
	db     *gorm.DB
}

type testServer struct {
	baseURL string
	client  *http.Client
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	setupErrorHook()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.WasteReport{}, &models.WastePhoto{}))

	root := t.TempDir()
	intake := uploads.New(uploads.Config{Root: root}, nil)
	tokens := auth.NewTokenManager("integration-secret", "waste-report-api-test", time.Hour)

	userRepo := repositories.NewUserRepository(db)
	reportRepo := repositories.NewReportRepository(db)

	authSvc := services.NewAuthService(userRepo, tokens)
	reportSvc := services.NewReportService(reportRepo, intake, true, nil)
	adminSvc := services.NewAdminService(reportRepo)

	router := api.NewRouter("1.0.0", api.RouterDeps{
		Auth:        handler.NewAuthController(authSvc),
		Users:       handler.NewUsersController(authSvc, userRepo),
		Reports:     handler.NewReportsController(reportSvc),
		Admin:       handler.NewAdminController(adminSvc),
		Tokens:      tokens,
		UserRepo:    userRepo,
		CORSOrigins: []string{"http://localhost:3000"},
	})

	srv := testutil.NewTestServer(t, router)
	return &testEnv{
		server: &testServer{baseURL: srv.URL, client: srv.Client()},
		db:     db,
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body io.Reader, contentType string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, s.baseURL+path, body)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.client.Do(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return resp, data
}

func (s *testServer) doJSON(t *testing.T, method, path, token string, payload interface{}) (*http.Response, []byte) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	return s.do(t, method, path, token, body, "application/json")
}

func registerAndLogin(t *testing.T, env *testEnv, email, username string) string {
	t.Helper()
	resp, _ := env.server.doJSON(t, http.MethodPost, "/v1/auth/register", "", models.RegisterInput{
		Email:    email,
		Username: username,
		Password: "hunter2hunter2",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, data := env.server.doJSON(t, http.MethodPost, "/v1/auth/login", "", models.LoginInput{
		Email:    email,
		Password: "hunter2hunter2",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var token models.TokenResponse
	require.NoError(t, json.Unmarshal(data, &token))
	require.NotEmpty(t, token.AccessToken)
	return token.AccessToken
}

func adminToken(t *testing.T, env *testEnv) string {
	t.Helper()
	resp, _ := env.server.doJSON(t, http.MethodPost, "/v1/auth/register", "", models.RegisterInput{
		Email:    "admin@example.com",
		Username: "admin",
		Password: "hunter2hunter2",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NoError(t, env.db.Model(&models.User{}).
		Where("username = ?", "admin").
		Update("is_admin", true).Error)

	// login after the promotion so the token carries the admin claim
	resp, data := env.server.doJSON(t, http.MethodPost, "/v1/auth/login", "", models.LoginInput{
		Email:    "admin@example.com",
		Password: "hunter2hunter2",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tok models.TokenResponse
	require.NoError(t, json.Unmarshal(data, &tok))
	return tok.AccessToken
}

var jpegPayload = append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, bytes.Repeat([]byte{0x42}, 64)...)

func reportForm(t *testing.T, fields map[string]string, photos ...string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, name := range photos {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="photos"; filename=%q`, name))
		h.Set("Content-Type", "image/jpeg")
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(jpegPayload)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func baseReportFields() map[string]string {
	return map[string]string{
		"streetAddress":    "Kalverstraat 1",
		"city":             "Amsterdam",
		"postalCode":       "1012 NX",
		"wasteType":        "household",
		"quantityEstimate": "medium",
		"urgencyLevel":     "low",
		"reporterName":     "A. Reporter",
	}
}

func TestWasteTypes_Public(t *testing.T) {
	env := newEnv(t)

	resp, data := env.server.do(t, http.MethodGet, "/v1/waste-reports/types", "", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out models.WasteTypesResponse
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Len(t, out.WasteTypes, 8)
}

func TestReports_RequireAuth(t *testing.T) {
	env := newEnv(t)

	resp, _ := env.server.do(t, http.MethodGet, "/v1/waste-reports", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateAndRetrieveReport(t *testing.T) {
	env := newEnv(t)
	token := registerAndLogin(t, env, "anna@example.com", "anna")

	body, ct := reportForm(t, baseReportFields(), "before.jpg", "after.jpg")
	resp, data := env.server.do(t, http.MethodPost, "/v1/waste-reports", token, body, ct)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))

	var created models.ReportDetail
	require.NoError(t, json.Unmarshal(data, &created))
	assert.Equal(t, models.StatusPending, created.Status)
	assert.NotEmpty(t, created.Reference)
	assert.Len(t, created.Photos, 2)
	assert.Empty(t, created.PhotoWarnings)

	resp, data = env.server.do(t, http.MethodGet, "/v1/waste-reports/"+created.Id, token, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got models.ReportDetail
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, created.Id, got.Id)
}

func TestCreateReport_MissingFields(t *testing.T) {
	env := newEnv(t)
	token := registerAndLogin(t, env, "anna@example.com", "anna")

	fields := baseReportFields()
	delete(fields, "city")
	body, ct := reportForm(t, fields)
	resp, data := env.server.do(t, http.MethodPost, "/v1/waste-reports", token, body, ct)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(data))
}

func TestListReports_OwnerScoped(t *testing.T) {
	env := newEnv(t)
	anna := registerAndLogin(t, env, "anna@example.com", "anna")
	bram := registerAndLogin(t, env, "bram@example.com", "bram")

	body, ct := reportForm(t, baseReportFields())
	resp, _ := env.server.do(t, http.MethodPost, "/v1/waste-reports", anna, body, ct)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, data := env.server.do(t, http.MethodGet, "/v1/waste-reports", bram, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list models.ReportList
	require.NoError(t, json.Unmarshal(data, &list))
	assert.Empty(t, list.Items)

	resp, data = env.server.do(t, http.MethodGet, "/v1/waste-reports", anna, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(data, &list))
	assert.Len(t, list.Items, 1)
	assert.Equal(t, "1", resp.Header.Get("X-Total-Count"))
}

func TestRetrieveReport_OtherOwnerForbidden(t *testing.T) {
	env := newEnv(t)
	anna := registerAndLogin(t, env, "anna@example.com", "anna")
	bram := registerAndLogin(t, env, "bram@example.com", "bram")

	body, ct := reportForm(t, baseReportFields())
	resp, data := env.server.do(t, http.MethodPost, "/v1/waste-reports", anna, body, ct)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.ReportDetail
	require.NoError(t, json.Unmarshal(data, &created))

	resp, _ = env.server.do(t, http.MethodGet, "/v1/waste-reports/"+created.Id, bram, nil, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestUpdateAndDeleteReport(t *testing.T) {
	env := newEnv(t)
	token := registerAndLogin(t, env, "anna@example.com", "anna")

	body, ct := reportForm(t, baseReportFields())
	resp, data := env.server.do(t, http.MethodPost, "/v1/waste-reports", token, body, ct)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.ReportDetail
	require.NoError(t, json.Unmarshal(data, &created))

	body, ct = reportForm(t, map[string]string{"description": "bags torn open by gulls"})
	resp, data = env.server.do(t, http.MethodPut, "/v1/waste-reports/"+created.Id, token, body, ct)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	var updated models.ReportDetail
	require.NoError(t, json.Unmarshal(data, &updated))
	assert.Equal(t, "bags torn open by gulls", updated.Description)

	resp, _ = env.server.do(t, http.MethodDelete, "/v1/waste-reports/"+created.Id, token, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.server.do(t, http.MethodGet, "/v1/waste-reports/"+created.Id, token, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminModerationFlow(t *testing.T) {
	env := newEnv(t)
	anna := registerAndLogin(t, env, "anna@example.com", "anna")
	admin := adminToken(t, env)

	body, ct := reportForm(t, baseReportFields())
	resp, data := env.server.do(t, http.MethodPost, "/v1/waste-reports", anna, body, ct)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.ReportDetail
	require.NoError(t, json.Unmarshal(data, &created))

	// citizens are kept out of moderation routes
	resp, _ = env.server.do(t, http.MethodGet, "/v1/admin/waste-reports", anna, nil, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, data = env.server.do(t, http.MethodGet, "/v1/admin/waste-reports", admin, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list models.ReportList
	require.NoError(t, json.Unmarshal(data, &list))
	assert.Len(t, list.Items, 1)

	resp, data = env.server.doJSON(t, http.MethodPut, "/v1/admin/waste-reports/"+created.Id+"/status", admin,
		map[string]string{"status": "approved", "adminNotes": "crew scheduled"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	var detail models.AdminReportDetail
	require.NoError(t, json.Unmarshal(data, &detail))
	assert.Equal(t, models.StatusApproved, detail.Status)
	assert.Equal(t, "crew scheduled", detail.AdminNotes)
	assert.Equal(t, "anna@example.com", detail.UserEmail)

	// once approved the owner can no longer edit or delete
	body, ct = reportForm(t, map[string]string{"description": "update attempt"})
	resp, _ = env.server.do(t, http.MethodPut, "/v1/waste-reports/"+created.Id, anna, body, ct)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = env.server.do(t, http.MethodDelete, "/v1/waste-reports/"+created.Id, anna, nil, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, data = env.server.do(t, http.MethodGet, "/v1/admin/waste-reports/statistics", admin, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats models.Statistics
	require.NoError(t, json.Unmarshal(data, &stats))
	assert.EqualValues(t, 1, stats.TotalReports)
	assert.EqualValues(t, 1, stats.ByStatus[models.StatusApproved])
}

func TestProfileAndPasswordFlow(t *testing.T) {
	env := newEnv(t)
	token := registerAndLogin(t, env, "anna@example.com", "anna")

	resp, data := env.server.do(t, http.MethodGet, "/v1/auth/me", token, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me models.User
	require.NoError(t, json.Unmarshal(data, &me))
	assert.Equal(t, "anna", me.Username)
	assert.NotContains(t, string(data), "passwordHash")

	resp, data = env.server.doJSON(t, http.MethodPost, "/v1/auth/change-password", token,
		models.ChangePasswordInput{
			OldPassword:             "hunter2hunter2",
			NewPassword:             "correct-horse-1",
			NewPasswordConfirmation: "correct-horse-1",
		})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	resp, _ = env.server.doJSON(t, http.MethodPost, "/v1/auth/login", "", models.LoginInput{
		Email:    "anna@example.com",
		Password: "hunter2hunter2",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = env.server.doJSON(t, http.MethodPost, "/v1/auth/login", "", models.LoginInput{
		Email:    "anna@example.com",
		Password: "correct-horse-1",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestOpenAPIDocument(t *testing.T) {
	env := newEnv(t)

	resp, data := env.server.do(t, http.MethodGet, "/v1/openapi.json", "", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), "Waste Report API v1")
}
