package echoapi_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/student"
	emailsvc "github.com/trezcool/darasa/services/email"
	logsvc "github.com/trezcool/darasa/services/logger"
	dummydb "github.com/trezcool/darasa/storage/database/dummy"
)

type httpErr struct {
	Error string `json:"error"`
}

func setup(t *testing.T) (Server, student.Repository) {
	conf := core.NewConfig()
	conf.Debug = false
	conf.TestMode = true

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	repo := dummydb.NewStudentRepository(db)

	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	stuSvc := student.NewService(repo, dummydb.NewAccountProvisioner(db), mailSvc, conf)

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	student.InitValidators(validate, translator)

	app := NewServer(ServerDeps{
		Conf:       conf,
		Logger:     logsvc.NewStdLogger(log.New(io.Discard, "", 0)),
		StudentSvc: stuSvc,
		Validate:   validate,
		Translator: translator,
	})
	return app, repo
}

func getToken(t *testing.T, isAdmin bool) string {
	claims := GetAdminClaims("test-id", "admin@test.cd")
	claims.IsAdmin = isAdmin
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newUploadRequest(t *testing.T, path, token, filename string, contents []byte) (*http.Request, *httptest.ResponseRecorder) {
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	fw, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("newUploadRequest() failed: %v", err)
	}
	if _, err = fw.Write(contents); err != nil {
		t.Fatalf("newUploadRequest() failed: %v", err)
	}
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode() failed: %v; body: %s", err, rec.Body.String())
	}
}

func TestStudentAPI_auth(t *testing.T) {
	app, _ := setup(t)

	t.Run("no token", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/students", "")
		app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		var body httpErr
		decode(t, rec, &body)
		assert.Equal(t, "missing or malformed jwt", body.Error)
	})

	t.Run("non-admin token", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/students", getToken(t, false))
		app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		var body httpErr
		decode(t, rec, &body)
		assert.Equal(t, "permission denied", body.Error)
	})
}

func TestStudentAPI_bulkImport(t *testing.T) {
	app, repo := setup(t)
	admin := getToken(t, true)

	t.Run("no file", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/students/import", admin)
		app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var body map[string]string
		decode(t, rec, &body)
		assert.Equal(t, "a roster file is required", body["file"])
	})

	t.Run("unsupported format", func(t *testing.T) {
		req, rec := newUploadRequest(t, "/v1/students/import", admin, "roster.pdf", []byte("lol"))
		app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var body map[string]string
		decode(t, rec, &body)
		assert.Equal(t, "unsupported file format: roster.pdf", body["file"])
	})

	t.Run("empty roster", func(t *testing.T) {
		req, rec := newUploadRequest(t, "/v1/students/import", admin, "roster.csv", []byte("Email,Password\n"))
		app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var body map[string]string
		decode(t, rec, &body)
		assert.Equal(t, student.ErrEmptyTable.Error(), body["file"])
	})

	t.Run("mixed outcomes", func(t *testing.T) {
		roster := []byte("Email,Password,Name,Reg No,Year,Sem,Sec\n" +
			"awe@test.cd,s3cret!,Awe Mbuyi,17BCE123,2,3,A\n" +
			",s3cret!,No Email,17BCE124,2,3,A\n" +
			"kim@test.cd,s3cret!,Kim Ilunga,17BCE125,2nd,Semester 3,B\n")

		req, rec := newUploadRequest(t, "/v1/students/import", admin, "roster.csv", roster)
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var report student.BatchReport
		decode(t, rec, &report)

		assert.Equal(t, 2, report.Success)
		assert.Equal(t, 1, report.Failed)
		require.Len(t, report.Errors, 1)
		assert.Equal(t, "row 2", report.Errors[0].Reference)
		assert.Equal(t, "row 2: missing email or password", report.Errors[0].Error)

		students, err := repo.QueryAllStudents(req.Context())
		require.NoError(t, err)
		assert.Len(t, students, 2)
	})
}

func TestStudentAPI_create(t *testing.T) {
	app, _ := setup(t)
	admin := getToken(t, true)

	data, _ := json.Marshal(student.NewStudent{
		Email:              "awe@test.cd",
		Password:           "LyceeTK8!",
		FullName:           "Awe Mbuyi",
		RegistrationNumber: "17BCE123",
		Year:               2,
		Semester:           3,
		Section:            "a",
	})

	req, rec := newAuthRequest(http.MethodPost, "/v1/students", admin, data)
	app.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var stu student.Student
	decode(t, rec, &stu)
	assert.NotEmpty(t, stu.ID)
	assert.Equal(t, "A", stu.Section)
	assert.Equal(t, student.DefaultBranch, stu.Branch)

	t.Run("duplicate email", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/students", admin, data)
		app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var body map[string]string
		decode(t, rec, &body)
		assert.Equal(t, student.ErrEmailExists.Error(), body["email"])
	})

	t.Run("missing fields", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/students", admin, []byte(`{"email":"kim@test.cd"}`))
		app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var body map[string]string
		decode(t, rec, &body)
		assert.Contains(t, body, "password")
		assert.Contains(t, body, "full_name")
	})
}

func TestStudentAPI_queryAndExport(t *testing.T) {
	app, _ := setup(t)
	admin := getToken(t, true)

	roster := []byte("Email,Password,Name,Reg No,Year,Sem,Sec\n" +
		"awe@test.cd,s3cret!,Awe Mbuyi,17BCE123,2,3,A\n")
	req, rec := newUploadRequest(t, "/v1/students/import", admin, "roster.csv", roster)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	t.Run("query all", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/students", admin)
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var students []student.Student
		decode(t, rec, &students)
		require.Len(t, students, 1)
		assert.Equal(t, "awe@test.cd", students[0].Email)
	})

	t.Run("search no match", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/students?search=nope", admin)
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var students []student.Student
		decode(t, rec, &students)
		assert.Empty(t, students)
	})

	t.Run("export", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/students/export", admin)
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "students.xlsx")
		assert.NotEmpty(t, rec.Body.Bytes())
	})
}
