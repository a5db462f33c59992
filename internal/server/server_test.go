package server

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventsapi/internal/config"
	"eventsapi/internal/repository/memstore"
	"eventsapi/internal/storage"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Fields  []string        `json:"fields"`
	Count   *int            `json:"count"`
	Data    json.RawMessage `json:"data"`
}

type testApp struct {
	e         *echo.Echo
	uploadDir string
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server:     config.ServerConfig{Port: 3001},
		Database:   config.DatabaseConfig{Driver: config.DriverMemory},
		JWT:        config.JWTConfig{Secret: "test-secret", Expiry: time.Hour},
		Upload:     config.UploadConfig{Dir: t.TempDir(), MaxSize: 1024, Storage: config.StorageLocal},
		References: config.ReferencesConfig{OnDelete: config.OnDeleteOrphan},
		RateLimit:  config.RateLimitConfig{AuthRequests: 1000, AuthWindow: time.Minute},
		Redis:      config.RedisConfig{CacheTTL: time.Minute},
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *testApp {
	t.Helper()
	images, avatars, err := ImageStores(cfg)
	require.NoError(t, err)

	e := New(Deps{
		Config:  cfg,
		Store:   memstore.New(),
		Images:  images,
		Avatars: avatars,
	})
	return &testApp{e: e, uploadDir: cfg.Upload.Dir}
}

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	return a.serve(t, req)
}

func (a *testApp) serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func (a *testApp) register(t *testing.T, name, email string) string {
	t.Helper()
	rec, env := a.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"name": name, "email": email, "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.Token
}

func (a *testApp) create(t *testing.T, path, token string, body interface{}, key string) string {
	t.Helper()
	rec, env := a.do(t, http.MethodPost, path, token, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var data map[string]struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data[key].ID
}

func TestAuthFlow(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	token := app.register(t, "Ada Lovelace", "Ada@Example.com")

	rec, env := app.do(t, http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me struct {
		User map[string]interface{} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "ada@example.com", me.User["email"])
	assert.Equal(t, "Ada Lovelace", me.User["name"])
	assert.NotContains(t, me.User, "password")

	rec, env = app.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"name": "Ada", "email": "ADA@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, env.Success)

	rec, env = app.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	rec, _ = app.do(t, http.MethodPost, "/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	app := newTestApp(t, testConfig(t))
	app.register(t, "Ada", "ada@example.com")

	wrongPassword, wrongEnv := app.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "wrong-password",
	})
	unknownEmail, unknownEnv := app.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "nobody@example.com", "password": "secret1",
	})

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, wrongEnv.Message, unknownEnv.Message)

	rec, env := app.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "ada@example.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Fields, "password")
}

func TestAuthGate(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	rec, env := app.do(t, http.MethodGet, "/events", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "TOKEN_MISSING", env.Code)

	rec, env = app.do(t, http.MethodGet, "/events", "not-a-jwt", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "TOKEN_INVALID", env.Code)

	rec, _ = app.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = app.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
}

func TestTokenOfDeletedUserIsRejected(t *testing.T) {
	cfg := testConfig(t)
	images, avatars, err := ImageStores(cfg)
	require.NoError(t, err)

	// same secret, but the user only exists in the other app's store
	other := New(Deps{Config: cfg, Store: memstore.New(), Images: images, Avatars: avatars})
	orphanToken := (&testApp{e: other}).register(t, "Ghost", "ghost@example.com")

	app := newTestApp(t, cfg)
	rec, env := app.do(t, http.MethodGet, "/auth/me", orphanToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "USER_NOT_FOUND", env.Code)
}

func TestEventLifecycle(t *testing.T) {
	app := newTestApp(t, testConfig(t))
	owner := app.register(t, "Owner", "owner@example.com")
	intruder := app.register(t, "Intruder", "intruder@example.com")

	categoryID := app.create(t, "/categories", owner, map[string]interface{}{"name": "Music"}, "category")
	locationID := app.create(t, "/locations", owner, map[string]interface{}{
		"name": "Harbour Hall", "latitude": 59.9, "longitude": 10.7,
	}, "location")

	rec, env := app.do(t, http.MethodPost, "/events", owner, map[string]interface{}{"name": "x"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Subset(t, env.Fields, []string{"name", "description", "date", "time", "price", "category", "location"})

	rec, _ = app.do(t, http.MethodPost, "/events", owner, map[string]interface{}{
		"name": "Jazz night", "description": "Live jazz by the water", "date": "2026-07-01",
		"time": "20:00", "price": 15, "category": "missing", "location": locationID,
	})
	require.Equal(t, http.StatusNotFound, rec.Code)

	eventID := app.create(t, "/events", owner, map[string]interface{}{
		"name": "Jazz night", "description": "Live jazz by the water", "date": "2026-07-01",
		"time": "20:00", "price": 15, "category": categoryID, "location": locationID,
	}, "event")

	rec, env = app.do(t, http.MethodGet, "/events/"+eventID, owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Event struct {
			Category  map[string]interface{} `json:"category"`
			Location  map[string]interface{} `json:"location"`
			CreatedBy map[string]interface{} `json:"createdBy"`
			ImageURL  *string                `json:"imageUrl"`
		} `json:"event"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "Music", got.Event.Category["name"])
	assert.Equal(t, "Harbour Hall", got.Event.Location["name"])
	assert.Equal(t, "owner@example.com", got.Event.CreatedBy["email"])
	assert.NotContains(t, got.Event.CreatedBy, "password")

	rec, _ = app.do(t, http.MethodPut, "/events/"+eventID, intruder, map[string]interface{}{"name": "Hijacked"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec, _ = app.do(t, http.MethodDelete, "/events/"+eventID, intruder, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env = app.do(t, http.MethodPut, "/events/"+eventID, owner, map[string]interface{}{
		"price": 0, "imageUrl": "/uploads/event-1-2.png",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &got))
	require.NotNil(t, got.Event.ImageURL)

	rec, env = app.do(t, http.MethodPut, "/events/"+eventID, owner, map[string]interface{}{"imageUrl": nil})
	require.Equal(t, http.StatusOK, rec.Code)
	got.Event.ImageURL = nil
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Nil(t, got.Event.ImageURL)

	rec, _ = app.do(t, http.MethodDelete, "/events/"+eventID, owner, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = app.do(t, http.MethodGet, "/events/"+eventID, owner, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEventFilters(t *testing.T) {
	app := newTestApp(t, testConfig(t))
	token := app.register(t, "Owner", "owner@example.com")

	categoryID := app.create(t, "/categories", token, map[string]interface{}{"name": "Music"}, "category")
	locationID := app.create(t, "/locations", token, map[string]interface{}{
		"name": "Harbour Hall", "latitude": 0, "longitude": 0,
	}, "location")

	for _, e := range []struct {
		name, description, date string
		price                   float64
	}{
		{"Foo fighters tribute", "Rock covers all night", "2026-03-10", 30},
		{"Quiet evening", "Acoustic set with FOO guests", "2026-03-12", 10},
		{"Chess club", "Weekly meetup for players", "2026-03-11", 0},
	} {
		app.create(t, "/events", token, map[string]interface{}{
			"name": e.name, "description": e.description, "date": e.date, "time": "18:00",
			"price": e.price, "category": categoryID, "location": locationID,
		}, "event")
	}

	list := func(query string) []string {
		rec, env := app.do(t, http.MethodGet, "/events"+query, token, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var data struct {
			Events []struct {
				Name string `json:"name"`
			} `json:"events"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &data))
		require.NotNil(t, env.Count)
		assert.Equal(t, len(data.Events), *env.Count)
		names := make([]string, 0, len(data.Events))
		for _, e := range data.Events {
			names = append(names, e.Name)
		}
		return names
	}

	assert.Equal(t, []string{"Foo fighters tribute", "Chess club", "Quiet evening"}, list(""))
	assert.Equal(t, []string{"Foo fighters tribute", "Quiet evening"}, list("?search=foo"))
	assert.Equal(t, []string{"Quiet evening"}, list("?search=foo&maxPrice=20"))
	assert.Equal(t, []string{"Chess club", "Quiet evening"}, list("?minPrice=0&maxPrice=10"))
	assert.Equal(t, []string{"Foo fighters tribute", "Chess club"}, list("?startDate=2026-03-10&endDate=2026-03-11"))
	assert.Empty(t, list("?search=foo&category=other"))

	for _, query := range []string{"minPrice=cheap", "minPrice=NaN", "maxPrice=Inf", "maxPrice=-infinity"} {
		t.Run(query, func(t *testing.T) {
			rec, env := app.do(t, http.MethodGet, "/events?"+query, token, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, []string{strings.SplitN(query, "=", 2)[0]}, env.Fields)
		})
	}
}

func TestCategoryAndLocationValidation(t *testing.T) {
	app := newTestApp(t, testConfig(t))
	token := app.register(t, "Owner", "owner@example.com")

	rec, env := app.do(t, http.MethodPost, "/categories", token, map[string]interface{}{"name": "Music", "color": "blue"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"color"}, env.Fields)

	app.create(t, "/categories", token, map[string]interface{}{"name": "Music"}, "category")
	rec, _ = app.do(t, http.MethodPost, "/categories", token, map[string]interface{}{"name": "Music"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, env = app.do(t, http.MethodPost, "/locations", token, map[string]interface{}{
		"name": "Nowhere", "latitude": 91, "longitude": 0,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"latitude"}, env.Fields)

	rec, _ = app.do(t, http.MethodGet, "/categories/missing", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec, _ = app.do(t, http.MethodDelete, "/locations/missing", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, env = app.do(t, http.MethodGet, "/categories", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, env.Count)
	assert.Equal(t, 1, *env.Count)
}

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)

func multipartRequest(t *testing.T, method, path, token, field, filename, contentType string, data []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	return req
}

func uploadedFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestUploadImage(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.BaseURL = "https://api.example.com/"
	app := newTestApp(t, cfg)
	token := app.register(t, "Owner", "owner@example.com")

	rec, env := app.serve(t, multipartRequest(t, http.MethodPost, "/upload/image", token, "image", "pic.png", "image/png", pngBytes))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var data struct {
		URL      string `json:"url"`
		FullURL  string `json:"fullUrl"`
		Filename string `json:"filename"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Regexp(t, `^event-\d+-\d+\.png$`, data.Filename)
	assert.Equal(t, "/uploads/"+data.Filename, data.URL)
	assert.Equal(t, "https://api.example.com/uploads/"+data.Filename, data.FullURL)
	assert.Equal(t, []string{data.Filename}, uploadedFiles(t, app.uploadDir))

	served := httptest.NewRecorder()
	app.e.ServeHTTP(served, httptest.NewRequest(http.MethodGet, data.URL, nil))
	assert.Equal(t, http.StatusOK, served.Code)
	assert.Equal(t, pngBytes, served.Body.Bytes())

	t.Run("filename without extension", func(t *testing.T) {
		rec, env := app.serve(t, multipartRequest(t, http.MethodPost, "/upload/image", token, "image", "photo", "image/png", pngBytes))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var data struct {
			Filename string `json:"filename"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Regexp(t, `^event-\d+-\d+\.png$`, data.Filename)
		assert.Contains(t, uploadedFiles(t, app.uploadDir), data.Filename)
	})
}

func TestUploadImageRejections(t *testing.T) {
	app := newTestApp(t, testConfig(t))
	token := app.register(t, "Owner", "owner@example.com")

	tests := []struct {
		name        string
		field       string
		filename    string
		contentType string
		data        []byte
	}{
		{"disallowed type", "image", "doc.pdf", "application/pdf", []byte("%PDF-1.4 ...")},
		{"disguised content", "image", "pic.png", "image/png", []byte("plain text pretending")},
		{"above ceiling", "image", "pic.png", "image/png", append(pngBytes, make([]byte, 2048)...)},
		{"wrong field", "file", "pic.png", "image/png", pngBytes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := app.serve(t, multipartRequest(t, http.MethodPost, "/upload/image", token, tt.field, tt.filename, tt.contentType, tt.data))
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.False(t, env.Success)
			assert.Empty(t, uploadedFiles(t, app.uploadDir))
		})
	}
}

func TestUpdateAvatarWithoutImageHost(t *testing.T) {
	app := newTestApp(t, testConfig(t))
	token := app.register(t, "Owner", "owner@example.com")

	rec, env := app.serve(t, multipartRequest(t, http.MethodPut, "/auth/avatar", token, "avatar", "me.png", "image/png", pngBytes))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "CONFIGURATION_ERROR", env.Code)
	assert.Contains(t, env.Message, "CLOUDINARY_API_KEY")
	assert.Contains(t, env.Message, "CLOUDINARY_API_SECRET")
}

func TestAuthRateLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimit.AuthRequests = 2
	app := newTestApp(t, cfg)

	body := map[string]string{"email": "nobody@example.com", "password": "secret1"}
	for i := 0; i < 2; i++ {
		rec, _ := app.do(t, http.MethodPost, "/auth/login", "", body)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec, env := app.do(t, http.MethodPost, "/auth/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.False(t, env.Success)
}

func TestUnknownRoute(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	rec, env := app.do(t, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)

	rec, _ = app.do(t, http.MethodGet, "/uploads/missing.png", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestImageStores(t *testing.T) {
	cfg := testConfig(t)

	images, avatars, err := ImageStores(cfg)
	require.NoError(t, err)
	assert.Equal(t, "local", images.Name())
	assert.IsType(t, &storage.Unconfigured{}, avatars)

	cfg.Upload.Storage = config.StorageCloudinary
	images, _, err = ImageStores(cfg)
	require.NoError(t, err)
	assert.IsType(t, &storage.Unconfigured{}, images)
}
