package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/geoattend/internal/db"
	"github.com/geoattend/internal/service"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// stubResolver 返回固定定位结果，避免测试访问外部服务
type stubResolver struct {
	location service.Location
}

func (s stubResolver) ResolveCurrent(context.Context) service.Location {
	return s.location
}

func fixedLocation(lat, lon float64, address string) service.Location {
	return service.Location{Latitude: &lat, Longitude: &lon, Address: address}
}

func setupHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:handler-%s-%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return gdb
}

func newTestAPI(gdb *gorm.DB, resolver service.LocationResolver) *API {
	return &API{
		db:         gdb,
		attendance: service.NewAttendanceService(gdb, resolver),
		exports:    service.NewExportService(),
		auth:       service.NewAuthService("admin", "12345"),
	}
}

func newTestRouter(api *API) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(sessions.Sessions("geoattend_session", cookie.NewStore([]byte("test-secret"))))

	attendance := r.Group("/api/attendance")
	{
		attendance.POST("/checkin", api.CheckIn)
		attendance.POST("/checkout", api.CheckOut)
		attendance.GET("/history", api.History)
		attendance.GET("/history/map", api.HistoryMap)
	}

	admin := r.Group("/api/admin")
	{
		admin.POST("/login", api.Login)
		admin.POST("/logout", api.Logout)

		auth := admin.Group("")
		auth.Use(api.AuthRequired())
		{
			auth.GET("/records", api.Records)
			auth.GET("/records/map", api.RecordsMap)
			auth.GET("/records/export", api.ExportCSV)
			auth.GET("/usernames", api.Usernames)
		}
	}

	return r
}

func doJSON(router *gin.Engine, method, target, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	request := httptest.NewRequest(method, target, reader)
	request.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		request.AddCookie(c)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func loginAsAdmin(t *testing.T, router *gin.Engine) []*http.Cookie {
	t.Helper()

	recorder := doJSON(router, http.MethodPost, "/api/admin/login", `{"username":"admin","password":"12345"}`, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("login failed with status %d: %s", recorder.Code, recorder.Body.String())
	}
	return recorder.Result().Cookies()
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	gdb := setupHandlerTestDB(t)
	router := newTestRouter(newTestAPI(gdb, stubResolver{}))

	recorder := doJSON(router, http.MethodPost, "/api/admin/login", `{"username":"admin","password":"nope"}`, nil)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, recorder.Code)
	}
}

func TestAdminRoutesRequireSession(t *testing.T) {
	gdb := setupHandlerTestDB(t)
	router := newTestRouter(newTestAPI(gdb, stubResolver{}))

	recorder := doJSON(router, http.MethodGet, "/api/admin/records", "", nil)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, recorder.Code)
	}
}

func TestLoginThenQueryRecords(t *testing.T) {
	gdb := setupHandlerTestDB(t)
	api := newTestAPI(gdb, stubResolver{location: fixedLocation(12.9, 77.6, "Bengaluru, Karnataka, India")})
	router := newTestRouter(api)

	if recorder := doJSON(router, http.MethodPost, "/api/attendance/checkin", `{"username":"alice","remark":"start"}`, nil); recorder.Code != http.StatusOK {
		t.Fatalf("checkin failed with status %d", recorder.Code)
	}

	cookies := loginAsAdmin(t, router)

	recorder := doJSON(router, http.MethodGet, "/api/admin/records?username=All", "", cookies)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, recorder.Code, recorder.Body.String())
	}
	if !strings.Contains(recorder.Body.String(), `"alice"`) {
		t.Fatalf("expected records to contain alice, got %s", recorder.Body.String())
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	gdb := setupHandlerTestDB(t)
	router := newTestRouter(newTestAPI(gdb, stubResolver{}))

	cookies := loginAsAdmin(t, router)

	if recorder := doJSON(router, http.MethodPost, "/api/admin/logout", "", cookies); recorder.Code != http.StatusOK {
		t.Fatalf("logout failed with status %d", recorder.Code)
	}

	recorder := doJSON(router, http.MethodGet, "/api/admin/records", "", cookies)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d after logout, got %d", http.StatusUnauthorized, recorder.Code)
	}
}

func TestExportCSVDownload(t *testing.T) {
	gdb := setupHandlerTestDB(t)
	api := newTestAPI(gdb, stubResolver{location: fixedLocation(12.9, 77.6, "Bengaluru, Karnataka, India")})
	router := newTestRouter(api)

	if recorder := doJSON(router, http.MethodPost, "/api/attendance/checkin", `{"username":"alice","remark":"start"}`, nil); recorder.Code != http.StatusOK {
		t.Fatalf("checkin failed with status %d", recorder.Code)
	}

	cookies := loginAsAdmin(t, router)

	recorder := doJSON(router, http.MethodGet, "/api/admin/records/export", "", cookies)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, recorder.Code)
	}
	if ct := recorder.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("unexpected content type: %s", ct)
	}
	if cd := recorder.Header().Get("Content-Disposition"); !strings.Contains(cd, "attendance_export.csv") {
		t.Fatalf("unexpected content disposition: %s", cd)
	}

	lines := strings.Split(strings.TrimSpace(recorder.Body.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus one row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "id,username") {
		t.Fatalf("unexpected csv header: %s", lines[0])
	}
	if !strings.Contains(lines[1], "alice") {
		t.Fatalf("expected row for alice, got %s", lines[1])
	}
}
