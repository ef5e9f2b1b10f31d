package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/KRaymonne/pro/internal/database"
	"github.com/KRaymonne/pro/internal/models"
	"github.com/KRaymonne/pro/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
)

func setupTestDB(t *testing.T) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	if err := database.Connect(sqlite.Open(dsn), zap.NewNop()); err != nil {
		t.Fatalf("connect test database: %v", err)
	}
}

func testContext(t *testing.T, req *http.Request, user *models.User) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	if user != nil {
		c.Set("user", user)
	}
	return c, w
}

// An admin with no class or institution of their own and no query filters
// still gets a report, covering every student.
func TestClassroomReportWithoutFilters(t *testing.T) {
	setupTestDB(t)

	admin := &models.User{
		LastName:  "Martin",
		FirstName: "Claire",
		Email:     "direction@ecole.fr",
		Role:      models.RoleAdmin,
	}
	req := httptest.NewRequest(http.MethodGet, "/api/rapports/classe", nil)
	c, w := testContext(t, req, admin)

	h := NewReportHandler(zap.NewNop(), services.NewReportService(zap.NewNop()), services.NewExportService(zap.NewNop()))
	h.Classroom(c)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestClassroomReportStudentForbidden(t *testing.T) {
	setupTestDB(t)

	student := &models.User{Email: "eleve@ecole.fr", Role: models.RoleStudent}
	req := httptest.NewRequest(http.MethodGet, "/api/rapports/classe", nil)
	c, w := testContext(t, req, student)

	h := NewReportHandler(zap.NewNop(), services.NewReportService(zap.NewNop()), services.NewExportService(zap.NewNop()))
	h.Classroom(c)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}
