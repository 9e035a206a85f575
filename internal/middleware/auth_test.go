package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func guardedRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", AdminAuth(secret), func(c *gin.Context) {
		claims := c.MustGet(ClaimsKey).(*Claims)
		c.JSON(http.StatusOK, gin.H{"email": claims.Email})
	})
	return r
}

func callWithToken(r *gin.Engine, header string) int {
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec.Code
}

func TestAdminAuth(t *testing.T) {
	r := guardedRouter("s3cret")

	admin, err := IssueToken("s3cret", "1", "admin@example.com", "admin", time.Minute)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	staff, _ := IssueToken("s3cret", "2", "staff@example.com", "staff", time.Minute)
	forged, _ := IssueToken("other", "1", "admin@example.com", "admin", time.Minute)
	expired, _ := IssueToken("s3cret", "1", "admin@example.com", "admin", -time.Minute)

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"malformed", "Token abc", http.StatusUnauthorized},
		{"forged", "Bearer " + forged, http.StatusUnauthorized},
		{"expired", "Bearer " + expired, http.StatusUnauthorized},
		{"wrong role", "Bearer " + staff, http.StatusForbidden},
		{"admin", "Bearer " + admin, http.StatusOK},
	}
	for _, tc := range cases {
		if got := callWithToken(r, tc.header); got != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, got)
		}
	}
}
