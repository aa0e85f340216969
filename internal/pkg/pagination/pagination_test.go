package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func queryContext(t *testing.T, rawQuery string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/v1/chats?"+rawQuery, nil)
	return c
}

func TestFromContext(t *testing.T) {
	tests := []struct {
		name     string
		rawQuery string
		want     Query
	}{
		{name: "defaults", rawQuery: "", want: Query{Page: DefaultPage, Size: DefaultSize}},
		{name: "explicit", rawQuery: "page=3&size=5", want: Query{Page: 3, Size: 5}},
		{name: "zero page clamped", rawQuery: "page=0", want: Query{Page: DefaultPage, Size: DefaultSize}},
		{name: "negative size clamped", rawQuery: "size=-1", want: Query{Page: DefaultPage, Size: DefaultSize}},
		{name: "oversized page capped", rawQuery: "size=9999", want: Query{Page: DefaultPage, Size: MaxSize}},
		{name: "garbage falls back", rawQuery: "page=abc&size=xyz", want: Query{Page: DefaultPage, Size: DefaultSize}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromContext(queryContext(t, tt.rawQuery)); got != tt.want {
				t.Errorf("FromContext(%q) = %+v, want %+v", tt.rawQuery, got, tt.want)
			}
		})
	}
}

func TestQueryOffset(t *testing.T) {
	tests := []struct {
		q    Query
		want int
	}{
		{q: Query{Page: 1, Size: 20}, want: 0},
		{q: Query{Page: 2, Size: 20}, want: 20},
		{q: Query{Page: 4, Size: 5}, want: 15},
	}
	for _, tt := range tests {
		if got := tt.q.Offset(); got != tt.want {
			t.Errorf("Offset(%+v) = %d, want %d", tt.q, got, tt.want)
		}
	}
}
