package repositories

import (
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestDateRange(t *testing.T) {
	tests := []struct {
		from, to string
		want     bson.M
	}{
		{"", "", bson.M{}},
		{"2026-03-01", "", bson.M{"$gte": "2026-03-01"}},
		{"", "2026-03-07", bson.M{"$lte": "2026-03-07"}},
		{"2026-03-01", "2026-03-07", bson.M{"$gte": "2026-03-01", "$lte": "2026-03-07"}},
	}
	for _, tc := range tests {
		if got := dateRange(tc.from, tc.to); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("dateRange(%q, %q) = %v; want %v", tc.from, tc.to, got, tc.want)
		}
	}
}
