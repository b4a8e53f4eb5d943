package leave

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestTotalDaysIsInclusive(t *testing.T) {
	cases := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{"single day", day(2025, time.June, 2), day(2025, time.June, 2), 1},
		{"full week", day(2025, time.June, 2), day(2025, time.June, 8), 7},
		{"month boundary", day(2025, time.May, 30), day(2025, time.June, 2), 4},
		{"year boundary", day(2025, time.December, 31), day(2026, time.January, 1), 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := TotalDays(tc.start, tc.end); got != tc.want {
				t.Fatalf("TotalDays(%s, %s) = %d, want %d", tc.start.Format("2006-01-02"), tc.end.Format("2006-01-02"), got, tc.want)
			}
		})
	}
}

func TestTotalDaysRoundsPartialDaysUp(t *testing.T) {
	start := day(2025, time.June, 2)
	end := time.Date(2025, time.June, 3, 14, 0, 0, 0, time.UTC)
	if got := TotalDays(start, end); got != 3 {
		t.Fatalf("expected a partial trailing day to count in full, got %d", got)
	}
}

func TestValidType(t *testing.T) {
	for _, typ := range []string{TypeCasual, TypeSick, TypeEarned, TypeUnpaid} {
		if !ValidType(typ) {
			t.Fatalf("expected %q to be a valid leave type", typ)
		}
	}
	if ValidType("sabbatical") {
		t.Fatal("did not expect unknown type to validate")
	}
}
