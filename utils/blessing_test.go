package utils

import "testing"

func TestGetBlessingLevel(t *testing.T) {
	cases := []struct {
		points    int
		wantLevel int
		wantName  string
	}{
		{0, 1, "初心者"},
		{99, 1, "初心者"},
		{100, 2, "虔誠信徒"},
		{499, 2, "虔誠信徒"},
		{500, 3, "福報滿滿"},
		{1500, 4, "功德圓滿"},
		{5000, 5, "大德高僧"},
		{10000, 6, "神通廣大"},
		{999999, 6, "神通廣大"},
	}
	for _, tc := range cases {
		level := GetBlessingLevel(tc.points)
		if level.Level != tc.wantLevel || level.Name != tc.wantName {
			t.Errorf("GetBlessingLevel(%d) = %d/%s, want %d/%s",
				tc.points, level.Level, level.Name, tc.wantLevel, tc.wantName)
		}
	}
}

func TestCalculatePoints(t *testing.T) {
	if got := CalculatePoints(1, 1, 0); got != 1 {
		t.Fatalf("base case: got %d", got)
	}
	if got := CalculatePoints(1, 3, 0); got != 3 {
		t.Fatalf("bonus multiplier: got %d", got)
	}
	if got := CalculatePoints(2, 5, 10); got != 20 {
		t.Fatalf("with special bonus: got %d", got)
	}
}
