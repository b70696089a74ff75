package utils

import "testing"

func TestValidateUsername(t *testing.T) {
	cases := []struct {
		name     string
		username string
		wantOK   bool
	}{
		{"valid ascii", "pilgrim_01", true},
		{"valid chinese", "媽祖信徒", true},
		{"mixed", "temple哥", true},
		{"empty", "", false},
		{"too short", "ab", false},
		{"too long", "abcdefghijklmnopqrstu", false},
		{"bad characters", "user name!", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			errs := ValidateUsername(tc.username)
			if (len(errs) == 0) != tc.wantOK {
				t.Fatalf("ValidateUsername(%q) errs=%v, wantOK=%v", tc.username, errs, tc.wantOK)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	if errs := ValidatePassword("secret1"); len(errs) != 0 {
		t.Fatalf("expected valid password, got %v", errs)
	}
	if errs := ValidatePassword("short"); len(errs) == 0 {
		t.Fatal("expected error for short password")
	}
	if errs := ValidatePassword(""); len(errs) == 0 {
		t.Fatal("expected error for empty password")
	}
	if errs := ValidatePassword("aaaaaaaaaaaaaaaaaaaaaaaaa"); len(errs) == 0 {
		t.Fatal("expected error for long password")
	}
}

func TestValidateEmail(t *testing.T) {
	errs, normalized := ValidateEmail("  Pilgrim@Example.COM ")
	if len(errs) != 0 {
		t.Fatalf("expected valid email, got %v", errs)
	}
	if normalized != "pilgrim@example.com" {
		t.Fatalf("expected lowercased address, got %q", normalized)
	}

	for _, bad := range []string{"", "not-an-email", "a@", "Name <a@b.com>"} {
		if errs, _ := ValidateEmail(bad); len(errs) == 0 {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestValidateTemple(t *testing.T) {
	lat, lng := 25.0367, 121.5
	valid := TempleInput{
		Name:          "行天宮",
		MainDeity:     "關聖帝君",
		Description:   "台北著名廟宇",
		Address:       "台北市中山區民權東路二段109號",
		Latitude:      &lat,
		Longitude:     &lng,
		BlessingBonus: 2,
	}
	if errs := ValidateTemple(valid); len(errs) != 0 {
		t.Fatalf("expected valid temple, got %v", errs)
	}

	missing := valid
	missing.Name = ""
	if errs := ValidateTemple(missing); len(errs) == 0 {
		t.Fatal("expected error for missing name")
	}

	badLat := 95.0
	outOfRange := valid
	outOfRange.Latitude = &badLat
	if errs := ValidateTemple(outOfRange); len(errs) == 0 {
		t.Fatal("expected error for latitude out of range")
	}

	noCoords := valid
	noCoords.Latitude = nil
	noCoords.Longitude = nil
	if errs := ValidateTemple(noCoords); len(errs) != 2 {
		t.Fatalf("expected two coordinate errors, got %v", errs)
	}

	badBonus := valid
	badBonus.BlessingBonus = 11
	if errs := ValidateTemple(badBonus); len(errs) == 0 {
		t.Fatal("expected error for bonus out of range")
	}
}

func TestParsePagination(t *testing.T) {
	page, perPage, errs := ParsePagination("", "")
	if page != 1 || perPage != 20 || len(errs) != 0 {
		t.Fatalf("defaults: got page=%d perPage=%d errs=%v", page, perPage, errs)
	}

	page, perPage, errs = ParsePagination("3", "50")
	if page != 3 || perPage != 50 || len(errs) != 0 {
		t.Fatalf("explicit: got page=%d perPage=%d errs=%v", page, perPage, errs)
	}

	_, _, errs = ParsePagination("abc", "")
	if len(errs) == 0 {
		t.Fatal("expected error for non-numeric page")
	}

	_, perPage, errs = ParsePagination("", "1000")
	if len(errs) == 0 || perPage != 20 {
		t.Fatalf("expected cap error and default perPage, got perPage=%d errs=%v", perPage, errs)
	}

	_, _, errs = ParsePagination("0", "")
	if len(errs) == 0 {
		t.Fatal("expected error for page zero")
	}
}
