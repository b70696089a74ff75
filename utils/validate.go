package utils

import (
	"fmt"
	"net/mail"
	"strconv"
	"strings"
)

// Validators return human-readable error lists; an empty list means valid.
// Messages are kept in the app's user-facing language.

// ValidateUsername checks length and allowed characters (letters, digits,
// underscore and CJK ideographs).
func ValidateUsername(username string) []string {
	var errs []string

	if username == "" {
		return []string{"使用者名稱不能為空"}
	}

	length := len([]rune(username))
	if length < 3 {
		errs = append(errs, "使用者名稱至少需要3個字元")
	}
	if length > 20 {
		errs = append(errs, "使用者名稱不能超過20個字元")
	}
	for _, r := range username {
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_' {
			continue
		}
		if r >= 0x4E00 && r <= 0x9FFF {
			continue
		}
		errs = append(errs, "使用者名稱只能包含字母、數字、底線和中文字元")
		break
	}

	return errs
}

// ValidatePassword checks password length bounds.
func ValidatePassword(password string) []string {
	var errs []string

	if password == "" {
		return []string{"密碼不能為空"}
	}
	if len(password) < 6 {
		errs = append(errs, "密碼至少需要6個字元")
	}
	if len(password) > 20 {
		errs = append(errs, "密碼不能超過20個字元")
	}

	return errs
}

// ValidateEmail parses the address and returns its normalized (lowercased)
// form when valid.
func ValidateEmail(email string) ([]string, string) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil || addr.Name != "" {
		return []string{"電子郵件格式不正確"}, ""
	}
	return nil, strings.ToLower(addr.Address)
}

// TempleInput carries the fields checked by ValidateTemple.
type TempleInput struct {
	Name          string
	MainDeity     string
	Description   string
	Address       string
	Latitude      *float64
	Longitude     *float64
	BlessingBonus int
}

// ValidateTemple checks required fields, coordinate ranges and the bonus range.
func ValidateTemple(in TempleInput) []string {
	var errs []string

	required := []struct {
		field, value string
	}{
		{"name", in.Name},
		{"main_deity", in.MainDeity},
		{"description", in.Description},
		{"address", in.Address},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, fmt.Sprintf("%s 為必填欄位", r.field))
		}
	}

	if in.Latitude == nil {
		errs = append(errs, "latitude 為必填欄位")
	} else if *in.Latitude < -90 || *in.Latitude > 90 {
		errs = append(errs, "緯度必須在 -90 到 90 之間")
	}
	if in.Longitude == nil {
		errs = append(errs, "longitude 為必填欄位")
	} else if *in.Longitude < -180 || *in.Longitude > 180 {
		errs = append(errs, "經度必須在 -180 到 180 之間")
	}

	if in.BlessingBonus < 1 || in.BlessingBonus > 10 {
		errs = append(errs, "福報加成值必須在 1 到 10 之間")
	}

	return errs
}

// ValidateAmulet checks the amulet name and UID bounds.
func ValidateAmulet(name, uid string) []string {
	var errs []string

	if strings.TrimSpace(name) == "" {
		errs = append(errs, "平安符名稱不能為空")
	} else if len([]rune(name)) > 100 {
		errs = append(errs, "平安符名稱不能超過100個字元")
	}

	if strings.TrimSpace(uid) == "" {
		errs = append(errs, "UID 不能為空")
	} else if len(uid) > 50 {
		errs = append(errs, "UID 不能超過50個字元")
	}

	return errs
}

// ValidateCheckin checks the check-in request required fields.
func ValidateCheckin(templeID uint, amuletUID string) []string {
	var errs []string
	if templeID == 0 {
		errs = append(errs, "temple_id 為必填欄位")
	}
	if strings.TrimSpace(amuletUID) == "" {
		errs = append(errs, "amulet_uid 為必填欄位")
	}
	return errs
}

const (
	defaultPage    = 1
	defaultPerPage = 20
	maxPerPage     = 100
)

// ParsePagination coerces query strings into page/per_page values. Invalid
// input falls back to defaults and is reported alongside.
func ParsePagination(pageStr, perPageStr string) (page, perPage int, errs []string) {
	page, perPage = defaultPage, defaultPerPage

	if s := strings.TrimSpace(pageStr); s != "" {
		n, err := strconv.Atoi(s)
		switch {
		case err != nil:
			errs = append(errs, "頁碼格式不正確")
		case n < 1:
			errs = append(errs, "頁碼必須大於 0")
		default:
			page = n
		}
	}

	if s := strings.TrimSpace(perPageStr); s != "" {
		n, err := strconv.Atoi(s)
		switch {
		case err != nil:
			errs = append(errs, "每頁數量格式不正確")
		case n < 1:
			errs = append(errs, "每頁數量必須大於 0")
		case n > maxPerPage:
			errs = append(errs, fmt.Sprintf("每頁數量不能超過 %d", maxPerPage))
		default:
			perPage = n
		}
	}

	return page, perPage, errs
}
