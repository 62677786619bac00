package i18n

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestNormalizeLocale(t *testing.T) {
	cases := map[string]string{
		"":                        LocaleEN,
		"en":                      LocaleEN,
		"zh-CN":                   LocaleZH,
		"zh-TW":                   LocaleTW,
		"zh-Hant":                 LocaleTW,
		"fr-FR":                   LocaleEN,
		"zh-CN,zh;q=0.9,en;q=0.8": LocaleZH,
		"not a locale;;":          LocaleEN,
	}
	for raw, want := range cases {
		if got := NormalizeLocale(raw); got != want {
			t.Fatalf("NormalizeLocale(%q) want %s, got %s", raw, want, got)
		}
	}
}

func TestTranslate(t *testing.T) {
	if got := T(LocaleEN, "error.account_not_found"); got != "Account not found" {
		t.Fatalf("unexpected en message: %s", got)
	}
	if got := T(LocaleZH, "error.account_not_found"); got != "账户不存在" {
		t.Fatalf("unexpected zh message: %s", got)
	}
	if got := T(LocaleEN, "error.missing_key_for_test"); got != "error.missing_key_for_test" {
		t.Fatalf("missing key should fall back to id, got %s", got)
	}
	if got := Sprintf(LocaleEN, "error.too_many_requests", 30); got != "Too many requests, please retry in 30 seconds" {
		t.Fatalf("unexpected formatted message: %s", got)
	}
}

func TestResolveLocale(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		target string
		header string
		want   string
	}{
		{target: "/?lang=zh-TW", header: "zh-CN", want: LocaleTW},
		{target: "/", header: "zh-CN,zh;q=0.9", want: LocaleZH},
		{target: "/", header: "zh-TW", want: LocaleTW},
	}
	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, tc.target, nil)
		c.Request.Header.Set("Accept-Language", tc.header)
		if got := ResolveLocale(c); got != tc.want {
			t.Fatalf("ResolveLocale(%s, %s) want %s got %s", tc.target, tc.header, tc.want, got)
		}
	}
	if got := ResolveLocale(nil); got != DefaultLocale {
		t.Fatalf("nil context want default, got %s", got)
	}
}
