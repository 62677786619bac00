package i18n

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

// 支持的语言
const (
	LocaleZH = "zh-CN"
	LocaleTW = "zh-TW"
	LocaleEN = "en-US"

	DefaultLocale = LocaleEN
)

//go:embed locales/*.toml
var localeFS embed.FS

var (
	bundleOnce sync.Once
	bundle     *goi18n.Bundle
	bundleErr  error

	localizersMu sync.RWMutex
	localizers   = map[string]*goi18n.Localizer{}

	supportedTags = []language.Tag{
		language.AmericanEnglish,
		language.SimplifiedChinese,
		language.TraditionalChinese,
	}
	matcher = language.NewMatcher(supportedTags)
)

func loadBundle() (*goi18n.Bundle, error) {
	bundleOnce.Do(func() {
		b := goi18n.NewBundle(language.AmericanEnglish)
		b.RegisterUnmarshalFunc("toml", toml.Unmarshal)
		for _, name := range []string{LocaleEN, LocaleZH, LocaleTW} {
			if _, err := b.LoadMessageFileFS(localeFS, "locales/"+name+".toml"); err != nil {
				bundleErr = fmt.Errorf("load locale %s: %w", name, err)
				return
			}
		}
		bundle = b
	})
	return bundle, bundleErr
}

func localizer(locale string) *goi18n.Localizer {
	localizersMu.RLock()
	l, ok := localizers[locale]
	localizersMu.RUnlock()
	if ok {
		return l
	}
	b, err := loadBundle()
	if err != nil {
		return nil
	}
	l = goi18n.NewLocalizer(b, locale, DefaultLocale)
	localizersMu.Lock()
	localizers[locale] = l
	localizersMu.Unlock()
	return l
}

// NormalizeLocale 将任意语言标识归一到支持的语言
func NormalizeLocale(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultLocale
	}
	tags, _, err := language.ParseAcceptLanguage(raw)
	if err != nil || len(tags) == 0 {
		return DefaultLocale
	}
	_, idx, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return DefaultLocale
	}
	switch supportedTags[idx] {
	case language.SimplifiedChinese:
		return LocaleZH
	case language.TraditionalChinese:
		return LocaleTW
	default:
		return LocaleEN
	}
}

// ResolveLocale 从请求中解析语言：lang 参数优先，其次 Accept-Language
func ResolveLocale(c *gin.Context) string {
	if c == nil || c.Request == nil {
		return DefaultLocale
	}
	if lang := strings.TrimSpace(c.Query("lang")); lang != "" {
		return NormalizeLocale(lang)
	}
	return NormalizeLocale(c.GetHeader("Accept-Language"))
}

// T 翻译消息，缺失时返回 key 本身
func T(locale, key string) string {
	l := localizer(NormalizeLocale(locale))
	if l == nil {
		return key
	}
	msg, err := l.Localize(&goi18n.LocalizeConfig{MessageID: key})
	if err != nil || msg == "" {
		return key
	}
	return msg
}

// Sprintf 翻译并按 fmt 格式化
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}
