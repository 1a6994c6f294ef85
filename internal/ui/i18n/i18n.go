// Пакет i18n — интернационализация страниц Web Module.
// Поддерживаемые языки: čeština (cs, по умолчанию) и English (en).
// Язык определяется middleware: cookie "lang" → Accept-Language → язык по умолчанию.
package i18n

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/text/language"
)

// Коды поддерживаемых языков.
const (
	LangCS = "cs"
	LangEN = "en"
)

// SupportedLanguages — поддерживаемые теги; первый — запасной для matcher.
var SupportedLanguages = []language.Tag{
	language.Czech,
	language.English,
}

// contextKey — тип ключа для контекста.
type contextKey string

const contextKeyLang contextKey = "i18n_lang"

// Bundle — переводы для всех языков. Загружается один раз при старте.
type Bundle struct {
	mu          sync.RWMutex
	catalogs    map[string]map[string]string // lang → key → translation
	defaultLang string
	matcher     language.Matcher
	logger      *slog.Logger
}

// NewBundle создаёт пустой Bundle с языком по умолчанию defaultLang.
func NewBundle(defaultLang string, logger *slog.Logger) *Bundle {
	if !IsSupported(defaultLang) {
		defaultLang = LangCS
	}
	return &Bundle{
		catalogs:    make(map[string]map[string]string),
		defaultLang: defaultLang,
		matcher:     language.NewMatcher(SupportedLanguages),
		logger:      logger,
	}
}

// IsSupported проверяет код языка.
func IsSupported(lang string) bool {
	return lang == LangCS || lang == LangEN
}

// DefaultLang возвращает язык по умолчанию.
func (b *Bundle) DefaultLang() string {
	return b.defaultLang
}

// LoadMessages загружает плоский JSON-каталог {"key": "translation"}.
func (b *Bundle) LoadMessages(lang string, data []byte) error {
	var messages map[string]string
	if err := json.Unmarshal(data, &messages); err != nil {
		return fmt.Errorf("i18n: ошибка парсинга каталога %s: %w", lang, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.catalogs[lang] = messages

	if b.logger != nil {
		b.logger.Debug("i18n каталог загружен",
			slog.String("lang", lang),
			slog.Int("keys", len(messages)),
		)
	}
	return nil
}

// Translate возвращает перевод ключа. Порядок поиска: lang → язык
// по умолчанию → сам ключ.
func (b *Bundle) Translate(lang, key string) string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if catalog, ok := b.catalogs[lang]; ok {
		if msg, ok := catalog[key]; ok {
			return msg
		}
	}
	if lang != b.defaultLang {
		if catalog, ok := b.catalogs[b.defaultLang]; ok {
			if msg, ok := catalog[key]; ok {
				return msg
			}
		}
	}
	return key
}

// Translatef — Translate с подстановкой аргументов.
func (b *Bundle) Translatef(lang, key string, args ...any) string {
	template := b.Translate(lang, key)
	if len(args) == 0 {
		return template
	}
	return formatFunc(template, args...)
}

// T переводит ключ на язык из контекста.
func (b *Bundle) T(ctx context.Context, key string) string {
	return b.Translate(b.LangFromContext(ctx), key)
}

// Tf переводит ключ на язык из контекста с подстановкой аргументов.
func (b *Bundle) Tf(ctx context.Context, key string, args ...any) string {
	return b.Translatef(b.LangFromContext(ctx), key, args...)
}

// formatFunc — fmt.Sprintf через переменную: формат-строки приходят
// из каталогов во время выполнения.
var formatFunc = fmt.Sprintf

// WithLang помещает язык в контекст.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, contextKeyLang, lang)
}

// LangFromContext извлекает язык из контекста (по умолчанию — язык Bundle).
func (b *Bundle) LangFromContext(ctx context.Context) string {
	if lang, ok := ctx.Value(contextKeyLang).(string); ok && lang != "" {
		return lang
	}
	return b.defaultLang
}

// MatchLanguage определяет язык по заголовку Accept-Language.
// Пустой заголовок — язык по умолчанию.
func (b *Bundle) MatchLanguage(acceptLanguage string) string {
	if acceptLanguage == "" {
		return b.defaultLang
	}
	_, idx, conf := b.matcher.Match(parseAccept(acceptLanguage)...)
	if conf == language.No {
		return b.defaultLang
	}
	base, _ := SupportedLanguages[idx].Base()
	return base.String()
}

// parseAccept разбирает Accept-Language; некорректный заголовок — пустой список.
func parseAccept(acceptLanguage string) []language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil {
		return nil
	}
	return tags
}
