package i18n

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func loadedBundle(t *testing.T, defaultLang string) *Bundle {
	t.Helper()
	b := NewBundle(defaultLang, testLogger())
	if err := LoadFromEmbedFS(b, testLogger()); err != nil {
		t.Fatalf("LoadFromEmbedFS: %v", err)
	}
	return b
}

// TestCatalogs_SameKeys проверяет, что каталоги содержат одинаковые ключи.
func TestCatalogs_SameKeys(t *testing.T) {
	catalogs := map[string]map[string]string{}
	for _, lang := range []string{LangCS, LangEN} {
		data, err := LocaleFS.ReadFile("locales/" + lang + ".json")
		if err != nil {
			t.Fatal(err)
		}
		var m map[string]string
		if err := json.Unmarshal(data, &m); err != nil {
			t.Fatalf("%s: %v", lang, err)
		}
		catalogs[lang] = m
	}

	for key := range catalogs[LangCS] {
		if _, ok := catalogs[LangEN][key]; !ok {
			t.Errorf("ключ %q отсутствует в en.json", key)
		}
	}
	for key := range catalogs[LangEN] {
		if _, ok := catalogs[LangCS][key]; !ok {
			t.Errorf("ключ %q отсутствует в cs.json", key)
		}
	}
}

func TestTranslate(t *testing.T) {
	b := loadedBundle(t, LangCS)

	tests := []struct {
		lang string
		key  string
		want string
	}{
		{LangCS, "login.failed", "Přihlášení se nezdařilo"},
		{LangEN, "login.failed", "Sign-in failed"},
		{LangCS, "dashboard.load_error", "Nepodařilo se načíst data dashboardu"},
		{"de", "nav.calendar", "Kalendář"},
		{LangEN, "missing.key", "missing.key"},
	}
	for _, tt := range tests {
		if got := b.Translate(tt.lang, tt.key); got != tt.want {
			t.Errorf("Translate(%s, %s) = %q, ожидается %q", tt.lang, tt.key, got, tt.want)
		}
	}

	if got := b.Translatef(LangEN, "dashboard.of_total", 12); got != "of 12 total" {
		t.Errorf("Translatef = %q", got)
	}
}

func TestTranslate_FallbackToDefault(t *testing.T) {
	b := NewBundle(LangCS, nil)
	if err := b.LoadMessages(LangCS, []byte(`{"only.cs": "jen česky"}`)); err != nil {
		t.Fatal(err)
	}
	if err := b.LoadMessages(LangEN, []byte(`{}`)); err != nil {
		t.Fatal(err)
	}
	if got := b.Translate(LangEN, "only.cs"); got != "jen česky" {
		t.Errorf("ожидался fallback на cs, получено %q", got)
	}
}

func TestLoadMessages_InvalidJSON(t *testing.T) {
	b := NewBundle(LangCS, nil)
	if err := b.LoadMessages(LangCS, []byte(`{broken`)); err == nil {
		t.Error("ожидалась ошибка парсинга")
	}
}

func TestNewBundle_UnsupportedDefault(t *testing.T) {
	if got := NewBundle("de", nil).DefaultLang(); got != LangCS {
		t.Errorf("DefaultLang() = %q, ожидается cs", got)
	}
}

func TestMatchLanguage(t *testing.T) {
	b := NewBundle(LangCS, nil)
	tests := []struct {
		header string
		want   string
	}{
		{"", LangCS},
		{"en-US,en;q=0.9", LangEN},
		{"cs-CZ,cs;q=0.9,en;q=0.8", LangCS},
		{"de-DE", LangCS},
		{";;;", LangCS},
	}
	for _, tt := range tests {
		if got := b.MatchLanguage(tt.header); got != tt.want {
			t.Errorf("MatchLanguage(%q) = %q, ожидается %q", tt.header, got, tt.want)
		}
	}
}

func TestMiddleware_DetectLanguage(t *testing.T) {
	b := loadedBundle(t, LangCS)

	tests := []struct {
		name   string
		cookie string
		accept string
		want   string
	}{
		{"cookie имеет приоритет", LangEN, "cs", LangEN},
		{"некорректный cookie", "xx", "en", LangEN},
		{"Accept-Language", "", "en-GB", LangEN},
		{"по умолчанию", "", "", LangCS},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := b.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = b.LangFromContext(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: LangCookieName, Value: tt.cookie})
			}
			if tt.accept != "" {
				req.Header.Set("Accept-Language", tt.accept)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)
			if got != tt.want {
				t.Errorf("язык = %q, ожидается %q", got, tt.want)
			}
		})
	}
}

func TestT_FromContext(t *testing.T) {
	b := loadedBundle(t, LangCS)
	ctx := WithLang(context.Background(), LangEN)
	if got := b.T(ctx, "nav.logout"); got != "Log out" {
		t.Errorf("T = %q", got)
	}
	if got := b.T(context.Background(), "nav.logout"); got != "Odhlásit se" {
		t.Errorf("T без языка в контексте = %q", got)
	}
	if got := b.Tf(ctx, "dashboard.welcome", "Jan"); got != "Welcome, Jan" {
		t.Errorf("Tf = %q", got)
	}
}
