package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestRedis запускает Redis в Docker-контейнере через testcontainers.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("Пропуск интеграционного теста: TEST_INTEGRATION не установлена")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "docker.io/redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Не удалось запустить Redis контейнер: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Ошибка остановки контейнера: %v", err)
		}
	})

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("Не удалось получить адрес контейнера: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisStore_Lifecycle(t *testing.T) {
	client := setupTestRedis(t)
	s := NewRedisStore(client, false, time.Hour)

	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	// Вход
	rec := httptest.NewRecorder()
	if err := s.Save(rec, httptest.NewRequest(http.MethodPost, "/login", nil), &StoredCredential{Token: "tok-1", User: testUser()}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	first := requestWithCookies(rec)

	c, err := s.Load(first)
	if err != nil || c == nil || c.Token != "tok-1" {
		t.Fatalf("Load после входа: (%+v, %v)", c, err)
	}

	// Повторный вход из той же сессии создаёт новый ID и удаляет прежний
	rec = httptest.NewRecorder()
	if err := s.Save(rec, first, &StoredCredential{Token: "tok-2", User: testUser()}); err != nil {
		t.Fatalf("повторный Save: %v", err)
	}
	second := requestWithCookies(rec)

	if c, _ := s.Load(first); c != nil {
		t.Error("прежняя сессия должна быть удалена")
	}

	// 401 по старому токену не затрагивает новую сессию
	out := httptest.NewRecorder()
	cleared, err := s.ClearIfToken(out, first, "tok-1")
	if err != nil || cleared {
		t.Errorf("ClearIfToken по старой сессии: cleared=%v err=%v", cleared, err)
	}
	if len(out.Result().Cookies()) != 0 {
		t.Error("cookie новой сессии не должен удаляться")
	}

	cleared, err = s.ClearIfToken(httptest.NewRecorder(), second, "tok-1")
	if err != nil || cleared {
		t.Errorf("ClearIfToken с чужим токеном: cleared=%v err=%v", cleared, err)
	}

	cleared, err = s.ClearIfToken(httptest.NewRecorder(), second, "tok-2")
	if err != nil || !cleared {
		t.Errorf("ClearIfToken с текущим токеном: cleared=%v err=%v", cleared, err)
	}
	if c, _ := s.Load(second); c != nil {
		t.Error("сессия должна быть удалена")
	}
}

func TestRedisStore_Clear(t *testing.T) {
	client := setupTestRedis(t)
	s := NewRedisStore(client, false, time.Hour)

	rec := httptest.NewRecorder()
	if err := s.Save(rec, httptest.NewRequest(http.MethodPost, "/login", nil), &StoredCredential{Token: "tok", User: testUser()}); err != nil {
		t.Fatal(err)
	}
	req := requestWithCookies(rec)

	if err := s.Clear(httptest.NewRecorder(), req); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if c, err := s.Load(req); err != nil || c != nil {
		t.Errorf("после Clear: (%v, %v)", c, err)
	}
}

func TestRedisStore_InvalidCookie(t *testing.T) {
	s := NewRedisStore(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), false, time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "not-a-uuid"})

	// Некорректный ID не приводит к обращению в Redis
	c, err := s.Load(req)
	if err != nil || c != nil {
		t.Errorf("Load с некорректным ID: (%v, %v)", c, err)
	}
}
