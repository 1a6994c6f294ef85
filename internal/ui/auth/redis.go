package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// redisKeyPrefix — префикс ключей сессий в Redis.
const redisKeyPrefix = "session:"

// clearIfTokenScript удаляет ключ, только если в нём сохранён ARGV[1].
var clearIfTokenScript = redis.NewScript(`
local v = redis.call('GET', KEYS[1])
if not v then return 0 end
local c = cjson.decode(v)
if c.token == ARGV[1] then
	redis.call('DEL', KEYS[1])
	return 1
end
return 0
`)

// RedisStore — хранилище учётных данных в Redis.
// В cookie хранится только непрозрачный ID сессии (UUID v4),
// токен и профиль — в ключе session:<id> с TTL.
type RedisStore struct {
	client *redis.Client
	secure bool
	maxAge time.Duration
	now    func() time.Time
}

// NewRedisStore создаёт хранилище на Redis.
func NewRedisStore(client *redis.Client, secure bool, maxAge time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		secure: secure,
		maxAge: maxAge,
		now:    time.Now,
	}
}

// sessionID извлекает ID сессии из cookie; пустая строка — нет или некорректен.
func sessionID(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(cookie.Value); err != nil {
		return ""
	}
	return cookie.Value
}

// Load читает учётные данные сессии из Redis.
func (s *RedisStore) Load(r *http.Request) (*StoredCredential, error) {
	id := sessionID(r)
	if id == "" {
		return nil, nil
	}

	data, err := s.client.Get(r.Context(), redisKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("чтение сессии из Redis: %w", err)
	}

	var c StoredCredential
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: десериализация: %v", ErrInvalidCredential, err)
	}
	if !c.Complete() || c.Expired(s.now()) {
		return nil, nil
	}
	return &c, nil
}

// Save создаёт новую сессию (новый ID при каждом входе) и удаляет прежнюю.
func (s *RedisStore) Save(w http.ResponseWriter, r *http.Request, c *StoredCredential) error {
	if !c.Complete() {
		return ErrIncompleteCredential
	}

	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("ошибка сериализации учётных данных: %w", err)
	}

	ttl := cookieMaxAge(c, s.maxAge, s.now())
	if ttl <= 0 {
		return errors.New("токен уже истёк")
	}

	ctx := r.Context()
	id := uuid.NewString()
	if err := s.client.Set(ctx, redisKeyPrefix+id, data, ttl).Err(); err != nil {
		return fmt.Errorf("запись сессии в Redis: %w", err)
	}

	if old := sessionID(r); old != "" {
		// Прежняя сессия больше не нужна; ошибка удаления не критична (истечёт по TTL)
		_ = s.client.Del(ctx, redisKeyPrefix+old).Err()
	}

	http.SetCookie(w, sessionCookie(id, ttl, s.secure))
	return nil
}

// Clear удаляет сессию из Redis и cookie из браузера.
func (s *RedisStore) Clear(w http.ResponseWriter, r *http.Request) error {
	http.SetCookie(w, expiredSessionCookie(s.secure))

	id := sessionID(r)
	if id == "" {
		return nil
	}
	if err := s.client.Del(r.Context(), redisKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("удаление сессии из Redis: %w", err)
	}
	return nil
}

// ClearIfToken атомарно удаляет сессию, только если в ней сохранён token.
// Сессия, заменённая новым входом, не затрагивается, cookie новой
// сессии в браузере сохраняется.
func (s *RedisStore) ClearIfToken(w http.ResponseWriter, r *http.Request, token string) (bool, error) {
	id := sessionID(r)
	if id == "" {
		return false, nil
	}

	n, err := clearIfTokenScript.Run(r.Context(), s.client, []string{redisKeyPrefix + id}, token).Int()
	if err != nil {
		return false, fmt.Errorf("условное удаление сессии из Redis: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	http.SetCookie(w, expiredSessionCookie(s.secure))
	return true, nil
}

// Ping проверяет доступность Redis.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
