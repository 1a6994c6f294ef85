package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// CookieStore — хранилище учётных данных в зашифрованном cookie.
// Шифрует/дешифрует StoredCredential через AES-256-GCM.
type CookieStore struct {
	// gcm — AEAD cipher для шифрования/дешифрования.
	gcm cipher.AEAD
	// secure — использовать Secure flag для cookie (true для HTTPS).
	secure bool
	// maxAge — максимальный срок жизни cookie.
	maxAge time.Duration
	now    func() time.Time
}

// NewCookieStore создаёт хранилище на cookie.
// key — base64 32-байтового ключа или произвольная строка (хешируется SHA-256).
// Пустой key — случайный ключ: сессии не переживают рестарт.
func NewCookieStore(key string, secure bool, maxAge time.Duration) (*CookieStore, error) {
	var keyBytes []byte

	if key == "" {
		keyBytes = make([]byte, 32)
		if _, err := io.ReadFull(rand.Reader, keyBytes); err != nil {
			return nil, fmt.Errorf("ошибка генерации ключа сессии: %w", err)
		}
	} else {
		var err error
		keyBytes, err = base64.StdEncoding.DecodeString(key)
		if err != nil || len(keyBytes) != 32 {
			h := sha256.Sum256([]byte(key))
			keyBytes = h[:]
		}
	}

	block, err := aes.NewCipher(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания AES cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания GCM: %w", err)
	}

	return &CookieStore{
		gcm:    gcm,
		secure: secure,
		maxAge: maxAge,
		now:    time.Now,
	}, nil
}

// encrypt шифрует учётные данные в base64-строку (nonce перед ciphertext).
func (s *CookieStore) encrypt(c *StoredCredential) (string, error) {
	plaintext, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("ошибка сериализации учётных данных: %w", err)
	}

	nonce := make([]byte, s.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("ошибка генерации nonce: %w", err)
	}

	ciphertext := s.gcm.Seal(nonce, nonce, plaintext, nil)
	return base64.URLEncoding.EncodeToString(ciphertext), nil
}

// decrypt дешифрует значение cookie.
func (s *CookieStore) decrypt(encrypted string) (*StoredCredential, error) {
	ciphertext, err := base64.URLEncoding.DecodeString(encrypted)
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %v", ErrInvalidCredential, err)
	}

	nonceSize := s.gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, fmt.Errorf("%w: данные слишком короткие", ErrInvalidCredential)
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := s.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: дешифрование: %v", ErrInvalidCredential, err)
	}

	var c StoredCredential
	if err := json.Unmarshal(plaintext, &c); err != nil {
		return nil, fmt.Errorf("%w: десериализация: %v", ErrInvalidCredential, err)
	}
	return &c, nil
}

// Load извлекает учётные данные из cookie запроса.
// Отсутствующий cookie, неполные или просроченные данные — nil, nil.
func (s *CookieStore) Load(r *http.Request) (*StoredCredential, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return nil, nil
		}
		return nil, err
	}
	if cookie.Value == "" {
		return nil, nil
	}

	c, err := s.decrypt(cookie.Value)
	if err != nil {
		return nil, err
	}
	if !c.Complete() || c.Expired(s.now()) {
		return nil, nil
	}
	return c, nil
}

// Save записывает токен и профиль одним cookie.
func (s *CookieStore) Save(w http.ResponseWriter, _ *http.Request, c *StoredCredential) error {
	if !c.Complete() {
		return ErrIncompleteCredential
	}

	encrypted, err := s.encrypt(c)
	if err != nil {
		return err
	}

	http.SetCookie(w, sessionCookie(encrypted, cookieMaxAge(c, s.maxAge, s.now()), s.secure))
	return nil
}

// Clear удаляет cookie сессии.
func (s *CookieStore) Clear(w http.ResponseWriter, _ *http.Request) error {
	http.SetCookie(w, expiredSessionCookie(s.secure))
	return nil
}

// ClearIfToken удаляет cookie, если в запросе пришёл именно token.
// Повреждённый cookie удаляется всегда.
func (s *CookieStore) ClearIfToken(w http.ResponseWriter, r *http.Request, token string) (bool, error) {
	c, err := s.Load(r)
	if err != nil {
		if errors.Is(err, ErrInvalidCredential) {
			return true, s.Clear(w, r)
		}
		return false, err
	}
	if c == nil || c.Token != token {
		return false, nil
	}
	return true, s.Clear(w, r)
}
