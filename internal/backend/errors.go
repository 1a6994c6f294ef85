package backend

import (
	"errors"
	"fmt"
)

// NetworkError — запрос не получил ответа (ошибка соединения, таймаут,
// отменённый контекст).
type NetworkError struct {
	// Op — логическое имя операции ("auth.me", "vehicles.list", ...)
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: backend недоступен: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// AuthError — backend ответил 401 (токен отсутствует, просрочен или отозван).
// Клиент не очищает хранилище и не перенаправляет: решение принимает
// session.Provider.
type AuthError struct {
	Op      string
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: не авторизован", e.Op)
	}
	return fmt.Sprintf("%s: не авторизован: %s", e.Op, e.Message)
}

// RequestError — любой другой ответ вне 2xx.
// Message — поле "error" из JSON-тела, если backend его прислал.
type RequestError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: backend вернул статус %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: backend вернул статус %d: %s", e.Op, e.StatusCode, e.Message)
}

// ValidationError — входные данные отклонены до обращения к backend.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("некорректное поле %s: %s", e.Field, e.Message)
}

// IsAuthError сообщает, содержит ли цепочка ошибок AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// IsNetworkError сообщает, содержит ли цепочка ошибок NetworkError.
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// UserMessage возвращает текст для показа пользователю:
// сообщение backend для RequestError/AuthError/ValidationError,
// иначе fallback.
func UserMessage(err error, fallback string) string {
	var (
		reqErr  *RequestError
		authErr *AuthError
		valErr  *ValidationError
	)
	switch {
	case errors.As(err, &valErr):
		return valErr.Message
	case errors.As(err, &reqErr) && reqErr.Message != "":
		return reqErr.Message
	case errors.As(err, &authErr) && authErr.Message != "":
		return authErr.Message
	}
	return fallback
}
