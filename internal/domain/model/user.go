// Пакет model — доменные модели системы резервации служебных автомобилей.
// Записи приходят из REST backend как есть; Web Module их не хранит.
package model

// UserProfile — профиль пользователя (ответ /auth/me, поле user в /auth/login).
// Для авторизации используется только RoleName.
type UserProfile struct {
	// UserID — идентификатор пользователя в backend
	UserID int `json:"user_id"`
	// IntranetID — intranet ID (единственный идентификатор входа)
	IntranetID string `json:"intranet_id"`
	// FirstName — имя
	FirstName string `json:"first_name"`
	// LastName — фамилия
	LastName string `json:"last_name"`
	// Email — адрес электронной почты
	Email string `json:"email"`
	// PhoneNumber — телефон (может отсутствовать)
	PhoneNumber *string `json:"phone_number,omitempty"`
	// RoleID — идентификатор роли
	RoleID int `json:"role_id"`
	// RoleName — название роли ("Fleet Administrator", "Employee", ...)
	RoleName string `json:"role_name"`
	// IsActive — активен ли аккаунт
	IsActive bool `json:"is_active"`
	// CreatedAt — время создания
	CreatedAt Time `json:"created_at"`
	// UpdatedAt — время последнего обновления
	UpdatedAt Time `json:"updated_at"`
}

// FullName возвращает "Имя Фамилия".
func (u *UserProfile) FullName() string {
	if u == nil {
		return ""
	}
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// Role — роль пользователя в backend.
type Role struct {
	RoleID      int     `json:"role_id"`
	RoleName    string  `json:"role_name"`
	Description *string `json:"description,omitempty"`
	CreatedAt   Time    `json:"created_at"`
	UpdatedAt   Time    `json:"updated_at"`
}

// NewRole — тело запроса создания роли.
type NewRole struct {
	RoleName    string `json:"role_name"`
	Description string `json:"description,omitempty"`
}
