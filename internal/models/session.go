package models

// AuthUser - идентичность пользователя, возвращаемая сервером при входе
type AuthUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Credentials - логин и пароль; живут только на время запроса аутентификации
type Credentials struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Password string `json:"password" validate:"required,min=6"`
}

// AuthResponse - успешный ответ /api/auth/login и /api/auth/register
type AuthResponse struct {
	Token string   `json:"token"`
	User  AuthUser `json:"user"`
}

// Session - последняя известная сессия. Инвариант: токен и пользователь
// всегда устанавливаются и сбрасываются вместе.
type Session struct {
	Token string
	User  *AuthUser
}

// Valid сообщает, что сессия пригодна для аутентифицированных запросов
func (s Session) Valid() bool {
	return s.Token != "" && s.User != nil
}
