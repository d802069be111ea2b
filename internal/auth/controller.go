package auth

import (
	"context"
	"sync"

	"github.com/shenikar/incident_report_system/internal/api"
	"github.com/shenikar/incident_report_system/internal/models"
	"github.com/shenikar/incident_report_system/internal/session"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -source=controller.go -destination=mocks/mock_api.go -package=mocks

// API определяет контракт REST-клиента, необходимый контроллеру аутентификации
type API interface {
	Login(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error)
	Register(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error)
}

// Controller управляет сессией: вход, регистрация, выход. Успешно полученная
// сессия сначала сохраняется в Store, затем принимается в памяти, после чего
// подписчики получают новый токен.
type Controller struct {
	api    API
	store  session.Store
	logger *logrus.Logger

	mu        sync.Mutex
	session   models.Session
	loading   bool
	lastErr   string
	listeners []func(token string)
}

// NewController восстанавливает сессию из хранилища при создании
func NewController(apiClient API, store session.Store, logger *logrus.Logger) *Controller {
	return &Controller{
		api:     apiClient,
		store:   store,
		logger:  logger,
		session: store.Load(),
	}
}

// Session возвращает текущую сессию
func (c *Controller) Session() models.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Loading сообщает, выполняется ли сейчас запрос аутентификации
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Err возвращает сообщение последней ошибки; пустая строка, если ошибки нет
func (c *Controller) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// OnTokenChange регистрирует подписчика на смену токена
// (вход, выход, и тд). Пустой токен означает выход из аккаунта.
func (c *Controller) OnTokenChange(fn func(token string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Login выполняет вход. При любой неудаче прежняя сессия остаётся нетронутой.
func (c *Controller) Login(ctx context.Context, creds models.Credentials) bool {
	return c.authenticate(ctx, creds, c.api.Login, "Login failed", "Login")
}

// Register регистрирует аккаунт; контракт идентичен Login
func (c *Controller) Register(ctx context.Context, creds models.Credentials) bool {
	return c.authenticate(ctx, creds, c.api.Register, "Registration failed", "Register")
}

// Logout синхронно сбрасывает сессию в хранилище и в памяти. Сетевых
// запросов нет, повторный вызов безопасен.
func (c *Controller) Logout() {
	log := c.logger.WithFields(logrus.Fields{
		"component": "auth",
		"method":    "Logout",
	})

	c.mu.Lock()
	if err := c.store.Clear(); err != nil {
		log.WithError(err).Error("Failed to clear persisted session")
	}
	c.session = models.Session{}
	c.mu.Unlock()

	log.Info("Logged out")
	c.notify("")
}

type authCall func(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error)

func (c *Controller) authenticate(ctx context.Context, creds models.Credentials, call authCall, fallback, method string) bool {
	log := c.logger.WithFields(logrus.Fields{
		"component": "auth",
		"method":    method,
		"username":  creds.Username,
	})

	c.mu.Lock()
	if c.loading {
		// Повторная отправка во время выполняющегося запроса отклоняется,
		// состояние не трогаем.
		c.mu.Unlock()
		log.Warn("Authentication request already in flight, call rejected")
		return false
	}
	c.loading = true
	c.lastErr = ""
	c.mu.Unlock()

	resp, err := call(ctx, creds)

	c.mu.Lock()
	c.loading = false
	if err != nil {
		c.lastErr = api.Message(err, fallback)
		c.mu.Unlock()
		log.WithError(err).Warn("Authentication failed")
		return false
	}

	sess := models.Session{Token: resp.Token, User: &resp.User}
	if err := c.store.Save(sess); err != nil {
		// Сессия остаётся рабочей в памяти, даже если хранилище недоступно
		log.WithError(err).Error("Failed to persist session")
	}
	c.session = sess
	c.mu.Unlock()

	log.WithField("user_id", resp.User.ID).Info("Authenticated successfully")
	c.notify(sess.Token)
	return true
}

func (c *Controller) notify(token string) {
	c.mu.Lock()
	listeners := make([]func(token string), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(token)
	}
}
