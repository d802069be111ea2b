package incidents

import (
	"context"
	"sync"

	"github.com/shenikar/incident_report_system/internal/api"
	"github.com/shenikar/incident_report_system/internal/models"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -source=repository.go -destination=mocks/mock_api.go -package=mocks

// API определяет контракт REST-клиента, необходимый репозиторию инцидентов
type API interface {
	ListIncidents(ctx context.Context, token string) ([]models.Incident, error)
	CreateIncident(ctx context.Context, token string, req models.IncidentRequest) (*models.Incident, error)
	UpdateIncident(ctx context.Context, token string, id int64, req models.IncidentRequest) (*models.Incident, error)
	DeleteIncident(ctx context.Context, token string, id int64) error
}

// Repository держит клиентскую копию списка инцидентов. После создания и
// обновления список целиком перечитывается с сервера, после удаления запись
// вырезается локально без повторного запроса.
type Repository struct {
	api    API
	logger *logrus.Logger

	mu        sync.Mutex
	token     string
	incidents []models.Incident
	loading   bool
	lastErr   string
}

func NewRepository(apiClient API, logger *logrus.Logger) *Repository {
	return &Repository{
		api:    apiClient,
		logger: logger,
	}
}

// Incidents возвращает копию текущего списка
func (r *Repository) Incidents() []models.Incident {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Incident, len(r.incidents))
	copy(out, r.incidents)
	return out
}

// Loading сообщает, выполняется ли сейчас перечитывание списка
func (r *Repository) Loading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loading
}

// Err возвращает сообщение последней ошибки; пустая строка, если ошибки нет
func (r *Repository) Err() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

// SetToken сообщает репозиторию о смене токена сессии. Непустой токен
// запускает перечитывание списка, пустой - очищает его без запроса,
// чтобы данные не пережили выход из аккаунта.
func (r *Repository) SetToken(ctx context.Context, token string) {
	r.mu.Lock()
	r.token = token
	if token == "" {
		r.incidents = nil
		r.lastErr = ""
		r.mu.Unlock()
		r.logger.WithField("component", "incidents").Debug("Token cleared, incident list dropped")
		return
	}
	r.mu.Unlock()
	r.Refresh(ctx)
}

// Refresh перечитывает список с сервера и заменяет его целиком. Без токена
// ничего не делает. При ошибке прежний список сохраняется.
func (r *Repository) Refresh(ctx context.Context) {
	r.mu.Lock()
	token := r.token
	if token == "" {
		r.mu.Unlock()
		return
	}
	r.loading = true
	r.mu.Unlock()

	log := r.logger.WithFields(logrus.Fields{
		"component": "incidents",
		"method":    "Refresh",
	})

	list, err := r.api.ListIncidents(ctx, token)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.loading = false
	if err != nil {
		r.lastErr = api.Message(err, "Failed to fetch incidents")
		log.WithError(err).Warn("Failed to fetch incident list")
		return
	}
	r.incidents = list
	r.lastErr = ""
	log.WithField("count", len(list)).Debug("Incident list replaced")
}

// Create отправляет черновик на сервер. Успех подтверждается повторным
// чтением списка, а не локальной вставкой ответа.
func (r *Repository) Create(ctx context.Context, req models.IncidentRequest) bool {
	log := r.logger.WithFields(logrus.Fields{
		"component": "incidents",
		"method":    "Create",
		"title":     req.Title,
	})

	if _, err := r.api.CreateIncident(ctx, r.currentToken(), req); err != nil {
		r.setErr(api.Message(err, "Failed to create incident"))
		log.WithError(err).Warn("Failed to create incident")
		return false
	}

	log.Info("Incident created")
	r.Refresh(ctx)
	return true
}

// Update обновляет инцидент по ID. Имеет ли вызывающий право менять запись,
// решает сервер; отказ приходит как обычная ошибка.
func (r *Repository) Update(ctx context.Context, id int64, req models.IncidentRequest) bool {
	log := r.logger.WithFields(logrus.Fields{
		"component":   "incidents",
		"method":      "Update",
		"incident_id": id,
	})

	if _, err := r.api.UpdateIncident(ctx, r.currentToken(), id, req); err != nil {
		r.setErr(api.Message(err, "Failed to update incident"))
		log.WithError(err).Warn("Failed to update incident")
		return false
	}

	log.Info("Incident updated")
	r.Refresh(ctx)
	return true
}

// Delete удаляет инцидент по ID и вырезает его из локального списка
func (r *Repository) Delete(ctx context.Context, id int64) bool {
	log := r.logger.WithFields(logrus.Fields{
		"component":   "incidents",
		"method":      "Delete",
		"incident_id": id,
	})

	if err := r.api.DeleteIncident(ctx, r.currentToken(), id); err != nil {
		r.setErr(api.Message(err, "Failed to delete incident"))
		log.WithError(err).Warn("Failed to delete incident")
		return false
	}

	r.mu.Lock()
	kept := make([]models.Incident, 0, len(r.incidents))
	for _, inc := range r.incidents {
		if inc.ID != id {
			kept = append(kept, inc)
		}
	}
	r.incidents = kept
	r.mu.Unlock()

	log.Info("Incident deleted")
	return true
}

func (r *Repository) currentToken() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.token
}

func (r *Repository) setErr(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastErr = msg
}
