package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/incident_report_system/internal/config"
	"github.com/shenikar/incident_report_system/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient поднимает поддельный сервер API на gin и клиента поверх него
func newTestClient(t *testing.T, register func(r *gin.Engine)) *Client {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	register(router)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	return NewClient(&config.Config{APIBaseURL: srv.URL, HTTPTimeout: 2 * time.Second}, logger)
}

func TestLogin_Success(t *testing.T) {
	// Подготовка: сервер проверяет тело запроса и служебные заголовки
	client := newTestClient(t, func(r *gin.Engine) {
		r.POST("/api/auth/login", func(c *gin.Context) {
			assert.Empty(t, c.GetHeader("Authorization"))
			assert.NotEmpty(t, c.GetHeader("X-Request-ID"))
			assert.Equal(t, "application/json", c.GetHeader("Content-Type"))

			var creds models.Credentials
			require.NoError(t, c.ShouldBindJSON(&creds))
			assert.Equal(t, "alice", creds.Username)
			assert.Equal(t, "secret1", creds.Password)

			c.JSON(http.StatusOK, gin.H{
				"token": "tok123",
				"user":  gin.H{"id": 1, "username": "alice"},
			})
		})
	})

	// Действие
	resp, err := client.Login(context.Background(), models.Credentials{Username: "alice", Password: "secret1"})

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, "tok123", resp.Token)
	assert.Equal(t, int64(1), resp.User.ID)
	assert.Equal(t, "alice", resp.User.Username)
}

func TestLogin_ServerError(t *testing.T) {
	client := newTestClient(t, func(r *gin.Engine) {
		r.POST("/api/auth/login", func(c *gin.Context) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		})
	})

	resp, err := client.Login(context.Background(), models.Credentials{Username: "alice", Password: "wrong"})

	require.Error(t, err)
	assert.Nil(t, resp)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.Equal(t, "invalid credentials", statusErr.Message)
}

func TestRegister_Success(t *testing.T) {
	client := newTestClient(t, func(r *gin.Engine) {
		r.POST("/api/auth/register", func(c *gin.Context) {
			c.JSON(http.StatusCreated, gin.H{
				"token": "tok456",
				"user":  gin.H{"id": 2, "username": "bob"},
			})
		})
	})

	resp, err := client.Register(context.Background(), models.Credentials{Username: "bob", Password: "secret2"})

	require.NoError(t, err)
	assert.Equal(t, "tok456", resp.Token)
	assert.Equal(t, "bob", resp.User.Username)
}

func TestListIncidents_SendsBearerToken(t *testing.T) {
	client := newTestClient(t, func(r *gin.Engine) {
		r.GET("/api/incidents", func(c *gin.Context) {
			// Токен уходит ровно в том виде, который ждёт сервер
			assert.Equal(t, "Bearer tok123", c.GetHeader("Authorization"))
			c.JSON(http.StatusOK, []gin.H{
				{"id": 1, "title": "Leak in B3", "category": "Maintenance", "status": "Open", "user_id": 2, "owner_username": "bob"},
				{"id": 2, "title": "Blocked fire exit", "category": "Safety", "status": "In Progress", "user_id": 1, "owner_username": "alice"},
			})
		})
	})

	incidents, err := client.ListIncidents(context.Background(), "tok123")

	require.NoError(t, err)
	require.Len(t, incidents, 2)
	assert.Equal(t, "Leak in B3", incidents[0].Title)
	assert.Equal(t, models.StatusInProgress, incidents[1].Status)
	assert.Equal(t, models.CategorySafety, incidents[1].Category)
}

func TestCreateIncident_Success(t *testing.T) {
	client := newTestClient(t, func(r *gin.Engine) {
		r.POST("/api/incidents", func(c *gin.Context) {
			assert.Equal(t, "Bearer tok123", c.GetHeader("Authorization"))

			var req models.IncidentRequest
			require.NoError(t, c.ShouldBindJSON(&req))
			assert.Equal(t, "Leak in B3", req.Title)

			c.JSON(http.StatusCreated, gin.H{"id": 7, "title": req.Title, "category": req.Category, "status": req.Status})
		})
	})

	incident, err := client.CreateIncident(context.Background(), "tok123", models.IncidentRequest{
		Title:       "Leak in B3",
		Description: "Water dripping from the ceiling",
		Category:    models.CategoryMaintenance,
		Status:      models.StatusOpen,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(7), incident.ID)
}

func TestUpdateIncident_Forbidden(t *testing.T) {
	client := newTestClient(t, func(r *gin.Engine) {
		r.PUT("/api/incidents/:id", func(c *gin.Context) {
			assert.Equal(t, "42", c.Param("id"))
			c.JSON(http.StatusForbidden, gin.H{"error": "not owner"})
		})
	})

	incident, err := client.UpdateIncident(context.Background(), "tok123", 42, models.IncidentRequest{
		Title:       "Other title",
		Description: "d",
		Category:    models.CategorySafety,
		Status:      models.StatusOpen,
	})

	require.Error(t, err)
	assert.Nil(t, incident)
	assert.Equal(t, "not owner", Message(err, "Failed to update incident"))
}

func TestDeleteIncident_IgnoresBody(t *testing.T) {
	client := newTestClient(t, func(r *gin.Engine) {
		r.DELETE("/api/incidents/:id", func(c *gin.Context) {
			assert.Equal(t, "2", c.Param("id"))
			c.Status(http.StatusNoContent)
		})
	})

	err := client.DeleteIncident(context.Background(), "tok123", 2)

	require.NoError(t, err)
}

func TestStatusError_UnparsableBody_FallbackMessage(t *testing.T) {
	client := newTestClient(t, func(r *gin.Engine) {
		r.GET("/api/incidents", func(c *gin.Context) {
			c.String(http.StatusInternalServerError, "<html>oops</html>")
		})
	})

	_, err := client.ListIncidents(context.Background(), "tok123")

	require.Error(t, err)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Empty(t, statusErr.Message)
	// Без текста от сервера потребитель получает своё запасное сообщение
	assert.Equal(t, "Failed to fetch incidents", Message(err, "Failed to fetch incidents"))
}

func TestTransportError_NotAStatusError(t *testing.T) {
	// Подготовка: сервер закрывается до запроса
	gin.SetMode(gin.TestMode)
	srv := httptest.NewServer(gin.New())
	srv.Close()

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	client := NewClient(&config.Config{APIBaseURL: srv.URL, HTTPTimeout: time.Second}, logger)

	_, err := client.ListIncidents(context.Background(), "tok123")

	require.Error(t, err)
	var statusErr *StatusError
	assert.False(t, errors.As(err, &statusErr))
	assert.Equal(t, "Failed to fetch incidents", Message(err, "Failed to fetch incidents"))
}
