package view

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shenikar/incident_report_system/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureIncidents() []models.Incident {
	return []models.Incident{
		{ID: 1, Title: "Leak in B3", Category: models.CategoryMaintenance, Status: models.StatusOpen, UserID: 2, OwnerUsername: "bob"},
		{ID: 2, Title: "Blocked fire exit", Category: models.CategorySafety, Status: models.StatusOpen, UserID: 1, OwnerUsername: "alice"},
		{ID: 3, Title: "Broken hoist", Category: models.CategoryMaintenance, Status: models.StatusInProgress, UserID: 1, OwnerUsername: "alice"},
	}
}

func TestFilter(t *testing.T) {
	incidents := fixtureIncidents()

	tests := []struct {
		name     string
		status   string
		category string
		wantIDs  []int64
	}{
		{"all pass-through", FilterAll, FilterAll, []int64{1, 2, 3}},
		{"empty equals all", "", "", []int64{1, 2, 3}},
		{"by status", "Open", FilterAll, []int64{1, 2}},
		{"by category", FilterAll, "Maintenance", []int64{1, 3}},
		{"both axes", "In Progress", "Maintenance", []int64{3}},
		{"no match", "Success", FilterAll, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(incidents, tt.status, tt.category)
			ids := make([]int64, 0, len(got))
			for _, inc := range got {
				ids = append(ids, inc.ID)
			}
			if tt.wantIDs == nil {
				assert.Empty(t, ids)
				return
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestValidateDraft(t *testing.T) {
	tests := []struct {
		name string
		req  models.IncidentRequest
		want string
	}{
		{
			"valid draft",
			models.IncidentRequest{Title: "Leak in B3", Description: "d", Category: models.CategoryMaintenance, Status: models.StatusOpen},
			"",
		},
		{
			"in progress status accepted",
			models.IncidentRequest{Title: "t", Description: "d", Category: models.CategorySafety, Status: models.StatusInProgress},
			"",
		},
		{
			"missing title",
			models.IncidentRequest{Description: "d", Category: models.CategorySafety, Status: models.StatusOpen},
			"title is required",
		},
		{
			"whitespace title",
			models.IncidentRequest{Title: "   ", Description: "d", Category: models.CategorySafety, Status: models.StatusOpen},
			"title is required",
		},
		{
			"title too long",
			models.IncidentRequest{Title: strings.Repeat("x", 151), Description: "d", Category: models.CategorySafety, Status: models.StatusOpen},
			"title must be 150 characters or fewer",
		},
		{
			"missing description",
			models.IncidentRequest{Title: "t", Category: models.CategorySafety, Status: models.StatusOpen},
			"description is required",
		},
		{
			"unknown category",
			models.IncidentRequest{Title: "t", Description: "d", Category: "Plumbing", Status: models.StatusOpen},
			"category must be 'Safety' or 'Maintenance'",
		},
		{
			"unknown status",
			models.IncidentRequest{Title: "t", Description: "d", Category: models.CategorySafety, Status: "Done"},
			"status must be 'Open', 'In Progress', or 'Success'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateDraft(&tt.req))
		})
	}
}

func TestValidateDraft_TrimsFields(t *testing.T) {
	req := models.IncidentRequest{
		Title:       "  Leak in B3  ",
		Description: "  drip  ",
		Category:    models.CategoryMaintenance,
		Status:      models.StatusOpen,
	}

	require.Empty(t, ValidateDraft(&req))
	assert.Equal(t, "Leak in B3", req.Title)
	assert.Equal(t, "drip", req.Description)
}

func TestValidateCredentials(t *testing.T) {
	tests := []struct {
		name  string
		creds models.Credentials
		want  string
	}{
		{"valid", models.Credentials{Username: "alice", Password: "secret1"}, ""},
		{"missing username", models.Credentials{Password: "secret1"}, "username is required"},
		{"short username", models.Credentials{Username: "al", Password: "secret1"}, "username must be at least 3 characters"},
		{"long username", models.Credentials{Username: strings.Repeat("a", 31), Password: "secret1"}, "username must be 30 characters or fewer"},
		{"missing password", models.Credentials{Username: "alice"}, "password is required"},
		{"short password", models.Credentials{Username: "alice", Password: "12345"}, "password must be at least 6 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateCredentials(&tt.creds))
		})
	}
}

func TestRenderIncidents(t *testing.T) {
	var buf bytes.Buffer
	incidents := fixtureIncidents()
	incidents[0].UpdatedAt = time.Date(2026, 8, 20, 14, 30, 0, 0, time.UTC)

	RenderIncidents(&buf, incidents, 1)
	out := buf.String()

	assert.Contains(t, out, "Leak in B3")
	assert.Contains(t, out, "2026-08-20 14:30")
	// Записи текущего пользователя помечены, чужие - нет
	assert.Contains(t, out, "alice *")
	assert.NotContains(t, out, "bob *")
}

func TestRenderIncidents_Empty(t *testing.T) {
	var buf bytes.Buffer

	RenderIncidents(&buf, nil, 1)

	assert.Contains(t, buf.String(), "No incidents reported yet.")
}

func TestRenderIncident(t *testing.T) {
	var buf bytes.Buffer
	inc := fixtureIncidents()[0]
	inc.Description = "Water dripping from the ceiling"

	RenderIncident(&buf, inc)
	out := buf.String()

	assert.Contains(t, out, "#1 Leak in B3")
	assert.Contains(t, out, "Maintenance")
	assert.Contains(t, out, "Water dripping from the ceiling")
	assert.Contains(t, out, "bob")
}
