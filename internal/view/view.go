package view

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/go-playground/validator/v10"
	"github.com/shenikar/incident_report_system/internal/models"
)

// FilterAll отключает фильтрацию по соответствующей оси
const FilterAll = "All"

var validate = validator.New()

// Filter отбирает инциденты по статусу и категории. Пустое значение
// или FilterAll пропускает всё по своей оси.
func Filter(incidents []models.Incident, status, category string) []models.Incident {
	filtered := make([]models.Incident, 0, len(incidents))
	for _, inc := range incidents {
		if !matches(string(inc.Status), status) {
			continue
		}
		if !matches(string(inc.Category), category) {
			continue
		}
		filtered = append(filtered, inc)
	}
	return filtered
}

func matches(value, filter string) bool {
	return filter == "" || filter == FilterAll || value == filter
}

// ValidateDraft проверяет черновик перед отправкой, чтобы заведомо
// некорректный запрос не уходил в сеть. Пустая строка означает успех.
func ValidateDraft(req *models.IncidentRequest) string {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)

	err := validate.Struct(req)
	if err == nil {
		return ""
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err.Error()
	}
	// Пользователю показывается только первая проблема
	return draftMessage(fieldErrs[0])
}

func draftMessage(e validator.FieldError) string {
	switch e.StructField() {
	case "Title":
		if e.Tag() == "max" {
			return "title must be 150 characters or fewer"
		}
		return "title is required"
	case "Description":
		if e.Tag() == "max" {
			return "description must be 2000 characters or fewer"
		}
		return "description is required"
	case "Category":
		return "category must be 'Safety' or 'Maintenance'"
	case "Status":
		return "status must be 'Open', 'In Progress', or 'Success'"
	}
	return e.Error()
}

// ValidateCredentials проверяет логин и пароль перед отправкой.
// Пустая строка означает успех.
func ValidateCredentials(creds *models.Credentials) string {
	creds.Username = strings.TrimSpace(creds.Username)

	err := validate.Struct(creds)
	if err == nil {
		return ""
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err.Error()
	}
	return credentialsMessage(fieldErrs[0])
}

func credentialsMessage(e validator.FieldError) string {
	switch e.StructField() {
	case "Username":
		switch e.Tag() {
		case "min":
			return "username must be at least 3 characters"
		case "max":
			return "username must be 30 characters or fewer"
		}
		return "username is required"
	case "Password":
		if e.Tag() == "min" {
			return "password must be at least 6 characters"
		}
		return "password is required"
	}
	return e.Error()
}

// RenderIncidents печатает список таблицей. Записи текущего пользователя
// помечаются звёздочкой.
func RenderIncidents(w io.Writer, incidents []models.Incident, currentUserID int64) {
	if len(incidents) == 0 {
		fmt.Fprintln(w, "No incidents reported yet.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tSTATUS\tOWNER\tUPDATED")
	for _, inc := range incidents {
		owner := inc.OwnerUsername
		if inc.OwnedBy(currentUserID) {
			owner += " *"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			inc.ID,
			inc.Title,
			inc.Category,
			inc.Status,
			owner,
			inc.UpdatedAt.Format("2006-01-02 15:04"),
		)
	}
	tw.Flush()
}

// RenderIncident печатает одну запись целиком, включая описание
func RenderIncident(w io.Writer, inc models.Incident) {
	fmt.Fprintf(w, "#%d %s\n", inc.ID, inc.Title)
	fmt.Fprintf(w, "Category: %s\n", inc.Category)
	fmt.Fprintf(w, "Status:   %s\n", inc.Status)
	fmt.Fprintf(w, "Owner:    %s\n", inc.OwnerUsername)
	fmt.Fprintf(w, "Created:  %s\n", inc.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(w, "Updated:  %s\n", inc.UpdatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(w, "\n%s\n", inc.Description)
}
