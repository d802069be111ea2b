package models

import (
	"time"
)

type Category string
type Status string

const (
	CategorySafety      Category = "Safety"
	CategoryMaintenance Category = "Maintenance"

	StatusOpen       Status = "Open"
	StatusInProgress Status = "In Progress"
	StatusSuccess    Status = "Success"
)

// Incident - запись об инциденте; данными владеет сервер, клиент держит копию
type Incident struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Category      Category  `json:"category"`
	Status        Status    `json:"status"`
	UserID        int64     `json:"user_id"`
	OwnerUsername string    `json:"owner_username"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// OwnedBy сообщает, принадлежит ли инцидент данному пользователю.
// Право на изменение проверяет сервер, клиент использует это только для отображения.
func (i *Incident) OwnedBy(userID int64) bool {
	return i.UserID == userID
}

// IncidentRequest - черновик инцидента для запросов создания и обновления
type IncidentRequest struct {
	Title       string   `json:"title" validate:"required,max=150"`
	Description string   `json:"description" validate:"required,max=2000"`
	Category    Category `json:"category" validate:"required,oneof=Safety Maintenance"`
	Status      Status   `json:"status" validate:"required,oneof=Open 'In Progress' Success"`
}
