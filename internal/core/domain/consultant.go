package domain

import (
	"errors"
	"time"
)

var ErrConsultantNotFound = errors.New("consultant not found")

// Consultant is a field consultant managed by the back office. Distinct
// from User: a consultant may exist with no login.
type Consultant struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	Code        string    `json:"code" bson:"code"`
	FirstName   string    `json:"first_name" bson:"first_name"`
	LastName    string    `json:"last_name" bson:"last_name"`
	Email       string    `json:"email,omitempty" bson:"email,omitempty"`
	Phone       string    `json:"phone,omitempty" bson:"phone,omitempty"`
	Address     string    `json:"address,omitempty" bson:"address,omitempty"`
	City        string    `json:"city,omitempty" bson:"city,omitempty"`
	State       string    `json:"state,omitempty" bson:"state,omitempty"`
	ZipCode     string    `json:"zip_code,omitempty" bson:"zip_code,omitempty"`
	Status      string    `json:"status" bson:"status"`
	HireDate    time.Time `json:"hire_date,omitempty" bson:"hire_date,omitempty"`
	CreatedBy   string    `json:"created_by,omitempty" bson:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}
