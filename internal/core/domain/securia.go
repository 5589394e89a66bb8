package domain

import (
	"errors"
	"time"
)

var ErrSecuriaSessionRequired = errors.New("securia session required")
var ErrSecuriaClientNotFound = errors.New("securia client not found")
var ErrSecuriaConsultantNotFound = errors.New("securia consultant not found")

// SecuriaSessionTimeout is how long a Securia session stays valid without a
// refresh. The session is a secondary gate layered on top of the JWT.
const SecuriaSessionTimeout = 8 * time.Hour

// SecuriaConsultant is the sensitive-data counterpart of Consultant.
type SecuriaConsultant struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	FirstName string    `json:"first_name" bson:"first_name"`
	LastName  string    `json:"last_name" bson:"last_name"`
	Email     string    `json:"email,omitempty" bson:"email,omitempty"`
	Phone     string    `json:"phone,omitempty" bson:"phone,omitempty"`
	Status    string    `json:"status" bson:"status"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// SecuriaClient holds PII for the Securia workflow. SSN is stored encrypted
// (AES-256-CBC, "iv_hex:ciphertext_hex") and decrypted on demand only.
type SecuriaClient struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	ConsultantID string    `json:"consultant_id,omitempty" bson:"consultant_id,omitempty"`
	FirstName    string    `json:"first_name" bson:"first_name"`
	LastName     string    `json:"last_name" bson:"last_name"`
	Email        string    `json:"email,omitempty" bson:"email,omitempty"`
	Phone        string    `json:"phone,omitempty" bson:"phone,omitempty"`
	SSN          string    `json:"ssn,omitempty" bson:"ssn,omitempty"`
	Status       string    `json:"status" bson:"status"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// MaskSSN renders an SSN for list views, keeping only the last four digits.
func MaskSSN(ssn string) string {
	if len(ssn) < 4 {
		return ""
	}
	return "***-**-" + ssn[len(ssn)-4:]
}

// AuditRecord is one immutable entry in the Securia audit trail. Records
// are inserted and never updated or deleted by the application.
type AuditRecord struct {
	ID         string    `json:"id" bson:"_id,omitempty"`
	Actor      string    `json:"actor" bson:"actor"`
	Action     string    `json:"action" bson:"action"`
	Resource   string    `json:"resource" bson:"resource"`
	ResourceID string    `json:"resource_id,omitempty" bson:"resource_id,omitempty"`
	IP         string    `json:"ip" bson:"ip"`
	UserAgent  string    `json:"user_agent" bson:"user_agent"`
	Timestamp  time.Time `json:"timestamp" bson:"timestamp"`
	Details    string    `json:"details,omitempty" bson:"details,omitempty"`
}
