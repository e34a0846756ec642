package domain

import "time"

// VerificationStatus represents the verification state of a host.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "PENDING"
	VerificationApproved VerificationStatus = "APPROVED"
	VerificationRejected VerificationStatus = "REJECTED"
)

// Host represents a verified user permitted to own trips.
type Host struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	Whatsapp     string
	Verification VerificationStatus
	CreatedAt    time.Time
}
