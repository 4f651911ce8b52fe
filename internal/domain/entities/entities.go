package entities

import (
	"errors"
	"strings"
	"time"
)

// Common errors
var (
	ErrInvestmentNotFound = errors.New("investment not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrLeadNotFound       = errors.New("lead not found")
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidRisk        = errors.New("invalid risk level")
	ErrInvalidLeadStatus  = errors.New("invalid lead status")
	ErrDuplicateID        = errors.New("id already exists")
	ErrStoreUnavailable   = errors.New("data store unavailable")
)

// Enums and types
type InvestmentStatus string

const (
	InvestmentStatusActive   InvestmentStatus = "Active"
	InvestmentStatusInactive InvestmentStatus = "Inactive"
	InvestmentStatusPending  InvestmentStatus = "Pending"
	InvestmentStatusRejected InvestmentStatus = "Rejected"
	InvestmentStatusDraft    InvestmentStatus = "Draft"
)

type RiskLevel string

const (
	RiskLow          RiskLevel = "Low"
	RiskModerate     RiskLevel = "Moderate"
	RiskModerateHigh RiskLevel = "Moderate-High"
	RiskHigh         RiskLevel = "High"
)

type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "New"
	LeadStatusContacted LeadStatus = "Contacted"
	LeadStatusQualified LeadStatus = "Qualified"
	LeadStatusConverted LeadStatus = "Converted"
	LeadStatusClosed    LeadStatus = "Closed"
)

type UserRole string

const (
	UserRoleAdmin  UserRole = "admin"
	UserRoleEditor UserRole = "editor"
)

// Investment represents an investment opportunity in the catalog.
// Field names match the persisted JSON document layout.
type Investment struct {
	ID                  string           `json:"id"`
	Title               string           `json:"title"`
	Description         string           `json:"description"`
	DetailedDescription string           `json:"detailedDescription,omitempty"`
	ExpectedReturn      string           `json:"expectedReturn,omitempty"`
	MinimumInvestment   string           `json:"minimumInvestment,omitempty"`
	Category            string           `json:"category,omitempty"`
	Risk                RiskLevel        `json:"risk,omitempty"`
	Status              InvestmentStatus `json:"status"`
	Images              []string         `json:"images"`
	MainImageID         string           `json:"mainImageId,omitempty"`
	CreatedAt           time.Time        `json:"createdAt"`
	UpdatedAt           time.Time        `json:"updatedAt"`
	SubmittedBy         string           `json:"submittedBy,omitempty"`
	SubmittedAt         *time.Time       `json:"submittedAt,omitempty"`
	ReviewedBy          string           `json:"reviewedBy,omitempty"`
	ReviewedAt          *time.Time       `json:"reviewedAt,omitempty"`
	RejectionReason     string           `json:"rejectionReason,omitempty"`
}

// User represents a back-office user. The password hash is persisted in the
// data file but must be scrubbed before a user leaves the service layer.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"password,omitempty"`
	Role      UserRole  `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Lead represents an inquiry captured from the public site.
type Lead struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Email              string     `json:"email"`
	Phone              string     `json:"phone,omitempty"`
	Message            string     `json:"message,omitempty"`
	InvestmentInterest string     `json:"investmentInterest,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	Status             LeadStatus `json:"status"`
}

// Document containers: one top-level JSON object per data file.
type InvestmentDocument struct {
	Investments []Investment `json:"investments"`
}

type UserDocument struct {
	Users []User `json:"users"`
}

type LeadDocument struct {
	Leads []Lead `json:"leads"`
}

// BackupConfig tracks, per source filename, when the last snapshot was taken.
type BackupConfig struct {
	LastBackups map[string]string `json:"lastBackups"`
}

// Business logic methods for Investment

// HasImage reports whether id is one of the investment's images.
func (i *Investment) HasImage(id string) bool {
	for _, img := range i.Images {
		if img == id {
			return true
		}
	}
	return false
}

// EnsureMainImage repairs the main-image reference: if MainImageID no longer
// points at an entry of Images it falls back to the first remaining image,
// or clears the field when no images are left.
func (i *Investment) EnsureMainImage() {
	if i.MainImageID == "" {
		return
	}
	if i.HasImage(i.MainImageID) {
		return
	}
	if len(i.Images) > 0 {
		i.MainImageID = i.Images[0]
		return
	}
	i.MainImageID = ""
}

// IsPublic reports whether the investment should appear on the public site.
func (i *Investment) IsPublic() bool {
	return i.Status == InvestmentStatusActive
}

// WasSubmitted reports whether submission metadata has been recorded.
func (i *Investment) WasSubmitted() bool {
	return i.SubmittedBy != "" || i.SubmittedAt != nil
}

// Business logic methods for User

func (u *User) Sanitize() {
	u.Password = ""
}

func (u *User) EmailMatches(email string) bool {
	return strings.EqualFold(u.Email, email)
}

// Utility methods

func (s InvestmentStatus) IsValid() bool {
	switch s {
	case InvestmentStatusActive, InvestmentStatusInactive, InvestmentStatusPending,
		InvestmentStatusRejected, InvestmentStatusDraft:
		return true
	default:
		return false
	}
}

func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskLow, RiskModerate, RiskModerateHigh, RiskHigh:
		return true
	default:
		return false
	}
}

func (s LeadStatus) IsValid() bool {
	switch s {
	case LeadStatusNew, LeadStatusContacted, LeadStatusQualified,
		LeadStatusConverted, LeadStatusClosed:
		return true
	default:
		return false
	}
}

func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleAdmin, UserRoleEditor:
		return true
	default:
		return false
	}
}
