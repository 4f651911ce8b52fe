package ports

import (
	"time"

	"github.com/investdesk/core/internal/domain/entities"
)

// Request/response types shared between HTTP handlers, CLI commands and the
// service layer.

// Auth related types
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	ExpiresIn   int64          `json:"expires_in"`
	User        *entities.User `json:"user"`
}

// Investment related types
type CreateInvestmentRequest struct {
	ID                  string                    `json:"id" validate:"omitempty,max=120"`
	Title               string                    `json:"title" validate:"required,max=200"`
	Description         string                    `json:"description" validate:"required"`
	DetailedDescription string                    `json:"detailedDescription"`
	ExpectedReturn      string                    `json:"expectedReturn"`
	MinimumInvestment   string                    `json:"minimumInvestment"`
	Category            string                    `json:"category" validate:"required,max=100"`
	Risk                entities.RiskLevel        `json:"risk" validate:"required"`
	Status              entities.InvestmentStatus `json:"status" validate:"omitempty"`
	Images              []string                  `json:"images"`
	MainImageID         string                    `json:"mainImageId"`
}

type UpdateInvestmentRequest struct {
	Title               *string                    `json:"title" validate:"omitempty,max=200"`
	Description         *string                    `json:"description"`
	DetailedDescription *string                    `json:"detailedDescription"`
	ExpectedReturn      *string                    `json:"expectedReturn"`
	MinimumInvestment   *string                    `json:"minimumInvestment"`
	Category            *string                    `json:"category" validate:"omitempty,max=100"`
	Risk                *entities.RiskLevel        `json:"risk"`
	Status              *entities.InvestmentStatus `json:"status"`
	Images              *[]string                  `json:"images"`
	MainImageID         *string                    `json:"mainImageId"`
}

type ReviewInvestmentRequest struct {
	Status          entities.InvestmentStatus `json:"status" validate:"required"`
	RejectionReason string                    `json:"rejectionReason"`
}

// User related types
type CreateUserRequest struct {
	Name     string            `json:"name" validate:"required,max=100"`
	Email    string            `json:"email" validate:"required,email"`
	Password string            `json:"password" validate:"required,min=8"`
	Role     entities.UserRole `json:"role" validate:"required"`
}

type UpdateUserRequest struct {
	Name     *string            `json:"name" validate:"omitempty,max=100"`
	Email    *string            `json:"email" validate:"omitempty,email"`
	Password *string            `json:"password" validate:"omitempty,min=8"`
	Role     *entities.UserRole `json:"role"`
}

// Lead related types
type CreateLeadRequest struct {
	Name               string `json:"name" validate:"required,max=100"`
	Email              string `json:"email" validate:"required,email"`
	Phone              string `json:"phone" validate:"omitempty,max=40"`
	Message            string `json:"message" validate:"omitempty,max=4000"`
	InvestmentInterest string `json:"investmentInterest" validate:"omitempty,max=200"`
}

type UpdateLeadStatusRequest struct {
	Status entities.LeadStatus `json:"status" validate:"required"`
}

// Backup related types
type RestoreBackupRequest struct {
	Backup string `json:"backup" validate:"required"`
	Target string `json:"target"`
}

type BackupStatus struct {
	File       string     `json:"file"`
	LastBackup *time.Time `json:"lastBackup,omitempty"`
	Backups    []string   `json:"backups"`
}
