package ports

import (
	"context"
	"time"

	"github.com/investdesk/core/internal/domain/entities"
)

// InvestmentRepository defines the interface for investment data operations
type InvestmentRepository interface {
	Create(ctx context.Context, inv *entities.Investment) (*entities.Investment, error)
	GetByID(ctx context.Context, id string) (*entities.Investment, error)
	List(ctx context.Context, filter InvestmentFilter) ([]entities.Investment, error)
	Update(ctx context.Context, id string, upd InvestmentUpdate) (*entities.Investment, error)
	Delete(ctx context.Context, id string) error
	Submit(ctx context.Context, inv *entities.Investment, submitterEmail string) (*entities.Investment, error)
	Review(ctx context.Context, id string, status entities.InvestmentStatus, reviewerEmail, rejectionReason string) (*entities.Investment, error)
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) (*entities.User, error)
	GetByID(ctx context.Context, id string) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	List(ctx context.Context) ([]entities.User, error)
	Update(ctx context.Context, id string, upd UserUpdate) (*entities.User, error)
	Delete(ctx context.Context, id string) error
}

// LeadRepository defines the interface for lead data operations
type LeadRepository interface {
	Create(ctx context.Context, lead *entities.Lead) (*entities.Lead, error)
	GetByID(ctx context.Context, id string) (*entities.Lead, error)
	List(ctx context.Context, filter LeadFilter) ([]entities.Lead, error)
	UpdateStatus(ctx context.Context, id string, status entities.LeadStatus) (*entities.Lead, error)
	Delete(ctx context.Context, id string) error
}

// InvestmentUpdate is a partial update: nil fields leave the stored value
// untouched. CreatedAt can never be overridden; SubmittedBy and SubmittedAt
// are one-way fields preserved unless explicitly supplied. A pointer to the
// empty string clears RejectionReason.
type InvestmentUpdate struct {
	Title               *string
	Description         *string
	DetailedDescription *string
	ExpectedReturn      *string
	MinimumInvestment   *string
	Category            *string
	Risk                *entities.RiskLevel
	Status              *entities.InvestmentStatus
	Images              *[]string
	MainImageID         *string
	SubmittedBy         *string
	SubmittedAt         *time.Time
	ReviewedBy          *string
	ReviewedAt          *time.Time
	RejectionReason     *string
}

// UserUpdate is a partial update for users. Password, when set, must already
// be hashed by the caller.
type UserUpdate struct {
	Name     *string
	Email    *string
	Password *string
	Role     *entities.UserRole
}

// Filter types for repository queries
type InvestmentFilter struct {
	Status   *entities.InvestmentStatus
	Category *string
	Risk     *entities.RiskLevel
}

type LeadFilter struct {
	Status             *entities.LeadStatus
	InvestmentInterest *string
}
