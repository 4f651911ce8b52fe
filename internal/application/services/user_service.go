package services

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/investdesk/core/internal/domain/entities"
	"github.com/investdesk/core/internal/infrastructure/logger"
	"github.com/investdesk/core/internal/ports"
)

// UserService handles back-office user management
type UserService struct {
	userRepo   ports.UserRepository
	bcryptCost int
	logger     *logger.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo ports.UserRepository, bcryptCost int, logger *logger.Logger) *UserService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{
		userRepo:   userRepo,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// CreateUser hashes the password and creates a user
func (s *UserService) CreateUser(ctx context.Context, req ports.CreateUserRequest) (*entities.User, error) {
	if !req.Role.IsValid() {
		return nil, fmt.Errorf("invalid role: %s", req.Role)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entities.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
		Role:     req.Role,
	}

	created, err := s.userRepo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Infow("User created", "user_id", created.ID, "email", created.Email)

	created.Sanitize()
	return created, nil
}

// GetUser retrieves a user by id with the password hash scrubbed
func (s *UserService) GetUser(ctx context.Context, id string) (*entities.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Sanitize()
	return user, nil
}

// ListUsers lists all users with password hashes scrubbed
func (s *UserService) ListUsers(ctx context.Context) ([]entities.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].Sanitize()
	}
	return users, nil
}

// UpdateUser applies a partial update, hashing a new password if supplied
func (s *UserService) UpdateUser(ctx context.Context, id string, req ports.UpdateUserRequest) (*entities.User, error) {
	if req.Role != nil && !req.Role.IsValid() {
		return nil, fmt.Errorf("invalid role: %s", *req.Role)
	}

	upd := ports.UserUpdate{
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	}
	if req.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		h := string(hashed)
		upd.Password = &h
	}

	updated, err := s.userRepo.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}

	updated.Sanitize()
	return updated, nil
}

// DeleteUser removes a user by id
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	return s.userRepo.Delete(ctx, id)
}
