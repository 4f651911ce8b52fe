package repository

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/investdesk/core/internal/domain/entities"
	"github.com/investdesk/core/internal/infrastructure/logger"
	"github.com/investdesk/core/internal/infrastructure/storage"
	"github.com/investdesk/core/internal/ports"
)

// UsersFile is the container document for back-office users.
const UsersFile = "users.json"

// UserRepositoryImpl implements the UserRepository interface over the locked
// JSON store.
type UserRepositoryImpl struct {
	store  *storage.Store
	path   string
	logger *logger.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(store *storage.Store, dataDir string, log *logger.Logger) ports.UserRepository {
	return &UserRepositoryImpl{
		store:  store,
		path:   filepath.Join(dataDir, UsersFile),
		logger: log.WithComponent("users"),
	}
}

func (r *UserRepositoryImpl) loadDoc(ctx context.Context) (*entities.UserDocument, error) {
	doc, err := storage.ReadJSON[entities.UserDocument](ctx, r.store, r.path)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, entities.ErrStoreUnavailable
		}
		return nil, err
	}
	return doc, nil
}

func (r *UserRepositoryImpl) loadDocOrEmpty(ctx context.Context) (*entities.UserDocument, error) {
	doc, err := storage.ReadJSON[entities.UserDocument](ctx, r.store, r.path)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &entities.UserDocument{}, nil
		}
		return nil, err
	}
	return doc, nil
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	doc, err := r.loadDoc(ctx)
	if err != nil {
		return nil, err
	}

	for i := range doc.Users {
		if doc.Users[i].EmailMatches(user.Email) {
			return nil, entities.ErrEmailTaken
		}
	}

	record := *user
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now

	doc.Users = append(doc.Users, record)
	if err := storage.WriteJSON(ctx, r.store, r.path, doc); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	r.logger.Infow("User created", "id", record.ID, "email", record.Email, "role", record.Role)
	return &record, nil
}

func (r *UserRepositoryImpl) GetByID(ctx context.Context, id string) (*entities.User, error) {
	doc, err := r.loadDocOrEmpty(ctx)
	if err != nil {
		return nil, err
	}
	for i := range doc.Users {
		if doc.Users[i].ID == id {
			user := doc.Users[i]
			return &user, nil
		}
	}
	return nil, entities.ErrUserNotFound
}

func (r *UserRepositoryImpl) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	doc, err := r.loadDocOrEmpty(ctx)
	if err != nil {
		return nil, err
	}
	for i := range doc.Users {
		if doc.Users[i].EmailMatches(email) {
			user := doc.Users[i]
			return &user, nil
		}
	}
	return nil, entities.ErrUserNotFound
}

func (r *UserRepositoryImpl) List(ctx context.Context) ([]entities.User, error) {
	doc, err := r.loadDocOrEmpty(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entities.User, len(doc.Users))
	copy(out, doc.Users)
	return out, nil
}

func (r *UserRepositoryImpl) Update(ctx context.Context, id string, upd ports.UserUpdate) (*entities.User, error) {
	doc, err := r.loadDoc(ctx)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range doc.Users {
		if doc.Users[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, entities.ErrUserNotFound
	}

	user := doc.Users[idx]
	if upd.Email != nil && !user.EmailMatches(*upd.Email) {
		for i := range doc.Users {
			if doc.Users[i].ID != id && doc.Users[i].EmailMatches(*upd.Email) {
				return nil, entities.ErrEmailTaken
			}
		}
		user.Email = *upd.Email
	}
	if upd.Name != nil {
		user.Name = *upd.Name
	}
	if upd.Password != nil {
		user.Password = *upd.Password
	}
	if upd.Role != nil {
		user.Role = *upd.Role
	}

	user.UpdatedAt = time.Now().UTC()

	doc.Users[idx] = user
	if err := storage.WriteJSON(ctx, r.store, r.path, doc); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	r.logger.Infow("User updated", "id", user.ID)
	return &user, nil
}

func (r *UserRepositoryImpl) Delete(ctx context.Context, id string) error {
	doc, err := r.loadDoc(ctx)
	if err != nil {
		return err
	}

	kept := doc.Users[:0:0]
	for _, user := range doc.Users {
		if user.ID != id {
			kept = append(kept, user)
		}
	}
	if len(kept) == len(doc.Users) {
		return entities.ErrUserNotFound
	}

	doc.Users = kept
	if err := storage.WriteJSON(ctx, r.store, r.path, doc); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	r.logger.Infow("User deleted", "id", id)
	return nil
}
