package users

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// MemoryRepository keeps records in process memory. It backs the server
// when no database DSN is configured and the service-level tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[int64]models.User
	byEmail map[string]int64
	nextID  int64
	now     func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[int64]models.User),
		byEmail: make(map[string]int64),
		nextID:  1,
		now:     time.Now,
	}
}

func (r *MemoryRepository) FindBy(ctx context.Context, column Column, value any) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStore, err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		id int64
		ok bool
	)
	switch column {
	case ColumnID:
		id, ok = asInt64(value)
		if ok {
			_, ok = r.byID[id]
		}
	case ColumnEmail:
		email, isString := value.(string)
		if isString {
			id, ok = r.byEmail[email]
		}
	default:
		return nil, fmt.Errorf("%w: unsupported lookup column %d", common.ErrStore, column)
	}

	if !ok {
		return nil, common.ErrorNotFound
	}

	u := r.byID[id]
	return &u, nil
}

func (r *MemoryRepository) Insert(ctx context.Context, user *models.User) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: %w", common.ErrStore, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return 0, common.ErrAlreadyExists
	}

	user.ID = r.nextID
	user.CreatedAt = r.now()
	r.nextID++

	r.byID[user.ID] = *user
	r.byEmail[user.Email] = user.ID

	return user.ID, nil
}

func (r *MemoryRepository) SetBanned(ctx context.Context, id int64, banned bool) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", common.ErrStore, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.Banned = banned
	r.byID[id] = u

	return nil
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}
