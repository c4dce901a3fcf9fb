package repo

import (
	"fmt"
	"sync"
	"time"

	"qa-assignment-api/internal/domain"
	"qa-assignment-api/pkg/utils"
)

type PasswordHasher interface {
	HashPassword(pw string) (string, error)
	CheckPassword(pw, hashed string) bool
}

// UserRepo is the credential store. Records are keyed by the email exactly as
// registered and are never updated or removed.
type UserRepo struct {
	mu      sync.RWMutex
	byEmail map[string]domain.User
	lastID  int

	hasher PasswordHasher
	now    func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewUserRepo(h PasswordHasher, now func() time.Time) *UserRepo {
	if now == nil {
		now = time.Now
	}
	return &UserRepo{byEmail: map[string]domain.User{}, hasher: h, now: now}
}

var _ domain.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) Register(email, password, name string) (domain.User, error) {
	if _, ok := r.Find(email); ok {
		return domain.User{}, fmt.Errorf("register %s: %w", email, domain.ErrDuplicateEmail)
	}
	hash, err := r.hasher.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("register %s: %w: %v", email, domain.ErrValidation, err)
	}

	// insert re-checks: a concurrent Register may have won while we were hashing
	u, err := r.insert(email, name, hash)
	if err != nil {
		return u, fmt.Errorf("register %s: %w", email, err)
	}
	return u, nil
}

// Import stores an account whose password is already hashed, in any scheme
// CheckPassword understands. The hash is kept as given.
func (r *UserRepo) Import(in domain.UserImport) (domain.User, error) {
	if in.Email == "" || in.Name == "" {
		return domain.User{}, fmt.Errorf("import: %w: email and name are required", domain.ErrValidation)
	}
	if utils.HashScheme(in.PasswordHash) == "" {
		return domain.User{}, fmt.Errorf("import %s: %w: unrecognised password hash", in.Email, domain.ErrValidation)
	}
	u, err := r.insert(in.Email, in.Name, in.PasswordHash)
	if err != nil {
		return u, fmt.Errorf("import %s: %w", in.Email, err)
	}
	return u, nil
}

func (r *UserRepo) insert(email, name, hash string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[email]; ok {
		return domain.User{}, domain.ErrDuplicateEmail
	}
	r.lastID++
	u := domain.User{
		ID:           r.lastID,
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    r.now(),
	}
	r.byEmail[email] = u
	return u, nil
}

// Verify runs exactly one hash comparison whether or not the email exists.
func (r *UserRepo) Verify(email, password string) bool {
	u, ok := r.Find(email)
	if !ok {
		_ = r.hasher.CheckPassword(password, r.dummy())
		return false
	}
	return r.hasher.CheckPassword(password, u.PasswordHash)
}

func (r *UserRepo) Find(email string) (domain.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byEmail[email]
	return u, ok
}

func (r *UserRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byEmail)
}

func (r *UserRepo) dummy() string {
	r.dummyOnce.Do(func() {
		r.dummyHash, _ = r.hasher.HashPassword("dummy-password-for-unknown-users")
	})
	return r.dummyHash
}
