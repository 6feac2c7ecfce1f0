// Package repotest provides an in-memory AccountRepo for tests. It mirrors
// the Postgres behavior: case-insensitive emails, uniqueness scoped to
// active accounts, soft deletes only.
package repotest

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/innkeeper/server/internal/model"
	"github.com/innkeeper/server/internal/repo"
)

// FakeRepo is an in-memory repo.AccountRepo.
type FakeRepo struct {
	mu       sync.Mutex
	Accounts map[uuid.UUID]model.Account

	// FailLastLogin makes UpdateLastLogin fail, for best-effort tests.
	FailLastLogin bool
	// LastLoginSet counts successful UpdateLastLogin calls.
	LastLoginSet int
}

var _ repo.AccountRepo = (*FakeRepo)(nil)

// New creates an empty fake repository.
func New() *FakeRepo {
	return &FakeRepo{Accounts: make(map[uuid.UUID]model.Account)}
}

// Get returns a stored account by id, for test assertions.
func (f *FakeRepo) Get(id uuid.UUID) (model.Account, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	acct, ok := f.Accounts[id]
	return acct, ok
}

func (f *FakeRepo) Create(_ context.Context, params model.NewAccountParams) (model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.Accounts {
		if a.Active && strings.EqualFold(a.Email, params.Email) {
			return model.Account{}, repo.ErrDuplicateEmail
		}
	}
	now := time.Now()
	acct := model.Account{
		ID:           uuid.New(),
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		DisplayName:  params.DisplayName,
		FamilyName:   params.FamilyName,
		Phone:        params.Phone,
		BirthDate:    params.BirthDate,
		Bio:          params.Bio,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.Accounts[acct.ID] = acct
	return acct, nil
}

func (f *FakeRepo) GetByID(_ context.Context, id uuid.UUID) (model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	acct, ok := f.Accounts[id]
	if !ok {
		return model.Account{}, repo.ErrNotFound
	}
	return acct, nil
}

func (f *FakeRepo) GetByEmail(_ context.Context, email string) (model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	matches := make([]model.Account, 0, 1)
	for _, a := range f.Accounts {
		if strings.EqualFold(a.Email, email) {
			matches = append(matches, a)
		}
	}
	if len(matches) == 0 {
		return model.Account{}, repo.ErrNotFound
	}
	// Active row wins, then the most recently created.
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Active != matches[j].Active {
			return matches[i].Active
		}
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return matches[0], nil
}

func (f *FakeRepo) EmailTaken(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.Accounts {
		if a.Active && strings.EqualFold(a.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (f *FakeRepo) UpdateLastLogin(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailLastLogin {
		return errors.New("stamp failed")
	}
	acct, ok := f.Accounts[id]
	if !ok {
		return repo.ErrNotFound
	}
	now := time.Now()
	acct.LastLoginAt = &now
	f.Accounts[id] = acct
	f.LastLoginSet++
	return nil
}

func (f *FakeRepo) UpdateProfile(_ context.Context, id uuid.UUID, update model.ProfileUpdate) (model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	acct, ok := f.Accounts[id]
	if !ok {
		return model.Account{}, repo.ErrNotFound
	}
	if update.DisplayName != nil {
		acct.DisplayName = *update.DisplayName
	}
	if update.FamilyName != nil {
		acct.FamilyName = update.FamilyName
	}
	if update.Phone != nil {
		acct.Phone = update.Phone
	}
	if update.BirthDate != nil {
		acct.BirthDate = update.BirthDate
	}
	if update.Bio != nil {
		acct.Bio = update.Bio
	}
	if update.AvatarURL != nil {
		acct.AvatarURL = update.AvatarURL
	}
	acct.UpdatedAt = time.Now()
	f.Accounts[id] = acct
	return acct, nil
}

func (f *FakeRepo) UpdatePasswordHash(_ context.Context, id uuid.UUID, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	acct, ok := f.Accounts[id]
	if !ok {
		return repo.ErrNotFound
	}
	acct.PasswordHash = hash
	f.Accounts[id] = acct
	return nil
}

func (f *FakeRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	acct, ok := f.Accounts[id]
	if !ok {
		return repo.ErrNotFound
	}
	acct.Active = false
	f.Accounts[id] = acct
	return nil
}
