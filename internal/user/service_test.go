package user

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	byID    map[string]*User
	byEmail map[string]*User
	seq     int

	lastLoginErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    make(map[string]*User),
		byEmail: make(map[string]*User),
	}
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) Create(_ context.Context, u *User) error {
	if _, exists := r.byEmail[u.Email]; exists {
		return ErrEmailAlreadyUsed
	}
	r.seq++
	u.ID = fmt.Sprintf("user-%d", r.seq)
	u.CreatedAt = time.Now().UTC()
	r.byID[u.ID] = u
	r.byEmail[u.Email] = u
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *User) error {
	old, ok := r.byID[u.ID]
	if !ok {
		return ErrNotFound
	}
	delete(r.byEmail, old.Email)
	r.byID[u.ID] = u
	r.byEmail[u.Email] = u
	return nil
}

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, id string, t time.Time) error {
	if r.lastLoginErr != nil {
		return r.lastLoginErr
	}
	u, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.LastLoginAt = &t
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	u, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.IsActive = false
	return nil
}

// fakeHasher marks hashes with a prefix instead of running bcrypt.
type fakeHasher struct{}

func (fakeHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }

func (fakeHasher) Compare(hash, plain string) error {
	if hash != "hashed:"+plain {
		return fmt.Errorf("mismatch")
	}
	return nil
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("Happy Path", func(t *testing.T) {
		s := NewService(newFakeUserRepo(), fakeHasher{})

		u, err := s.Register(ctx, "  Alice@Example.COM ", "supersecret", " Alice ")
		require.NoError(t, err)
		assert.NotEmpty(t, u.ID)
		assert.Equal(t, "alice@example.com", u.Email, "email is normalized")
		require.NotNil(t, u.DisplayName)
		assert.Equal(t, "Alice", *u.DisplayName)
		assert.Equal(t, "hashed:supersecret", u.PasswordHash)
		assert.True(t, u.IsActive)
	})

	t.Run("Short Password", func(t *testing.T) {
		s := NewService(newFakeUserRepo(), fakeHasher{})
		_, err := s.Register(ctx, "a@example.com", "short", "")
		assert.ErrorIs(t, err, ErrPasswordTooShort)
	})

	t.Run("Blank Email", func(t *testing.T) {
		s := NewService(newFakeUserRepo(), fakeHasher{})
		_, err := s.Register(ctx, "   ", "supersecret", "")
		assert.ErrorIs(t, err, ErrEmailRequired)
	})

	t.Run("Duplicate Email", func(t *testing.T) {
		s := NewService(newFakeUserRepo(), fakeHasher{})
		_, err := s.Register(ctx, "a@example.com", "supersecret", "")
		require.NoError(t, err)

		_, err = s.Register(ctx, "A@Example.com", "supersecret", "")
		assert.ErrorIs(t, err, ErrEmailAlreadyUsed)
	})

	t.Run("Blank Display Name Stored As Null", func(t *testing.T) {
		s := NewService(newFakeUserRepo(), fakeHasher{})
		u, err := s.Register(ctx, "a@example.com", "supersecret", "   ")
		require.NoError(t, err)
		assert.Nil(t, u.DisplayName)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (Service, *fakeUserRepo) {
		t.Helper()
		repo := newFakeUserRepo()
		s := NewService(repo, fakeHasher{})
		_, err := s.Register(ctx, "a@example.com", "supersecret", "Alice")
		require.NoError(t, err)
		return s, repo
	}

	t.Run("Happy Path", func(t *testing.T) {
		s, _ := setup(t)
		u, err := s.Login(ctx, "a@example.com", "supersecret")
		require.NoError(t, err)
		assert.NotNil(t, u.LastLoginAt)
	})

	t.Run("Last Login Update Failure Does Not Fail Login", func(t *testing.T) {
		s, repo := setup(t)
		repo.lastLoginErr = fmt.Errorf("connection refused")

		u, err := s.Login(ctx, "a@example.com", "supersecret")
		require.NoError(t, err)
		assert.Equal(t, "a@example.com", u.Email)
		assert.Nil(t, u.LastLoginAt)
	})

	t.Run("Wrong Password", func(t *testing.T) {
		s, _ := setup(t)
		_, err := s.Login(ctx, "a@example.com", "wrongpassword")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Unknown Email Indistinguishable From Wrong Password", func(t *testing.T) {
		s, _ := setup(t)
		_, err := s.Login(ctx, "nobody@example.com", "supersecret")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Inactive Account", func(t *testing.T) {
		s, repo := setup(t)
		for _, u := range repo.byID {
			u.IsActive = false
		}
		_, err := s.Login(ctx, "a@example.com", "supersecret")
		assert.ErrorIs(t, err, ErrInactiveUser)
	})
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()

	repo := newFakeUserRepo()
	s := NewService(repo, fakeHasher{})
	u, err := s.Register(ctx, "a@example.com", "supersecret", "Alice")
	require.NoError(t, err)

	t.Run("Change Display Name", func(t *testing.T) {
		name := "Alicia"
		updated, err := s.Update(ctx, u.ID, UpdateRequest{DisplayName: &name})
		require.NoError(t, err)
		require.NotNil(t, updated.DisplayName)
		assert.Equal(t, "Alicia", *updated.DisplayName)
		assert.Equal(t, "a@example.com", updated.Email, "email untouched")
	})

	t.Run("Clear Display Name", func(t *testing.T) {
		blank := "  "
		updated, err := s.Update(ctx, u.ID, UpdateRequest{DisplayName: &blank})
		require.NoError(t, err)
		assert.Nil(t, updated.DisplayName)
	})

	t.Run("Unknown User", func(t *testing.T) {
		_, err := s.Update(ctx, "missing", UpdateRequest{})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
