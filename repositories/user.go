//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"alumni-net/domain"
	"alumni-net/errors"
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
)

type IUserRepository interface {
	CreateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id domain.UserID) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	UpdateProfile(ctx context.Context, id domain.UserID, patch domain.ProfilePatch, now time.Time) (domain.Profile, error)
	ListUsers(ctx context.Context) ([]User, error)
}

type UserRepository struct {
	store *Store
}

func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

// User is the repository view of an account: credentials, profile and the
// adjacency set of the connection graph.
type User struct {
	ID           domain.UserID
	Email        string
	PasswordHash string
	Roles        []string
	Profile      domain.Profile
	Connections  domain.Connections
	CreatedAt    time.Time
}

func userKey(id domain.UserID) string {
	return "user:id:" + string(id)
}

func emailKey(email string) string {
	return "user:email:" + email
}

// CreateUser persists a new account and its email index in one transaction.
func (u UserRepository) CreateUser(ctx context.Context, user User) error {
	return u.store.update(ctx, func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(emailKey(user.Email))); err == nil {
			return errors.ErrUserAlreadyExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if _, err := txn.Get([]byte(userKey(user.ID))); err == nil {
			return errors.ErrUserAlreadyExists
		}
		if err := txn.Set([]byte(emailKey(user.Email)), []byte(user.ID)); err != nil {
			return err
		}
		return setRecord(txn, userKey(user.ID), fromUser(user))
	})
}

func (u UserRepository) GetUser(ctx context.Context, id domain.UserID) (User, error) {
	var user User
	err := u.store.view(ctx, func(txn *badger.Txn) error {
		var err error
		user, err = loadUser(txn, id)
		return err
	})
	return user, err
}

// GetUserByEmail follows the email index to the account record.
func (u UserRepository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var user User
	err := u.store.view(ctx, func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(emailKey(email)))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: email %s", errors.ErrNotFound, email)
		}
		if err != nil {
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		user, err = loadUser(txn, domain.UserID(id))
		return err
	})
	return user, err
}

func (u UserRepository) UpdateProfile(ctx context.Context, id domain.UserID, patch domain.ProfilePatch, now time.Time) (domain.Profile, error) {
	var profile domain.Profile
	err := u.store.update(ctx, func(txn *badger.Txn) error {
		user, err := loadUser(txn, id)
		if err != nil {
			return err
		}
		if err = patch.Apply(&user.Profile, now); err != nil {
			return err
		}
		profile = user.Profile
		return setRecord(txn, userKey(id), fromUser(user))
	})
	return profile, err
}

// ListUsers scans every account, ordered by id.
func (u UserRepository) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	err := u.store.view(ctx, func(txn *badger.Txn) error {
		prefix := []byte("user:id:")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var record userRecord
			if err := it.Item().Value(func(val []byte) error {
				return decodeUser(val, &record)
			}); err != nil {
				return err
			}
			users = append(users, toUser(record))
		}
		return nil
	})
	return users, err
}

func loadUser(txn *badger.Txn, id domain.UserID) (User, error) {
	var record userRecord
	if err := getRecord(txn, userKey(id), &record); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return User{}, fmt.Errorf("%w: user %s", errors.ErrNotFound, id)
		}
		return User{}, err
	}
	return toUser(record), nil
}

type userRecord struct {
	ID           string        `msgpack:"id"`
	Email        string        `msgpack:"email"`
	PasswordHash string        `msgpack:"password_hash"`
	Roles        []string      `msgpack:"roles"`
	Profile      profileRecord `msgpack:"profile"`
	Connections  []string      `msgpack:"connections"`
	CreatedAt    time.Time     `msgpack:"created_at"`
}

// profileRecord flattens the role union: exactly one details pointer is set,
// matching Role.
type profileRecord struct {
	Name       string                 `msgpack:"name"`
	Avatar     string                 `msgpack:"avatar"`
	Headline   string                 `msgpack:"headline"`
	Bio        string                 `msgpack:"bio"`
	Skills     []string               `msgpack:"skills"`
	Experience []domain.Experience    `msgpack:"experience"`
	Education  []domain.Education     `msgpack:"education"`
	Role       string                 `msgpack:"role"`
	Student    *domain.StudentDetails `msgpack:"student,omitempty"`
	Alumni     *domain.AlumniDetails  `msgpack:"alumni,omitempty"`
	Admin      *domain.AdminDetails   `msgpack:"admin,omitempty"`
	UpdatedAt  time.Time              `msgpack:"updated_at"`
}

func decodeUser(val []byte, record *userRecord) error {
	return unmarshal(val, record)
}

func fromUser(user User) userRecord {
	p := user.Profile
	record := profileRecord{
		Name:       p.Name,
		Avatar:     p.Avatar,
		Headline:   p.Headline,
		Bio:        p.Bio,
		Skills:     p.Skills,
		Experience: p.Experience,
		Education:  p.Education,
		Role:       string(p.Role()),
		UpdatedAt:  p.UpdatedAt,
	}
	switch d := p.Details.(type) {
	case domain.StudentDetails:
		record.Student = &d
	case domain.AlumniDetails:
		record.Alumni = &d
	case domain.AdminDetails:
		record.Admin = &d
	}
	return userRecord{
		ID:           string(user.ID),
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Roles:        user.Roles,
		Profile:      record,
		Connections:  lo.Map(user.Connections.Sorted(), func(id domain.UserID, _ int) string { return string(id) }),
		CreatedAt:    user.CreatedAt,
	}
}

func toUser(record userRecord) User {
	id := domain.UserID(record.ID)
	p := record.Profile
	profile := domain.Profile{
		ID:         id,
		Name:       p.Name,
		Email:      record.Email,
		Avatar:     p.Avatar,
		Headline:   p.Headline,
		Bio:        p.Bio,
		Skills:     p.Skills,
		Experience: p.Experience,
		Education:  p.Education,
		CreatedAt:  record.CreatedAt.UTC(),
		UpdatedAt:  p.UpdatedAt.UTC(),
	}
	switch {
	case p.Student != nil:
		profile.Details = *p.Student
	case p.Alumni != nil:
		profile.Details = *p.Alumni
	case p.Admin != nil:
		profile.Details = *p.Admin
	}
	return User{
		ID:           id,
		Email:        record.Email,
		PasswordHash: record.PasswordHash,
		Roles:        record.Roles,
		Profile:      profile,
		Connections: domain.NewConnections(lo.Map(record.Connections, func(s string, _ int) domain.UserID {
			return domain.UserID(s)
		})...),
		CreatedAt: record.CreatedAt.UTC(),
	}
}
