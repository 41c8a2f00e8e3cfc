package auth

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/iterator"
)

// ErrUserNotFound is returned by a UserSource for an unknown username.
var ErrUserNotFound = errors.New("user not found")

// User is an operator account as stored in Firestore.
type User struct {
	Username     string   `firestore:"username"`
	PasswordHash string   `firestore:"passwordHash"`
	Roles        []string `firestore:"roles"`
}

// UserSource looks up operator accounts.
type UserSource interface {
	FindUser(ctx context.Context, username string) (User, error)
}

// StaticAccount is an operator account from configuration. Password is hashed on
// load when PasswordHash is empty.
type StaticAccount struct {
	Username     string
	Password     string
	PasswordHash string
	Roles        []string
}

// StaticUsers serves accounts held in memory.
type StaticUsers map[string]User

func NewStaticUsers(accounts []StaticAccount) (StaticUsers, error) {
	users := StaticUsers{}
	for _, a := range accounts {
		if a.Username == "" {
			return nil, errors.New("account without username")
		}
		hash := a.PasswordHash
		if hash == "" {
			if a.Password == "" {
				return nil, fmt.Errorf("account %s has no password", a.Username)
			}
			b, err := bcrypt.GenerateFromPassword([]byte(a.Password), bcrypt.DefaultCost)
			if err != nil {
				return nil, fmt.Errorf("failed to hash password for %s: %w", a.Username, err)
			}
			hash = string(b)
		}
		users[a.Username] = User{Username: a.Username, PasswordHash: hash, Roles: a.Roles}
	}
	return users, nil
}

func (u StaticUsers) FindUser(ctx context.Context, username string) (User, error) {
	user, ok := u[username]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

// FirestoreUsers reads accounts from the "users" collection.
type FirestoreUsers struct {
	db *firestore.Client
}

func NewFirestoreUsers(db *firestore.Client) *FirestoreUsers {
	return &FirestoreUsers{db: db}
}

func (f *FirestoreUsers) FindUser(ctx context.Context, username string) (User, error) {
	query := f.db.Collection("users").Where("username", "==", username).Limit(1).Documents(ctx)
	defer query.Stop()

	doc, err := query.Next()
	if err == iterator.Done {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}

	var user User
	if err := doc.DataTo(&user); err != nil {
		return User{}, fmt.Errorf("failed to decode user: %w", err)
	}
	return user, nil
}
