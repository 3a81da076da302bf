package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"kinship/apperrors"
	"kinship/auth"
	"kinship/database"
	"kinship/models"
)

type sentEvent struct {
	userID int64
	event  string
	data   any
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []sentEvent
}

func (n *recordingNotifier) NotifyUser(userID int64, event string, data any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, sentEvent{userID: userID, event: event, data: data})
}

func (n *recordingNotifier) snapshot() []sentEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentEvent(nil), n.events...)
}

type testEnv struct {
	store    *database.Store
	issuer   *auth.TokenIssuer
	notifier *recordingNotifier
	auth     *AuthService
	friends  *FriendService
	users    *UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := database.Open(context.Background(), database.DialectSQLite,
		database.SQLiteDSN(filepath.Join(t.TempDir(), "kinship.db")))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	issuer, err := auth.NewTokenIssuer(auth.TokenConfig{
		AccessSecret:         "access-secret",
		RefreshSecret:        "refresh-secret",
		AccessTokenDuration:  time.Hour,
		RefreshTokenDuration: 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}

	notifier := &recordingNotifier{}
	return &testEnv{
		store:    store,
		issuer:   issuer,
		notifier: notifier,
		auth:     NewAuthService(store, auth.NewPasswordHasher(bcrypt.MinCost), issuer),
		friends:  NewFriendService(store, notifier),
		users:    NewUserService(store),
	}
}

func (e *testEnv) register(t *testing.T, first, last, email string) models.User {
	t.Helper()
	ctx := context.Background()
	_, err := e.auth.Register(ctx, RegisterInput{
		FirstName: first,
		LastName:  last,
		Email:     email,
		Age:       25,
		Password:  "secret123",
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	user, err := e.store.GetUserByEmail(ctx, email)
	if err != nil {
		t.Fatalf("load %s: %v", email, err)
	}
	return user
}

func assertCode(t *testing.T, err error, want apperrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	if got := apperrors.CodeOf(err); got != want {
		t.Fatalf("error code = %s, want %s (err: %v)", got, want, err)
	}
}
