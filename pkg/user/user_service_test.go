package user

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/internal/testutil"
	"Foodgram-Backend/pkg/jwt"
	"Foodgram-Backend/pkg/subscription"
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"
)

func newService(t *testing.T) (UserService, *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t)
	s := NewUserService(
		NewUserRepository(db),
		subscription.NewSubscriptionRepository(db),
		jwt.NewJWTService(),
	)
	return s, db
}

func register(t *testing.T, s UserService, email, username string) domain.RegisterResponse {
	t.Helper()
	res, err := s.Register(context.Background(), domain.RegisterRequest{
		Email:     email,
		Username:  username,
		FirstName: "Test",
		LastName:  "User",
		Password:  "secret123",
	})
	if err != nil {
		t.Fatalf("Register %s failed: %v", username, err)
	}
	return res
}

func TestRegisterAndLogin(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()

	res := register(t, s, "alice@example.com", "alice")
	if res.ID == "" {
		t.Fatal("expected a generated user id")
	}

	login, err := s.Login(ctx, domain.LoginRequest{
		Email:    "alice@example.com",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if login.Token == "" {
		t.Fatal("expected a token")
	}
	if login.Role != domain.RoleUser {
		t.Fatalf("expected role %q, got %q", domain.RoleUser, login.Role)
	}
}

func TestRegisterConflicts(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()

	register(t, s, "alice@example.com", "alice")

	_, err := s.Register(ctx, domain.RegisterRequest{
		Email: "alice@example.com", Username: "alice2",
		FirstName: "A", LastName: "B", Password: "secret123",
	})
	if !errors.Is(err, domain.ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}

	_, err = s.Register(ctx, domain.RegisterRequest{
		Email: "alice2@example.com", Username: "alice",
		FirstName: "A", LastName: "B", Password: "secret123",
	})
	if !errors.Is(err, domain.ErrUsernameAlreadyExists) {
		t.Fatalf("expected ErrUsernameAlreadyExists, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	s, _ := newService(t)

	register(t, s, "alice@example.com", "alice")

	_, err := s.Login(context.Background(), domain.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrongpass",
	})
	if !errors.Is(err, domain.ErrCredentialsInvalid) {
		t.Fatalf("expected ErrCredentialsInvalid, got %v", err)
	}
}

func TestMe(t *testing.T) {
	s, _ := newService(t)

	res := register(t, s, "alice@example.com", "alice")

	me, err := s.Me(context.Background(), res.ID)
	if err != nil {
		t.Fatalf("Me failed: %v", err)
	}
	if me.ID != res.ID || me.Username != "alice" {
		t.Fatalf("unexpected me projection: %+v", me)
	}
	if me.IsSubscribed {
		t.Fatal("is_subscribed must be false for the viewer themselves")
	}
}

func TestSetPassword(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()

	res := register(t, s, "alice@example.com", "alice")

	err := s.SetPassword(ctx, res.ID, domain.SetPasswordRequest{
		CurrentPassword: "nope",
		NewPassword:     "newsecret123",
	})
	if !errors.Is(err, domain.ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}

	if err := s.SetPassword(ctx, res.ID, domain.SetPasswordRequest{
		CurrentPassword: "secret123",
		NewPassword:     "newsecret123",
	}); err != nil {
		t.Fatalf("SetPassword failed: %v", err)
	}

	if _, err := s.Login(ctx, domain.LoginRequest{
		Email: "alice@example.com", Password: "secret123",
	}); !errors.Is(err, domain.ErrCredentialsInvalid) {
		t.Fatalf("old password must stop working, got %v", err)
	}
	if _, err := s.Login(ctx, domain.LoginRequest{
		Email: "alice@example.com", Password: "newsecret123",
	}); err != nil {
		t.Fatalf("new password must work: %v", err)
	}
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	s, _ := newService(t)

	err := s.ForgotPassword(context.Background(), domain.ForgotPasswordRequest{
		Email: "missing@example.com",
	})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestResetPassword(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()

	res := register(t, s, "alice@example.com", "alice")

	// The flow is driven by the token; mail delivery is out of band.
	jwtService := jwt.NewJWTService()
	token, err := jwtService.GenerateTokenForgetPassword(
		map[string]any{"user_id": res.ID}, time.Minute,
	)
	if err != nil {
		t.Fatalf("GenerateTokenForgetPassword failed: %v", err)
	}

	if err := s.ResetPassword(ctx, domain.ResetPasswordRequest{
		Token:       token,
		NewPassword: "resetsecret1",
	}); err != nil {
		t.Fatalf("ResetPassword failed: %v", err)
	}

	if _, err := s.Login(ctx, domain.LoginRequest{
		Email: "alice@example.com", Password: "secret123",
	}); !errors.Is(err, domain.ErrCredentialsInvalid) {
		t.Fatalf("old password must stop working, got %v", err)
	}
	if _, err := s.Login(ctx, domain.LoginRequest{
		Email: "alice@example.com", Password: "resetsecret1",
	}); err != nil {
		t.Fatalf("new password must work: %v", err)
	}
}

func TestResetPasswordBadTokens(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()

	res := register(t, s, "alice@example.com", "alice")
	jwtService := jwt.NewJWTService()

	if err := s.ResetPassword(ctx, domain.ResetPasswordRequest{
		Token:       "not-a-token",
		NewPassword: "whatever123",
	}); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}

	expired, err := jwtService.GenerateTokenForgetPassword(
		map[string]any{"user_id": res.ID}, -time.Minute,
	)
	if err != nil {
		t.Fatalf("GenerateTokenForgetPassword failed: %v", err)
	}
	if err := s.ResetPassword(ctx, domain.ResetPasswordRequest{
		Token:       expired,
		NewPassword: "whatever123",
	}); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}

	missing, err := jwtService.GenerateTokenForgetPassword(
		map[string]any{}, time.Minute,
	)
	if err != nil {
		t.Fatalf("GenerateTokenForgetPassword failed: %v", err)
	}
	if err := s.ResetPassword(ctx, domain.ResetPasswordRequest{
		Token:       missing,
		NewPassword: "whatever123",
	}); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for a token without a user id, got %v", err)
	}
}

func TestGetUserIsSubscribedDependsOnViewer(t *testing.T) {
	s, db := newService(t)
	ctx := context.Background()

	alice := register(t, s, "alice@example.com", "alice")
	bob := register(t, s, "bob@example.com", "bob")

	subscriptionService := subscription.NewSubscriptionService(subscription.NewSubscriptionRepository(db))
	if _, err := subscriptionService.Subscribe(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	asAlice, err := s.GetUser(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if !asAlice.IsSubscribed {
		t.Fatal("alice follows bob, is_subscribed must be true")
	}

	asAnonymous, err := s.GetUser(ctx, bob.ID, "")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if asAnonymous.IsSubscribed {
		t.Fatal("anonymous viewer must see is_subscribed false")
	}
}
