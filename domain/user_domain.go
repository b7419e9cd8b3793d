package domain

import (
	"errors"
)

var (
	MessageSuccessRegister    = "user registered successfully"
	MessageSuccessLogin       = "login success"
	MessageSuccessGetMe       = "success get current user"
	MessageSuccessGetUser     = "success get user"
	MessageSuccessGetUsers    = "success get users"
	MessageSuccessSetPassword = "password updated successfully"
	MessageSuccessForgot      = "password reset mail sent"
	MessageSuccessReset       = "password reset successfully"

	MessageFailedRegister    = "failed to register user"
	MessageFailedLogin       = "failed to login"
	MessageFailedGetMe       = "failed to get current user"
	MessageFailedGetUser     = "failed to get user"
	MessageFailedGetUsers    = "failed to get users"
	MessageFailedSetPassword = "failed to update password"
	MessageFailedForgot      = "failed to request password reset"
	MessageFailedReset       = "failed to reset password"

	ErrUserNotFound          = errors.New("user not found")
	ErrEmailAlreadyExists    = errors.New("email already registered")
	ErrUsernameAlreadyExists = errors.New("username already taken")
	ErrCredentialsInvalid    = errors.New("invalid email or password")
	ErrPasswordMismatch      = errors.New("current password does not match")
)

type (
	RegisterRequest struct {
		Email     string `json:"email" validate:"required,email,max=255"`
		Username  string `json:"username" validate:"required,max=150"`
		FirstName string `json:"first_name" validate:"required,max=255"`
		LastName  string `json:"last_name" validate:"required,max=255"`
		Password  string `json:"password" validate:"required,min=8,max=150"`
	}

	RegisterResponse struct {
		ID        string `json:"id"`
		Email     string `json:"email"`
		Username  string `json:"username"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}

	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}

	UserResponse struct {
		ID           string `json:"id"`
		Email        string `json:"email"`
		Username     string `json:"username"`
		FirstName    string `json:"first_name"`
		LastName     string `json:"last_name"`
		IsSubscribed bool   `json:"is_subscribed"`
	}

	SetPasswordRequest struct {
		CurrentPassword string `json:"current_password" validate:"required"`
		NewPassword     string `json:"new_password" validate:"required,min=8,max=150"`
	}

	ForgotPasswordRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	ResetPasswordRequest struct {
		Token       string `json:"token" validate:"required"`
		NewPassword string `json:"new_password" validate:"required,min=8,max=150"`
	}
)
