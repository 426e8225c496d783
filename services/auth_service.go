package services

import (
	"fmt"
	"time"

	"krishi-mitra/auth"
	"krishi-mitra/errors"
	"krishi-mitra/repositories"
)

type IAuthService interface {
	Register(username, email, password string) (AuthPayload, error)
	Login(email, password string) (AuthPayload, error)
	Profile(userID string) (repositories.User, error)
}

// AuthPayload is what a successful register or login hands back to the
// client: the account identity plus a fresh session token.
type AuthPayload struct {
	UserID   string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Token    string `json:"token"`
}

type AuthService struct {
	userRepository repositories.IUserRepository
	tokenDuration  time.Duration
}

func NewAuthService(repo repositories.IUserRepository, tokenDuration time.Duration) IAuthService {
	return &AuthService{userRepository: repo, tokenDuration: tokenDuration}
}

func (s *AuthService) Register(username, email, password string) (AuthPayload, error) {
	valReq := auth.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	}

	// 1. Validate business rules (email format, password complexity)
	// before any expensive cryptographic operation. The error comes back
	// as-is: field failures stay validator.ValidationErrors and only the
	// complexity check carries ErrInvalidPassword.
	if err := auth.ValidateRegister(valReq); err != nil {
		return AuthPayload{}, err
	}

	// 2. Hash the password using Argon2id. Done in the service layer to keep
	// the repository unaware of plain passwords.
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return AuthPayload{}, fmt.Errorf("hashing failed: %w", err)
	}

	// 3. Persist the user with the generated hash.
	userID, err := s.userRepository.CreateUser(username, email, hashedPassword)
	if err != nil {
		return AuthPayload{}, err // Will propagate ErrUserAlreadyExists if email is taken
	}

	// 4. Generate the initial session token.
	token, err := auth.GenerateToken(userID, []string{"user"}, s.tokenDuration)
	if err != nil {
		return AuthPayload{}, errors.ErrTokenGeneration
	}

	return AuthPayload{UserID: userID, Username: username, Email: email, Token: token}, nil
}

func (s *AuthService) Login(email, password string) (AuthPayload, error) {
	// Generic error on every failure path to prevent user enumeration.
	user, err := s.userRepository.GetUserByEmail(email)
	if err != nil {
		return AuthPayload{}, errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return AuthPayload{}, errors.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, user.Roles, s.tokenDuration)
	if err != nil {
		return AuthPayload{}, errors.ErrTokenGeneration
	}

	return AuthPayload{UserID: user.ID, Username: user.Username, Email: user.Email, Token: token}, nil
}

func (s *AuthService) Profile(userID string) (repositories.User, error) {
	user, err := s.userRepository.GetUserByID(userID)
	if err != nil {
		return repositories.User{}, errors.ErrUnauthorized
	}
	return user, nil
}
