package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"bitslow-market/internal/domain/dto"
	"bitslow-market/internal/domain/models"
	"bitslow-market/internal/lib/jwt"
	"bitslow-market/internal/middlewares"
	"bitslow-market/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials        = errors.New("invalid credentials")
	ErrEmailTaken                = errors.New("email already registered")
	ErrFailedToGenerateTokens    = errors.New("failed to generate tokens")
	ErrFailedToStoreRefreshToken = errors.New("failed to store refresh token")
)

type AuthRepository interface {
	SaveClient(ctx context.Context, name, email string, passHash []byte, phone, address string) (int64, error)
	GetClientByEmail(ctx context.Context, email string) (models.Client, error)
}

type RefreshTokenStore interface {
	StoreRefreshToken(clientID, refreshToken string) error
}

type AuthService struct {
	log            *slog.Logger
	authRepository AuthRepository
	tokens         RefreshTokenStore
	jwtGen         *jwt.Generator
}

func NewAuthService(log *slog.Logger, authRepository AuthRepository, tokens RefreshTokenStore,
	jwtGen *jwt.Generator) *AuthService {
	return &AuthService{
		log:            log,
		authRepository: authRepository,
		tokens:         tokens,
		jwtGen:         jwtGen,
	}
}

// Signup registers a new client and returns its profile with a fresh
// token pair.
func (s *AuthService) Signup(ctx context.Context, req dto.SignupRequest) (dto.ClientData, string, string, error) {
	const op = "services.AuthService.Signup"

	log := s.log.With(
		slog.String("op", op),
		slog.String("email", req.Email),
	)

	if err := middlewares.CheckSignup(req.Name, req.Email, req.Password, req.PhoneNumber); err != nil {
		return dto.ClientData{}, "", "", fmt.Errorf("%s: %w", op, err)
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.ClientData{}, "", "", fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.authRepository.SaveClient(ctx, req.Name, req.Email, passHash, req.PhoneNumber, req.Address)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			log.Info("email already registered")
			return dto.ClientData{}, "", "", fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}
		log.Error("failed to save client", slog.String("error", err.Error()))
		return dto.ClientData{}, "", "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("client registered", slog.Int64("client_id", id))

	accessToken, refreshToken, err := s.issueTokens(id, req.Email)
	if err != nil {
		return dto.ClientData{}, "", "", fmt.Errorf("%s: %w", op, err)
	}

	client := dto.ClientData{
		ID:      id,
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.PhoneNumber,
		Address: req.Address,
	}

	return client, accessToken, refreshToken, nil
}

// Login checks the credentials and returns the client profile with a
// fresh token pair. An unknown email and a wrong password surface as
// distinct failures; the endpoint maps them to 404 and 401.
func (s *AuthService) Login(ctx context.Context, email, password string) (dto.ClientData, string, string, error) {
	const op = "services.AuthService.Login"

	log := s.log.With(
		slog.String("op", op),
		slog.String("email", email),
	)

	if err := middlewares.CheckLogin(email, password); err != nil {
		return dto.ClientData{}, "", "", fmt.Errorf("%s: %w", op, err)
	}

	client, err := s.authRepository.GetClientByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrClientNotFound) {
			log.Info("client not found")
			return dto.ClientData{}, "", "", fmt.Errorf("%s: %w", op, repository.ErrClientNotFound)
		}
		log.Error("failed to fetch client", slog.String("error", err.Error()))
		return dto.ClientData{}, "", "", fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(client.Password, []byte(password)); err != nil {
		log.Info("invalid credentials")
		return dto.ClientData{}, "", "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	accessToken, refreshToken, err := s.issueTokens(client.ID, client.Email)
	if err != nil {
		return dto.ClientData{}, "", "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("client logged in", slog.Int64("client_id", client.ID))

	return dto.ClientData{
		ID:      client.ID,
		Name:    client.Name,
		Email:   client.Email,
		Phone:   client.Phone,
		Address: client.Address,
	}, accessToken, refreshToken, nil
}

// Refresh exchanges a valid refresh token for a new access token. On
// verification failure nothing is issued.
func (s *AuthService) Refresh(refreshToken string) (string, error) {
	const op = "services.AuthService.Refresh"

	accessToken, err := s.jwtGen.Refresh(refreshToken)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return accessToken, nil
}

// Profile resolves the token subject to the client's public profile.
func (s *AuthService) Profile(ctx context.Context, email string) (dto.ClientData, error) {
	const op = "services.AuthService.Profile"

	client, err := s.authRepository.GetClientByEmail(ctx, email)
	if err != nil {
		return dto.ClientData{}, fmt.Errorf("%s: %w", op, err)
	}

	return dto.ClientData{
		ID:      client.ID,
		Name:    client.Name,
		Email:   client.Email,
		Phone:   client.Phone,
		Address: client.Address,
	}, nil
}

func (s *AuthService) issueTokens(clientID int64, email string) (string, string, error) {
	accessToken, refreshToken, err := s.jwtGen.GeneratePair(email)
	if err != nil {
		s.log.Error("failed to generate tokens", slog.String("error", err.Error()))
		return "", "", ErrFailedToGenerateTokens
	}

	if err := s.tokens.StoreRefreshToken(strconv.FormatInt(clientID, 10), refreshToken); err != nil {
		s.log.Error("failed to store refresh token", slog.String("error", err.Error()))
		return "", "", ErrFailedToStoreRefreshToken
	}

	return accessToken, refreshToken, nil
}
