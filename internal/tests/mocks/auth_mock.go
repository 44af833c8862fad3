package mocks

import (
	"context"

	"bitslow-market/internal/domain/models"

	"github.com/stretchr/testify/mock"
)

type AuthRepositoryMock struct {
	mock.Mock
}

func (m *AuthRepositoryMock) SaveClient(ctx context.Context, name, email string, passHash []byte, phone, address string) (int64, error) {
	args := m.Called(ctx, name, email, passHash, phone, address)
	return args.Get(0).(int64), args.Error(1)
}

func (m *AuthRepositoryMock) GetClientByEmail(ctx context.Context, email string) (models.Client, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(models.Client), args.Error(1)
}
