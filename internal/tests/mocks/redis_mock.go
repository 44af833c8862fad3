package mocks

import "github.com/stretchr/testify/mock"

type RefreshTokenStoreMock struct {
	mock.Mock
}

func (m *RefreshTokenStoreMock) StoreRefreshToken(clientID, refreshToken string) error {
	args := m.Called(clientID, refreshToken)
	return args.Error(0)
}
