package mocks

import (
	"context"

	"bitslow-market/internal/domain/dto"
	"bitslow-market/internal/domain/models"
	"bitslow-market/internal/lib/bitslow"

	"github.com/stretchr/testify/mock"
)

type LedgerRepositoryMock struct {
	mock.Mock
}

func (m *LedgerRepositoryMock) GetClientByID(ctx context.Context, clientID int64) (models.Client, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).(models.Client), args.Error(1)
}

func (m *LedgerRepositoryMock) GetClientByEmail(ctx context.Context, email string) (models.Client, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(models.Client), args.Error(1)
}

func (m *LedgerRepositoryMock) ListClients(ctx context.Context) ([]dto.ClientData, error) {
	args := m.Called(ctx)
	return args.Get(0).([]dto.ClientData), args.Error(1)
}

func (m *LedgerRepositoryMock) MintCoin(ctx context.Context, ownerID int64, triple bitslow.Triple, value float64) (int64, error) {
	args := m.Called(ctx, ownerID, triple, value)
	return args.Get(0).(int64), args.Error(1)
}

func (m *LedgerRepositoryMock) TransferCoin(ctx context.Context, coinID, buyerID int64) (models.Transaction, error) {
	args := m.Called(ctx, coinID, buyerID)
	return args.Get(0).(models.Transaction), args.Error(1)
}

func (m *LedgerRepositoryMock) ListTransactions(ctx context.Context) ([]dto.TransactionView, error) {
	args := m.Called(ctx)
	return args.Get(0).([]dto.TransactionView), args.Error(1)
}

func (m *LedgerRepositoryMock) FilterTransactions(ctx context.Context, filter dto.FilterRequest) ([]dto.TransactionView, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]dto.TransactionView), args.Error(1)
}

func (m *LedgerRepositoryMock) ClientTransactions(ctx context.Context, clientID int64) ([]dto.TransactionView, []dto.TransactionView, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).([]dto.TransactionView), args.Get(1).([]dto.TransactionView), args.Error(2)
}

func (m *LedgerRepositoryMock) BuyersSellers(ctx context.Context) ([]string, []string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Get(1).([]string), args.Error(2)
}

func (m *LedgerRepositoryMock) ListCoins(ctx context.Context) ([]models.Coin, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Coin), args.Error(1)
}

func (m *LedgerRepositoryMock) MarketplaceCoins(ctx context.Context) ([]dto.MarketplaceCoin, error) {
	args := m.Called(ctx)
	return args.Get(0).([]dto.MarketplaceCoin), args.Error(1)
}

func (m *LedgerRepositoryMock) CoinHistory(ctx context.Context, coinID int64) ([]string, error) {
	args := m.Called(ctx, coinID)
	return args.Get(0).([]string), args.Error(1)
}

func (m *LedgerRepositoryMock) UsedTriples(ctx context.Context) (map[string]struct{}, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[string]struct{}), args.Error(1)
}

func (m *LedgerRepositoryMock) ClientStats(ctx context.Context, clientID int64) (dto.ClientStats, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).(dto.ClientStats), args.Error(1)
}
