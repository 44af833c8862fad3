package unit

import (
	"context"
	"testing"

	"log/slog"

	"bitslow-market/internal/domain/dto"
	"bitslow-market/internal/domain/models"
	"bitslow-market/internal/lib/bitslow"
	"bitslow-market/internal/repository"
	"bitslow-market/internal/services"
	"bitslow-market/internal/tests/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLedgerService(repo *mocks.LedgerRepositoryMock) *services.LedgerService {
	return services.NewLedgerService(slog.Default(), repo)
}

func allTriples() map[string]struct{} {
	used := make(map[string]struct{})
	for b1 := bitslow.BitMin; b1 <= bitslow.BitMax; b1++ {
		for b2 := bitslow.BitMin; b2 <= bitslow.BitMax; b2++ {
			for b3 := bitslow.BitMin; b3 <= bitslow.BitMax; b3++ {
				t := bitslow.Triple{Bit1: b1, Bit2: b2, Bit3: b3}
				if t.Valid() {
					used[t.Key()] = struct{}{}
				}
			}
		}
	}
	return used
}

func TestLedgerService_Mint_RejectsInvalidTripleWithoutTouchingStorage(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := new(mocks.LedgerRepositoryMock)
	service := newLedgerService(repo)

	cases := []struct {
		name   string
		triple bitslow.Triple
		value  float64
	}{
		{"component out of range", bitslow.Triple{Bit1: 0, Bit2: 2, Bit3: 3}, 10},
		{"component above max", bitslow.Triple{Bit1: 1, Bit2: 2, Bit3: 11}, 10},
		{"repeated component", bitslow.Triple{Bit1: 4, Bit2: 4, Bit3: 5}, 10},
		{"non-positive value", bitslow.Triple{Bit1: 1, Bit2: 2, Bit3: 3}, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			_, err := service.Mint(ctx, "alice@example.com", tc.triple, tc.value)

			// Assert
			assert.ErrorIs(t, err, services.ErrInvalidTriple)
		})
	}

	repo.AssertExpectations(t)
}

func TestLedgerService_Mint_PropagatesDuplicateTriple(t *testing.T) {
	// Arrange
	ctx := context.Background()
	triple := bitslow.Triple{Bit1: 1, Bit2: 2, Bit3: 3}

	repo := new(mocks.LedgerRepositoryMock)
	service := newLedgerService(repo)

	repo.On("GetClientByEmail", ctx, "alice@example.com").
		Return(models.Client{ID: 1, Email: "alice@example.com"}, nil).Once()
	repo.On("MintCoin", ctx, int64(1), triple, 50.0).
		Return(int64(0), repository.ErrDuplicateTriple).Once()

	// Act
	_, err := service.Mint(ctx, "alice@example.com", triple, 50.0)

	// Assert
	assert.ErrorIs(t, err, repository.ErrDuplicateTriple)
	repo.AssertExpectations(t)
}

func TestLedgerService_Mint_ReturnsCoinID(t *testing.T) {
	// Arrange
	ctx := context.Background()
	triple := bitslow.Triple{Bit1: 7, Bit2: 2, Bit3: 9}

	repo := new(mocks.LedgerRepositoryMock)
	service := newLedgerService(repo)

	repo.On("GetClientByEmail", ctx, "alice@example.com").
		Return(models.Client{ID: 1, Email: "alice@example.com"}, nil).Once()
	repo.On("MintCoin", ctx, int64(1), triple, 120.5).
		Return(int64(42), nil).Once()

	// Act
	coinID, err := service.Mint(ctx, "alice@example.com", triple, 120.5)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(42), coinID)
	repo.AssertExpectations(t)
}

func TestLedgerService_Buy_ReturnsBuyerNameAndTransaction(t *testing.T) {
	// Arrange
	ctx := context.Background()
	sellerID := int64(1)

	repo := new(mocks.LedgerRepositoryMock)
	service := newLedgerService(repo)

	repo.On("GetClientByEmail", ctx, "bob@example.com").
		Return(models.Client{ID: 2, Name: "Bob", Email: "bob@example.com"}, nil).Once()
	repo.On("TransferCoin", ctx, int64(5), int64(2)).
		Return(models.Transaction{ID: 9, CoinID: 5, SellerID: &sellerID, BuyerID: 2, Amount: 75}, nil).Once()

	// Act
	name, transaction, err := service.Buy(ctx, 5, "bob@example.com")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Bob", name)
	assert.Equal(t, int64(9), transaction.ID)
	assert.Equal(t, int64(2), transaction.BuyerID)
	repo.AssertExpectations(t)
}

func TestLedgerService_Buy_PropagatesAlreadyOwner(t *testing.T) {
	// Arrange
	ctx := context.Background()

	repo := new(mocks.LedgerRepositoryMock)
	service := newLedgerService(repo)

	repo.On("GetClientByEmail", ctx, "bob@example.com").
		Return(models.Client{ID: 2, Name: "Bob"}, nil).Once()
	repo.On("TransferCoin", ctx, int64(5), int64(2)).
		Return(models.Transaction{}, repository.ErrAlreadyOwner).Once()

	// Act
	_, _, err := service.Buy(ctx, 5, "bob@example.com")

	// Assert
	assert.ErrorIs(t, err, repository.ErrAlreadyOwner)
	repo.AssertExpectations(t)
}

func TestLedgerService_Buy_PropagatesUnknownCoin(t *testing.T) {
	// Arrange
	ctx := context.Background()

	repo := new(mocks.LedgerRepositoryMock)
	service := newLedgerService(repo)

	repo.On("GetClientByEmail", ctx, "bob@example.com").
		Return(models.Client{ID: 2, Name: "Bob"}, nil).Once()
	repo.On("TransferCoin", ctx, int64(404), int64(2)).
		Return(models.Transaction{}, repository.ErrCoinNotFound).Once()

	// Act
	_, _, err := service.Buy(ctx, 404, "bob@example.com")

	// Assert
	assert.ErrorIs(t, err, repository.ErrCoinNotFound)
	repo.AssertExpectations(t)
}

func TestLedgerService_FindBits_ReturnsTheOnlyRemainingTriple(t *testing.T) {
	// Arrange
	ctx := context.Background()
	remaining := bitslow.Triple{Bit1: 10, Bit2: 9, Bit3: 8}

	used := allTriples()
	delete(used, remaining.Key())

	repo := new(mocks.LedgerRepositoryMock)
	service := newLedgerService(repo)

	repo.On("UsedTriples", ctx).Return(used, nil).Once()

	// Act
	triple, err := service.FindBits(ctx)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, remaining, triple)
	repo.AssertExpectations(t)
}

func TestLedgerService_FindBits_ReportsExhaustionWhenEveryTripleIsUsed(t *testing.T) {
	// Arrange
	ctx := context.Background()

	repo := new(mocks.LedgerRepositoryMock)
	service := newLedgerService(repo)

	repo.On("UsedTriples", ctx).Return(allTriples(), nil).Once()

	// Act
	_, err := service.FindBits(ctx)

	// Assert
	assert.ErrorIs(t, err, bitslow.ErrSpaceExhausted)
	repo.AssertExpectations(t)
}

func TestLedgerService_Marketplace_RendersCoinIdentities(t *testing.T) {
	// Arrange
	ctx := context.Background()
	ownerID := int64(1)
	ownerName := "Alice"

	repo := new(mocks.LedgerRepositoryMock)
	service := newLedgerService(repo)

	repo.On("MarketplaceCoins", ctx).Return([]dto.MarketplaceCoin{
		{CoinID: 1, OwnerID: &ownerID, Owner: &ownerName, Bit1: 1, Bit2: 2, Bit3: 3, Value: 10},
		{CoinID: 2, Bit1: 4, Bit2: 5, Bit3: 6, Value: 20},
	}, nil).Once()

	// Act
	coins, err := service.Marketplace(ctx)

	// Assert
	require.NoError(t, err)
	require.Len(t, coins, 2)
	assert.Equal(t, bitslow.ComputeHash(1, 2, 3), coins[0].Hash)
	assert.Equal(t, bitslow.ComputeHash(4, 5, 6), coins[1].Hash)
	assert.Nil(t, coins[1].OwnerID)
	repo.AssertExpectations(t)
}

func TestLedgerService_Transactions_AddsComputedBitSlow(t *testing.T) {
	// Arrange
	ctx := context.Background()

	repo := new(mocks.LedgerRepositoryMock)
	service := newLedgerService(repo)

	repo.On("ListTransactions", ctx).Return([]dto.TransactionView{
		{ID: 1, CoinID: 1, Bit1: 3, Bit2: 1, Bit3: 2, Value: 10},
	}, nil).Once()

	// Act
	views, err := service.Transactions(ctx)

	// Assert
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, bitslow.ComputeHash(3, 1, 2), views[0].ComputedBitSlow)
	repo.AssertExpectations(t)
}

func TestLedgerService_ClientInfo_AggregatesHistoryAndStats(t *testing.T) {
	// Arrange
	ctx := context.Background()
	clientID := int64(4)

	repo := new(mocks.LedgerRepositoryMock)
	service := newLedgerService(repo)

	repo.On("GetClientByID", ctx, clientID).
		Return(models.Client{ID: clientID, Name: "Dave"}, nil).Once()
	repo.On("ClientTransactions", ctx, clientID).
		Return([]dto.TransactionView{{ID: 2, Bit1: 1, Bit2: 2, Bit3: 3}},
			[]dto.TransactionView{{ID: 1, Bit1: 4, Bit2: 5, Bit3: 6}}, nil).Once()
	repo.On("ClientStats", ctx, clientID).
		Return(dto.ClientStats{CoinsMinted: 1, CoinsOwnedNow: 2, SentTransactions: 1,
			ReceivedTransactions: 3, TotalOwnedValue: 175.5}, nil).Once()

	// Act
	info, err := service.ClientInfo(ctx, clientID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Dave", info.Client.Name)
	require.Len(t, info.TransactionsMadeBy, 1)
	require.Len(t, info.TransactionsBuyed, 1)
	assert.Equal(t, bitslow.ComputeHash(1, 2, 3), info.TransactionsMadeBy[0].ComputedBitSlow)
	assert.Equal(t, 2, info.TotalBitSlowCurrency)
	assert.Equal(t, 175.5, info.TotalMonetaryValue)
	assert.Equal(t, 3, info.Stats.ReceivedTransactions)
	repo.AssertExpectations(t)
}

func TestLedgerService_ClientInfo_PropagatesUnknownClient(t *testing.T) {
	// Arrange
	ctx := context.Background()

	repo := new(mocks.LedgerRepositoryMock)
	service := newLedgerService(repo)

	repo.On("GetClientByID", ctx, int64(99)).
		Return(models.Client{}, repository.ErrClientNotFound).Once()

	// Act
	_, err := service.ClientInfo(ctx, 99)

	// Assert
	assert.ErrorIs(t, err, repository.ErrClientNotFound)
	repo.AssertExpectations(t)
}
