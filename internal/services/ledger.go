package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bitslow-market/internal/domain/dto"
	"bitslow-market/internal/domain/models"
	"bitslow-market/internal/lib/bitslow"
	"bitslow-market/internal/repository"
)

var ErrInvalidTriple = errors.New("bit components must be distinct integers in [1,10]")

type LedgerRepository interface {
	GetClientByID(ctx context.Context, clientID int64) (models.Client, error)
	GetClientByEmail(ctx context.Context, email string) (models.Client, error)
	ListClients(ctx context.Context) ([]dto.ClientData, error)
	MintCoin(ctx context.Context, ownerID int64, triple bitslow.Triple, value float64) (int64, error)
	TransferCoin(ctx context.Context, coinID, buyerID int64) (models.Transaction, error)
	ListTransactions(ctx context.Context) ([]dto.TransactionView, error)
	FilterTransactions(ctx context.Context, filter dto.FilterRequest) ([]dto.TransactionView, error)
	ClientTransactions(ctx context.Context, clientID int64) (made, bought []dto.TransactionView, err error)
	BuyersSellers(ctx context.Context) (buyers, sellers []string, err error)
	ListCoins(ctx context.Context) ([]models.Coin, error)
	MarketplaceCoins(ctx context.Context) ([]dto.MarketplaceCoin, error)
	CoinHistory(ctx context.Context, coinID int64) ([]string, error)
	UsedTriples(ctx context.Context) (map[string]struct{}, error)
	ClientStats(ctx context.Context, clientID int64) (dto.ClientStats, error)
}

// LedgerService owns coin custody: minting, transfers and every read
// over the transaction history.
type LedgerService struct {
	log    *slog.Logger
	ledger LedgerRepository
}

func NewLedgerService(log *slog.Logger, ledger LedgerRepository) *LedgerService {
	return &LedgerService{
		log:    log,
		ledger: ledger,
	}
}

func (s *LedgerService) Transactions(ctx context.Context) ([]dto.TransactionView, error) {
	const op = "services.LedgerService.Transactions"

	views, err := s.ledger.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return enhance(views), nil
}

func (s *LedgerService) Filtered(ctx context.Context, filter dto.FilterRequest) ([]dto.TransactionView, error) {
	const op = "services.LedgerService.Filtered"

	views, err := s.ledger.FilterTransactions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return enhance(views), nil
}

func (s *LedgerService) ClientInfo(ctx context.Context, clientID int64) (dto.ClientInfoResponse, error) {
	const op = "services.LedgerService.ClientInfo"

	client, err := s.ledger.GetClientByID(ctx, clientID)
	if err != nil {
		return dto.ClientInfoResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	made, bought, err := s.ledger.ClientTransactions(ctx, clientID)
	if err != nil {
		return dto.ClientInfoResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	stats, err := s.ledger.ClientStats(ctx, clientID)
	if err != nil {
		return dto.ClientInfoResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	return dto.ClientInfoResponse{
		Client:               dto.ClientName{Name: client.Name},
		TransactionsMadeBy:   enhance(made),
		TransactionsBuyed:    enhance(bought),
		TotalBitSlowCurrency: stats.CoinsOwnedNow,
		TotalMonetaryValue:   stats.TotalOwnedValue,
		Stats:                stats,
	}, nil
}

func (s *LedgerService) BuyersSellers(ctx context.Context) (buyers, sellers []string, err error) {
	const op = "services.LedgerService.BuyersSellers"

	buyers, sellers, err = s.ledger.BuyersSellers(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	return buyers, sellers, nil
}

func (s *LedgerService) Marketplace(ctx context.Context) ([]dto.MarketplaceCoin, error) {
	const op = "services.LedgerService.Marketplace"

	coins, err := s.ledger.MarketplaceCoins(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for i := range coins {
		coins[i].Hash = bitslow.ComputeHash(coins[i].Bit1, coins[i].Bit2, coins[i].Bit3)
	}

	return coins, nil
}

func (s *LedgerService) History(ctx context.Context, coinID int64) ([]string, error) {
	const op = "services.LedgerService.History"

	names, err := s.ledger.CoinHistory(ctx, coinID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return names, nil
}

// Buy transfers coinID to the authenticated client. The conflict cases
// (unknown coin, buyer already holding the coin) come back as typed
// failures from the atomic transfer.
func (s *LedgerService) Buy(ctx context.Context, coinID int64, buyerEmail string) (string, models.Transaction, error) {
	const op = "services.LedgerService.Buy"

	log := s.log.With(
		slog.String("op", op),
		slog.Int64("coin_id", coinID),
		slog.String("buyer", buyerEmail),
	)

	buyer, err := s.ledger.GetClientByEmail(ctx, buyerEmail)
	if err != nil {
		return "", models.Transaction{}, fmt.Errorf("%s: %w", op, err)
	}

	transaction, err := s.ledger.TransferCoin(ctx, coinID, buyer.ID)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyOwner) || errors.Is(err, repository.ErrCoinNotFound) {
			log.Info("transfer rejected", slog.String("reason", err.Error()))
		} else {
			log.Error("transfer failed", slog.String("error", err.Error()))
		}
		return "", models.Transaction{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("coin transferred", slog.Int64("transaction_id", transaction.ID))

	return buyer.Name, transaction, nil
}

// FindBits picks a bit triple no existing coin uses.
func (s *LedgerService) FindBits(ctx context.Context) (bitslow.Triple, error) {
	const op = "services.LedgerService.FindBits"

	used, err := s.ledger.UsedTriples(ctx)
	if err != nil {
		return bitslow.Triple{}, fmt.Errorf("%s: %w", op, err)
	}

	triple, err := bitslow.PickUnusedTriple(used)
	if err != nil {
		if errors.Is(err, bitslow.ErrSpaceExhausted) {
			s.log.Info("bit combination space exhausted", slog.String("op", op))
		}
		return bitslow.Triple{}, fmt.Errorf("%s: %w", op, err)
	}

	return triple, nil
}

// Mint creates a coin owned by the authenticated client. The duplicate
// check lives in the storage constraint; a losing racer gets
// ErrDuplicateTriple, never a silent retry with another triple.
func (s *LedgerService) Mint(ctx context.Context, ownerEmail string, triple bitslow.Triple, value float64) (int64, error) {
	const op = "services.LedgerService.Mint"

	log := s.log.With(
		slog.String("op", op),
		slog.String("owner", ownerEmail),
		slog.String("triple", triple.Key()),
	)

	if !triple.Valid() || value <= 0 {
		return 0, fmt.Errorf("%s: %w", op, ErrInvalidTriple)
	}

	owner, err := s.ledger.GetClientByEmail(ctx, ownerEmail)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	coinID, err := s.ledger.MintCoin(ctx, owner.ID, triple, value)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateTriple) {
			log.Info("duplicate bit combination")
		} else {
			log.Error("mint failed", slog.String("error", err.Error()))
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("coin minted", slog.Int64("coin_id", coinID))

	return coinID, nil
}

func (s *LedgerService) Clients(ctx context.Context) ([]dto.ClientData, error) {
	const op = "services.LedgerService.Clients"

	clients, err := s.ledger.ListClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return clients, nil
}

func (s *LedgerService) Coins(ctx context.Context) ([]models.Coin, error) {
	const op = "services.LedgerService.Coins"

	coins, err := s.ledger.ListCoins(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return coins, nil
}

func enhance(views []dto.TransactionView) []dto.TransactionView {
	for i := range views {
		views[i].ComputedBitSlow = bitslow.ComputeHash(views[i].Bit1, views[i].Bit2, views[i].Bit3)
	}
	return views
}
