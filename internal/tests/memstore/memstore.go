// Package memstore is an in-memory stand-in for the postgres storage,
// used by the integration and e2e tests. It mirrors the repository
// semantics, including the atomicity of mint and transfer.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"bitslow-market/internal/domain/dto"
	"bitslow-market/internal/domain/models"
	"bitslow-market/internal/lib/bitslow"
	"bitslow-market/internal/repository"
)

type Storage struct {
	mu            sync.Mutex
	nextClientID  int64
	nextCoinID    int64
	nextTxID      int64
	clients       map[int64]models.Client
	coins         map[int64]*models.Coin
	transactions  []models.Transaction
	refreshTokens map[string]string
}

func New() *Storage {
	return &Storage{
		clients:       make(map[int64]models.Client),
		coins:         make(map[int64]*models.Coin),
		refreshTokens: make(map[string]string),
	}
}

func (s *Storage) SaveClient(_ context.Context, name, email string, passHash []byte, phone, address string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.clients {
		if c.Email == email {
			return 0, repository.ErrEmailTaken
		}
	}

	s.nextClientID++
	id := s.nextClientID
	s.clients[id] = models.Client{
		ID:        id,
		Name:      name,
		Email:     email,
		Password:  passHash,
		Phone:     phone,
		Address:   address,
		CreatedAt: time.Now(),
	}
	return id, nil
}

func (s *Storage) GetClientByEmail(_ context.Context, email string) (models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.clients {
		if c.Email == email {
			return c, nil
		}
	}
	return models.Client{}, repository.ErrClientNotFound
}

func (s *Storage) GetClientByID(_ context.Context, clientID int64) (models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients[clientID]
	if !ok {
		return models.Client{}, repository.ErrClientNotFound
	}
	return c, nil
}

func (s *Storage) ListClients(_ context.Context) ([]dto.ClientData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, len(s.clients))
	for id := range s.clients {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	clients := make([]dto.ClientData, 0, len(ids))
	for _, id := range ids {
		c := s.clients[id]
		clients = append(clients, dto.ClientData{
			ID:      c.ID,
			Name:    c.Name,
			Email:   c.Email,
			Phone:   c.Phone,
			Address: c.Address,
		})
	}
	return clients, nil
}

func (s *Storage) MintCoin(_ context.Context, ownerID int64, triple bitslow.Triple, value float64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[ownerID]; !ok {
		return 0, repository.ErrClientNotFound
	}
	for _, coin := range s.coins {
		if coin.Bit1 == triple.Bit1 && coin.Bit2 == triple.Bit2 && coin.Bit3 == triple.Bit3 {
			return 0, repository.ErrDuplicateTriple
		}
	}

	s.nextCoinID++
	id := s.nextCoinID
	owner := ownerID
	s.coins[id] = &models.Coin{
		CoinID:  id,
		OwnerID: &owner,
		Bit1:    triple.Bit1,
		Bit2:    triple.Bit2,
		Bit3:    triple.Bit3,
		Value:   value,
	}
	return id, nil
}

func (s *Storage) TransferCoin(_ context.Context, coinID, buyerID int64) (models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	coin, ok := s.coins[coinID]
	if !ok {
		return models.Transaction{}, repository.ErrCoinNotFound
	}
	if coin.OwnerID != nil && *coin.OwnerID == buyerID {
		return models.Transaction{}, repository.ErrAlreadyOwner
	}

	s.nextTxID++
	tx := models.Transaction{
		ID:              s.nextTxID,
		CoinID:          coinID,
		SellerID:        coin.OwnerID,
		BuyerID:         buyerID,
		Amount:          coin.Value,
		TransactionDate: time.Now(),
	}
	s.transactions = append(s.transactions, tx)

	owner := buyerID
	coin.OwnerID = &owner

	return tx, nil
}

func (s *Storage) ListTransactions(_ context.Context) ([]dto.TransactionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	views := s.viewsLocked(func(models.Transaction) bool { return true })
	reverse(views)
	return views, nil
}

func (s *Storage) FilterTransactions(_ context.Context, filter dto.FilterRequest) ([]dto.TransactionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	views := s.viewsLocked(func(models.Transaction) bool { return true })
	reverse(views)

	filtered := views[:0]
	for _, v := range views {
		if after, ok := parseDay(filter.StartDate); ok && v.TransactionDate.Before(after) {
			continue
		}
		if before, ok := parseDay(filter.FinishDate); ok && v.TransactionDate.After(before) {
			continue
		}
		if filter.MinBitSlowValue.Set && v.Value < filter.MinBitSlowValue.Value {
			continue
		}
		if filter.MaxBitSlowValue.Set && v.Value > filter.MaxBitSlowValue.Value {
			continue
		}
		if filter.BuyerName != "" && !contains(v.BuyerName, filter.BuyerName) {
			continue
		}
		if filter.SellerName != "" && (v.SellerName == nil || !contains(*v.SellerName, filter.SellerName)) {
			continue
		}
		filtered = append(filtered, v)
	}
	return filtered, nil
}

func (s *Storage) ClientTransactions(_ context.Context, clientID int64) (made, bought []dto.TransactionView, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	made = s.viewsLocked(func(t models.Transaction) bool {
		return t.SellerID != nil && *t.SellerID == clientID
	})
	reverse(made)

	bought = s.viewsLocked(func(t models.Transaction) bool {
		return t.BuyerID == clientID
	})
	reverse(bought)

	return made, bought, nil
}

func (s *Storage) BuyersSellers(_ context.Context) (buyers, sellers []string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buyerSet := make(map[string]struct{})
	sellerSet := make(map[string]struct{})
	for _, t := range s.transactions {
		if buyer, ok := s.clients[t.BuyerID]; ok {
			buyerSet[buyer.Name] = struct{}{}
		}
		if t.SellerID != nil {
			if seller, ok := s.clients[*t.SellerID]; ok {
				sellerSet[seller.Name] = struct{}{}
			}
		}
	}
	for name := range buyerSet {
		buyers = append(buyers, name)
	}
	for name := range sellerSet {
		sellers = append(sellers, name)
	}
	sort.Strings(buyers)
	sort.Strings(sellers)
	return buyers, sellers, nil
}

func (s *Storage) ListCoins(_ context.Context) ([]models.Coin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.coinIDsLocked()
	coins := make([]models.Coin, 0, len(ids))
	for _, id := range ids {
		coins = append(coins, *s.coins[id])
	}
	return coins, nil
}

func (s *Storage) MarketplaceCoins(_ context.Context) ([]dto.MarketplaceCoin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.coinIDsLocked()
	listing := make([]dto.MarketplaceCoin, 0, len(ids))
	for _, id := range ids {
		coin := s.coins[id]
		entry := dto.MarketplaceCoin{
			CoinID:  coin.CoinID,
			OwnerID: coin.OwnerID,
			Bit1:    coin.Bit1,
			Bit2:    coin.Bit2,
			Bit3:    coin.Bit3,
			Value:   coin.Value,
		}
		if coin.OwnerID != nil {
			if owner, ok := s.clients[*coin.OwnerID]; ok {
				name := owner.Name
				entry.Owner = &name
			}
		}
		listing = append(listing, entry)
	}
	return listing, nil
}

func (s *Storage) CoinHistory(_ context.Context, coinID int64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var names []string
	for _, t := range s.transactions {
		if t.CoinID != coinID || t.SellerID == nil {
			continue
		}
		if seller, ok := s.clients[*t.SellerID]; ok {
			names = append(names, seller.Name)
		}
	}
	return names, nil
}

func (s *Storage) UsedTriples(_ context.Context) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	used := make(map[string]struct{}, len(s.coins))
	for _, coin := range s.coins {
		t := bitslow.Triple{Bit1: coin.Bit1, Bit2: coin.Bit2, Bit3: coin.Bit3}
		used[t.Key()] = struct{}{}
	}
	return used, nil
}

func (s *Storage) ClientStats(_ context.Context, clientID int64) (dto.ClientStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats dto.ClientStats
	for _, coin := range s.coins {
		if minter := s.minterLocked(coin); minter != nil && *minter == clientID {
			stats.CoinsMinted++
		}
		if coin.OwnerID != nil && *coin.OwnerID == clientID {
			stats.CoinsOwnedNow++
			stats.TotalOwnedValue += coin.Value
		}
	}
	for _, t := range s.transactions {
		if t.SellerID != nil && *t.SellerID == clientID {
			stats.SentTransactions++
		}
		if t.BuyerID == clientID {
			stats.ReceivedTransactions++
		}
	}
	return stats, nil
}

func (s *Storage) StoreRefreshToken(clientID, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshTokens[refreshToken] = clientID
	return nil
}

func (s *Storage) HasRefreshToken(refreshToken string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.refreshTokens[refreshToken]
	return ok
}

func (s *Storage) TransactionCount(coinID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, t := range s.transactions {
		if t.CoinID == coinID {
			count++
		}
	}
	return count
}

func (s *Storage) minterLocked(coin *models.Coin) *int64 {
	for _, t := range s.transactions {
		if t.CoinID == coin.CoinID {
			return t.SellerID
		}
	}
	return coin.OwnerID
}

func (s *Storage) viewsLocked(keep func(models.Transaction) bool) []dto.TransactionView {
	var views []dto.TransactionView
	for _, t := range s.transactions {
		if !keep(t) {
			continue
		}
		coin := s.coins[t.CoinID]
		buyer := s.clients[t.BuyerID]
		v := dto.TransactionView{
			ID:              t.ID,
			CoinID:          t.CoinID,
			Amount:          t.Amount,
			TransactionDate: t.TransactionDate,
			SellerID:        t.SellerID,
			BuyerID:         t.BuyerID,
			BuyerName:       buyer.Name,
			Bit1:            coin.Bit1,
			Bit2:            coin.Bit2,
			Bit3:            coin.Bit3,
			Value:           coin.Value,
		}
		if t.SellerID != nil {
			if seller, ok := s.clients[*t.SellerID]; ok {
				name := seller.Name
				v.SellerName = &name
			}
		}
		views = append(views, v)
	}
	return views
}

func (s *Storage) coinIDsLocked() []int64 {
	ids := make([]int64, 0, len(s.coins))
	for id := range s.coins {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func reverse(views []dto.TransactionView) {
	for i, j := 0, len(views)-1; i < j; i, j = i+1, j-1 {
		views[i], views[j] = views[j], views[i]
	}
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func parseDay(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	day, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}
