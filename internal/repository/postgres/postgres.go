package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitslow-market/internal/domain/dto"
	"bitslow-market/internal/domain/models"
	"bitslow-market/internal/lib/bitslow"
	"bitslow-market/internal/repository"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

var transactionColumns = []string{
	"t.id",
	"t.coin_id",
	"t.amount",
	"t.transaction_date",
	"seller.id AS seller_id",
	"seller.name AS seller_name",
	"buyer.id AS buyer_id",
	"buyer.name AS buyer_name",
	"c.bit1",
	"c.bit2",
	"c.bit3",
	"c.value",
}

type Storage struct {
	db *pgxpool.Pool
}

func NewPostgres(ctx context.Context, conn string) (*Storage, error) {
	const op = "storage.postgres.New"

	db, err := pgxpool.New(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) SaveClient(ctx context.Context, name, email string, passHash []byte, phone, address string) (int64, error) {
	const op = "storage.Postgres.SaveClient"

	sql, args, err := squirrel.Insert("clients").
		Columns("name", "email", "password", "phone", "address").
		Values(name, email, passHash, phone, address).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var id int64
	err = s.db.QueryRow(ctx, sql, args...).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return 0, fmt.Errorf("%s: %w", op, repository.ErrEmailTaken)
		}

		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) GetClientByEmail(ctx context.Context, email string) (models.Client, error) {
	const op = "storage.Postgres.GetClientByEmail"

	sql, args, err := squirrel.Select("id", "name", "email", "password", "phone", "address", "created_at").
		From("clients").
		Where(squirrel.Eq{"email": email}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return models.Client{}, fmt.Errorf("%s: %w", op, err)
	}

	var client models.Client
	err = s.db.QueryRow(ctx, sql, args...).
		Scan(&client.ID, &client.Name, &client.Email, &client.Password, &client.Phone, &client.Address, &client.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Client{}, fmt.Errorf("%s: %w", op, repository.ErrClientNotFound)
		}
		return models.Client{}, fmt.Errorf("%s: %w", op, err)
	}

	return client, nil
}

func (s *Storage) GetClientByID(ctx context.Context, clientID int64) (models.Client, error) {
	const op = "storage.Postgres.GetClientByID"

	sql, args, err := squirrel.Select("id", "name", "email", "password", "phone", "address", "created_at").
		From("clients").
		Where(squirrel.Eq{"id": clientID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return models.Client{}, fmt.Errorf("%s: %w", op, err)
	}

	var client models.Client
	err = s.db.QueryRow(ctx, sql, args...).
		Scan(&client.ID, &client.Name, &client.Email, &client.Password, &client.Phone, &client.Address, &client.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Client{}, fmt.Errorf("%s: %w", op, repository.ErrClientNotFound)
		}
		return models.Client{}, fmt.Errorf("%s: %w", op, err)
	}

	return client, nil
}

func (s *Storage) ListClients(ctx context.Context) ([]dto.ClientData, error) {
	const op = "storage.Postgres.ListClients"

	sql, args, err := squirrel.Select("id", "name", "email", "phone", "address").
		From("clients").
		OrderBy("id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var clients []dto.ClientData
	for rows.Next() {
		var c dto.ClientData
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		clients = append(clients, c)
	}

	return clients, nil
}

// MintCoin inserts the new coin. Triple uniqueness is enforced by the
// storage constraint, not by a prior read, so two concurrent mints with
// the same triple cannot both succeed.
func (s *Storage) MintCoin(ctx context.Context, ownerID int64, triple bitslow.Triple, value float64) (int64, error) {
	const op = "storage.Postgres.MintCoin"

	sql, args, err := squirrel.Insert("coins").
		Columns("client_id", "bit1", "bit2", "bit3", "value").
		Values(ownerID, triple.Bit1, triple.Bit2, triple.Bit3, value).
		Suffix("RETURNING coin_id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var coinID int64
	err = s.db.QueryRow(ctx, sql, args...).Scan(&coinID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgUniqueViolation:
				return 0, fmt.Errorf("%s: %w", op, repository.ErrDuplicateTriple)
			case pgForeignKeyViolation:
				return 0, fmt.Errorf("%s: %w", op, repository.ErrClientNotFound)
			}
		}

		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return coinID, nil
}

// TransferCoin moves the coin to buyerID as one atomic unit: the owner
// read locks the coin row, the transaction row is appended with the
// previous owner as seller, and the owner field is updated before the
// lock is released. Exactly one of two racing buyers can get past the
// FOR UPDATE read.
func (s *Storage) TransferCoin(ctx context.Context, coinID, buyerID int64) (models.Transaction, error) {
	const op = "storage.Postgres.TransferCoin"

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	lockQuery, lockArgs, err := squirrel.Select("client_id", "value").
		From("coins").
		Where(squirrel.Eq{"coin_id": coinID}).
		Suffix("FOR UPDATE").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return models.Transaction{}, fmt.Errorf("%s: %w", op, err)
	}

	var sellerID *int64
	var value float64
	err = tx.QueryRow(ctx, lockQuery, lockArgs...).Scan(&sellerID, &value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Transaction{}, fmt.Errorf("%s: %w", op, repository.ErrCoinNotFound)
		}
		return models.Transaction{}, fmt.Errorf("%s: %w", op, err)
	}

	if sellerID != nil && *sellerID == buyerID {
		err = repository.ErrAlreadyOwner
		return models.Transaction{}, fmt.Errorf("%s: %w", op, err)
	}

	transactionDate := time.Now()

	insertQuery, insertArgs, err := squirrel.Insert("transactions").
		Columns("coin_id", "seller_id", "buyer_id", "amount", "transaction_date").
		Values(coinID, sellerID, buyerID, value, transactionDate).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return models.Transaction{}, fmt.Errorf("%s: %w", op, err)
	}

	var transactionID int64
	err = tx.QueryRow(ctx, insertQuery, insertArgs...).Scan(&transactionID)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("%s: %w", op, err)
	}

	updateQuery, updateArgs, err := squirrel.Update("coins").
		Set("client_id", buyerID).
		Where(squirrel.Eq{"coin_id": coinID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return models.Transaction{}, fmt.Errorf("%s: %w", op, err)
	}
	_, err = tx.Exec(ctx, updateQuery, updateArgs...)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return models.Transaction{}, fmt.Errorf("%s: %w", op, err)
	}

	return models.Transaction{
		ID:              transactionID,
		CoinID:          coinID,
		SellerID:        sellerID,
		BuyerID:         buyerID,
		Amount:          value,
		TransactionDate: transactionDate,
	}, nil
}

func (s *Storage) ListTransactions(ctx context.Context) ([]dto.TransactionView, error) {
	const op = "storage.Postgres.ListTransactions"

	sql, args, err := transactionSelect().
		OrderBy("t.transaction_date DESC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	views, err := s.queryTransactions(ctx, sql, args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return views, nil
}

func (s *Storage) FilterTransactions(ctx context.Context, filter dto.FilterRequest) ([]dto.TransactionView, error) {
	const op = "storage.Postgres.FilterTransactions"

	query := transactionSelect()

	if filter.StartDate != "" {
		query = query.Where(squirrel.GtOrEq{"t.transaction_date": filter.StartDate})
	}
	if filter.FinishDate != "" {
		query = query.Where(squirrel.LtOrEq{"t.transaction_date": filter.FinishDate})
	}
	if filter.MinBitSlowValue.Set {
		query = query.Where(squirrel.GtOrEq{"c.value": filter.MinBitSlowValue.Value})
	}
	if filter.MaxBitSlowValue.Set {
		query = query.Where(squirrel.LtOrEq{"c.value": filter.MaxBitSlowValue.Value})
	}
	if filter.BuyerName != "" {
		query = query.Where(squirrel.ILike{"buyer.name": "%" + filter.BuyerName + "%"})
	}
	if filter.SellerName != "" {
		query = query.Where(squirrel.ILike{"seller.name": "%" + filter.SellerName + "%"})
	}

	sql, args, err := query.
		OrderBy("t.transaction_date DESC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	views, err := s.queryTransactions(ctx, sql, args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return views, nil
}

// ClientTransactions returns the transactions where the client sold and
// where it bought, newest first.
func (s *Storage) ClientTransactions(ctx context.Context, clientID int64) (made, bought []dto.TransactionView, err error) {
	const op = "storage.Postgres.ClientTransactions"

	madeQuery, madeArgs, err := transactionSelect().
		Where(squirrel.Eq{"seller.id": clientID}).
		OrderBy("t.transaction_date DESC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	made, err = s.queryTransactions(ctx, madeQuery, madeArgs)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	boughtQuery, boughtArgs, err := transactionSelect().
		Where(squirrel.Eq{"buyer.id": clientID}).
		OrderBy("t.transaction_date DESC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	bought, err = s.queryTransactions(ctx, boughtQuery, boughtArgs)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	return made, bought, nil
}

func (s *Storage) BuyersSellers(ctx context.Context) (buyers, sellers []string, err error) {
	const op = "storage.Postgres.BuyersSellers"

	buyersQuery, buyersArgs, err := squirrel.Select("DISTINCT c.name").
		From("transactions t").
		Join("clients c ON t.buyer_id = c.id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	buyers, err = s.queryNames(ctx, buyersQuery, buyersArgs)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	sellersQuery, sellersArgs, err := squirrel.Select("DISTINCT c.name").
		From("transactions t").
		Join("clients c ON t.seller_id = c.id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	sellers, err = s.queryNames(ctx, sellersQuery, sellersArgs)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	return buyers, sellers, nil
}

func (s *Storage) ListCoins(ctx context.Context) ([]models.Coin, error) {
	const op = "storage.Postgres.ListCoins"

	sql, args, err := squirrel.Select("coin_id", "client_id", "bit1", "bit2", "bit3", "value").
		From("coins").
		OrderBy("coin_id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var coins []models.Coin
	for rows.Next() {
		var coin models.Coin
		if err := rows.Scan(&coin.CoinID, &coin.OwnerID, &coin.Bit1, &coin.Bit2, &coin.Bit3, &coin.Value); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		coins = append(coins, coin)
	}

	return coins, nil
}

func (s *Storage) MarketplaceCoins(ctx context.Context) ([]dto.MarketplaceCoin, error) {
	const op = "storage.Postgres.MarketplaceCoins"

	sql, args, err := squirrel.Select("c.coin_id", "c.client_id AS owner_id", "o.name AS owner", "c.bit1", "c.bit2", "c.bit3", "c.value").
		From("coins c").
		LeftJoin("clients o ON c.client_id = o.id").
		OrderBy("c.coin_id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var coins []dto.MarketplaceCoin
	for rows.Next() {
		var coin dto.MarketplaceCoin
		if err := rows.Scan(&coin.CoinID, &coin.OwnerID, &coin.Owner, &coin.Bit1, &coin.Bit2, &coin.Bit3, &coin.Value); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		coins = append(coins, coin)
	}

	return coins, nil
}

// CoinHistory returns the names of the coin's previous owners, oldest
// first. Sellers with no client row (seeded mint rows) are skipped by
// the inner join.
func (s *Storage) CoinHistory(ctx context.Context, coinID int64) ([]string, error) {
	const op = "storage.Postgres.CoinHistory"

	sql, args, err := squirrel.Select("c.name").
		From("transactions t").
		Join("clients c ON t.seller_id = c.id").
		Where(squirrel.Eq{"t.coin_id": coinID}).
		OrderBy("t.transaction_date ASC", "t.id ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	names, err := s.queryNames(ctx, sql, args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return names, nil
}

func (s *Storage) UsedTriples(ctx context.Context) (map[string]struct{}, error) {
	const op = "storage.Postgres.UsedTriples"

	sql, args, err := squirrel.Select("bit1", "bit2", "bit3").
		From("coins").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	used := make(map[string]struct{})
	for rows.Next() {
		var t bitslow.Triple
		if err := rows.Scan(&t.Bit1, &t.Bit2, &t.Bit3); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		used[t.Key()] = struct{}{}
	}

	return used, nil
}

func (s *Storage) ClientStats(ctx context.Context, clientID int64) (dto.ClientStats, error) {
	const op = "storage.Postgres.ClientStats"

	// The minter of a coin is the seller of its first transaction, or
	// the current owner if it has never changed hands.
	const statsQuery = `
		SELECT
			(SELECT COUNT(*) FROM coins c
				WHERE COALESCE(
					(SELECT t.seller_id FROM transactions t
						WHERE t.coin_id = c.coin_id
						ORDER BY t.transaction_date ASC, t.id ASC
						LIMIT 1),
					c.client_id) = $1),
			(SELECT COUNT(*) FROM coins WHERE client_id = $1),
			(SELECT COUNT(*) FROM transactions WHERE seller_id = $1),
			(SELECT COUNT(*) FROM transactions WHERE buyer_id = $1),
			(SELECT COALESCE(SUM(value), 0) FROM coins WHERE client_id = $1)
	`

	var stats dto.ClientStats
	err := s.db.QueryRow(ctx, statsQuery, clientID).Scan(
		&stats.CoinsMinted,
		&stats.CoinsOwnedNow,
		&stats.SentTransactions,
		&stats.ReceivedTransactions,
		&stats.TotalOwnedValue,
	)
	if err != nil {
		return dto.ClientStats{}, fmt.Errorf("%s: %w", op, err)
	}

	return stats, nil
}

func (s *Storage) Close() error {
	s.db.Close()
	return nil
}

func transactionSelect() squirrel.SelectBuilder {
	return squirrel.Select(transactionColumns...).
		From("transactions t").
		LeftJoin("clients seller ON t.seller_id = seller.id").
		Join("clients buyer ON t.buyer_id = buyer.id").
		Join("coins c ON t.coin_id = c.coin_id")
}

func (s *Storage) queryTransactions(ctx context.Context, sql string, args []interface{}) ([]dto.TransactionView, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []dto.TransactionView
	for rows.Next() {
		var v dto.TransactionView
		err := rows.Scan(
			&v.ID, &v.CoinID, &v.Amount, &v.TransactionDate,
			&v.SellerID, &v.SellerName, &v.BuyerID, &v.BuyerName,
			&v.Bit1, &v.Bit2, &v.Bit3, &v.Value,
		)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}

	return views, nil
}

func (s *Storage) queryNames(ctx context.Context, sql string, args []interface{}) ([]string, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	return names, nil
}
