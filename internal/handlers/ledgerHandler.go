package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"bitslow-market/internal/domain/dto"
	"bitslow-market/internal/domain/models"
	"bitslow-market/internal/lib/bitslow"
	"bitslow-market/internal/middlewares"
	"bitslow-market/internal/repository"
	"bitslow-market/internal/services"

	"github.com/gin-gonic/gin"
)

type LedgerService interface {
	Transactions(ctx context.Context) ([]dto.TransactionView, error)
	Filtered(ctx context.Context, filter dto.FilterRequest) ([]dto.TransactionView, error)
	ClientInfo(ctx context.Context, clientID int64) (dto.ClientInfoResponse, error)
	BuyersSellers(ctx context.Context) (buyers, sellers []string, err error)
	Marketplace(ctx context.Context) ([]dto.MarketplaceCoin, error)
	History(ctx context.Context, coinID int64) ([]string, error)
	Buy(ctx context.Context, coinID int64, buyerEmail string) (string, models.Transaction, error)
	FindBits(ctx context.Context) (bitslow.Triple, error)
	Mint(ctx context.Context, ownerEmail string, triple bitslow.Triple, value float64) (int64, error)
	Clients(ctx context.Context) ([]dto.ClientData, error)
	Coins(ctx context.Context) ([]models.Coin, error)
}

type LedgerHandler struct {
	log    *slog.Logger
	ledger LedgerService
}

func NewLedgerHandler(log *slog.Logger, ledger LedgerService) *LedgerHandler {
	return &LedgerHandler{
		log:    log,
		ledger: ledger,
	}
}

// Transactions
// @Summary List all transactions with rendered coin identities
// @Tags ledger
// @Produce json
// @Success 200 {array} dto.TransactionView
// @Failure 500 {object} map[string]string
// @Router /api/transactions [get]
func (h *LedgerHandler) Transactions(c *gin.Context) {
	views, err := h.ledger.Transactions(c.Request.Context())
	if err != nil {
		h.log.Error("failed to list transactions", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching transactions"})
		return
	}

	if views == nil {
		views = []dto.TransactionView{}
	}
	c.JSON(http.StatusOK, views)
}

func (h *LedgerHandler) Filtered(c *gin.Context) {
	var filter dto.FilterRequest
	if err := c.ShouldBindJSON(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	views, err := h.ledger.Filtered(c.Request.Context(), filter)
	if err != nil {
		h.log.Error("failed to filter transactions", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching transactions"})
		return
	}

	if views == nil {
		views = []dto.TransactionView{}
	}
	c.JSON(http.StatusOK, views)
}

// ClientInfo returns a client's transaction history and aggregates.
// An unknown id answers 401; the frontend relies on that code.
func (h *LedgerHandler) ClientInfo(c *gin.Context) {
	clientID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"err": "Invalid client id"})
		return
	}

	info, err := h.ledger.ClientInfo(c.Request.Context(), clientID)
	if err != nil {
		if errors.Is(err, repository.ErrClientNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"err": "Invalid client id"})
			return
		}
		h.log.Error("failed to build client info", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, info)
}

func (h *LedgerHandler) BuyersSellers(c *gin.Context) {
	buyers, sellers, err := h.ledger.BuyersSellers(c.Request.Context())
	if err != nil {
		h.log.Error("failed to fetch buyers and sellers", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch buyers and sellers"})
		return
	}

	if buyers == nil {
		buyers = []string{}
	}
	if sellers == nil {
		sellers = []string{}
	}
	c.JSON(http.StatusOK, gin.H{
		"buyers":  buyers,
		"sellers": sellers,
	})
}

// Marketplace
// @Summary List every coin with its owner and display hash
// @Tags ledger
// @Produce json
// @Success 200 {array} dto.MarketplaceCoin
// @Router /api/marketplace [get]
func (h *LedgerHandler) Marketplace(c *gin.Context) {
	coins, err := h.ledger.Marketplace(c.Request.Context())
	if err != nil {
		h.log.Error("failed to list marketplace", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if coins == nil {
		coins = []dto.MarketplaceCoin{}
	}
	c.JSON(http.StatusOK, coins)
}

func (h *LedgerHandler) History(c *gin.Context) {
	coinID, err := strconv.ParseInt(c.Param("coin_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid coin id"})
		return
	}

	names, err := h.ledger.History(c.Request.Context(), coinID)
	if err != nil {
		h.log.Error("failed to fetch coin history", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if names == nil {
		names = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"names": names})
}

// Buy
// @Summary Purchase a coin for the authenticated client
// @Tags ledger
// @Security TokenAuth
// @Produce json
// @Param coin_id path int true "Coin id"
// @Success 200 {object} map[string]string "Purchase confirmation"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Unknown coin or buyer"
// @Failure 409 {object} map[string]string "Buyer already owns the coin"
// @Router /api/buy/{coin_id} [post]
func (h *LedgerHandler) Buy(c *gin.Context) {
	emailVal, exists := c.Get(middlewares.CtxEmail)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	coinID, err := strconv.ParseInt(c.Param("coin_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}

	buyerName, _, err := h.ledger.Buy(c.Request.Context(), coinID, emailVal.(string))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrClientNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Buyer not found"})
		case errors.Is(err, repository.ErrCoinNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Coin not found"})
		case errors.Is(err, repository.ErrAlreadyOwner):
			c.JSON(http.StatusConflict, gin.H{"error": "You already own this coin"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "The BitSlow coin was purchased successfully!",
		"name":    buyerName,
	})
}

// FindBits answers with an unused bit triple, or 204 when the identity
// space is exhausted. Exhaustion is a meaningful outcome, not an error.
func (h *LedgerHandler) FindBits(c *gin.Context) {
	triple, err := h.ledger.FindBits(c.Request.Context())
	if err != nil {
		if errors.Is(err, bitslow.ErrSpaceExhausted) {
			c.JSON(http.StatusNoContent, dto.FindBitsResponse{
				NoValues: true,
				Message:  "No more unique bit combinations available.",
			})
			return
		}
		h.log.Error("failed to pick bits", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusCreated, dto.FindBitsResponse{
		Bit1:     triple.Bit1,
		Bit2:     triple.Bit2,
		Bit3:     triple.Bit3,
		NoValues: false,
	})
}

// Generate mints a coin. The triple and value travel as headers; that
// is the original wire contract.
func (h *LedgerHandler) Generate(c *gin.Context) {
	emailVal, exists := c.Get(middlewares.CtxEmail)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	bit1, err1 := strconv.Atoi(c.GetHeader("Bit1"))
	bit2, err2 := strconv.Atoi(c.GetHeader("Bit2"))
	bit3, err3 := strconv.Atoi(c.GetHeader("Bit3"))
	amount, err4 := strconv.ParseFloat(c.GetHeader("Amount"), 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid values"})
		return
	}

	triple := bitslow.Triple{Bit1: bit1, Bit2: bit2, Bit3: bit3}

	_, err := h.ledger.Mint(c.Request.Context(), emailVal.(string), triple, amount)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidTriple):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid values"})
		case errors.Is(err, repository.ErrDuplicateTriple):
			c.JSON(http.StatusConflict, gin.H{"error": "Bit combination already minted"})
		case errors.Is(err, repository.ErrClientNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Owner not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "The BitSlow coin was generated successfully!"})
}

func (h *LedgerHandler) Clients(c *gin.Context) {
	clients, err := h.ledger.Clients(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if clients == nil {
		clients = []dto.ClientData{}
	}
	c.JSON(http.StatusOK, clients)
}

func (h *LedgerHandler) Coins(c *gin.Context) {
	coins, err := h.ledger.Coins(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if coins == nil {
		coins = []models.Coin{}
	}
	c.JSON(http.StatusOK, coins)
}
