package middlewares

import (
	"context"
	"net/http"

	"bitslow-market/internal/domain/models"

	"github.com/gin-gonic/gin"
)

// TokenHeader is the nonstandard header the wire contract uses for the
// bearer token. The spelling is binding; do not "fix" it.
const TokenHeader = "Authentificate"

const (
	CtxEmail    = "email"
	CtxClientID = "client_id"
)

type TokenVerifier interface {
	Verify(token string) (string, error)
}

type ClientResolver interface {
	GetClientByEmail(ctx context.Context, email string) (models.Client, error)
}

// AuthMiddleware guards mutating routes: no token or a bad token stops
// the request with 401 before any handler work; on success the subject
// is resolved to a client and attached to the request context.
type AuthMiddleware struct {
	verifier TokenVerifier
	clients  ClientResolver
}

func NewAuthMiddleware(verifier TokenVerifier, clients ClientResolver) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		clients:  clients,
	}
}

func (m *AuthMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(TokenHeader)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		email, err := m.verifier.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		client, err := m.clients.GetClientByEmail(c.Request.Context(), email)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		c.Set(CtxEmail, email)
		c.Set(CtxClientID, client.ID)

		c.Next()
	}
}
