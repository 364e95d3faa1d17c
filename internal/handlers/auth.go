package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/wastefinder/internal/auth"
	"go.uber.org/zap"
)

// AuthHandler checks admin credentials for the admin UI.
type AuthHandler struct {
	token  string
	logger *zap.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(token string, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{token: token, logger: logger}
}

func (h *AuthHandler) Verify(ctx context.Context, req *VerifyTokenRequest) (*VerifyTokenResponse, error) {
	if !auth.VerifyToken(h.token, req.Body.Token) {
		meta := RequestMetaFromContext(ctx)
		h.logger.Warn("admin token rejected", zap.String("client_ip", meta.ClientIP))

		return nil, huma.Error401Unauthorized("invalid token")
	}

	resp := &VerifyTokenResponse{}
	resp.Body.Success = true

	return resp, nil
}
