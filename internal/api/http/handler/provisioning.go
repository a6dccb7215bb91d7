package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/EternisAI/momo-provisioner/internal/api/http/dto"
	"github.com/EternisAI/momo-provisioner/internal/momo"
	"github.com/gin-gonic/gin"
)

type Provisioner interface {
	UserID() string
	CreateAPIUser(ctx context.Context) error
	GetAPIUser(ctx context.Context) (*momo.APIUser, error)
	CreateAPIKey(ctx context.Context) (momo.APIKey, error)
	IssueAccessToken(ctx context.Context, key momo.APIKey) (*momo.AccessToken, error)
	Bootstrap(ctx context.Context) (*momo.AccessToken, error)
}

type ProvisioningHandler struct {
	provisioner Provisioner
}

func NewProvisioningHandler(provisioner Provisioner) *ProvisioningHandler {
	return &ProvisioningHandler{
		provisioner: provisioner,
	}
}

func (h *ProvisioningHandler) CreateAPIUser(ctx *gin.Context) {
	if err := h.provisioner.CreateAPIUser(ctx.Request.Context()); err != nil {
		h.writeError(ctx, "Failed to create API user", err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIUserResponse{UserID: h.provisioner.UserID()})
}

func (h *ProvisioningHandler) GetAPIUser(ctx *gin.Context) {
	user, err := h.provisioner.GetAPIUser(ctx.Request.Context())
	if err != nil {
		h.writeError(ctx, "Failed to get API user", err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIUserResponse{
		UserID:               user.UserID,
		ProviderCallbackHost: user.ProviderCallbackHost,
		TargetEnvironment:    user.TargetEnvironment,
	})
}

func (h *ProvisioningHandler) CreateAPIKey(ctx *gin.Context) {
	key, err := h.provisioner.CreateAPIKey(ctx.Request.Context())
	if err != nil {
		h.writeError(ctx, "Failed to create API key", err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIKeyResponse{
		UserID: h.provisioner.UserID(),
		APIKey: string(key),
	})
}

func (h *ProvisioningHandler) IssueAccessToken(ctx *gin.Context) {
	var req dto.TokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	token, err := h.provisioner.IssueAccessToken(ctx.Request.Context(), momo.APIKey(req.APIKey))
	if err != nil {
		h.writeError(ctx, "Failed to issue access token", err)
		return
	}

	ctx.JSON(http.StatusOK, h.tokenResponse(token))
}

func (h *ProvisioningHandler) Bootstrap(ctx *gin.Context) {
	token, err := h.provisioner.Bootstrap(ctx.Request.Context())
	if err != nil {
		h.writeError(ctx, "Failed to bootstrap credentials", err)
		return
	}

	ctx.JSON(http.StatusOK, h.tokenResponse(token))
}

func (h *ProvisioningHandler) tokenResponse(token *momo.AccessToken) dto.TokenResponse {
	return dto.TokenResponse{
		UserID:      h.provisioner.UserID(),
		AccessToken: token.Value,
		TokenType:   token.TokenType,
		ExpiresIn:   token.ExpiresIn,
	}
}

func (h *ProvisioningHandler) writeError(ctx *gin.Context, msg string, err error) {
	if errors.Is(err, momo.ErrInvalidConfig) {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	var e *momo.Error
	if !errors.As(err, &e) {
		slog.Error(msg, "error", err)
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: msg})
		return
	}

	slog.Warn(msg, "user_id", h.provisioner.UserID(), "kind", e.Kind, "status_code", e.StatusCode, "error", err)
	ctx.JSON(StatusForKind(e.Kind), dto.ErrorResponse{
		Error:        msg,
		Kind:         e.Kind.String(),
		RemoteStatus: e.StatusCode,
		RemoteCode:   e.Code,
	})
}

// StatusForKind maps a provider failure onto the status returned to our own callers.
func StatusForKind(kind momo.ErrorKind) int {
	switch kind {
	case momo.NotFound:
		return http.StatusNotFound
	case momo.BadRequest:
		return http.StatusBadRequest
	case momo.TransportError:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}
