package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"wallet-core-backend/internal/common/errors"
	"wallet-core-backend/internal/common/middleware"
	"wallet-core-backend/internal/features/reward/models"
	"wallet-core-backend/internal/features/reward/service"
	walletservice "wallet-core-backend/internal/features/wallet/service"
)

type RewardHandler struct {
	rewards *service.Service
	engine  *walletservice.WalletEngine
	logger  zerolog.Logger
}

func NewRewardHandler(rewards *service.Service, engine *walletservice.WalletEngine, logger zerolog.Logger) *RewardHandler {
	return &RewardHandler{
		rewards: rewards,
		engine:  engine,
		logger:  logger,
	}
}

func (h *RewardHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/rewards", h.list)
}

// @Summary Issued milestone rewards
// @Description Rewards already issued to the active account.
// @Tags rewards
// @Produce json
// @Success 200 {array} models.RewardRecord "Issued rewards"
// @Failure 412 {object} middleware.ErrorResponse "No wallet connected"
// @Router /rewards [get]
func (h *RewardHandler) list(c *gin.Context) {
	state := h.engine.State()
	if !state.IsConnected {
		middleware.SendError(c, errors.NewNotConnectedError(), h.logger)
		return
	}

	records, err := h.rewards.ListIssued(c.Request.Context(), state.Address)
	if err != nil {
		middleware.SendError(c, errors.Wrap(err, errors.ErrCodeStorageError, "Failed to list rewards"), h.logger)
		return
	}
	if records == nil {
		records = []models.RewardRecord{}
	}
	c.JSON(http.StatusOK, records)
}
