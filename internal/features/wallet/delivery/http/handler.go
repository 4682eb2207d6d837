package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"wallet-core-backend/internal/common/errors"
	"wallet-core-backend/internal/common/middleware"
	"wallet-core-backend/internal/features/wallet/service"
)

type WalletHandler struct {
	engine *service.WalletEngine
	logger zerolog.Logger
}

func NewWalletHandler(engine *service.WalletEngine, logger zerolog.Logger) *WalletHandler {
	return &WalletHandler{
		engine: engine,
		logger: logger,
	}
}

func (h *WalletHandler) RegisterRoutes(router *gin.RouterGroup) {
	wallet := router.Group("/wallet")
	{
		wallet.POST("", h.create)
		wallet.POST("/import", h.importAccount)
		wallet.DELETE("", h.disconnect)
		wallet.GET("/state", h.state)
		wallet.GET("/transactions", h.transactions)
		wallet.POST("/payments", h.submitPayment)
	}
}

type accountResponse struct {
	Address  string `json:"address"`
	Mnemonic string `json:"mnemonic"`
}

// @Summary Create a wallet
// @Description Generate a fresh account, persist it in secure storage and connect. The mnemonic is returned once and never again.
// @Tags wallet
// @Produce json
// @Success 201 {object} accountResponse "New account"
// @Failure 409 {object} middleware.ErrorResponse "A wallet is already connected"
// @Router /wallet [post]
func (h *WalletHandler) create(c *gin.Context) {
	account, err := h.engine.CreateAccount(c.Request.Context())
	if err != nil {
		h.sendError(c, err)
		return
	}
	c.JSON(http.StatusCreated, accountResponse{Address: account.Address, Mnemonic: account.Mnemonic})
}

type importRequest struct {
	Mnemonic string `json:"mnemonic" binding:"required"`
}

// @Summary Import a wallet
// @Description Recover an account from its mnemonic, persist it and connect.
// @Tags wallet
// @Accept json
// @Produce json
// @Param request body importRequest true "Recovery mnemonic"
// @Success 200 {object} accountResponse "Recovered account"
// @Failure 400 {object} middleware.ErrorResponse "Invalid mnemonic"
// @Failure 409 {object} middleware.ErrorResponse "A wallet is already connected"
// @Router /wallet/import [post]
func (h *WalletHandler) importAccount(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendError(c, errors.Wrap(err, errors.ErrCodeBadRequest, "Invalid request body"))
		return
	}

	account, err := h.engine.ImportAccount(c.Request.Context(), req.Mnemonic)
	if err != nil {
		h.sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, accountResponse{Address: account.Address, Mnemonic: account.Mnemonic})
}

// @Summary Disconnect the wallet
// @Description Stop the sync loop, cancel any in-flight submission and erase the stored account.
// @Tags wallet
// @Produce json
// @Success 204 "Disconnected"
// @Router /wallet [delete]
func (h *WalletHandler) disconnect(c *gin.Context) {
	if err := h.engine.Disconnect(c.Request.Context()); err != nil {
		h.sendError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Current wallet state
// @Tags wallet
// @Produce json
// @Success 200 {object} models.WalletState "State snapshot"
// @Router /wallet/state [get]
func (h *WalletHandler) state(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.State())
}

// @Summary Transaction records
// @Description Known transaction records for the active account, newest first.
// @Tags wallet
// @Produce json
// @Success 200 {array} models.TransactionRecord "Records"
// @Router /wallet/transactions [get]
func (h *WalletHandler) transactions(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Transactions())
}

type paymentRequest struct {
	To     string          `json:"to" binding:"required"`
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Note   string          `json:"note"`
}

// @Summary Submit a payment
// @Description Build, sign and broadcast a payment, then block until confirmation or timeout. Concurrent submissions are rejected.
// @Tags wallet
// @Accept json
// @Produce json
// @Param request body paymentRequest true "Payment"
// @Success 200 {object} models.TransactionRecord "Confirmed record"
// @Failure 400 {object} middleware.ErrorResponse "Invalid address or amount"
// @Failure 409 {object} middleware.ErrorResponse "Submission already in progress"
// @Failure 412 {object} middleware.ErrorResponse "No wallet connected"
// @Failure 422 {object} middleware.ErrorResponse "Insufficient balance"
// @Failure 504 {object} middleware.ErrorResponse "Confirmation timeout; outcome unknown"
// @Router /wallet/payments [post]
func (h *WalletHandler) submitPayment(c *gin.Context) {
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendError(c, errors.Wrap(err, errors.ErrCodeBadRequest, "Invalid request body"))
		return
	}

	record, err := h.engine.SubmitPayment(c.Request.Context(), req.To, req.Amount, req.Note)
	if err != nil {
		h.sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *WalletHandler) sendError(c *gin.Context, err error) {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		appErr = errors.Wrap(err, errors.ErrCodeInternal, "Wallet operation failed")
	}
	middleware.SendError(c, appErr, h.logger)
}
