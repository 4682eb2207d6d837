package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"wallet-core-backend/internal/common/errors"
	"wallet-core-backend/internal/common/middleware"
	"wallet-core-backend/internal/features/scan/service"
)

type ScanHandler struct {
	parser *service.Parser
	logger zerolog.Logger
}

func NewScanHandler(parser *service.Parser, logger zerolog.Logger) *ScanHandler {
	return &ScanHandler{
		parser: parser,
		logger: logger,
	}
}

func (h *ScanHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/scan", h.parse)
}

type parseRequest struct {
	Payload string `json:"payload"`
}

// @Summary Parse a scanned payment code
// @Description Classify a raw scanned payload and decode it into a structured payment descriptor. Unrecognized payloads resolve to the UNKNOWN rail.
// @Tags scan
// @Accept json
// @Produce json
// @Param request body parseRequest true "Raw scanned payload"
// @Success 200 {object} models.PaymentDescriptor "Decoded descriptor"
// @Failure 400 {object} middleware.ErrorResponse "Malformed request body"
// @Router /scan [post]
func (h *ScanHandler) parse(c *gin.Context) {
	var req parseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.SendError(c, errors.Wrap(err, errors.ErrCodeBadRequest, "Invalid request body"), h.logger)
		return
	}

	desc := h.parser.Parse(req.Payload)
	h.logger.Debug().
		Str("rail", string(desc.RailType)).
		Str("currency", desc.Currency).
		Msg("Parsed scanned payload")

	c.JSON(http.StatusOK, desc)
}
