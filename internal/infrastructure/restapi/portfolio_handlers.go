package restapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/domain/entity"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NetworksResponse is the body of GET /networks.
type NetworksResponse struct {
	Networks []port.NetworkStatus `json:"networks"`
}

// PortfolioHandler handles portfolio HTTP requests.
type PortfolioHandler struct {
	portfolioService port.PortfolioService
}

// NewPortfolioHandler creates a new instance of PortfolioHandler.
func NewPortfolioHandler(ps port.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{portfolioService: ps}
}

// GetBalancesHandler serves GET /balances?address=&chain=.
func (h *PortfolioHandler) GetBalancesHandler(c *gin.Context) {
	address := c.Query("address")
	chain := c.Query("chain")

	portfolio, err := h.portfolioService.GetPortfolio(c.Request.Context(), address, chain)
	if err != nil {
		_ = c.Error(err)
		c.JSON(statusFor(err), ErrorResponse{Error: entity.UserMessage(err)})
		return
	}

	c.JSON(http.StatusOK, portfolio)
}

// GetNetworksHandler serves GET /networks.
func (h *PortfolioHandler) GetNetworksHandler(c *gin.Context) {
	c.JSON(http.StatusOK, NetworksResponse{Networks: h.portfolioService.Networks()})
}

// statusFor maps error classes onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrInvalidInput), errors.Is(err, entity.ErrConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
