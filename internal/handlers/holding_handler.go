package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"vinvest/internal/models"
	"vinvest/internal/provider"
	"vinvest/internal/services"
)

// HoldingHandler handles portfolio position requests.
type HoldingHandler struct {
	holdingService   services.HoldingServicer
	valuationService services.ValuationServicer
	auditService     services.AuditServicer
}

// NewHoldingHandler creates a new HoldingHandler.
func NewHoldingHandler(holdingService services.HoldingServicer, valuationService services.ValuationServicer, auditService services.AuditServicer) *HoldingHandler {
	return &HoldingHandler{
		holdingService:   holdingService,
		valuationService: valuationService,
		auditService:     auditService,
	}
}

// AddStockRequest adds shares of a symbol. Name, sector and buy price are
// only used when the symbol is new to the portfolio.
type AddStockRequest struct {
	User     string          `json:"user" binding:"required,email,max=255"`
	Symbol   string          `json:"symbol" binding:"required,ticker"`
	Name     string          `json:"name" binding:"max=255"`
	Sector   string          `json:"sector" binding:"max=100"`
	Shares   decimal.Decimal `json:"shares" swaggertype:"number" binding:"required,gt=0"`
	BuyPrice decimal.Decimal `json:"buyPrice" swaggertype:"number" binding:"omitempty,gt=0"`
}

// UpdateSharesRequest sets the share count of a holding.
type UpdateSharesRequest struct {
	User   string          `json:"user" binding:"required,email,max=255"`
	Symbol string          `json:"symbol" binding:"required,ticker"`
	Shares decimal.Decimal `json:"shares" swaggertype:"number" binding:"required,gt=0"`
}

// UpdateBuyPriceRequest sets the average buy price of a holding.
type UpdateBuyPriceRequest struct {
	User     string          `json:"user" binding:"required,email,max=255"`
	Symbol   string          `json:"symbol" binding:"required,ticker"`
	BuyPrice decimal.Decimal `json:"buyPrice" swaggertype:"number" binding:"required,gt=0"`
}

// DeleteStockRequest removes a holding.
type DeleteStockRequest struct {
	User   string `json:"user" binding:"required,email,max=255"`
	Symbol string `json:"symbol" binding:"required,ticker"`
}

// StockResponse is one enriched holding. Price-derived fields are null when
// the quote could not be fetched.
type StockResponse struct {
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	Symbol       string    `json:"symbol"`
	Sector       string    `json:"sector"`
	Shares       float64   `json:"shares"`
	BuyPrice     float64   `json:"buyPrice"`
	CurrentPrice *float64  `json:"currentPrice"`
	TotalValue   *string   `json:"totalValue"`
	ProfitLoss   *string   `json:"profitLoss"`
	Currency     string    `json:"currency"`
	PriceChange  *float64  `json:"priceChange"`
	Sparkline    []float64 `json:"sparkline"`
	RSI          *float64  `json:"rsi"`
}

// StocksResponse is the valued portfolio.
type StocksResponse struct {
	Results             []StockResponse `json:"results"`
	TotalPortfolioValue string          `json:"totalPortfolioValue"`
	TotalProfitLoss     string          `json:"totalProfitLoss"`
}

// AddStock handles adding shares to the portfolio.
// @Summary     Add a stock
// @Description Insert a new holding or increase the shares of an existing one
// @Tags        holdings
// @Accept      json
// @Produce     json
// @Param       request body AddStockRequest true "Stock to add"
// @Success     200 {object} MessageResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Subscription required"
// @Router      /add_stock [post]
func (h *HoldingHandler) AddStock(c *gin.Context) {
	var req AddStockRequest
	if !bindUserJSON(c, &req, func() string { return req.User }) {
		return
	}

	result, err := h.holdingService.AddShares(req.User, req.Symbol, req.Shares, models.HoldingMeta{
		Name:     req.Name,
		Category: req.Sector,
		BuyPrice: req.BuyPrice,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	action, message := models.AuditAddShares, "Shares updated successfully"
	if result.Created {
		action, message = models.AuditAddHolding, "Added stock successfully"
	}
	h.auditService.Log(services.AuditEvent{
		Email:        result.Holding.UserEmail,
		Action:       action,
		ResourceType: "holding",
		ResourceID:   result.Holding.ID,
		IPAddress:    c.ClientIP(),
		Changes:      map[string]interface{}{"symbol": result.Holding.Symbol, "shares": req.Shares.String()},
	})

	c.JSON(http.StatusOK, MessageResponse{Message: message})
}

// GetStocks returns the valued portfolio with daily sparklines.
// @Summary     List holdings with market data
// @Tags        holdings
// @Accept      json
// @Produce     json
// @Param       request body UserRequest true "User"
// @Success     200 {object} StocksResponse
// @Failure     502 {object} ErrorResponse "Market data unavailable"
// @Router      /stocks [post]
func (h *HoldingHandler) GetStocks(c *gin.Context) {
	var req UserRequest
	if !bindUserJSON(c, &req, func() string { return req.User }) {
		return
	}

	valuation, err := h.valuationService.Valuate(c.Request.Context(), req.User, provider.IntervalDaily)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toStocksResponse(valuation))
}

// UpdateShares handles setting the share count of a holding.
// @Summary     Update shares
// @Tags        holdings
// @Accept      json
// @Produce     json
// @Param       request body UpdateSharesRequest true "New share count"
// @Success     200 {object} MessageResponse
// @Failure     404 {object} ErrorResponse "Holding not found"
// @Router      /update-shares [post]
func (h *HoldingHandler) UpdateShares(c *gin.Context) {
	var req UpdateSharesRequest
	if !bindUserJSON(c, &req, func() string { return req.User }) {
		return
	}

	holding, err := h.holdingService.SetShares(req.User, req.Symbol, req.Shares)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(services.AuditEvent{
		Email:        holding.UserEmail,
		Action:       models.AuditSetShares,
		ResourceType: "holding",
		ResourceID:   holding.ID,
		IPAddress:    c.ClientIP(),
		Changes:      map[string]interface{}{"shares": req.Shares.String()},
	})
	c.JSON(http.StatusOK, MessageResponse{Message: fmt.Sprintf("Updated %s's shares successfully!", holding.Symbol)})
}

// UpdateBuyPrice handles setting the buy price of a holding.
// @Summary     Update buy price
// @Tags        holdings
// @Accept      json
// @Produce     json
// @Param       request body UpdateBuyPriceRequest true "New buy price"
// @Success     200 {object} MessageResponse
// @Failure     404 {object} ErrorResponse "Holding not found"
// @Router      /update-buyprice [post]
func (h *HoldingHandler) UpdateBuyPrice(c *gin.Context) {
	var req UpdateBuyPriceRequest
	if !bindUserJSON(c, &req, func() string { return req.User }) {
		return
	}

	holding, err := h.holdingService.SetBuyPrice(req.User, req.Symbol, req.BuyPrice)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(services.AuditEvent{
		Email:        holding.UserEmail,
		Action:       models.AuditSetBuyPrice,
		ResourceType: "holding",
		ResourceID:   holding.ID,
		IPAddress:    c.ClientIP(),
		Changes:      map[string]interface{}{"buyPrice": req.BuyPrice.String()},
	})
	c.JSON(http.StatusOK, MessageResponse{Message: fmt.Sprintf("Updated %s's buy price successfully!", holding.Symbol)})
}

// DeleteStock handles removing a holding.
// @Summary     Delete a stock
// @Tags        holdings
// @Accept      json
// @Produce     json
// @Param       request body DeleteStockRequest true "Stock to delete"
// @Success     200 {object} MessageResponse
// @Failure     404 {object} ErrorResponse "Holding not found"
// @Router      /delete-stock [post]
func (h *HoldingHandler) DeleteStock(c *gin.Context) {
	var req DeleteStockRequest
	if !bindUserJSON(c, &req, func() string { return req.User }) {
		return
	}

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if err := h.holdingService.DeleteHolding(req.User, symbol); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(services.AuditEvent{Email: strings.ToLower(req.User), Action: models.AuditDeleteHolding, ResourceType: "holding", ResourceID: symbol, IPAddress: c.ClientIP()})
	c.JSON(http.StatusOK, MessageResponse{Message: fmt.Sprintf("Deleted %s successfully!", symbol)})
}

func toStocksResponse(v *services.Valuation) StocksResponse {
	results := make([]StockResponse, 0, len(v.Holdings))
	for _, h := range v.Holdings {
		sparkline := h.Sparkline
		if sparkline == nil {
			sparkline = []float64{}
		}
		item := StockResponse{
			Name:        h.Name,
			Type:        h.Type,
			Symbol:      h.Symbol,
			Sector:      h.Category,
			Shares:      h.Shares.InexactFloat64(),
			BuyPrice:    h.BuyPrice.InexactFloat64(),
			Currency:    h.Currency,
			PriceChange: h.PriceChange,
			Sparkline:   sparkline,
			RSI:         h.RSI,
		}
		if h.CurrentPrice != nil {
			price := h.CurrentPrice.InexactFloat64()
			item.CurrentPrice = &price
		}
		item.TotalValue = fixed2(h.TotalValue)
		item.ProfitLoss = fixed2(h.ProfitLoss)
		results = append(results, item)
	}

	return StocksResponse{
		Results:             results,
		TotalPortfolioValue: v.TotalValue.StringFixed(2),
		TotalProfitLoss:     v.TotalProfitLoss.StringFixed(2),
	}
}

func fixed2(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.StringFixed(2)
	return &s
}
