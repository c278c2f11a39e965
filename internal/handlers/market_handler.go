package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "vinvest/internal/errors"
	"vinvest/internal/provider"
	"vinvest/internal/services"
)

// MarketHandler serves symbol search and portfolio news.
type MarketHandler struct {
	quotes      provider.QuoteSource
	newsService services.NewsServicer
}

// NewMarketHandler creates a new MarketHandler.
func NewMarketHandler(quotes provider.QuoteSource, newsService services.NewsServicer) *MarketHandler {
	return &MarketHandler{quotes: quotes, newsService: newsService}
}

// NewsResponse holds the flattened news for a portfolio.
type NewsResponse struct {
	Results []services.NewsArticle `json:"results"`
}

// Search looks up symbols matching a free-text query.
// @Summary     Search symbols
// @Tags        market
// @Produce     json
// @Param       query query string true "Search text"
// @Success     200 {array}  provider.SearchResult
// @Failure     400 {object} ErrorResponse "Query is required"
// @Failure     502 {object} ErrorResponse "Market data unavailable"
// @Router      /search [get]
func (h *MarketHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Query is required."))
		return
	}

	results, err := h.quotes.Search(c.Request.Context(), query)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrQuoteUnavailable, err))
		return
	}
	if results == nil {
		results = []provider.SearchResult{}
	}

	c.JSON(http.StatusOK, results)
}

// News returns the latest headlines for every held symbol.
// @Summary     Portfolio news
// @Tags        market
// @Accept      json
// @Produce     json
// @Param       request body UserRequest true "User"
// @Success     200 {object} NewsResponse
// @Router      /news [post]
func (h *MarketHandler) News(c *gin.Context) {
	var req UserRequest
	if !bindUserJSON(c, &req, func() string { return req.User }) {
		return
	}

	articles, err := h.newsService.GetUserNews(c.Request.Context(), req.User)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if articles == nil {
		articles = []services.NewsArticle{}
	}

	c.JSON(http.StatusOK, NewsResponse{Results: articles})
}
