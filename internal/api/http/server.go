// Package http exposes the engine's administrative surface over gin.
package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/olyamironova/exchange-engine/internal/api/dto"
	"github.com/olyamironova/exchange-engine/internal/engine"
	"github.com/olyamironova/exchange-engine/internal/middleware"
)

// Server is the gin-backed HTTP admin surface over an Engine.
type Server struct {
	eng *engine.Engine
	log *zap.Logger
}

func NewServer(eng *engine.Engine, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{eng: eng, log: log}
}

// Router builds the gin engine so callers can mount it themselves or wrap
// it with additional middleware (e.g. the websocket hub's /ws route).
func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	rl := middleware.NewRateLimiter(100 * time.Millisecond)
	r.Use(rl.Middleware())

	r.POST("/start", s.start)
	r.POST("/stop", s.stop)
	r.GET("/orderbook", s.getOrderBook)
	r.POST("/assets/:asset/process", s.processAsset)
	r.POST("/orders/active/mark", s.markActiveOrders)
	r.POST("/confirmations/respond", s.respondConfirmation)
	r.POST("/confirmations/secondary-reply", s.secondaryReply)
	r.GET("/confirmations/pending", s.pendingForUser)
	r.POST("/negotiations/respond", s.respondNegotiation)

	return r
}

// Run starts the HTTP server, blocking until it exits or errors.
func (s *Server) Run(addr string) error {
	return s.Router().Run(addr)
}

func (s *Server) start(c *gin.Context) {
	s.eng.Start(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"running": true})
}

func (s *Server) stop(c *gin.Context) {
	s.eng.Stop()
	c.JSON(http.StatusOK, gin.H{"running": false})
}

func (s *Server) getOrderBook(c *gin.Context) {
	asset := c.Query("asset")
	if asset == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "asset query parameter required"})
		return
	}
	view, err := s.eng.GetOrderBook(c.Request.Context(), asset)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.GetOrderBookResponse{
		Asset:       view.Asset,
		Bids:        convertLevels(view.Bids),
		Offers:      convertLevels(view.Offers),
		TotalBids:   view.TotalBids,
		TotalOffers: view.TotalOffers,
		Timestamp:   view.Timestamp,
	})
}

func (s *Server) processAsset(c *gin.Context) {
	asset := c.Param("asset")
	s.eng.ProcessAsset(c.Request.Context(), asset)
	c.JSON(http.StatusOK, gin.H{"asset": asset, "processed": true})
}

func (s *Server) markActiveOrders(c *gin.Context) {
	s.eng.MarkActiveOrders()
	c.JSON(http.StatusOK, dto.MarkActiveOrdersResponse{Marked: true})
}

func (s *Server) respondConfirmation(c *gin.Context) {
	var req dto.QuantityConfirmationResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.eng.HandleQuantityConfirmationResponse(c.Request.Context(), req.ConfirmationKey, req.Accepted, req.NewQuantity)
	c.JSON(http.StatusOK, gin.H{"confirmation_key": req.ConfirmationKey})
}

// secondaryReply resolves a secondary-channel "YES <prefix>" / "NO <prefix>"
// reply to its confirmationKey and applies it.
func (s *Server) secondaryReply(c *gin.Context) {
	var req dto.SecondaryReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ks, ok := s.eng.ResolvePrefix(req.Prefix)
	if !ok {
		c.JSON(http.StatusOK, dto.SecondaryReplyResponse{Resolved: false})
		return
	}
	accepted := strings.EqualFold(strings.TrimSpace(req.Reply), "YES")
	s.eng.HandleQuantityConfirmationResponse(c.Request.Context(), ks, accepted, nil)
	c.JSON(http.StatusOK, dto.SecondaryReplyResponse{ConfirmationKey: ks, Resolved: true})
}

func (s *Server) pendingForUser(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id query parameter required"})
		return
	}
	pending := s.eng.PendingForUser(userID)
	out := make([]dto.PendingConfirmation, len(pending))
	for i, pc := range pending {
		out[i] = dto.PendingConfirmation{
			ConfirmationKey: pc.Key.String(),
			Asset:           pc.Key.Asset,
			BidOrderID:      pc.BidOrder.ID,
			OfferOrderID:    pc.OfferOrder.ID,
			State:           string(pc.State),
			SmallerQty:      pc.SmallerQty,
			LargerQty:       pc.LargerQty,
			AdditionalQty:   pc.AdditionalQty,
			Price:           pc.BidOrder.Price,
			TimeoutDeadline: pc.TimeoutDeadline,
		}
	}
	c.JSON(http.StatusOK, dto.PendingForUserResponse{Pending: out})
}

func (s *Server) respondNegotiation(c *gin.Context) {
	var req dto.NegotiationResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.eng.HandleNegotiationResponse(c.Request.Context(), req.Asset, req.UserID, req.Improved, req.NewPrice)
	c.JSON(http.StatusOK, gin.H{"asset": req.Asset})
}

func convertLevels(levels []engine.OrderBookLevel) []dto.OrderBookLevel {
	out := make([]dto.OrderBookLevel, len(levels))
	for i, l := range levels {
		out[i] = dto.OrderBookLevel{Price: l.Price, Remaining: l.Remaining, OrderID: l.OrderID}
	}
	return out
}
