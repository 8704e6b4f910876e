package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"nvcompare/internal/domain"
	"nvcompare/internal/domain/model"
)

const proxyErrorMessage = "Failed to fetch NVIDIA data"

// clientEvents are the analytics events the page may submit.
var clientEvents = map[string]struct{}{
	model.EventNavClick:       {},
	model.EventTooltipView:    {},
	model.EventDonationCopy:   {},
	model.EventPrivacyAccept:  {},
	model.EventPrivacyDismiss: {},
}

// nvidia is the Quote Proxy: every failure collapses into one generic 500 body and the
// cause only reaches the log.
func (s *Server) nvidia(c *gin.Context) {
	q, err := s.deps.Quote.Quote(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Str("kind", errorKind(err)).Msg("quote proxy failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": proxyErrorMessage})
		return
	}
	if s.deps.CacheControl != "" {
		c.Header("Cache-Control", s.deps.CacheControl)
	}
	c.JSON(http.StatusOK, q)
}

func (s *Server) comparison(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, s.deps.View.Snapshot())
}

type eventReq struct {
	Name   string            `json:"name" binding:"required"`
	Params map[string]string `json:"params"`
}

func (s *Server) event(c *gin.Context) {
	var req eventReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event"})
		return
	}
	if _, ok := clientEvents[req.Name]; !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown event"})
		return
	}
	s.record(c, model.NewEvent(req.Name, req.Params))
	c.Status(http.StatusNoContent)
}

func (s *Server) health(c *gin.Context) {
	snap := s.deps.View.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"view":       snap.Status.String(),
		"ws_clients": s.deps.Hub.Clients(),
	})
}

func (s *Server) record(c *gin.Context, ev model.Event) {
	if s.deps.Analytics == nil {
		return
	}
	if err := s.deps.Analytics.Record(c.Request.Context(), ev); err != nil {
		log.Warn().Err(err).Str("event", ev.Name).Msg("analytics record failed")
	}
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrUpstreamThrottled):
		return "upstream_throttled"
	case errors.Is(err, domain.ErrUpstreamShapeMismatch):
		return "upstream_shape_mismatch"
	case errors.Is(err, domain.ErrParseFailure):
		return "parse_failure"
	case errors.Is(err, domain.ErrNetworkFailure):
		return "network_failure"
	default:
		return "unknown"
	}
}
