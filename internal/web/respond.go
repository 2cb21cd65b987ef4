package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/frankcoz86/printora-backend/internal/relay"
)

// statusForKind maps the relay error taxonomy onto HTTP statuses. Validation
// and signature failures are the caller's fault; everything upstream-side is
// a gateway problem.
func statusForKind(kind relay.Kind) int {
	switch kind {
	case relay.KindValidation, relay.KindSignature:
		return http.StatusBadRequest
	case relay.KindConfiguration:
		return http.StatusInternalServerError
	case relay.KindTimeout:
		return http.StatusGatewayTimeout
	case relay.KindTransport, relay.KindUpstreamHTTP, relay.KindUpstreamLogical:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// detailOf surfaces upstream detail outside production mode only.
func (s *Server) detailOf(err error) string {
	if s.cfg.IsProduction() {
		return ""
	}
	var re *relay.Error
	if errors.As(err, &re) {
		return re.Detail
	}
	return ""
}

// replyOKError writes the {ok:false, error} shape used by the contact route.
func (s *Server) replyOKError(c *gin.Context, err error) {
	body := gin.H{"ok": false, "error": relay.MessageOf(err)}
	if detail := s.detailOf(err); detail != "" {
		body["details"] = detail
	}
	c.JSON(statusForKind(relay.KindOf(err)), body)
}

// replyError writes the bare {error} shape used by the webhook relay and
// session-retrieval routes.
func (s *Server) replyError(c *gin.Context, err error) {
	body := gin.H{"error": relay.MessageOf(err)}
	if detail := s.detailOf(err); detail != "" {
		body["details"] = detail
	}
	c.JSON(statusForKind(relay.KindOf(err)), body)
}

// replyTypedError writes the {error, type} shape used by the checkout
// creation route.
func (s *Server) replyTypedError(c *gin.Context, err error) {
	c.JSON(statusForKind(relay.KindOf(err)), gin.H{
		"error": relay.MessageOf(err),
		"type":  string(relay.KindOf(err)),
	})
}
