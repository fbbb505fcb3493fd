package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/itfy/evoting/internal/payment/gateway/paystack"
)

func (s *Server) HandlePaystackWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	signature := c.GetHeader(paystack.SignatureHeader)
	if err := s.webhookSvc.Ingest(c.Request.Context(), payload, signature); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
