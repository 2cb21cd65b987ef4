package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/frankcoz86/printora-backend/internal/relay"
	"github.com/frankcoz86/printora-backend/internal/stripe"
	"github.com/frankcoz86/printora-backend/internal/validate"
)

const (
	contactTimeout      = 15 * time.Second
	orderWebhookTimeout = 8 * time.Second
	notifyTimeout       = 8 * time.Second

	maxNameLen    = 200
	maxSubjectLen = 300
	maxMessageLen = 5000
)

func (s *Server) handleContact(c *gin.Context) {
	var payload struct {
		Name      string `json:"name"`
		Email     string `json:"email"`
		Subject   string `json:"subject"`
		Message   string `json:"message"`
		OrderCode string `json:"order_code"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid JSON body"})
		return
	}

	err := validate.FirstError(
		func() error { return validate.NonEmpty("name", payload.Name) },
		func() error { return validate.MaxLen("name", payload.Name, maxNameLen) },
		func() error { return validate.NonEmpty("email", payload.Email) },
		func() error { return validate.Email(payload.Email) },
		func() error { return validate.MaxLen("subject", payload.Subject, maxSubjectLen) },
		func() error { return validate.NonEmpty("message", payload.Message) },
		func() error { return validate.MaxLen("message", payload.Message, maxMessageLen) },
	)
	if err != nil {
		s.replyOKError(c, err)
		return
	}

	result, err := s.relay.Do(c.Request.Context(), relay.Request{
		URL: s.cfg.FormsWebhookURL,
		JSONBody: gin.H{
			"event":        "contact_message",
			"name":         payload.Name,
			"email":        payload.Email,
			"subject":      payload.Subject,
			"message":      payload.Message,
			"order_code":   payload.OrderCode,
			"submitted_at": time.Now().UTC().Format(time.RFC3339),
		},
		Timeout: contactTimeout,
	})
	if err != nil {
		s.replyOKError(c, err)
		return
	}
	if !result.Succeeded || result.Payload.StatesFailure() {
		msg := result.Payload.ErrorMessage()
		if msg == "" {
			msg = "the contact service could not accept the message"
		}
		s.replyOKError(c, relay.NewError(relay.KindUpstreamHTTP, "%s", msg))
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleOrderCreated(c *gin.Context) {
	var payload struct {
		OrderID string `json:"order_id"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	if err := validate.NonEmpty("order_id", payload.OrderID); err != nil {
		s.replyError(c, err)
		return
	}

	header := http.Header{}
	if s.cfg.RelaySecret == "" {
		// Forward anyway; the automation scenario filters unauthenticated calls.
		s.logger.Warn("relay secret not configured, forwarding order webhook without it", "order_id", payload.OrderID)
	} else {
		header.Set("X-Relay-Secret", s.cfg.RelaySecret)
	}

	result, err := s.relay.Do(c.Request.Context(), relay.Request{
		URL:      s.cfg.OrderWebhookURL,
		Header:   header,
		JSONBody: gin.H{"order_id": payload.OrderID},
		Timeout:  orderWebhookTimeout,
	})
	if err != nil {
		s.replyError(c, err)
		return
	}
	if !result.Succeeded {
		msg := result.Payload.ErrorMessage()
		if msg == "" {
			msg = fmt.Sprintf("order webhook returned status %d", result.StatusCode)
		}
		s.replyError(c, relay.NewError(relay.KindUpstreamHTTP, "%s", msg))
		return
	}

	var makeResponse any
	if result.Payload.Structured {
		makeResponse = result.Payload.JSON
	} else {
		makeResponse = result.Payload.Text
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":            true,
		"order_id":      payload.OrderID,
		"make_response": makeResponse,
	})
}

func (s *Server) handleUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field 'file' is required"})
		return
	}

	name := filepath.Base(fileHeader.Filename)
	if err := validate.Extension(name, s.cfg.AllowedExtensions()); err != nil {
		s.replyError(c, err)
		return
	}
	if err := validate.FileSize(fileHeader.Size, s.cfg.MaxUploadSizeMB); err != nil {
		s.replyError(c, err)
		return
	}
	if s.drive == nil || s.cfg.DriveUploadsFolderID == "" {
		s.replyError(c, relay.NewError(relay.KindConfiguration, "file storage is not configured"))
		return
	}

	staged := filepath.Join(os.TempDir(), uuid.NewString()+"-"+name)
	if err := c.SaveUploadedFile(fileHeader, staged); err != nil {
		s.logger.Error("could not stage upload", "name", name, "error", err)
		s.replyError(c, relay.NewError(relay.KindConfiguration, "could not stage the uploaded file"))
		return
	}
	defer func() {
		if err := os.Remove(staged); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("could not remove staged upload", "path", staged, "error", err)
		}
	}()

	mimeType := fileHeader.Header.Get("Content-Type")
	file, err := s.drive.UploadFile(c.Request.Context(), staged, name, mimeType, s.cfg.DriveUploadsFolderID)
	if err != nil {
		s.replyError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":          true,
		"driveFileId": file.ID,
		"webViewLink": file.WebViewLink,
		"name":        file.Name,
		"mimeType":    file.MimeType,
		"size":        file.Size,
	})
}

func (s *Server) handleCreateCheckoutSession(c *gin.Context) {
	var payload struct {
		Amount any `json:"amount"`
		Items  []struct {
			Name     string  `json:"name"`
			Quantity float64 `json:"quantity"`
		} `json:"items"`
		ShippingAddress    map[string]any    `json:"shippingAddress"`
		Metadata           map[string]string `json:"metadata"`
		PaymentMethodTypes []string          `json:"paymentMethodTypes"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		s.replyTypedError(c, relay.NewError(relay.KindValidation, "invalid JSON body"))
		return
	}

	amount, err := validate.Amount(payload.Amount)
	if err != nil {
		s.replyTypedError(c, err)
		return
	}

	metadata := map[string]string{}
	for k, v := range payload.Metadata {
		metadata[k] = v
	}
	if payload.ShippingAddress != nil {
		if encoded, err := json.Marshal(payload.ShippingAddress); err == nil {
			metadata["shipping_address"] = string(encoded)
		}
	}

	description := "Order total"
	if n := len(payload.Items); n > 0 {
		description = fmt.Sprintf("Printora order (%d items)", n)
	}

	session, err := s.stripe.CreateCheckoutSession(c.Request.Context(), stripe.CheckoutParams{
		Amount:             amount,
		Description:        description,
		Metadata:           metadata,
		PaymentMethodTypes: payload.PaymentMethodTypes,
		SuccessURL:         s.cfg.FrontendURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:          s.cfg.FrontendURL + "/checkout/cancelled",
	})
	if err != nil {
		s.replyTypedError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": session.ID, "url": session.URL})
}

func (s *Server) handleGetCheckoutSession(c *gin.Context) {
	session, err := s.stripe.GetCheckoutSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.replyError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":             session.ID,
		"status":         session.Status,
		"payment_status": session.PaymentStatus,
		"amount_total":   session.AmountTotal,
		"currency":       session.Currency,
		"customer_email": session.CustomerEmail,
		"line_items":     session.LineItems,
	})
}

func (s *Server) handleStripeWebhook(c *gin.Context) {
	// The raw body must stay unparsed until the signature verifies.
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.String(http.StatusBadRequest, "could not read request body")
		return
	}

	if s.cfg.StripeWebhookSecret == "" {
		s.logger.Warn("stripe webhook secret not configured, skipping signature verification")
	} else {
		err := stripe.VerifySignature(body, c.GetHeader("Stripe-Signature"), s.cfg.StripeWebhookSecret, stripe.DefaultTolerance, time.Now())
		if err != nil {
			c.String(http.StatusBadRequest, relay.MessageOf(err))
			return
		}
	}

	event, err := stripe.ParseEvent(body)
	if err != nil {
		c.String(http.StatusBadRequest, relay.MessageOf(err))
		return
	}

	if stripe.IsPaymentFailure(event.Type) {
		// Best-effort notice; never blocks or fails the acknowledgment.
		go s.notifyPaymentFailure(event)
	} else {
		s.logger.Info("stripe event acknowledged", "type", event.Type, "id", event.ID)
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// notifyPaymentFailure forwards a normalized failure notice to the forms
// endpoint. Failures here are logged and go nowhere else.
func (s *Server) notifyPaymentFailure(event *stripe.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout+time.Second)
	defer cancel()

	var object struct {
		ID            string `json:"id"`
		CustomerEmail string `json:"customer_email"`
		AmountTotal   int64  `json:"amount_total"`
	}
	_ = json.Unmarshal(event.Data.Object, &object)

	_, err := s.relay.Do(ctx, relay.Request{
		URL: s.cfg.FormsWebhookURL,
		JSONBody: gin.H{
			"event":          "payment_failure",
			"failure_type":   event.Type,
			"object_id":      object.ID,
			"customer_email": object.CustomerEmail,
			"amount_total":   object.AmountTotal,
		},
		Timeout: notifyTimeout,
	})
	if err != nil {
		s.logger.Error("payment failure notice not delivered", "type", event.Type, "error", err)
		return
	}
	s.logger.Info("payment failure notice delivered", "type", event.Type, "object_id", object.ID)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":                   "ok",
		"stripe_configured":        s.cfg.StripeConfigured(),
		"drive_configured":         s.cfg.DriveConfigured(),
		"forms_webhook_configured": s.cfg.FormsConfigured(),
		"order_webhook_configured": s.cfg.OrderWebhookConfigured(),
	})
}
