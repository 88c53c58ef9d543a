package handlers

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gatewatch/gatewatch/internal/logger"
	"github.com/gatewatch/gatewatch/internal/plate"
	"github.com/gatewatch/gatewatch/internal/protocol/smsv1"
	"github.com/gatewatch/gatewatch/pkg/server/models"
	"github.com/gatewatch/gatewatch/pkg/server/store"
)

// SignatureHeader carries the webhook's HMAC signature.
const SignatureHeader = "X-Gateway-Signature"

// smsNamespace is the fixed UUID namespace for deriving passage client IDs
// from SMS bodies. The same body always derives the same client ID, which is
// what absorbs gateway redeliveries and later HTTP arrivals of the same
// capture. Never change this value.
var smsNamespace = uuid.MustParse("8d7c51f2-63aa-4a14-9de1-93a4dbb6f3c1")

// Acknowledgement texts sent back to the SMS side. Static on purpose:
// the reply travels over SMS to a field phone, so it stays short and leaks
// nothing about server internals.
const (
	ackRecorded = "GATEWATCH: passage recorded"
	ackFailed   = "GATEWATCH: message not accepted"
)

// SMSHandler handles the inbound SMS webhook.
//
// The gateway posts form-encoded deliveries with the sender number in From
// and the raw message text in Body, signed with a shared secret.
type SMSHandler struct {
	store store.Store

	// webhookURL is the full public URL of this endpoint as the gateway
	// sees it; it prefixes the signature input.
	webhookURL string

	// secret is the shared HMAC key for signature verification.
	secret string

	// clockSkew bounds how far in the future a message timestamp may lie.
	clockSkew time.Duration

	metrics Metrics
}

// NewSMSHandler creates a new SMSHandler. metrics may be nil.
func NewSMSHandler(s store.Store, webhookURL, secret string, clockSkew time.Duration, metrics Metrics) *SMSHandler {
	return &SMSHandler{
		store:      s,
		webhookURL: webhookURL,
		secret:     secret,
		clockSkew:  clockSkew,
		metrics:    metrics,
	}
}

// Receive handles POST /webhooks/sms.
//
// An unauthenticated delivery is refused with 403. Once the signature
// checks out the gateway always gets a 200 with a short plain-text
// acknowledgement; only a store failure produces a 5xx so the gateway
// redelivers. Decode and resolution failures are acknowledged with a
// generic failure text because the sender cannot fix them by retrying.
func (h *SMSHandler) Receive(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.observeWebhook("unauthorized")
		BadRequest(w, "Invalid form body")
		return
	}

	provided := r.Header.Get(SignatureHeader)
	if provided == "" || !h.validSignature(r.PostForm, provided) {
		h.observeWebhook("unauthorized")
		logger.WarnCtx(r.Context(), "SMS webhook signature rejected", "from", r.PostForm.Get("From"))
		Forbidden(w, "Invalid webhook signature")
		return
	}

	from := r.PostForm.Get("From")
	body := strings.TrimSpace(r.PostForm.Get("Body"))

	msg, err := smsv1.Decode(body, time.Now(), h.clockSkew)
	if err != nil {
		h.observeWebhook("rejected")
		logger.WarnCtx(r.Context(), "SMS message rejected at decode", "from", from, "error", err)
		h.ack(w, ackFailed)
		return
	}

	checkpost, err := h.store.GetCheckpostByCode(r.Context(), msg.CheckpostCode)
	if err != nil {
		if errors.Is(err, models.ErrCheckpostNotFound) {
			h.observeWebhook("rejected")
			logger.WarnCtx(r.Context(), "SMS message names unknown checkpost", "from", from, "checkpost_code", msg.CheckpostCode)
			h.ack(w, ackFailed)
			return
		}
		InternalServerError(w, "Failed to resolve checkpost")
		return
	}

	ranger, err := h.store.ResolveRangerByPhoneSuffix(r.Context(), msg.RangerPhoneSuffix)
	if err != nil {
		if errors.Is(err, models.ErrUnknownSender) || errors.Is(err, models.ErrAmbiguousSender) {
			h.observeWebhook("rejected")
			logger.WarnCtx(r.Context(), "SMS sender resolution failed",
				"from", from,
				"phone_suffix", msg.RangerPhoneSuffix,
				"error", err,
			)
			h.ack(w, ackFailed)
			return
		}
		InternalServerError(w, "Failed to resolve sender")
		return
	}

	passage := &models.Passage{
		ClientID:       uuid.NewHash(sha256.New(), smsNamespace, []byte(body), 5).String(),
		PlateNumber:    plate.Normalize(msg.PlateNumber),
		PlateNumberRaw: msg.PlateNumber,
		VehicleType:    string(msg.VehicleType),
		CheckpostID:    checkpost.ID,
		SegmentID:      checkpost.SegmentID,
		RecordedAt:     msg.RecordedAt,
		RangerID:       ranger.ID,
		Source:         string(models.SourceSMS),
	}

	result, err := h.store.InsertPassage(r.Context(), passage)
	if err != nil {
		if errors.Is(err, models.ErrFutureRecordedAt) {
			h.observeWebhook("rejected")
			observeIntakeResult(h.metrics, string(models.SourceSMS), "rejected", false, "", 0)
			h.ack(w, ackFailed)
			return
		}
		InternalServerError(w, "Failed to store passage")
		return
	}

	if result.Duplicate {
		h.observeWebhook("duplicate")
		observeIntakeResult(h.metrics, string(models.SourceSMS), "duplicate", false, "", 0)
	} else {
		h.observeWebhook("accepted")
		violationKind := ""
		if result.Violation != nil {
			violationKind = result.Violation.Kind
		}
		observeIntakeResult(h.metrics, string(models.SourceSMS), "created", result.Matched, violationKind, result.ResolvedAlerts)
		logger.InfoCtx(r.Context(), "Passage recorded from SMS",
			"plate", passage.PlateNumber,
			"checkpost", checkpost.Code,
			"ranger", ranger.Username,
			"matched", result.Matched,
		)
	}

	h.ack(w, ackRecorded)
}

// validSignature recomputes the expected signature and compares in constant
// time. The signature input is the public webhook URL followed by every form
// field concatenated as key+value in sorted key order.
func (h *SMSHandler) validSignature(form url.Values, provided string) bool {
	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var input strings.Builder
	input.WriteString(h.webhookURL)
	for _, k := range keys {
		input.WriteString(k)
		input.WriteString(form.Get(k))
	}

	mac := hmac.New(sha1.New, []byte(h.secret))
	mac.Write([]byte(input.String()))
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(provided))
}

// ack writes the plain-text acknowledgement the gateway relays back to the
// sender.
func (h *SMSHandler) ack(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}

func (h *SMSHandler) observeWebhook(outcome string) {
	if h.metrics != nil {
		h.metrics.ObserveSMSWebhook(outcome)
	}
}
