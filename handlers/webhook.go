package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clubvoice/config"
	"clubvoice/models"
	"clubvoice/services/callsession"
	"clubvoice/utils"
)

var errMissingEnvelopeFields = errors.New("event_kind, call_id and event_id are required")

// SignatureHeader carries the hex HMAC-SHA256 of the raw request body.
const SignatureHeader = "X-Webhook-Signature"

// VoiceWebhookHandler is the single inbound endpoint for voice-provider
// events. Any structurally valid event is acknowledged with 2xx, even
// when it reports a handled business error; only malformed envelopes
// and bad signatures are rejected.
func (hb *HandlerBundle) VoiceWebhookHandler(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "failed to read request body", err.Error())
		return
	}

	if config.IsProduction() || config.AppConfig.WebhookSecret != "" {
		if !verifySignature(raw, c.GetHeader(SignatureHeader), config.AppConfig.WebhookSecret) {
			utils.JSONError(c, http.StatusUnauthorized, "invalid webhook signature", "")
			return
		}
	}

	evt, err := decodeEvent(raw)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid event envelope", err.Error())
		return
	}

	result, err := hb.Sessions.HandleEvent(c.Request.Context(), evt)
	if err != nil {
		if ue, ok := callsession.IsUnknownCall(err); ok {
			utils.GetLogger().Warn("event for unknown call acknowledged",
				zap.String("callID", ue.CallID), zap.String("kind", ue.Kind))
			c.JSON(http.StatusOK, gin.H{"status": "ignored", "reason": ue.Error()})
			return
		}
		utils.GetLogger().Error("webhook event processing failed",
			zap.String("callID", evt.CallID), zap.String("kind", evt.Kind), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "event processing failed"})
		return
	}

	// For function.called the result payload is relayed live to the
	// assistant as the function's return value.
	c.JSON(http.StatusOK, result)
}

func decodeEvent(raw []byte) (*models.WebhookEvent, error) {
	var evt models.WebhookEvent
	if err := json.Unmarshal(raw, &evt); err != nil {
		return nil, err
	}
	if evt.Kind == "" || evt.CallID == "" || evt.EventID == "" {
		return nil, errMissingEnvelopeFields
	}
	return &evt, nil
}

func verifySignature(body []byte, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
