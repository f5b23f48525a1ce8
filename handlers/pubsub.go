package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/finance_backend/config"
	"github.com/mmdatafocus/finance_backend/utils"
	"github.com/mmdatafocus/finance_backend/workflow"
	"github.com/sirupsen/logrus"
)

// pushEnvelope is the body Pub/Sub push subscriptions POST.
type pushEnvelope struct {
	Message struct {
		Data []byte `json:"data,omitempty"`
		ID   string `json:"id"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// pushTokenValid checks the optional PUBSUB_PUSH_TOKEN shared secret passed as ?token=.
func pushTokenValid(c *gin.Context) bool {
	expected := strings.TrimSpace(os.Getenv("PUBSUB_PUSH_TOKEN"))
	if expected == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(c.Query("token")), []byte(expected)) == 1
}

// pubSubPushHandler runs the workflow for one pushed outbox message.
// Malformed messages are acked with 204 so they are not redelivered forever;
// processing failures answer 500 so Pub/Sub retries.
func pubSubPushHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()
		if !pushTokenValid(c) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			config.LogError(logger, "pubsub.go", "pubSubPushHandler", "io.ReadAll", nil, err)
			c.Status(http.StatusNoContent)
			return
		}
		var envelope pushEnvelope
		// byte slice unmarshalling handles base64 decoding.
		if err := json.Unmarshal(body, &envelope); err != nil {
			config.LogError(logger, "pubsub.go", "pubSubPushHandler", "Unmarshal body", string(body), err)
			c.Status(http.StatusNoContent)
			return
		}
		var m config.PubSubMessage
		if err := json.Unmarshal(envelope.Message.Data, &m); err != nil {
			config.LogError(logger, "pubsub.go", "pubSubPushHandler", "Unmarshal pubsub message", string(envelope.Message.Data), err)
			c.Status(http.StatusNoContent)
			return
		}
		if m.BaseId == "" || m.ReferenceType == "" {
			config.LogError(logger, "pubsub.go", "pubSubPushHandler", "invalid pubsub message", m, errors.New("base_id/reference_type required"))
			c.Status(http.StatusNoContent)
			return
		}

		if m.CorrelationId == "" {
			m.CorrelationId = envelope.Message.ID
		}
		ctx := utils.SetCorrelationIdInContext(c.Request.Context(), m.CorrelationId)
		if err := workflow.ProcessMessage(ctx, logger, m); err != nil {
			logger.WithFields(logrus.Fields{
				"field":          "pubSubPushHandler",
				"base_id":        m.BaseId,
				"reference_type": m.ReferenceType,
				"reference_id":   m.ReferenceId,
				"message_id":     envelope.Message.ID,
				"correlation_id": m.CorrelationId,
			}).Error("pubsub processing failed: " + err.Error())
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
