package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	contactMissingFieldsMessage = "All fields are required"
	contactSendFailedMessage    = "Failed to send message"
	contactSentMessage          = "Message sent successfully!"
)

// contactHandler relays one submission to the mailer.
// Method: POST /api/contact
// Access: Public, rate limited per client address
func (a *App) contactHandler(c *gin.Context) {
	var sub ContactSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		a.log.Info("contact form body rejected", "ip", c.ClientIP(), "err", err)
		sub = ContactSubmission{}
	}

	if !sub.complete() {
		writeAPIError(c, &apiError{Status: http.StatusBadRequest, Message: contactMissingFieldsMessage})
		return
	}

	submissionID := uuid.NewString()
	msg := buildContactEmail(sub, a.cfg.ContactRecipient, a.now())

	ctx, cancel := context.WithTimeout(c.Request.Context(), a.cfg.MailSendTimeout)
	defer cancel()

	result, err := a.mailer.Send(ctx, msg)
	if err != nil {
		a.log.Error("contact form relay failed",
			"submission_id", submissionID,
			"provider", a.mailer.ProviderName(),
			"err", err,
		)
		writeAPIError(c, &apiError{Status: http.StatusInternalServerError, Message: contactSendFailedMessage})
		return
	}

	a.log.Info("contact form relayed",
		"submission_id", submissionID,
		"provider", a.mailer.ProviderName(),
		"provider_message_id", result.ProviderMessageID,
	)
	c.JSON(http.StatusOK, gin.H{"message": contactSentMessage})
}
