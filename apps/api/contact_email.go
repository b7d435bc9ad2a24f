package main

import (
	"fmt"
	"html"
	"time"

	"solsniper/libs/mailer"
)

const contactTimestampLayout = "Jan 2, 2006, 3:04:05 PM MST"

type ContactSubmission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// complete reports whether every field is present. Values are not trimmed.
func (s ContactSubmission) complete() bool {
	return s.Name != "" && s.Email != "" && s.Message != ""
}

func buildContactEmail(sub ContactSubmission, recipient string, submittedAt time.Time) mailer.Message {
	stamp := submittedAt.Format(contactTimestampLayout)

	body := fmt.Sprintf(`
		<h2>New Contact Form Submission</h2>
		<p><strong>Name:</strong> %s</p>
		<p><strong>Email:</strong> %s</p>
		<p><strong>Message:</strong> %s</p>
		<p><strong>Date:</strong> %s</p>
	`,
		html.EscapeString(sub.Name),
		html.EscapeString(sub.Email),
		html.EscapeString(sub.Message),
		stamp,
	)

	text := fmt.Sprintf(
		"New Contact Form Submission\n\nName: %s\nEmail: %s\nMessage: %s\nDate: %s\n",
		sub.Name, sub.Email, sub.Message, stamp,
	)

	return mailer.Message{
		To:      []string{recipient},
		ReplyTo: sub.Email,
		Subject: fmt.Sprintf("New Contact Form Submission from %s", sub.Name),
		HTML:    body,
		Text:    text,
	}
}
