package model

import "strings"

// Email is a single inbound enquiry to extract shipment details from.
type Email struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// FullText returns subject and body joined for whole-message scans.
// Dangerous-goods detection runs over this, not over a single winning
// source, so a signal present only in the losing source is never missed.
func (e Email) FullText() string {
	return strings.TrimSpace(e.Subject + " " + e.Body)
}
