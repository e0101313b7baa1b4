package models

import "time"

// Document is a corpus record before chunking: a product doc or a support ticket
// in the canonical shape produced by the loader.
type Document struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Type        string       `json:"type"`
	Version     string       `json:"version,omitempty"`
	LastUpdated time.Time    `json:"last_updated,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
	Content     string       `json:"content"`
	Source      Source       `json:"source"`
	Status      TicketStatus `json:"status,omitempty"`
	Priority    string       `json:"priority,omitempty"`
}
