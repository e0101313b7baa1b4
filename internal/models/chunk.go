// Package models defines core data structures for chunks, queries, candidates, and answers.
package models

import "time"

// Source identifies where a chunk came from.
type Source string

const (
	// SourceDoc is official product documentation.
	SourceDoc Source = "doc"
	// SourceTicket is a customer support ticket.
	SourceTicket Source = "ticket"
)

// TicketStatus is the resolution state of a support ticket.
// Chunks with SourceDoc always carry StatusNone.
type TicketStatus string

const (
	// StatusResolved marks a ticket with a confirmed resolution.
	StatusResolved TicketStatus = "resolved"
	// StatusPending marks a ticket that is still open.
	StatusPending TicketStatus = "pending"
	// StatusNone applies to non-ticket chunks.
	StatusNone TicketStatus = "n/a"
)

// Chunk is a retrievable unit of corpus text with attached metadata.
// Chunks are immutable once indexed; re-indexing replaces the whole set.
type Chunk struct {
	// ID is unique across the corpus and embeds the parent document ID
	// plus an ordinal discriminator (e.g. "doc_001#002").
	ID          string       `json:"id"`
	DocID       string       `json:"doc_id"`
	Title       string       `json:"title"`
	Text        string       `json:"text"`
	Source      Source       `json:"source"`
	DocType     string       `json:"doc_type,omitempty"`
	Section     string       `json:"section,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
	Version     string       `json:"version,omitempty"`
	LastUpdated time.Time    `json:"last_updated,omitempty"`
	Status      TicketStatus `json:"status,omitempty"`
}

// PriorityRank returns the trust ordering of the chunk's source:
// 0 for docs, 1 for resolved tickets, 2 for pending (or unknown) tickets.
// Lower is more trusted.
func (c *Chunk) PriorityRank() int {
	if c.Source == SourceDoc {
		return 0
	}
	if c.Status == StatusResolved {
		return 1
	}
	return 2
}

// Citation renders the chunk's citation line. Missing section or version
// is rendered as "-".
func (c *Chunk) Citation() Citation {
	return Citation{
		Title:   c.Title,
		ChunkID: c.ID,
		DocID:   c.DocID,
		Section: c.Section,
		Version: c.Version,
	}
}
