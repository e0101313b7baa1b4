// Package corpus loads the support dataset, chunks it, and builds immutable
// searchable snapshots.
package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/version"
)

// Dataset file basenames inside the corpus directory.
const (
	ProductDocsFile    = "product_docs.json"
	SupportTicketsFile = "support_tickets.json"
)

type productDocRecord struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Type        string   `json:"type"`
	Version     string   `json:"version"`
	LastUpdated string   `json:"last_updated"`
	Tags        []string `json:"tags"`
	Content     string   `json:"content"`
}

type supportTicketRecord struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Category     string   `json:"category"`
	UserVersion  string   `json:"user_version"`
	CreatedDate  string   `json:"created_date"`
	ResolvedDate string   `json:"resolved_date"`
	Status       string   `json:"status"`
	Priority     string   `json:"priority"`
	Tags         []string `json:"tags"`
	Content      string   `json:"content"`
}

type productDocsFile struct {
	ProductDocs []productDocRecord `json:"product_docs"`
}

type supportTicketsFile struct {
	SupportTickets []supportTicketRecord `json:"support_tickets"`
}

// LoadProductDocs reads product documentation records from path.
func LoadProductDocs(path string) ([]*models.Document, error) {
	var file productDocsFile
	if err := readJSON(path, &file); err != nil {
		return nil, err
	}
	docs := make([]*models.Document, 0, len(file.ProductDocs))
	for _, rec := range file.ProductDocs {
		docs = append(docs, &models.Document{
			ID:          rec.ID,
			Title:       rec.Title,
			Type:        rec.Type,
			Version:     version.Normalize(rec.Version),
			LastUpdated: parseDate(rec.LastUpdated),
			Tags:        rec.Tags,
			Content:     rec.Content,
			Source:      models.SourceDoc,
			Status:      models.StatusNone,
		})
	}
	return docs, nil
}

// LoadSupportTickets reads support ticket records from path and maps them into
// the shared document shape. A resolved date takes precedence over the created
// date for recency purposes.
func LoadSupportTickets(path string) ([]*models.Document, error) {
	var file supportTicketsFile
	if err := readJSON(path, &file); err != nil {
		return nil, err
	}
	docs := make([]*models.Document, 0, len(file.SupportTickets))
	for _, rec := range file.SupportTickets {
		updated := rec.ResolvedDate
		if updated == "" {
			updated = rec.CreatedDate
		}
		docs = append(docs, &models.Document{
			ID:          rec.ID,
			Title:       rec.Title,
			Type:        rec.Category,
			Version:     version.Normalize(rec.UserVersion),
			LastUpdated: parseDate(updated),
			Tags:        rec.Tags,
			Content:     rec.Content,
			Source:      models.SourceTicket,
			Status:      ticketStatus(rec.Status),
			Priority:    rec.Priority,
		})
	}
	return docs, nil
}

// LoadAll reads both dataset files from dir. Docs come first so chunk
// insertion order, and with it lexical tie-breaking, favors documentation.
func LoadAll(dir string) ([]*models.Document, error) {
	docs, err := LoadProductDocs(filepath.Join(dir, ProductDocsFile))
	if err != nil {
		return nil, err
	}
	tickets, err := LoadSupportTickets(filepath.Join(dir, SupportTicketsFile))
	if err != nil {
		return nil, err
	}
	return append(docs, tickets...), nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read dataset file: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

func ticketStatus(s string) models.TicketStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "resolved":
		return models.StatusResolved
	case "pending", "open", "investigating":
		return models.StatusPending
	default:
		return models.StatusNone
	}
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006/01/02"}

// parseDate tries the known dataset layouts. Unparseable or empty dates yield
// the zero time, which downstream treats as "age unknown".
func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
