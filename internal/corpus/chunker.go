package corpus

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hyperjump/kotae/internal/models"
)

// DefaultMaxChunkChars bounds a single chunk's text length.
const DefaultMaxChunkChars = 1200

var (
	listPrefixRE    = regexp.MustCompile(`(?i)^\s*(\d+\.|-\s|\*\s|step\s*\d+\s*:)\s+`)
	sectionHeaderRE = regexp.MustCompile(`^\s*(\*\*[^*]+\*\*|[A-Z][A-Za-z ]+:)\s*$`)
	paragraphSepRE  = regexp.MustCompile(`\n\s*\n`)
	sentenceSepRE   = regexp.MustCompile(`(\.|!|\?)\s+`)
)

// ChunkDocument splits a document into chunks: section headers open a new
// section, list blocks become their own chunks so enumerated steps stay
// intact, and plain paragraphs aggregate up to maxChars. Chunk ids are
// "{doc_id}#{ordinal}" and deterministic for a given input.
func ChunkDocument(doc *models.Document, maxChars int) []*models.Chunk {
	if maxChars <= 0 {
		maxChars = DefaultMaxChunkChars
	}
	var chunks []*models.Chunk
	var buf []string
	section := ""

	emit := func(text, sec string) {
		text = strings.TrimSpace(text)
		if text == "" {
			return
		}
		chunks = append(chunks, &models.Chunk{
			ID:          fmt.Sprintf("%s#%03d", doc.ID, len(chunks)),
			DocID:       doc.ID,
			Title:       doc.Title,
			Text:        text,
			Source:      doc.Source,
			DocType:     doc.Type,
			Section:     sec,
			Tags:        doc.Tags,
			Version:     doc.Version,
			LastUpdated: doc.LastUpdated,
			Status:      doc.Status,
		})
	}

	flush := func() {
		if len(buf) == 0 {
			return
		}
		text := strings.Join(buf, "\n\n")
		buf = nil
		if len(text) <= maxChars {
			emit(text, section)
			return
		}
		for i, piece := range splitLong(text, maxChars) {
			sec := section
			if i > 0 {
				if sec == "" {
					sec = "section"
				}
				sec = fmt.Sprintf("%s (cont. %d)", sec, i+1)
			}
			emit(piece, sec)
		}
	}

	for _, para := range paragraphs(doc.Content) {
		switch {
		case sectionHeaderRE.MatchString(para):
			flush()
			section = cleanSectionTitle(para)
		case listPrefixRE.MatchString(para):
			// List blocks stand alone so steps never merge into prose.
			flush()
			emit(para, section)
		default:
			joined := 0
			for _, b := range buf {
				joined += len(b) + 2
			}
			if joined+len(para) > maxChars {
				flush()
			}
			buf = append(buf, para)
		}
	}
	flush()

	for i, c := range chunks {
		if c.Section == "" {
			c.Section = fmt.Sprintf("part %d", i+1)
		}
	}
	return chunks
}

// ChunkAll chunks every document in order.
func ChunkAll(docs []*models.Document, maxChars int) []*models.Chunk {
	var out []*models.Chunk
	for _, doc := range docs {
		out = append(out, ChunkDocument(doc, maxChars)...)
	}
	return out
}

func paragraphs(text string) []string {
	var out []string
	for _, p := range paragraphSepRE.Split(text, -1) {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func cleanSectionTitle(p string) string {
	p = strings.TrimSpace(p)
	if strings.HasPrefix(p, "**") && strings.HasSuffix(p, "**") {
		p = strings.Trim(p, "*")
	}
	return strings.TrimRight(p, ": ")
}

// splitLong breaks text on paragraph boundaries, then sentences, then hard
// cuts, so no piece exceeds maxChars.
func splitLong(text string, maxChars int) []string {
	var out []string
	var cur []string
	curLen := 0

	flushCur := func() {
		if len(cur) > 0 {
			out = append(out, strings.Join(cur, "\n\n"))
			cur = nil
			curLen = 0
		}
	}

	for _, part := range paragraphs(text) {
		if curLen+len(part)+2 <= maxChars {
			cur = append(cur, part)
			curLen += len(part) + 2
			continue
		}
		flushCur()
		if len(part) <= maxChars {
			out = append(out, part)
			continue
		}
		for _, piece := range splitBySentence(part, maxChars) {
			out = append(out, piece)
		}
	}
	flushCur()
	return out
}

func splitBySentence(text string, maxChars int) []string {
	var out []string
	var buf []string
	bufLen := 0

	flushBuf := func() {
		if len(buf) > 0 {
			out = append(out, strings.Join(buf, " "))
			buf = nil
			bufLen = 0
		}
	}

	for _, s := range splitKeepingTerminators(text) {
		if bufLen+len(s)+1 <= maxChars {
			buf = append(buf, s)
			bufLen += len(s) + 1
			continue
		}
		flushBuf()
		if len(s) <= maxChars {
			out = append(out, s)
			continue
		}
		for start := 0; start < len(s); start += maxChars {
			end := start + maxChars
			if end > len(s) {
				end = len(s)
			}
			out = append(out, s[start:end])
		}
	}
	flushBuf()
	return out
}

// splitKeepingTerminators splits text into sentences, keeping the terminal
// punctuation attached.
func splitKeepingTerminators(text string) []string {
	idxs := sentenceSepRE.FindAllStringIndex(text, -1)
	var out []string
	start := 0
	for _, loc := range idxs {
		// loc[0] is the terminator position; keep it with the sentence.
		if s := strings.TrimSpace(text[start : loc[0]+1]); s != "" {
			out = append(out, s)
		}
		start = loc[1]
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}
