package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/onokazu777/edinet-viewer/internal/cache"
)

const (
	// DefaultSearchLimit bounds text searches when no limit is given.
	DefaultSearchLimit = 50
	// MinSearchLimit and MaxSearchLimit clamp caller-provided limits.
	MinSearchLimit = 10
	MaxSearchLimit = 200
)

// TextBlockSections returns the distinct non-empty section labels present
// in the database, sorted. Used to populate the section filter.
func (s *Store) TextBlockSections(ctx context.Context) ([]string, error) {
	if !s.caps.HasTextBlocks {
		return nil, nil
	}
	return cache.Do(s.memo, "text_block_sections", listTTL, func() ([]string, error) {
		rows, err := s.query(ctx, `SELECT DISTINCT section_label
			FROM text_blocks
			WHERE section_label IS NOT NULL AND section_label != ''
			ORDER BY section_label`)
		if err != nil {
			return nil, fmt.Errorf("listing sections: %w", err)
		}
		defer rows.Close()

		var out []string
		for rows.Next() {
			var label string
			if err := rows.Scan(&label); err != nil {
				return nil, fmt.Errorf("scanning section label: %w", err)
			}
			out = append(out, label)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterating sections: %w", err)
		}
		return out, nil
	})
}

// CompanyTextBlocks returns every disclosure text block for one company,
// newest period first.
func (s *Store) CompanyTextBlocks(ctx context.Context, secCode string) ([]TextBlock, error) {
	if !s.caps.HasTextBlocks {
		return nil, nil
	}
	return s.scanTextBlocks(ctx, `SELECT
			doc_id, sec_code, filer_name,
			period_start, period_end,
			element_name, section_label,
			text_content
		FROM text_blocks
		WHERE sec_code = ?
		ORDER BY period_end DESC, element_name`, secCode)
}

// SearchTextBlocks applies the ANDed optional filters of q over all text
// blocks. An empty filter set is a valid browse-all query bounded by the
// limit. The keyword matches case-insensitively as a substring.
func (s *Store) SearchTextBlocks(ctx context.Context, q TextBlockQuery) ([]TextBlock, error) {
	if !s.caps.HasTextBlocks {
		return nil, nil
	}

	where := "1=1"
	var args []any
	if q.SecCode != "" {
		where += " AND sec_code = ?"
		args = append(args, q.SecCode)
	}
	if q.SectionLabel != "" {
		where += " AND section_label = ?"
		args = append(args, q.SectionLabel)
	}
	if q.Keyword != "" {
		where += " AND LOWER(text_content) LIKE LOWER(?)"
		args = append(args, "%"+q.Keyword+"%")
	}
	if q.PeriodEnd != "" {
		where += " AND period_end = ?"
		args = append(args, q.PeriodEnd)
	}
	args = append(args, clampLimit(q.Limit))

	return s.scanTextBlocks(ctx, `SELECT
			doc_id, sec_code, filer_name,
			period_start, period_end,
			element_name, section_label,
			text_content
		FROM text_blocks
		WHERE `+where+`
		ORDER BY period_end DESC, sec_code
		LIMIT ?`, args...)
}

// TextBlockByID returns one disclosure section identified by document
// and element name, for verbatim export. ErrNotFound when absent.
func (s *Store) TextBlockByID(ctx context.Context, docID, elementName string) (TextBlock, error) {
	if !s.caps.HasTextBlocks {
		return TextBlock{}, fmt.Errorf("text block %s/%s: %w", docID, elementName, ErrNotFound)
	}
	blocks, err := s.scanTextBlocks(ctx, `SELECT
			doc_id, sec_code, filer_name,
			period_start, period_end,
			element_name, section_label,
			text_content
		FROM text_blocks
		WHERE doc_id = ? AND element_name = ?
		LIMIT 1`, docID, elementName)
	if err != nil {
		return TextBlock{}, err
	}
	if len(blocks) == 0 {
		return TextBlock{}, fmt.Errorf("text block %s/%s: %w", docID, elementName, ErrNotFound)
	}
	return blocks[0], nil
}

func clampLimit(limit int) int {
	switch {
	case limit == 0:
		return DefaultSearchLimit
	case limit < MinSearchLimit:
		return MinSearchLimit
	case limit > MaxSearchLimit:
		return MaxSearchLimit
	}
	return limit
}

func (s *Store) scanTextBlocks(ctx context.Context, query string, args ...any) ([]TextBlock, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing text blocks: %w", err)
	}
	defer rows.Close()

	var out []TextBlock
	for rows.Next() {
		var (
			b                           TextBlock
			secCode, filer              sql.NullString
			pStart, pEnd, section, text sql.NullString
		)
		if err := rows.Scan(&b.DocID, &secCode, &filer, &pStart, &pEnd,
			&b.ElementName, &section, &text); err != nil {
			return nil, fmt.Errorf("scanning text block: %w", err)
		}
		b.SecCode = secCode.String
		b.FilerName = filer.String
		b.PeriodStart = pStart.String
		b.PeriodEnd = pEnd.String
		b.SectionLabel = section.String
		b.TextContent = text.String
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating text blocks: %w", err)
	}
	return out, nil
}
