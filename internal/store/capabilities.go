package store

import (
	"context"
	"fmt"
)

// Capabilities describes which optional tables and views the connected
// database provides. It is resolved once at Open; queries against absent
// optional relations degrade to empty results instead of probing the
// schema through failed statements.
type Capabilities struct {
	HasDocuments         bool `json:"has_documents"`
	HasFinancials        bool `json:"has_financials"`
	HasKeyFinancials     bool `json:"has_key_financials"`
	HasKeyFinancialsView bool `json:"has_key_financials_view"`
	HasTextBlocks        bool `json:"has_text_blocks"`
}

func resolveCapabilities(ctx context.Context, s *Store) (Capabilities, error) {
	var query string
	switch s.dialect {
	case DialectPostgres:
		query = `SELECT table_name FROM information_schema.tables
			WHERE table_schema = current_schema()`
	default:
		query = `SELECT name FROM sqlite_master WHERE type IN ('table', 'view')`
	}

	rows, err := s.query(ctx, query)
	if err != nil {
		return Capabilities{}, fmt.Errorf("listing relations: %w", err)
	}
	defer rows.Close()

	var caps Capabilities
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return Capabilities{}, fmt.Errorf("scanning relation name: %w", err)
		}
		switch name {
		case "documents":
			caps.HasDocuments = true
		case "financials":
			caps.HasFinancials = true
		case "key_financials":
			caps.HasKeyFinancials = true
		case "v_key_financials":
			caps.HasKeyFinancialsView = true
		case "text_blocks":
			caps.HasTextBlocks = true
		}
	}
	if err := rows.Err(); err != nil {
		return Capabilities{}, fmt.Errorf("iterating relations: %w", err)
	}

	if !caps.HasDocuments {
		return Capabilities{}, fmt.Errorf("documents table missing: %w", ErrStorageUnavailable)
	}
	return caps, nil
}
