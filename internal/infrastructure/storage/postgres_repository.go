package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"VulnMatcher/internal/domain"
	"VulnMatcher/internal/ports"
)

// PostgresRepository archives executed pattern-match queries so repeated
// hypotheses can be spotted and past runs audited.
type PostgresRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.MatchRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// SeenBefore reports whether the exact description was queried previously.
func (r *PostgresRepository) SeenBefore(ctx context.Context, description string) (bool, error) {
	if r.db == nil {
		return false, nil
	}

	query, args, err := r.builder.
		Select("1").
		From("query_history").
		Where(sq.Eq{"description": description}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var one int
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query history: %w", err)
	}
	return true, nil
}

// RecordQuery inserts the trace of one executed query.
func (r *PostgresRepository) RecordQuery(ctx context.Context, rec domain.QueryRecord) error {
	if r.db == nil {
		return nil
	}

	query, args, err := r.builder.
		Insert("query_history").
		Columns("id", "description", "tags", "match_count", "top_relevance", "top_finding_id").
		Values(
			rec.ID,
			rec.Description,
			pq.StringArray(rec.Tags),
			rec.MatchCount,
			rec.TopRelevance,
			rec.TopFindingID,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}
