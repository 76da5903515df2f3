package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/verihealth/claimtrust/internal/core/domain"
	apperrors "github.com/verihealth/claimtrust/internal/core/errors"
)

const claimColumns = `id, normalized_claim, categories, sources, verification_status, score, articles_found, created_at`

// InsertClaim stores a new claim and fills in its generated ID and
// creation timestamp. The embedding, when present, is persisted for
// future coarse similarity pre-filtering.
func (db *DB) InsertClaim(ctx context.Context, claim *domain.Claim) error {
	sources, err := json.Marshal(claim.Sources)
	if err != nil {
		return fmt.Errorf("marshal claim sources: %w", err)
	}

	var embedding interface{}
	if len(claim.Embedding) > 0 {
		embedding = pgvector.NewVector(claim.Embedding)
	}

	err = db.Pool.QueryRow(ctx, `
		INSERT INTO claims (normalized_claim, categories, sources, verification_status, score, articles_found, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, claim.NormalizedClaim, claim.Categories, sources, claim.VerificationStatus,
		claim.Score, claim.ArticlesFound, embedding,
	).Scan(&claim.ID, &claim.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert claim: %w", err)
	}

	return nil
}

// GetClaim fetches a claim by ID.
func (db *DB) GetClaim(ctx context.Context, id uuid.UUID) (*domain.Claim, error) {
	row := db.Pool.QueryRow(ctx, `SELECT `+claimColumns+` FROM claims WHERE id = $1`, id)

	return scanClaim(row)
}

// GetClaimByNormalized fetches a claim by its normalized text.
func (db *DB) GetClaimByNormalized(ctx context.Context, normalized string) (*domain.Claim, error) {
	row := db.Pool.QueryRow(ctx, `SELECT `+claimColumns+` FROM claims WHERE normalized_claim = $1`, normalized)

	return scanClaim(row)
}

// ListClaims returns all claims in insertion order. Dedup scans existing
// claims in this order, which makes the earliest-inserted claim win ties.
func (db *DB) ListClaims(ctx context.Context) ([]domain.Claim, error) {
	rows, err := db.Pool.Query(ctx, `SELECT `+claimColumns+` FROM claims ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}

	return collectClaims(rows)
}

// FilterClaims returns claims containing at least one of the text terms
// (case insensitively) and all of the given categories. Empty filters
// match everything.
func (db *DB) FilterClaims(ctx context.Context, textTerms []string, categories []string) ([]domain.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE TRUE`

	args := []interface{}{}

	if len(textTerms) > 0 {
		patterns := make([]string, 0, len(textTerms))
		for _, term := range textTerms {
			patterns = append(patterns, "%"+term+"%")
		}

		args = append(args, patterns)
		query += fmt.Sprintf(" AND normalized_claim ILIKE ANY($%d)", len(args))
	}

	if len(categories) > 0 {
		args = append(args, categories)
		query += fmt.Sprintf(" AND categories @> $%d", len(args))
	}

	query += " ORDER BY created_at, id"

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("filter claims: %w", err)
	}

	return collectClaims(rows)
}

// ListUnverifiedClaims returns claims awaiting verification, in insertion
// order. Verification runs process claims strictly in this order.
func (db *DB) ListUnverifiedClaims(ctx context.Context) ([]domain.Claim, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT `+claimColumns+` FROM claims
		WHERE verification_status = $1
		ORDER BY created_at, id
	`, domain.StatusUnverified)
	if err != nil {
		return nil, fmt.Errorf("list unverified claims: %w", err)
	}

	return collectClaims(rows)
}

// CountUnverifiedClaims returns the verification backlog size.
func (db *DB) CountUnverifiedClaims(ctx context.Context) (int, error) {
	var count int

	err := db.Pool.QueryRow(ctx, `SELECT count(*) FROM claims WHERE verification_status = $1`,
		domain.StatusUnverified).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unverified claims: %w", err)
	}

	return count, nil
}

// UpdateClaimSources overwrites a claim's source attribution map.
func (db *DB) UpdateClaimSources(ctx context.Context, id uuid.UUID, sources map[string]domain.ClaimSource) error {
	payload, err := json.Marshal(sources)
	if err != nil {
		return fmt.Errorf("marshal claim sources: %w", err)
	}

	tag, err := db.Pool.Exec(ctx, `UPDATE claims SET sources = $2 WHERE id = $1`, id, payload)
	if err != nil {
		return fmt.Errorf("update claim sources: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: claim %s", apperrors.ErrNotFound, id)
	}

	return nil
}

// UpdateClaimVerification finalizes a verification pass over one claim.
func (db *DB) UpdateClaimVerification(ctx context.Context, id uuid.UUID, score *float64, articlesFound int) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE claims
		SET score = $2, verification_status = $3, articles_found = $4
		WHERE id = $1
	`, id, score, domain.StatusVerified, articlesFound)
	if err != nil {
		return fmt.Errorf("update claim verification: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: claim %s", apperrors.ErrNotFound, id)
	}

	return nil
}

// DeleteClaim removes a claim. Deleting is an operator action only; the
// pipeline itself never deletes claims.
func (db *DB) DeleteClaim(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM claims WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete claim: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: claim %s", apperrors.ErrNotFound, id)
	}

	return nil
}

func collectClaims(rows pgx.Rows) ([]domain.Claim, error) {
	defer rows.Close()

	var claims []domain.Claim

	for rows.Next() {
		claim, err := scanClaimRow(rows)
		if err != nil {
			return nil, err
		}

		claims = append(claims, *claim)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate claims: %w", err)
	}

	return claims, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanClaim(row pgx.Row) (*domain.Claim, error) {
	claim, err := scanClaimRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}

		return nil, err
	}

	return claim, nil
}

func scanClaimRow(row rowScanner) (*domain.Claim, error) {
	var (
		claim   domain.Claim
		sources []byte
	)

	err := row.Scan(
		&claim.ID,
		&claim.NormalizedClaim,
		&claim.Categories,
		&sources,
		&claim.VerificationStatus,
		&claim.Score,
		&claim.ArticlesFound,
		&claim.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // callers translate ErrNoRows
		}

		return nil, fmt.Errorf("scan claim: %w", err)
	}

	claim.Sources = map[string]domain.ClaimSource{}
	if len(sources) > 0 {
		if err := json.Unmarshal(sources, &claim.Sources); err != nil {
			return nil, fmt.Errorf("unmarshal claim sources: %w", err)
		}
	}

	return &claim, nil
}
