package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/verihealth/claimtrust/internal/core/domain"
	apperrors "github.com/verihealth/claimtrust/internal/core/errors"
)

const influencerColumns = `id, name, slug, social_profiles, registration, created_at`

// InsertInfluencer stores a new influencer profile and fills in its
// generated ID and creation timestamp.
func (db *DB) InsertInfluencer(ctx context.Context, profile *domain.InfluencerProfile) error {
	profiles, err := json.Marshal(profile.SocialProfiles)
	if err != nil {
		return fmt.Errorf("marshal social profiles: %w", err)
	}

	registration, err := json.Marshal(profile.Registration)
	if err != nil {
		return fmt.Errorf("marshal registration: %w", err)
	}

	err = db.Pool.QueryRow(ctx, `
		INSERT INTO influencers (name, slug, social_profiles, registration)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, profile.Name, profile.Slug, profiles, registration).Scan(&profile.ID, &profile.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert influencer: %w", err)
	}

	return nil
}

// GetInfluencer fetches an influencer by ID.
func (db *DB) GetInfluencer(ctx context.Context, id uuid.UUID) (*domain.InfluencerProfile, error) {
	row := db.Pool.QueryRow(ctx, `SELECT `+influencerColumns+` FROM influencers WHERE id = $1`, id)

	return scanInfluencer(row)
}

// GetInfluencerBySlug fetches an influencer by slug.
func (db *DB) GetInfluencerBySlug(ctx context.Context, slug string) (*domain.InfluencerProfile, error) {
	row := db.Pool.QueryRow(ctx, `SELECT `+influencerColumns+` FROM influencers WHERE slug = $1`, slug)

	return scanInfluencer(row)
}

// ListInfluencers returns influencers, optionally filtered by a name
// substring.
func (db *DB) ListInfluencers(ctx context.Context, nameFilter string) ([]domain.InfluencerProfile, error) {
	query := `SELECT ` + influencerColumns + ` FROM influencers`

	args := []interface{}{}

	if nameFilter != "" {
		query += ` WHERE name ILIKE '%' || $1 || '%'`

		args = append(args, nameFilter)
	}

	query += ` ORDER BY created_at`

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list influencers: %w", err)
	}
	defer rows.Close()

	var profiles []domain.InfluencerProfile

	for rows.Next() {
		profile, err := scanInfluencerRow(rows)
		if err != nil {
			return nil, err
		}

		profiles = append(profiles, *profile)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate influencers: %w", err)
	}

	return profiles, nil
}

// UpdateRegistration persists the registration sub-record.
func (db *DB) UpdateRegistration(ctx context.Context, id uuid.UUID, registration domain.Registration) error {
	payload, err := json.Marshal(registration)
	if err != nil {
		return fmt.Errorf("marshal registration: %w", err)
	}

	tag, err := db.Pool.Exec(ctx, `UPDATE influencers SET registration = $2 WHERE id = $1`, id, payload)
	if err != nil {
		return fmt.Errorf("update registration: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: influencer %s", apperrors.ErrNotFound, id)
	}

	return nil
}

// DeleteInfluencer removes an influencer and, via cascade, its posts.
func (db *DB) DeleteInfluencer(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM influencers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete influencer: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: influencer %s", apperrors.ErrNotFound, id)
	}

	return nil
}

func scanInfluencer(row pgx.Row) (*domain.InfluencerProfile, error) {
	profile, err := scanInfluencerRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}

		return nil, err
	}

	return profile, nil
}

func scanInfluencerRow(row rowScanner) (*domain.InfluencerProfile, error) {
	var (
		profile      domain.InfluencerProfile
		profilesJSON []byte
		regJSON      []byte
	)

	err := row.Scan(
		&profile.ID,
		&profile.Name,
		&profile.Slug,
		&profilesJSON,
		&regJSON,
		&profile.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // callers translate ErrNoRows
		}

		return nil, fmt.Errorf("scan influencer: %w", err)
	}

	profile.SocialProfiles = map[string]string{}
	if len(profilesJSON) > 0 {
		if err := json.Unmarshal(profilesJSON, &profile.SocialProfiles); err != nil {
			return nil, fmt.Errorf("unmarshal social profiles: %w", err)
		}
	}

	if len(regJSON) > 0 {
		if err := json.Unmarshal(regJSON, &profile.Registration); err != nil {
			return nil, fmt.Errorf("unmarshal registration: %w", err)
		}
	}

	return &profile, nil
}
