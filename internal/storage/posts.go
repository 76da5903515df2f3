package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/verihealth/claimtrust/internal/core/domain"
)

// InsertPosts stores a batch of fetched posts. Re-fetched posts (same
// influencer, network, and local ID) are skipped, which keeps re-triggered
// pipeline runs idempotent.
func (db *DB) InsertPosts(ctx context.Context, posts []domain.Post) error {
	for i := range posts {
		post := &posts[i]

		var postedAt interface{}
		if !post.PostedAt.IsZero() {
			postedAt = post.PostedAt
		}

		err := db.Pool.QueryRow(ctx, `
			INSERT INTO posts (influencer_id, local_id, social_network, url, content, posted_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (influencer_id, social_network, local_id) DO UPDATE SET content = EXCLUDED.content
			RETURNING id
		`, post.InfluencerID, post.LocalID, post.SocialNetwork, post.URL, post.Content, postedAt).Scan(&post.ID)
		if err != nil {
			return fmt.Errorf("insert post: %w", err)
		}
	}

	return nil
}

// ListPostsForInfluencer returns an influencer's stored posts, oldest first.
func (db *DB) ListPostsForInfluencer(ctx context.Context, influencerID uuid.UUID) ([]domain.Post, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, influencer_id, local_id, social_network, url, content, COALESCE(posted_at, 'epoch'::timestamptz)
		FROM posts
		WHERE influencer_id = $1
		ORDER BY created_at, id
	`, influencerID)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []domain.Post

	for rows.Next() {
		var post domain.Post

		err := rows.Scan(
			&post.ID,
			&post.InfluencerID,
			&post.LocalID,
			&post.SocialNetwork,
			&post.URL,
			&post.Content,
			&post.PostedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}

		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}

	return posts, nil
}
