package postgres

import (
	"context"

	"github.com/clipstream/clipstream/internal/model"
	"github.com/gofrs/uuid/v5"
)

// VideoRepo implements VideoRepository using PostgreSQL.
type VideoRepo struct{ db *DB }

// NewVideoRepo constructs a video repository.
func NewVideoRepo(db *DB) *VideoRepo { return &VideoRepo{db: db} }

// WatchHistory joins the user's ordered watch references to videos and each
// video's owner in one query, avoiding per-item lookups.
func (r *VideoRepo) WatchHistory(ctx context.Context, userID uuid.UUID) ([]model.WatchItem, error) {
	const q = `
SELECT v.id, v.title, v.video_url, v.thumbnail_url, v.duration, v.views,
       o.id, o.username, o.full_name, o.avatar_url,
       w.watched_at
FROM watch_history w
JOIN videos v ON v.id = w.video_id
JOIN users o ON o.id = v.owner_id
WHERE w.user_id = $1
ORDER BY w.position`
	rows, err := r.db.Pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.WatchItem, 0)
	for rows.Next() {
		var it model.WatchItem
		if err := rows.Scan(
			&it.ID, &it.Title, &it.VideoURL, &it.ThumbnailURL, &it.Duration, &it.Views,
			&it.Owner.ID, &it.Owner.Username, &it.Owner.FullName, &it.Owner.AvatarURL,
			&it.WatchedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
