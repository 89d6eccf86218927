package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/socialvote/socialvote/internal/model"
)

// ErrPostNotFound is returned when no post matches the given id.
var ErrPostNotFound = errors.New("post not found")

// PostFilter defines filters for listing posts. Limit and Offset are
// expected to be normalized by the caller.
type PostFilter struct {
	Search string
	Limit  int
	Offset int
}

// postSelect joins the owner and aggregates votes so a post is always
// returned with its author and score in one round trip.
const postSelect = `
	SELECT p.id, p.title, p.content, p.published, p.owner_id, p.created_at,
	       u.id, u.email, u.created_at,
	       COUNT(v.post_id), COALESCE(SUM(v.vote_dir), 0)
	FROM posts p
	JOIN users u ON u.id = p.owner_id
	LEFT JOIN votes v ON v.post_id = p.id
`

// CreatePost inserts a new post. A missing owner yields ErrUserNotFound.
func (r *Repository) CreatePost(ctx context.Context, post *model.Post) error {
	query := `
		INSERT INTO posts (id, title, content, published, owner_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		post.ID,
		post.Title,
		post.Content,
		post.Published,
		post.OwnerID,
		post.CreatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to create post: %w", err)
	}

	return nil
}

// GetPostByID retrieves a post with its owner and vote aggregates.
func (r *Repository) GetPostByID(ctx context.Context, id string) (*model.Post, error) {
	query := postSelect + `
		WHERE p.id = $1
		GROUP BY p.id, u.id
	`

	post, err := scanPost(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post by ID: %w", err)
	}

	return post, nil
}

// ListPosts returns posts newest first, optionally filtered by a
// case-insensitive title substring.
func (r *Repository) ListPosts(ctx context.Context, filter PostFilter) ([]*model.Post, error) {
	query := postSelect + `WHERE 1 = 1`
	args := []any{}
	argIndex := 1

	if filter.Search != "" {
		query += fmt.Sprintf(" AND p.title ILIKE $%d ESCAPE '\\'", argIndex)
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		argIndex++
	}

	query += " GROUP BY p.id, u.id"
	query += fmt.Sprintf(" ORDER BY p.created_at DESC, p.id DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]*model.Post, 0, filter.Limit)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}

	return posts, nil
}

// UpdatePost replaces a post's mutable fields.
func (r *Repository) UpdatePost(ctx context.Context, post *model.Post) error {
	query := `
		UPDATE posts
		SET title = $2, content = $3, published = $4
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		post.ID,
		post.Title,
		post.Content,
		post.Published,
	)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrPostNotFound
	}

	return nil
}

// DeletePost removes a post. Its votes are removed by cascade.
func (r *Repository) DeletePost(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrPostNotFound
	}

	return nil
}

func scanPost(row pgx.Row) (*model.Post, error) {
	var post model.Post
	var owner model.User
	err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Content,
		&post.Published,
		&post.OwnerID,
		&post.CreatedAt,
		&owner.ID,
		&owner.Email,
		&owner.CreatedAt,
		&post.VoteCount,
		&post.Score,
	)
	post.Owner = &owner
	return &post, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
