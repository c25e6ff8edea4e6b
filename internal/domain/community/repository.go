package community

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/zephy/zephy-api/internal/pkg/database"
)

// Repository defines post and reply data access
type Repository interface {
	CreatePost(ctx context.Context, post *Post) error
	GetPost(ctx context.Context, id uuid.UUID) (*Post, error)
	ListPosts(ctx context.Context, filter ListFilter) ([]*Post, error)
	CreateReply(ctx context.Context, reply *Reply) error
	GetReply(ctx context.Context, postID, replyID uuid.UUID) (*Reply, error)
	ListReplies(ctx context.Context, postID uuid.UUID) ([]*Reply, error)
	// RunReactionTx runs fn in one transaction; any error rolls it back.
	RunReactionTx(ctx context.Context, fn func(tx ReactionTx) error) error
}

// ReactionTx is the transactional view used by reaction toggles
type ReactionTx interface {
	// LockTarget locks the parent row and reports whether it exists.
	LockTarget(ctx context.Context, target TargetType, id uuid.UUID) (bool, error)
	HasReaction(ctx context.Context, target TargetType, id, userID uuid.UUID, kind string) (bool, error)
	AddReaction(ctx context.Context, target TargetType, id, userID uuid.UUID, kind string) error
	RemoveReaction(ctx context.Context, target TargetType, id, userID uuid.UUID, kind string) error
	CountReactions(ctx context.Context, target TargetType, id uuid.UUID) (Tally, error)
	WriteCounts(ctx context.Context, target TargetType, id uuid.UUID, counts Tally) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates community repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreatePost(ctx context.Context, post *Post) error {
	query := `
		INSERT INTO community_posts (id, user_id, community, content, author_nickname, author_avatar, created_at)
		VALUES (:id, :user_id, :community, :content, :author_nickname, :author_avatar, :created_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, post); err != nil {
		return mapDBError(err)
	}
	return nil
}

func (r *repository) GetPost(ctx context.Context, id uuid.UUID) (*Post, error) {
	var post Post
	err := r.db.GetContext(ctx, &post, `SELECT * FROM community_posts WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *repository) ListPosts(ctx context.Context, filter ListFilter) ([]*Post, error) {
	query := `
		SELECT * FROM community_posts
		WHERE ($1 = '' OR community = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	var posts []*Post
	if err := r.db.SelectContext(ctx, &posts, query, filter.Community, filter.Limit, filter.Offset); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *repository) CreateReply(ctx context.Context, reply *Reply) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO post_replies (id, post_id, user_id, content, author_nickname, author_avatar, created_at)
			VALUES (:id, :post_id, :user_id, :content, :author_nickname, :author_avatar, :created_at)
		`
		if _, err := tx.NamedExecContext(ctx, query, reply); err != nil {
			return mapDBError(err)
		}
		_, err := tx.ExecContext(ctx,
			`UPDATE community_posts SET reply_count = (SELECT COUNT(*) FROM post_replies WHERE post_id = $1) WHERE id = $1`,
			reply.PostID)
		return err
	})
}

func (r *repository) GetReply(ctx context.Context, postID, replyID uuid.UUID) (*Reply, error) {
	var reply Reply
	err := r.db.GetContext(ctx, &reply, `SELECT * FROM post_replies WHERE id = $1 AND post_id = $2`, replyID, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reply, nil
}

func (r *repository) ListReplies(ctx context.Context, postID uuid.UUID) ([]*Reply, error) {
	var replies []*Reply
	err := r.db.SelectContext(ctx, &replies,
		`SELECT * FROM post_replies WHERE post_id = $1 ORDER BY created_at ASC`, postID)
	return replies, err
}

func (r *repository) RunReactionTx(ctx context.Context, fn func(tx ReactionTx) error) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		return fn(&reactionTx{tx: tx})
	})
}

// reactionTables holds the fixed table and column names per target.
type reactionTables struct {
	parent    string
	reactions string
	fk        string
	counters  map[string]string
}

var tables = map[TargetType]reactionTables{
	TargetPost: {
		parent:    "community_posts",
		reactions: "post_reactions",
		fk:        "post_id",
		counters: map[string]string{
			KindSupport: "support_count",
			KindRelate:  "relate_count",
			KindHelpful: "helpful_count",
		},
	},
	TargetReply: {
		parent:    "post_replies",
		reactions: "reply_reactions",
		fk:        "reply_id",
		counters:  map[string]string{KindSupport: "support_count"},
	},
}

func tablesFor(target TargetType) (reactionTables, error) {
	t, ok := tables[target]
	if !ok {
		return reactionTables{}, ErrInvalidTarget
	}
	return t, nil
}

type reactionTx struct {
	tx *sqlx.Tx
}

func (t *reactionTx) LockTarget(ctx context.Context, target TargetType, id uuid.UUID) (bool, error) {
	tb, err := tablesFor(target)
	if err != nil {
		return false, err
	}
	var locked uuid.UUID
	err = t.tx.GetContext(ctx, &locked, fmt.Sprintf(`SELECT id FROM %s WHERE id = $1 FOR UPDATE`, tb.parent), id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (t *reactionTx) HasReaction(ctx context.Context, target TargetType, id, userID uuid.UUID, kind string) (bool, error) {
	tb, err := tablesFor(target)
	if err != nil {
		return false, err
	}
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE %s = $1 AND user_id = $2 AND kind = $3)`, tb.reactions, tb.fk)
	var exists bool
	err = t.tx.GetContext(ctx, &exists, query, id, userID, kind)
	return exists, err
}

func (t *reactionTx) AddReaction(ctx context.Context, target TargetType, id, userID uuid.UUID, kind string) error {
	tb, err := tablesFor(target)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`INSERT INTO %s (%s, user_id, kind) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`, tb.reactions, tb.fk)
	if _, err := t.tx.ExecContext(ctx, query, id, userID, kind); err != nil {
		return mapDBError(err)
	}
	return nil
}

func (t *reactionTx) RemoveReaction(ctx context.Context, target TargetType, id, userID uuid.UUID, kind string) error {
	tb, err := tablesFor(target)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND user_id = $2 AND kind = $3`, tb.reactions, tb.fk)
	_, err = t.tx.ExecContext(ctx, query, id, userID, kind)
	return err
}

func (t *reactionTx) CountReactions(ctx context.Context, target TargetType, id uuid.UUID) (Tally, error) {
	tb, err := tablesFor(target)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		Kind  string `db:"kind"`
		Count int    `db:"count"`
	}
	query := fmt.Sprintf(`SELECT kind, COUNT(*) AS count FROM %s WHERE %s = $1 GROUP BY kind`, tb.reactions, tb.fk)
	if err := t.tx.SelectContext(ctx, &rows, query, id); err != nil {
		return nil, err
	}

	counts := NewTally(target)
	for _, row := range rows {
		if _, ok := counts[row.Kind]; ok {
			counts[row.Kind] = row.Count
		}
	}
	return counts, nil
}

func (t *reactionTx) WriteCounts(ctx context.Context, target TargetType, id uuid.UUID, counts Tally) error {
	tb, err := tablesFor(target)
	if err != nil {
		return err
	}

	args := []interface{}{id}
	set := ""
	for _, kind := range reactionKinds[target] {
		args = append(args, counts[kind])
		if set != "" {
			set += ", "
		}
		set += fmt.Sprintf("%s = $%d", tb.counters[kind], len(args))
	}

	_, err = t.tx.ExecContext(ctx, fmt.Sprintf(`UPDATE %s SET %s WHERE id = $1`, tb.parent, set), args...)
	return err
}

// mapDBError translates constraint violations into domain errors
func mapDBError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case "23503":
		switch pqErr.Constraint {
		case "post_replies_post_id_fkey", "post_reactions_post_id_fkey":
			return fmt.Errorf("%w: %w", ErrPostNotFound, err)
		case "reply_reactions_reply_id_fkey":
			return fmt.Errorf("%w: %w", ErrReplyNotFound, err)
		}
	case "23514":
		if pqErr.Constraint == "community_posts_community_check" {
			return fmt.Errorf("%w: %w", ErrInvalidCommunity, err)
		}
	}
	return err
}
