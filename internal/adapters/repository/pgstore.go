package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/promptelo/promptelo/pkg/metrics"
)

// PgStore persists the corpus in Postgres with the pgvector extension.
// Similarity search uses the cosine distance operator backed by an IVFFlat
// index, so results are approximate once the index kicks in.
type PgStore struct {
	db  *sql.DB
	dim int
}

const pgSchema = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS prompt_embeddings (
	id            BIGSERIAL PRIMARY KEY,
	embedding     vector(%d) NOT NULL,
	novelty_score DOUBLE PRECISION NOT NULL,
	user_id       TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS prompt_embeddings_embedding_idx
	ON prompt_embeddings USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100);

CREATE INDEX IF NOT EXISTS prompt_embeddings_novelty_idx
	ON prompt_embeddings (novelty_score);
`

// NewPgStore opens a connection pool against dsn and ensures the schema
// exists. dim is the fixed embedding dimension of the table.
func NewPgStore(ctx context.Context, dsn string, dim int) (*PgStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf(pgSchema, dim)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &PgStore{db: db, dim: dim}, nil
}

// vectorLiteral renders a float slice in pgvector's input syntax.
func vectorLiteral(v []float64) string {
	var b strings.Builder
	b.Grow(len(v)*12 + 2)
	b.WriteByte('[')
	for i, x := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
	}
	b.WriteByte(']')
	return b.String()
}

func (p *PgStore) Insert(ctx context.Context, rec Record) error {
	if len(rec.Embedding) == 0 {
		return ErrEmptyVector
	}
	if len(rec.Embedding) != p.dim {
		return fmt.Errorf("%w: got %d, want %d", ErrDimMismatch, len(rec.Embedding), p.dim)
	}

	start := time.Now()
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO prompt_embeddings (embedding, novelty_score, user_id, created_at)
		 VALUES ($1::vector, $2, $3, $4)`,
		vectorLiteral(rec.Embedding), rec.NoveltyScore, rec.UserID, rec.CreatedAt)
	metrics.RecordStoreInsertLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		return fmt.Errorf("%w: insert: %v", ErrStoreInternal, err)
	}
	return nil
}

func (p *PgStore) Query(ctx context.Context, embedding []float64, k int) ([]Neighbor, error) {
	if k <= 0 {
		return nil, ErrInvalidLimit
	}
	if len(embedding) == 0 {
		return nil, ErrEmptyVector
	}
	if len(embedding) != p.dim {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimMismatch, len(embedding), p.dim)
	}

	start := time.Now()
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, 1 - (embedding <=> $1::vector) AS similarity, novelty_score
		 FROM prompt_embeddings
		 ORDER BY embedding <=> $1::vector, id
		 LIMIT $2`,
		vectorLiteral(embedding), k)
	metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", ErrStoreInternal, err)
	}
	defer rows.Close()

	var neighbors []Neighbor
	for rows.Next() {
		var n Neighbor
		if err := rows.Scan(&n.ID, &n.Similarity, &n.NoveltyScore); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", ErrStoreInternal, err)
		}
		neighbors = append(neighbors, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows: %v", ErrStoreInternal, err)
	}
	return neighbors, nil
}

func (p *PgStore) Percentile(ctx context.Context, score float64) (float64, error) {
	var total, below int
	err := p.db.QueryRowContext(ctx,
		`SELECT count(*), count(*) FILTER (WHERE novelty_score < $1)
		 FROM prompt_embeddings`,
		score).Scan(&total, &below)
	if err != nil {
		return 0, fmt.Errorf("%w: percentile: %v", ErrStoreInternal, err)
	}
	if total == 0 {
		return 50, nil
	}
	return float64(below) / float64(total) * 100, nil
}

func (p *PgStore) Count(ctx context.Context) (int, error) {
	var total int
	err := p.db.QueryRowContext(ctx,
		`SELECT count(*) FROM prompt_embeddings`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("%w: count: %v", ErrStoreInternal, err)
	}
	return total, nil
}

func (p *PgStore) Stats(ctx context.Context) (Stats, error) {
	st := Stats{PercentileThresholds: map[string]float64{}}

	var avg sql.NullFloat64
	var p50, p75, p90, p95, p99 sql.NullFloat64
	err := p.db.QueryRowContext(ctx,
		`SELECT count(*), count(DISTINCT user_id) FILTER (WHERE user_id <> ''),
		        avg(novelty_score),
		        percentile_cont(0.50) WITHIN GROUP (ORDER BY novelty_score),
		        percentile_cont(0.75) WITHIN GROUP (ORDER BY novelty_score),
		        percentile_cont(0.90) WITHIN GROUP (ORDER BY novelty_score),
		        percentile_cont(0.95) WITHIN GROUP (ORDER BY novelty_score),
		        percentile_cont(0.99) WITHIN GROUP (ORDER BY novelty_score)
		 FROM prompt_embeddings`).
		Scan(&st.TotalPrompts, &st.UniqueUsers, &avg, &p50, &p75, &p90, &p95, &p99)
	if err != nil {
		return Stats{}, fmt.Errorf("%w: stats: %v", ErrStoreInternal, err)
	}
	st.AvgNoveltyScore = avg.Float64
	st.PercentileThresholds["p50"] = p50.Float64
	st.PercentileThresholds["p75"] = p75.Float64
	st.PercentileThresholds["p90"] = p90.Float64
	st.PercentileThresholds["p95"] = p95.Float64
	st.PercentileThresholds["p99"] = p99.Float64

	rows, err := p.db.QueryContext(ctx,
		`SELECT novelty_score FROM prompt_embeddings
		 ORDER BY novelty_score DESC LIMIT 10`)
	if err != nil {
		return Stats{}, fmt.Errorf("%w: stats top: %v", ErrStoreInternal, err)
	}
	defer rows.Close()
	for rows.Next() {
		var s float64
		if err := rows.Scan(&s); err != nil {
			return Stats{}, fmt.Errorf("%w: stats scan: %v", ErrStoreInternal, err)
		}
		st.TopNoveltyScores = append(st.TopNoveltyScores, s)
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("%w: stats rows: %v", ErrStoreInternal, err)
	}
	return st, nil
}

func (p *PgStore) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *PgStore) Close() error {
	return p.db.Close()
}
