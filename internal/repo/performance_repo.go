package repo

import (
	"context"
	"fmt"
	"slices"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/Mentor/internal/domain"
)

// PerformanceRepo — прошлые оценки студентов.
//
// Реализует agents.PerformanceSource.
type PerformanceRepo struct {
	pool *pgxpool.Pool
}

// NewPerformanceRepo создаёт новый PerformanceRepo.
func NewPerformanceRepo(pool *pgxpool.Pool) *PerformanceRepo {
	return &PerformanceRepo{pool: pool}
}

// Record сохраняет оценку.
func (r *PerformanceRepo) Record(ctx context.Context, studentID string, entry domain.PerformanceEntry) error {
	query := `
		INSERT INTO performance (student_id, subject, score, taken_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.pool.Exec(ctx, query, studentID, entry.Subject, entry.Score, entry.TakenAt); err != nil {
		return fmt.Errorf("insert performance: %w", err)
	}
	return nil
}

// RecentPerformance возвращает не более limit последних оценок,
// от старых к новым.
func (r *PerformanceRepo) RecentPerformance(ctx context.Context, studentID string, limit int) ([]domain.PerformanceEntry, error) {
	query := `
		SELECT subject, score, taken_at
		FROM performance
		WHERE student_id = $1
		ORDER BY taken_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, studentID, limit)
	if err != nil {
		return nil, fmt.Errorf("list performance: %w", err)
	}
	defer rows.Close()

	var entries []domain.PerformanceEntry
	for rows.Next() {
		var e domain.PerformanceEntry
		if err := rows.Scan(&e.Subject, &e.Score, &e.TakenAt); err != nil {
			return nil, fmt.Errorf("scan performance: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	slices.Reverse(entries)
	return entries, nil
}
