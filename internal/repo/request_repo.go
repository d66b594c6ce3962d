package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/Mentor/internal/domain"
)

// DefaultListLimit — размер страницы по умолчанию.
const DefaultListLimit = 20

// RequestRepo — репозиторий истории запросов.
type RequestRepo struct {
	pool *pgxpool.Pool
}

// NewRequestRepo создаёт новый RequestRepo.
func NewRequestRepo(pool *pgxpool.Pool) *RequestRepo {
	return &RequestRepo{pool: pool}
}

// Save сохраняет запись о запросе.
// Повторное сохранение того же ID возвращает ErrAlreadyExists.
func (r *RequestRepo) Save(ctx context.Context, rec *domain.RequestRecord) error {
	responseJSON, err := json.Marshal(rec.Response)
	if err != nil {
		return fmt.Errorf("marshal response: %w", err)
	}
	errorsJSON, err := json.Marshal(rec.Errors)
	if err != nil {
		return fmt.Errorf("marshal errors: %w", err)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO requests (id, student_id, text, topic, intent, policy, response, errors,
		                      started_at, finished_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = r.pool.Exec(ctx, query,
		rec.ID,
		rec.StudentID,
		rec.Text,
		rec.Topic,
		rec.Intent,
		rec.Policy,
		responseJSON,
		errorsJSON,
		rec.StartedAt,
		rec.FinishedAt,
		rec.CreatedAt,
	)
	if err = mapError(err); errors.Is(err, ErrAlreadyExists) {
		return err
	}
	if err != nil {
		return fmt.Errorf("insert request: %w", err)
	}
	return nil
}

// GetByID возвращает запись по ID.
func (r *RequestRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.RequestRecord, error) {
	query := `
		SELECT id, student_id, text, topic, intent, policy, response, errors,
		       started_at, finished_at, created_at
		FROM requests
		WHERE id = $1
	`
	rec, err := scanRequest(r.pool.QueryRow(ctx, query, id))
	if err = mapError(err); errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("get request by id: %w", err)
	}
	return rec, nil
}

// List возвращает записи, новые первыми.
func (r *RequestRepo) List(ctx context.Context, filter RequestFilter) ([]domain.RequestRecord, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultListLimit
	}

	query := `
		SELECT id, student_id, text, topic, intent, policy, response, errors,
		       started_at, finished_at, created_at
		FROM requests
		WHERE ($1::text IS NULL OR student_id = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query,
		nullString(filter.StudentID),
		filter.Limit,
		filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	records := []domain.RequestRecord{}
	for rows.Next() {
		rec, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// --- Helpers ---

// RequestFilter — параметры фильтрации истории.
type RequestFilter struct {
	StudentID string
	Limit     int
	Offset    int
}

// scanRequest сканирует одну строку в RequestRecord.
// pgx.Rows тоже реализует pgx.Row.
func scanRequest(row pgx.Row) (*domain.RequestRecord, error) {
	var rec domain.RequestRecord
	var responseJSON, errorsJSON []byte

	err := row.Scan(
		&rec.ID,
		&rec.StudentID,
		&rec.Text,
		&rec.Topic,
		&rec.Intent,
		&rec.Policy,
		&responseJSON,
		&errorsJSON,
		&rec.StartedAt,
		&rec.FinishedAt,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(responseJSON) > 0 && string(responseJSON) != "null" {
		rec.Response = &domain.Response{}
		if err := json.Unmarshal(responseJSON, rec.Response); err != nil {
			return nil, fmt.Errorf("unmarshal response: %w", err)
		}
	}
	if len(errorsJSON) > 0 {
		if err := json.Unmarshal(errorsJSON, &rec.Errors); err != nil {
			return nil, fmt.Errorf("unmarshal errors: %w", err)
		}
	}
	return &rec, nil
}

// nullString возвращает nil для пустой строки (для NULL в БД).
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
