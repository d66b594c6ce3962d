package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/shaiso/Mentor/internal/analyzer"
	"github.com/shaiso/Mentor/internal/domain"
	"github.com/shaiso/Mentor/internal/mq"
	"github.com/shaiso/Mentor/internal/repo"
)

// handleAssistPending обрабатывает сообщение из assist.pending.
func (w *Worker) handleAssistPending(ctx context.Context, delivery *mq.Delivery) error {
	payload, err := mq.ParsePayload[mq.AssistPendingPayload](&delivery.Message)
	if err != nil {
		return err
	}
	if payload.RequestID == uuid.Nil {
		id, err := uuid.Parse(delivery.Message.ID)
		if err != nil {
			return fmt.Errorf("%w: message without request id", mq.ErrPermanent)
		}
		payload.RequestID = id
	}
	return w.Process(ctx, payload)
}

// Process обрабатывает один запрос и публикует результат.
func (w *Worker) Process(ctx context.Context, payload mq.AssistPendingPayload) error {
	logger := w.logger.With("request_id", payload.RequestID)

	req := domain.NewRequest(payload.Text, payload.StudentID, payload.Document)

	if rec, ok := w.lookup(ctx, payload.RequestID); ok {
		if !sameRequest(rec, req) {
			logger.Warn("request id reused, dropping message",
				"stored_student_id", rec.StudentID,
				"student_id", req.StudentID,
			)
			return fmt.Errorf("%w: %w", mq.ErrPermanent, ErrRequestIDConflict)
		}
		logger.Info("request already processed, republishing")
		return w.publishCompletion(ctx, rec)
	}

	rec, err := w.pipeline.Run(ctx, payload.RequestID, req)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			// невалидный запрос не станет валидным при повторе
			logger.Warn("request rejected", "error", err)
			return w.publish(ctx, mq.AssistCompletedPayload{
				RequestID: payload.RequestID,
				StudentID: req.StudentID,
				Error:     err.Error(),
			})
		}
		return fmt.Errorf("process request: %w", err)
	}

	logger.Info("request completed",
		"policy", rec.Policy,
		"degraded", rec.Degraded(),
		"duration_ms", rec.Duration().Milliseconds(),
	)
	return w.publishCompletion(ctx, rec)
}

// lookup ищет запрос в истории. Ошибки хранилища не мешают обработке.
func (w *Worker) lookup(ctx context.Context, id uuid.UUID) (*domain.RequestRecord, bool) {
	if w.records == nil {
		return nil, false
	}
	rec, err := w.records.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			w.logger.Warn("request history lookup failed", "request_id", id, "error", err)
		}
		return nil, false
	}
	return rec, rec.Response != nil
}

// sameRequest проверяет, что запись в истории принадлежит этому же запросу.
func sameRequest(rec *domain.RequestRecord, req domain.Request) bool {
	text, _ := analyzer.ExtractDocument(req.Text)
	if text == "" {
		text = req.Text
	}
	return rec.StudentID == req.StudentID && rec.Text == text
}

func (w *Worker) publishCompletion(ctx context.Context, rec *domain.RequestRecord) error {
	return w.publish(ctx, mq.AssistCompletedPayload{
		RequestID: rec.ID,
		StudentID: rec.StudentID,
		Response:  rec.Response,
		Degraded:  rec.Degraded(),
	})
}

func (w *Worker) publish(ctx context.Context, payload mq.AssistCompletedPayload) error {
	if w.publisher == nil {
		w.logger.Warn("publisher not available, skipping assist.completed publish",
			"request_id", payload.RequestID,
		)
		return nil
	}
	if err := w.publisher.PublishAssistCompleted(ctx, payload); err != nil {
		return fmt.Errorf("publish completion: %w", err)
	}
	return nil
}
