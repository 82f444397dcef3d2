package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/appsforbuild-cmyk/evalifyai-sub001/internal/domain"
	"github.com/google/uuid"
)

// PredictionRepository stores the current prediction per employee and the
// append-only history stream.
type PredictionRepository struct {
	base
	newID func() string
}

func NewPredictionRepository(db *sql.DB, driver string) *PredictionRepository {
	return &PredictionRepository{
		base:  base{db: db, driver: driver},
		newID: func() string { return uuid.NewString() },
	}
}

// Save upserts the current prediction and appends one history entry in a
// single transaction; either both rows land or neither does.
func (r *PredictionRepository) Save(ctx context.Context, employeeID string, a domain.Assessment, at time.Time) error {
	factors, err := json.Marshal(a.ContributingFactors)
	if err != nil {
		return fmt.Errorf("marshal contributing factors: %w", err)
	}
	actions, err := json.Marshal(a.RecommendedActions)
	if err != nil {
		return fmt.Errorf("marshal recommended actions: %w", err)
	}

	const upsert = `
		INSERT INTO attrition_predictions (
			employee_id, risk_score, risk_level, predicted_timeframe, confidence,
			contributing_factors, recommended_actions, scorer, last_calculated
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (employee_id) DO UPDATE SET
			risk_score = excluded.risk_score,
			risk_level = excluded.risk_level,
			predicted_timeframe = excluded.predicted_timeframe,
			confidence = excluded.confidence,
			contributing_factors = excluded.contributing_factors,
			recommended_actions = excluded.recommended_actions,
			scorer = excluded.scorer,
			last_calculated = excluded.last_calculated
	`
	const insertHistory = `
		INSERT INTO attrition_prediction_history (
			id, employee_id, risk_score, risk_level, predicted_timeframe, confidence,
			contributing_factors, scorer, calculated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	at = at.UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin Save: %w", err)
	}

	if _, err := tx.ExecContext(ctx, r.q(upsert),
		employeeID, a.RiskScore, string(a.RiskLevel), string(a.PredictedTimeframe), a.Confidence,
		string(factors), string(actions), string(a.Scorer), at,
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("upsert prediction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, r.q(insertHistory),
		r.newID(), employeeID, a.RiskScore, string(a.RiskLevel), string(a.PredictedTimeframe), a.Confidence,
		string(factors), string(a.Scorer), at,
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert prediction history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit Save: %w", err)
	}
	return nil
}

// Current returns the latest prediction for the employee or ErrNotFound.
func (r *PredictionRepository) Current(ctx context.Context, employeeID string) (domain.Prediction, error) {
	const query = `
		SELECT employee_id, risk_score, risk_level, predicted_timeframe, confidence,
			contributing_factors, recommended_actions, scorer, last_calculated
		FROM attrition_predictions
		WHERE employee_id = ?
	`

	var p domain.Prediction
	var level, timeframe, scorer, factors, actions string
	err := r.db.QueryRowContext(ctx, r.q(query), employeeID).Scan(
		&p.EmployeeID, &p.RiskScore, &level, &timeframe, &p.Confidence,
		&factors, &actions, &scorer, &p.LastCalculated,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Prediction{}, ErrNotFound
		}
		return domain.Prediction{}, fmt.Errorf("query Current: %w", err)
	}

	p.RiskLevel = domain.RiskLevel(level)
	p.PredictedTimeframe = domain.Timeframe(timeframe)
	p.Scorer = domain.Strategy(scorer)
	if err := json.Unmarshal([]byte(factors), &p.ContributingFactors); err != nil {
		return domain.Prediction{}, fmt.Errorf("decode contributing factors: %w", err)
	}
	if err := json.Unmarshal([]byte(actions), &p.RecommendedActions); err != nil {
		return domain.Prediction{}, fmt.Errorf("decode recommended actions: %w", err)
	}
	return p, nil
}

// History returns up to limit history entries for the employee, newest first.
func (r *PredictionRepository) History(ctx context.Context, employeeID string, limit int) ([]domain.HistoryEntry, error) {
	const query = `
		SELECT id, employee_id, risk_score, risk_level, predicted_timeframe, confidence,
			contributing_factors, scorer, calculated_at
		FROM attrition_prediction_history
		WHERE employee_id = ?
		ORDER BY calculated_at DESC, id
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, r.q(query), employeeID, limit)
	if err != nil {
		return nil, fmt.Errorf("query History: %w", err)
	}
	defer rows.Close()

	var results []domain.HistoryEntry
	for rows.Next() {
		var h domain.HistoryEntry
		var level, timeframe, scorer, factors string
		if err := rows.Scan(&h.ID, &h.EmployeeID, &h.RiskScore, &level, &timeframe, &h.Confidence,
			&factors, &scorer, &h.CalculatedAt); err != nil {
			return nil, fmt.Errorf("scan History row: %w", err)
		}
		h.RiskLevel = domain.RiskLevel(level)
		h.PredictedTimeframe = domain.Timeframe(timeframe)
		h.Scorer = domain.Strategy(scorer)
		if err := json.Unmarshal([]byte(factors), &h.ContributingFactors); err != nil {
			return nil, fmt.Errorf("decode history factors: %w", err)
		}
		results = append(results, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate History: %w", err)
	}
	return results, nil
}
