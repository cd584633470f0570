package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Alexandre220990/ProfitumMVP-sub006/internal/eligibility"
	"github.com/Alexandre220990/ProfitumMVP-sub006/pkg/platform/sentinel"
)

// PostgresStore backs the rule source, product catalog, answer store, and
// result sink with PostgreSQL. Rule conditions and per-rule details are kept
// as jsonb; rules are normalized on read so both operator dialects come out
// canonical.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Rules(ctx context.Context, productID string) ([]eligibility.Rule, error) {
	query := `
		SELECT id, product_id, rule_type, conditions, weight, priority, required, dependencies
		FROM eligibility_rules
		WHERE product_id = $1
		ORDER BY priority, id
	`
	rows, err := s.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("query rules: %w", err)
	}
	defer rows.Close()

	var rules []eligibility.Rule
	for rows.Next() {
		var (
			rule       eligibility.Rule
			ruleType   string
			conditions []byte
			rawDeps    []byte
		)
		err := rows.Scan(&rule.ID, &rule.ProductID, &ruleType, &conditions,
			&rule.Weight, &rule.Priority, &rule.Required, &rawDeps)
		if err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		rule.Type = eligibility.RuleType(ruleType)
		if len(rawDeps) > 0 {
			if err := json.Unmarshal(rawDeps, &rule.Dependencies); err != nil {
				return nil, fmt.Errorf("unmarshal dependencies for rule %s: %w", rule.ID, err)
			}
		}
		rule, err = eligibility.NewRule(rule, conditions)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rules: %w", err)
	}
	return rules, nil
}

func (s *PostgresStore) ListActiveProductIDs(ctx context.Context) ([]string, error) {
	query := `SELECT id FROM products WHERE active ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan product id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return ids, nil
}

func (s *PostgresStore) Load(ctx context.Context, subjectID string) (eligibility.AnswerSet, error) {
	query := `
		SELECT question_id, value, observed_at
		FROM simulation_answers
		WHERE subject_id = $1
	`
	rows, err := s.db.QueryContext(ctx, query, subjectID)
	if err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	defer rows.Close()

	set := make(eligibility.AnswerSet)
	for rows.Next() {
		var (
			answer   eligibility.Answer
			rawValue []byte
		)
		if err := rows.Scan(&answer.QuestionID, &rawValue, &answer.ObservedAt); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		if len(rawValue) > 0 {
			if err := json.Unmarshal(rawValue, &answer.Value); err != nil {
				return nil, fmt.Errorf("unmarshal answer %s: %w", answer.QuestionID, err)
			}
		}
		set[answer.QuestionID] = answer
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate answers: %w", err)
	}
	return set, nil
}

// SaveAnswers upserts a batch of answers, last write wins per question id.
func (s *PostgresStore) SaveAnswers(ctx context.Context, subjectID string, answers []eligibility.Answer) error {
	query := `
		INSERT INTO simulation_answers (subject_id, question_id, value, observed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (subject_id, question_id)
		DO UPDATE SET value = EXCLUDED.value, observed_at = EXCLUDED.observed_at
	`
	for _, answer := range answers {
		if answer.QuestionID == "" {
			continue
		}
		value, err := json.Marshal(answer.Value)
		if err != nil {
			return fmt.Errorf("marshal answer %s: %w", answer.QuestionID, err)
		}
		observedAt := answer.ObservedAt
		if observedAt.IsZero() {
			observedAt = time.Now().UTC()
		}
		_, err = s.db.ExecContext(ctx, query, subjectID, answer.QuestionID, value, observedAt)
		if err != nil {
			return fmt.Errorf("upsert answer %s: %w", answer.QuestionID, err)
		}
	}
	return nil
}

// Persist replaces the subject's evaluation snapshot in one transaction.
func (s *PostgresStore) Persist(ctx context.Context, subjectID string, results []eligibility.ProductEligibility) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin persist tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM product_eligibilities WHERE subject_id = $1`, subjectID); err != nil {
		return fmt.Errorf("clear previous results: %w", err)
	}

	query := `
		INSERT INTO product_eligibilities (
			subject_id, product_id, score, satisfied_count, total_count, is_eligible, details, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	now := time.Now().UTC()
	for _, result := range results {
		details, err := json.Marshal(result.Details)
		if err != nil {
			return fmt.Errorf("marshal details for product %s: %w", result.ProductID, err)
		}
		_, err = tx.ExecContext(ctx, query,
			subjectID,
			result.ProductID,
			result.Score,
			result.SatisfiedCount,
			result.TotalCount,
			result.IsEligible,
			details,
			now,
		)
		if err != nil {
			return fmt.Errorf("insert result for product %s: %w", result.ProductID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit persist tx: %w", err)
	}
	return nil
}

// Latest returns the subject's persisted evaluation snapshot.
func (s *PostgresStore) Latest(ctx context.Context, subjectID string) ([]eligibility.ProductEligibility, error) {
	query := `
		SELECT product_id, score, satisfied_count, total_count, is_eligible, details
		FROM product_eligibilities
		WHERE subject_id = $1
		ORDER BY product_id
	`
	rows, err := s.db.QueryContext(ctx, query, subjectID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var results []eligibility.ProductEligibility
	for rows.Next() {
		var (
			result  eligibility.ProductEligibility
			details []byte
		)
		err := rows.Scan(&result.ProductID, &result.Score, &result.SatisfiedCount,
			&result.TotalCount, &result.IsEligible, &details)
		if err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &result.Details); err != nil {
				return nil, fmt.Errorf("unmarshal details for product %s: %w", result.ProductID, err)
			}
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	if len(results) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return results, nil
}
