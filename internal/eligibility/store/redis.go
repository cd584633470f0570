package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Alexandre220990/ProfitumMVP-sub006/internal/eligibility"
)

const answerKeyPrefix = "eligibility:answers:"

// RedisAnswerStore keeps per-subject answers in a Redis hash, one field per
// question id holding the JSON-encoded answer. It serves deployments where
// answers are session-scoped rather than durable.
type RedisAnswerStore struct {
	client *redis.Client
}

func NewRedisAnswerStore(client *redis.Client) *RedisAnswerStore {
	return &RedisAnswerStore{client: client}
}

func (s *RedisAnswerStore) Load(ctx context.Context, subjectID string) (eligibility.AnswerSet, error) {
	fields, err := s.client.HGetAll(ctx, answerKeyPrefix+subjectID).Result()
	if err != nil {
		return nil, fmt.Errorf("load answers for subject %s: %w", subjectID, err)
	}

	set := make(eligibility.AnswerSet, len(fields))
	for questionID, raw := range fields {
		var answer eligibility.Answer
		if err := json.Unmarshal([]byte(raw), &answer); err != nil {
			return nil, fmt.Errorf("unmarshal answer %s for subject %s: %w", questionID, subjectID, err)
		}
		set[questionID] = answer
	}
	return set, nil
}

// SaveAnswers upserts a batch of answers into the subject's hash.
func (s *RedisAnswerStore) SaveAnswers(ctx context.Context, subjectID string, answers []eligibility.Answer) error {
	if len(answers) == 0 {
		return nil
	}
	fields := make(map[string]any, len(answers))
	for _, answer := range answers {
		if answer.QuestionID == "" {
			continue
		}
		raw, err := json.Marshal(answer)
		if err != nil {
			return fmt.Errorf("marshal answer %s: %w", answer.QuestionID, err)
		}
		fields[answer.QuestionID] = raw
	}
	if len(fields) == 0 {
		return nil
	}
	if err := s.client.HSet(ctx, answerKeyPrefix+subjectID, fields).Err(); err != nil {
		return fmt.Errorf("save answers for subject %s: %w", subjectID, err)
	}
	return nil
}
