//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alexandre220990/ProfitumMVP-sub006/internal/eligibility"
	"github.com/Alexandre220990/ProfitumMVP-sub006/internal/eligibility/store"
	"github.com/Alexandre220990/ProfitumMVP-sub006/pkg/testutil/containers"
)

func TestRedisAnswerStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	redis := containers.NewRedisContainer(t)
	answerStore := store.NewRedisAnswerStore(redis.Client)
	ctx := context.Background()

	t.Run("unknown subject loads empty", func(t *testing.T) {
		set, err := answerStore.Load(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, set)
	})

	t.Run("round trip with last write wins", func(t *testing.T) {
		require.NoError(t, redis.FlushAll(ctx))

		err := answerStore.SaveAnswers(ctx, "subject", []eligibility.Answer{
			{QuestionID: "secteur", Value: "Taxi / VTC", ObservedAt: time.Now().UTC()},
			{QuestionID: "types_vehicules", Value: []any{"Camions de plus de 7,5 tonnes"}, ObservedAt: time.Now().UTC()},
		})
		require.NoError(t, err)

		err = answerStore.SaveAnswers(ctx, "subject", []eligibility.Answer{
			{QuestionID: "secteur", Value: "Secteur Agricole", ObservedAt: time.Now().UTC()},
		})
		require.NoError(t, err)

		set, err := answerStore.Load(ctx, "subject")
		require.NoError(t, err)
		require.Len(t, set, 2)
		assert.Equal(t, "Secteur Agricole", set["secteur"].Value)
		assert.Equal(t, []any{"Camions de plus de 7,5 tonnes"}, set["types_vehicules"].Value)
	})

	t.Run("subjects are isolated", func(t *testing.T) {
		require.NoError(t, redis.FlushAll(ctx))

		require.NoError(t, answerStore.SaveAnswers(ctx, "alice", []eligibility.Answer{
			{QuestionID: "q", Value: "a", ObservedAt: time.Now().UTC()},
		}))
		require.NoError(t, answerStore.SaveAnswers(ctx, "bob", []eligibility.Answer{
			{QuestionID: "q", Value: "b", ObservedAt: time.Now().UTC()},
		}))

		alice, err := answerStore.Load(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "a", alice["q"].Value)
	})
}
