package domain_test

import (
	"context"
	"testing"

	"github.com/aretw0/hdt/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestTrialRecord_Row(t *testing.T) {
	resp := domain.Response{Label: domain.LabelSameTime, Code: domain.CodeSameTime}
	rec := domain.NewTrialRecord("400_1", 3, 450, resp, 72)
	assert.Equal(t, []string{"400_1", "3", "450", "same time", "-1", "72"}, rec.Row())

	rec = domain.NewTrialRecord(domain.BlockTraining, 1, 12.5, domain.Response{Label: "after", Code: domain.CodeAfter}, 0)
	assert.Equal(t, "12.5", rec.Row()[2])
}

func TestQuestionRecord_Row(t *testing.T) {
	rec := domain.NewQuestionRecord("Difficulty", 40)
	assert.Equal(t, []string{"Post_task_question", "Difficulty", "NA", "NA", "NA", "40"}, rec.Row())
}

func TestLifecycleHooks_Merge(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{OnPhase: func(context.Context, *domain.PhaseEvent) { calls = append(calls, "a") }}
	b := domain.LifecycleHooks{
		OnPhase: func(context.Context, *domain.PhaseEvent) { calls = append(calls, "b") },
		OnTrial: func(context.Context, *domain.TrialEvent) { calls = append(calls, "trial") },
	}

	merged := a.Merge(b)
	merged.OnPhase(context.Background(), &domain.PhaseEvent{Phase: domain.PhaseTraining})
	merged.OnTrial(context.Background(), &domain.TrialEvent{})

	assert.Equal(t, []string{"a", "b", "trial"}, calls)
	assert.Nil(t, merged.OnReversal)
}
