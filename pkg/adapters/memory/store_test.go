package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/aretw0/hdt/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			block := "400_1"
			if i%2 == 0 {
				block = domain.BlockTraining
			}
			_ = r.Append(ctx, domain.NewTrialRecord(block, i, 400, domain.Response{Label: "after", Code: domain.CodeAfter}, 50))
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, r.Len())
	assert.Len(t, r.Block("400_1"), 5)
	assert.Len(t, r.Block(domain.BlockTraining), 5)

	recs := r.Records()
	recs[0].Block = "mutated"
	assert.NotEqual(t, "mutated", r.Records()[0].Block)

	assert.False(t, r.Closed())
	assert.NoError(t, r.Close())
	assert.True(t, r.Closed())
}
