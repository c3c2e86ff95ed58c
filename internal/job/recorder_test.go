package job

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"

	"github.com/agbru/kahanmc/internal/job/mocks"
)

func TestRecorderSeesLifecycle(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	rec := mocks.NewMockRecorder(ctrl)

	gomock.InOrder(
		rec.EXPECT().JobStarted("recorded"),
		rec.EXPECT().ObservationsAdded("recorded", uint64(1)).Times(3),
		rec.EXPECT().JobFinished("recorded", "completed", uint64(3), gomock.Any()),
	)
	rec.EXPECT().EstimatePublished("recorded", 2.0, gomock.Any()).Times(2)

	j := New("recorded", constantSampler(2), WithCallBudget(3), WithRecorder(rec))
	if err := j.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if res := j.Wait(context.Background()); res.State != Completed {
		t.Errorf("State = %v, want completed", res.State)
	}
}
