package workers

import (
	stdErrors "errors"
	"log/slog"
	"roomchat/mocks"
	"testing"
	"time"

	"go.uber.org/mock/gomock"
)

type countingSampler struct{ calls int }

func (c *countingSampler) Sample() error {
	c.calls++
	return nil
}

func TestHealthMonitoringWorker_Reports_Only_Changes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	reporter := mocks.NewMockHealthReporter(ctrl)

	var probeErr error
	worker := NewHealthMonitoringWorker(slog.Default(), &countingSampler{},
		func() error { return probeErr }, reporter, time.Second)

	// Given a healthy store, then a failing one, then healthy again
	gomock.InOrder(
		reporter.EXPECT().SetServing(true).Times(1),
		reporter.EXPECT().SetServing(false).Times(1),
		reporter.EXPECT().SetServing(true).Times(1),
	)

	worker.Check()
	worker.Check()
	probeErr = stdErrors.New("db closed")
	worker.Check()
	worker.Check()
	probeErr = nil
	worker.Check()
}
