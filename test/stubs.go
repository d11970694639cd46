package test

import (
	"go.uber.org/mock/gomock"
	"roost/test/mocks"
)

// The trailing gomock.Any() covers the variadic slot: without it, a call that
// passes format arguments or keyvals does not match the expectation.
func stubLogger(mockLogger *mocks.MockILogger) {
	mockLogger.EXPECT().Error(gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Errorf(gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Warn(gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Warnf(gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Info(gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Infof(gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Debug(gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Debugf(gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Printf(gomock.Any(), gomock.Any()).AnyTimes()
}

type dummyObserver struct{}

func (dummyObserver) Finish() {}

func stubMetrics(mockMetrics *mocks.MockIMetrics) {
	mockMetrics.EXPECT().StartIngest(gomock.Any()).Return(dummyObserver{}).AnyTimes()
	mockMetrics.EXPECT().StartLookupOut(gomock.Any()).Return(dummyObserver{}).AnyTimes()
	mockMetrics.EXPECT().ServiceStarted().AnyTimes()
	mockMetrics.EXPECT().StatusCreated().AnyTimes()
	mockMetrics.EXPECT().StatusMerged().AnyTimes()
	mockMetrics.EXPECT().StatusSkipped().AnyTimes()
	mockMetrics.EXPECT().StaleWriteRejected().AnyTimes()
	mockMetrics.EXPECT().UserCreated().AnyTimes()
	mockMetrics.EXPECT().BackfillChunkFailed().AnyTimes()
	mockMetrics.EXPECT().BackfillStatusPatched().AnyTimes()
	mockMetrics.EXPECT().FeedAnchorCleared().AnyTimes()
	mockMetrics.EXPECT().TotalStatuses(gomock.Any()).AnyTimes()
}
