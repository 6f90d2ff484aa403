package log

import (
	"github.com/sirupsen/logrus"
)

// silentFormatter logrus의 기본 출력을 무력화하는 Formatter입니다.
//
// 모든 로그는 hook을 통해 포맷팅되어 각 Writer로 전달되므로, logrus 자체의
// 출력 경로(Out)로는 아무것도 기록되지 않아야 합니다.
type silentFormatter struct{}

func (f *silentFormatter) Format(_ *logrus.Entry) ([]byte, error) {
	return nil, nil
}
