package storage

import (
	apperrors "github.com/jjangmi46/thirtymall-monitor/internal/pkg/errors"
)

var (
	// ErrPathTraversalDetected 파일 경로 생성 시 저장소 디렉토리를 벗어나는 경로가 감지되었을 때 반환하는 에러입니다.
	ErrPathTraversalDetected = apperrors.New(apperrors.Internal, "보안 정책 위반: 저장소 디렉토리를 벗어나는 경로 접근이 차단되었습니다")

	// ErrLoadRequiresPointer Load 호출 시 대상 객체가 nil이 아닌 포인터가 아닐 때 반환하는 에러입니다.
	ErrLoadRequiresPointer = apperrors.New(apperrors.Internal, "스냅샷 로드 대상 객체가 올바른 포인터 타입이 아닙니다")
)

func newErrPathResolutionFailed(err error) error {
	return apperrors.Wrap(err, apperrors.Internal, "스냅샷 파일 경로를 해석할 수 없습니다")
}

func newErrStoreInitFailed(err error, dir string) error {
	return apperrors.Wrapf(err, apperrors.System, "스냅샷 저장소 초기화 실패: 디렉토리 접근 불가 (%s)", dir)
}

func newErrSnapshotEncodeFailed(err error) error {
	return apperrors.Wrap(err, apperrors.Internal, "스냅샷 직렬화(JSON Marshal) 중 오류가 발생했습니다")
}

func newErrSnapshotDecodeFailed(err error) error {
	return apperrors.Wrap(err, apperrors.ParsingFailed, "스냅샷 역직렬화(JSON Unmarshal) 중 오류가 발생했습니다")
}

func newErrSnapshotReadFailed(err error) error {
	return apperrors.Wrap(err, apperrors.System, "저장된 스냅샷 파일 읽기 중 오류가 발생했습니다")
}

func newErrSnapshotWriteFailed(err error, step string) error {
	return apperrors.Wrapf(err, apperrors.System, "스냅샷 저장 실패: %s 중 오류가 발생했습니다", step)
}
