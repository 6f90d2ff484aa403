package thirtymall

import (
	apperrors "github.com/jjangmi46/thirtymall-monitor/internal/pkg/errors"
)

var (
	// ErrNoSearchTargets 설정 파일에 감시 대상 검색이 하나도 정의되지 않은 경우 발생하는 에러입니다.
	ErrNoSearchTargets = apperrors.New(apperrors.InvalidInput, "감시할 검색 대상(searches)이 하나도 정의되지 않았습니다")

	// ErrInvalidSearchTarget 검색 대상의 필수값(name, url, keyword)이 비어 있는 경우 발생하는 에러입니다.
	ErrInvalidSearchTarget = apperrors.New(apperrors.InvalidInput, "검색 대상의 name, url, keyword는 필수입니다")
)
