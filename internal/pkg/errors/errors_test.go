package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errStd = errors.New("standard error")

func TestNew(t *testing.T) {
	t.Parallel()

	err := New(ParsingFailed, "상품 추출 실패")

	require.Error(t, err)
	assert.Equal(t, "상품 추출 실패", err.Error())

	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, ParsingFailed, appErr.Type())
	assert.Nil(t, appErr.Unwrap())
}

func TestNewf(t *testing.T) {
	t.Parallel()

	err := Newf(InvalidInput, "유효하지 않은 검색어 개수: %d", 0)

	require.Error(t, err)
	assert.Equal(t, "유효하지 않은 검색어 개수: 0", err.Error())
	assert.True(t, Is(err, InvalidInput))
}

func TestWrap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		cause     error
		wantNil   bool
		wantError string
	}{
		{
			name:      "성공: 표준 에러 래핑",
			cause:     errStd,
			wantError: "요청 실패: standard error",
		},
		{
			name:    "성공: nil 원인 에러는 nil 반환",
			cause:   nil,
			wantNil: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Wrap(tt.cause, ExecutionFailed, "요청 실패")

			if tt.wantNil {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.Equal(t, tt.wantError, err.Error())
			assert.ErrorIs(t, err, tt.cause)
		})
	}
}

func TestIs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		errType ErrorType
		want    bool
	}{
		{
			name:    "성공: 단일 에러의 타입 일치",
			err:     New(NotFound, "없음"),
			errType: NotFound,
			want:    true,
		},
		{
			name:    "성공: 체인 안쪽의 타입 일치",
			err:     Wrap(New(Unavailable, "서버 응답 없음"), ExecutionFailed, "페이지 요청 실패"),
			errType: Unavailable,
			want:    true,
		},
		{
			name:    "실패: 체인에 존재하지 않는 타입",
			err:     Wrap(New(Unavailable, "서버 응답 없음"), ExecutionFailed, "페이지 요청 실패"),
			errType: ParsingFailed,
			want:    false,
		},
		{
			name:    "실패: 표준 에러는 타입을 갖지 않음",
			err:     errStd,
			errType: Unknown,
			want:    false,
		},
		{
			name:    "실패: nil 에러",
			err:     nil,
			errType: Internal,
			want:    false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, Is(tt.err, tt.errType))
		})
	}
}

func TestUnderlyingType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{
			name: "성공: 가장 안쪽 AppError의 타입 반환",
			err:  Wrap(Wrap(New(Timeout, "데드라인 초과"), Internal, "중간"), ExecutionFailed, "바깥"),
			want: Timeout,
		},
		{
			name: "성공: 표준 에러로 끝나는 체인은 마지막 AppError 타입 반환",
			err:  Wrap(errStd, System, "저장 실패"),
			want: System,
		},
		{
			name: "성공: AppError가 없으면 Unknown",
			err:  errStd,
			want: Unknown,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, UnderlyingType(tt.err))
		})
	}
}

func TestRootCause(t *testing.T) {
	t.Parallel()

	err := Wrap(Wrap(errStd, Internal, "안쪽"), ExecutionFailed, "바깥")

	assert.Equal(t, errStd, RootCause(err))
	assert.Nil(t, RootCause(nil))
}

func TestFormat_StackTrace(t *testing.T) {
	t.Parallel()

	err := New(Internal, "뭔가 잘못됨")

	// %+v 출력에는 타입, 메시지, 이 테스트 함수의 프레임이 포함되어야 합니다.
	formatted := fmt.Sprintf("%+v", err)
	assert.Contains(t, formatted, "[Internal] 뭔가 잘못됨")
	assert.Contains(t, formatted, "TestFormat_StackTrace")

	// %v는 Error()와 동일해야 합니다.
	assert.Equal(t, err.Error(), fmt.Sprintf("%v", err))
}

func TestWrap_StackCollectedOnceAtBoundary(t *testing.T) {
	t.Parallel()

	inner := New(Unavailable, "안쪽")
	outer := Wrap(Wrap(inner, Internal, "중간"), ExecutionFailed, "바깥")

	// 스택은 최초 생성 지점에서 한 번만 수집되므로,
	// %+v 출력에 이 테스트 함수의 프레임이 정확히 한 번 나타나야 합니다.
	formatted := fmt.Sprintf("%+v", outer)
	assert.Equal(t, 1, strings.Count(formatted, "TestWrap_StackCollectedOnceAtBoundary"))
}

func TestErrorType_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Timeout", Timeout.String())
	assert.Equal(t, "Unavailable", Unavailable.String())
	assert.Equal(t, "Unknown", Unknown.String())
	assert.Equal(t, "Unknown", ErrorType(999).String())
}

func BenchmarkNew(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = New(Internal, "error message")
	}
}

func BenchmarkWrap(b *testing.B) {
	err := errors.New("base error")
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Wrap(err, Internal, "wrapped message")
	}
}
