package strutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeywordMatcher_Match(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		included []string
		excluded []string
		target   string
		want     bool
	}{
		{
			name:     "성공: 단일 포함 키워드 매칭",
			included: []string{"당근"},
			target:   "유기농 당근 1kg",
			want:     true,
		},
		{
			name:     "성공: 포함 키워드 미매칭",
			included: []string{"당근"},
			target:   "유기농 감자 1kg",
			want:     false,
		},
		{
			name:     "성공: 대소문자 구분 없이 매칭",
			included: []string{"APPLE"},
			target:   "fresh apple juice",
			want:     true,
		},
		{
			name:     "성공: 여러 포함 키워드는 AND 조건",
			included: []string{"유기농", "당근"},
			target:   "유기농 당근 1kg",
			want:     true,
		},
		{
			name:     "성공: AND 조건 중 하나라도 없으면 실패",
			included: []string{"유기농", "당근"},
			target:   "일반 당근 1kg",
			want:     false,
		},
		{
			name:     "성공: 파이프로 구분된 OR 그룹",
			included: []string{"당근|감자"},
			target:   "유기농 감자 1kg",
			want:     true,
		},
		{
			name:     "성공: OR 그룹과 AND 조건 조합",
			included: []string{"유기농", "당근|감자"},
			target:   "유기농 감자 1kg",
			want:     true,
		},
		{
			name:     "성공: 제외 키워드가 있으면 실패",
			included: []string{"당근"},
			excluded: []string{"주스"},
			target:   "당근 주스 500ml",
			want:     false,
		},
		{
			name:     "성공: 제외 키워드가 없으면 통과",
			included: []string{"당근"},
			excluded: []string{"주스"},
			target:   "유기농 당근 1kg",
			want:     true,
		},
		{
			name:   "성공: 조건이 없으면 항상 통과",
			target: "아무 문자열",
			want:   true,
		},
		{
			name:     "성공: 공백 키워드는 무시",
			included: []string{"  ", "당근"},
			target:   "유기농 당근",
			want:     true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := NewKeywordMatcher(tt.included, tt.excluded)
			assert.Equal(t, tt.want, m.Match(tt.target))
		})
	}
}

func TestKeywordMatcher_HasConditions(t *testing.T) {
	t.Parallel()

	assert.False(t, NewKeywordMatcher(nil, nil).HasConditions())
	assert.False(t, NewKeywordMatcher([]string{" "}, []string{""}).HasConditions())
	assert.True(t, NewKeywordMatcher([]string{"당근"}, nil).HasConditions())
	assert.True(t, NewKeywordMatcher(nil, []string{"주스"}).HasConditions())
}

func TestContainsFold(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		s      string
		substr string
		want   bool
	}{
		{name: "성공: 빈 부분 문자열은 항상 매칭", s: "abc", substr: "", want: true},
		{name: "성공: 대상이 더 짧으면 실패", s: "ab", substr: "abc", want: false},
		{name: "성공: ASCII 대소문자 무시 매칭", s: "Hello World", substr: "WORLD", want: true},
		{name: "성공: 한글 부분 문자열 매칭", s: "유기농 당근 1kg", substr: "당근", want: true},
		{name: "성공: 한글 미매칭", s: "유기농 당근", substr: "감자", want: false},
		{name: "성공: 문자열 중간 매칭", s: "xxabcxx", substr: "abc", want: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, containsFold(tt.s, tt.substr))
		})
	}
}

func BenchmarkKeywordMatcher_Match(b *testing.B) {
	m := NewKeywordMatcher([]string{"유기농", "당근|감자"}, []string{"주스"})
	target := "유기농 흙당근 1kg 산지직송"

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Match(target)
	}
}
