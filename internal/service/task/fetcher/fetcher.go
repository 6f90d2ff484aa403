package fetcher

import (
	"context"
	"io"
	"net/http"
)

// component Fetcher 체인 로깅용 컴포넌트 이름입니다.
const component = "task.fetcher"

// maxDrainBytes 커넥션 재사용을 위해 응답 본문을 비울 때 읽을 최대 바이트 수입니다.
// 이보다 큰 본문은 비우는 비용이 새 커넥션을 여는 비용보다 크므로 그냥 닫습니다.
const maxDrainBytes = 64 * 1024

// Fetcher HTTP 요청을 수행하는 핵심 인터페이스입니다.
//
// 재시도, User-Agent 주입, 응답 크기 제한, 로깅 등의 기능을
// 데코레이터 패턴으로 조합할 수 있도록 설계되었습니다.
//
// 구현 시 주의사항:
//   - 반환된 응답 객체의 Body는 반드시 호출자가 닫아야 합니다.
//   - 에러가 반환되면 응답 객체는 항상 nil입니다.
//   - Context 취소 시 즉시 요청을 중단하고 적절한 에러를 반환해야 합니다.
type Fetcher interface {
	Do(req *http.Request) (*http.Response, error)

	// Close 보유한 네트워크 리소스(유휴 커넥션 등)를 해제합니다.
	Close() error
}

// Get 지정된 URL로 HTTP GET 요청을 전송하는 헬퍼 함수입니다.
//
// 반환된 응답 객체의 Body는 호출자가 반드시 닫아야 합니다.
func Get(ctx context.Context, f Fetcher, url string, header http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, newErrRequestCreationFailed(err, url)
	}

	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	return f.Do(req)
}

// drainAndCloseBody 커넥션 재사용을 위해 응답 본문을 제한된 크기만큼 비우고 닫습니다.
func drainAndCloseBody(body io.ReadCloser) {
	if body == nil {
		return
	}

	_, _ = io.Copy(io.Discard, io.LimitReader(body, maxDrainBytes))
	_ = body.Close()
}
