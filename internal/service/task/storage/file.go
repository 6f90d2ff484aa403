package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/jjangmi46/thirtymall-monitor/internal/service/contract"
	"github.com/jjangmi46/thirtymall-monitor/pkg/concurrency"
	applog "github.com/jjangmi46/thirtymall-monitor/pkg/log"
)

// component Task 서비스의 Storage 로깅용 컴포넌트 이름
const component = "task.storage"

// defaultDataDirectory 스냅샷을 저장할 기본 디렉토리 이름입니다.
const defaultDataDirectory = "watchdata"

// tempFilePattern 원자적 쓰기 과정에서 사용되는 임시 파일의 이름 패턴입니다.
const tempFilePattern = "snapshot-*.tmp"

// fileSnapshotStore 파일 시스템 기반의 스냅샷 저장소 구현체입니다.
//
// 감시 작업마다 하나의 JSON 파일(watch-{taskID}-{commandID}-{hash}.json)을 가지며,
// 저장은 매번 파일 전체를 교체하는 방식으로 동작합니다.
// 파일은 사람이 직접 열어 확인할 수 있도록 탭 들여쓰기된 JSON으로 기록됩니다.
type fileSnapshotStore struct {
	baseDir string

	// locks 동일한 파일에 대한 동시 읽기/쓰기를 직렬화하는 파일별 뮤텍스입니다.
	locks *concurrency.KeyedMutex[string]
}

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ contract.TaskResultStore = (*fileSnapshotStore)(nil)

// NewFileSnapshotStore 파일 시스템 기반의 스냅샷 저장소를 생성합니다.
//
// 초기화 과정에서 저장 디렉토리를 생성하고, 이전 실행의 비정상 종료로 남은
// 임시 파일을 백그라운드에서 정리합니다.
//
// dir에 빈 문자열을 전달하면 기본 디렉토리("watchdata")를 사용하며,
// 상대 경로는 절대 경로로 변환됩니다.
func NewFileSnapshotStore(dir string) (contract.TaskResultStore, error) {
	if dir == "" {
		dir = defaultDataDirectory
	}

	// 이후 모든 파일 작업의 기준이 되는 절대 경로로 변환합니다.
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, newErrStoreInitFailed(err, dir)
	}

	// Save 시점이 아닌 초기화 시점에 디렉토리 생성과 접근 권한을 미리 확인합니다.
	if err := os.MkdirAll(absDir, 0755); err != nil {
		return nil, newErrStoreInitFailed(err, absDir)
	}

	s := &fileSnapshotStore{
		baseDir: absDir,

		locks: concurrency.NewKeyedMutex[string](),
	}

	// 시작 속도에 영향을 주지 않도록 잔존 임시 파일 정리는 비동기로 수행합니다.
	go func() {
		defer func() {
			if r := recover(); r != nil {
				applog.WithComponentAndFields(component, applog.Fields{
					"base_dir": s.baseDir,
					"panic":    r,
				}).Error("임시 파일 정리 중단: 백그라운드 작업 패닉 발생")
			}
		}()

		s.cleanupStaleTempFiles()
	}()

	return s, nil
}

// cleanupStaleTempFiles 이전 실행의 비정상 종료(크래시, 강제 종료)로 남은 임시 파일을 정리합니다.
func (s *fileSnapshotStore) cleanupStaleTempFiles() {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"dir":   s.baseDir,
			"error": err,
		}).Warn("임시 파일 정리 중단: 디렉토리 조회 실패")

		return
	}

	// 1시간 이내에 수정된 임시 파일은 현재 진행 중인 쓰기일 수 있으므로 보호합니다.
	threshold := time.Now().Add(-1 * time.Hour)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		matched, _ := filepath.Match(tempFilePattern, name)
		if !matched {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.ModTime().After(threshold) {
			continue
		}

		fullPath := filepath.Join(s.baseDir, name)
		if err := os.Remove(fullPath); err != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"file":  fullPath,
				"error": err,
			}).Warn("임시 파일 삭제 실패")
		} else {
			applog.WithComponentAndFields(component, applog.Fields{
				"file": fullPath,
			}).Info("이전 실행 잔존 임시 파일 삭제 완료")
		}
	}
}

// Load 저장된 스냅샷을 파일에서 읽어 v에 채웁니다.
//
// 파일이 존재하지 않으면 contract.ErrTaskResultNotFound를 반환하며,
// 호출자는 이를 "최초 실행"으로 해석하여 빈 기준선으로 진행해야 합니다.
//
// Lock 보유 시간을 줄이기 위해 파일 읽기(I/O)만 Lock 내부에서 수행하고
// JSON 역직렬화는 Lock 해제 후 수행합니다.
func (s *fileSnapshotStore) Load(taskID contract.TaskID, commandID contract.TaskCommandID, v any) error {
	// v가 nil이 아닌 포인터인지 검증하여 잘못된 호출을 즉시 차단합니다.
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return ErrLoadRequiresPointer
	}

	filename, err := s.resolveSafePath(taskID, commandID)
	if err != nil {
		return err
	}

	// 대소문자를 구분하지 않는 파일 시스템(Windows)을 위해 Lock 키는 소문자로 정규화합니다.
	var data []byte
	err = s.locks.WithLockErr(strings.ToLower(filename), func() error {
		var readErr error
		data, readErr = os.ReadFile(filename)
		if readErr != nil {
			if os.IsNotExist(readErr) {
				return contract.ErrTaskResultNotFound
			}

			return newErrSnapshotReadFailed(readErr)
		}

		return nil
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, v); err != nil {
		return newErrSnapshotDecodeFailed(err)
	}

	return nil
}

// Save 스냅샷을 파일에 저장합니다. 기존 파일은 전체가 교체됩니다.
//
// 저장 중 시스템 장애가 발생해도 기존 스냅샷이 손상되지 않도록
// "임시 파일 쓰기 → fsync → 원자적 rename" 순서로 기록합니다.
func (s *fileSnapshotStore) Save(taskID contract.TaskID, commandID contract.TaskCommandID, v any) error {
	filename, err := s.resolveSafePath(taskID, commandID)
	if err != nil {
		return err
	}

	// 직렬화는 Lock 획득 전에 수행합니다.
	// 스냅샷 파일은 사람이 읽는 것을 전제로 하므로 탭 들여쓰기를 적용합니다.
	data, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		return newErrSnapshotEncodeFailed(err)
	}

	return s.locks.WithLockErr(strings.ToLower(filename), func() error {
		return s.writeAtomic(filename, data)
	})
}

// resolveSafePath TaskID, CommandID로부터 저장소 디렉토리 안쪽임이 검증된 파일 경로를 생성합니다.
func (s *fileSnapshotStore) resolveSafePath(taskID contract.TaskID, commandID contract.TaskCommandID) (string, error) {
	filename := generateFilename(taskID, commandID)

	cleanPath := filepath.Clean(filepath.Join(s.baseDir, filename))

	// 접두사 비교 대신 filepath.Rel로 검증하여
	// 형제 디렉토리 접두사(예: /data와 /data-evil) 우회를 차단합니다.
	rel, err := filepath.Rel(s.baseDir, cleanPath)
	if err != nil {
		return "", newErrPathResolutionFailed(err)
	}

	if strings.HasPrefix(rel, "..") {
		applog.WithComponentAndFields(component, applog.Fields{
			"task_id":    taskID,
			"command_id": commandID,
			"filename":   filename,
			"base_dir":   s.baseDir,
			"path":       cleanPath,
		}).Error("스냅샷 파일 경로 생성 차단: 경로 이탈 감지")

		return "", ErrPathTraversalDetected
	}

	return cleanPath, nil
}

// writeAtomic 데이터를 파일에 원자적으로 기록합니다.
//
// rename이 원자적으로 동작하려면 임시 파일이 대상 파일과 같은 파일 시스템에
// 있어야 하므로, 임시 파일은 대상 파일과 같은 디렉토리에 생성합니다.
func (s *fileSnapshotStore) writeAtomic(filename string, data []byte) error {
	dir := filepath.Dir(filename)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return newErrSnapshotWriteFailed(err, "저장 디렉토리 생성")
	}

	tmpFile, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return newErrSnapshotWriteFailed(err, "임시 파일 생성")
	}
	tmpPath := tmpFile.Name()

	// Windows에서는 열린 파일을 삭제할 수 없으므로 Close가 Remove보다 먼저 실행되어야 합니다.
	// (defer는 역순 실행)
	defer os.Remove(tmpPath)
	defer tmpFile.Close()

	if _, err := tmpFile.Write(data); err != nil {
		return newErrSnapshotWriteFailed(err, "파일 쓰기")
	}

	// 운영체제 버퍼에만 기록된 상태에서 전원이 차단되면 데이터가 유실되므로
	// rename 전에 물리 디스크 기록을 보장합니다.
	if err := tmpFile.Sync(); err != nil {
		return newErrSnapshotWriteFailed(err, "디스크 동기화")
	}

	// Windows에서는 열린 파일의 rename이 실패하므로 먼저 닫습니다.
	if err := tmpFile.Close(); err != nil {
		return newErrSnapshotWriteFailed(err, "파일 닫기")
	}

	if err := s.renameWithRetry(tmpPath, filename); err != nil {
		return newErrSnapshotWriteFailed(err, "파일 이름 변경")
	}

	// 디렉토리 엔트리 변경도 디스크에 반영합니다. 실패는 치명적이지 않으므로 무시합니다.
	if dirFile, err := os.Open(dir); err == nil {
		_ = dirFile.Sync()
		dirFile.Close()
	}

	return nil
}

// renameWithRetry 파일 이름 변경을 짧은 재시도와 함께 수행합니다.
//
// Windows 개발 환경에서는 백신이나 인덱서가 파일을 일시적으로 잠가
// rename이 실패할 수 있으므로 짧게 대기 후 재시도합니다.
func (s *fileSnapshotStore) renameWithRetry(oldPath, newPath string) error {
	const maxRetries = 5
	const retryDelay = 10 * time.Millisecond

	var lastErr error
	for range maxRetries {
		err := os.Rename(oldPath, newPath)
		if err == nil {
			return nil
		}

		lastErr = err
		time.Sleep(retryDelay)
	}

	return lastErr
}
