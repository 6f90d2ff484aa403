package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jjangmi46/thirtymall-monitor/internal/config"
	"github.com/jjangmi46/thirtymall-monitor/internal/pkg/version"
	"github.com/jjangmi46/thirtymall-monitor/internal/service/api"
	"github.com/jjangmi46/thirtymall-monitor/internal/service/contract"
	"github.com/jjangmi46/thirtymall-monitor/internal/service/notification"
	"github.com/jjangmi46/thirtymall-monitor/internal/service/scheduler"
	"github.com/jjangmi46/thirtymall-monitor/internal/service/task"
	"github.com/jjangmi46/thirtymall-monitor/internal/service/task/browser"
	"github.com/jjangmi46/thirtymall-monitor/internal/service/task/storage"
	applog "github.com/jjangmi46/thirtymall-monitor/pkg/log"

	_ "github.com/jjangmi46/thirtymall-monitor/internal/service/task/provider/thirtymall"
)

const banner = `
  _____  _      _        _                          _  _
 |_   _|| |__  (_) _ __ | |_  _   _  _ __ ___    __ _| || |
   | |  | '_ \ | || '__|| __|| | | || '_ ` + "`" + ` _ \  / _` + "`" + ` | || |
   | |  | | | || || |   | |_ | |_| || | | | | || (_| | || |
   |_|  |_| |_||_||_|    \__| \__, ||_| |_| |_| \__,_|_||_|
                              |___/        monitor %s
--------------------------------------------------------------------------------
`

// onceModeTimeout 일회성 실행 모드에서 전체 감시 작업의 완료를 기다리는 최대 시간입니다.
const onceModeTimeout = 10 * time.Minute

// appService 애플리케이션을 구성하는 장기 실행 서비스의 공통 생명주기 인터페이스입니다.
type appService interface {
	Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error
}

func main() {
	configFile := flag.String("config", config.DefaultFilename, "설정 파일 경로")
	once := flag.Bool("once", false, "모든 감시 작업을 한 번만 실행하고 종료합니다")
	flag.Parse()

	// 1. 환경설정 로드 (로그 설정에 필요하므로 가장 먼저 수행한다)
	appConfig, err := config.LoadWithFile(*configFile)
	if err != nil {
		// 로거 초기화 전이므로 표준 에러에 출력
		fmt.Fprintf(os.Stderr, "[FATAL] 환경설정 로드 실패: %v\n", err)
		os.Exit(1)
	}

	// 2. 로그 시스템 초기화
	var logOpts applog.Options
	if appConfig.Debug {
		logOpts = applog.NewDevelopmentOptions(config.AppName)
	} else {
		logOpts = applog.NewProductionOptions(config.AppName)
	}

	appLogCloser, err := applog.Setup(logOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] 로그 시스템 초기화 실패. 서버 구동을 중단합니다. (Cause: %v)\n", err)
		os.Exit(1)
	}
	defer appLogCloser.Close()

	// 아스키아트 출력(https://ko.rakko.tools/tools/68/, 폰트:standard)
	fmt.Printf(banner, version.Version())

	buildInfo := version.Get()
	applog.WithComponentAndFields("main", applog.Fields{
		"version": buildInfo.String(),
		"env":     map[bool]string{true: "development", false: "production"}[appConfig.Debug],
	}).Info("감시 서버 초기화 시작")

	// 권장 설정 미준수 항목은 경고로만 안내한다.
	for _, warning := range appConfig.VerifyRecommendations() {
		applog.WithComponent("main").Warn(warning)
	}

	// 3. 실행 환경 준비 (브라우저 탐지, 스냅샷 저장소)
	var capability browser.Capability
	if appConfig.Browser.Enabled {
		capability = browser.DetectCapability(appConfig.Browser.ChromePath)
		if !capability.Available {
			applog.WithComponent("main").Warn("사용 가능한 Chrome/Chromium을 찾지 못했습니다. 단순 HTTP 수집 모드로 동작합니다")
		}
	}

	snapshotStore, err := storage.NewFileSnapshotStore(appConfig.Storage.Dir)
	if err != nil {
		applog.WithComponentAndFields("main", applog.Fields{
			"dir":   appConfig.Storage.Dir,
			"error": err,
		}).Error("스냅샷 저장소 초기화 실패")
		os.Exit(1)
	}

	// 4. 서비스 생성 및 의존성 연결
	taskService := task.NewService(appConfig, task.NewIDGenerator(), snapshotStore, capability)
	notificationService := notification.NewService(appConfig)

	taskService.SetNotificationSender(notificationService)

	services := []appService{notificationService, taskService}

	if !*once {
		services = append(services, scheduler.NewService(appConfig.Tasks, taskService, notificationService))

		if appConfig.API.Enabled {
			services = append(services, api.NewService(appConfig, notificationService, taskService, taskService, snapshotStore))
		}
	}

	// 5. 서비스 시작
	serviceStopCtx, cancel := context.WithCancel(context.Background())
	serviceStopWG := &sync.WaitGroup{}

	for _, s := range services {
		serviceStopWG.Add(1)
		if err := s.Start(serviceStopCtx, serviceStopWG); err != nil {
			applog.WithComponentAndFields("main", applog.Fields{
				"error": err,
			}).Error("서비스 초기화 실패")

			cancel() // 이미 시작된 서비스들도 종료
			serviceStopWG.Wait()

			applog.WithComponent("main").Error("서비스 초기화 실패로 프로그램을 종료합니다")
			os.Exit(1)
		}
	}

	if *once {
		exitCode := runOnce(serviceStopCtx, appConfig, taskService)

		cancel()
		serviceStopWG.Wait()
		os.Exit(exitCode)
	}

	// 6. 종료 시그널 대기
	termC := make(chan os.Signal, 1)
	signal.Notify(termC, syscall.SIGINT, syscall.SIGTERM)

	applog.WithComponent("main").Info("감시 서버 가동 완료")

	<-termC

	applog.WithComponent("main").Info("종료 시그널 수신")
	cancel()
	serviceStopWG.Wait()
}

// runOnce 설정된 모든 감시 명령을 한 번씩 실행하고 완료될 때까지 대기합니다.
//
// 명령 제출에 실패하거나 Aborted 상태로 끝난 작업이 있으면 1을,
// 제출된 모든 작업이 Done 상태로 완료되면 0을 반환합니다.
// 신상품이 없어 알림이 발송되지 않은 실행도 정상 완료로 취급합니다.
func runOnce(ctx context.Context, appConfig *config.AppConfig, taskService *task.Service) int {
	submitted := 0
	for _, t := range appConfig.Tasks {
		for _, c := range t.Commands {
			err := taskService.Submit(ctx, &contract.TaskSubmitRequest{
				TaskID:    contract.TaskID(t.ID),
				CommandID: contract.TaskCommandID(c.ID),
				RunBy:     contract.TaskRunByUser,
			})
			if err != nil {
				applog.WithComponentAndFields("main", applog.Fields{
					"task_id":    t.ID,
					"command_id": c.ID,
					"error":      err,
				}).Error("일회성 실행 요청 실패")
				return 1
			}
			submitted++
		}
	}

	if submitted == 0 {
		applog.WithComponent("main").Warn("실행할 감시 명령이 설정되어 있지 않습니다")
		return 0
	}

	applog.WithComponentAndFields("main", applog.Fields{
		"submitted": submitted,
	}).Info("일회성 실행 요청 완료. 작업이 끝날 때까지 대기합니다")

	// 제출 직후에는 이벤트 루프가 아직 작업을 등록하기 전일 수 있으므로,
	// 실행 목록이 비어 있어도 잠시 동안은 완료로 판단하지 않습니다.
	deadline := time.Now().Add(onceModeTimeout)
	graceUntil := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		time.Sleep(200 * time.Millisecond)

		if len(taskService.RunningTasks()) == 0 && time.Now().After(graceUntil) {
			// Aborted로 끝난 실행이 하나라도 있으면 실패로 종료합니다.
			if aborted := taskService.AbortedRunCount(); aborted > 0 {
				applog.WithComponentAndFields("main", applog.Fields{
					"aborted": aborted,
				}).Error("일회성 실행 실패: 중단된 작업이 있습니다")
				return 1
			}

			applog.WithComponent("main").Info("일회성 실행 완료")
			return 0
		}
	}

	applog.WithComponent("main").Error("일회성 실행이 제한 시간 내에 완료되지 않았습니다")
	return 1
}
