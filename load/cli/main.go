package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	vegeta "github.com/tsenart/vegeta/v12/lib"

	"trouvemamission-service/internal/config"
)

const (
	defaultBaseURL     = "http://localhost:8080"
	defaultRate        = 20
	defaultDuration    = 10 * time.Second
	defaultProjects    = 5
	defaultEmail       = "admin@trouvemamission.local"
	defaultPassword    = "admin-password"
	defaultResultsFile = "load/artifacts/results.bin"
	defaultTargetsFile = "load/artifacts/targets.json"
)

var resultsFile = defaultResultsFile

// environment сущности, созданные для прогона.
type environment struct {
	Token          string
	CollaboratorID int64
	ProjectIDs     []int64
}

func main() {
	var (
		baseURL   = flag.String("url", defaultBaseURL, "Base URL сервиса")
		rate      = flag.Int("rate", defaultRate, "Запросов в секунду")
		duration  = flag.Duration("duration", defaultDuration, "Длительность теста (например, 10s)")
		projects  = flag.Int("projects", defaultProjects, "Сколько проектов конкурирует за одного сотрудника")
		email     = flag.String("email", defaultEmail, "Email администратора")
		password  = flag.String("password", defaultPassword, "Пароль администратора")
		setupOnly = flag.Bool("setup-only", false, "Только подготовка окружения")
		report    = flag.Bool("report", false, "Показать отчёт из сохранённых результатов")
		plot      = flag.Bool("plot", false, "Сгенерировать HTML график из сохранённых результатов")
		targets   = flag.String("targets", targetsPath(), "Куда сохранить цели атаки для vegeta attack -format=json")
	)
	flag.Parse()

	if *report {
		showReport()
		return
	}

	if *plot {
		generatePlot()
		return
	}

	fmt.Println("=== Нагрузочное тестирование с Vegeta ===")
	fmt.Printf("URL: %s\n", *baseURL)
	fmt.Printf("Rate: %d req/s\n", *rate)
	fmt.Printf("Duration: %s\n", *duration)
	fmt.Println()

	fmt.Println("1. Подготовка тестового окружения...")
	env, err := setupEnvironment(*baseURL, *email, *password, *projects)
	if err != nil {
		log.Fatalf("Ошибка при подготовке окружения: %v", err)
	}
	if err := writeTargets(*targets, *baseURL, env); err != nil {
		log.Fatalf("Ошибка при сохранении целей: %v", err)
	}
	if *setupOnly {
		return
	}

	fmt.Println()
	fmt.Println("2. Параллельные назначения одного сотрудника...")
	created, err := runLoadTest(*baseURL, *rate, *duration, env)
	if err != nil {
		log.Fatalf("Ошибка при нагрузочном тестировании: %v", err)
	}
	if created != 1 {
		log.Fatalf("Ожидалось ровно одно успешное назначение, получено %d", created)
	}

	fmt.Println()
	fmt.Println("=== Тестирование завершено ===")
	fmt.Println("Для детального анализа выполните:")
	fmt.Printf("  go run ./load/cli -report\n")
	fmt.Printf("  go run ./load/cli -plot\n")
}

// sendOnce отправляет один запрос через vegeta и возвращает результат с телом ответа.
func sendOnce(target vegeta.Target) (*vegeta.Result, error) {
	attacker := vegeta.NewAttacker()
	var last *vegeta.Result
	for res := range attacker.Attack(vegeta.NewStaticTargeter(target), vegeta.Rate{Freq: 1, Per: time.Second}, time.Second, "setup") {
		last = res
	}
	if last == nil {
		return nil, fmt.Errorf("%s %s: нет ответа", target.Method, target.URL)
	}
	if last.Error != "" && last.Code == 0 {
		return nil, fmt.Errorf("%s %s: %s", target.Method, target.URL, last.Error)
	}
	return last, nil
}

func jsonTarget(method, url, token string, payload any) (vegeta.Target, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return vegeta.Target{}, fmt.Errorf("marshal payload: %w", err)
	}
	header := http.Header{"Content-Type": []string{"application/json"}}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	return vegeta.Target{Method: method, URL: url, Header: header, Body: body}, nil
}

func postJSON(url, token string, payload any, expected int, out any) error {
	target, err := jsonTarget(http.MethodPost, url, token, payload)
	if err != nil {
		return err
	}
	res, err := sendOnce(target)
	if err != nil {
		return err
	}
	if int(res.Code) != expected {
		return fmt.Errorf("POST %s: статус %d: %s", url, res.Code, res.Body)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(res.Body, out); err != nil {
		return fmt.Errorf("POST %s: decode: %w", url, err)
	}
	return nil
}

// setupEnvironment входит администратором и создаёт одного сотрудника и несколько проектов.
func setupEnvironment(baseURL, email, password string, projects int) (environment, error) {
	if projects <= 0 {
		return environment{}, fmt.Errorf("projects must be positive, got %d", projects)
	}
	var login struct {
		Token string `json:"token"`
	}
	if err := postJSON(baseURL+"/auth/login", "", map[string]string{"email": email, "password": password}, http.StatusOK, &login); err != nil {
		return environment{}, fmt.Errorf("login: %w", err)
	}
	env := environment{Token: login.Token}

	suffix := time.Now().UnixNano()
	var collaborator struct {
		ID int64 `json:"id"`
	}
	err := postJSON(baseURL+"/api/collaborators", env.Token, map[string]any{
		"name":   fmt.Sprintf("Load Collaborator %d", suffix),
		"email":  fmt.Sprintf("load-%d@example.com", suffix),
		"role":   "Developer",
		"skills": []string{"Go"},
	}, http.StatusCreated, &collaborator)
	if err != nil {
		return environment{}, fmt.Errorf("create collaborator: %w", err)
	}
	env.CollaboratorID = collaborator.ID

	start := time.Now().UTC()
	for i := 0; i < projects; i++ {
		var project struct {
			ID int64 `json:"id"`
		}
		err := postJSON(baseURL+"/api/projects", env.Token, map[string]any{
			"name":      fmt.Sprintf("Load Project %d-%d", suffix, i),
			"client":    "Load Client",
			"status":    "EN_COURS",
			"startDate": start.Format("2006-01-02"),
			"endDate":   start.AddDate(0, 3, 0).Format("2006-01-02"),
		}, http.StatusCreated, &project)
		if err != nil {
			return environment{}, fmt.Errorf("create project: %w", err)
		}
		env.ProjectIDs = append(env.ProjectIDs, project.ID)
	}

	fmt.Printf("Сотрудник %d и проекты %v созданы\n", env.CollaboratorID, env.ProjectIDs)
	return env, nil
}

// runLoadTest атакует создание назначений одного сотрудника на разные проекты.
// Возвращает число успешных созданий: при корректной работе сервиса оно равно единице.
func runLoadTest(baseURL string, rate int, duration time.Duration, env environment) (int, error) {
	if rate <= 0 {
		return 0, fmt.Errorf("rate must be positive, got %d", rate)
	}
	if len(env.ProjectIDs) == 0 {
		return 0, fmt.Errorf("no projects to assign to")
	}
	targeter := newAssignmentTargeter(baseURL, env)

	// Настраиваем атакующего
	workers := uint64(rate)
	attacker := vegeta.NewAttacker(
		vegeta.Timeout(30*time.Second),
		vegeta.Workers(workers),
	)

	var metrics vegeta.Metrics
	ctx, cancel := context.WithTimeout(context.Background(), duration+5*time.Second)
	defer cancel()

	rateLimit := vegeta.Rate{Freq: rate, Per: time.Second}
	results := attacker.Attack(targeter, rateLimit, duration, "assignments")

	var allResults []vegeta.Result
	for res := range results {
		if ctx.Err() != nil {
			attacker.Stop()
			continue
		}
		metrics.Add(res)
		allResults = append(allResults, *res)
	}
	metrics.Close()

	if err := saveResults(allResults); err != nil {
		return 0, fmt.Errorf("сохранить результаты: %w", err)
	}

	reporter := vegeta.NewTextReporter(&metrics)
	if err := reporter(os.Stdout); err != nil {
		return 0, fmt.Errorf("сгенерировать отчёт: %w", err)
	}

	created := metrics.StatusCodes["201"]
	fmt.Printf("Создано: %d, отклонено как ALREADY_ASSIGNED: %d\n", created, metrics.StatusCodes["409"])
	return created, nil
}

// newAssignmentTargeter по кругу перебирает проекты для одного и того же сотрудника.
func newAssignmentTargeter(baseURL string, env environment) vegeta.Targeter {
	var next atomic.Uint64
	return func(t *vegeta.Target) error {
		i := next.Add(1) - 1
		projectID := env.ProjectIDs[int(i%uint64(len(env.ProjectIDs)))]
		target, err := jsonTarget(http.MethodPost, baseURL+"/api/assignments", env.Token, map[string]any{
			"collaboratorId": env.CollaboratorID,
			"projectId":      projectID,
			"role":           "Developer",
		})
		if err != nil {
			return err
		}
		*t = target
		return nil
	}
}

// targetsPath берёт путь к файлу целей из конфигурации сервиса, если она доступна.
func targetsPath() string {
	cfg, err := config.Load()
	if err != nil || cfg.LoadTests.TargetsPath == "" {
		return defaultTargetsFile
	}
	return cfg.LoadTests.TargetsPath
}

// writeTargets сохраняет по одной цели на проект, чтобы атаку можно было повторить утилитой vegeta.
func writeTargets(path, baseURL string, env environment) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("создать директорию: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("создать файл: %w", err)
	}
	defer file.Close()

	targeter := newAssignmentTargeter(baseURL, env)
	enc := vegeta.NewJSONTargetEncoder(file)
	for range env.ProjectIDs {
		var target vegeta.Target
		if err := targeter(&target); err != nil {
			return err
		}
		if err := enc(&target); err != nil {
			return fmt.Errorf("записать цель: %w", err)
		}
	}
	fmt.Printf("Цели сохранены в %s\n", path)
	return nil
}

// saveResults сохраняет результаты в бинарный файл
func saveResults(results []vegeta.Result) error {
	if err := os.MkdirAll(filepath.Dir(resultsFile), 0o755); err != nil {
		return fmt.Errorf("создать директорию: %w", err)
	}

	file, err := os.Create(resultsFile)
	if err != nil {
		return fmt.Errorf("создать файл: %w", err)
	}
	defer file.Close()

	encoder := vegeta.NewEncoder(file)
	for i := range results {
		if err := encoder.Encode(&results[i]); err != nil {
			return fmt.Errorf("записать результат: %w", err)
		}
	}

	fmt.Printf("Результаты сохранены в %s\n", resultsFile)
	return nil
}

// showReport показывает отчёт из сохранённых результатов
func showReport() {
	if err := renderReport(os.Stdout, resultsFile); err != nil {
		log.Fatalf("Не удалось построить отчёт: %v", err)
	}
}

func renderReport(out io.Writer, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open results: %w", err)
	}
	defer file.Close()

	decoder := vegeta.NewDecoder(file)
	var metrics vegeta.Metrics

	for {
		var res vegeta.Result
		if err := decoder.Decode(&res); err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("decode result: %w", err)
		}
		metrics.Add(&res)
	}
	metrics.Close()

	reporter := vegeta.NewTextReporter(&metrics)
	if err := reporter(out); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

// generatePlot печатает команду для HTML графика: его строит CLI утилита vegeta
func generatePlot() {
	writePlotInstructions(os.Stdout)
}

func writePlotInstructions(out io.Writer) {
	fmt.Fprintln(out, "Для генерации HTML графика используйте CLI утилиту vegeta:")
	fmt.Fprintf(out, "  vegeta plot %s > load/artifacts/plot.html\n", resultsFile)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Установка CLI утилиты:")
	fmt.Fprintln(out, "  go install github.com/tsenart/vegeta/v12@latest")
}
