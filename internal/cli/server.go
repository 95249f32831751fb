package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quiz-session-service/internal/app"
	"quiz-session-service/internal/config"
	"quiz-session-service/internal/domain"
	"quiz-session-service/internal/infra/memory"
	pgstore "quiz-session-service/internal/infra/postgres"
	redisstore "quiz-session-service/internal/infra/redis"
	"quiz-session-service/internal/session"
	transport "quiz-session-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz session server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.QuizLoader = memory.NewStaticQuizLoader(sampleQuizzes())
	if pool != nil {
		loader = pgstore.NewQuizLoader(pool)
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var quizRepo app.QuizRepository
	if redisClient != nil {
		quizRepo = redisstore.NewQuizRepository(redisClient, loader, quizTTL)
	} else {
		quizRepo = memory.NewQuizRepository(loader, quizTTL)
	}

	var sink session.ResultSink = memory.NewResultStore()
	if pool != nil {
		sink = pgstore.NewResultStore(pool)
	}
	if redisClient != nil {
		recentTTL := config.TTLDuration(cfg.Results.RecentTTL, 24*time.Hour)
		sink = redisstore.NewResultCache(redisClient, sink, int64(cfg.Results.RecentKeep), recentTTL)
	}

	service := app.NewSessionService(quizRepo, sink, memory.NewSessionRegistry())
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz session service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuizzes seeds a demo quiz covering each variant; production
// deployments load quizzes from Postgres instead.
func sampleQuizzes() map[string]domain.QuizDefinition {
	return map[string]domain.QuizDefinition{
		"demo-science-3": {
			ID:               "demo-science-3",
			Title:            "Science review: air and water",
			ClassLevel:       "3",
			TimeLimitMinutes: 15,
			AccessCode:       "AB12CD",
			RequireCode:      true,
			Questions: domain.QuestionList{
				domain.MCQ{
					ID:       "q1",
					Prompt:   "Which gas do we breathe in to stay alive?",
					Options:  []string{"Carbon dioxide", "Oxygen", "Nitrogen", "Helium"},
					Expected: "B",
				},
				domain.TrueFalseGroup{
					ID:         "q2",
					MainPrompt: "About water:",
					Items: []domain.TrueFalseItem{
						{ID: "q2-a", Statement: "Water boils at 100 degrees Celsius.", Expected: true},
						{ID: "q2-b", Statement: "Ice is heavier than liquid water.", Expected: false},
					},
				},
				domain.ShortAnswer{
					ID:       "q3",
					Prompt:   "At what temperature (Celsius) does water freeze?",
					Expected: "0",
				},
				domain.Matching{
					ID:     "q4",
					Prompt: "Match each state of water to an example",
					Pairs: []domain.MatchPair{
						{Left: "Solid", Right: "Ice cube"},
						{Left: "Liquid", Right: "Rain drop"},
						{Left: "Gas", Right: "Steam"},
					},
				},
				domain.MultipleSelect{
					ID:       "q5",
					Prompt:   "Select everything that is part of the water cycle",
					Options:  []string{"Evaporation", "Photosynthesis", "Condensation", "Precipitation"},
					Expected: []string{"A", "C", "D"},
				},
				domain.FillBlank{
					ID:          "q6",
					Prompt:      "Fill in the missing words",
					Text:        "Clouds form when water [vapor] cools and turns into tiny [droplets].",
					Blanks:      []string{"vapor", "droplets"},
					Distractors: []string{"ice"},
				},
				domain.Ordering{
					ID:           "q7",
					Prompt:       "Put the water cycle steps in order",
					Items:        []string{"Rain falls", "Water evaporates", "Clouds form"},
					CorrectOrder: []int{1, 2, 0},
				},
			},
		},
	}
}
