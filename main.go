package main

import (
	"fmt"
	"log"
	"strings"
	"time"

	"quizroom/config"
	"quizroom/handlers"
	"quizroom/routes"
	"quizroom/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const releaseVersion = "0.1.0"

func main() {
	cfg := &config.Config{}
	cobra.CheckErr(newCmd(cfg).Execute())
}

func newCmd(cfg *config.Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("QUIZROOM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "quizroom",
		Short:         "A real-time multiplayer quiz server with short-lived game rooms.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cfg)
		},
	}

	fs := cmd.Flags()

	fs.StringVarP(&cfg.Bind, "bind", "b", "0.0.0.0", "address to bind to (env: QUIZROOM_BIND)")
	fs.IntVarP(&cfg.Port, "port", "p", 8080, "port to listen on (env: QUIZROOM_PORT)")
	fs.StringVar(&cfg.QuestionsFile, "questions", "", "path to a JSON questions file; empty uses the built-in set (env: QUIZROOM_QUESTIONS)")
	fs.IntVar(&cfg.MinPlayers, "min-players", 2, "minimum players required to start a game (env: QUIZROOM_MIN_PLAYERS)")
	fs.DurationVar(&cfg.StartDelay, "start-delay", 1*time.Second, "delay between game start and the first question (env: QUIZROOM_START_DELAY)")
	fs.DurationVar(&cfg.QuestionTime, "question-time", 30*time.Second, "answer window per question (env: QUIZROOM_QUESTION_TIME)")
	fs.DurationVar(&cfg.RevealDelay, "reveal-delay", 3*time.Second, "time the correct answer stays on screen (env: QUIZROOM_REVEAL_DELAY)")
	fs.DurationVar(&cfg.EndGrace, "end-grace", 60*time.Second, "time a finished room stays resolvable before deletion (env: QUIZROOM_END_GRACE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("quizroom v{{.Version}}\n")

	return cmd
}

func run(cfg *config.Config) error {
	questions, err := services.LoadQuestions(cfg.QuestionsFile)
	if err != nil {
		return err
	}
	log.Printf("Loaded %d questions", questions.Count())

	roomCfg := services.RoomConfig{
		MinPlayers:   cfg.MinPlayers,
		StartDelay:   cfg.StartDelay,
		QuestionTime: cfg.QuestionTime,
		RevealDelay:  cfg.RevealDelay,
		EndGrace:     cfg.EndGrace,
		Score: services.ScoreConfig{
			BasePoints:  500,
			BonusPoints: 500,
			WindowMs:    int(cfg.QuestionTime / time.Millisecond),
		},
	}

	registry := services.NewRegistry()
	gameService := services.NewGameService(registry, questions, roomCfg)

	hub := services.NewHub(gameService)
	go hub.Run()

	gameHandler := handlers.NewGameHandler(gameService)

	router := gin.Default()
	router.Use(cors.Default())

	routes.SetupRoutes(router, gameHandler, hub)

	addr := fmt.Sprintf("%s:%d", cfg.Bind, cfg.Port)
	log.Printf("Server starting on %s", addr)
	return router.Run(addr)
}
