package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"dealbot/bugsink"
	"dealbot/config"
	dealbotContext "dealbot/context"
	"dealbot/menu"
	"dealbot/metrics"
	"dealbot/rabbit"
	"dealbot/repository"
	"dealbot/sender"
	"dealbot/session"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	_ "github.com/lib/pq" // PostgreSQL driver
)

const PID_FILE = "dealbot.pid"

// createPidFile creates a PID file and locks it to prevent multiple instances
func createPidFile() error {
	if _, err := os.Stat(PID_FILE); err == nil {
		// PID file exists, check if process is still running
		pidBytes, err := os.ReadFile(PID_FILE)
		if err == nil {
			if pid, err := strconv.Atoi(string(pidBytes)); err == nil {
				if process, err := os.FindProcess(pid); err == nil {
					// Signal 0 only checks that the process exists
					if err := process.Signal(syscall.Signal(0)); err == nil {
						return fmt.Errorf("dealbot is already running with PID %d. Stop the existing instance first.", pid)
					}
				}
			}
		}
		log.Printf("[MAIN] Found stale PID file, removing it")
		os.Remove(PID_FILE)
	}

	currentPid := os.Getpid()
	if err := os.WriteFile(PID_FILE, []byte(strconv.Itoa(currentPid)), 0644); err != nil {
		return fmt.Errorf("failed to create PID file: %v", err)
	}

	log.Printf("[MAIN] Created PID file %s with PID %d", PID_FILE, currentPid)
	return nil
}

// removePidFile removes the PID file on shutdown
func removePidFile() {
	if err := os.Remove(PID_FILE); err != nil {
		log.Printf("[MAIN] Warning: failed to remove PID file: %v", err)
	} else {
		log.Printf("[MAIN] Removed PID file %s", PID_FILE)
	}
}

func maskToken(token string) string {
	if len(token) <= 10 {
		return "***"
	}
	return token[:10] + "..."
}

func initContext() *dealbotContext.Context {
	log.Println("[MAIN] Initializing application context")

	log.Printf("[MAIN] Using Telegram token: %s", maskToken(config.C().Telegram_Token))
	log.Printf("[MAIN] Using RabbitMQ URL: %s", config.C().Rabbit_Url)

	appContext := &dealbotContext.Context{}

	log.Println("[MAIN] Connecting to Telegram Bot API...")
	bot, err := tgbotapi.NewBotAPI(config.C().Telegram_Token)
	if err != nil {
		log.Fatalf("[MAIN] Failed to connect to Telegram: %v", err)
	}
	log.Printf("[MAIN] Authorized on Telegram account: %s", bot.Self.UserName)

	log.Println("[MAIN] Connecting to PostgreSQL database...")
	db, err := sql.Open("postgres", config.C().Db_Conn_Str)
	if err != nil {
		log.Fatalf("[MAIN] Failed to open database connection: %v", err)
	}
	if err := db.Ping(); err != nil {
		log.Fatalf("[MAIN] Failed to ping database: %v", err)
	}
	log.Println("[MAIN] Successfully connected to the database")

	appContext.SetBot(bot)
	appContext.Repo = repository.NewRepository(db)
	appContext.Config = config.C()

	return appContext
}

// Update producer: routes incoming Telegram updates to the menu
func main1(sessions *session.Store) {
	log.Println("[MAIN1] Starting update producer goroutine")

	appContext := initContext()
	appContext.Sessions = sessions
	appContext.RabbitPublish = rabbit.NewRabbitClient(config.C().Rabbit_Url, config.C().Rabbit_Queue)

	bot, ok := appContext.GetBot().(*tgbotapi.BotAPI)
	if !ok {
		log.Fatalf("[MAIN1] Updates require a Telegram bot API client")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	u.Limit = 99

	log.Println("[MAIN1] Starting to receive Telegram updates...")
	updates, err := bot.GetUpdatesChan(u)
	if err != nil {
		log.Fatalf("[MAIN1] Failed to get updates channel: %v", err)
	}

	log.Println("[MAIN1] Update producer ready, waiting for messages...")

	for update := range updates {
		if isShuttingDown.Load() {
			log.Println("[MAIN1] Shutting down, ignoring update")
			continue
		}

		if update.Message != nil {
			// Only private chats with a participant are handled
			if update.Message.From == nil || update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				log.Println("[MAIN1] Ignoring message outside a private chat")
				continue
			}

			userId := int64(update.Message.From.ID)
			startTime := time.Now()
			log.Printf("[MAIN1] Received message %d from user %d (@%s)",
				update.Message.MessageID, userId, update.Message.From.UserName)

			menu.HandleMessage(appContext, userId, update.Message)

			log.Printf("[MAIN1] Message processing completed for user %d (total duration: %v)", userId, time.Since(startTime))
		}

		if update.CallbackQuery != nil && update.CallbackQuery.From != nil {
			userId := int64(update.CallbackQuery.From.ID)
			log.Printf("[MAIN1] Received callback from user %d: %s", userId, update.CallbackQuery.Data)

			menu.HandleCallback(appContext, userId, update.CallbackQuery)
		}
	}
}

// Notification consumer: delivers queued messages to Telegram with rate limiting
func main2() {
	log.Println("[MAIN2] Starting notification consumer goroutine")

	appContext := initContext()
	appContext.RabbitConsume = rabbit.NewRabbitClient(config.C().Rabbit_Url, config.C().Rabbit_Queue)

	s := sender.NewSender(appContext)
	s.Start()

	log.Println("[MAIN2] Notification consumer ready")
}

// isShuttingDown is set by the signal goroutine and read by the update loop
var isShuttingDown atomic.Bool

func setupGracefulShutdown(sessions *session.Store) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Printf("Received signal %v, starting graceful shutdown", sig)
		gracefulShutdown(sessions)
		removePidFile()
		os.Exit(0)
	}()
}

func gracefulShutdown(sessions *session.Store) {
	log.Println("Starting graceful shutdown (max 30 seconds)")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	isShuttingDown.Store(true)

	relaySessions, negotiationSessions := sessions.Counts()
	log.Printf("Dropping %d relay and %d negotiation sessions", relaySessions, negotiationSessions)
	log.Printf("Metrics at shutdown: %v", metrics.GetMetricsSummary())

	done := make(chan struct{})
	go func() {
		bugsink.Flush(5 * time.Second)
		bugsink.Close()
		close(done)
	}()

	select {
	case <-done:
		log.Println("Operations completed")
	case <-ctx.Done():
		log.Println("Timeout reached, forcing shutdown")
	}

	log.Println("Graceful shutdown completed")
}

func main() {
	config.Init("dealbot")

	if err := createPidFile(); err != nil {
		log.Fatalf("[MAIN] %v", err)
	}
	defer removePidFile()

	if err := metrics.Init(); err != nil {
		log.Fatalf("[MAIN] Failed to initialize metrics: %v", err)
	}

	if err := bugsink.Init(); err != nil {
		log.Printf("[MAIN] Bugsink disabled: %v", err)
	}

	// Sessions live in memory only and are lost on restart
	sessions := session.NewStore()
	metrics.RegisterSessionGauges(sessions.Counts)

	setupGracefulShutdown(sessions)

	log.Println("[MAIN] Starting dealbot...")
	log.Println("[MAIN] Press Ctrl+C to stop")

	go main1(sessions)
	go main2()

	// Keep the main goroutine alive
	forever := make(chan bool)
	<-forever
}
