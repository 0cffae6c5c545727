// Command slitherd runs the game server: a websocket endpoint speaking
// the binary protocol, a fixed-interval simulation loop, and an optional
// static file server for a client build.
package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"slither-server/internal/config"
	"slither-server/internal/game"
	"slither-server/internal/session"
)

const webSocketPath = "/ws"

var upgrader = websocket.Upgrader{
	CheckOrigin:       func(r *http.Request) bool { return true },
	ReadBufferSize:    1024,
	WriteBufferSize:   4096,
	EnableCompression: true,
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	logger := log.Logger

	world := game.NewWorld(cfg)
	srv := session.NewServer(cfg, world, logger)

	for i := 0; i < cfg.Bots; i++ {
		world.Lock()
		s := world.CreateSnake(botName(i), 0, nil, true, cfg.BotSnakeStartScore)
		s.Bot.RespawnName = s.Name
		world.Unlock()
	}

	mux := http.NewServeMux()
	mux.HandleFunc(webSocketPath, func(w http.ResponseWriter, r *http.Request) {
		ip := r.Header.Get("X-Forwarded-For")
		if ip == "" {
			ip, _, _ = net.SplitHostPort(r.RemoteAddr)
		}
		if srv.Sessions.Count() >= cfg.MaxPlayers {
			http.Error(w, "server full", http.StatusServiceUnavailable)
			return
		}
		if !srv.AllowConnection(ip) {
			http.Error(w, "too many connections", http.StatusTooManyRequests)
			return
		}
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn().Err(err).Msg("websocket upgrade failed")
			return
		}
		ws.EnableWriteCompression(true)
		go srv.HandleConn(ws)
	})

	if info, err := os.Stat(cfg.StaticDir); err == nil && info.IsDir() {
		mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	httpServer := &http.Server{Addr: cfg.Port, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go srv.Run(ctx)

	go func() {
		<-ctx.Done()
		_ = httpServer.Close()
	}()

	logger.Info().Str("addr", cfg.Port).Int("bots", cfg.Bots).Msg("server listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("server error")
	}
}

func botName(i int) string {
	names := []string{
		"Viper", "Cobra", "Mamba", "Python", "Anaconda", "Sidewinder",
		"Adder", "Boa", "Krait", "Taipan",
	}
	return names[i%len(names)]
}
