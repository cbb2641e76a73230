package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ledzpl/trelay/internal/relay"
	"github.com/ledzpl/trelay/pkg/tcpserver"
)

func main() {
	addr := flag.String("addr", ":8888", "TCP address for the chat relay")
	wsAddr := flag.String("ws-addr", "", "Optional HTTP address serving the relay over WebSocket at /ws (empty disables)")
	flag.Parse()

	logger := log.New(os.Stdout, "", log.LstdFlags)

	room := relay.NewRoom(relay.WithLogger(logger))
	server := tcpserver.New(*addr, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if *wsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/ws", relay.WSHandler(room, logger))
		gateway := &http.Server{Addr: *wsAddr, Handler: mux}

		go func() {
			<-ctx.Done()
			_ = gateway.Close()
		}()
		go func() {
			logger.Printf("websocket gateway listening on %s", *wsAddr)
			if err := gateway.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Printf("websocket gateway stopped: %v", err)
			}
		}()
	}

	err := server.ListenAndServe(ctx, func(conn net.Conn) {
		relay.HandleSession(room, relay.NewTCPConn(conn))
	})

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("server stopped with error: %v", err)
	}
}
