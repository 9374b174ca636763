package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/neem-ai/assistant/backend/internal/config"
	"github.com/neem-ai/assistant/backend/internal/model/chat"
	"github.com/neem-ai/assistant/backend/internal/model/role"
	"github.com/neem-ai/assistant/backend/internal/service/conversation"
	"github.com/neem-ai/assistant/backend/internal/service/monitor"
	"github.com/neem-ai/assistant/backend/pkg/chatapi"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] failed to load .env, using system environment: %v", err)
	}

	server := flag.String("server", "http://localhost:8080", "assistant backend base URL")
	text := flag.String("text", "", "message to send")
	roleID := flag.String("role", role.DefaultID, "audience role: customer, finance or tech")
	timeout := flag.Duration("timeout", 45*time.Second, "request timeout")
	flag.Parse()

	if strings.TrimSpace(*text) == "" {
		flag.Usage()
		log.Fatal("provide a message with -text")
	}
	if _, ok := role.NewMemoryStore(role.Seed()).FindByID(*roleID); !ok {
		log.Fatalf("unknown role %q", *roleID)
	}

	timings := config.DefaultSessionConfig()
	if cfg, err := config.Load(); err == nil {
		timings = cfg.Session
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client := chatapi.New(*server, nil)
	session := conversation.New(client, conversation.Options{
		Role: *roleID,
		Timings: conversation.Timings{
			SentDelay:      timings.StatusSentDelay,
			DeliveredDelay: timings.StatusDeliveredDelay,
		},
	})
	defer session.Close()

	mon := monitor.New(client, session, timings.HealthPollInterval)
	mon.Start(ctx)
	defer mon.Stop()

	if state := session.Connection(); state != chat.ConnectionConnected {
		log.Fatalf("backend at %s is %s", *server, state)
	}

	start := time.Now()
	result, err := session.Submit(ctx, *text)
	if err != nil {
		log.Fatalf("submit rejected: %v", err)
	}
	log.Printf("round trip %s", time.Since(start).Round(time.Millisecond))

	printTranscript(session.Snapshot())
	if result.Err != nil {
		os.Exit(1)
	}
}

func printTranscript(snap chat.Snapshot) {
	fmt.Printf("session %s role=%s connection=%s\n\n", snap.ID, snap.Role, snap.Connection)
	for _, m := range snap.Messages {
		label := string(m.Origin)
		switch {
		case m.Status != "":
			label += " [" + string(m.Status) + "]"
		case m.Category != "":
			label += " (" + string(m.Category) + ")"
		}
		fmt.Printf("%s %s\n  %s\n", m.CreatedAt.Local().Format("15:04:05"), label, m.Text)
	}
}
