package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"roomchat/domain"
	"roomchat/repositories"
	"roomchat/services"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/database"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
)

// viewer prints the history of a room as the chat would serve it.
func main() {
	_ = godotenv.Load()

	defaultPath := os.Getenv("BADGER_FILEPATH")
	if defaultPath == "" {
		defaultPath = database.DefaultPath
	}
	dbPath := flag.String("db", defaultPath, "Path to badger DB")
	room := flag.String("room", "", "Room id, empty for global including legacy messages")
	before := flag.String("before", "", "Only messages older than this timestamp (RFC3339 or Unix ms)")
	limit := flag.Int("limit", services.DefaultHistoryLimit, "Number of messages")
	flag.Parse()

	// Note: BypassLockGuard allows opening while the server holds the lock
	db, err := badger.Open(badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	logger := logs.GetLoggerFromString("ERROR")
	history := services.NewHistoryService(repositories.NewMessageRepository(db, logger), logger,
		*limit, *limit, 5*time.Second)

	ctx := context.Background()
	var messages []domain.Message
	if *before == "" {
		messages, err = history.Recent(ctx, domain.RoomID(*room), *limit)
	} else {
		cursor, parseErr := services.ParseCursor(*before)
		if parseErr != nil {
			log.Fatalf("Invalid cursor: %v", parseErr)
		}
		messages, err = history.Before(ctx, domain.RoomID(*room), &cursor, *limit)
	}
	if err != nil {
		log.Fatalf("Failed to read history: %v", err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Timestamp", "Room", "Author", "Message"})
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	for _, m := range messages {
		table.Append([]string{
			m.CreatedAt.Format(time.RFC3339Nano),
			m.EffectiveRoom().String(),
			m.Author,
			m.Content,
		})
	}
	table.Render()

	if len(messages) > 0 {
		fmt.Printf("\nOlder page: -before %s\n", messages[0].CreatedAt.Format(time.RFC3339Nano))
	}
}
