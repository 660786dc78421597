package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"roomchat/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/database"
	"github.com/olekukonko/tablewriter"
)

func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	// msg: for messages, room: for the directory, presence: for presence records
	prefix := flag.String("prefix", "", "Prefix to scan")
	flag.Parse()

	db, err := badger.Open(badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Kind", "Room", "At", "Detail"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	count := 0
	err = repositories.ScanRecords(db, *prefix, func(record repositories.Record, err error) {
		if err != nil {
			fmt.Printf("Error decoding key %s: %v\n", record.Key, err)
		}
		table.Append([]string{record.Key, record.Kind, record.Room, record.At, record.Detail})
		count++
	})
	if err != nil {
		log.Fatal("Error while scanning Badger: ", err)
	}

	table.Render()
	fmt.Printf("\n%d records under prefix %q\n", count, *prefix)
}
