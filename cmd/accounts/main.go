package main

import (
	"chat-relay/moderation"
	"chat-relay/repositories"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

func main() {
	dbPath := flag.String("db", "./data/badger", "Path to badger DB")
	words := flag.Bool("words", false, "List the censored words instead of the accounts")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	if *words {
		dictionary, err := moderation.LoadDictionary(db)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(strings.Join(dictionary, "\n"))
		return
	}

	var users []repositories.User
	err = repositories.ScanUsers(db, func(user repositories.User) error {
		users = append(users, user)
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	writeAccounts(os.Stdout, users)
}

// writeAccounts renders users as a borderless table. Password hashes are never shown.
func writeAccounts(w io.Writer, users []repositories.User) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Email", "Full name", "Roles", "Created"})
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

	table.AppendBulk(lo.Map(users, func(user repositories.User, _ int) []string {
		return []string{
			user.ID,
			user.Email,
			user.FullName,
			strings.Join(user.Roles, ","),
			user.CreatedAt.Format(time.DateTime),
		}
	}))
	table.Render()
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)
	return badger.Open(opts)
}
