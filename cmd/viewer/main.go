package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"krishi-mitra/content"
	"krishi-mitra/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/database"
	"github.com/olekukonko/tablewriter"
)

// viewer dumps the portal's Badger keyspace as a terminal table. It opens
// the store read-only with the lock guard bypassed, so it works while the
// portal itself is running.
func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	prefix := flag.String("prefix", "chat:", "Prefix to scan (chat:, user:, listing:)")
	msp := flag.Bool("msp", false, "Print the embedded MSP rate table and exit")
	flag.Parse()

	if *msp {
		if err := printMSP(os.Stdout); err != nil {
			log.Fatal(err)
		}
		return
	}

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	color.New(color.BgBlack, color.FgGreen).
		Printf("  ====== Krishi Mitra store (%s) ======\n", *prefix)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Kind", "Detail"})
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

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := string(item.Key())

			err := item.Value(func(v []byte) error {
				kind, detail := describe(key, v)
				table.Append([]string{key, kind, detail})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	table.Render()
}

// describe decodes a value according to its key family. Undecodable values
// fall back to a size line instead of stopping the whole dump.
func describe(key string, val []byte) (kind, detail string) {
	switch {
	case strings.HasPrefix(key, "chat:"):
		var msg domain.ChatMessage
		if err := json.Unmarshal(val, &msg); err != nil {
			break
		}
		role := color.FgCyan.Render(string(msg.Role))
		if msg.Role == domain.RoleBot {
			role = color.FgYellow.Render(string(msg.Role))
		}
		return "CHAT", fmt.Sprintf("[%s] %s (%s)",
			role, msg.Content, msg.Timestamp.Format("15:04:05"))
	case strings.HasPrefix(key, "listing:"):
		var listing domain.Listing
		if err := json.Unmarshal(val, &listing); err != nil {
			break
		}
		return "LISTING", fmt.Sprintf("%s — %s @ %.2f (%s)",
			listing.Crop, listing.Title, listing.Price, listing.Location)
	case strings.HasPrefix(key, "user:"):
		var user struct {
			Username string `json:"username"`
			Email    string `json:"email"`
		}
		if err := json.Unmarshal(val, &user); err != nil {
			break
		}
		return "USER", fmt.Sprintf("%s <%s>", user.Username, user.Email)
	}
	return "RAW", fmt.Sprintf("Size: %d bytes", len(val))
}

func printMSP(out io.Writer) error {
	store, err := content.Load()
	if err != nil {
		return err
	}

	fmt.Fprintln(out, color.New(color.BgBlack, color.FgGreen).
		Render("  ====== Minimum Support Prices (per quintal) ======"))

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Crop", "MSP", "Season"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)

	for _, rate := range store.MSPRates() {
		// Price already carries the currency symbol, e.g. "₹2,300".
		table.Append([]string{rate.Crop, rate.Price, rate.Season})
	}
	table.Render()
	return nil
}

func openDB(path string) (*badger.DB, error) {
	// BypassLockGuard allows opening while the portal process holds the lock.
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true).
		WithValueLogFileSize(10 * 1024 * 1024)

	return badger.Open(opts)
}
