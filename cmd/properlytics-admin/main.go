// Command properlytics-admin moderates listings over the backend admin API.
//
// Usage:
//
//	properlytics-admin [-backend URL] -user NAME list [-type flat] [-status active] [-verified true]
//	properlytics-admin -user NAME verify <type> <id>
//	properlytics-admin -user NAME deactivate <type> <id>
//	properlytics-admin -user NAME delete <type> <id>
//	properlytics-admin -user NAME update <type> <id> key=value [key=value...]
//
// The password is read from PROPERLYTICS_ADMIN_PASSWORD.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"properlytics/internal/apiclient"
	"properlytics/internal/listing"
)

func main() {
	backendURL := flag.String("backend", "http://localhost:8000", "backend base URL")
	user := flag.String("user", "", "admin username")
	listType := flag.String("type", "", "filter by listing type: flat, house, or plot")
	listStatus := flag.String("status", "", "filter by status: active or inactive")
	listVerified := flag.String("verified", "", "filter by verification: true or false")
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	if *user == "" {
		log.Fatal("-user is required")
	}
	password := os.Getenv("PROPERLYTICS_ADMIN_PASSWORD")
	if password == "" {
		log.Fatal("PROPERLYTICS_ADMIN_PASSWORD is not set")
	}

	ctx := context.Background()
	client := apiclient.NewClient(*backendURL, apiclient.NewSession())
	if err := client.Login(ctx, *user, password); err != nil {
		log.Fatalf("login: %v", err)
	}

	var err error
	switch cmd := flag.Arg(0); cmd {
	case "list":
		err = runList(ctx, client, *listType, *listStatus, *listVerified)
	case "verify", "deactivate", "delete":
		err = runItemCommand(ctx, client, cmd, flag.Args()[1:])
	case "update":
		err = runUpdate(ctx, client, flag.Args()[1:])
	default:
		err = fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func runList(ctx context.Context, client *apiclient.Client, typ, status, verified string) error {
	var verifiedFilter *bool
	if verified != "" {
		v, err := strconv.ParseBool(verified)
		if err != nil {
			return fmt.Errorf("invalid -verified %q", verified)
		}
		verifiedFilter = &v
	}
	summaries, err := client.AdminListings(ctx, typ, status, verifiedFilter)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Println("no listings")
		return nil
	}

	rows := make([][]string, 0, len(summaries)+1)
	rows = append(rows, []string{"ID", "TYPE", "TITLE", "PRICE", "CITY", "VERIFIED", "ACTIVE"})
	for _, s := range summaries {
		rows = append(rows, []string{
			formatID(s["id"]),
			asString(s["type"]),
			asString(s["title"]),
			listing.FormatPrice(listing.PickPrice(s)),
			asString(s["city"]),
			yesNo(s["is_verified"] == true),
			yesNo(s["is_active"] == true),
		})
	}
	printTable(rows)
	return nil
}

func formatID(v any) string {
	if n, ok := v.(float64); ok {
		return strconv.FormatInt(int64(n), 10)
	}
	return asString(v)
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func runItemCommand(ctx context.Context, client *apiclient.Client, cmd string, args []string) error {
	typ, id, err := parseTarget(cmd, args, 2)
	if err != nil {
		return err
	}
	switch cmd {
	case "verify":
		verified, err := client.ToggleVerify(ctx, typ, id)
		if err != nil {
			return err
		}
		fmt.Printf("listing %d: is_verified=%t\n", id, verified)
	case "deactivate":
		active, err := client.ToggleActive(ctx, typ, id)
		if err != nil {
			return err
		}
		fmt.Printf("listing %d: is_active=%t\n", id, active)
	case "delete":
		if err := client.DeleteListing(ctx, typ, id); err != nil {
			return err
		}
		fmt.Printf("listing %d deleted\n", id)
	}
	return nil
}

func runUpdate(ctx context.Context, client *apiclient.Client, args []string) error {
	typ, id, err := parseTarget("update", args, 3)
	if err != nil {
		return err
	}
	changes := map[string]any{}
	for _, pair := range args[2:] {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("invalid change %q (want key=value)", pair)
		}
		changes[key] = coerce(value)
	}
	updated, err := client.UpdateListing(ctx, typ, id, changes)
	if err != nil {
		return err
	}
	fmt.Printf("listing %d updated (title=%v price_offer=%v)\n", id, updated["title"], updated["price_offer"])
	return nil
}

func parseTarget(cmd string, args []string, minArgs int) (string, int64, error) {
	if len(args) < minArgs {
		if cmd == "update" {
			return "", 0, fmt.Errorf("usage: update <type> <id> key=value...")
		}
		return "", 0, fmt.Errorf("usage: %s <type> <id>", cmd)
	}
	typ := args[0]
	id, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid listing id %q", args[1])
	}
	return typ, id, nil
}

// coerce turns numeric and boolean strings into their JSON-native types so the
// backend column update receives the right kind of value.
func coerce(value string) any {
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	if n, err := strconv.ParseFloat(value, 64); err == nil {
		return n
	}
	return value
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func printTable(rows [][]string) {
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = runewidth.FillRight(cell, widths[i])
		}
		fmt.Println(strings.TrimRight(strings.Join(cells, "  "), " "))
	}
}
