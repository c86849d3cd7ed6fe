package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/fatih/color"
)

var (
	success = color.New(color.FgGreen)
	failure = color.New(color.FgRed)
)

func main() {
	argsLen := len(os.Args)
	if argsLen < 2 {
		fmt.Println("Usage: cli <command> [arguments]")
		fmt.Println("Commands:")
		fmt.Println("  open <user_name> <mailing_address> <email>")
		fmt.Println("  deposit <account_id> <amount> [currency]")
		fmt.Println("  withdraw <account_id> <amount> <atm_id> [currency]")
		fmt.Println("  check <account_id> <check_nr> <amount> [currency]")
		fmt.Println("  view <account_id>")
		return
	}
	baseURL := os.Getenv("BANKACCOUNT_URL")
	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}

	cmd := os.Args[1]
	switch cmd {
	case "open":
		if argsLen < 5 {
			fmt.Println("Usage: open <user_name> <mailing_address> <email>")
			return
		}
		post(baseURL+"/accounts", map[string]any{
			"user_name":       os.Args[2],
			"mailing_address": os.Args[3],
			"email":           os.Args[4],
		})
	case "deposit":
		if argsLen < 4 {
			fmt.Println("Usage: deposit <account_id> <amount> [currency]")
			return
		}
		amount, err := strconv.ParseFloat(os.Args[3], 64)
		if err != nil {
			failure.Println("Invalid amount:", err)
			return
		}
		body := map[string]any{"amount": amount}
		if argsLen > 4 {
			body["currency"] = os.Args[4]
		}
		post(baseURL+"/accounts/"+os.Args[2]+"/deposits", body)
	case "withdraw":
		if argsLen < 5 {
			fmt.Println("Usage: withdraw <account_id> <amount> <atm_id> [currency]")
			return
		}
		amount, err := strconv.ParseFloat(os.Args[3], 64)
		if err != nil {
			failure.Println("Invalid amount:", err)
			return
		}
		body := map[string]any{"amount": amount, "atm_id": os.Args[4]}
		if argsLen > 5 {
			body["currency"] = os.Args[5]
		}
		post(baseURL+"/accounts/"+os.Args[2]+"/withdrawals/atm", body)
	case "check":
		if argsLen < 5 {
			fmt.Println("Usage: check <account_id> <check_nr> <amount> [currency]")
			return
		}
		checkNr, err := strconv.ParseUint(os.Args[3], 10, 32)
		if err != nil {
			failure.Println("Invalid check number:", err)
			return
		}
		amount, err := strconv.ParseFloat(os.Args[4], 64)
		if err != nil {
			failure.Println("Invalid amount:", err)
			return
		}
		body := map[string]any{"check_nr": checkNr, "amount": amount}
		if argsLen > 5 {
			body["currency"] = os.Args[5]
		}
		post(baseURL+"/accounts/"+os.Args[2]+"/withdrawals/check", body)
	case "view":
		if argsLen < 3 {
			fmt.Println("Usage: view <account_id>")
			return
		}
		get(baseURL + "/accounts/" + os.Args[2])
	default:
		fmt.Println("Unknown command:", cmd)
	}
}

func post(url string, body map[string]any) {
	payload, err := json.Marshal(body)
	if err != nil {
		failure.Println("Failed to encode request:", err)
		return
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload)) //nolint:gosec
	if err != nil {
		failure.Println("Request failed:", err)
		return
	}
	render(resp)
}

func get(url string) {
	resp, err := http.Get(url) //nolint:gosec
	if err != nil {
		failure.Println("Request failed:", err)
		return
	}
	render(resp)
}

func render(resp *http.Response) {
	defer resp.Body.Close() //nolint:errcheck
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		failure.Println("Failed to read response:", err)
		return
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		pretty.Write(raw)
	}
	if resp.StatusCode >= 400 {
		failure.Printf("%s\n", resp.Status)
	} else {
		success.Printf("%s\n", resp.Status)
	}
	fmt.Println(pretty.String())
}
