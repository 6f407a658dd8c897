package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "financing-cli",
		Short: "Floor plan financing CLI tool",
		Long:  `A command line interface for interacting with the floor plan financing API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the financing API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(unitsCmd())
	rootCmd.AddCommand(summaryCmd())
	rootCmd.AddCommand(payoffQuoteCmd())
	rootCmd.AddCommand(consistencyCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func unitsCmd() *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "units",
		Short: "List financed stock units",
		Run: func(cmd *cobra.Command, args []string) {
			listUnits(limit, offset)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of units to return")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of units to skip")

	return cmd
}

func summaryCmd() *cobra.Command {
	var asOf string

	cmd := &cobra.Command{
		Use:   "summary <unit-id>",
		Short: "Show a unit's debt summary",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			query := url.Values{}
			if asOf != "" {
				query.Set("as_of", asOf)
			}
			getAndPrint(fmt.Sprintf("/api/v1/units/%s/debt-summary", args[0]), query)
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "Summary date (YYYY-MM-DD, default today)")

	return cmd
}

func payoffQuoteCmd() *cobra.Command {
	var settleOn string

	cmd := &cobra.Command{
		Use:   "payoff-quote <unit-id>",
		Short: "Quote the full payoff amount for a settlement date",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			query := url.Values{}
			if settleOn != "" {
				query.Set("settle_on", settleOn)
			}
			getAndPrint(fmt.Sprintf("/api/v1/units/%s/payoff-quote", args[0]), query)
		},
	}

	cmd.Flags().StringVar(&settleOn, "settle-on", "", "Settlement date (YYYY-MM-DD, default today)")

	return cmd
}

func consistencyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "consistency",
		Short: "Check financing ledger consistency",
		Run: func(cmd *cobra.Command, args []string) {
			checkConsistency()
		},
	}
}

func listUnits(limit, offset int) {
	query := url.Values{}
	query.Set("limit", fmt.Sprintf("%d", limit))
	query.Set("offset", fmt.Sprintf("%d", offset))

	body := get("/api/v1/units", query)

	var result struct {
		Units []struct {
			ID        string  `json:"id"`
			VIN       string  `json:"vin"`
			Model     string  `json:"model"`
			Status    string  `json:"status"`
			TotalCost string  `json:"total_cost"`
			PaidOffAt *string `json:"paid_off_at"`
		} `json:"units"`
		Total int64 `json:"total"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%-28s %-18s %-24s %-10s %12s\n", "ID", "VIN", "MODEL", "STATUS", "TOTAL COST")
	for _, u := range result.Units {
		fmt.Printf("%-28s %-18s %-24s %-10s %12s\n",
			u.ID, u.VIN, truncate(u.Model, 24), u.Status, u.TotalCost)
	}
	fmt.Printf("\nTotal: %d\n", result.Total)
}

func checkConsistency() {
	body := get("/api/v1/financing/consistency", nil)

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	if consistent, ok := result["consistent"].(bool); ok && !consistent {
		fmt.Println("Consistency check FAILED")
		printJSON(result)
		os.Exit(1)
	}

	fmt.Println("Consistency check PASSED")
	printJSON(result)
}

func getAndPrint(path string, query url.Values) {
	body := get(path, query)

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	printJSON(result)
}

func get(path string, query url.Values) []byte {
	client := &http.Client{Timeout: timeout}

	target := baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	resp, err := client.Get(target)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request failed (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	return body
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("Failed to format response: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
