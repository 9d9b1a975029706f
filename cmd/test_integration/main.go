package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/tidwall/gjson"
)

// Smoke test against a running server backed by a loaded Memgraph:
//
//	synquery load synapses.csv
//	synquery load-connectors treenodes.csv connectors.csv
//	go run ./cmd/server &
//	NEURON_ID=101 SKELETON_ID=42 go run ./cmd/test_integration
func main() {
	baseURL := getenv("BASE_URL", "http://localhost:8080")
	neuron := getenv("NEURON_ID", "101")
	skeleton := getenv("SKELETON_ID", "42")

	// Wait for server to start
	time.Sleep(2 * time.Second)

	fmt.Println("Starting Integration Test...")

	fmt.Println("1. Health check...")
	if _, ok := sendRequest(baseURL, http.MethodGet, "/healthz", nil); !ok {
		fmt.Println("FAILED: Health check")
		os.Exit(1)
	}
	fmt.Println("PASSED: Health check")

	fmt.Println("2. Partner table...")
	body, ok := sendRequest(baseURL, http.MethodPost, "/partners", map[string]any{
		"neuron_ids": []json.Number{json.Number(neuron)},
		"direction":  "post",
		"threshold":  1,
	})
	if !ok {
		fmt.Println("FAILED: Partner table")
		os.Exit(1)
	}
	rows := gjson.GetBytes(body, "count").Int()
	if rows == 0 {
		fmt.Println("FAILED: Partner table is empty; load synapses first")
		os.Exit(1)
	}
	fmt.Printf("PASSED: Partner table (%d rows, top partner %s)\n",
		rows, gjson.GetBytes(body, "partners.0.partner_id").String())

	fmt.Println("3. Connector coordinates...")
	body, ok = sendRequest(baseURL, http.MethodPost, "/connectors", map[string]any{
		"skeleton_id": json.Number(skeleton),
		"transform":   false,
	})
	if !ok {
		fmt.Println("FAILED: Connector coordinates")
		os.Exit(1)
	}
	in := gjson.GetBytes(body, "inputs.points.#").Int()
	out := gjson.GetBytes(body, "outputs.points.#").Int()
	fmt.Printf("PASSED: Connector coordinates (%d inputs, %d outputs)\n", in, out)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func sendRequest(baseURL, method, endpoint string, payload any) ([]byte, bool) {
	var body io.Reader
	if payload != nil {
		jsonBytes, _ := json.Marshal(payload)
		body = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, baseURL+endpoint, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return nil, false
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return nil, false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(respBody))
		return nil, false
	}
	fmt.Printf("Response: %s\n", string(respBody))

	return respBody, true
}
