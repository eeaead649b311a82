package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Adapter for a hardware barcode scanner. These devices act as a
// keyboard: the code arrives as a line on stdin, which we forward to
// the gateway like any other scan.
func main() {
	_ = godotenv.Load()
	url := getenv("GATEWAY_URL", "http://localhost:8080/scan")
	client := &http.Client{Timeout: 5 * time.Second}

	fmt.Println("waiting for barcode scan (type 'exit' to quit)")
	sc := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("scan: ")
		if !sc.Scan() {
			break
		}
		code := strings.TrimSpace(sc.Text())
		if code == "" {
			continue
		}
		if strings.EqualFold(code, "exit") {
			break
		}
		send(client, url, code)
	}
}

func send(client *http.Client, url, barcode string) {
	body, _ := json.Marshal(map[string]string{"barcode": barcode})
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		fmt.Printf("error sending barcode: %v\n", err)
		return
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusOK {
		fmt.Printf("success: %s\n", strings.TrimSpace(string(b)))
	} else {
		fmt.Printf("failed (%d): %s\n", resp.StatusCode, strings.TrimSpace(string(b)))
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
