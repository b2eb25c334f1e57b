package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"
)

type tokenResponse struct {
	Token string `json:"token"`
}

type listPeopleResponse struct {
	Items []struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
	} `json:"items"`
	Total int `json:"total"`
}

func main() {
	base := os.Getenv("KIMLIK_API_URL")
	if base == "" {
		base = "http://localhost:8080"
	}
	username := os.Getenv("KIMLIK_SMOKE_USER")
	password := os.Getenv("KIMLIK_SMOKE_PASSWORD")
	if username == "" || password == "" {
		log.Fatal("KIMLIK_SMOKE_USER and KIMLIK_SMOKE_PASSWORD are required")
	}

	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(base + "/healthz")
	if err != nil {
		log.Fatalf("healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("healthz returned %d", resp.StatusCode)
	}

	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		log.Fatalf("marshal credentials: %v", err)
	}
	resp, err = client.Post(base+"/v1/auth/token", "application/json", bytes.NewReader(body))
	if err != nil {
		log.Fatalf("login: %v", err)
	}
	var tok tokenResponse
	err = json.NewDecoder(resp.Body).Decode(&tok)
	resp.Body.Close()
	if err != nil || resp.StatusCode != http.StatusOK || tok.Token == "" {
		log.Fatalf("login failed: status=%d err=%v", resp.StatusCode, err)
	}

	req, err := http.NewRequest(http.MethodGet, base+"/v1/people", nil)
	if err != nil {
		log.Fatalf("build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	resp, err = client.Do(req)
	if err != nil {
		log.Fatalf("list people: %v", err)
	}
	var people listPeopleResponse
	err = json.NewDecoder(resp.Body).Decode(&people)
	resp.Body.Close()
	if err != nil || resp.StatusCode != http.StatusOK {
		log.Fatalf("list people failed: status=%d err=%v", resp.StatusCode, err)
	}
	if people.Total < 1 {
		log.Fatal("directory reports no people")
	}
	found := false
	for _, p := range people.Items {
		if p.Username == username {
			found = true
			break
		}
	}
	if !found {
		log.Fatalf("smoke user %q missing from listing", username)
	}

	fmt.Printf("✅ directory smoke test passed: %d people known to %s\n", people.Total, base)
}
