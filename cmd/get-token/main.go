package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// One-time helper: runs the OAuth2 consent flow for the Drive/Sheets
// scopes and prints the refresh token to put in GOOGLE_REFRESH_TOKEN.
func main() {
	port := flag.Int("port", 8080, "local port for the OAuth callback")
	timeout := flag.Duration("timeout", 5*time.Minute, "how long to wait for the consent redirect")
	flag.Parse()

	_ = godotenv.Load()

	clientID := os.Getenv("GOOGLE_OAUTH_ID")
	clientSecret := os.Getenv("GOOGLE_OAUTH_SECRET")
	if clientID == "" || clientSecret == "" {
		log.Fatal("GOOGLE_OAUTH_ID and GOOGLE_OAUTH_SECRET must be set")
	}

	cfg := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  fmt.Sprintf("http://localhost:%d/callback", *port),
		Scopes: []string{
			"https://www.googleapis.com/auth/drive.file",
			"https://www.googleapis.com/auth/spreadsheets",
		},
	}

	authURL := cfg.AuthCodeURL("state-token",
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"))

	fmt.Println("Open this URL in your browser and approve access:")
	fmt.Println()
	fmt.Println(authURL)
	fmt.Println()

	codeCh := make(chan string, 1)
	server := &http.Server{Addr: fmt.Sprintf(":%d", *port)}
	http.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code parameter", http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "Authorization received. You can close this tab.")
		codeCh <- code
	})

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("callback server failed: %v", err)
		}
	}()

	var code string
	select {
	case code = <-codeCh:
	case <-time.After(*timeout):
		log.Fatal("timed out waiting for the consent redirect")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = server.Shutdown(ctx)

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		log.Fatalf("failed to exchange authorization code: %v", err)
	}
	if token.RefreshToken == "" {
		log.Fatal("no refresh token returned; revoke prior access at https://myaccount.google.com/permissions and retry")
	}

	fmt.Println("Add this to your environment:")
	fmt.Printf("GOOGLE_REFRESH_TOKEN=%s\n", token.RefreshToken)
}
