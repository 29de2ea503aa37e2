// Package handlers implements a stand-in for the laundry web service so
// the bot can be exercised locally without real credentials. The shapes
// mirror the production endpoints: login answers 302 with session cookies,
// the dashboard embeds the balance in HTML, the transaction list is JSON
// and top-up answers with a redirect link.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Fixed fixtures served to every authenticated session.
const (
	mockAccountID = "1234"
	mockBalance   = "42.50"
)

var mockTransactions = []map[string]any{
	{"Id": 1, "Value": 50.00, "Description": "Doładowanie konta"},
	{"Id": 2, "Value": -5.00, "Description": "Pralka nr 3"},
	{"Id": 3, "Value": -2.50, "Description": "Suszarka nr 1"},
}

// identityCookieValue builds a value in the shape the real service sets:
// a hash prefix, a byte-length frame and PHP-serialized session state with
// the account id at index 0.
func identityCookieValue() string {
	serialized := fmt.Sprintf(`a:4:{i:0;s:%d:"%s";i:1;s:8:"mockuser";i:2;i:2592000;i:3;a:0:{}}`,
		len(mockAccountID), mockAccountID)
	raw := fmt.Sprintf("deadbeefdeadbeef:%d:%s", len(serialized), serialized)
	return url.QueryEscape(raw)
}

// LoginHandler accepts any non-empty LoginForm credentials and answers the
// 302 + cookies handshake the real login endpoint uses.
func LoginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		sendError(w, "Bad form", http.StatusBadRequest)
		return
	}

	username := r.PostFormValue("LoginForm[username]")
	password := r.PostFormValue("LoginForm[password]")
	if username == "" || password == "" {
		// The real service re-renders the login page with a 200.
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "<html><body>Niepoprawny login lub hasło</body></html>")
		return
	}

	http.SetCookie(w, &http.Cookie{Name: "PHPSESSID", Value: "mocksession123", Path: "/"})
	http.SetCookie(w, &http.Cookie{
		Name:   "8f2b9c0d",
		Value:  identityCookieValue(),
		Path:   "/",
		MaxAge: 30 * 24 * 60 * 60,
	})
	w.Header().Set("Location", "/index.php/dashboard/index")
	w.WriteHeader(http.StatusFound)
}

// DashboardHandler serves the account page with the labeled balance.
func DashboardHandler(w http.ResponseWriter, r *http.Request) {
	if !hasSession(r) {
		sendError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<html><body>
<div class="account-status">
    <span> Stan Twojego konta </span>
    <big> %s </big>
</div>
</body></html>`, mockBalance)
}

// TransactionListHandler serves the transaction history as JSON.
func TransactionListHandler(w http.ResponseWriter, r *http.Request) {
	if !hasSession(r) {
		sendError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	sendJSON(w, mockTransactions)
}

// TopUpHandler answers a top-up request with the payment redirect.
func TopUpHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !hasSession(r) {
		sendError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if err := r.ParseForm(); err != nil {
		sendError(w, "Bad form", http.StatusBadRequest)
		return
	}

	topUpID := r.PostFormValue("top_up_id")
	if topUpID == "" {
		sendError(w, "top_up_id is required", http.StatusBadRequest)
		return
	}

	w.Header().Set("Location", "https://pay.example.com/checkout/"+topUpID)
	w.WriteHeader(http.StatusFound)
}

func hasSession(r *http.Request) bool {
	_, err := r.Cookie("PHPSESSID")
	return err == nil
}

func sendJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		sendError(w, "Encoding error", http.StatusInternalServerError)
	}
}

func sendError(w http.ResponseWriter, message string, code int) {
	http.Error(w, message, code)
}
