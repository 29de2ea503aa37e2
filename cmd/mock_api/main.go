package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"pralnie_bot/internal/pkg/mockapi/handlers"
)

func main() {
	http.HandleFunc("/index.php/account/login", handlers.LoginHandler)
	http.HandleFunc("/index.php/dashboard/index", handlers.DashboardHandler)
	http.HandleFunc("/index.php/accountTransaction/getTransactionList/", handlers.TransactionListHandler)
	http.HandleFunc("/index.php/topUp/createRequest", handlers.TopUpHandler)

	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	port := os.Getenv("MOCK_API_PORT")
	if port == "" {
		port = "8082"
	}
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	fmt.Printf("Mock laundry service listening on %s\n", port)
	fmt.Println("Endpoints:")
	fmt.Println("   POST /index.php/account/login")
	fmt.Println("   GET  /index.php/dashboard/index")
	fmt.Println("   GET  /index.php/accountTransaction/getTransactionList/{id}")
	fmt.Println("   POST /index.php/topUp/createRequest")
	fmt.Println("   GET  /health")

	log.Fatal(http.ListenAndServe(port, nil))
}
