package api

import (
	"net/http"

	_ "github.com/AlexZinkM/narwallet/docs"
	"github.com/AlexZinkM/narwallet/internal/handler"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// SetupRouter sets up router with handlers
func SetupRouter(walletHandler *handler.WalletHandler) http.Handler {
	mux := http.NewServeMux()

	// Swagger UI
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)
	mux.Handle("/metrics", promhttp.Handler())

	// Vault endpoints
	mux.HandleFunc("/vault/create", walletHandler.CreateUser)
	mux.HandleFunc("/vault/unlock", walletHandler.Unlock)
	mux.HandleFunc("/vault/lock", walletHandler.Lock)
	mux.HandleFunc("/vault/auto-unlock", walletHandler.AutoUnlock)
	mux.HandleFunc("/vault/password", walletHandler.ChangePassword)
	mux.HandleFunc("GET /vault/options", walletHandler.GetOptions)
	mux.HandleFunc("POST /vault/options", walletHandler.SetOptions)

	// Account endpoints
	mux.HandleFunc("/accounts", walletHandler.ListAccounts)
	mux.HandleFunc("/accounts/import", walletHandler.ImportAccount)
	mux.HandleFunc("/accounts/generate", walletHandler.GenerateAccount)
	mux.HandleFunc("/accounts/reorder", walletHandler.ReorderAccounts)
	mux.HandleFunc("/accounts/remove", walletHandler.RemoveAccount)
	mux.HandleFunc("/accounts/delete", walletHandler.DeleteAccount)
	mux.HandleFunc("/accounts/qr", walletHandler.AccountQR)

	// NEAR endpoints
	mux.HandleFunc("/balance", walletHandler.GetBalance)
	mux.HandleFunc("/send", walletHandler.Send)
	mux.HandleFunc("/call", walletHandler.Call)
	mux.HandleFunc("/pools", walletHandler.ListPools)
	mux.HandleFunc("/pools/balance", walletHandler.PoolBalance)

	return mux
}
