package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/sprintertech/sprinter-bridge/api/handlers"
)

func Serve(
	ctx context.Context,
	addr string,
	transfersHandler *handlers.TransfersHandler,
	messagesHandler *handlers.MessagesHandler,
	statusHandler *handlers.StatusHandler,
	adminHandler *handlers.AdminHandler,
) {
	r := mux.NewRouter()
	r.HandleFunc("/v1/transfers", transfersHandler.HandleInitiate).Methods("POST")
	r.HandleFunc("/v1/transfers/complete", transfersHandler.HandleComplete).Methods("POST")
	r.HandleFunc("/v1/transfers/{id}", statusHandler.HandleTransferStatus).Methods("GET")
	r.HandleFunc("/v1/messages", messagesHandler.HandleSend).Methods("POST")
	r.HandleFunc("/v1/messages/receive", messagesHandler.HandleReceive).Methods("POST")
	r.HandleFunc("/v1/messages/{id}", statusHandler.HandleMessageStatus).Methods("GET")
	r.HandleFunc("/v1/chains", statusHandler.HandleChains).Methods("GET")
	r.HandleFunc("/v1/chains/{chainId:[0-9]+}", statusHandler.HandleChainSupported).Methods("GET")
	r.HandleFunc("/v1/users/{address}/limits", statusHandler.HandleUserLimits).Methods("GET")

	r.HandleFunc("/v1/admin/chains/{chainId:[0-9]+}", adminHandler.HandleAddChain).Methods("POST")
	r.HandleFunc("/v1/admin/chains/{chainId:[0-9]+}", adminHandler.HandleRemoveChain).Methods("DELETE")
	r.HandleFunc("/v1/admin/chains/{chainId:[0-9]+}/relayers/{address}", adminHandler.HandleAuthorizeRelayer).Methods("POST")
	r.HandleFunc("/v1/admin/chains/{chainId:[0-9]+}/relayers/{address}", adminHandler.HandleRevokeRelayer).Methods("DELETE")
	r.HandleFunc("/v1/admin/fees", adminHandler.HandleSetFees).Methods("PUT")
	r.HandleFunc("/v1/admin/limits/global", adminHandler.HandleSetGlobalLimit).Methods("PUT")
	r.HandleFunc("/v1/admin/limits/assets/{address}", adminHandler.HandleSetAssetLimit).Methods("PUT")
	r.HandleFunc("/v1/admin/limits/users/{address}", adminHandler.HandleSetUserLimits).Methods("PUT")
	r.HandleFunc("/v1/admin/limits/users/{address}", adminHandler.HandleRemoveUserLimits).Methods("DELETE")
	r.HandleFunc("/v1/admin/assets/wrapped", adminHandler.HandleCreateWrappedAsset).Methods("POST")

	server := &http.Server{
		Addr:        addr,
		Handler:     r,
		ReadTimeout: time.Second * 10,
	}
	go func() {
		log.Info().Msgf("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := server.Shutdown(shutdownCtx)
	if err != nil {
		log.Err(err).Msgf("Error shutting down server")
	} else {
		log.Info().Msgf("Server shut down gracefully.")
	}
}
