package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/amankv/dime-backend/internal/bootstrap"
	knotclient "github.com/amankv/dime-backend/internal/client/knot"
	"github.com/amankv/dime-backend/internal/config"
	"github.com/amankv/dime-backend/internal/crypto"
	"github.com/amankv/dime-backend/internal/handlers"
	"github.com/amankv/dime-backend/internal/notify"
	"github.com/amankv/dime-backend/internal/response"
	"github.com/amankv/dime-backend/internal/router"
	"github.com/amankv/dime-backend/internal/services"
	"github.com/amankv/dime-backend/internal/store"
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	// bootstrap
	cfg := config.New()
	bs, err := bootstrap.Run(cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

	// helpers
	kmsHelper := crypto.NewKMS(bs.KMS, cfg.KMSKeyName)
	notifier := notify.New(cfg.NotifyURL)

	// stores
	tstore := store.NewTransactionStore(bs.Firestore)
	cstore := store.NewCardStore(bs.Firestore)
	mstore := store.NewMerchantStore(bs.Firestore)
	estore := store.NewEmbeddingStore(bs.Firestore)

	// services
	syncserv := services.NewSyncService(bs.KnotAdapter, tstore, mstore, knotclient.ParseTransaction, notifier)
	cardserv := services.NewCardService(cstore, kmsHelper)
	classserv := services.NewClassifierService(bs.VertexAdapter, tstore, estore)
	pointserv := services.NewPointsService(tstore, cstore, bs.VertexAdapter)
	cashserv := services.NewCashflowService(tstore)
	merchserv := services.NewMerchantService(mstore)
	incomeserv := services.NewIncomeService(bs.NessieAdapter)
	chatserv := services.NewChatService(tstore, cardserv, bs.VertexAdapter)
	adminserv := services.NewAdminService(bs.VertexAdapter, estore, tstore, cstore, mstore)

	// response handler
	rh := response.New(bs.Log)

	// dependancies
	deps := new(handlers.Deps)
	deps.Log = bs.Log
	deps.ResponseHandler = rh
	deps.SyncSvc = syncserv
	deps.TxReader = tstore
	deps.ClassifierSvc = classserv
	deps.PointsSvc = pointserv
	deps.CardSvc = cardserv
	deps.MerchantSvc = merchserv
	deps.CashflowSvc = cashserv
	deps.IncomeSvc = incomeserv
	deps.ChatSvc = chatserv
	deps.AdminSvc = adminserv

	// router
	r := router.NewRouter(deps)
	err = http.ListenAndServe(":"+cfg.Port, r)
	exitOnError("server start failed", err, bs.Log)
}
