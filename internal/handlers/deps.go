package handlers

import (
	"log/slog"

	"github.com/amankv/dime-backend/internal/response"
)

type Deps struct {
	Log             *slog.Logger
	ResponseHandler response.ResponseHandler
	SyncSvc         SyncService
	TxReader        TransactionReader
	ClassifierSvc   ClassifierService
	PointsSvc       PointsService
	CardSvc         CardService
	MerchantSvc     MerchantService
	CashflowSvc     CashflowService
	IncomeSvc       IncomeService
	ChatSvc         ChatService
	AdminSvc        AdminService
}
