package main

import (
	"log"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	httpadp "groupfund-backend/internal/adapter/http"
	mw "groupfund-backend/internal/adapter/middleware"
	"groupfund-backend/internal/adapter/repository/mysql"
	"groupfund-backend/internal/authz"
	"groupfund-backend/internal/config"
	"groupfund-backend/internal/events"
	"groupfund-backend/internal/funds"
	"groupfund-backend/internal/guard"
	"groupfund-backend/internal/infrastructure/cache"
	"groupfund-backend/internal/infrastructure/db"
	groupuc "groupfund-backend/internal/usecase/group"
	grouploanuc "groupfund-backend/internal/usecase/grouploan"
	loanuc "groupfund-backend/internal/usecase/loan"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.Fatal(err)
	}
	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatal(err)
	}

	tx := mysql.NewGormUoW(gdb)

	// Capability store and token ledger are external collaborators; the
	// in-memory implementations stand in until the real services are wired.
	store := authz.NewStore()
	gate := authz.NewGate(store, store)
	ledger := funds.NewMemoryLedger(cfg.CustodyAccount)
	checker := funds.NewChecker(ledger, cfg.CustodyAccount)

	reentry := guard.New()
	emitter := events.LogEmitter{}

	loans := loanuc.NewUsecase(tx, gate, checker, ledger, reentry, emitter, cfg.GraceDays)
	groups := groupuc.NewUsecase(tx, gate, store, reentry, emitter)
	groupLoans := grouploanuc.NewUsecase(tx, gate, loans, emitter)

	h := httpadp.NewHandler()
	gh := httpadp.NewGroupHandler(groups)
	glh := httpadp.NewGroupLoanHandler(groupLoans)
	lh := httpadp.NewLoanHandler(loans)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())

	idemp := mw.IdempotencyMiddleware(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second)

	e.GET("/health", h.Health)

	g := e.Group("", idemp)
	g.POST("/groups", gh.CreateGroup)
	g.GET("/groups/:group_id", gh.GetGroup)
	g.POST("/groups/:group_id/members", gh.AddMembers)
	g.DELETE("/groups/:group_id/members", gh.RemoveMembers)
	g.POST("/groups/:group_id/leave", gh.LeaveGroup)
	g.PUT("/groups/:group_id/manager", gh.ChangeManager)
	g.PUT("/groups/:group_id/status", gh.SetGroupStatus)

	g.POST("/groups/:group_id/loan-requests", glh.Request)
	g.GET("/groups/:group_id/loan-requests/:request_id", glh.GetRequest)
	g.POST("/groups/:group_id/loan-requests/:request_id/approve", glh.Approve)
	g.POST("/groups/:group_id/loan-requests/:request_id/reject", glh.Reject)

	g.POST("/loan-requests", lh.RequestLoan)
	g.GET("/borrowers/:borrower/loan-requests/:request_id", lh.GetRequest)
	g.POST("/borrowers/:borrower/loan-requests/:request_id/sign", lh.SignOff)
	g.POST("/borrowers/:borrower/loan-requests/:request_id/approve", lh.Approve)
	g.POST("/borrowers/:borrower/loan-requests/:request_id/reject", lh.Reject)
	g.GET("/borrowers/:borrower/loans/:request_id", lh.GetLoan)
	g.POST("/borrowers/:borrower/loans/:request_id/repayments", lh.Repay)

	addr := ":" + cfg.AppPort
	log.Printf("listening on %s", addr)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
