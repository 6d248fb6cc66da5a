package tgbot

import (
	"log/slog"

	"github.com/KotFed0t/risk_analysis_bot/config"
	"github.com/KotFed0t/risk_analysis_bot/internal/model/tg/tgCallback"
	"github.com/KotFed0t/risk_analysis_bot/internal/transport/telegram"
	customMW "github.com/KotFed0t/risk_analysis_bot/internal/transport/telegram/middleware"
	tele "gopkg.in/telebot.v4"
	"gopkg.in/telebot.v4/middleware"
)

type TGBot struct {
	bot  *tele.Bot
	ctrl *telegram.Controller
}

func New(cfg *config.Config, ctrl *telegram.Controller) *TGBot {
	settings := tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: &tele.LongPoller{Timeout: cfg.Telegram.UpdTimeout},
	}

	b, err := tele.NewBot(settings)
	if err != nil {
		slog.Error("error while tele.NewBot", slog.String("err", err.Error()))
		panic(err)
	}

	return &TGBot{bot: b, ctrl: ctrl}
}

func (b *TGBot) Start() {
	b.bot.Use(middleware.Recover(), middleware.AutoRespond(), customMW.Logger())

	b.setupRoutes()

	go b.bot.Start()
	slog.Info("tgbot started!")
}

func (b *TGBot) Stop() {
	slog.Info("start stopping tgbot")
	b.bot.Stop()
	slog.Info("tgbot stopped")
}

func (b *TGBot) setupRoutes() {
	b.bot.Handle(tele.OnText, b.ctrl.ProcessText)

	b.bot.Handle("/start", b.ctrl.Start)
	b.bot.Handle("/home", b.ctrl.Home)
	b.bot.Handle("/portfolio", b.ctrl.Portfolio)
	b.bot.Handle("/add", b.ctrl.AddTickerCmd)
	b.bot.Handle("/remove", b.ctrl.RemoveTickerCmd)
	b.bot.Handle("/risk", b.ctrl.RiskCmd)
	b.bot.Handle("/export", b.ctrl.Export)
	b.bot.Handle("/reset", b.ctrl.Reset)

	b.bot.Handle(&tele.Btn{Unique: tgCallback.ToggleTicker}, b.ctrl.ToggleTicker)
	b.bot.Handle(&tele.Btn{Unique: tgCallback.RemoveTicker}, b.ctrl.RemoveTicker)
	b.bot.Handle(&tele.Btn{Unique: tgCallback.RiskShift}, b.ctrl.ShiftRisk)
	b.bot.Handle(&tele.Btn{Unique: tgCallback.ShowHome}, b.ctrl.ShowHome)
	b.bot.Handle(&tele.Btn{Unique: tgCallback.ShowPortfolio}, b.ctrl.ShowPortfolio)
	b.bot.Handle(&tele.Btn{Unique: tgCallback.AskTicker}, b.ctrl.AskTicker)
	b.bot.Handle(&tele.Btn{Unique: tgCallback.AskRisk}, b.ctrl.AskRisk)
	b.bot.Handle(&tele.Btn{Unique: tgCallback.ClearPortfolio}, b.ctrl.ClearPortfolio)
	b.bot.Handle(&tele.Btn{Unique: tgCallback.Export}, b.ctrl.Export)
}
