package telegram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/KotFed0t/risk_analysis_bot/internal/converter/telebotConverter"
	"github.com/KotFed0t/risk_analysis_bot/internal/model"
	"github.com/KotFed0t/risk_analysis_bot/internal/model/tg/tgCallback"
	"github.com/KotFed0t/risk_analysis_bot/internal/service"
	"github.com/KotFed0t/risk_analysis_bot/utils"
	tele "gopkg.in/telebot.v4"
)

const (
	internalErrMsg    = "Something went wrong, please try again later."
	emptyTickerMsg    = "Ticker must not be empty."
	invalidTickerMsg  = "Ticker must be at most 32 characters and must not contain \"|\"."
	invalidRiskMsg    = "Risk value must be a whole number from 0 to 100."
	askTickerMsg      = "Send the ticker symbol to add, for example AAPL."
	askRiskMsg        = "Send a risk value from 0 to 100."
	removeUsageMsg    = "Usage: /remove <ticker>"
	unexpectedTextMsg = "Use /home or /portfolio to open a screen."
	exportFileName    = "portfolio"
)

type RiskAnalysisService interface {
	RegUser(ctx context.Context, chatID int64) error
	Dashboard(ctx context.Context, chatID int64) (model.Dashboard, error)
	AddTicker(ctx context.Context, chatID int64, ticker string) (model.Dashboard, error)
	RemoveTicker(ctx context.Context, chatID int64, screen model.Screen, ticker string) (model.Dashboard, error)
	ToggleTicker(ctx context.Context, chatID int64, screen model.Screen, ticker string) (model.Dashboard, error)
	ClearPortfolio(ctx context.Context, chatID int64) (model.Dashboard, error)
	SetRisk(ctx context.Context, chatID int64, value string) (model.Dashboard, error)
	ShiftRisk(ctx context.Context, chatID int64, delta int) (model.Dashboard, error)
	ExpectInput(ctx context.Context, chatID int64, state model.State) (model.Dashboard, error)
	ShowScreen(ctx context.Context, chatID int64, screen model.Screen) (model.Dashboard, error)
	ResetSession(ctx context.Context, chatID int64) (model.Dashboard, error)
	ExportSession(ctx context.Context, chatID int64) (fileBytes []byte, fileExtension string, err error)
}

type Controller struct {
	riskAnalysisService RiskAnalysisService
}

func NewController(riskAnalysisService RiskAnalysisService) *Controller {
	return &Controller{riskAnalysisService: riskAnalysisService}
}

func (ctrl *Controller) Start(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	// the bot stays usable when the registry is down
	if err := ctrl.riskAnalysisService.RegUser(ctx, c.Chat().ID); err != nil {
		slog.Warn("user was not registered", slog.String("rqID", rqID), slog.Int64("chatID", c.Chat().ID), slog.String("err", err.Error()))
	}

	return ctrl.showScreen(c, model.ScreenHome)
}

func (ctrl *Controller) Home(c tele.Context) error {
	return ctrl.showScreen(c, model.ScreenHome)
}

func (ctrl *Controller) Portfolio(c tele.Context) error {
	return ctrl.showScreen(c, model.ScreenPortfolio)
}

// AddTickerCmd handles /add; without an argument it asks for the ticker.
func (ctrl *Controller) AddTickerCmd(c tele.Context) error {
	ticker := normalizeTicker(c.Message().Payload)
	if ticker == "" {
		return ctrl.askInput(c, model.ExpectingTicker, askTickerMsg)
	}
	if err := validateTicker(ticker); err != nil {
		return c.Send(errMessage(err))
	}

	ctx := utils.CreateCtxWithRqID(c)
	d, err := ctrl.riskAnalysisService.AddTicker(ctx, c.Chat().ID, ticker)
	if err != nil {
		return c.Send(errMessage(err))
	}
	return c.Send(telebotConverter.Screen(d))
}

func (ctrl *Controller) RemoveTickerCmd(c tele.Context) error {
	ticker := normalizeTicker(c.Message().Payload)
	if ticker == "" {
		return c.Send(removeUsageMsg)
	}

	ctx := utils.CreateCtxWithRqID(c)
	d, err := ctrl.riskAnalysisService.RemoveTicker(ctx, c.Chat().ID, model.ScreenPortfolio, ticker)
	if err != nil {
		return c.Send(errMessage(err))
	}
	return c.Send(telebotConverter.Screen(d))
}

// RiskCmd handles /risk; without an argument it asks for the value.
func (ctrl *Controller) RiskCmd(c tele.Context) error {
	value := strings.TrimSpace(c.Message().Payload)
	if value == "" {
		return ctrl.askInput(c, model.ExpectingRiskValue, askRiskMsg)
	}

	ctx := utils.CreateCtxWithRqID(c)
	d, err := ctrl.riskAnalysisService.SetRisk(ctx, c.Chat().ID, value)
	if err != nil {
		return c.Send(errMessage(err))
	}
	return c.Send(telebotConverter.Screen(d))
}

func (ctrl *Controller) Reset(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	d, err := ctrl.riskAnalysisService.ResetSession(ctx, c.Chat().ID)
	if err != nil {
		return c.Send(internalErrMsg)
	}
	return c.Send(telebotConverter.HomeScreen(d))
}

// Export sends the portfolio as a spreadsheet. Used by /export and the export button.
func (ctrl *Controller) Export(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	file, ext, err := ctrl.riskAnalysisService.ExportSession(ctx, c.Chat().ID)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	doc := &tele.Document{
		File:     tele.FromReader(bytes.NewReader(file)),
		FileName: exportFileName + ext,
	}
	return c.Send(doc)
}

// ProcessText routes a plain text message by the pending input of the session.
func (ctrl *Controller) ProcessText(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)
	chatID := c.Chat().ID

	d, err := ctrl.riskAnalysisService.Dashboard(ctx, chatID)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	switch d.State {
	case model.ExpectingTicker:
		ticker := normalizeTicker(c.Text())
		// an empty ticker is rejected by the service
		if ticker != "" {
			if err = validateTicker(ticker); err != nil {
				return c.Send(errMessage(err))
			}
		}
		d, err = ctrl.riskAnalysisService.AddTicker(ctx, chatID, ticker)
		if err != nil {
			return c.Send(errMessage(err))
		}
		return c.Send(telebotConverter.Screen(d))
	case model.ExpectingRiskValue:
		d, err = ctrl.riskAnalysisService.SetRisk(ctx, chatID, c.Text())
		if err != nil {
			return c.Send(errMessage(err))
		}
		return c.Send(telebotConverter.Screen(d))
	default:
		slog.Debug("text without pending input", slog.String("rqID", rqID), slog.Int64("chatID", chatID))
		return c.Send(unexpectedTextMsg)
	}
}

// ToggleTicker handles toggle_ticker|<screen>|<ticker>.
func (ctrl *Controller) ToggleTicker(c tele.Context) error {
	args := c.Args()
	if len(args) != 2 {
		return ctrl.badCallback(c)
	}

	ctx := utils.CreateCtxWithRqID(c)
	d, err := ctrl.riskAnalysisService.ToggleTicker(ctx, c.Chat().ID, model.Screen(args[0]), args[1])
	if err != nil {
		return c.Send(errMessage(err))
	}
	return ctrl.edit(c, d)
}

// RemoveTicker handles remove_ticker|<ticker>.
func (ctrl *Controller) RemoveTicker(c tele.Context) error {
	args := c.Args()
	if len(args) != 1 {
		return ctrl.badCallback(c)
	}

	ctx := utils.CreateCtxWithRqID(c)
	d, err := ctrl.riskAnalysisService.RemoveTicker(ctx, c.Chat().ID, model.ScreenPortfolio, args[0])
	if err != nil {
		return c.Send(errMessage(err))
	}
	return ctrl.edit(c, d)
}

// ShiftRisk handles risk_shift|<delta>.
func (ctrl *Controller) ShiftRisk(c tele.Context) error {
	args := c.Args()
	if len(args) != 1 {
		return ctrl.badCallback(c)
	}
	delta, err := strconv.Atoi(args[0])
	if err != nil {
		return ctrl.badCallback(c)
	}

	ctx := utils.CreateCtxWithRqID(c)
	d, err := ctrl.riskAnalysisService.ShiftRisk(ctx, c.Chat().ID, delta)
	if err != nil {
		return c.Send(internalErrMsg)
	}
	return ctrl.edit(c, d)
}

func (ctrl *Controller) ShowHome(c tele.Context) error {
	return ctrl.switchScreen(c, model.ScreenHome)
}

func (ctrl *Controller) ShowPortfolio(c tele.Context) error {
	return ctrl.switchScreen(c, model.ScreenPortfolio)
}

func (ctrl *Controller) AskTicker(c tele.Context) error {
	return ctrl.askInput(c, model.ExpectingTicker, askTickerMsg)
}

func (ctrl *Controller) AskRisk(c tele.Context) error {
	return ctrl.askInput(c, model.ExpectingRiskValue, askRiskMsg)
}

func (ctrl *Controller) ClearPortfolio(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	d, err := ctrl.riskAnalysisService.ClearPortfolio(ctx, c.Chat().ID)
	if err != nil {
		return c.Send(internalErrMsg)
	}
	return ctrl.edit(c, d)
}

func (ctrl *Controller) showScreen(c tele.Context, screen model.Screen) error {
	ctx := utils.CreateCtxWithRqID(c)
	d, err := ctrl.riskAnalysisService.ShowScreen(ctx, c.Chat().ID, screen)
	if err != nil {
		return c.Send(internalErrMsg)
	}
	return c.Send(telebotConverter.Screen(d))
}

func (ctrl *Controller) switchScreen(c tele.Context, screen model.Screen) error {
	ctx := utils.CreateCtxWithRqID(c)
	d, err := ctrl.riskAnalysisService.ShowScreen(ctx, c.Chat().ID, screen)
	if err != nil {
		return c.Send(internalErrMsg)
	}
	return ctrl.edit(c, d)
}

func (ctrl *Controller) askInput(c tele.Context, state model.State, prompt string) error {
	ctx := utils.CreateCtxWithRqID(c)
	if _, err := ctrl.riskAnalysisService.ExpectInput(ctx, c.Chat().ID, state); err != nil {
		return c.Send(internalErrMsg)
	}
	return c.Send(prompt)
}

// edit redraws the screen message the pressed button belongs to.
func (ctrl *Controller) edit(c tele.Context, d model.Dashboard) error {
	err := c.Edit(telebotConverter.Screen(d))
	if err != nil && isNotModified(err) {
		return nil
	}
	return err
}

func (ctrl *Controller) badCallback(c tele.Context) error {
	rqID, _ := c.Get("rqID").(string)
	slog.Warn("malformed callback payload", slog.String("rqID", rqID), slog.Any("args", c.Args()))
	return c.Send(internalErrMsg)
}

func normalizeTicker(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// validateTicker rejects tickers the screen buttons could not carry.
func validateTicker(ticker string) error {
	if !tgCallback.ValidTicker(ticker) {
		return fmt.Errorf("%w: %q", service.ErrInvalidTicker, ticker)
	}
	return nil
}

func errMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrEmptyTicker):
		return emptyTickerMsg
	case errors.Is(err, service.ErrInvalidTicker):
		return invalidTickerMsg
	case errors.Is(err, service.ErrInvalidRiskValue):
		return invalidRiskMsg
	default:
		return internalErrMsg
	}
}

func isNotModified(err error) bool {
	return errors.Is(err, tele.ErrSameMessageContent) || strings.Contains(err.Error(), "message is not modified")
}
