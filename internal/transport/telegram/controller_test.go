package telegram

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/KotFed0t/risk_analysis_bot/data/repository"
	"github.com/KotFed0t/risk_analysis_bot/data/session"
	"github.com/KotFed0t/risk_analysis_bot/internal/model"
	"github.com/KotFed0t/risk_analysis_bot/internal/portfolio"
	"github.com/KotFed0t/risk_analysis_bot/internal/service"
	"github.com/KotFed0t/risk_analysis_bot/internal/service/riskAnalysisService"
	tele "gopkg.in/telebot.v4"
)

// fakeContext implements the parts of tele.Context the controller touches.
type fakeContext struct {
	tele.Context

	chat    *tele.Chat
	msg     *tele.Message
	args    []string
	store   map[string]interface{}
	sent    []interface{}
	edited  []string
	editErr error
}

func newFakeContext(chatID int64) *fakeContext {
	return &fakeContext{
		chat:  &tele.Chat{ID: chatID},
		msg:   &tele.Message{},
		store: map[string]interface{}{"rqID": "test"},
	}
}

func (f *fakeContext) Chat() *tele.Chat { return f.chat }
func (f *fakeContext) Message() *tele.Message { return f.msg }
func (f *fakeContext) Text() string { return f.msg.Text }
func (f *fakeContext) Args() []string { return f.args }
func (f *fakeContext) Get(key string) interface{} { return f.store[key] }
func (f *fakeContext) Set(key string, value interface{}) { f.store[key] = value }

func (f *fakeContext) Send(what interface{}, _ ...interface{}) error {
	f.sent = append(f.sent, what)
	return nil
}

func (f *fakeContext) Edit(what interface{}, _ ...interface{}) error {
	if f.editErr != nil {
		return f.editErr
	}
	text, _ := what.(string)
	f.edited = append(f.edited, text)
	return nil
}

func (f *fakeContext) lastSent(t *testing.T) string {
	t.Helper()
	if len(f.sent) == 0 {
		t.Fatalf("nothing was sent")
	}
	text, ok := f.sent[len(f.sent)-1].(string)
	if !ok {
		t.Fatalf("last sent value is %T, want string", f.sent[len(f.sent)-1])
	}
	return text
}

func (f *fakeContext) lastEdited(t *testing.T) string {
	t.Helper()
	if len(f.edited) == 0 {
		t.Fatalf("nothing was edited")
	}
	return f.edited[len(f.edited)-1]
}

type nopRepo struct{}

func (nopRepo) WithinTransaction(ctx context.Context, tFunc func(ctx context.Context) error) error {
	return tFunc(ctx)
}
func (nopRepo) InsertUser(context.Context, int64) (int64, error) { return 1, nil }
func (nopRepo) GetUserID(context.Context, int64) (int64, error) {
	return 0, repository.ErrNotFound
}
func (nopRepo) TouchUser(context.Context, int64) error { return nil }

type nopReportGenerator struct{}

func (nopReportGenerator) Generate(context.Context, model.PortfolioReport) ([]byte, string, error) {
	return []byte("report"), ".xlsx", nil
}

func newTestController() *Controller {
	srv := riskAnalysisService.New(portfolio.DefaultCatalog(), nopRepo{}, session.NewMemorySession(time.Hour), nopReportGenerator{})
	return NewController(srv)
}

func TestController_ToggleOnPortfolioShowsOnHome(t *testing.T) {
	ctrl := newTestController()

	c := newFakeContext(1)
	c.args = []string{"portfolio", "NVDA"}
	if err := ctrl.ToggleTicker(c); err != nil {
		t.Fatalf("ToggleTicker() error = %v", err)
	}
	if got := c.lastEdited(t); !strings.Contains(got, "▸ NVDA") {
		t.Errorf("portfolio screen does not list NVDA:\n%s", got)
	}

	c = newFakeContext(1)
	if err := ctrl.ShowHome(c); err != nil {
		t.Fatalf("ShowHome() error = %v", err)
	}
	got := c.lastEdited(t)
	if !strings.Contains(got, "Portfolio 1 — 1 ticker") || !strings.Contains(got, "▸ NVDA") {
		t.Errorf("home screen does not reflect the portfolio edit:\n%s", got)
	}
}

func TestController_AddTickerPrompt(t *testing.T) {
	ctrl := newTestController()

	c := newFakeContext(1)
	if err := ctrl.AskTicker(c); err != nil {
		t.Fatalf("AskTicker() error = %v", err)
	}
	if got := c.lastSent(t); got != askTickerMsg {
		t.Errorf("prompt = %q, want %q", got, askTickerMsg)
	}

	c = newFakeContext(1)
	c.msg.Text = "  brk.b "
	if err := ctrl.ProcessText(c); err != nil {
		t.Fatalf("ProcessText() error = %v", err)
	}
	if got := c.lastSent(t); !strings.Contains(got, "▸ BRK.B") {
		t.Errorf("typed ticker was not added upper-cased:\n%s", got)
	}

	// the prompt is consumed
	c = newFakeContext(1)
	c.msg.Text = "MSFT"
	_ = ctrl.ProcessText(c)
	if got := c.lastSent(t); got != unexpectedTextMsg {
		t.Errorf("second text reply = %q, want %q", got, unexpectedTextMsg)
	}
}

func TestController_EmptyTypedTicker(t *testing.T) {
	ctrl := newTestController()

	c := newFakeContext(1)
	_ = ctrl.AskTicker(c)

	c = newFakeContext(1)
	c.msg.Text = "   "
	_ = ctrl.ProcessText(c)
	if got := c.lastSent(t); got != emptyTickerMsg {
		t.Errorf("reply = %q, want %q", got, emptyTickerMsg)
	}
}

func TestController_RiskCmd(t *testing.T) {
	ctrl := newTestController()

	c := newFakeContext(1)
	c.msg.Payload = "150"
	_ = ctrl.RiskCmd(c)
	if got := c.lastSent(t); got != invalidRiskMsg {
		t.Errorf("reply = %q, want %q", got, invalidRiskMsg)
	}

	c = newFakeContext(1)
	c.msg.Payload = "85"
	_ = ctrl.RiskCmd(c)
	if got := c.lastSent(t); !strings.Contains(got, "Risk value: 85/100") {
		t.Errorf("home screen does not show risk 85:\n%s", got)
	}
}

func TestController_ShiftRisk(t *testing.T) {
	ctrl := newTestController()

	c := newFakeContext(1)
	c.args = []string{"-10"}
	if err := ctrl.ShiftRisk(c); err != nil {
		t.Fatalf("ShiftRisk() error = %v", err)
	}
	if got := c.lastEdited(t); !strings.Contains(got, "Risk value: 40/100") {
		t.Errorf("risk not shifted:\n%s", got)
	}

	c = newFakeContext(1)
	c.args = []string{"ten"}
	_ = ctrl.ShiftRisk(c)
	if got := c.lastSent(t); got != internalErrMsg {
		t.Errorf("malformed delta reply = %q, want %q", got, internalErrMsg)
	}
}

func TestController_EditNotModifiedIgnored(t *testing.T) {
	ctrl := newTestController()

	c := newFakeContext(1)
	c.editErr = errors.New("telegram: Bad Request: message is not modified (400)")
	if err := ctrl.ShowHome(c); err != nil {
		t.Errorf("ShowHome() error = %v, want nil", err)
	}
}

func TestController_Export(t *testing.T) {
	ctrl := newTestController()

	c := newFakeContext(1)
	if err := ctrl.Export(c); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	doc, ok := c.sent[len(c.sent)-1].(*tele.Document)
	if !ok {
		t.Fatalf("sent %T, want *tele.Document", c.sent[len(c.sent)-1])
	}
	if doc.FileName != "portfolio.xlsx" {
		t.Errorf("FileName = %q, want portfolio.xlsx", doc.FileName)
	}
}

func TestErrMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{service.ErrEmptyTicker, emptyTickerMsg},
		{service.ErrInvalidTicker, invalidTickerMsg},
		{service.ErrInvalidRiskValue, invalidRiskMsg},
		{errors.New("boom"), internalErrMsg},
	}

	for _, tt := range tests {
		if got := errMessage(tt.err); got != tt.want {
			t.Errorf("errMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestController_RejectsTickersButtonsCannotCarry(t *testing.T) {
	tests := []struct {
		name   string
		ticker string
	}{
		{name: "separator", ticker: "BRK|B"},
		{name: "too long", ticker: strings.Repeat("X", 60)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := newTestController()

			c := newFakeContext(1)
			c.msg.Payload = tt.ticker
			_ = ctrl.AddTickerCmd(c)
			if got := c.lastSent(t); got != invalidTickerMsg {
				t.Errorf("/add reply = %q, want %q", got, invalidTickerMsg)
			}

			_ = ctrl.AskTicker(newFakeContext(1))
			c = newFakeContext(1)
			c.msg.Text = tt.ticker
			_ = ctrl.ProcessText(c)
			if got := c.lastSent(t); got != invalidTickerMsg {
				t.Errorf("typed reply = %q, want %q", got, invalidTickerMsg)
			}

			// the prompt stays open for a corrected ticker
			c = newFakeContext(1)
			c.msg.Text = "ibm"
			_ = ctrl.ProcessText(c)
			got := c.lastSent(t)
			if !strings.Contains(got, "Portfolio 1 — 1 ticker\n") || !strings.Contains(got, "▸ IBM") {
				t.Errorf("portfolio after correction:\n%s", got)
			}
		})
	}
}

func TestController_RemoveButtonStoresPortfolioScreen(t *testing.T) {
	srv := riskAnalysisService.New(portfolio.DefaultCatalog(), nopRepo{}, session.NewMemorySession(time.Hour), nopReportGenerator{})
	ctrl := NewController(srv)
	ctx := context.Background()

	_, _ = srv.AddTicker(ctx, 1, "AAPL")
	_, _ = srv.AddTicker(ctx, 1, "MSFT")
	_, _ = srv.ShowScreen(ctx, 1, model.ScreenHome)

	c := newFakeContext(1)
	c.args = []string{"AAPL"}
	if err := ctrl.RemoveTicker(c); err != nil {
		t.Fatalf("RemoveTicker() error = %v", err)
	}
	if got := c.lastEdited(t); !strings.Contains(got, "Tap ✖ to remove") {
		t.Errorf("edited message is not the portfolio screen:\n%s", got)
	}

	d, _ := srv.Dashboard(ctx, 1)
	if d.Screen != model.ScreenPortfolio {
		t.Errorf("stored Screen = %s, want portfolio", d.Screen)
	}
	if d.Count != 1 {
		t.Errorf("Count = %d, want 1", d.Count)
	}
}

func TestController_StartWithoutRegistry(t *testing.T) {
	srv := riskAnalysisService.New(portfolio.DefaultCatalog(), nil, session.NewMemorySession(time.Hour), nopReportGenerator{})
	ctrl := NewController(srv)

	c := newFakeContext(1)
	if err := ctrl.Start(c); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if got := c.lastSent(t); !strings.Contains(got, "[Placeholder graph]") {
		t.Errorf("/start did not show the home screen:\n%s", got)
	}
}
