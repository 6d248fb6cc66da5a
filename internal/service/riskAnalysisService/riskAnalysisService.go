package riskAnalysisService

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/KotFed0t/risk_analysis_bot/data/repository"
	"github.com/KotFed0t/risk_analysis_bot/data/session"
	"github.com/KotFed0t/risk_analysis_bot/internal/model"
	"github.com/KotFed0t/risk_analysis_bot/internal/portfolio"
	"github.com/KotFed0t/risk_analysis_bot/internal/service"
	"github.com/KotFed0t/risk_analysis_bot/utils"
)

const (
	lockStripes   = 64
	portfolioName = "Portfolio 1"
)

type Session interface {
	GetSession(ctx context.Context, key string) (model.Session, error)
	SetSession(ctx context.Context, key string, session model.Session) error
	DeleteSession(ctx context.Context, key string) error
}

type Repository interface {
	WithinTransaction(ctx context.Context, tFunc func(ctx context.Context) error) error
	InsertUser(ctx context.Context, chatID int64) (userID int64, err error)
	GetUserID(ctx context.Context, chatID int64) (userID int64, err error)
	TouchUser(ctx context.Context, userID int64) error
}

type ReportGenerator interface {
	Generate(ctx context.Context, report model.PortfolioReport) (fileBytes []byte, fileExtension string, err error)
}

// RiskAnalysisService applies commands to a chat's session.
//
// Each chat owns one session, so the home and portfolio screens always see the
// same selection and risk value. Operations on one chat are serialised by a
// striped mutex around load-apply-save.
type RiskAnalysisService struct {
	catalog         portfolio.Catalog
	repo            Repository
	session         Session
	reportGenerator ReportGenerator
	now             func() time.Time

	locks [lockStripes]sync.Mutex
}

// New builds the service. repo may be nil, in which case chats are not registered.
func New(catalog portfolio.Catalog, repo Repository, session Session, reportGenerator ReportGenerator) *RiskAnalysisService {
	return &RiskAnalysisService{
		catalog:         catalog,
		repo:            repo,
		session:         session,
		reportGenerator: reportGenerator,
		now:             time.Now,
	}
}

func (s *RiskAnalysisService) Catalog() portfolio.Catalog {
	return s.catalog
}

// RegUser registers the chat, or marks an already known chat as seen.
// It returns service.ErrNoRegistry when the service runs without a repository.
func (s *RiskAnalysisService) RegUser(ctx context.Context, chatID int64) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "RiskAnalysisService.RegUser"

	if s.repo == nil {
		return service.ErrNoRegistry
	}

	slog.Debug("RegUser start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("chatID", chatID))
	defer func() {
		slog.Debug("RegUser finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("chatID", chatID))
	}()

	err := s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		userID, err := s.repo.GetUserID(ctx, chatID)
		if err == nil {
			return s.repo.TouchUser(ctx, userID)
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		_, err = s.repo.InsertUser(ctx, chatID)
		return err
	})
	if err != nil {
		// a concurrent /start from the same chat won the insert
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil
		}
		slog.Error("got error while registering user", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}

// Dashboard returns the current session view without modifying it.
func (s *RiskAnalysisService) Dashboard(ctx context.Context, chatID int64) (model.Dashboard, error) {
	mu := s.lock(chatID)
	mu.Lock()
	defer mu.Unlock()

	sess, err := s.load(ctx, chatID)
	if err != nil {
		return model.Dashboard{}, err
	}

	return model.NewDashboard(sess, s.catalog), nil
}

// AddTicker adds a typed ticker and switches the session to the portfolio screen.
func (s *RiskAnalysisService) AddTicker(ctx context.Context, chatID int64, ticker string) (model.Dashboard, error) {
	return s.update(ctx, chatID, "RiskAnalysisService.AddTicker", func(sess *model.Session) error {
		ticker = strings.TrimSpace(ticker)
		if ticker == "" {
			return service.ErrEmptyTicker
		}
		sess.Selection.Add(ticker)
		sess.State = model.DefaultState
		sess.Screen = model.ScreenPortfolio
		return nil
	})
}

// RemoveTicker deletes ticker and switches the session to screen.
func (s *RiskAnalysisService) RemoveTicker(ctx context.Context, chatID int64, screen model.Screen, ticker string) (model.Dashboard, error) {
	return s.update(ctx, chatID, "RiskAnalysisService.RemoveTicker", func(sess *model.Session) error {
		if !screen.Valid() {
			return service.ErrInvalidScreen
		}
		ticker = strings.TrimSpace(ticker)
		if ticker == "" {
			return service.ErrEmptyTicker
		}
		sess.Selection.Remove(ticker)
		sess.State = model.DefaultState
		sess.Screen = screen
		return nil
	})
}

// ToggleTicker flips ticker membership and switches the session to screen.
func (s *RiskAnalysisService) ToggleTicker(ctx context.Context, chatID int64, screen model.Screen, ticker string) (model.Dashboard, error) {
	return s.update(ctx, chatID, "RiskAnalysisService.ToggleTicker", func(sess *model.Session) error {
		if !screen.Valid() {
			return service.ErrInvalidScreen
		}
		if ticker == "" {
			return service.ErrEmptyTicker
		}
		sess.Selection.Toggle(ticker)
		sess.Screen = screen
		return nil
	})
}

// ClearPortfolio empties the selection; the clear button lives on the portfolio screen.
func (s *RiskAnalysisService) ClearPortfolio(ctx context.Context, chatID int64) (model.Dashboard, error) {
	return s.update(ctx, chatID, "RiskAnalysisService.ClearPortfolio", func(sess *model.Session) error {
		sess.Selection.Clear()
		sess.State = model.DefaultState
		sess.Screen = model.ScreenPortfolio
		return nil
	})
}

// SetRisk parses a typed risk value and switches the session to the home screen.
// Values outside [0, 100] are rejected, not clamped.
func (s *RiskAnalysisService) SetRisk(ctx context.Context, chatID int64, value string) (model.Dashboard, error) {
	return s.update(ctx, chatID, "RiskAnalysisService.SetRisk", func(sess *model.Session) error {
		v, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: %q", service.ErrInvalidRiskValue, value)
		}
		risk := model.RiskValue(v)
		if !risk.Valid() {
			return fmt.Errorf("%w: %d", service.ErrInvalidRiskValue, v)
		}
		sess.Risk = risk
		sess.State = model.DefaultState
		sess.Screen = model.ScreenHome
		return nil
	})
}

// ShiftRisk moves the risk value by delta, saturating at 0 and 100. The stepper
// is on the home screen, so the session switches there.
func (s *RiskAnalysisService) ShiftRisk(ctx context.Context, chatID int64, delta int) (model.Dashboard, error) {
	return s.update(ctx, chatID, "RiskAnalysisService.ShiftRisk", func(sess *model.Session) error {
		sess.Risk = sess.Risk.Shift(delta)
		sess.Screen = model.ScreenHome
		return nil
	})
}

// ExpectInput records which typed value the next text message carries.
func (s *RiskAnalysisService) ExpectInput(ctx context.Context, chatID int64, state model.State) (model.Dashboard, error) {
	return s.update(ctx, chatID, "RiskAnalysisService.ExpectInput", func(sess *model.Session) error {
		sess.State = state
		return nil
	})
}

func (s *RiskAnalysisService) ShowScreen(ctx context.Context, chatID int64, screen model.Screen) (model.Dashboard, error) {
	return s.update(ctx, chatID, "RiskAnalysisService.ShowScreen", func(sess *model.Session) error {
		if !screen.Valid() {
			return service.ErrInvalidScreen
		}
		sess.Screen = screen
		sess.State = model.DefaultState
		return nil
	})
}

// ResetSession ends the chat's session and starts a fresh one.
func (s *RiskAnalysisService) ResetSession(ctx context.Context, chatID int64) (model.Dashboard, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "RiskAnalysisService.ResetSession"

	mu := s.lock(chatID)
	mu.Lock()
	defer mu.Unlock()

	if err := s.session.DeleteSession(ctx, sessionKey(chatID)); err != nil {
		slog.Error("got error from session.DeleteSession", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Dashboard{}, err
	}

	return model.NewDashboard(model.NewSession(), s.catalog), nil
}

func (s *RiskAnalysisService) ExportSession(ctx context.Context, chatID int64) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "RiskAnalysisService.ExportSession"

	slog.Debug("ExportSession start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("chatID", chatID))
	defer func() {
		slog.Debug("ExportSession finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("chatID", chatID))
	}()

	dashboard, err := s.Dashboard(ctx, chatID)
	if err != nil {
		return nil, "", err
	}

	report := model.PortfolioReport{
		PortfolioName: portfolioName,
		Tickers:       dashboard.Tickers,
		Risk:          dashboard.Risk,
		GeneratedAt:   s.now(),
	}

	fileBytes, fileExtension, err = s.reportGenerator.Generate(ctx, report)
	if err != nil {
		slog.Error("got error from reportGenerator.Generate", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	return fileBytes, fileExtension, nil
}

func (s *RiskAnalysisService) update(ctx context.Context, chatID int64, op string, apply func(sess *model.Session) error) (model.Dashboard, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	mu := s.lock(chatID)
	mu.Lock()
	defer mu.Unlock()

	sess, err := s.load(ctx, chatID)
	if err != nil {
		return model.Dashboard{}, err
	}

	if err = apply(&sess); err != nil {
		slog.Warn("command rejected", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Dashboard{}, err
	}

	if err = s.session.SetSession(ctx, sessionKey(chatID), sess); err != nil {
		slog.Error("got error from session.SetSession", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Dashboard{}, fmt.Errorf("save session: %w", err)
	}

	slog.Debug(
		"session updated",
		slog.String("rqID", rqID),
		slog.String("op", op),
		slog.Int64("chatID", chatID),
		slog.Int("tickers", sess.Selection.Count()),
		slog.Int("risk", sess.Risk.Int()),
	)

	return model.NewDashboard(sess, s.catalog), nil
}

// load returns the stored session, or a new one when the chat has none.
func (s *RiskAnalysisService) load(ctx context.Context, chatID int64) (model.Session, error) {
	sess, err := s.session.GetSession(ctx, sessionKey(chatID))
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return model.NewSession(), nil
		}
		slog.Error("got error from session.GetSession", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.String("err", err.Error()))
		return model.Session{}, fmt.Errorf("load session: %w", err)
	}
	sess.Normalize()

	return sess, nil
}

func (s *RiskAnalysisService) lock(chatID int64) *sync.Mutex {
	return &s.locks[uint64(chatID)%lockStripes]
}

func sessionKey(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}
