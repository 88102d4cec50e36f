package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/gameweek-draft/internal/domain/minigame"
	"github.com/riskibarqy/gameweek-draft/internal/domain/room"
	"github.com/riskibarqy/gameweek-draft/internal/domain/user"
	"github.com/riskibarqy/gameweek-draft/internal/platform/logging"
	"github.com/riskibarqy/gameweek-draft/internal/usecase"
)

const maxRequestBodyBytes = 1 << 20

type Handler struct {
	fixtureService     *usecase.FixtureService
	roomService        *usecase.RoomService
	sessionService     *usecase.SessionService
	scoringService     *usecase.ScoringService
	leaderboardService *usecase.LeaderboardService
	jobService         *usecase.JobService
	logger             *logging.Logger
	validator          *validator.Validate
}

func NewHandler(
	fixtureService *usecase.FixtureService,
	roomService *usecase.RoomService,
	sessionService *usecase.SessionService,
	scoringService *usecase.ScoringService,
	leaderboardService *usecase.LeaderboardService,
	jobService *usecase.JobService,
	logger *logging.Logger,
) *Handler {
	return &Handler{
		fixtureService:     fixtureService,
		roomService:        roomService,
		sessionService:     sessionService,
		scoringService:     scoringService,
		leaderboardService: leaderboardService,
		jobService:         jobService,
		logger:             logging.OrDefault(logger),
		validator:          newValidator(),
	}
}

// newValidator registers the roomcode and score tags next to the built-ins.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("roomcode", func(fl validator.FieldLevel) bool {
		return room.ValidCode(strings.ToUpper(strings.TrimSpace(fl.Field().String())))
	})
	_ = v.RegisterValidation("score", func(fl validator.FieldLevel) bool {
		_, err := minigame.ParseScore(fl.Field().String())
		return err == nil
	})
	return v
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeAndValidate reads a JSON body into dst. An empty body decodes to the
// zero value so validation reports the missing fields.
func (h *Handler) decodeAndValidate(ctx context.Context, w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := sonic.ConfigDefault.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return h.validateRequest(ctx, dst)
}

func requirePrincipal(ctx context.Context) (user.Principal, error) {
	principal, ok := principalFromContext(ctx)
	if !ok || strings.TrimSpace(principal.UserID) == "" {
		return user.Principal{}, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized)
	}
	return principal, nil
}

func sessionKeyFromRequest(r *http.Request) (minigame.SessionKey, error) {
	gameweek, err := parseGameweek(r.PathValue("gw"))
	if err != nil {
		return minigame.SessionKey{}, err
	}
	return minigame.SessionKey{RoomCode: r.PathValue("roomCode"), Gameweek: gameweek}, nil
}

func parseGameweek(raw string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || !minigame.ValidGameweek(value) {
		return 0, fmt.Errorf("%w: gameweek must be between %d and %d", usecase.ErrInvalidInput, minigame.MinGameweek, minigame.MaxGameweek)
	}
	return value, nil
}
