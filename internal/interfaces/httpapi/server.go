package httpapi

import (
	"net/http"

	"github.com/riskibarqy/gameweek-draft/internal/platform/logging"
)

type access int

const (
	accessPublic access = iota
	accessMember
	accessJob
)

type route struct {
	pattern string
	access  access
	handle  http.HandlerFunc
}

func (h *Handler) routes() []route {
	const session = "/v1/rooms/{roomCode}/gameweeks/{gw}"
	return []route{
		{"GET /healthz", accessPublic, h.Healthz},
		{"GET /v1/fixtures", accessPublic, h.ListFixtures},
		{"GET /v1/gameweeks/current", accessPublic, h.GetCurrentGameweek},

		{"POST /v1/rooms", accessMember, h.CreateRoom},
		{"POST /v1/rooms/{roomCode}/members", accessMember, h.JoinRoom},
		{"GET /v1/rooms/{roomCode}/members", accessMember, h.ListMembers},
		{"DELETE /v1/rooms/{roomCode}/members/{userID}", accessMember, h.KickMember},
		{"GET /v1/rooms/{roomCode}/leaderboard", accessMember, h.GetLeaderboard},

		{"PUT " + session + "/lobby", accessMember, h.EnterLobby},
		{"DELETE " + session + "/lobby", accessMember, h.LeaveLobby},
		{"GET " + session + "/lobby", accessMember, h.ListLobby},
		{"POST " + session + "/session/start", accessMember, h.StartSession},
		{"GET " + session + "/session", accessMember, h.GetSession},
		{"POST " + session + "/session/picks", accessMember, h.SubmitPick},
		{"POST " + session + "/session/golden", accessMember, h.LockGolden},
		{"POST " + session + "/scores/recalculate", accessMember, h.RecalculateScores},
		{"GET " + session + "/scores", accessMember, h.ListScores},

		{"POST /v1/internal/jobs/recalculate-gameweek", accessJob, h.RunRecalculateGameweekJob},
	}
}

// NewRouter mounts every route behind the shared middleware chain:
// tracing, access log, CORS and panic recovery, outermost first.
func NewRouter(
	handler *Handler,
	verifier TokenVerifier,
	logger *logging.Logger,
	corsAllowedOrigins []string,
	internalJobToken string,
) http.Handler {
	logger = logging.OrDefault(logger)

	mux := http.NewServeMux()
	for _, rt := range handler.routes() {
		var h http.Handler = rt.handle
		switch rt.access {
		case accessMember:
			h = RequireAuth(verifier, h)
		case accessJob:
			h = RequireInternalJobToken(internalJobToken, h)
		}
		mux.Handle(rt.pattern, h)
	}

	return RequestTracing(RequestLogging(logger, CORS(corsAllowedOrigins, recoverPanic(logger, mux))))
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logger.ErrorContext(r.Context(), "panic recovered", "panic", rec, "method", r.Method, "path", r.URL.Path)
			writeInternalError(r.Context(), w)
		}()
		next.ServeHTTP(w, r)
	})
}
