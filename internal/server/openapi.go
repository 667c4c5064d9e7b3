package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi31"

	"github.com/playperu/blindtest/internal/blindtest"
	"github.com/playperu/blindtest/internal/game"
	"github.com/playperu/blindtest/internal/handler/health"
)

type themeQuery struct {
	Q string `query:"q" description:"Search text. Blank lists the chart."`
}

type themePath struct {
	ThemeID int64 `path:"themeID"`
}

type sessionPath struct {
	SessionID string `path:"sessionID"`
}

type sessionThemesQuery struct {
	SessionID string `path:"sessionID"`
	Q         string `query:"q"`
}

type sessionStreamQuery struct {
	SessionID string `path:"sessionID"`
	Token     string `query:"token" required:"true"`
}

type settingsBody struct {
	SessionID string `path:"sessionID"`
	SettingsRequest
}

type selectThemesBody struct {
	SessionID string `path:"sessionID"`
	SelectThemesRequest
}

type answerBody struct {
	SessionID string `path:"sessionID"`
	AnswerRequest
}

func newOpenAPISpec() *openapi31.Spec {
	r := openapi31.NewReflector()
	r.Spec.Info.Title = "Blindtest API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the blindtest music quiz.")

	op := func(method, path, summary, desc string, setup func(oc openapi.OperationContext)) {
		oc, err := r.NewOperationContext(method, path)
		if err != nil {
			return
		}
		oc.SetSummary(summary)
		oc.SetDescription(desc)
		setup(oc)
		_ = r.AddOperation(oc)
	}
	status := openapi.WithHTTPStatus
	sessionErrors := func(oc openapi.OperationContext) {
		oc.AddRespStructure(ErrorResponse{}, status(http.StatusUnauthorized))
		oc.AddRespStructure(ErrorResponse{}, status(http.StatusNotFound))
	}

	op(http.MethodGet, "/healthz", "Health check",
		"Returns the health status of backend dependencies.",
		func(oc openapi.OperationContext) {
			oc.AddRespStructure(health.Response{}, status(http.StatusOK))
			oc.AddRespStructure(health.Response{}, status(http.StatusServiceUnavailable))
		})

	op(http.MethodGet, "/api/themes", "Find themes",
		"Searches catalog playlists, or lists the chart when q is blank.",
		func(oc openapi.OperationContext) {
			oc.AddReqStructure(themeQuery{})
			oc.AddRespStructure([]blindtest.Theme{}, status(http.StatusOK))
		})

	op(http.MethodGet, "/api/themes/{themeID}", "Get theme",
		"Returns one catalog playlist.",
		func(oc openapi.OperationContext) {
			oc.AddReqStructure(themePath{})
			oc.AddRespStructure(blindtest.Theme{}, status(http.StatusOK))
			oc.AddRespStructure(ErrorResponse{}, status(http.StatusNotFound))
		})

	op(http.MethodGet, "/api/themes/{themeID}/tracks", "Theme tracks",
		"Returns the playable songs of a playlist.",
		func(oc openapi.OperationContext) {
			oc.AddReqStructure(themePath{})
			oc.AddRespStructure([]blindtest.Song{}, status(http.StatusOK))
		})

	op(http.MethodPost, "/api/sessions", "Create session",
		"Creates a game session. The token authorizes every session route.",
		func(oc openapi.OperationContext) {
			oc.AddReqStructure(SettingsRequest{})
			oc.AddRespStructure(CreateSessionResponse{}, status(http.StatusCreated))
			oc.AddRespStructure(ErrorResponse{}, status(http.StatusBadRequest))
		})

	op(http.MethodGet, "/api/sessions/{sessionID}", "Get session state",
		"Returns the session snapshot. Requires Bearer token.",
		func(oc openapi.OperationContext) {
			oc.AddReqStructure(sessionPath{})
			oc.AddRespStructure(game.State{}, status(http.StatusOK))
			sessionErrors(oc)
		})

	op(http.MethodDelete, "/api/sessions/{sessionID}", "Delete session",
		"Drops the session. Requires Bearer token.",
		func(oc openapi.OperationContext) {
			oc.AddReqStructure(sessionPath{})
			oc.AddRespStructure(nil, status(http.StatusNoContent))
			sessionErrors(oc)
		})

	op(http.MethodPatch, "/api/sessions/{sessionID}/settings", "Update settings",
		"Merges the given settings. Requires Bearer token.",
		func(oc openapi.OperationContext) {
			oc.AddReqStructure(settingsBody{})
			oc.AddRespStructure(game.State{}, status(http.StatusOK))
			oc.AddRespStructure(ErrorResponse{}, status(http.StatusBadRequest))
			sessionErrors(oc)
		})

	op(http.MethodGet, "/api/sessions/{sessionID}/themes", "Load session themes",
		"Searches the catalog and stores the result as the session's available themes.",
		func(oc openapi.OperationContext) {
			oc.AddReqStructure(sessionThemesQuery{})
			oc.AddRespStructure([]blindtest.Theme{}, status(http.StatusOK))
			sessionErrors(oc)
		})

	op(http.MethodPut, "/api/sessions/{sessionID}/themes/selected", "Select themes",
		"Replaces the selected themes.",
		func(oc openapi.OperationContext) {
			oc.AddReqStructure(selectThemesBody{})
			oc.AddRespStructure(game.State{}, status(http.StatusOK))
			oc.AddRespStructure(ErrorResponse{}, status(http.StatusBadRequest))
			sessionErrors(oc)
		})

	op(http.MethodPost, "/api/sessions/{sessionID}/playlist", "Build playlist",
		"Merges, dedupes, and shuffles the tracks of the selected themes, then rewinds the game. Conflict while a game is in progress.",
		func(oc openapi.OperationContext) {
			oc.AddReqStructure(sessionPath{})
			oc.AddRespStructure(game.State{}, status(http.StatusOK))
			oc.AddRespStructure(ErrorResponse{}, status(http.StatusBadRequest))
			oc.AddRespStructure(ErrorResponse{}, status(http.StatusConflict))
			sessionErrors(oc)
		})

	for _, t := range []struct{ path, summary, desc string }{
		{"/api/sessions/{sessionID}/start", "Start game", "Starts the first song and its countdown."},
		{"/api/sessions/{sessionID}/next", "Next song", "Starts the next song. Conflict while a song plays or after game over."},
		{"/api/sessions/{sessionID}/reset", "Reset game", "Clears game progress. Themes and settings are kept."},
	} {
		op(http.MethodPost, t.path, t.summary, t.desc, func(oc openapi.OperationContext) {
			oc.AddReqStructure(sessionPath{})
			oc.AddRespStructure(game.State{}, status(http.StatusOK))
			oc.AddRespStructure(ErrorResponse{}, status(http.StatusConflict))
			sessionErrors(oc)
		})
	}

	op(http.MethodPost, "/api/sessions/{sessionID}/answer", "Submit answer",
		"Evaluates the answer for the current song.",
		func(oc openapi.OperationContext) {
			oc.AddReqStructure(answerBody{})
			oc.AddRespStructure(AnswerResponse{}, status(http.StatusOK))
			oc.AddRespStructure(ErrorResponse{}, status(http.StatusConflict))
			sessionErrors(oc)
		})

	op(http.MethodPost, "/api/sessions/{sessionID}/timeup", "Time up",
		"Commits the current song's result for clients that run their own timer.",
		func(oc openapi.OperationContext) {
			oc.AddReqStructure(sessionPath{})
			oc.AddRespStructure(TimeUpResponse{}, status(http.StatusOK))
			oc.AddRespStructure(ErrorResponse{}, status(http.StatusConflict))
			sessionErrors(oc)
		})

	op(http.MethodPost, "/api/sessions/{sessionID}/mute", "Toggle mute", "Flips the mute flag.",
		func(oc openapi.OperationContext) {
			oc.AddReqStructure(sessionPath{})
			oc.AddRespStructure(MuteResponse{}, status(http.StatusOK))
			sessionErrors(oc)
		})

	op(http.MethodGet, "/api/sessions/{sessionID}/events", "SSE event stream",
		"Server-Sent Events: song, tick, answer, time_up, game_over, reset. Pass token as query parameter.",
		func(oc openapi.OperationContext) {
			oc.AddReqStructure(sessionStreamQuery{})
			oc.AddRespStructure(nil, status(http.StatusOK), openapi.WithContentType("text/event-stream"))
		})

	op(http.MethodGet, "/ws/sessions/{sessionID}", "Live answers",
		"Upgrades to a WebSocket. Each text frame is evaluated as the current answer.",
		func(oc openapi.OperationContext) {
			oc.AddReqStructure(sessionStreamQuery{})
			oc.AddRespStructure(nil, status(http.StatusSwitchingProtocols))
		})

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
