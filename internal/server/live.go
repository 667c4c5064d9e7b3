package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// handleLiveAnswers evaluates every text frame as the player's current input
// and replies with the evaluation. Frames outside a live cycle are ignored.
func handleLiveAnswers(broker *Broker, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ls := sessionFrom(r)

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Hour)
		defer cancel()

		for {
			typ, msg, err := conn.Read(ctx)
			if err != nil {
				logger.Debug("websocket read ended", "session", ls.ID, "error", err)
				return
			}
			if typ != websocket.MessageText {
				conn.Close(websocket.StatusUnsupportedData, "text frames only")
				return
			}

			ls.mu.Lock()
			var resp AnswerResponse
			if ls.game.CurrentSong() == nil || ls.game.TimeIsUp() {
				// No live cycle: the committed answer stays as it was.
				resp = AnswerResponse{
					FoundCorrectAnswer: ls.game.FoundCorrectAnswer(),
					Timer:              ls.game.Timer(),
					Score:              ls.game.PendingScore(),
				}
			} else {
				resp = submitGuess(ls, broker, string(msg))
			}
			ls.mu.Unlock()

			if err := wsjson.Write(ctx, conn, resp); err != nil {
				logger.Debug("websocket write failed", "session", ls.ID, "error", err)
				return
			}
		}
	}
}
