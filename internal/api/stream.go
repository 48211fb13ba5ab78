package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

// handleStream runs the battle on a timer and pushes one Frame per turn until
// the battle finishes or the client goes away. Other requests that would
// change the battle get 409 meanwhile.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	if err := sess.beginStream(ctx); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	defer sess.endStream(ctx)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Str("battle", sess.ID).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	log := s.logger.With().Str("battle", sess.ID).Logger()
	log.Info().Str("remote", r.RemoteAddr).Msg("Spectator connected")

	// Drain the read side so close frames are noticed.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.cfg.TurnDelay)
	defer ticker.Stop()
	for {
		select {
		case <-gone:
			log.Info().Msg("Spectator left")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		before := sess.battle.Turn()
		frame, more, err := sess.step(ctx)
		if err != nil {
			log.Error().Err(err).Msg("stream step failed")
		}
		s.metrics.turnsRun(ctx, frame.Turn-before, "stream")

		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(frame); err != nil {
			log.Warn().Err(err).Msg("stream write failed")
			return
		}
		if !more {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "battle over"),
				time.Now().Add(writeWait))
			return
		}
	}
}
