// Command spectate follows a battle's turn stream and prints its events.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/Garsondee/Turn-Tactics/internal/api"
	"github.com/Garsondee/Turn-Tactics/internal/logging"
)

const readLimit = 1 << 20

func main() {
	server := flag.String("server", "http://localhost:8080", "API base URL")
	battle := flag.String("battle", "", "battle ID to follow (empty creates one)")
	scenarioName := flag.String("scenario", "", "scenario for a new battle")
	seed := flag.Int64("seed", 0, "seed for a new battle (0 = scenario seed)")
	level := flag.String("log-level", "info", "log level")
	flag.Parse()

	logger := logging.New(*level, os.Stderr)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	id := *battle
	if id == "" {
		req := api.CreateRequest{Scenario: *scenarioName}
		if *seed != 0 {
			req.Seed = seed
		}
		v, err := createBattle(ctx, *server, req)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to create battle")
		}
		id = v.ID
		logger.Info().Str("battle", id).Str("scenario", v.Scenario).Msg("Battle created")
	}

	last, err := spectate(ctx, *server, id, os.Stdout)
	if err != nil {
		logger.Fatal().Err(err).Str("battle", id).Msg("Stream failed")
	}
	logger.Info().Int("turn", last.Turn).Str("state", last.State).Msg("Stream closed")
}

func createBattle(ctx context.Context, base string, req api.CreateRequest) (api.View, error) {
	var v api.View
	body, err := json.Marshal(req)
	if err != nil {
		return v, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(base, "/")+"/battles", bytes.NewReader(body))
	if err != nil {
		return v, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		return v, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(resp.Body)
		return v, fmt.Errorf("create battle: %s: %s", resp.Status, bytes.TrimSpace(msg))
	}
	return v, json.NewDecoder(resp.Body).Decode(&v)
}

// streamURL turns an http(s) base URL into the battle's websocket URL.
func streamURL(base, id string) string {
	base = strings.TrimRight(base, "/")
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + "/battles/" + id + "/stream"
}

// spectate prints every frame until the server closes the stream. It returns
// the last frame received.
func spectate(ctx context.Context, base, id string, out io.Writer) (api.Frame, error) {
	var last api.Frame
	conn, _, err := websocket.Dial(ctx, streamURL(base, id), nil)
	if err != nil {
		return last, fmt.Errorf("dial: %w", err)
	}
	defer conn.CloseNow()
	conn.SetReadLimit(readLimit)

	for {
		var f api.Frame
		if err := wsjson.Read(ctx, conn, &f); err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return last, nil
			}
			if errors.Is(err, context.Canceled) {
				return last, nil
			}
			return last, fmt.Errorf("read: %w", err)
		}
		last = f
		printFrame(out, f)
	}
}

func printFrame(w io.Writer, f api.Frame) {
	for _, e := range f.Events {
		fmt.Fprintln(w, e.String())
	}
	red, blue := 0, 0
	for _, u := range f.Snapshot.Units {
		if !u.Alive {
			continue
		}
		if u.Team == "blue" {
			blue++
		} else {
			red++
		}
	}
	fmt.Fprintf(w, "--- T=%03d alive red=%d blue=%d state=%s\n", f.Turn, red, blue, f.State)
}
