// Command quip-mock serves canned quips over the chat-completions wire shape
// for local runs without a model key.
package main

import (
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/Clark-Hu/filmfeud/internal/compare"
	"github.com/Clark-Hu/filmfeud/internal/logging"
)

type cannedLines struct {
	High []string `json:"high"`
	Low  []string `json:"low"`
}

var defaultLines = cannedLines{
	High: []string{
		"Cinema. Pure cinema. Watch it again.",
		"I cried, I laughed, I rated it correctly.",
	},
	Low: []string{
		"Two hours I will never get back.",
		"The popcorn had a better plot.",
	},
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type choice struct {
	Message chatMessage `json:"message"`
}

type chatResponse struct {
	Choices []choice `json:"choices"`
}

type errorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func main() {
	var (
		port    = flag.String("port", "9099", "port to listen on")
		data    = flag.String("data", "", "optional JSON file with high and low line lists")
		token   = flag.String("token", "", "bearer token to require; empty accepts any")
		verbose = flag.Bool("log", false, "enable request logging")
	)
	flag.Parse()

	level := "info"
	if *verbose {
		level = "debug"
	}
	logger := logging.New(os.Stdout, level, true)

	lines := defaultLines
	if *data != "" {
		file, err := os.ReadFile(*data)
		if err != nil {
			logger.Fatal().Err(err).Msg("read mock data")
		}
		if err := json.Unmarshal(file, &lines); err != nil {
			logger.Fatal().Err(err).Msg("parse mock data")
		}
		if len(lines.High) == 0 || len(lines.Low) == 0 {
			logger.Fatal().Msg("mock data needs at least one high and one low line")
		}
	}

	addr := ":" + *port
	logger.Info().Str("addr", addr).Int("high", len(lines.High)).Int("low", len(lines.Low)).Msg("mock quip service listening")
	if err := http.ListenAndServe(addr, newMux(lines, *token, logger)); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}

func newMux(lines cannedLines, token string, logger zerolog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "POST only")
			return
		}
		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			writeError(w, http.StatusUnauthorized, "invalid api key")
			return
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "malformed request body")
			return
		}
		var movies []compare.QuipRequest
		for _, m := range req.Messages {
			if m.Role == "user" {
				if err := json.Unmarshal([]byte(m.Content), &movies); err != nil {
					writeError(w, http.StatusBadRequest, "user message is not a movie list")
					return
				}
			}
		}

		content, err := json.Marshal(cannedQuips(lines, movies))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		logger.Debug().Str("model", req.Model).Int("movies", len(movies)).Msg("quips generated")

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatResponse{
			Choices: []choice{{Message: chatMessage{Role: "assistant", Content: string(content)}}},
		})
	})
	return mux
}

// cannedQuips answers each movie in order. The side with the higher rating
// gets a high line.
func cannedQuips(lines cannedLines, movies []compare.QuipRequest) []compare.Quip {
	out := make([]compare.Quip, len(movies))
	for i, m := range movies {
		hi := lines.High[i%len(lines.High)]
		lo := lines.Low[i%len(lines.Low)]
		q := compare.Quip{MovieTitle: m.MovieTitle}
		if stars(m.User1Rating) >= stars(m.User2Rating) {
			q.User1Response, q.User2Response = hi, lo
		} else {
			q.User1Response, q.User2Response = lo, hi
		}
		out[i] = q
	}
	return out
}

func stars(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func writeError(w http.ResponseWriter, status int, msg string) {
	var body errorBody
	body.Error.Message = msg
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
