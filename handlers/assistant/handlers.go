package assistant

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"sync"

	"meetmate/backend/handlers/auth"
	"meetmate/backend/services/llm"
)

// HistoryMessage is one prior turn of the assistant conversation
type HistoryMessage struct {
	Content string `json:"content"`
	Sender  string `json:"sender"` // "user" or "ai"
}

// ChatRequest is the body accepted by the chat endpoint
type ChatRequest struct {
	Message             string           `json:"message"`
	ConversationHistory []HistoryMessage `json:"conversation_history"`
}

// maxHistoryTurns bounds how much context is forwarded upstream
const maxHistoryTurns = 10

// Single-flight per user: a new message cancels the previous in-flight
// request so only the latest reply reaches the transcript.
type inflightRequest struct {
	cancel context.CancelFunc
}

var (
	inflight     = make(map[string]*inflightRequest)
	inflightLock sync.Mutex
)

// ChatHandler relays a user message to the AI gateway and streams the reply
// back as text/event-stream
// Used by: /api/assistant/chat
func ChatHandler(db *sql.DB, ai *llm.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := auth.GetUserIDFromToken(r)
		if err != nil {
			auth.WriteUnauthorized(w)
			return
		}

		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "Invalid request body"})
			return
		}
		if req.Message == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "Message is required"})
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		mine := &inflightRequest{cancel: cancel}
		inflightLock.Lock()
		if prev, ok := inflight[userID]; ok {
			prev.cancel()
		}
		inflight[userID] = mine
		inflightLock.Unlock()

		defer func() {
			inflightLock.Lock()
			if inflight[userID] == mine {
				delete(inflight, userID)
			}
			inflightLock.Unlock()
		}()

		history := req.ConversationHistory
		if len(history) > maxHistoryTurns {
			history = history[len(history)-maxHistoryTurns:]
		}

		messages := make([]llm.Message, 0, len(history)+2)
		messages = append(messages, llm.Message{Role: "system", Content: buildSystemPrompt(db, userID)})
		for _, h := range history {
			role := "assistant"
			if h.Sender == "user" {
				role = "user"
			}
			messages = append(messages, llm.Message{Role: role, Content: h.Content})
		}
		messages = append(messages, llm.Message{Role: "user", Content: req.Message})

		body, err := ai.StreamChatCompletion(ctx, messages)
		if err != nil {
			if ctx.Err() != nil {
				// Superseded or disconnected; intentional, not a failure.
				return
			}
			writeAIError(w, err, "Error contacting assistant")
			return
		}
		defer body.Close()

		flusher, ok := w.(http.Flusher)
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "Streaming unsupported"})
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		// Relay the raw stream to the client chunk by chunk while the
		// decoder accumulates the full reply off the same bytes.
		var reply string
		dec := llm.NewDecoder(io.TeeReader(body, flushWriter{w: w, f: flusher}))
		for {
			delta, err := dec.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				if ctx.Err() == nil {
					log.Printf("Error relaying assistant stream for user %s: %v", userID, err)
				}
				return
			}
			reply += delta
		}

		if ctx.Err() != nil {
			// Cancelled mid-stream; drop the partial reply.
			return
		}

		// Best-effort usage event; the reply already reached the client.
		data, _ := json.Marshal(map[string]int{"reply_chars": len(reply)})
		if _, err := db.Exec(`
			INSERT INTO analytics_events (user_id, event_type, event_data)
			VALUES ($1, 'assistant_chat', $2)
		`, userID, data); err != nil {
			log.Printf("Error inserting assistant analytics event: %v", err)
		}
	}
}

// flushWriter flushes after every write so each SSE frame leaves immediately
type flushWriter struct {
	w io.Writer
	f http.Flusher
}

func (fw flushWriter) Write(p []byte) (int, error) {
	n, err := fw.w.Write(p)
	fw.f.Flush()
	return n, err
}

func writeAIError(w http.ResponseWriter, err error, fallback string) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case errors.Is(err, llm.ErrRateLimited):
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]string{"error": "Rate limit exceeded. Please try again later."})
	case errors.Is(err, llm.ErrQuotaExhausted):
		w.WriteHeader(http.StatusPaymentRequired)
		json.NewEncoder(w).Encode(map[string]string{"error": "AI credits depleted. Please add credits."})
	default:
		log.Printf("%s: %v", fallback, err)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": fallback})
	}
}
