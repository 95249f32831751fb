// Package http exposes the quiz session engine over a websocket. The handler
// plays the host environment role: it feeds the session wall-clock ticks
// while it is active and brokers the leave-intent confirmation flow.
package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"quiz-session-service/internal/app"
	"quiz-session-service/internal/domain"
	"quiz-session-service/internal/session"
)

type WSHandler struct {
	service  *app.SessionService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.SessionService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type codePayload struct {
	Code string `json:"code"`
}

type startPayload struct {
	Name  string `json:"name"`
	Class string `json:"class"`
}

type answerPayload struct {
	QuestionID string          `json:"questionId"`
	Value      json.RawMessage `json:"value"`
}

type subAnswerPayload struct {
	QuestionID string          `json:"questionId"`
	SubKey     json.RawMessage `json:"subKey"`
	Value      json.RawMessage `json:"value"`
}

type matchPayload struct {
	QuestionID string           `json:"questionId"`
	Item       string           `json:"item"`
	Side       domain.MatchSide `json:"side"`
}

type statePayload struct {
	State session.State `json:"state"`
}

type questionsPayload struct {
	Order []string       `json:"order"`
	Views []QuestionView `json:"views"`
}

type timePayload struct {
	Remaining int `json:"remaining"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// outbox serializes pushes from the reader loop, the ticker goroutine, and
// session hooks onto the single writer goroutine. Once closed it drops
// messages instead of blocking or panicking.
type outbox struct {
	mu     sync.Mutex
	closed bool
	ch     chan outboundMessage
}

func newOutbox() *outbox {
	return &outbox{ch: make(chan outboundMessage, 16)}
}

func (o *outbox) push(msg outboundMessage) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	select {
	case o.ch <- msg:
	default:
		log.Printf("ws outbox full, dropping %s", msg.Type)
	}
}

func (o *outbox) close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.closed {
		o.closed = true
		close(o.ch)
	}
}

// ServeWS runs one quiz-taking session over a websocket connection.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	if quizID == "" {
		http.Error(w, "missing quizId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	out := newOutbox()

	sess, err := h.service.Begin(r.Context(), quizID, session.Hooks{
		OnFinished: func(record domain.ResultRecord) {
			out.push(outboundMessage{Type: "result", Payload: record})
		},
		OnExit: func() {
			out.push(outboundMessage{Type: "exit"})
		},
	})
	if err != nil {
		_ = conn.WriteJSON(outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer h.service.End(sess.ID())
	// A dropped connection mid-attempt abandons the session; without this the
	// ticker would keep running against a session nobody can reach.
	defer sess.ConfirmLeave()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range out.ch {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	out.push(outboundMessage{Type: "state", Payload: statePayload{State: sess.State()}})

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		h.dispatch(sess, out, inbound)
	}

	out.close()
	<-writerDone
}

func (h *WSHandler) dispatch(sess *session.Session, out *outbox, inbound inboundMessage) {
	switch inbound.Type {
	case "verifyCode":
		var payload codePayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			out.push(outboundMessage{Type: "error", Payload: errorPayload{Message: "invalid verifyCode payload"}})
			return
		}
		if err := sess.VerifyCode(payload.Code); err != nil {
			out.push(outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}})
			return
		}
		out.push(outboundMessage{Type: "state", Payload: statePayload{State: sess.State()}})

	case "start":
		var payload startPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			out.push(outboundMessage{Type: "error", Payload: errorPayload{Message: "invalid start payload"}})
			return
		}
		if err := sess.Start(payload.Name, payload.Class); err != nil {
			out.push(outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}})
			return
		}
		order := sess.Order()
		out.push(outboundMessage{Type: "state", Payload: statePayload{State: sess.State()}})
		out.push(outboundMessage{Type: "questions", Payload: questionsPayload{
			Order: order,
			Views: buildViews(sess.Quiz(), order),
		}})
		out.push(outboundMessage{Type: "time", Payload: timePayload{Remaining: sess.Remaining()}})
		go h.runCountdown(sess, out)

	case "answer":
		h.handleAnswer(sess, out, inbound.Payload)

	case "subAnswer":
		h.handleSubAnswer(sess, out, inbound.Payload)

	case "match":
		var payload matchPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			out.push(outboundMessage{Type: "error", Payload: errorPayload{Message: "invalid match payload"}})
			return
		}
		if err := sess.TapMatching(payload.QuestionID, payload.Item, payload.Side); err != nil {
			out.push(outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}})
			return
		}
		out.push(outboundMessage{Type: "progress", Payload: sess.Progress()})

	case "submit":
		if err := sess.Submit(context.Background()); err != nil {
			out.push(outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}})
		}

	case "leaveIntent":
		if err := sess.LeaveIntent(); err != nil {
			out.push(outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}})
			return
		}
		out.push(outboundMessage{Type: "leavePrompt"})

	case "confirmLeave":
		sess.ConfirmLeave()

	case "declineLeave":
		sess.DeclineLeave()
		out.push(outboundMessage{Type: "state", Payload: statePayload{State: sess.State()}})

	default:
		out.push(outboundMessage{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
	}
}

// runCountdown delivers the 1 Hz ticks the session consumes while active. It
// stops as soon as the session leaves the active state, on whichever path.
func (h *WSHandler) runCountdown(sess *session.Session, out *outbox) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			active := sess.Tick()
			out.push(outboundMessage{Type: "time", Payload: timePayload{Remaining: sess.Remaining()}})
			if !active {
				return
			}
		case <-sess.Deactivated():
			return
		}
	}
}

func (h *WSHandler) handleAnswer(sess *session.Session, out *outbox, raw json.RawMessage) {
	var payload answerPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		out.push(outboundMessage{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}})
		return
	}
	q, ok := sess.Quiz().QuestionByID(payload.QuestionID)
	if !ok {
		out.push(outboundMessage{Type: "error", Payload: errorPayload{Message: domain.ErrQuestionNotFound.Error()}})
		return
	}

	var ans domain.Answer
	switch q.(type) {
	case domain.MCQ, domain.ImageChoice:
		var label string
		if err := json.Unmarshal(payload.Value, &label); err != nil {
			out.push(outboundMessage{Type: "error", Payload: errorPayload{Message: "answer value must be a label"}})
			return
		}
		ans = domain.ChoiceAnswer(label)
	case domain.ShortAnswer:
		var text string
		if err := json.Unmarshal(payload.Value, &text); err != nil {
			out.push(outboundMessage{Type: "error", Payload: errorPayload{Message: "answer value must be text"}})
			return
		}
		ans = domain.TextAnswer(text)
	case domain.MultipleSelect:
		var labels []string
		if err := json.Unmarshal(payload.Value, &labels); err != nil {
			out.push(outboundMessage{Type: "error", Payload: errorPayload{Message: "answer value must be a label list"}})
			return
		}
		ans = domain.SelectionAnswer(labels)
	case domain.Underline:
		var indexes []int
		if err := json.Unmarshal(payload.Value, &indexes); err != nil {
			out.push(outboundMessage{Type: "error", Payload: errorPayload{Message: "answer value must be an index list"}})
			return
		}
		ans = domain.UnderlineAnswer(indexes)
	default:
		out.push(outboundMessage{Type: "error", Payload: errorPayload{Message: "question expects subAnswer or match messages"}})
		return
	}

	if err := sess.SetAnswer(payload.QuestionID, ans); err != nil {
		out.push(outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	out.push(outboundMessage{Type: "progress", Payload: sess.Progress()})
}

func (h *WSHandler) handleSubAnswer(sess *session.Session, out *outbox, raw json.RawMessage) {
	var payload subAnswerPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		out.push(outboundMessage{Type: "error", Payload: errorPayload{Message: "invalid subAnswer payload"}})
		return
	}
	q, ok := sess.Quiz().QuestionByID(payload.QuestionID)
	if !ok {
		out.push(outboundMessage{Type: "error", Payload: errorPayload{Message: domain.ErrQuestionNotFound.Error()}})
		return
	}

	var err error
	switch q.(type) {
	case domain.TrueFalseGroup:
		var key string
		var value bool
		if json.Unmarshal(payload.SubKey, &key) != nil || json.Unmarshal(payload.Value, &value) != nil {
			out.push(outboundMessage{Type: "error", Payload: errorPayload{Message: "subAnswer expects a statement key and a boolean"}})
			return
		}
		err = sess.SetTruth(payload.QuestionID, key, value)
	case domain.FillBlank:
		var slot int
		var word string
		if json.Unmarshal(payload.SubKey, &slot) != nil || json.Unmarshal(payload.Value, &word) != nil {
			out.push(outboundMessage{Type: "error", Payload: errorPayload{Message: "subAnswer expects a slot index and a word"}})
			return
		}
		err = sess.SetBlank(payload.QuestionID, slot, word)
	case domain.DropdownFill:
		var blankID, option string
		if json.Unmarshal(payload.SubKey, &blankID) != nil || json.Unmarshal(payload.Value, &option) != nil {
			out.push(outboundMessage{Type: "error", Payload: errorPayload{Message: "subAnswer expects a blank id and an option"}})
			return
		}
		err = sess.SetDropdown(payload.QuestionID, blankID, option)
	case domain.Ordering:
		var item, position int
		if json.Unmarshal(payload.SubKey, &item) != nil || json.Unmarshal(payload.Value, &position) != nil {
			out.push(outboundMessage{Type: "error", Payload: errorPayload{Message: "subAnswer expects an item index and a position"}})
			return
		}
		err = sess.SetPosition(payload.QuestionID, item, position)
	default:
		out.push(outboundMessage{Type: "error", Payload: errorPayload{Message: "question expects answer messages"}})
		return
	}

	if err != nil {
		out.push(outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	out.push(outboundMessage{Type: "progress", Payload: sess.Progress()})
}
