// Package chat orchestrates one conversational turn: session phase routing,
// knowledge retrieval, AI completion and the escalation flow.
package chat

import (
	"context"
	"fmt"
	"log/slog"

	errs "github.com/inaratravel/concierge/internal/errors"
	"github.com/inaratravel/concierge/internal/observability"
	"github.com/inaratravel/concierge/plugin/ai"
	"github.com/inaratravel/concierge/plugin/ai/classifier"
	"github.com/inaratravel/concierge/plugin/ai/dispatch"
	"github.com/inaratravel/concierge/plugin/ai/memory"
	"github.com/inaratravel/concierge/plugin/ai/rag"
	"github.com/inaratravel/concierge/plugin/ai/session"
	"github.com/inaratravel/concierge/plugin/contact"
)

// SourceError marks a turn answered by the system-error apology.
const SourceError = "error"

// reasonSystemError is the operator-facing reason for a crashed turn.
const reasonSystemError = "SYSTEM_ERROR"

// Request is one inbound chat turn.
type Request struct {
	UserID      string
	Message     string
	ContactHint string
	Channel     string
}

// Result is the outcome of one turn. Handle never fails; a broken backend
// degrades to an apology, not an error.
type Result struct {
	Reply     string
	Source    string
	Escalated bool
	Reason    string
}

// Engine routes each turn through the dialogue state machine.
type Engine struct {
	gateway    ai.CompletionGateway
	retriever  *rag.Retriever
	classifier *classifier.Classifier
	sessions   session.Store
	history    memory.HistoryService
	dispatcher *dispatch.Dispatcher
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewEngine wires the chat engine.
func NewEngine(
	gateway ai.CompletionGateway,
	retriever *rag.Retriever,
	cls *classifier.Classifier,
	sessions session.Store,
	history memory.HistoryService,
	dispatcher *dispatch.Dispatcher,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		gateway:    gateway,
		retriever:  retriever,
		classifier: cls,
		sessions:   sessions,
		history:    history,
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     logger,
	}
}

// Handle processes one turn. Turns for the same user are serialized, so a
// duplicate delivery observes the state left by the first copy instead of
// racing it. The method always returns a result.
func (e *Engine) Handle(ctx context.Context, req Request) (result *Result) {
	e.metrics.RecordRequest()
	reqCtx := observability.NewRequestContext(e.logger, req.Channel, req.UserID)
	ctx = observability.WithRequestContext(ctx, reqCtx)

	defer func() {
		if r := recover(); r != nil {
			reqCtx.Error("chat turn panicked", fmt.Errorf("%v", r))
			result = &Result{
				Reply:     systemErrorReply,
				Source:    SourceError,
				Escalated: true,
				Reason:    reasonSystemError,
			}
		}
	}()

	e.sessions.WithLock(req.UserID, func() {
		result = e.handleLocked(ctx, reqCtx, req)
	})

	reqCtx.Info("chat turn handled",
		slog.String("source", result.Source),
		slog.Bool("escalated", result.Escalated),
		slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()),
	)
	return result
}

func (e *Engine) handleLocked(ctx context.Context, reqCtx *observability.RequestContext, req Request) *Result {
	sess, err := e.sessions.Get(ctx, req.UserID)
	stateless := false
	if err != nil {
		// Degraded mode: keep answering, never offer a handoff we could not
		// track to completion.
		reqCtx.Error("session store unavailable, running stateless", errs.StateUnavailable(err))
		sess = session.Normal()
		stateless = true
	}

	switch sess.Phase {
	case session.PhaseAwaitingConfirm:
		return e.handleAwaitingConfirm(ctx, reqCtx, req, sess)
	case session.PhaseAwaitingContact:
		return e.handleAwaitingContact(ctx, reqCtx, req, sess)
	}
	return e.handleNormal(ctx, reqCtx, req, stateless)
}

// handleAwaitingConfirm resolves a pending handoff offer.
func (e *Engine) handleAwaitingConfirm(ctx context.Context, reqCtx *observability.RequestContext, req Request, sess session.Session) *Result {
	intent := e.classifier.ConfirmIntent(ctx, req.Message)
	reqCtx.Info("handoff offer resolved", slog.String(observability.LogFieldPhase, string(sess.Phase)), slog.String("intent", string(intent)))

	switch intent {
	case classifier.IntentAffirm:
		if err := e.sessions.Put(ctx, req.UserID, session.Session{
			Phase:   session.PhaseAwaitingContact,
			Pending: sess.Pending,
		}); err != nil {
			reqCtx.Error("failed to advance session", err)
		}
		e.appendHistory(ctx, req, askContactReply)
		return &Result{Reply: askContactReply, Source: rag.SourceGeneral, Escalated: true, Reason: sess.Pending.Reason}

	default:
		// NEGATE abandons the offer, OTHER changes the subject. Either way the
		// pending state is dropped and the message is answered as a fresh
		// NORMAL turn.
		e.clearSession(ctx, reqCtx, req.UserID)
		return e.handleNormal(ctx, reqCtx, req, false)
	}
}

// handleAwaitingContact collects a contact method and completes the handoff.
func (e *Engine) handleAwaitingContact(ctx context.Context, reqCtx *observability.RequestContext, req Request, sess session.Session) *Result {
	contactValue := contact.Extract(req.Message, req.ContactHint)
	if !contact.Found(contactValue) {
		// Stay in this phase; Put refreshes the session TTL.
		if err := e.sessions.Put(ctx, req.UserID, sess); err != nil {
			reqCtx.Error("failed to refresh session", err)
		}
		return &Result{Reply: contactRetryReply, Source: rag.SourceGeneral, Escalated: true, Reason: sess.Pending.Reason}
	}

	record, err := e.dispatcher.Dispatch(ctx, dispatch.Ticket{
		UserID:  req.UserID,
		Contact: contactValue,
		Message: sess.Pending.Message,
		Reason:  sess.Pending.Reason,
	})
	if err != nil {
		e.metrics.RecordDispatchFailure()
		if record == nil {
			// Nothing was persisted. Keep the phase so the user can retry.
			reqCtx.Error("escalation could not be recorded", err)
			if putErr := e.sessions.Put(ctx, req.UserID, sess); putErr != nil {
				reqCtx.Error("failed to refresh session", putErr)
			}
			return &Result{Reply: systemErrorReply, Source: SourceError, Escalated: true, Reason: sess.Pending.Reason}
		}
		// Record stands, only the notification failed. The handoff is done
		// from the user's point of view.
		reqCtx.Error("operator notification failed, escalation recorded", err, slog.String("escalation", record.ID))
	}

	e.metrics.RecordEscalationConfirmed()
	e.clearSession(ctx, reqCtx, req.UserID)
	reply := escalationDoneReply(contactValue)
	e.appendHistory(ctx, req, reply)
	return &Result{Reply: reply, Source: rag.SourceGeneral, Escalated: true, Reason: sess.Pending.Reason}
}

// handleNormal answers autonomously and watches for escalation triggers.
func (e *Engine) handleNormal(ctx context.Context, reqCtx *observability.RequestContext, req Request, stateless bool) *Result {
	kctx := e.retriever.Retrieve(ctx, req.Message)

	if kctx.Class == rag.QueryCustom {
		return e.handleCustomRequest(ctx, reqCtx, req, stateless)
	}

	turns, err := e.history.Recent(ctx, req.UserID)
	if err != nil {
		reqCtx.Error("failed to load conversation history", err)
	}
	draft := e.gateway.Complete(ctx, systemPrompt, buildUserPrompt(req.Message, kctx), toAIMessages(turns))

	escalate, reason := e.classifier.ShouldEscalate(req.Message, draft)
	reply := draft
	if escalate && !stateless {
		e.metrics.RecordEscalationOffered()
		if !classifier.DraftOffersHandoff(draft) {
			reply = draft + offerSuffix
		}
		if err := e.sessions.Put(ctx, req.UserID, session.Session{
			Phase:   session.PhaseAwaitingConfirm,
			Pending: &session.Pending{Message: req.Message, Reason: reason},
		}); err != nil {
			reqCtx.Error("failed to store pending escalation", err)
		}
	}

	// History keeps the clean draft: the offer suffix is dialogue plumbing,
	// not assistant knowledge.
	e.appendHistory(ctx, req, draft)

	result := &Result{Reply: reply, Source: kctx.Source}
	if escalate && !stateless {
		result.Escalated = true
		result.Reason = reason
	}
	return result
}

// handleCustomRequest short-circuits custom package questions straight to a
// handoff offer; pricing them is not the assistant's job.
func (e *Engine) handleCustomRequest(ctx context.Context, reqCtx *observability.RequestContext, req Request, stateless bool) *Result {
	if stateless {
		e.appendHistory(ctx, req, customRequestStatelessReply)
		return &Result{Reply: customRequestStatelessReply, Source: rag.SourceCustomRequest}
	}

	reason := "User meminta paket khusus"
	e.metrics.RecordEscalationOffered()
	if err := e.sessions.Put(ctx, req.UserID, session.Session{
		Phase:   session.PhaseAwaitingConfirm,
		Pending: &session.Pending{Message: req.Message, Reason: reason},
	}); err != nil {
		reqCtx.Error("failed to store pending escalation", err)
	}
	e.appendHistory(ctx, req, customRequestReply)
	return &Result{Reply: customRequestReply, Source: rag.SourceCustomRequest, Escalated: true, Reason: reason}
}

func (e *Engine) appendHistory(ctx context.Context, req Request, reply string) {
	if err := e.history.AppendExchange(ctx, req.UserID, req.Message, reply); err != nil {
		observability.TurnLogger(ctx).Warn("failed to append conversation history", "error", err)
	}
}

func (e *Engine) clearSession(ctx context.Context, reqCtx *observability.RequestContext, userID string) {
	if err := e.sessions.Put(ctx, userID, session.Normal()); err != nil {
		reqCtx.Error("failed to clear session", err)
	}
}

func toAIMessages(turns []memory.Turn) []ai.Message {
	if len(turns) == 0 {
		return nil
	}
	msgs := make([]ai.Message, 0, len(turns))
	for _, t := range turns {
		msgs = append(msgs, ai.Message{Role: t.Role, Content: t.Content})
	}
	return msgs
}
