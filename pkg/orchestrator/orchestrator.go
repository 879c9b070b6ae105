// Package orchestrator implements the top-level request state machine:
// rewrite, clinical follow-up and guideline-enrichment, parallel intent
// classification and equipment extraction, unresolved-device gating, the
// generic-device subpipeline, intent routing, engine dispatch, and turn
// persistence (spec.md §4.7).
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/medsync-ai/orchestrator/pkg/broker"
	"github.com/medsync-ai/orchestrator/pkg/config"
	"github.com/medsync-ai/orchestrator/pkg/devicestore"
	"github.com/medsync-ai/orchestrator/pkg/docstore"
	"github.com/medsync-ai/orchestrator/pkg/llmprovider"
	"github.com/medsync-ai/orchestrator/pkg/masking"
	"github.com/medsync-ai/orchestrator/pkg/models"
	"github.com/medsync-ai/orchestrator/pkg/sessionstore"
)

// historyWindow is the number of trailing turns the rewrite step considers
// for pronoun/substitution resolution (spec.md §4.7 "Rewrite").
const historyWindow = 6

// TokenSink is the subset of docstore.TokenFlusher the orchestrator fires
// its fire-and-forget ledger increment through (spec.md §4.7 "Token
// accounting", §5 "fire-and-forget").
type TokenSink interface {
	Enqueue(inc docstore.TokenIncrement)
}

// Orchestrator holds every dependency the state machine needs. One instance
// is built at startup and reused across requests; all per-request state
// lives in Run's locals, never on this struct.
type Orchestrator struct {
	LLM      llmprovider.Provider
	Models   *config.ModelResolver
	Prompts  *config.PromptRegistry
	Devices  *devicestore.Store
	Sessions *sessionstore.Store
	Tokens   TokenSink
	Masker   *masking.Service
	Engines  Registry
}

// New builds an Orchestrator from its wired dependencies.
func New(llm llmprovider.Provider, models *config.ModelResolver, prompts *config.PromptRegistry, devices *devicestore.Store, sessions *sessionstore.Store, tokens TokenSink, masker *masking.Service, engines Registry) *Orchestrator {
	return &Orchestrator{
		LLM: llm, Models: models, Prompts: prompts, Devices: devices,
		Sessions: sessions, Tokens: tokens, Masker: masker, Engines: engines,
	}
}

// requestState accumulates everything threaded through one Run call.
type requestState struct {
	ctx         context.Context
	req         models.RequestContext
	b           *broker.Broker
	sess        *models.Session
	locked      *sessionstore.Locked
	devices     *devicestore.Store // request-scoped overlay, defaults to o.Devices
	turnIndex   int
	inputUsage  int64
	outputUsage int64
}

// Run drives the full pipeline for one chat-stream request. It never
// returns an error: every failure mode is surfaced either as an SSE `error`
// event or folded into a best-effort response, per spec.md §7's
// "not exceptions" propagation contract. The broker is guaranteed to close
// exactly once, matching the teacher's defer-cleanup idiom in
// pkg/queue/executor.go. The session lock is acquired once, before the
// initial load, and held through the terminal Save/SaveTurn calls, per
// spec.md §4.2: "Each session has a lock acquired for the duration of any
// read-modify-write sequence" — two concurrent requests against the same
// session must not both load the same prior state and then save
// independently, which would silently discard one request's turn.
func (o *Orchestrator) Run(ctx context.Context, req models.RequestContext, b *broker.Broker) {
	defer b.Close()

	log := slog.With("uid", req.UID, "session_id", req.SessionID)

	err := o.Sessions.WithLock(ctx, req.UID, req.SessionID, func(ctx context.Context, locked *sessionstore.Locked) error {
		sess, err := locked.Get(ctx)
		if err != nil {
			return fmt.Errorf("load session: %w", err)
		}
		o.runLocked(ctx, req, b, locked, sess)
		return nil
	})
	if err != nil {
		log.Error("session load failed", "error", err)
		o.emitError(b, req, err)
	}
}

// runLocked executes the pipeline body for one request, once the caller's
// session lock is held and the prior state is loaded.
func (o *Orchestrator) runLocked(ctx context.Context, req models.RequestContext, b *broker.Broker, locked *sessionstore.Locked, sess *models.Session) {
	log := slog.With("uid", req.UID, "session_id", req.SessionID)

	st := &requestState{ctx: ctx, req: req, b: b, sess: sess, locked: locked, devices: o.Devices, turnIndex: len(sess.ConversationHistory)}
	if o.Masker != nil {
		log.Info("turn started", "query", o.Masker.Mask(req.RawQuery))
	}

	o.emitStatus(b, req, "rewrite", "Normalizing query")
	normalized, sourceFilter, err := o.rewrite(ctx, st)
	if err != nil {
		log.Error("rewrite failed", "error", err)
		o.emitError(b, req, fmt.Errorf("rewrite: %w", err))
		o.finishError(st)
		return
	}

	normalized, forcedIntent, clinicalContinuation := o.applyClinicalFollowUp(st, normalized)
	normalized = o.enrichWithGuideline(st, normalized, forcedIntent)

	o.emitStatus(b, req, "classify", "Classifying intent and extracting equipment")
	class, extraction, err := o.classifyAndExtract(ctx, normalized)
	if err != nil {
		log.Error("classification/extraction failed", "error", err)
		o.emitError(b, req, fmt.Errorf("classify/extract: %w", err))
		o.finishError(st)
		return
	}
	st.accumulate(class.usage)
	st.accumulate(extraction.usage)

	intent := class.intent
	if clinicalContinuation {
		intent = models.IntentClinicalSupport
	}

	found, suggestions := o.resolveExtractedDevices(st, extraction)
	if isRelationalIntent(intent) && len(extraction.NotFound) > 0 {
		o.emitClarification(st, found, extraction.NotFound, suggestions)
		o.finishClarification(st)
		return
	}

	if isGenericDeviceIntent(intent) && len(extraction.GenericSpecs) > 0 {
		o.emitStatus(b, req, "generic_prep", "Resolving generic device specifications")
		synthetic, err := o.runGenericDevicePipeline(ctx, extraction.GenericSpecs)
		if err != nil {
			log.Warn("generic device pipeline failed, continuing without synthetic devices", "error", err)
		} else if len(synthetic) > 0 {
			st.devices = st.devices.WithOverlay(synthetic)
			for _, d := range synthetic {
				found = append(found, d)
			}
		}
	}

	path := RouteIntent(intent, class.needsPlanning, extraction.Constraints)
	o.emitStatus(b, req, string(path), "Running "+string(path)+" engine")

	engine, ok := o.Engines[path]
	if !ok {
		log.Error("no engine registered for path", "path", path)
		o.emitError(b, req, fmt.Errorf("no engine registered for path %q", path))
		o.finishError(st)
		return
	}

	in := models.EngineInput{
		NormalizedQuery: normalized,
		FoundDevices:    found,
		Constraints:     extraction.Constraints,
		SourceFilter:    sourceFilter,
	}
	out, err := engine.Run(ctx, in, sess, b)
	if err != nil {
		log.Error("engine run failed", "path", path, "error", err)
		o.emitError(b, req, fmt.Errorf("engine %s: %w", path, err))
		o.finishError(st)
		return
	}
	st.accumulate(llmprovider.Usage{InputTokens: out.InputTokens, OutputTokens: out.OutputTokens})

	if out.Status == models.StatusClarificationNeeded {
		// An engine-authored clarification (e.g. the clinical engine asking
		// for a missing parameter) already carries its question in out.Text;
		// only a device-name clarification needs the found/not-found
		// recomposition emitClarification does (spec.md §7 "clarifications
		// are indistinguishable from a normal streamed response").
		if len(out.ClarificationDevices) > 0 || len(out.UnresolvedSuggestions) > 0 {
			o.emitClarification(st, found, out.ClarificationDevices, out.UnresolvedSuggestions)
		} else {
			o.streamText(st, "clarification", out.Text)
		}
		o.persistClinicalState(st, intent, out)
		o.finishClarification(st)
		return
	}
	if out.Status == models.StatusError || out.Status == models.StatusNotImplemented {
		log.Error("engine returned non-ok status", "path", path, "status", out.Status, "message", out.ErrorMessage)
		o.emitError(b, req, fmt.Errorf("%s", out.ErrorMessage))
	}

	o.streamOutput(st, out)
	o.persistClinicalState(st, intent, out)
	o.finishOK(st, normalized, out.Text)
}

func (s *requestState) accumulate(u llmprovider.Usage) {
	s.inputUsage += u.InputTokens
	s.outputUsage += u.OutputTokens
}

// classifyAndExtract runs intent classification and equipment extraction
// concurrently, joining both before routing proceeds (spec.md §4.7
// "Parallel fan-out").
func (o *Orchestrator) classifyAndExtract(ctx context.Context, query string) (classifyResult, extractResult, error) {
	var class classifyResult
	var extraction extractResult

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		model, err := o.Models.Resolve("classify")
		if err != nil {
			return err
		}
		r, err := o.classify(gctx, model, query)
		if err != nil {
			return err
		}
		class = r
		return nil
	})
	g.Go(func() error {
		model, err := o.Models.Resolve("extract")
		if err != nil {
			return err
		}
		r, err := o.extract(gctx, model, query, o.Devices)
		if err != nil {
			return err
		}
		extraction = r
		return nil
	})
	if err := g.Wait(); err != nil {
		return classifyResult{}, extractResult{}, err
	}
	return class, extraction, nil
}

func (o *Orchestrator) finishOK(st *requestState, normalized, responseText string) {
	now := time.Now()
	userTurn := models.Turn{Role: models.TurnRoleUser, Content: st.req.RawQuery, Timestamp: now}
	assistantTurn := models.Turn{Role: models.TurnRoleAssistant, Content: responseText, Timestamp: now}
	st.sess.ConversationHistory = append(st.sess.ConversationHistory, userTurn, assistantTurn)
	o.saveTurn(st, userTurn)
	o.saveTurn(st, assistantTurn)
	o.persistAndComplete(st)
}

func (o *Orchestrator) finishClarification(st *requestState) {
	userTurn := models.Turn{Role: models.TurnRoleUser, Content: st.req.RawQuery, Timestamp: time.Now()}
	st.sess.ConversationHistory = append(st.sess.ConversationHistory, userTurn)
	o.saveTurn(st, userTurn)
	o.persistAndComplete(st)
}

// saveTurn appends one turn to the audit turn-history table. Failures are
// logged, not fatal: the full session blob (including ConversationHistory)
// is still persisted by the subsequent Save call in persistAndComplete.
func (o *Orchestrator) saveTurn(st *requestState, turn models.Turn) {
	if err := st.locked.SaveTurn(st.ctx, newTurnID(), turn); err != nil {
		slog.Error("save turn failed", "uid", st.req.UID, "session_id", st.req.SessionID, "error", err)
	}
}

func (o *Orchestrator) finishError(st *requestState) {
	o.persistAndComplete(st)
}

// persistAndComplete saves the session, fires the fire-and-forget token
// ledger increment, and emits turn_complete — always, even on an error or
// clarification path, per spec.md §7 "Token accounting is recorded even
// when the final response is an error."
func (o *Orchestrator) persistAndComplete(st *requestState) {
	if err := st.locked.Save(st.ctx, st.sess); err != nil {
		slog.Error("session save failed", "uid", st.req.UID, "session_id", st.req.SessionID, "error", err)
	}
	if o.Tokens != nil && (st.inputUsage > 0 || st.outputUsage > 0) {
		o.Tokens.Enqueue(docstore.TokenIncrement{UID: st.req.UID, Input: st.inputUsage, Output: st.outputUsage})
	}
	o.emitTurnComplete(st)
}

// newTurnID generates a unique turn identifier for SaveTurn.
func newTurnID() string {
	return uuid.NewString()
}
