// Package dialog is the kernel that ties one inbound turn together:
// classify, run the safety gate, validate entities, dispatch to the
// workflow engine, and merge the result back into the session.
package dialog

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/carewave/voicedesk/internal/audit"
	"github.com/carewave/voicedesk/internal/backendclient"
	"github.com/carewave/voicedesk/internal/classifier"
	"github.com/carewave/voicedesk/internal/common/appctx"
	"github.com/carewave/voicedesk/internal/common/logger"
	"github.com/carewave/voicedesk/internal/common/stringutil"
	"github.com/carewave/voicedesk/internal/intents"
	"github.com/carewave/voicedesk/internal/safety"
	"github.com/carewave/voicedesk/internal/session"
	"github.com/carewave/voicedesk/internal/validator"
	"github.com/carewave/voicedesk/internal/workflow"
)

// Kernel processes turns against the session store, backed by a
// classifier, the backend client, and the workflow engine.
type Kernel struct {
	Sessions   *session.Store
	Classifier classifier.Classifier
	Backend    *backendclient.Client
	Engine     *workflow.Engine
	Audit      audit.Sink
}

// TurnResult is what the HTTP surface returns for one processed turn.
type TurnResult struct {
	SessionID    string
	ResponseText string
	Intent       intents.Intent
	Confidence   float64
	Ended        bool
	Escalated    bool
}

// ProcessTurn runs one caller utterance through the full pipeline. The
// session must already exist (created via Sessions.Create).
func (k *Kernel) ProcessTurn(ctx context.Context, sessionID, rawText string, portalToken string) (TurnResult, error) {
	handle, err := k.Sessions.Begin(sessionID)
	if err != nil {
		return TurnResult{}, err
	}
	defer handle.Close()

	snap := handle.Snapshot()

	result, err := k.Classifier.Classify(ctx, rawText, snap.Context)
	if err != nil {
		return TurnResult{}, err
	}

	safeResp := safety.GetSafeResponse(result.Intent, result.Confidence, rawText, len(snap.Turns), snap.FailedIntentCount)

	effectiveIntent := result.Intent
	if safeResp.IntentOverride != "" {
		effectiveIntent = safeResp.IntentOverride
	}

	k.logTurn(sessionID, effectiveIntent, safeResp.LogText)

	if safeResp.Action == safety.ActionClarify || safeResp.Action == safety.ActionConfirm {
		handle.RecordIntentFailure()
		if _, err := handle.AppendTurn(rawText, string(effectiveIntent), safeResp.Message, result.Entities, nil); err != nil {
			return TurnResult{}, err
		}
		return TurnResult{
			SessionID:    sessionID,
			ResponseText: safeResp.Message,
			Intent:       effectiveIntent,
			Confidence:   result.Confidence,
			Ended:        false,
		}, nil
	}

	validated := validator.ValidateAll(result.Entities, time.Now())
	entities := mergeValidated(result.Entities, validated)

	if safeResp.Action == safety.ActionEscalate {
		return k.finishWorkflow(ctx, handle, snap, effectiveIntent, result.Confidence, rawText, entities, portalToken, safeResp.Message)
	}

	return k.finishWorkflow(ctx, handle, snap, effectiveIntent, result.Confidence, rawText, entities, portalToken, "")
}

func (k *Kernel) finishWorkflow(ctx context.Context, handle *session.Handle, snap session.Snapshot, intent intents.Intent, confidence float64, rawText string, entities map[string]any, portalToken, forcedMessage string) (TurnResult, error) {
	in := workflow.Input{
		Intent:      intent,
		Confidence:  confidence,
		Entities:    entities,
		RawText:     rawText,
		Context:     snap.Context,
		PortalToken: portalToken,
		Backend:     k.Backend,
	}

	isPortal := portalToken != "" && snap.Channel == session.ChannelPatientPortal
	decision, err := k.Engine.Route(ctx, in, snap.CurrentWorkflow, snap.WorkflowState, isPortal)
	if err != nil {
		handle.RecordIntentFailure()
		return TurnResult{}, err
	}

	responseText := decision.ResponseText
	if forcedMessage != "" {
		responseText = forcedMessage
	}

	handle.MergeEntities(entities)

	if decision.Started || decision.WorkflowName != "" {
		if decision.Complete {
			handle.ClearWorkflow()
		} else {
			handle.SetWorkflow(decision.WorkflowName, decision.StateUpdate)
		}
	}

	if _, err := handle.AppendTurn(rawText, string(intent), responseText, entities, nil); err != nil {
		return TurnResult{}, err
	}

	if decision.Escalate && k.Audit != nil {
		// The audit write must outlive the HTTP request that triggered it,
		// so it runs on a detached context rather than ctx.
		auditCtx, auditCancel := appctx.Detached(ctx, make(chan struct{}), 5*time.Second)
		defer auditCancel()
		k.Audit.Record(auditCtx, audit.Event{
			SessionID: snap.ID,
			Kind:      "escalation",
			Reason:    decision.EscalateWhy,
			At:        time.Now(),
		})
	}

	return TurnResult{
		SessionID:    snap.ID,
		ResponseText: responseText,
		Intent:       intent,
		Confidence:   confidence,
		Ended:        intent == intents.Goodbye,
		Escalated:    decision.Escalate,
	}, nil
}

func mergeValidated(entities map[string]any, validated map[string]validator.Entry) map[string]any {
	out := make(map[string]any, len(entities))
	for k, v := range entities {
		out[k] = v
	}
	for k, entry := range validated {
		if entry.Result.Outcome == validator.Valid && entry.Result.Normalized != "" {
			out[k] = entry.Result.Normalized
		}
	}
	return out
}

func (k *Kernel) logTurn(sessionID string, intent intents.Intent, maskedText string) {
	logger.Default().WithFields(
		zap.String("session_id", sessionID),
		zap.String("intent", string(intent)),
	).Info("processed turn: " + stringutil.TruncateStringWithEllipsis(maskedText, 200))
}
