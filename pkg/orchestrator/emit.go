package orchestrator

import (
	"strings"
	"time"

	"github.com/medsync-ai/orchestrator/pkg/broker"
	"github.com/medsync-ai/orchestrator/pkg/models"
)

// deviceChunkSize is the per-chunk device count spec.md §6 fixes for both
// device_chunk event types.
const deviceChunkSize = 20

// chunkWords is the simulated per-delta word count for final_chunk
// streaming. The chain engine and other engines return already-synthesized
// text rather than a live model stream, so this chunking stands in for the
// token-by-token deltas spec.md §6 describes from a true LLM stream.
const chunkWords = 4

func (o *Orchestrator) emitStatus(b *broker.Broker, req models.RequestContext, agent, content string) {
	b.Put(models.Event{
		Type: models.EventStatus,
		Data: models.EventData{Agent: agent, UID: req.UID, SessionID: req.SessionID, Timestamp: time.Now(), Content: content},
	})
}

func (o *Orchestrator) emitError(b *broker.Broker, req models.RequestContext, err error) {
	b.Put(models.Event{
		Type: models.EventError,
		Data: models.EventData{UID: req.UID, SessionID: req.SessionID, Timestamp: time.Now(), Error: err.Error()},
	})
}

// emitClarification streams the clarification response as an ordinary
// final_chunk sequence (spec.md §7 "Clarifications are indistinguishable
// from a normal streamed response").
func (o *Orchestrator) emitClarification(st *requestState, found []*models.Device, notFound []string, suggestions map[string][]models.FuzzySuggestion) {
	var sb strings.Builder
	if len(found) > 0 {
		names := make([]string, len(found))
		for i, d := range found {
			names[i] = d.ProductName
		}
		sb.WriteString("Found: " + strings.Join(names, ", ") + ". ")
	}
	for _, name := range notFound {
		sb.WriteString("Could not find \"" + name + "\".")
		if sugg := suggestions[name]; len(sugg) > 0 {
			candidates := make([]string, len(sugg))
			for i, s := range sugg {
				candidates[i] = s.ProductName
			}
			sb.WriteString(" Did you mean: " + strings.Join(candidates, ", ") + "?")
		}
		sb.WriteString(" ")
	}
	o.streamText(st, "clarification", sb.String())
}

// streamOutput emits an engine's synthesized text as final_chunk events and
// its matched devices as paginated device_chunk events.
func (o *Orchestrator) streamOutput(st *requestState, out models.EngineOutput) {
	o.streamText(st, "output", out.Text)
	if len(out.Devices) == 0 {
		return
	}
	eventType := models.EventQueryResultDeviceChunk
	if len(out.ChainResults) > 0 {
		eventType = models.EventChainCategoryChunk
	}
	o.emitDeviceChunks(st, eventType, out.Devices)
}

func (o *Orchestrator) streamText(st *requestState, agent, text string) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return
	}
	for i := 0; i < len(words); i += chunkWords {
		end := i + chunkWords
		if end > len(words) {
			end = len(words)
		}
		delta := strings.Join(words[i:end], " ")
		if end < len(words) {
			delta += " "
		}
		st.b.Put(models.Event{
			Type: models.EventFinalChunk,
			Data: models.EventData{Agent: agent, UID: st.req.UID, SessionID: st.req.SessionID, Timestamp: time.Now(), Content: delta},
		})
	}
}

func (o *Orchestrator) emitDeviceChunks(st *requestState, eventType models.EventType, devices []*models.Device) {
	total := len(devices)
	chunkNumber := 0
	for i := 0; i < total; i += deviceChunkSize {
		end := i + deviceChunkSize
		if end > total {
			end = total
		}
		summaries := make([]models.DeviceSummary, 0, end-i)
		for _, d := range devices[i:end] {
			summaries = append(summaries, models.DeviceSummary{ID: d.ID, ProductName: d.ProductName, DeviceName: d.DeviceName})
		}
		st.b.Put(models.Event{
			Type: eventType,
			Data: models.EventData{
				Agent: "output", UID: st.req.UID, SessionID: st.req.SessionID, Timestamp: time.Now(),
				Devices: summaries,
				ChunkInfo: &models.ChunkInfo{
					ChunkNumber:  chunkNumber,
					ChunkSize:    len(summaries),
					TotalDevices: total,
					IsFinalChunk: end >= total,
				},
			},
		})
		chunkNumber++
	}
}

func (o *Orchestrator) emitTurnComplete(st *requestState) {
	st.b.Put(models.Event{
		Type: models.EventTurnComplete,
		Data: models.EventData{
			UID: st.req.UID, SessionID: st.req.SessionID, Timestamp: time.Now(),
			TurnIndex:  st.turnIndex,
			TokenUsage: &models.TokenCounters{InputTokens: st.inputUsage, OutputTokens: st.outputUsage},
		},
	})
}
