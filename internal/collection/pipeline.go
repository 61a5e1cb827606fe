package collection

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cobrosmart/internal/ai"
	"cobrosmart/internal/store"
)

// AllowedTones are the three fixed message registers.
var AllowedTones = []string{"amable", "directo", "ultimo"}

// NormalizeTone maps unknown or empty tones to the default register.
func NormalizeTone(raw string) string {
	for _, t := range AllowedTones {
		if raw == t {
			return t
		}
	}
	return "amable"
}

// generationTimeout bounds the single generation attempt. On expiry the
// in-flight call is abandoned and the fallback template is used.
const generationTimeout = 25 * time.Second

// Pipeline runs the scoring + classification + generation flow for one
// debtor message. Generation-service failures never surface to the caller;
// datastore failures always do.
type Pipeline struct {
	store store.Datastore
	llm   Completer

	timeout        time.Duration
	newVariationID func() string
}

func NewPipeline(ds store.Datastore, llm Completer) *Pipeline {
	return &Pipeline{
		store:          ds,
		llm:            llm,
		timeout:        generationTimeout,
		newVariationID: func() string { return uuid.NewString()[:8] },
	}
}

type MessageRequest struct {
	BusinessID string
	DebtorID   string
	Tone       string
	Regenerate bool
}

type MessageResult struct {
	Text     string `json:"message_text"`
	Reason   string `json:"reason"`
	Model    string `json:"model"`
	Cached   bool   `json:"cached"`
	Fallback bool   `json:"fallback"`
}

// Generate produces the collection message for (debtor, tone), consulting the
// cache first unless regeneration was requested.
func (p *Pipeline) Generate(ctx context.Context, req MessageRequest) (MessageResult, error) {
	tone := NormalizeTone(req.Tone)

	debtor, err := p.store.GetDebtor(ctx, req.BusinessID, req.DebtorID)
	if err != nil {
		return MessageResult{}, err
	}

	if !req.Regenerate {
		entry, hit, err := p.store.GetMessageCache(ctx, debtor.ID, tone)
		if err != nil {
			return MessageResult{}, fmt.Errorf("cache read failed: %w", err)
		}
		if hit && entry.MessageText != "" {
			return MessageResult{
				Text:     entry.MessageText,
				Reason:   entry.MessageReason,
				Model:    entry.Model,
				Cached:   true,
				Fallback: entry.Model == FallbackModel,
			}, nil
		}
	}

	settings, err := p.store.GetBusinessSettings(ctx, debtor.BusinessID)
	if err != nil {
		return MessageResult{}, err
	}

	events, err := p.store.ListEventsByDebtorIDs(ctx, []string{debtor.ID})
	if err != nil {
		return MessageResult{}, err
	}
	history := summarize(events)
	priority := CalculatePriority(PriorityInput{
		DaysOverdue: debtor.DaysOverdue,
		AmountARS:   debtor.AmountARS,
		Note:        debtor.Note,
	}, history)

	addressee := ClassifyAddressee(ctx, p.llm, debtor.Name, settings)

	variationID := p.newVariationID()
	prompt := ai.BuildMessagePrompt(ai.MessagePromptParams{
		VariationID:        variationID,
		SenderName:         settings.SenderName,
		SenderRole:         settings.SenderRole,
		Signature:          settings.Signature,
		GreetingLine:       addressee.Line,
		EntityAddressee:    addressee.Type == AddresseeEntity,
		DebtorName:         debtor.Name,
		AmountARS:          debtor.AmountARS,
		DaysOverdue:        debtor.DaysOverdue,
		Note:               debtor.Note,
		Tone:               tone,
		Pronoun:            settings.Pronoun,
		Sent:               history.Sent,
		NoResponse:         history.NoResponse,
		Promise:            history.Promise,
		Paid:               history.Paid,
		Replied:            history.Replied,
		SoftTreatment:      priority.SoftTreatment,
		PaymentLine:        ai.PaymentInstruction(settings.PaymentMethod, settings.PaymentDetails),
		EntityGreetingRule: settings.EntityGreetingRule,
		StyleNotes:         settings.StyleNotes,
		LastMessage:        lastSentMessage(events),
	})

	text, usedFallback := p.complete(ctx, prompt, req.Regenerate)
	model := FallbackModel
	if usedFallback {
		text = fallbackMessage(fallbackInput{
			Debtor:    debtor,
			Settings:  settings,
			Addressee: addressee,
			Tone:      tone,
		})
	} else {
		model = p.llm.Model()
	}

	text = ClampMessage(text)
	reason := buildReasonLine(tone, debtor.DaysOverdue, history.NoResponse, priority.SoftTreatment)

	entry := store.MessageCacheEntry{
		DebtorID:        debtor.ID,
		Tone:            tone,
		MessageText:     text,
		MessageReason:   reason,
		Model:           model,
		LastVariationID: variationID,
		LastPromptHash:  PromptHash(prompt),
	}
	if err := p.store.UpsertMessageCache(ctx, entry); err != nil {
		return MessageResult{}, fmt.Errorf("cache write failed: %w", err)
	}

	return MessageResult{
		Text:     text,
		Reason:   reason,
		Model:    model,
		Cached:   false,
		Fallback: usedFallback,
	}, nil
}

// complete makes the single generation attempt. It returns the raw text, or
// fallback=true on any failure: missing configuration, transport error,
// empty output or timeout. A completion arriving after the timeout is
// discarded; the buffered channel keeps the late goroutine from leaking.
func (p *Pipeline) complete(ctx context.Context, prompt string, regenerate bool) (string, bool) {
	if p.llm == nil || !p.llm.Usable() {
		return "", true
	}

	opts := ai.CompletionOptions{Temperature: 0.4, TopP: 0.9, MaxTokens: 220}
	if regenerate {
		// Diversify from the previous attempt.
		opts.Temperature = 0.9
		opts.TopP = 0.95
	}

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	type completion struct {
		text string
		err  error
	}
	done := make(chan completion, 1)
	go func() {
		text, err := p.llm.Complete(callCtx, prompt, opts)
		done <- completion{text, err}
	}()

	select {
	case c := <-done:
		if c.err != nil || strings.TrimSpace(c.text) == "" {
			zap.L().Warn("generation failed, using local fallback", zap.Error(c.err))
			return "", true
		}
		return c.text, false
	case <-callCtx.Done():
		zap.L().Warn("generation timed out, using local fallback")
		return "", true
	}
}

func summarize(events []store.DebtorEvent) HistorySummary {
	var h HistorySummary
	for _, ev := range events {
		h.apply(ev.Type)
	}
	return h
}

// lastSentMessage returns the text of the newest "sent" event, so the prompt
// can instruct the generator not to repeat it.
func lastSentMessage(events []store.DebtorEvent) string {
	var (
		latest   time.Time
		lastText string
	)
	for _, ev := range events {
		if ev.Type != "sent" || ev.Payload == nil {
			continue
		}
		text, _ := ev.Payload["message_text"].(string)
		if text == "" {
			continue
		}
		if lastText == "" || ev.CreatedAt.After(latest) {
			latest = ev.CreatedAt
			lastText = text
		}
	}
	return lastText
}

func buildReasonLine(tone string, daysOverdue, noResponse int, soft bool) string {
	parts := []string{fmt.Sprintf("tono %s", tone), fmt.Sprintf("%d dias vencido", daysOverdue)}
	if noResponse > 0 {
		parts = append(parts, fmt.Sprintf("ignoro %d veces", noResponse))
	}
	if soft {
		parts = append(parts, "enfoque suave por relacion comercial")
	}
	return strings.Join(parts, " / ")
}

// ClampMessage collapses whitespace and enforces the 280-character contract:
// longer texts become exactly 280 characters ending in "...".
func ClampMessage(text string) string {
	clean := strings.Join(strings.Fields(text), " ")
	runes := []rune(clean)
	if len(runes) <= 280 {
		return clean
	}
	return string(runes[:277]) + "..."
}

// PromptHash is the first 24 hex characters of the prompt's sha-256 digest,
// persisted for future cache-invalidation decisions.
func PromptHash(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])[:24]
}
