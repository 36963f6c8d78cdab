// internal/intake/documents/pipeline.go
package documents

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	stderrors "finance-intake/internal/common/errors"
	"finance-intake/internal/common/logger"
	"finance-intake/internal/common/metrics"
	"finance-intake/internal/models"
)

const retryAcceptanceNote = "Accepted on retry; manual review may be required"

// Config tunes the simulated verification.
type Config struct {
	Delay   time.Duration // simulated inspection time
	Timeout time.Duration // in-flight bound; expiry resolves to rejected
	Seed    int64         // 0 means time-seeded
}

func (c Config) normalize() Config {
	out := c
	if out.Delay <= 0 {
		out.Delay = 1500 * time.Millisecond
	}
	if out.Timeout <= 0 {
		out.Timeout = 10 * time.Second
	}
	if out.Seed == 0 {
		out.Seed = time.Now().UnixNano()
	}
	return out
}

// ResolvedFunc is invoked whenever a verification verdict lands for the
// current upload (stale verdicts are dropped silently).
type ResolvedFunc func(docID string, doc models.UploadedDocument)

type docState struct {
	doc        models.UploadedDocument
	generation int // bumped per upload; stale verifications compare and drop
}

// Pipeline manages the per-document verification lifecycle for one session:
// Absent -> Processing -> Verified|Rejected, with strict first attempts,
// lenient retries, and supersede semantics for re-uploads while Processing.
type Pipeline struct {
	cfg        Config
	onResolved ResolvedFunc
	logger     logger.Logger

	mu   sync.Mutex
	docs map[string]*docState
	rng  *rand.Rand
	wg   sync.WaitGroup
}

func NewPipeline(cfg Config, log logger.Logger, onResolved ResolvedFunc) *Pipeline {
	cfg = cfg.normalize()
	return &Pipeline{
		cfg:        cfg,
		onResolved: onResolved,
		logger:     log.WithFields(map[string]interface{}{"component": "documents"}),
		docs:       make(map[string]*docState),
		rng:        rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Attach records an upload for docID and starts an asynchronous
// verification. Re-attaching while a verification is in flight supersedes
// it; the stale verdict is dropped when it resolves. The attempt number is
// monotonic per id and resets only via Remove.
func (p *Pipeline) Attach(ctx context.Context, docID string, file models.FileRef) error {
	rule, ok := DocumentTypes[docID]
	if !ok {
		return stderrors.NewUnknownDocumentError(docID)
	}

	p.mu.Lock()
	state, exists := p.docs[docID]
	if !exists {
		state = &docState{doc: models.UploadedDocument{DocID: docID}}
		p.docs[docID] = state
	}
	state.doc.AttemptNumber++
	state.doc.File = &file
	state.doc.Verification = nil // back to processing
	state.generation++
	gen := state.generation
	attempt := state.doc.AttemptNumber
	p.mu.Unlock()

	p.logger.Info("verification started", map[string]interface{}{
		"docId":    docID,
		"filename": file.Name,
		"attempt":  attempt,
	})

	// Verification outlives the attaching call: HTTP request contexts are
	// canceled as soon as the handler returns, so only the pipeline's own
	// timeout bounds the check.
	p.wg.Add(1)
	go p.verify(context.WithoutCancel(ctx), rule, file, attempt, gen)
	return nil
}

// verify simulates content inspection off the conversation goroutine.
func (p *Pipeline) verify(ctx context.Context, rule TypeRule, file models.FileRef, attempt, gen int) {
	defer p.wg.Done()

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	var result models.VerificationResult
	select {
	case <-time.After(p.cfg.Delay):
		result = p.evaluate(rule, file, attempt)
	case <-ctx.Done():
		result = models.VerificationResult{
			Status: models.DocRejected,
			Notes:  []string{"Verification timed out; please try uploading again"},
		}
	}
	result.CompletedAt = time.Now().UTC()

	p.mu.Lock()
	state, ok := p.docs[rule.DocID]
	if !ok || state.generation != gen {
		// Superseded by a re-upload or cleared; drop the stale verdict.
		p.mu.Unlock()
		p.logger.Debug("stale verification dropped", map[string]interface{}{
			"docId": rule.DocID, "generation": gen,
		})
		return
	}
	state.doc.Verification = &result
	snapshot := state.doc
	p.mu.Unlock()

	metrics.VerificationsCompleted.WithLabelValues(rule.DocID, string(result.Status)).Inc()
	p.logger.Info("verification resolved", map[string]interface{}{
		"docId":   rule.DocID,
		"status":  string(result.Status),
		"attempt": attempt,
	})

	if p.onResolved != nil {
		p.onResolved(rule.DocID, snapshot)
	}
}

// evaluate applies the two-tier policy: attempt 1 is strict on filename
// keywords, attempt >= 2 passes unconditionally with a retry note. A
// confidence score in [85,98] is attached to the notes regardless of
// outcome.
func (p *Pipeline) evaluate(rule TypeRule, file models.FileRef, attempt int) models.VerificationResult {
	p.mu.Lock()
	confidence := 85 + p.rng.Intn(14)
	fields := rule.Extract(p.rng)
	p.mu.Unlock()

	confidenceNote := fmt.Sprintf("Automated confidence: %d%%", confidence)

	if attempt == 1 && !rule.matchesKeywords(file.Name) {
		return models.VerificationResult{
			Status: models.DocRejected,
			Notes: []string{
				fmt.Sprintf("%s could not be identified from %q; please retry with a more descriptive filename", rule.Label, file.Name),
				confidenceNote,
			},
		}
	}

	notes := []string{confidenceNote}
	if attempt >= 2 {
		notes = append([]string{retryAcceptanceNote}, notes...)
	}
	return models.VerificationResult{
		Status:          models.DocVerified,
		ExtractedFields: fields,
		Notes:           notes,
	}
}

// Remove clears the document back to Absent: file, verification record and
// attempt counter are all forgotten.
func (p *Pipeline) Remove(docID string) {
	p.mu.Lock()
	delete(p.docs, docID)
	p.mu.Unlock()
}

// Get returns a copy of the document slot, or an empty Absent slot.
func (p *Pipeline) Get(docID string) models.UploadedDocument {
	p.mu.Lock()
	defer p.mu.Unlock()
	if state, ok := p.docs[docID]; ok {
		return state.doc
	}
	return models.UploadedDocument{DocID: docID}
}

// Snapshot returns copies of every attached document slot.
func (p *Pipeline) Snapshot() []models.UploadedDocument {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.UploadedDocument, 0, len(p.docs))
	for _, state := range p.docs {
		out = append(out, state.doc)
	}
	return out
}

// Gate summarizes the downstream advancement rules: any Processing document
// is a hard blocker, a Rejected one is a soft blocker requiring explicit
// confirmation, and at least one document must be attached at all.
type Gate struct {
	Attached      bool
	AnyProcessing bool
	AnyRejected   bool
}

// CanAdvance reports whether the orchestrator may leave the document stage
// outright (confirmed retakes the soft gate).
func (g Gate) CanAdvance(confirmed bool) bool {
	if !g.Attached || g.AnyProcessing {
		return false
	}
	if g.AnyRejected && !confirmed {
		return false
	}
	return true
}

// CheckGate computes the current gate.
func (p *Pipeline) CheckGate() Gate {
	p.mu.Lock()
	defer p.mu.Unlock()

	var g Gate
	for _, state := range p.docs {
		if state.doc.File == nil {
			continue
		}
		g.Attached = true
		switch state.doc.Status() {
		case models.DocProcessing:
			g.AnyProcessing = true
		case models.DocRejected:
			g.AnyRejected = true
		}
	}
	return g
}

// Wait blocks until in-flight verifications resolve. Test helper.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}
