// internal/intake/flow/orchestrator.go
package flow

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	stderrors "finance-intake/internal/common/errors"
	"finance-intake/internal/common/logger"
	"finance-intake/internal/common/metrics"
	"finance-intake/internal/common/observability"
	"finance-intake/internal/intake/documents"
	"finance-intake/internal/intake/offers"
	"finance-intake/internal/intake/prompt"
	"finance-intake/internal/intake/qa"
	"finance-intake/internal/intake/session"
	"finance-intake/internal/models"

	"github.com/google/uuid"
)

// RecordSink persists signed applications. Best effort only.
type RecordSink interface {
	Insert(ctx context.Context, rec *models.ApplicationRecord) error
}

// TranscriptIndexer archives completed-session transcripts. Best effort.
type TranscriptIndexer interface {
	IndexTranscript(ctx context.Context, sessionID string, msgs []models.ConversationMessage) error
}

// CompletionNotifier confirms signature out of band. Best effort.
type CompletionNotifier interface {
	SendCompletion(ctx context.Context, email, phone string, c *models.Contract) error
}

// Config tunes the orchestrator.
type Config struct {
	DefaultIncome int // assumed when the revenue question is skipped
	Documents     documents.Config
	Prompt        prompt.Config
}

func (c Config) defaultIncome() int {
	if c.DefaultIncome <= 0 {
		return 500_000
	}
	return c.DefaultIncome
}

// Orchestrator sequences the macro lifecycle:
// info -> offers -> documents -> contract -> complete.
// Off-script questions are intercepted before any stage handler so the user
// never loses their place.
type Orchestrator struct {
	cfg       Config
	sessions  *session.Manager
	machine   *prompt.Machine
	engine    *offers.Engine
	responder *qa.Responder
	recovery  *stderrors.Handler
	obs       *observability.Observability

	records     RecordSink
	transcripts TranscriptIndexer
	notifier    CompletionNotifier

	logger logger.Logger
}

func NewOrchestrator(
	cfg Config,
	sessions *session.Manager,
	responder *qa.Responder,
	records RecordSink,
	transcripts TranscriptIndexer,
	notifier CompletionNotifier,
	obs *observability.Observability,
	log logger.Logger,
) *Orchestrator {
	l := log.WithFields(map[string]interface{}{"component": "flow"})
	return &Orchestrator{
		cfg:         cfg,
		sessions:    sessions,
		machine:     prompt.NewMachine(cfg.Prompt),
		engine:      offers.NewEngine(),
		responder:   responder,
		recovery:    stderrors.NewHandler(l),
		obs:         obs,
		records:     records,
		transcripts: transcripts,
		notifier:    notifier,
		logger:      l,
	}
}

// StartSession opens a conversation for the given order, wires the
// per-session document pipeline, and asks the first question.
func (o *Orchestrator) StartSession(order models.OrderContext, customerType models.CustomerType) *session.Session {
	s := o.sessions.Create(order, customerType)

	s.Docs = documents.NewPipeline(o.cfg.Documents, o.logger, func(docID string, doc models.UploadedDocument) {
		update := &models.DocStatusUpdate{DocID: docID, Status: doc.Status()}
		if doc.Verification != nil {
			update.Notes = doc.Verification.Notes
		}
		s.Append(models.ConversationMessage{
			Role:      models.RoleWidget,
			DocStatus: update,
		})
	})

	s.AppendAssistant("Welcome! Let's set up financing for your order. A few quick questions first.")
	o.askCurrentPrompt(s)

	o.logger.Info("session started", map[string]interface{}{
		"sessionId":    s.ID,
		"customerType": string(customerType),
		"cartTotal":    s.CartTotal(),
	})
	return s
}

// HandleTurn processes one user reply against the session's current stage.
// It never returns an error: every failure mode degrades to a re-prompt, a
// warning, or a fallback message.
func (o *Orchestrator) HandleTurn(ctx context.Context, s *session.Session, input string) {
	s.Lock()
	defer s.Unlock()

	start := time.Now()
	stage := s.Stage
	defer func() {
		metrics.TurnsProcessed.WithLabelValues(string(stage)).Inc()
		if o.obs != nil {
			o.obs.RecordTurn(ctx, string(stage))
			o.obs.RecordTurnDuration(ctx, time.Since(start), string(stage))
		}
	}()

	s.AppendUser(input)

	// Off-script interception runs before any stage handler, at every
	// stage; the flow state is untouched and the next turn resumes where
	// it left off.
	if qa.IsQuestion(input) {
		answer := o.responder.Answer(ctx, input, map[string]interface{}{
			"stage":     string(s.Stage),
			"cartTotal": s.CartTotal(),
		})
		s.AppendAssistant(answer.Message, answer.Suggestions...)
		return
	}

	switch s.Stage {
	case session.StageInfo:
		o.handleInfo(s, input)
	case session.StageOffers:
		o.handleOffers(s, input)
	case session.StageDocuments:
		o.handleDocuments(s, input)
	case session.StageContract:
		o.handleContract(ctx, s, input)
	case session.StageComplete:
		s.AppendAssistant("Your application is complete. We'll be in touch shortly!")
	}
}

// ==========================
// Stage: info
// ==========================

func (o *Orchestrator) handleInfo(s *session.Session, input string) {
	patched, next, err := o.machine.Apply(s.Profile, s.CartTotal(), input)
	if err != nil {
		step := next // Apply returns the pending step unchanged on failure
		recovery := o.recovery.Recover(err)
		if step != nil {
			metrics.PromptsReissued.WithLabelValues(string(step.Kind)).Inc()
			line := recovery.UserMessage
			if line == "" {
				line = "Sorry, I didn't catch that."
			}
			if step.Guidance != "" {
				line += " " + step.Guidance
			}
			s.AppendAssistant(strings.TrimSpace(line+" "+step.Question), step.Suggestions...)
		}
		return
	}

	s.Profile = patched
	if next != nil {
		s.AppendAssistant(next.Question, next.Suggestions...)
		return
	}

	// Qualification complete. Income was intentionally skipped for this
	// flow, so default it before pricing.
	if s.Profile.Income == 0 {
		s.Profile.Income = o.cfg.defaultIncome()
	}
	s.Stage = session.StageOffers
	s.AppendAssistant(
		"Great, that's everything I need. How would you like to pay for your equipment?",
		"Financing", "Lease", "Compare both",
	)
}

// ==========================
// Stage: offers
// ==========================

var termChoices = []string{"24 months", "36 months", "48 months", "60 months"}

func (o *Orchestrator) handleOffers(s *session.Session, input string) {
	lower := strings.ToLower(input)

	if strings.Contains(lower, "compare") {
		term := s.Order.TermMonths
		if s.Profile.SelectedTerm != 0 {
			term = s.Profile.SelectedTerm
		}
		cmp := o.engine.Compare(s.Profile, s.CartTotal(), term, s.Order.DownPayment)
		s.Append(models.ConversationMessage{
			Role:       models.RoleWidget,
			Comparison: &cmp,
		})
		s.AppendAssistant(cmp.Savings+". Which would you like?", "Financing", "Lease")
		return
	}

	if s.Profile.SelectedOfferType == "" {
		switch {
		case strings.Contains(lower, "financ"), strings.Contains(lower, "loan"):
			s.Profile.SelectedOfferType = models.OfferFinancing
		case strings.Contains(lower, "lease"), strings.Contains(lower, "rent"):
			s.Profile.SelectedOfferType = models.OfferLease
		default:
			s.AppendAssistant(
				"Would you like to finance or lease?",
				"Financing", "Lease", "Compare both",
			)
			return
		}
		s.AppendAssistant("Over how many months?", termChoices...)
		return
	}

	term, ok := parseTerm(input)
	if !ok {
		s.AppendAssistant("Please pick a term between 6 and 84 months.", termChoices...)
		return
	}
	s.Profile.SelectedTerm = term

	offer := o.engine.Price(s.Profile, s.CartTotal(), s.Profile.SelectedOfferType, term, s.Order.DownPayment)
	report := o.engine.SimulateResiduals(s.Order.Items, term)
	offer.Residuals = report.Residuals
	metrics.OffersPriced.WithLabelValues(string(s.Profile.SelectedOfferType), offer.Tier).Inc()

	s.CurrentOffer = &offer
	s.Append(models.ConversationMessage{
		Role:  models.RoleWidget,
		Offer: &offer,
	})
	if report.SummaryText != "" {
		s.AppendAssistant(report.SummaryText)
	}

	s.Stage = session.StageDocuments
	s.AppendAssistant(
		fmt.Sprintf(
			"Here's your %s offer from %s: $%.2f/month over %d months. To move forward, please upload your business license and a recent bank statement, then say \"continue\".",
			s.Profile.SelectedOfferType, offer.Lender, offer.MonthlyPayment, offer.TermMonths,
		),
		"Continue",
	)
}

var termRegex = regexp.MustCompile(`\d+`)

func parseTerm(input string) (int, bool) {
	m := termRegex.FindString(input)
	if m == "" {
		return 0, false
	}
	term, err := strconv.Atoi(m)
	if err != nil || term < 6 || term > 84 {
		return 0, false
	}
	return term, true
}

// ==========================
// Stage: documents
// ==========================

func (o *Orchestrator) handleDocuments(s *session.Session, input string) {
	lower := strings.ToLower(input)

	wantsAdvance := strings.Contains(lower, "continue") ||
		strings.Contains(lower, "proceed") ||
		strings.Contains(lower, "done") ||
		(s.AwaitingReject && (strings.Contains(lower, "yes") || strings.Contains(lower, "confirm")))
	if !wantsAdvance {
		o.describeDocuments(s)
		return
	}

	gate := s.Docs.CheckGate()
	switch {
	case !gate.Attached:
		s.AppendAssistant("I still need at least one document. Please attach your business license or a bank statement.")
	case gate.AnyProcessing:
		s.AppendAssistant("One of your documents is still being verified. Give it a moment and try again.")
	case gate.AnyRejected && !s.AwaitingReject:
		s.AwaitingReject = true
		s.AppendAssistant(
			"Heads up: one of your documents was rejected. You can re-upload it, or proceed anyway and our team will follow up. Proceed?",
			"Yes, proceed", "I'll re-upload",
		)
	default:
		s.AwaitingReject = false
		o.presentContract(s)
	}
}

func (o *Orchestrator) describeDocuments(s *session.Session) {
	docs := s.Docs.Snapshot()
	if len(docs) == 0 {
		s.AppendAssistant("Attach your documents using the upload panel, then say \"continue\".", "Continue")
		return
	}
	lines := make([]string, 0, len(docs))
	for _, d := range docs {
		rule := documents.DocumentTypes[d.DocID]
		lines = append(lines, fmt.Sprintf("%s: %s", rule.Label, d.Status()))
	}
	s.AppendAssistant("Current documents: "+strings.Join(lines, ", ")+". Say \"continue\" when ready.", "Continue")
}

// AttachDocument is the file-attach entry point from the UI layer.
func (o *Orchestrator) AttachDocument(ctx context.Context, s *session.Session, docID string, file models.FileRef) error {
	return s.Docs.Attach(ctx, docID, file)
}

// RemoveDocument clears a document slot entirely, resetting its attempts.
func (o *Orchestrator) RemoveDocument(s *session.Session, docID string) {
	s.Docs.Remove(docID)
}

// ==========================
// Stage: contract
// ==========================

func (o *Orchestrator) presentContract(s *session.Session) {
	offer := s.CurrentOffer
	financed := s.CartTotal() - offer.DownPayment

	contract := &models.Contract{
		Lender:         offer.Lender,
		CustomerName:   s.Profile.RepresentativeName,
		CustomerEmail:  s.Order.CustomerEmail,
		FinancedAmount: financed,
		DownPayment:    offer.DownPayment,
		APR:            offer.APR,
		TermMonths:     offer.TermMonths,
		MonthlyPayment: offer.MonthlyPayment,
		SigningLink:    "https://sign.example.com/" + uuid.NewString(),
	}
	s.Contract = contract
	s.Stage = session.StageContract

	s.Append(models.ConversationMessage{
		Role:     models.RoleWidget,
		Contract: contract,
	})
	s.AppendAssistant(
		fmt.Sprintf(
			"Here is your agreement with %s: $%d financed at %.2f%% APR, $%.2f/month for %d months. Reply \"sign\" to accept.",
			contract.Lender, contract.FinancedAmount, contract.APR, contract.MonthlyPayment, contract.TermMonths,
		),
		"Sign",
	)
}

func (o *Orchestrator) handleContract(ctx context.Context, s *session.Session, input string) {
	if !strings.Contains(strings.ToLower(input), "sign") {
		s.AppendAssistant("When you're ready, reply \"sign\" to accept the agreement.", "Sign")
		return
	}

	s.Stage = session.StageComplete
	completion := &models.Completion{
		OfferType:      s.Profile.SelectedOfferType,
		TermMonths:     s.Profile.SelectedTerm,
		MonthlyPayment: s.CurrentOffer.MonthlyPayment,
	}
	s.Append(models.ConversationMessage{
		Role:       models.RoleWidget,
		Completion: completion,
	})
	s.AppendAssistant(fmt.Sprintf(
		"You're all set! Your %s runs %d months at $%.2f/month. A confirmation is on its way.",
		completion.OfferType, completion.TermMonths, completion.MonthlyPayment,
	))

	o.sideWrites(ctx, s)
}

// sideWrites performs the best-effort post-signature work. Every failure is
// logged via the recovery handler and swallowed; the conversation has
// already completed.
func (o *Orchestrator) sideWrites(ctx context.Context, s *session.Session) {
	if o.records != nil {
		rec := &models.ApplicationRecord{
			ID:             uuid.NewString(),
			SessionID:      s.ID,
			CompanyName:    s.Profile.BusinessInfo.CompanyName,
			Representative: s.Profile.RepresentativeName,
			OfferType:      s.Profile.SelectedOfferType,
			Lender:         s.CurrentOffer.Lender,
			TermMonths:     s.CurrentOffer.TermMonths,
			MonthlyPayment: s.CurrentOffer.MonthlyPayment,
			TotalAmount:    s.CurrentOffer.TotalAmount,
			CreatedAt:      time.Now().UTC().Format(time.RFC3339),
		}
		if err := o.records.Insert(ctx, rec); err != nil {
			o.recovery.Recover(stderrors.NewRecordInsertError(err))
		}
	}

	if o.transcripts != nil {
		if err := o.transcripts.IndexTranscript(ctx, s.ID, s.Log()); err != nil {
			o.recovery.Recover(err)
		}
	}

	if o.notifier != nil {
		if err := o.notifier.SendCompletion(ctx, s.Contract.CustomerEmail, "", s.Contract); err != nil {
			o.recovery.Recover(err)
		}
	}
}

// askCurrentPrompt re-derives and asks the pending question.
func (o *Orchestrator) askCurrentPrompt(s *session.Session) {
	if step := o.machine.Next(s.Profile, s.CartTotal()); step != nil {
		s.AppendAssistant(step.Question, step.Suggestions...)
	}
}
